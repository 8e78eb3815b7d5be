package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/tools"
	"go.uber.org/zap"

	"wellbalance/internal/models"
	"wellbalance/internal/services"
)

const (
	toolWeather      = "checkWeather"
	toolBase64       = "base64"
	toolDailySummary = "getDailySummary"
	toolUserTargets  = "getUserTargets"
)

// Turn is resolved once per chat turn; every tool built for the turn sees the
// same user and the same "today".
type Turn struct {
	UserID string
	Now    time.Time
	Today  string
}

func NewTurn(userID string, now time.Time) Turn {
	return Turn{UserID: userID, Now: now, Today: services.ISODate(now)}
}

type SummaryReader interface {
	DailySummary(ctx context.Context, userID, date string) (models.DailyLog, error)
}

type TargetsReader interface {
	Get(ctx context.Context, userID string) services.ResolvedTargets
}

type ToolDeps struct {
	Weather   *WeatherClient
	Summaries SummaryReader
	Targets   TargetsReader
	Logger    *zap.Logger
}

// Tool is a langchaingo tool that also describes its JSON arguments so it
// can be offered to a function-calling model.
type Tool interface {
	tools.Tool
	Parameters() map[string]any
}

// NewToolset binds the four assistant tools to a turn.
func NewToolset(turn Turn, deps ToolDeps) []Tool {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return []Tool{
		&weatherTool{client: deps.Weather, logger: logger},
		base64Tool{},
		&dailySummaryTool{turn: turn, summaries: deps.Summaries, logger: logger},
		&userTargetsTool{turn: turn, targets: deps.Targets},
	}
}

// Definitions converts tools into the function declarations a model accepts.
func Definitions(ts []Tool) []llms.Tool {
	defs := make([]llms.Tool, 0, len(ts))
	for _, t := range ts {
		defs = append(defs, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

func asLangchainTools(ts []Tool) []tools.Tool {
	out := make([]tools.Tool, len(ts))
	for i, t := range ts {
		out[i] = t
	}
	return out
}

func encodeResult(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"type":"error","error":%q}`, err.Error())
	}
	return string(b)
}

type toolError struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func errorResult(kind, msg string) string {
	return encodeResult(toolError{Type: kind, Error: msg})
}

func decodeArgs(input string, dst any) error {
	input = strings.TrimSpace(input)
	if input == "" {
		input = "{}"
	}
	return json.Unmarshal([]byte(input), dst)
}

type weatherTool struct {
	client *WeatherClient
	logger *zap.Logger
}

type weatherArgs struct {
	City  string `json:"city"`
	Units string `json:"units"`
}

type weatherResult struct {
	Type        string   `json:"type"`
	City        string   `json:"city"`
	Description string   `json:"description"`
	Temperature *float64 `json:"temperature"`
	FeelsLike   *float64 `json:"feelsLike"`
	Humidity    *float64 `json:"humidity"`
	Units       string   `json:"units"`
}

func (t *weatherTool) Name() string { return toolWeather }

func (t *weatherTool) Description() string {
	return "Get the current weather for a city using the OpenWeatherMap API."
}

func (t *weatherTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{"type": "string", "description": "City name, e.g. \"Tashkent\" or \"London\"."},
			"units": map[string]any{
				"type":        "string",
				"enum":        []string{"metric", "imperial"},
				"description": "Units: metric (°C) or imperial (°F). Defaults to metric.",
			},
		},
		"required": []string{"city"},
	}
}

func (t *weatherTool) Call(ctx context.Context, input string) (string, error) {
	var args weatherArgs
	if err := decodeArgs(input, &args); err != nil || strings.TrimSpace(args.City) == "" {
		return errorResult("weather", "A city name is required."), nil
	}
	units := "metric"
	if args.Units == "imperial" {
		units = "imperial"
	}

	client := t.client
	if client == nil {
		client = NewWeatherClient("", "", nil)
	}
	w, err := client.Current(ctx, args.City, units)
	if err != nil {
		var status *WeatherStatusError
		switch {
		case errors.Is(err, ErrWeatherNotConfigured):
			return errorResult("weather", "Weather API key is not configured on the server."), nil
		case errors.As(err, &status):
			return errorResult("weather", fmt.Sprintf("Failed to fetch weather for %q. Status: %d", args.City, status.Status)), nil
		default:
			t.logger.Warn("weather lookup failed", zap.String("city", args.City), zap.Error(err))
			return errorResult("weather", "Unexpected error while fetching weather."), nil
		}
	}

	symbol := "°C"
	if units == "imperial" {
		symbol = "°F"
	}
	return encodeResult(weatherResult{
		Type:        "weather",
		City:        w.City,
		Description: w.Description,
		Temperature: w.Temperature,
		FeelsLike:   w.FeelsLike,
		Humidity:    w.Humidity,
		Units:       symbol,
	}), nil
}

type base64Tool struct{}

type base64Args struct {
	Direction string `json:"direction"`
	Value     string `json:"value"`
}

type base64Result struct {
	Type      string `json:"type"`
	Direction string `json:"direction"`
	Input     string `json:"input"`
	Result    string `json:"result"`
}

func (base64Tool) Name() string { return toolBase64 }

func (base64Tool) Description() string {
	return "Encode text to base64 or decode a base64 string back to text."
}

func (base64Tool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"direction": map[string]any{"type": "string", "enum": []string{"encode", "decode"}},
			"value":     map[string]any{"type": "string", "description": "Text to encode or base64 string to decode."},
		},
		"required": []string{"direction", "value"},
	}
}

func (base64Tool) Call(_ context.Context, input string) (string, error) {
	var args base64Args
	if err := decodeArgs(input, &args); err != nil {
		return errorResult("base64", "Invalid arguments for base64."), nil
	}
	switch args.Direction {
	case "encode":
		return encodeResult(base64Result{Type: "base64", Direction: "encode", Input: args.Value, Result: EncodeBase64(args.Value)}), nil
	case "decode":
		out, err := DecodeBase64(args.Value)
		if err != nil {
			return errorResult("base64", "Invalid base64 string for decoding."), nil
		}
		return encodeResult(base64Result{Type: "base64", Direction: "decode", Input: args.Value, Result: out}), nil
	default:
		return errorResult("base64", `Direction must be "encode" or "decode".`), nil
	}
}

type dailySummaryTool struct {
	turn      Turn
	summaries SummaryReader
	logger    *zap.Logger
}

type dailySummaryArgs struct {
	Date string `json:"date"`
}

type dailySummaryResult struct {
	Type          string `json:"type"`
	Date          string `json:"date"`
	TotalCalories int    `json:"total_calories"`
	ProteinG      int    `json:"protein_g"`
	CarbsG        int    `json:"carbs_g"`
	FatG          int    `json:"fat_g"`
}

func (t *dailySummaryTool) Name() string { return toolDailySummary }

func (t *dailySummaryTool) Description() string {
	return "Get the signed-in user's total calories, protein, carbs and fat logged for a day. Defaults to today."
}

func (t *dailySummaryTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": map[string]any{
				"type":        "string",
				"description": "Day in YYYY-MM-DD format. Omit for today (" + t.turn.Today + ").",
			},
		},
	}
}

func (t *dailySummaryTool) Call(ctx context.Context, input string) (string, error) {
	if t.turn.UserID == "" {
		return errorResult("daily_summary", "User is not authenticated."), nil
	}
	var args dailySummaryArgs
	if err := decodeArgs(input, &args); err != nil {
		return errorResult("daily_summary", "Invalid arguments for daily summary."), nil
	}
	date := strings.TrimSpace(args.Date)
	if date == "" {
		date = t.turn.Today
	}
	if _, err := services.ParseISODate(date); err != nil {
		return errorResult("daily_summary", "Date must be in YYYY-MM-DD format."), nil
	}

	row, err := t.summaries.DailySummary(ctx, t.turn.UserID, date)
	if err != nil {
		t.logger.Error("daily summary tool failed", zap.String("user_id", t.turn.UserID), zap.String("date", date), zap.Error(err))
		return errorResult("daily_summary", "Failed to load daily summary."), nil
	}
	return encodeResult(dailySummaryResult{
		Type:          "daily_summary",
		Date:          date,
		TotalCalories: row.TotalCalories,
		ProteinG:      row.ProteinG,
		CarbsG:        row.CarbsG,
		FatG:          row.FatG,
	}), nil
}

type userTargetsTool struct {
	turn    Turn
	targets TargetsReader
}

type userTargetsResult struct {
	Type          string `json:"type"`
	DailyCalories int    `json:"daily_calories"`
	ProteinG      int    `json:"protein_g"`
	CarbsG        int    `json:"carbs_g"`
	FatG          int    `json:"fat_g"`
	Source        string `json:"source"`
	Note          string `json:"note,omitempty"`
}

func (t *userTargetsTool) Name() string { return toolUserTargets }

func (t *userTargetsTool) Description() string {
	return "Get the signed-in user's daily calorie and macro targets. Returns defaults when none are set."
}

// Parameters declares one optional property because function-calling
// providers reject an object schema without properties. The tool ignores it.
func (t *userTargetsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"reason": map[string]any{
				"type":        "string",
				"description": "Optional short note on why the targets are needed. Not used for the lookup.",
			},
		},
	}
}

func (t *userTargetsTool) Call(ctx context.Context, _ string) (string, error) {
	resolved := services.ResolvedTargets{UserTargets: models.DefaultTargets, Source: services.TargetsDefault}
	if t.targets != nil {
		// The resolver itself answers with defaults for an anonymous turn.
		resolved = t.targets.Get(ctx, t.turn.UserID)
	}
	return encodeResult(userTargetsResult{
		Type:          "user_targets",
		DailyCalories: resolved.DailyCalories,
		ProteinG:      resolved.ProteinG,
		CarbsG:        resolved.CarbsG,
		FatG:          resolved.FatG,
		Source:        string(resolved.Source),
		Note:          resolved.Note,
	}), nil
}
