package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/tools"
)

type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneCasual  Tone = "casual"
	ToneFormal  Tone = "formal"
	TonePirate  Tone = "pirate"
)

// ParseTone maps the client's tone selector; anything unknown is neutral.
func ParseTone(s string) Tone {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case ToneCasual, ToneFormal, TonePirate:
		return t
	default:
		return ToneNeutral
	}
}

var tonePersona = map[Tone]string{
	ToneCasual: "You are a friendly, informal assistant who keeps explanations simple and the conversation relaxed. ",
	ToneFormal: "You are a polite, formal assistant who uses professional language and clear, structured explanations. ",
	TonePirate: "You are a humorous pirate assistant who sprinkles in \"Arrr\" and \"matey\" while keeping every answer accurate. ",
}

// BuildSystemPrompt depends only on its arguments: the tone picks a persona
// prefix and now pins what "today" means for the model.
func BuildSystemPrompt(tone Tone, now time.Time, available []tools.Tool) string {
	now = now.UTC()

	var b strings.Builder
	b.WriteString(tonePersona[tone])
	b.WriteString("You are a helpful wellness assistant inside the WellBalance app. ")
	b.WriteString("You answer general questions about nutrition, wellness and lifestyle.\n\n")

	b.WriteString("Tools available to you:\n")
	for _, t := range available {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name(), t.Description())
	}

	b.WriteString("\nRules:\n")
	fmt.Fprintf(&b, "- Whenever the user asks how many calories they have eaten, how many are left, "+
		"their protein, carbs or fat for a day, or what their daily goals are, you MUST call %q and/or %q "+
		"first and base the answer ONLY on their results.\n", toolDailySummary, toolUserTargets)
	b.WriteString("- Never invent calorie or macro numbers. Tool results are the only source of the user's personal data.\n")
	b.WriteString("- If a tool returns an error (for example the user is not logged in), explain that you cannot " +
		"access their personal data and answer only in general terms.\n")
	b.WriteString("- Reply in the same language the user writes in.\n")
	b.WriteString("- A few positive emojis are welcome when they fit the context; do not overuse them.\n\n")

	fmt.Fprintf(&b, "Today is %s (ISO %s). Treat this as \"today\" in user questions.",
		now.Format("Monday, January 2, 2006"), now.Format("2006-01-02"))
	return b.String()
}
