package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func callTool(t *testing.T, tool Tool, args string) map[string]any {
	t.Helper()
	out, err := tool.Call(context.Background(), args)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	return body
}

func toolByName(ts []Tool, name string) Tool {
	for _, t := range ts {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

func TestWeatherTool(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{"q": q.Get("q"), "appid": q.Get("appid"), "units": q.Get("units")}
		if q.Get("q") == "Nowhere" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Tashkent","weather":[{"description":"clear sky"}],"main":{"temp":71.6,"feels_like":70.2,"humidity":30}}`))
	}))
	defer srv.Close()

	tool := &weatherTool{client: NewWeatherClient("secret", srv.URL, srv.Client()), logger: zap.NewNop()}

	body := callTool(t, tool, `{"city":"tashkent","units":"imperial"}`)
	assert.Equal(t, map[string]string{"q": "tashkent", "appid": "secret", "units": "imperial"}, gotQuery)
	assert.Equal(t, "weather", body["type"])
	assert.Equal(t, "Tashkent", body["city"])
	assert.Equal(t, "clear sky", body["description"])
	assert.Equal(t, 71.6, body["temperature"])
	assert.Equal(t, "°F", body["units"])

	body = callTool(t, tool, `{"city":"Tashkent"}`)
	assert.Equal(t, "metric", gotQuery["units"])
	assert.Equal(t, "°C", body["units"])

	body = callTool(t, tool, `{"city":"Nowhere"}`)
	assert.Equal(t, `Failed to fetch weather for "Nowhere". Status: 404`, body["error"])
}

func TestWeatherToolMissingKeyAndNetworkError(t *testing.T) {
	tool := &weatherTool{client: NewWeatherClient("", "", nil), logger: zap.NewNop()}
	body := callTool(t, tool, `{"city":"London"}`)
	assert.Equal(t, "Weather API key is not configured on the server.", body["error"])

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	tool = &weatherTool{client: NewWeatherClient("k", url, nil), logger: zap.NewNop()}
	body = callTool(t, tool, `{"city":"London"}`)
	assert.Equal(t, "Unexpected error while fetching weather.", body["error"])
}

func TestWeatherClientToleratesMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main":{}}`))
	}))
	defer srv.Close()

	w, err := NewWeatherClient("k", srv.URL, nil).Current(context.Background(), "Oslo", "metric")
	require.NoError(t, err)
	assert.Equal(t, "Oslo", w.City)
	assert.Equal(t, "No description", w.Description)
	assert.Nil(t, w.Temperature)
}

func TestBase64RoundTripPrintableASCII(t *testing.T) {
	var b strings.Builder
	for c := byte(32); c <= 126; c++ {
		b.WriteByte(c)
	}
	for i := 0; i <= b.Len(); i++ {
		s := b.String()[:i]
		got, err := DecodeBase64(EncodeBase64(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestDecodeBase64Variants(t *testing.T) {
	cases := map[string]string{
		"aGVsbG8=":         "hello",
		"aGVsbG8":          "hello",
		" aGVs\nbG8= ":     "hello",
		"Pz8-Pw":           "??>?",
		"Pz8_":             "???",
		"Pz8/":             "???",
		"8J+NjiBhcHBsZQ==": "🍎 apple",
	}
	for in, want := range cases {
		got, err := DecodeBase64(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"@@@@", "aGVs*bG8=", "a", "aGVsbG8====", "aG=VsbG8"} {
		_, err := DecodeBase64(bad)
		assert.Error(t, err, bad)
	}

	got, err := DecodeBase64("/w==")
	require.NoError(t, err)
	assert.Equal(t, "\uFFFD", got)
}

func TestBase64Tool(t *testing.T) {
	tool := base64Tool{}

	body := callTool(t, tool, `{"direction":"encode","value":"hello"}`)
	assert.Equal(t, "aGVsbG8=", body["result"])
	assert.Equal(t, "encode", body["direction"])

	body = callTool(t, tool, `{"direction":"decode","value":"aGVsbG8="}`)
	assert.Equal(t, "hello", body["result"])

	body = callTool(t, tool, `{"direction":"decode","value":"not base64!"}`)
	assert.Equal(t, "Invalid base64 string for decoding.", body["error"])
}

func TestDailySummaryTool(t *testing.T) {
	summaries := &fakeSummaries{}
	ts := NewToolset(NewTurn("u1", turnTime), ToolDeps{Summaries: summaries})
	tool := toolByName(ts, toolDailySummary)

	body := callTool(t, tool, `{"date":"14/03/2026"}`)
	assert.Equal(t, "Date must be in YYYY-MM-DD format.", body["error"])
	assert.Zero(t, summaries.calls)

	body = callTool(t, tool, `{"date":"2026-03-01"}`)
	assert.Equal(t, "2026-03-01", body["date"])

	summaries.err = errors.New("db down")
	body = callTool(t, tool, `{}`)
	assert.Equal(t, "Failed to load daily summary.", body["error"])
}

func TestUserTargetsToolAnonymousGetsDefaults(t *testing.T) {
	ts := NewToolset(NewTurn("", turnTime), ToolDeps{Targets: fakeTargets{}})
	body := callTool(t, toolByName(ts, toolUserTargets), `{}`)
	assert.Equal(t, float64(2000), body["daily_calories"])
	assert.Equal(t, float64(120), body["protein_g"])
	assert.Equal(t, "default_unauthenticated", body["source"])
}

func TestDefinitionsDescribeEveryTool(t *testing.T) {
	defs := Definitions(NewToolset(NewTurn("u1", turnTime), ToolDeps{}))
	require.Len(t, defs, 4)
	for _, d := range defs {
		assert.Equal(t, "function", d.Type)
		assert.NotEmpty(t, d.Function.Description)
		params, ok := d.Function.Parameters.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "object", params["type"])
		props, ok := params["properties"].(map[string]any)
		require.True(t, ok, d.Function.Name)
		assert.NotEmpty(t, props, d.Function.Name)
	}
}
