package chat

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms/googleai"
)

const geminiReply = `[{"candidates":[{"content":{"role":"model","parts":[{"text":"Hi there"}]},"finishReason":1,"index":0}]}]`

// capturingTransport records generateContent request bodies and answers with
// a canned reply instead of reaching Google.
type capturingTransport struct {
	mu     sync.Mutex
	bodies [][]byte
}

func (c *capturingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Body != nil && strings.Contains(req.URL.Path, "GenerateContent") {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.bodies = append(c.bodies, b)
		c.mu.Unlock()
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(geminiReply)),
		Request:    req,
	}, nil
}

func TestGeminiRequestDeclaresPropertiesForEveryTool(t *testing.T) {
	ctx := context.Background()
	transport := &capturingTransport{}
	model, err := googleai.New(ctx,
		googleai.WithAPIKey("test-key"),
		googleai.WithRest(),
		googleai.WithHTTPClient(&http.Client{Transport: transport}),
		googleai.WithDefaultModel("gemini-2.5-flash"),
	)
	require.NoError(t, err)

	_ = newTestAssembler(model, &fakeSummaries{}).Run(ctx,
		TurnRequest{UserID: "u1", History: userHistory("What are my targets?")}, &recordingEmitter{})

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.NotEmpty(t, transport.bodies)

	decls := gjson.GetBytes(transport.bodies[0], "tools.#.functionDeclarations|@flatten").Array()
	require.Len(t, decls, 4)
	for _, d := range decls {
		name := d.Get("name").String()
		props := d.Get("parameters.properties")
		assert.True(t, props.IsObject(), name)
		assert.NotEmpty(t, props.Map(), name)
	}
}
