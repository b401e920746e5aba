package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mkrashin/document-insight/internal/infrastructure/resilience"
)

// Client is a stateless chat-completion adapter over the Ollama HTTP API.
// Every call sends the full system+user prompt pair; no conversational state
// is kept server-side.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
	maxTokens int,
	temperature float64,
) (string, error) {
	request := map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		"stream": false,
		"options": map[string]any{
			"num_predict": maxTokens,
			"temperature": temperature,
		},
	}

	var response struct {
		Message chatMessage `json:"message"`
	}

	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/chat", request, &response, "complete")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "ollama.complete", call, classifyError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("ollama complete", err)
	}
	return strings.TrimSpace(response.Message.Content), nil
}
