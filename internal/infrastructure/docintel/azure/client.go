package azure

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mkrashin/document-insight/internal/core/domain"
	"github.com/mkrashin/document-insight/internal/core/ports"
	"github.com/mkrashin/document-insight/internal/infrastructure/resilience"
)

const apiVersion = "2023-07-31"

// Client adapts the Azure Document Intelligence REST API. Analysis is
// asynchronous upstream: a submit call returns an operation URL that is
// polled until the service reports a terminal status.
type Client struct {
	endpoint     string
	apiKey       string
	httpClient   *http.Client
	executor     *resilience.Executor
	storage      ports.ObjectStorage
	pollInterval time.Duration
}

type Options struct {
	PollInterval       time.Duration
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(endpoint, apiKey string, storage ports.ObjectStorage, options Options) *Client {
	pollInterval := options.PollInterval
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	httpTimeout := options.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	return &Client{
		endpoint:     strings.TrimRight(endpoint, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: httpTimeout},
		executor:     options.ResilienceExecutor,
		storage:      storage,
		pollInterval: pollInterval,
	}
}

func (c *Client) Analyze(ctx context.Context, storagePath, modelID string) (domain.ExtractedData, error) {
	source, err := c.readSource(ctx, storagePath)
	if err != nil {
		return domain.ExtractedData{}, err
	}

	operationURL, err := c.submit(ctx, modelID, source)
	if err != nil {
		return domain.ExtractedData{}, wrapTemporaryIfNeeded("docintel submit", err)
	}

	result, err := c.poll(ctx, operationURL)
	if err != nil {
		return domain.ExtractedData{}, wrapTemporaryIfNeeded("docintel poll", err)
	}
	return mapAnalyzeResult(result), nil
}

func (c *Client) readSource(ctx context.Context, storagePath string) (string, error) {
	reader, err := c.storage.Open(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("open stored document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read stored document: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (c *Client) submit(ctx context.Context, modelID, base64Source string) (string, error) {
	url := fmt.Sprintf(
		"%s/formrecognizer/documentModels/%s:analyze?api-version=%s",
		c.endpoint, modelID, apiVersion,
	)
	payload := map[string]string{"base64Source": base64Source}

	var operationURL string
	call := func(callCtx context.Context) error {
		resp, err := c.postJSON(callCtx, url, payload, "submit")
		if err != nil {
			return err
		}
		operationURL = resp.Header.Get("Operation-Location")
		drainAndClose(resp)
		if operationURL == "" {
			return fmt.Errorf("docintel submit: missing Operation-Location header")
		}
		return nil
	}

	if c.executor != nil {
		if err := c.executor.Execute(ctx, "docintel.submit", call, classifyError); err != nil {
			return "", err
		}
		return operationURL, nil
	}
	if err := call(ctx); err != nil {
		return "", err
	}
	return operationURL, nil
}

type operationStatus struct {
	Status        string         `json:"status"`
	AnalyzeResult *analyzeResult `json:"analyzeResult"`
	Error         *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) poll(ctx context.Context, operationURL string) (*analyzeResult, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.getOperation(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		switch status.Status {
		case "succeeded":
			if status.AnalyzeResult == nil {
				return nil, fmt.Errorf("docintel poll: succeeded without analyzeResult")
			}
			return status.AnalyzeResult, nil
		case "failed":
			if status.Error != nil {
				return nil, fmt.Errorf("docintel analysis failed: %s: %s", status.Error.Code, status.Error.Message)
			}
			return nil, fmt.Errorf("docintel analysis failed")
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *Client) getOperation(ctx context.Context, operationURL string) (*operationStatus, error) {
	var status operationStatus
	call := func(callCtx context.Context) error {
		return c.getJSON(callCtx, operationURL, &status, "poll")
	}
	if c.executor != nil {
		if err := c.executor.Execute(ctx, "docintel.poll", call, classifyError); err != nil {
			return nil, err
		}
		return &status, nil
	}
	if err := call(ctx); err != nil {
		return nil, err
	}
	return &status, nil
}
