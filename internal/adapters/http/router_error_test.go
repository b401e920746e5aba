package httpadapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mkrashin/document-insight/internal/config"
	"github.com/mkrashin/document-insight/internal/core/domain"
)

func TestAnalyzeDocumentStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domain.WrapError(domain.ErrNotFound, "get document", errors.New("doc missing")), http.StatusNotFound},
		{"access denied", domain.WrapError(domain.ErrAccessDenied, "authorize", errors.New("no membership")), http.StatusForbidden},
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "analyze", errors.New("no storage locator")), http.StatusBadRequest},
		{"upstream", domain.WrapError(domain.ErrUpstream, "extract", errors.New("docintel down")), http.StatusBadGateway},
		{"temporary", domain.WrapError(domain.ErrTemporary, "nats publish", errors.New("broker gone")), http.StatusServiceUnavailable},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(routerFakes{analyze: analyzeFake{err: tc.err}})

			req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", nil)
			req.Header.Set("X-User-Id", "user-1")
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, res.Code)
			}
		})
	}
}

func TestErrorDetailHiddenOutsideDevMode(t *testing.T) {
	failure := domain.WrapError(domain.ErrUpstream, "extract", errors.New("subscription key rejected"))

	handler := newTestHandler(routerFakes{analyze: analyzeFake{err: failure}})
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	var resp map[string]string
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if strings.Contains(resp["error"], "subscription key") {
		t.Fatalf("error detail leaked: %q", resp["error"])
	}

	devHandler := newTestHandler(routerFakes{
		cfg:     config.Config{DevMode: true},
		analyze: analyzeFake{err: failure},
	})
	devRes := httptest.NewRecorder()
	devHandler.ServeHTTP(devRes, httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/analyze", nil))

	if err := json.NewDecoder(devRes.Body).Decode(&resp); err != nil {
		t.Fatalf("decode dev response: %v", err)
	}
	if !strings.Contains(resp["error"], "subscription key") {
		t.Fatalf("expected detail in dev mode, got %q", resp["error"])
	}
}

func TestAskChatMapsAccessDeniedTo403(t *testing.T) {
	handler := newTestHandler(routerFakes{
		chat: chatFake{err: domain.WrapError(domain.ErrAccessDenied, "authorize project", errors.New("not a member"))},
	})

	payload, _ := json.Marshal(map[string]string{"question": "what changed?"})
	req := httptest.NewRequest(http.MethodPost, "/v1/projects/proj-1/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "outsider")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", res.Code)
	}
}

func TestAskChatRejectsEmptyQuestionBeforeUseCase(t *testing.T) {
	handler := newTestHandler(routerFakes{})

	payload, _ := json.Marshal(map[string]string{"question": "   "})
	req := httptest.NewRequest(http.MethodPost, "/v1/projects/proj-1/chat", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}
