package azure

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type storageFake struct {
	content string
}

func (f *storageFake) Save(context.Context, string, io.Reader) error { return nil }

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.content)), nil
}

const succeededPayload = `{
  "status": "succeeded",
  "analyzeResult": {
    "content": "Invoice INV-001 total 1200.00",
    "tables": [
      {
        "rowCount": 1,
        "columnCount": 2,
        "cells": [
          {"rowIndex": 0, "columnIndex": 0, "content": "Total"},
          {"rowIndex": 0, "columnIndex": 1, "content": "1200.00"}
        ]
      }
    ],
    "keyValuePairs": [
      {"key": {"content": "Invoice Number"}, "value": {"content": "INV-001"}},
      {"key": {"content": ""}, "value": {"content": "orphan"}},
      {"key": {"content": "Due Date"}}
    ]
  }
}`

func TestAnalyzeSubmitsAndPolls(t *testing.T) {
	var submittedBody map[string]string
	var submittedModelPath string
	polls := 0

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			submittedModelPath = r.URL.Path
			if r.Header.Get("Ocp-Apim-Subscription-Key") != "secret" {
				t.Errorf("missing subscription key header")
			}
			if err := json.NewDecoder(r.Body).Decode(&submittedBody); err != nil {
				t.Errorf("decode submit body: %v", err)
			}
			w.Header().Set("Operation-Location", server.URL+"/operations/op-1")
			w.WriteHeader(http.StatusAccepted)
		case r.URL.Path == "/operations/op-1":
			polls++
			if polls == 1 {
				_, _ = w.Write([]byte(`{"status":"running"}`))
				return
			}
			_, _ = w.Write([]byte(succeededPayload))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	storage := &storageFake{content: "raw pdf bytes"}
	client := New(server.URL, "secret", storage, Options{PollInterval: time.Millisecond})

	data, err := client.Analyze(context.Background(), "doc-1_invoice.pdf", "prebuilt-document")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !strings.Contains(submittedModelPath, "documentModels/prebuilt-document") {
		t.Fatalf("unexpected submit path: %s", submittedModelPath)
	}
	wantSource := base64.StdEncoding.EncodeToString([]byte("raw pdf bytes"))
	if submittedBody["base64Source"] != wantSource {
		t.Fatalf("expected base64 document source, got %q", submittedBody["base64Source"])
	}
	if polls != 2 {
		t.Fatalf("expected 2 polls, got %d", polls)
	}
	if data.Content != "Invoice INV-001 total 1200.00" {
		t.Fatalf("unexpected content: %q", data.Content)
	}
	if len(data.Tables) != 1 || data.Tables[0].ColumnCount != 2 || len(data.Tables[0].Cells) != 2 {
		t.Fatalf("unexpected tables: %+v", data.Tables)
	}
	if data.KeyValuePairs["Invoice Number"] != "INV-001" {
		t.Fatalf("unexpected key-value pairs: %+v", data.KeyValuePairs)
	}
	if data.KeyValuePairs["Due Date"] != "" {
		t.Fatalf("valueless pair must map to empty string, got %q", data.KeyValuePairs["Due Date"])
	}
	if _, ok := data.KeyValuePairs[""]; ok {
		t.Fatalf("empty keys must be dropped")
	}
}

func TestAnalyzeFailedOperation(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", server.URL+"/operations/op-1")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status":"failed","error":{"code":"InvalidContent","message":"unreadable"}}`))
	}))
	defer server.Close()

	client := New(server.URL, "secret", &storageFake{content: "x"}, Options{PollInterval: time.Millisecond})
	_, err := client.Analyze(context.Background(), "doc-1.pdf", "prebuilt-document")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "InvalidContent") {
		t.Fatalf("expected upstream error code, got %v", err)
	}
}

func TestAnalyzeSubmitErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid subscription key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "wrong", &storageFake{content: "x"}, Options{PollInterval: time.Millisecond})
	_, err := client.Analyze(context.Background(), "doc-1.pdf", "prebuilt-document")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "invalid subscription key") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestMapAnalyzeResultNilPayload(t *testing.T) {
	data := mapAnalyzeResult(nil)
	if data.Tables == nil || data.KeyValuePairs == nil {
		t.Fatalf("empty defaults must be non-nil: %+v", data)
	}
}
