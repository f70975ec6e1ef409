// cmd/newsloom/health_test.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthzEndpoint(t *testing.T) {
	hs := NewHealthServer(newMemStore(), 0)

	rec := httptest.NewRecorder()
	hs.handleHealthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestStatusEndpointReportsSources(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()
	if err := store.SeedSources(ctx, []Source{
		{Name: "Healthy", Enabled: true},
		{Name: "Flaky", Enabled: true},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.RecordSourceError(ctx, "Flaky", NewFeedError(ErrFeedFetch, "HTTP 503", nil)); err != nil {
		t.Fatalf("record error: %v", err)
	}

	hs := NewHealthServer(store, 0)
	rec := httptest.NewRecorder()
	hs.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Status          string `json:"status"`
		DegradedSources int    `json:"degraded_sources"`
		Sources         []struct {
			Name       string `json:"name"`
			ErrorCount int    `json:"error_count"`
		} `json:"sources"`
		Metrics SystemMetrics `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
	if len(body.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(body.Sources))
	}
	if body.DegradedSources != 1 {
		t.Errorf("degraded_sources = %d, want 1", body.DegradedSources)
	}
	if body.Metrics.GoroutineCount <= 0 {
		t.Errorf("goroutine count not collected: %+v", body.Metrics)
	}
}
