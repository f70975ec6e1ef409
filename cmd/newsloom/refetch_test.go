// cmd/newsloom/refetch_test.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRefetchArticleReplacesContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body><article><p>Revised page.</p></article></body></html>")
	}))
	defer srv.Close()

	store := newMemStore()
	ctx := context.Background()
	a := &Article{Title: "Original", URL: srv.URL, FullText: "stale text", Score: -1}
	if _, err := store.InsertArticle(ctx, a); err != nil {
		t.Fatalf("seed: %v", err)
	}

	refined := longText("The revised article body after the publisher fixed the page.", 400)
	c := testConfig()
	pipeline := NewExtractionPipeline(&StubGenerator{Responses: []string{refined}}, c)

	got, err := RefetchArticle(ctx, store, NewPageFetcher(c), pipeline, a.ID)
	if err != nil {
		t.Fatalf("RefetchArticle: %v", err)
	}
	if got.FullText != refined {
		t.Errorf("content not replaced: %q", got.FullText)
	}

	stored, _ := store.GetArticle(ctx, a.ID)
	if stored.FullText != refined {
		t.Errorf("replacement not persisted: %q", stored.FullText)
	}
}

func TestRefetchArticleKeepsContentOnEmptyExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "")
	}))
	defer srv.Close()

	store := newMemStore()
	ctx := context.Background()
	a := &Article{Title: "Original", URL: srv.URL, FullText: "existing text", Score: -1}
	if _, err := store.InsertArticle(ctx, a); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := testConfig()
	pipeline := NewExtractionPipeline(&StubGenerator{}, c)

	got, err := RefetchArticle(ctx, store, NewPageFetcher(c), pipeline, a.ID)
	if err != nil {
		t.Fatalf("RefetchArticle: %v", err)
	}
	if got.FullText != "existing text" {
		t.Errorf("empty extraction overwrote content: %q", got.FullText)
	}
}

func TestRefetchArticleUnknownID(t *testing.T) {
	c := testConfig()
	pipeline := NewExtractionPipeline(&StubGenerator{}, c)
	_, err := RefetchArticle(context.Background(), newMemStore(), NewPageFetcher(c), pipeline, 42)
	if err == nil {
		t.Fatal("expected error for unknown article")
	}
}

func TestRefetchArticleFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	store := newMemStore()
	ctx := context.Background()
	a := &Article{Title: "Original", URL: srv.URL, FullText: "kept", Score: -1}
	if _, err := store.InsertArticle(ctx, a); err != nil {
		t.Fatalf("seed: %v", err)
	}

	c := testConfig()
	pipeline := NewExtractionPipeline(&StubGenerator{}, c)
	if _, err := RefetchArticle(ctx, store, NewPageFetcher(c), pipeline, a.ID); err == nil {
		t.Fatal("expected error when the page fetch fails")
	}

	stored, _ := store.GetArticle(ctx, a.ID)
	if stored.FullText != "kept" {
		t.Errorf("failed refetch modified content: %q", stored.FullText)
	}
}
