package lens

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(endpoint string) *SerpApiClient {
	c := NewSerpApiClient("test-key", "kr", "ko", 5*time.Second)
	c.Endpoint = endpoint
	return c
}

func TestSearchByImage(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"engine":  r.URL.Query().Get("engine"),
			"url":     r.URL.Query().Get("url"),
			"api_key": r.URL.Query().Get("api_key"),
			"hl":      r.URL.Query().Get("hl"),
			"country": r.URL.Query().Get("country"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"visual_matches": [
				{"position": 1, "title": "울 코트 네이비", "link": "https://www.musinsa.com/products/1001", "thumbnail": "https://img.example/1.jpg"},
				{"position": 2, "title": "no link entry", "link": ""},
				{"position": 3, "title": "Wool Coat", "link": "https://www.29cm.co.kr/product/2002", "snippet": "free shipping"}
			]
		}`))
	}))
	defer srv.Close()

	hits, err := newTestClient(srv.URL).SearchByImage(context.Background(), "https://cdn.example/photo.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantQuery := map[string]string{
		"engine":  "google_lens",
		"url":     "https://cdn.example/photo.jpg",
		"api_key": "test-key",
		"hl":      "ko",
		"country": "kr",
	}
	for k, want := range wantQuery {
		if gotQuery[k] != want {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], want)
		}
	}

	// Link-less matches are dropped.
	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Link != "https://www.musinsa.com/products/1001" || hits[0].Title != "울 코트 네이비" {
		t.Errorf("hit 0 = %+v", hits[0])
	}
	if hits[0].Thumbnail != "https://img.example/1.jpg" {
		t.Errorf("thumbnail not carried: %+v", hits[0])
	}
	if hits[1].Snippet != "free shipping" {
		t.Errorf("snippet not carried: %+v", hits[1])
	}
}

func TestSearchByImageEngineError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "Google Lens hasn't returned any results for this query."}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).SearchByImage(context.Background(), "https://cdn.example/photo.jpg"); err == nil {
		t.Fatal("want error when the engine reports one")
	}
}

func TestSearchByImageStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).SearchByImage(context.Background(), "https://cdn.example/photo.jpg"); err == nil {
		t.Fatal("want error on non-200 status")
	}
}
