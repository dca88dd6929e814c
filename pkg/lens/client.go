package lens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"snapshop-be/internal/model"
)

// Engine is the reverse-image-search contract the pipeline depends on.
// Implementations return organic visual matches for one image URL.
type Engine interface {
	SearchByImage(ctx context.Context, imageURL string) ([]model.RetrievalHit, error)
}

// SerpApiClient talks to the SerpApi Google Lens engine.
type SerpApiClient struct {
	APIKey   string
	Locale   string // country parameter, e.g. "kr"
	Language string // hl parameter, e.g. "ko"
	Endpoint string
	Client   *http.Client
}

var _ Engine = &SerpApiClient{}

func NewSerpApiClient(apiKey, locale, language string, timeout time.Duration) *SerpApiClient {
	return &SerpApiClient{
		APIKey:   apiKey,
		Locale:   locale,
		Language: language,
		Endpoint: "https://serpapi.com/search.json",
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// --- Response structs (Internal to this package) ---

type serpApiVisualMatch struct {
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Thumbnail string `json:"thumbnail"`
	Snippet   string `json:"snippet"`
}

type serpApiResponse struct {
	VisualMatches []serpApiVisualMatch `json:"visual_matches"`
	Error         string               `json:"error"`
}

func (c *SerpApiClient) SearchByImage(ctx context.Context, imageURL string) ([]model.RetrievalHit, error) {
	params := url.Values{}
	params.Add("engine", "google_lens")
	params.Add("url", imageURL)
	params.Add("api_key", c.APIKey)
	params.Add("hl", c.Language)
	params.Add("country", c.Locale)

	req, err := http.NewRequestWithContext(ctx, "GET", c.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	res, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lens request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"status error, got status %d. with response body %s",
			res.StatusCode,
			string(body),
		)
	}

	var parsed serpApiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("lens engine error: %s", parsed.Error)
	}

	hits := make([]model.RetrievalHit, 0, len(parsed.VisualMatches))
	for _, vm := range parsed.VisualMatches {
		if vm.Link == "" {
			continue
		}
		hits = append(hits, model.RetrievalHit{
			Link:      vm.Link,
			Title:     vm.Title,
			Thumbnail: vm.Thumbnail,
			Snippet:   vm.Snippet,
		})
	}

	return hits, nil
}
