package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"snapshop-be/internal/model"
	"snapshop-be/internal/pkg/logger"
	"snapshop-be/pkg/llm"
	"snapshop-be/pkg/pipeline"

	"github.com/fatih/color"
)

// Offline pipeline dry run: canned lens and LLM responses, no network, no
// server. Useful for eyeballing filter/quota behavior after rule changes.

type cannedEngine struct{}

func (e *cannedEngine) SearchByImage(ctx context.Context, imageURL string) ([]model.RetrievalHit, error) {
	if imageURL == "https://cdn.example.com/photo.jpg" {
		return []model.RetrievalHit{
			{Link: "https://www.musinsa.com/products/1001", Title: "오버사이즈 울 코트 네이비"},
			{Link: "https://www.29cm.co.kr/product/2002", Title: "Wool Blend Coat Navy"},
			{Link: "https://www.pinterest.com/pin/3003", Title: "winter outfit inspiration"},
			{Link: "https://kream.co.kr/products/4004", Title: "New Balance 993 Grey"},
		}, nil
	}
	// Cropped shoe image
	return []model.RetrievalHit{
		{Link: "https://kream.co.kr/products/4004", Title: "New Balance 993 Grey"},
		{Link: "https://www.musinsa.com/products/5005", Title: "뉴발란스 993 그레이 스니커즈"},
		{Link: "https://www.amazon.com/dp/B0EXAMPLE", Title: "New Balance Men's 993 Sneaker"},
		{Link: "https://blog.naver.com/reviewer/6006", Title: "993 착용 후기"},
		{Link: "https://www.ssg.com/item/7007", Title: "뉴발란스 샌들 SD2205"},
	}, nil
}

type cannedLLM struct{}

func (p *cannedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", fmt.Errorf("not used")
}

func (p *cannedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if strings.Contains(prompt, "category") && !strings.Contains(prompt, "Sub-type") {
		// Whole-photo fallback call infers the category itself.
		return `{"category": "tops", "links": ["https://www.musinsa.com/products/1001", "https://www.29cm.co.kr/product/2002"]}`, nil
	}
	return `{"links": ["https://kream.co.kr/products/4004", "https://www.musinsa.com/products/5005", "https://www.amazon.com/dp/B0EXAMPLE"]}`, nil
}

type colorSink struct{}

func (s *colorSink) ItemCompleted(requestID string, item model.ItemResult) {
	c := color.New(color.FgGreen)
	if item.Provenance != model.ProvenanceLLM {
		c = color.New(color.FgYellow)
	}
	c.Printf("  [%s] %s: %d products (provenance=%s, retrieval=%dms, rank=%dms)\n",
		requestID[:8], item.ItemKey, len(item.Products), item.Provenance,
		item.Timing.RetrievalMs, item.Timing.RankMs)
}

func (s *colorSink) SearchCompleted(requestID string, result model.SearchResult) {
	color.Cyan("  [%s] completed: %d items in %dms (llm=%d fallback=%d none=%d error=%d timeout=%d)",
		requestID[:8], len(result.Items), result.TotalMs,
		result.SourceCounts.LLM, result.SourceCounts.Fallback, result.SourceCounts.None,
		result.SourceCounts.Error, result.SourceCounts.Timeout)
}

func main() {
	color.White("=== Search Pipeline Simulation ===")

	log := logger.NewIsolatedLogger("logs/simulation.log")
	retriever := pipeline.NewRetriever(&cannedEngine{}, time.Minute, log)
	ranker := pipeline.NewRanker(&cannedLLM{}, 30*time.Second, log)
	validator := pipeline.NewValidator(log)
	fallback := pipeline.NewFallbackRunner(retriever, ranker, validator, log)
	aggregator := pipeline.NewAggregator(retriever, ranker, validator, fallback, 2*time.Minute, &colorSink{}, log)

	candidates := []model.Candidate{
		{
			ItemKey:         "shoes_1",
			MappedCategory:  model.CategoryShoes,
			Confidence:      1.0,
			Description:     "grey sneaker",
			CroppedImageURL: "https://cdn.example.com/photo_crop_shoes.jpg",
		},
	}

	color.White("\nScenario 1: one confirmed candidate")
	result := aggregator.Run(context.Background(), "aaaaaaaa-sim-0001", "https://cdn.example.com/photo.jpg", candidates)
	printProducts(result)

	color.White("\nScenario 2: zero candidates (whole-photo fallback)")
	result = aggregator.Run(context.Background(), "bbbbbbbb-sim-0002", "https://cdn.example.com/photo.jpg", nil)
	printProducts(result)
}

func printProducts(result model.SearchResult) {
	for key, item := range result.Items {
		fmt.Printf("  %s:\n", key)
		for i, p := range item.Products {
			fmt.Printf("    %d. %s\n       %s\n", i+1, p.Title, p.Link)
		}
	}
}
