package pipeline

import (
	"context"
	"sync"

	"snapshop-be/internal/model"
	"snapshop-be/pkg/llm"
)

// nopLogger keeps test output clean.
type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// stubEngine serves canned hits per image URL and can fail the first N calls.
type stubEngine struct {
	mu        sync.Mutex
	hits      map[string][]model.RetrievalHit
	failFirst int
	failAll   bool
	calls     int
	err       error
}

func (e *stubEngine) SearchByImage(ctx context.Context, imageURL string) ([]model.RetrievalHit, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.mu.Unlock()

	if e.failAll || call <= e.failFirst {
		if e.err != nil {
			return nil, e.err
		}
		return nil, context.DeadlineExceeded
	}
	return e.hits[imageURL], nil
}

func (e *stubEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// blockingEngine never answers until the context is cancelled.
type blockingEngine struct{}

func (blockingEngine) SearchByImage(ctx context.Context, imageURL string) ([]model.RetrievalHit, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

// stubLLM replays a fixed response (or error) for every Generate call and
// records the options the last call resolved.
type stubLLM struct {
	mu       sync.Mutex
	response string
	err      error
	opts     llm.Options
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, "", options...)
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = llm.Options{}
	for _, opt := range options {
		opt(&s.opts)
	}
	return s.response, s.err
}

func (s *stubLLM) lastOptions() llm.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func hit(link, title string) model.RetrievalHit {
	return model.RetrievalHit{Link: link, Title: title}
}

func links(hits []model.RetrievalHit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Link)
	}
	return out
}
