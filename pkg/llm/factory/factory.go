package factory

import (
	"fmt"

	"snapshop-be/pkg/llm"
	"snapshop-be/pkg/llm/gemini"
	"snapshop-be/pkg/llm/ollama"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, geminiAPIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(geminiAPIKey, modelName), nil
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
