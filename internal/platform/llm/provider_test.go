package llm

import (
	"context"
	"testing"
)

func TestNewOpenAIProvider_NoKeySkips(t *testing.T) {
	if p := NewOpenAIProvider("", "gpt-4o-mini"); p != nil {
		t.Fatal("expected nil provider without an API key")
	}
}

func TestNewOpenAIProvider_DefaultsModel(t *testing.T) {
	p := NewOpenAIProvider("sk-test", "")
	if p == nil {
		t.Fatal("expected provider with API key")
	}
	if p.model != "gpt-4o-mini" {
		t.Fatalf("expected default model, got %q", p.model)
	}
	if p.Name() != "openai" {
		t.Fatalf("unexpected provider name %q", p.Name())
	}
}

func TestNewGeminiProvider_NoKeySkips(t *testing.T) {
	p, err := NewGeminiProvider(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Fatal("expected nil provider without an API key")
	}
}

func TestGenerateReply_UninitializedProvidersError(t *testing.T) {
	var oa *OpenAIProvider
	if _, err := oa.GenerateReply(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from nil openai provider")
	}

	var gm *GeminiProvider
	if _, err := gm.GenerateReply(context.Background(), "hello"); err == nil {
		t.Fatal("expected error from nil gemini provider")
	}
}
