package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/decoda/decoda/internal/model"
)

func TestGenerateCarriesVendorCitations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "sonar",
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "Personal care is 01_011_0107_1_1.\n"}},
			},
			"usage":     map[string]any{"total_tokens": 42},
			"citations": []string{"https://www.ndis.gov.au/providers/pricing-arrangements"},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(model.LLMConfig{APIKey: "test-key", BaseURL: server.URL, Model: "sonar"})
	if err != nil {
		t.Fatal(err)
	}

	gen, err := provider.Generate(context.Background(), Request{Prompt: "code for personal care"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if gen.Text != "Personal care is 01_011_0107_1_1." {
		t.Errorf("text = %q", gen.Text)
	}
	if len(gen.Meta.Citations) != 1 ||
		gen.Meta.Citations[0].URL != "https://www.ndis.gov.au/providers/pricing-arrangements" {
		t.Errorf("meta citations = %+v", gen.Meta.Citations)
	}
	if gen.TokensUsed != 42 {
		t.Errorf("tokens = %d", gen.TokensUsed)
	}
}

func TestGenerateCarriesVendorSources(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "See the price guide."}},
			},
			"sources": []map[string]any{
				{"url": "https://www.ndis.gov.au/pricing", "title": "Pricing arrangements"},
			},
		})
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(model.LLMConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	gen, err := provider.Generate(context.Background(), Request{Prompt: "pricing"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(gen.Meta.Sources) != 1 || gen.Meta.Sources[0].Title != "Pricing arrangements" {
		t.Errorf("meta sources = %+v", gen.Meta.Sources)
	}
}

func TestGenerateEndpointError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"overloaded"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(model.LLMConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := provider.Generate(context.Background(), Request{Prompt: "anything"}); err == nil {
		t.Fatal("expected an error from a 503 endpoint")
	}
}

func TestGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(model.LLMConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := provider.Generate(context.Background(), Request{Prompt: "anything"}); err == nil {
		t.Fatal("expected an error when no choices are returned")
	}
}

func TestNewOpenAIProviderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider(model.LLMConfig{}); err == nil {
		t.Fatal("expected an error without an API key")
	}
}
