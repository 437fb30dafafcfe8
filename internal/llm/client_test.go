package llm

import (
	"strings"
	"testing"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/config"
)

func TestNewClient(t *testing.T) {
	if _, err := NewClient(config.LLMConfig{Provider: "anthropic"}); err == nil {
		t.Error("anthropic without a key should fail")
	}
	if _, err := NewClient(config.LLMConfig{Provider: "anthropic", AnthropicKey: "k"}); err != nil {
		t.Errorf("anthropic with key: %v", err)
	}
	if _, err := NewClient(config.LLMConfig{Provider: "ollama"}); err != nil {
		t.Errorf("ollama should default its url and model: %v", err)
	}
	if _, err := NewClient(config.LLMConfig{Provider: "watson"}); err == nil {
		t.Error("unknown provider should fail")
	}
}

func TestInsightPrompt(t *testing.T) {
	prompt := InsightPrompt("GOALS:\n- Raise seed round\n")
	if !strings.Contains(prompt, "Raise seed round") {
		t.Error("context block not embedded in prompt")
	}
	for _, key := range []string{
		"primary_goal", "suggested_contacts", "connection_path",
		"dormant_contact", "network_insights",
	} {
		if !strings.Contains(prompt, key) {
			t.Errorf("prompt missing required key %q", key)
		}
	}
}
