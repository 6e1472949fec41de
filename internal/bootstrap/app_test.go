package bootstrap

import (
	"testing"
	"time"

	"triage-backend/internal/shared/config"
)

func TestBuildInferenceRequiresURLInProduction(t *testing.T) {
	cfg := config.Config{Env: "production"}

	if _, err := buildInference(cfg); err == nil {
		t.Fatalf("expected error for missing inference URL in production")
	}
}

func TestBuildInferenceFallsBackInDev(t *testing.T) {
	cfg := config.Config{Env: "development", InferenceTimeout: 100 * time.Second}

	client, err := buildInference(cfg)
	if err != nil {
		t.Fatalf("buildInference: %v", err)
	}
	if client == nil {
		t.Fatalf("expected placeholder client in dev")
	}
}

func TestBuildInferenceUsesConfiguredURL(t *testing.T) {
	cfg := config.Config{
		Env:              "production",
		InferenceURL:     "https://inference.example.com",
		InferenceAPIKey:  "key",
		InferenceTimeout: 100 * time.Second,
	}

	client, err := buildInference(cfg)
	if err != nil {
		t.Fatalf("buildInference: %v", err)
	}
	if client == nil {
		t.Fatalf("expected client")
	}
}
