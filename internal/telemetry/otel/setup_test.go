package otel

import (
	"context"
	"testing"
)

func TestNewProvidersEmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	providers, err := NewProviders(ctx, "", "test-service", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.LoggerProvider == nil {
		t.Fatal("providers should all be non-nil for empty endpoint")
	}
	if err := providers.Shutdown(ctx); err != nil {
		t.Errorf("shutdown should be a no-op for empty endpoint: %v", err)
	}
}

func TestNewProvidersInvalidEndpoint(t *testing.T) {
	if _, err := NewProviders(context.Background(), "://bad", "test-service", false); err == nil {
		t.Error("expected error for malformed endpoint")
	}
}

func TestNewSlogLoggerFallback(t *testing.T) {
	var p *Providers
	if logger := p.NewSlogLogger("test"); logger == nil {
		t.Fatal("nil receiver should still return a logger")
	}
	providers, err := NewProviders(context.Background(), "", "test-service", false)
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	if logger := providers.NewSlogLogger("test"); logger == nil {
		t.Fatal("expected a bridged logger")
	}
}
