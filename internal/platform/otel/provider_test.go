package otel_test

import (
	"context"
	"testing"

	"github.com/louisbranch/nois/internal/platform/otel"
)

func TestSettingsActive(t *testing.T) {
	tests := []struct {
		settings otel.Settings
		want     bool
	}{
		{otel.Settings{}, false},
		{otel.Settings{Endpoint: "  "}, false},
		{otel.Settings{Endpoint: "http://localhost:4318"}, true},
		{otel.Settings{Endpoint: "http://localhost:4318", Enabled: "FALSE"}, false},
		{otel.Settings{Endpoint: "http://localhost:4318", Enabled: "true"}, true},
	}
	for _, tt := range tests {
		if got := tt.settings.Active(); got != tt.want {
			t.Fatalf("%+v.Active() = %v, want %v", tt.settings, got, tt.want)
		}
	}
}

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("NOIS_OTEL_ENDPOINT", "")
	t.Setenv("NOIS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("NOIS_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("NOIS_OTEL_ENABLED", "false")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no export happens.
	t.Setenv("NOIS_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("NOIS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	t.Setenv("NOIS_OTEL_ENDPOINT", "")
	t.Setenv("NOIS_OTEL_ENABLED", "")

	shutdown, err := otel.Setup(context.Background(), "noop-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
