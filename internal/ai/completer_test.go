package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDescribe(t *testing.T) {
	if got := Describe(nil); got != "" {
		t.Fatalf("expected empty string for nil error, got %q", got)
	}

	err := &ServiceError{Provider: "openai", Err: errors.New("401 invalid api key ")}
	got := Describe(err)
	if got != "Error during completion call: openai: 401 invalid api key" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("openai api key is not configured")
	_, err := Unavailable{Err: cause}.Complete(context.Background(), "prompt")
	if !errors.Is(err, cause) {
		t.Fatalf("expected configured cause, got %v", err)
	}

	if _, err := (Unavailable{}).Complete(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error from zero Unavailable")
	}
}

func ptr[T any](v T) *T { return &v }

func TestSettingsWithDefaults(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float32
		want        float32
	}{
		{name: "unset", temperature: nil, want: DefaultTemperature},
		{name: "zero is kept", temperature: ptr(float32(0)), want: 0},
		{name: "custom", temperature: ptr(float32(0.7)), want: 0.7},
		{name: "negative", temperature: ptr(float32(-1)), want: DefaultTemperature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{Temperature: tt.temperature}.WithDefaults()
			if s.Temperature == nil || *s.Temperature != tt.want {
				t.Fatalf("expected temperature %v, got %v", tt.want, s.Temperature)
			}
			if s.MaxOutputTokens != DefaultMaxOutputTokens {
				t.Fatalf("unexpected max output tokens: %d", s.MaxOutputTokens)
			}
		})
	}

	custom := Settings{MaxOutputTokens: 1200}.WithDefaults()
	if custom.MaxOutputTokens != 1200 {
		t.Fatalf("custom max output tokens overwritten: %+v", custom)
	}
}

func TestInstrumentedWrapsErrors(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	cause := errors.New("connection reset")

	completer := NewInstrumented(CompleterFunc(func(context.Context, string) (string, error) {
		return "", cause
	}), "gemini", 0, 0, zap.New(core))

	_, err := completer.Complete(context.Background(), "prompt")
	var serviceErr *ServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected ServiceError, got %T", err)
	}
	if serviceErr.Provider != "gemini" || !errors.Is(err, cause) {
		t.Fatalf("unexpected service error: %+v", serviceErr)
	}
	if observed.FilterMessage("completion failed").Len() != 1 {
		t.Fatal("expected failure to be logged")
	}
}

func TestInstrumentedAppliesTimeout(t *testing.T) {
	completer := NewInstrumented(CompleterFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), "openai", 10*time.Millisecond, 0, nil)

	_, err := completer.Complete(context.Background(), "prompt")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestInstrumentedLogsTruncatedPreview(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)

	completer := NewInstrumented(CompleterFunc(func(context.Context, string) (string, error) {
		return "Best Candidate: a.pdf", nil
	}), "openai", 0, 5, zap.New(core))

	out, err := completer.Complete(context.Background(), strings.Repeat("p", 50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Best Candidate: a.pdf" {
		t.Fatalf("response changed: %q", out)
	}

	requests := observed.FilterMessage("completion request").All()
	if len(requests) != 1 {
		t.Fatalf("expected one request log, got %d", len(requests))
	}
	if preview := requests[0].ContextMap()["prompt_preview"]; preview != "ppppp..." {
		t.Fatalf("unexpected preview: %v", preview)
	}
}
