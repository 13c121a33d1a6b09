// Package ai holds the provider-neutral contract for the language model call.
package ai

import (
	"context"
	"errors"
	"strings"
)

// ErrorPrefix starts the text shown in place of a completion that failed.
const ErrorPrefix = "Error during completion call: "

const (
	DefaultTemperature     float32 = 0.1
	DefaultMaxOutputTokens int32   = 500
)

// Completer sends one prompt to a language model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Settings are the sampling parameters shared by all providers.
// A nil Temperature means unset; zero is a valid, fully deterministic value.
type Settings struct {
	Model             string
	SystemInstruction string
	Temperature       *float32
	MaxOutputTokens   int32
}

// WithDefaults fills unset sampling parameters.
func (s Settings) WithDefaults() Settings {
	if s.Temperature == nil || *s.Temperature < 0 {
		temperature := DefaultTemperature
		s.Temperature = &temperature
	}
	if s.MaxOutputTokens <= 0 {
		s.MaxOutputTokens = DefaultMaxOutputTokens
	}
	return s
}

// ServiceError wraps any failure of the completion call.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	if e.Provider == "" {
		return e.Err.Error()
	}
	return e.Provider + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Describe renders a completion failure as the text displayed to the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return ErrorPrefix + strings.TrimSpace(err.Error())
}

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = errors.New("model returned empty response")

// Unavailable is a Completer for a provider that could not be configured,
// for example because its API key is missing. Every call returns Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) Complete(context.Context, string) (string, error) {
	if u.Err == nil {
		return "", errors.New("completion provider is not configured")
	}
	return "", u.Err
}
