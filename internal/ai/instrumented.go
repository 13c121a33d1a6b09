package ai

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/utils"
)

const defaultMaxLogLength = 200

// Instrumented decorates a Completer with a call deadline and debug logging of
// truncated prompts and responses. Failures are wrapped in ServiceError.
type Instrumented struct {
	next      Completer
	provider  string
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

func NewInstrumented(next Completer, provider string, timeout time.Duration, maxLogLength int, logger *zap.Logger) *Instrumented {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Instrumented{
		next:      next,
		provider:  provider,
		timeout:   timeout,
		maxLogLen: maxLogLength,
		logger:    logger,
	}
}

func (i *Instrumented) Complete(ctx context.Context, prompt string) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	i.logger.Debug("completion request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, i.maxLogLen)),
	)

	started := time.Now()
	raw, err := i.next.Complete(ctx, prompt)
	if err != nil {
		i.logger.Warn("completion failed",
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return "", &ServiceError{Provider: i.provider, Err: err}
	}

	i.logger.Debug("completion response",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, i.maxLogLen)),
	)

	return raw, nil
}
