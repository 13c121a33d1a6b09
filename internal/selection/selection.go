// Package selection decides which files of a folder are analysed as candidate resumes.
package selection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// ErrUnknownFilter is returned by Disable for a name that is not part of the chain.
var ErrUnknownFilter = errors.New("unknown filter")

// Filter represents a single selection step applied to candidate files.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ctx context.Context, files *Files) (Step, error)
}

// Step describes the result of executing a selection step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Selection runs filters in order over a listed folder.
type Selection struct {
	steps  []Filter
	logger *zap.Logger
}

func New(steps []Filter, logger *zap.Logger) *Selection {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selection{steps: steps, logger: logger}
}

// Default returns the standard chain: supported extensions, hidden files, exclude patterns.
func Default(exclude []string, logger *zap.Logger) *Selection {
	return New([]Filter{
		NewSupportedExtension(),
		NewHidden(),
		NewExcludePatterns(exclude),
	}, logger)
}

// Scan lists folder and applies every enabled filter.
func (s *Selection) Scan(ctx context.Context, folder string) (*Files, error) {
	files, err := List(folder)
	if err != nil {
		return nil, err
	}

	if err := s.Run(ctx, files); err != nil {
		return nil, err
	}

	s.logger.Debug("candidate files selected",
		zap.String("folder", folder),
		zap.Strings("files", files.Items),
	)

	return files, nil
}

// Run executes the filters sequentially, modifying files in place.
func (s *Selection) Run(ctx context.Context, files *Files) error {
	for _, step := range s.steps {
		if !step.IsEnabled() {
			s.logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		info, err := step.Apply(ctx, files)
		if err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		s.logger.Debug("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return nil
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the chain.
func (s *Selection) DisableByName(name, reason string) {
	for _, step := range s.steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Disable turns off every named filter with reason. Blank names are ignored;
// a name outside the chain fails before any filter is touched.
func (s *Selection) Disable(names []string, reason string) error {
	known := make([]string, 0, len(s.steps))
	for _, step := range s.steps {
		known = append(known, step.Name())
	}

	wanted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !slices.Contains(known, name) {
			return fmt.Errorf("%w %q (known: %s)", ErrUnknownFilter, name, strings.Join(known, ", "))
		}
		wanted = append(wanted, name)
	}

	for _, name := range wanted {
		s.DisableByName(name, reason)
		s.logger.Debug("filter disabled by configuration", zap.String("name", name), zap.String("reason", reason))
	}
	return nil
}

// Describe returns status entries for the filters of the chain.
func (s *Selection) Describe() []Status {
	statuses := make([]Status, 0, len(s.steps))
	for _, step := range s.steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
