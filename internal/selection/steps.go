package selection

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spigell/cv-ranker/internal/document"
)

type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

type supportedExtensionFilter struct {
	toggle
}

// NewSupportedExtension creates a filter keeping only .pdf and .docx files.
func NewSupportedExtension() Filter {
	return &supportedExtensionFilter{}
}

func (f *supportedExtensionFilter) Name() string { return "supported_extension" }

func (f *supportedExtensionFilter) Apply(_ context.Context, files *Files) (Step, error) {
	initial := files.Len()
	removed := files.Exclude(func(name string) bool {
		return !document.Supported(name)
	})
	return Step{Initial: initial, Dropped: len(removed), Left: files.Len()}, nil
}

func (f *supportedExtensionFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"extensions": strings.Join(document.SupportedExtensions(), ",")},
	}
}

type hiddenFilter struct {
	toggle
}

// NewHidden creates a filter removing dot files and office lock files such as "~$cv.docx".
func NewHidden() Filter {
	return &hiddenFilter{}
}

func (f *hiddenFilter) Name() string { return "hidden" }

func (f *hiddenFilter) Apply(_ context.Context, files *Files) (Step, error) {
	initial := files.Len()
	removed := files.Exclude(func(name string) bool {
		return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$")
	})
	return Step{Initial: initial, Dropped: len(removed), Left: files.Len()}, nil
}

func (f *hiddenFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type excludePatternsFilter struct {
	toggle
	patterns []string
}

// NewExcludePatterns creates a filter removing files whose name matches any glob pattern.
func NewExcludePatterns(patterns []string) Filter {
	cleaned := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if pattern = strings.TrimSpace(pattern); pattern != "" {
			cleaned = append(cleaned, pattern)
		}
	}
	return &excludePatternsFilter{patterns: cleaned}
}

func (f *excludePatternsFilter) Name() string { return "exclude" }

func (f *excludePatternsFilter) Apply(_ context.Context, files *Files) (Step, error) {
	initial := files.Len()
	if len(f.patterns) == 0 {
		return Step{Initial: initial, Left: initial}, nil
	}

	for _, pattern := range f.patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return Step{}, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
	}

	removed := files.Exclude(func(name string) bool {
		lower := strings.ToLower(name)
		for _, pattern := range f.patterns {
			if ok, _ := filepath.Match(strings.ToLower(pattern), lower); ok {
				return true
			}
		}
		return false
	})

	return Step{Initial: initial, Dropped: len(removed), Left: files.Len()}, nil
}

func (f *excludePatternsFilter) Status() Status {
	details := map[string]string{}
	if len(f.patterns) > 0 {
		details["patterns"] = strings.Join(f.patterns, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
