package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/ai"
	"github.com/spigell/cv-ranker/internal/pipeline"
	"github.com/spigell/cv-ranker/internal/secrets"
	"github.com/spigell/cv-ranker/internal/selection"
)

func TestResolveJobDescription(t *testing.T) {
	dir := t.TempDir()
	jobFile := filepath.Join(dir, "job.txt")
	if err := os.WriteFile(jobFile, []byte("  Data Analyst\n"), 0o644); err != nil {
		t.Fatalf("write job file: %v", err)
	}

	tests := []struct {
		name    string
		config  *Config
		want    string
		wantErr bool
	}{
		{name: "inline wins", config: &Config{JobDescription: " Senior Java Engineer ", JobDescriptionFile: jobFile}, want: "Senior Java Engineer"},
		{name: "file", config: &Config{JobDescriptionFile: jobFile}, want: "Data Analyst"},
		{name: "nothing", config: &Config{}, want: ""},
		{name: "missing file", config: &Config{JobDescriptionFile: filepath.Join(dir, "absent.txt")}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveJobDescription(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuildRequestWithoutFolderIsRejectedByValidation(t *testing.T) {
	req, err := buildRequest(context.Background(), " ", nil, nil, "job", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var validationErr *pipeline.ValidationError
	if !errors.As(req.Validate(), &validationErr) || validationErr.Message != "Please select a folder first." {
		t.Fatalf("unexpected validation result: %v", req.Validate())
	}
}

func TestBuildRequestListsCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.docx", "readme.md", "draft.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	req, err := buildRequest(context.Background(), dir, []string{"draft*"}, nil, "job", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(req.Files, ",") != "a.docx,b.pdf" {
		t.Fatalf("unexpected files: %v", req.Files)
	}
}

func TestBuildRequestHonoursDisabledFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{".archived.pdf", "a.docx"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	req, err := buildRequest(context.Background(), dir, nil, []string{"hidden"}, "job", zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(req.Files, ",") != ".archived.pdf,a.docx" {
		t.Fatalf("unexpected files: %v", req.Files)
	}

	_, err = buildRequest(context.Background(), dir, nil, []string{"hiden"}, "job", zap.NewNop())
	if !errors.Is(err, selection.ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestNewCompleterWithoutKeyIsUnavailable(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	completer := newCompleter(context.Background(), &AIConfig{Provider: "openai"}, zap.NewNop())
	if _, ok := completer.(ai.Unavailable); !ok {
		t.Fatalf("expected unavailable completer, got %T", completer)
	}

	_, err := completer.Complete(context.Background(), "prompt")
	if !errors.Is(err, secrets.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if got := ai.Describe(err); !strings.HasPrefix(got, ai.ErrorPrefix) || !strings.Contains(got, "OPENAI_API_KEY") {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestNewCompleterRejectsUnknownProvider(t *testing.T) {
	completer := newCompleter(context.Background(), &AIConfig{Provider: "claude"}, zap.NewNop())

	_, err := completer.Complete(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "unsupported ai provider") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewCompleterOpenAI(t *testing.T) {
	var got struct {
		Model       string   `json:"model"`
		Temperature *float32 `json:"temperature"`
		Messages    []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer from-env" {
			t.Errorf("unexpected authorization header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"**Best Candidate:** a.pdf"}}]}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "from-env")

	zero := float32(0)
	completer := newCompleter(context.Background(), &AIConfig{
		Provider:    "openai",
		Temperature: &zero,
		OpenAI:      &OpenAIConfig{Model: "gpt-4o-mini", BaseURL: srv.URL},
	}, zap.NewNop())

	text, err := completer.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "**Best Candidate:** a.pdf" {
		t.Fatalf("unexpected text: %q", text)
	}
	if got.Model != "gpt-4o-mini" || len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 0 {
		t.Fatalf("expected configured zero temperature to be sent, got %v", got.Temperature)
	}
}

func TestApplyModelFlag(t *testing.T) {
	cfg := &AIConfig{Provider: "gemini", OpenAI: &OpenAIConfig{}, Gemini: &GeminiConfig{}}

	if err := analyzeCmd.Flags().Set("model", "gemini-2.5-pro"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	t.Cleanup(func() {
		flag := analyzeCmd.Flag("model")
		flag.Value.Set("")
		flag.Changed = false
	})

	applyModelFlag(analyzeCmd, cfg)
	if cfg.Gemini.Model != "gemini-2.5-pro" || cfg.OpenAI.Model != "" {
		t.Fatalf("unexpected models: openai=%q gemini=%q", cfg.OpenAI.Model, cfg.Gemini.Model)
	}
}

func TestConsumeReturnsResult(t *testing.T) {
	events := make(chan pipeline.Event, 4)
	events <- pipeline.Event{Kind: pipeline.EventState, State: pipeline.StateExtracting}
	events <- pipeline.Event{Kind: pipeline.EventProgress, Progress: 50}
	events <- pipeline.Event{Kind: pipeline.EventResult, Result: &pipeline.Result{Text: "done"}}
	close(events)

	result := consume(events, zap.NewNop())
	if result == nil || result.Text != "done" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestWriteResult(t *testing.T) {
	var out bytes.Buffer
	if err := writeResult(&out, "", "ranking"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "ranking\n" {
		t.Fatalf("unexpected stdout: %q", out.String())
	}

	path := filepath.Join(t.TempDir(), "result.md")
	out.Reset()
	if err := writeResult(&out, path, "ranking"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read result: %v", err)
	}
	if string(data) != "ranking\n" || out.Len() != 0 {
		t.Fatalf("unexpected output: file=%q stdout=%q", data, out.String())
	}
}

func TestGetConfigDecodesListsAndDurations(t *testing.T) {
	t.Setenv("CV_RANKER_FOLDER", "/tmp/cvs")

	cfg, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Folder != "/tmp/cvs" {
		t.Fatalf("expected folder from environment, got %q", cfg.Folder)
	}
	if cfg.AI.Timeout.String() != "2m0s" {
		t.Fatalf("expected default timeout, got %s", cfg.AI.Timeout)
	}
	if cfg.Prompt.MaxCharsPerDocument != 1000 || cfg.Serve.Listen != "127.0.0.1:8080" {
		t.Fatalf("unexpected defaults: %+v %+v", cfg.Prompt, cfg.Serve)
	}
}
