package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/document"
	"github.com/spigell/cv-ranker/internal/logger"
	"github.com/spigell/cv-ranker/internal/pipeline"
	"github.com/spigell/cv-ranker/internal/prompt"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var errNotConfirmed = errors.New("analysis was not confirmed")

var confirmPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Rank the resumes of a folder against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("folder", "f", "", "folder with candidate resumes (.pdf, .docx)")
	analyzeCmd.Flags().String("job", "", "job description text")
	analyzeCmd.Flags().String("job-file", "", "file with the job description")
	analyzeCmd.Flags().StringSliceP("exclude", "e", nil, "glob patterns of file names to skip")
	analyzeCmd.Flags().StringSlice("disable-filter", nil, "selection filters to turn off: supported_extension, hidden, exclude")
	analyzeCmd.Flags().String("provider", "", "completion provider: openai or gemini")
	analyzeCmd.Flags().String("model", "", "model of the selected provider")
	analyzeCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before calling the model")
	analyzeCmd.Flags().StringP("output", "o", "", "write the result to this file instead of stdout")

	viper.BindPFlag("folder", analyzeCmd.Flags().Lookup("folder"))
	viper.BindPFlag("job-description", analyzeCmd.Flags().Lookup("job"))
	viper.BindPFlag("job-description-file", analyzeCmd.Flags().Lookup("job-file"))
	viper.BindPFlag("exclude", analyzeCmd.Flags().Lookup("exclude"))
	viper.BindPFlag("disabled-filters", analyzeCmd.Flags().Lookup("disable-filter"))
	viper.BindPFlag("ai.provider", analyzeCmd.Flags().Lookup("provider"))
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), cmd.Name())
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	applyModelFlag(cmd, config.AI)

	logger.Info("starting the cv-ranker", zap.String("version", version))

	autoApprove := cmd.Flag("auto-approve").Value.String() == "true"

	jobDescription, err := resolveJobDescription(config)
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}
	if jobDescription == "" && !autoApprove {
		jobDescription, err = askJobDescription()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	req, err := buildRequest(ctx, config.Folder, config.Exclude, config.DisabledFilters, jobDescription, logger)
	if err != nil {
		logger.Fatal("listing candidate files", zap.Error(err))
	}

	if err := req.Validate(); err != nil {
		var validationErr *pipeline.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), validationErr.Message)
			os.Exit(1)
		}
		logger.Fatal("invalid request", zap.Error(err))
	}

	for i, name := range req.Files {
		logger.Info("candidate", zap.Int("index", i+1), zap.String("file", name))
	}

	if !autoApprove {
		if err := confirm(); err != nil {
			logger.Info("exiting", zap.String("reason", err.Error()))
			return
		}
	}

	runner := newRunner(ctx, config, logger)

	runID, events, err := runner.Start(ctx, req)
	if err != nil {
		logger.Fatal("starting analysis", zap.Error(err))
	}

	result := consume(events, logger.With(zap.String("run_id", runID)))
	if result == nil {
		logger.Fatal("analysis finished without a result")
	}

	if err := writeResult(cmd.OutOrStdout(), cmd.Flag("output").Value.String(), result.Text); err != nil {
		logger.Fatal("writing result", zap.Error(err))
	}
}

// newRunner wires extraction, prompt building and the configured provider.
func newRunner(ctx context.Context, config *Config, logger *zap.Logger) *pipeline.Runner {
	completer := newCompleter(ctx, config.AI, logger)
	builder := prompt.Builder{MaxChars: config.Prompt.MaxCharsPerDocument}
	worker := pipeline.NewWorker(document.NewExtractor(), completer, builder, logger)
	return pipeline.NewRunner(worker, logger)
}

// buildRequest lists the candidate files of folder. An empty folder is left
// for Validate to report.
func buildRequest(ctx context.Context, folder string, exclude, disabled []string, jobDescription string, logger *zap.Logger) (pipeline.Request, error) {
	req := pipeline.Request{
		Folder:         strings.TrimSpace(folder),
		JobDescription: strings.TrimSpace(jobDescription),
	}
	if req.Folder == "" {
		return req, nil
	}

	chain, err := newSelection(exclude, disabled, logger)
	if err != nil {
		return req, err
	}

	files, err := chain.Scan(ctx, req.Folder)
	if err != nil {
		return req, err
	}
	req.Files = files.Items

	return req, nil
}

// resolveJobDescription prefers the inline description over the file.
func resolveJobDescription(config *Config) (string, error) {
	if text := strings.TrimSpace(config.JobDescription); text != "" {
		return text, nil
	}

	path := strings.TrimSpace(config.JobDescriptionFile)
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading job description file %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

func askJobDescription() (string, error) {
	input := promptui.Prompt{
		Label: "Job description",
	}
	text, err := input.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func confirm() error {
	_, action, err := confirmPrompt.Run()
	if err != nil {
		return err
	}
	if action != PromptYes {
		return errNotConfirmed
	}
	return nil
}

// applyModelFlag routes --model to the provider selected for this run.
func applyModelFlag(cmd *cobra.Command, cfg *AIConfig) {
	flag := cmd.Flag("model")
	if flag == nil || !flag.Changed {
		return
	}

	model := strings.TrimSpace(flag.Value.String())
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case providerGemini:
		cfg.Gemini.Model = model
	default:
		cfg.OpenAI.Model = model
	}
}

// consume logs progress until the run's channel is closed and returns its result.
func consume(events <-chan pipeline.Event, logger *zap.Logger) *pipeline.Result {
	var result *pipeline.Result
	for ev := range events {
		switch ev.Kind {
		case pipeline.EventState:
			logger.Info("analysis state", zap.String("state", string(ev.State)))
		case pipeline.EventProgress:
			logger.Info("analysis progress", zap.Int("progress", ev.Progress))
		case pipeline.EventResult:
			result = ev.Result
			for _, doc := range result.Documents {
				if doc.Failed() {
					logger.Warn("document was not read", zap.String("file", doc.Name), zap.Error(doc.Err))
				}
			}
			if result.Failed {
				logger.Warn("completion call failed, the result holds the error")
			}
		}
	}
	return result
}

// writeResult prints text verbatim to out, or to path when it is set.
func writeResult(out io.Writer, path, text string) error {
	if path = strings.TrimSpace(path); path != "" {
		return os.WriteFile(path, []byte(text+"\n"), 0o644)
	}
	_, err := fmt.Fprintln(out, text)
	return err
}
