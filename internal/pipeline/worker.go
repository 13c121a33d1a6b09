// Package pipeline runs the extract, build and call sequence of one analysis.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/ai"
	"github.com/spigell/cv-ranker/internal/document"
	"github.com/spigell/cv-ranker/internal/prompt"
)

// Extractor reads one candidate document. It reports failures inside the Document.
type Extractor interface {
	Extract(path string) document.Document
}

// Worker executes runs. It holds no per-run state and may be reused.
type Worker struct {
	extractor Extractor
	completer ai.Completer
	builder   prompt.Builder
	logger    *zap.Logger
}

func NewWorker(extractor Extractor, completer ai.Completer, builder prompt.Builder, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if completer == nil {
		completer = ai.Unavailable{}
	}

	return &Worker{
		extractor: extractor,
		completer: completer,
		builder:   builder,
		logger:    logger,
	}
}

// Run executes req from Extracting to Done. Extraction and completion
// failures are folded into the result text; Run always finishes by emitting
// a single EventResult and returns the same result.
func (w *Worker) Run(ctx context.Context, runID string, req Request, emit Sink) Result {
	if emit == nil {
		emit = func(Event) {}
	}
	logger := w.logger.With(zap.String("run_id", runID))

	setState := func(state State) {
		logger.Debug("run state", zap.String("state", string(state)))
		emit(Event{RunID: runID, Kind: EventState, State: state})
	}
	progress := func(value int) {
		emit(Event{RunID: runID, Kind: EventProgress, Progress: value})
	}

	setState(StateExtracting)
	documents := w.extract(logger, req, progress)

	setState(StateBuilding)
	candidates := make([]prompt.Candidate, 0, len(documents))
	for _, doc := range documents {
		candidates = append(candidates, prompt.Candidate{Name: doc.Name, Text: doc.Text})
	}
	built := w.builder.Build(req.JobDescription, candidates)
	progress(ProgressPromptReady)

	setState(StateCalling)
	text, failed := w.call(ctx, logger, built)
	progress(ProgressDone)

	result := Result{
		RunID:     runID,
		Text:      text,
		Failed:    failed,
		Documents: documents,
		Prompt:    built,
	}

	setState(StateDone)
	emit(Event{RunID: runID, Kind: EventResult, State: StateDone, Result: &result})

	logger.Info("run finished",
		zap.Int("documents", len(documents)),
		zap.Bool("completion_failed", failed),
	)

	return result
}

func (w *Worker) extract(logger *zap.Logger, req Request, progress func(int)) []document.Document {
	total := len(req.Files)
	documents := make([]document.Document, 0, total)

	for i, name := range req.Files {
		path := filepath.Join(req.Folder, name)
		doc := w.extractor.Extract(path)
		doc.Name = name

		switch {
		case doc.Failed():
			logger.Warn("text extraction failed", zap.String("file", name), zap.Error(doc.Err))
		case strings.TrimSpace(doc.Text) == "":
			logger.Warn("document has no extractable text", zap.String("file", name))
		default:
			logger.Debug("text extracted", zap.String("file", name), zap.Int("length", len(doc.Text)))
		}

		documents = append(documents, doc)
		progress(ProgressExtracted * (i + 1) / total)
	}

	return documents
}

func (w *Worker) call(ctx context.Context, logger *zap.Logger, built string) (text string, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("completion provider panicked: %v", r)
			logger.Error("completion call failed", zap.Error(err))
			text, failed = ai.Describe(err), true
		}
	}()

	reply, err := w.completer.Complete(ctx, built)
	if err != nil {
		logger.Error("completion call failed", zap.Error(err))
		return ai.Describe(err), true
	}

	return reply, false
}
