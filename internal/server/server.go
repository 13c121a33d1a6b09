// Package server exposes analysis runs over a small local HTTP API.
package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/spigell/cv-ranker/internal/pipeline"
)

// FileLister returns the candidate files of folder in analysis order.
type FileLister func(ctx context.Context, folder string, exclude []string) ([]string, error)

type Server struct {
	runner *pipeline.Runner
	list   FileLister
	logger *zap.Logger
}

func New(runner *pipeline.Runner, list FileLister, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{runner: runner, list: list, logger: logger}
}

// App builds the fiber application with all routes registered.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cv-ranker",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestLogger(s.logger))

	api := app.Group("/api/v1")
	api.Get("/health", s.handleHealth)
	api.Get("/files", s.handleFiles)
	api.Post("/runs", s.handleStartRun)
	api.Get("/runs/current", s.handleCurrentRun)

	return app
}

type startRunRequest struct {
	Folder         string   `json:"folder"`
	JobDescription string   `json:"job_description"`
	Exclude        []string `json:"exclude"`
}

type fileEntry struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
}

type documentStatus struct {
	Name   string `json:"name"`
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}

type runResult struct {
	Text      string           `json:"text"`
	Failed    bool             `json:"failed"`
	Documents []documentStatus `json:"documents"`
}

type runResponse struct {
	ID         string     `json:"id"`
	State      string     `json:"state"`
	Progress   int        `json:"progress"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Result     *runResult `json:"result,omitempty"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"busy":   s.runner.Busy(),
		"time":   time.Now(),
	})
}

func (s *Server) handleFiles(c *fiber.Ctx) error {
	folder := strings.TrimSpace(c.Query("folder"))
	if folder == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Please select a folder first.")
	}

	files, err := s.list(c.UserContext(), folder, splitList(c.Query("exclude")))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	entries := make([]fileEntry, 0, len(files))
	for i, name := range files {
		entries = append(entries, fileEntry{Index: i + 1, Name: name})
	}

	return c.JSON(fiber.Map{
		"folder": folder,
		"files":  entries,
	})
}

func (s *Server) handleStartRun(c *fiber.Ctx) error {
	var body startRunRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req := pipeline.Request{
		Folder:         strings.TrimSpace(body.Folder),
		JobDescription: strings.TrimSpace(body.JobDescription),
	}

	if req.Folder != "" {
		files, err := s.list(c.UserContext(), req.Folder, body.Exclude)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.Files = files
	}

	id, _, err := s.runner.Start(c.UserContext(), req)
	if err != nil {
		var validationErr *pipeline.ValidationError
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Message,
				"field": validationErr.Field,
				"code":  fiber.StatusBadRequest,
			})
		case errors.Is(err, pipeline.ErrRunInProgress):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		default:
			return err
		}
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"id":    id,
		"files": req.Files,
	})
}

func (s *Server) handleCurrentRun(c *fiber.Ctx) error {
	snapshot, ok := s.runner.Current()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no analysis run has been started")
	}

	resp := runResponse{
		ID:        snapshot.ID,
		State:     string(snapshot.State),
		Progress:  snapshot.Progress,
		StartedAt: snapshot.StartedAt,
	}

	if !snapshot.FinishedAt.IsZero() {
		finished := snapshot.FinishedAt
		resp.FinishedAt = &finished
	}

	if snapshot.Result != nil {
		result := &runResult{
			Text:      snapshot.Result.Text,
			Failed:    snapshot.Result.Failed,
			Documents: make([]documentStatus, 0, len(snapshot.Result.Documents)),
		}
		for _, doc := range snapshot.Result.Documents {
			status := documentStatus{Name: doc.Name, Failed: doc.Failed()}
			if doc.Err != nil {
				status.Error = doc.Err.Error()
			}
			result.Documents = append(result.Documents, status)
		}
		resp.Result = result
	}

	return c.JSON(resp)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
