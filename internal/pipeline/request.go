package pipeline

import (
	"fmt"
	"strings"
)

const (
	FieldFolder         = "folder"
	FieldFiles          = "files"
	FieldJobDescription = "job_description"
)

// Request starts one run. Files are names inside Folder, in listing order.
type Request struct {
	Folder         string
	Files          []string
	JobDescription string
}

// ValidationError rejects a request before any work starts.
// Message is meant to be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks that folder, files and job description are all present.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Folder) == "" {
		return &ValidationError{Field: FieldFolder, Message: "Please select a folder first."}
	}
	if len(r.Files) == 0 {
		return &ValidationError{Field: FieldFiles, Message: "No valid CV files (.pdf or .docx) found in the selected folder."}
	}
	if strings.TrimSpace(r.JobDescription) == "" {
		return &ValidationError{Field: FieldJobDescription, Message: "Please enter a job description."}
	}
	return nil
}
