// Package prompt assembles the single request sent to the language model.
package prompt

import (
	_ "embed"
	"strings"
)

// DefaultMaxChars caps how many characters of each document reach the prompt.
const DefaultMaxChars = 1000

// SystemInstruction is sent as the system message alongside every prompt.
const SystemInstruction = "You are a professional career advisor specializing in matching candidates to job positions. " +
	"Your task is to carefully analyze CVs and job descriptions to select the most suitable candidate. " +
	"You evaluate candidates based on their skills, work experience, qualifications, achievements, and potential fit for the role."

// Labels of one candidate entry.
const (
	entryFile    = "📄 **File:** "
	entryContent = "📝 **CV Content:** "
)

//go:embed template.md
var promptTemplate string

// Candidate is one document as it appears in the prompt.
type Candidate struct {
	Name string
	Text string
}

// Builder formats prompts. The zero value uses DefaultMaxChars.
type Builder struct {
	MaxChars int
}

// Build formats the prompt with the default character cap.
func Build(jobDescription string, candidates []Candidate) string {
	return Builder{}.Build(jobDescription, candidates)
}

// Build returns the prompt for jobDescription and candidates. The result depends
// only on its inputs, and candidates appear in the order given.
func (b Builder) Build(jobDescription string, candidates []Candidate) string {
	limit := b.MaxChars
	if limit <= 0 {
		limit = DefaultMaxChars
	}

	var list strings.Builder
	for _, candidate := range candidates {
		list.WriteString(entryFile)
		list.WriteString(candidate.Name)
		list.WriteString("\n")
		list.WriteString(entryContent)
		list.WriteString(Truncate(candidate.Text, limit))
		list.WriteString("...\n\n")
	}

	// A single-pass replacer keeps placeholders inside user text untouched.
	replacer := strings.NewReplacer(
		"{{JOB_DESCRIPTION}}", jobDescription,
		"{{CANDIDATES}}", list.String(),
	)
	return replacer.Replace(promptTemplate)
}

// Truncate returns at most limit characters of s without splitting a UTF-8 sequence.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
