package pipeline

import "github.com/spigell/cv-ranker/internal/document"

// State is a stage of a run.
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateBuilding   State = "building"
	StateCalling    State = "calling"
	StateDone       State = "done"
)

const (
	// ProgressExtracted is reached once every document has been read.
	ProgressExtracted = 50
	// ProgressPromptReady is emitted right before the completion call.
	ProgressPromptReady = 55
	ProgressDone        = 100
)

type EventKind int

const (
	EventState EventKind = iota
	EventProgress
	EventResult
)

func (k EventKind) String() string {
	switch k {
	case EventState:
		return "state"
	case EventProgress:
		return "progress"
	case EventResult:
		return "result"
	default:
		return "unknown"
	}
}

// Event is a notification emitted by a worker. A run always ends with exactly
// one EventResult.
type Event struct {
	RunID    string
	Kind     EventKind
	State    State
	Progress int
	Result   *Result
}

// Result is the terminal output of a run.
type Result struct {
	RunID string
	// Text is the model reply, or an error message when Failed is set.
	Text      string
	Failed    bool
	Documents []document.Document
	Prompt    string
}

// Sink receives events of a run in emission order.
type Sink func(Event)

// ChannelSink forwards events to ch.
func ChannelSink(ch chan<- Event) Sink {
	return func(ev Event) {
		ch <- ev
	}
}
