package queue

import "time"

// Status represents the lifecycle of a render job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

// DaemonStopReason is the message set when jobs are failed due to daemon shutdown.
const DaemonStopReason = "Daemon stopped before rendering finished"

var allStatuses = []Status{
	StatusPending,
	StatusProcessing,
	StatusDone,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// ValidStatus reports whether the value names a known lifecycle state.
func ValidStatus(status Status) bool {
	_, ok := statusSet[status]
	return ok
}

// Job represents a render job persisted in SQLite.
type Job struct {
	ID           string
	InputPath    string
	OriginalName string
	OutputPath   string
	Status       Status
	Message      string
	Progress     float64
	OverlaysJSON string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsTerminal reports whether the job has reached a final state.
func (j *Job) IsTerminal() bool {
	return j.Status == StatusDone || j.Status == StatusError
}

// SetProcessing marks the job as picked up by a render worker.
func (j *Job) SetProcessing() {
	j.Status = StatusProcessing
	j.Progress = 1
	j.Message = "Processing"
}

// SetDone records a confirmed successful render.
func (j *Job) SetDone(outputPath string) {
	j.Status = StatusDone
	j.Progress = 100
	j.Message = "Rendering complete"
	j.OutputPath = outputPath
}

// SetFailed records a failure diagnostic. Progress is left at its last
// reported value so operators can see how far the render got.
func (j *Job) SetFailed(message string) {
	j.Status = StatusError
	j.Message = message
}

// Asset represents an uploaded overlay asset persisted in SQLite.
type Asset struct {
	ID           string
	Filename     string
	OriginalName string
	Kind         string
	Path         string
	CreatedAt    time.Time
}

// HealthSummary describes aggregated job counts per lifecycle state.
type HealthSummary struct {
	Total      int
	Pending    int
	Processing int
	Done       int
	Errored    int
}
