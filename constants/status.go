package constants

// JobStatus is the canonical status for job records. The integer values are
// persisted as-is and must stay stable.
type JobStatus int

const (
	JobQueued    JobStatus = 1 // document uploaded, waiting for a worker
	JobRunning   JobStatus = 2 // in progress
	JobConverted JobStatus = 3 // terminal success, file archived
	JobFailed    JobStatus = 4 // terminal failure, file quarantined
)

var statusNames = map[JobStatus]string{
	JobQueued:    "Queued",
	JobRunning:   "Running",
	JobConverted: "Converted",
	JobFailed:    "Failed",
}

var statusDescriptions = map[JobStatus]string{
	JobQueued:    "Document uploaded",
	JobRunning:   "Job is running.",
	JobConverted: "Conversion completed",
	JobFailed:    "Conversion Failed",
}

func (s JobStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// Description returns the default human-readable description for a status.
// Callers may override it with an explicit description when updating a job.
func (s JobStatus) Description() string {
	if d, ok := statusDescriptions[s]; ok {
		return d
	}
	return ""
}

// Terminal reports whether a status allows no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobConverted || s == JobFailed
}
