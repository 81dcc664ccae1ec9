package vidq

// Status represents a task lifecycle state. Use the exported constants
// (StatusPending, StatusStarted, etc.) instead of raw strings to avoid typos.
//
// A task moves PENDING -> STARTED -> PROCESSING -> {SUCCESS, FAILURE} and
// never leaves a terminal state; a redownload allocates a new task instead of
// mutating the old record.
type Status string

const (
	// StatusPending is set at creation, before any worker claims the task.
	StatusPending Status = "PENDING"
	// StatusStarted is set by a worker immediately after dequeue.
	StatusStarted Status = "STARTED"
	// StatusProcessing is set just before the downloader is invoked.
	StatusProcessing Status = "PROCESSING"
	// StatusSuccess is terminal; download_url and details.original_filename
	// are always set together with it.
	StatusSuccess Status = "SUCCESS"
	// StatusFailure is terminal; details.error is always set together with it.
	StatusFailure Status = "FAILURE"
)

// AllStatuses lists every valid status in lifecycle order.
var AllStatuses = []Status{StatusPending, StatusStarted, StatusProcessing, StatusSuccess, StatusFailure}

// String returns the raw string value of the status.
func (s Status) String() string { return string(s) }

// Terminal reports whether no further worker-driven transitions occur.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// ParseStatus converts a string into a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	switch s {
	case string(StatusPending):
		return StatusPending, nil
	case string(StatusStarted):
		return StatusStarted, nil
	case string(StatusProcessing):
		return StatusProcessing, nil
	case string(StatusSuccess):
		return StatusSuccess, nil
	case string(StatusFailure):
		return StatusFailure, nil
	default:
		return "", ErrUnknownStatus
	}
}
