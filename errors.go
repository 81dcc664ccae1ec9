package vidq

import "errors"

// ErrEmptyURL is returned when Create is called with a missing or blank URL.
var ErrEmptyURL = errors.New("vidq: url must not be empty")

// ErrTaskNotFound is returned when a task with the specified ID is not found.
var ErrTaskNotFound = errors.New("vidq: task not found")

// ErrUnknownStatus is returned when an invalid status string is parsed.
var ErrUnknownStatus = errors.New("vidq: unknown status")

// ErrDuplicateTask is returned when a task ID collides with an existing record.
var ErrDuplicateTask = errors.New("vidq: duplicate task id")

// ErrNoArtifact is returned when a download is requested for a task that has
// not produced an artifact.
var ErrNoArtifact = errors.New("vidq: task has no artifact")
