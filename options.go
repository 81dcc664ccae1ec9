package vidq

type options struct {
	id        string
	audioOnly bool
	format    string
}

// Option configures task creation during Create or Redownload.
type Option func(*options)

// TaskID sets a custom ID for the task. If not provided, a random UUID will
// be generated.
func TaskID(id string) Option {
	return func(o *options) {
		o.id = id
	}
}

// AudioOnly requests audio extraction instead of the full video. The worker
// passes it through to the downloader.
func AudioOnly() Option {
	return func(o *options) {
		o.audioOnly = true
	}
}

// Format sets a format directive for the downloader (e.g. "mp4", "best").
func Format(f string) Option {
	return func(o *options) {
		o.format = f
	}
}
