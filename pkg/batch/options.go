package batch

const (
	DefaultThreads   = 2
	DefaultQueueSize = 500
	DefaultOutputDir = "descriptors"

	// IndexName is the memoisation index file inside the output directory.
	IndexName = "index.yaml"
)

// Options configures a batch run.
type Options struct {
	Threads   int
	QueueSize int
	OutputDir string
}

type Option func(*Options)

func DefaultOptions() Options {
	return Options{
		Threads:   DefaultThreads,
		QueueSize: DefaultQueueSize,
		OutputDir: DefaultOutputDir,
	}
}

// WithThreads sets the worker count.
func WithThreads(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Threads = n
		}
	}
}

// WithQueueSize bounds the dispatch queue; the scanner blocks while the
// queue is full.
func WithQueueSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.QueueSize = n
		}
	}
}

// WithOutputDir sets where .inv files and the index are written.
func WithOutputDir(dir string) Option {
	return func(o *Options) {
		if dir != "" {
			o.OutputDir = dir
		}
	}
}
