// Package tuner provides resource detection and worker sizing for the
// doppel duplicate detector. Digest confirmation is I/O and CPU bound, so
// the worker count is derived from available cores and the candidate queue
// from available memory.
package tuner

// SystemResources contains detected system resources.
type SystemResources struct {
	// CPUCores is the number of logical CPU cores available.
	CPUCores int

	// TotalRAM is the total physical RAM in bytes.
	TotalRAM int64

	// AvailableRAM is the available (free) RAM in bytes.
	// This may be an estimate based on system heuristics.
	AvailableRAM int64
}

// Config holds the calculated scan configuration.
type Config struct {
	// HashWorkers is the number of concurrent digest workers.
	HashWorkers int

	// QueueSize is the bounded candidate queue length between traversal
	// and digesting.
	QueueSize int
}

// Sizing limits.
const (
	// maxHashWorkers caps the digest pool; beyond this, disks saturate
	// long before CPUs do.
	maxHashWorkers = 32

	// minHashWorkers keeps some overlap between reads even on one core.
	minHashWorkers = 4

	minQueueSize = 256
	maxQueueSize = 65536

	// bytesPerQueueEntry estimates memory per queued candidate: a path
	// string plus record metadata.
	bytesPerQueueEntry = 512
)

// Calculate derives a scan configuration from detected resources.
func Calculate(res SystemResources) Config {
	workers := res.CPUCores
	if workers < minHashWorkers {
		workers = minHashWorkers
	}
	if workers > maxHashWorkers {
		workers = maxHashWorkers
	}

	// Spend at most 1/1024 of available RAM on the candidate queue.
	queue := int(res.AvailableRAM / 1024 / bytesPerQueueEntry)
	if queue < minQueueSize {
		queue = minQueueSize
	}
	if queue > maxQueueSize {
		queue = maxQueueSize
	}

	return Config{
		HashWorkers: workers,
		QueueSize:   queue,
	}
}

// CalculateWithOverrides applies an explicit worker count over the detected
// configuration. Worker counts outside the supported range are clamped.
func CalculateWithOverrides(res SystemResources, workers int) Config {
	cfg := Calculate(res)
	if workers > 0 {
		if workers > maxHashWorkers {
			workers = maxHashWorkers
		}
		cfg.HashWorkers = workers
	}
	return cfg
}
