package bench

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// sample is one resource observation.
type sample struct {
	cpuPercent float64
	rssBytes   uint64
}

// sampler polls host process CPU and resident memory on a fixed cadence
// during the processing phase.
//
// The sampling goroutine shares no state with the engine or storage: it
// appends into its own slice, which is read only after Stop returns. It is
// the sole concurrency in a benchmark run.
type sampler struct {
	proc     *process.Process
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	samples  []sample
}

// newSampler creates a sampler for the current process.
func newSampler(interval time.Duration) (*sampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("resolve own process: %w", err)
	}
	return &sampler{
		proc:     proc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start launches the polling goroutine.
func (s *sampler) Start() {
	// Prime the CPU counter: Percent(0) measures since the previous call,
	// so the first in-loop reading needs a baseline.
	_, _ = s.proc.Percent(0)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.poll()
			}
		}
	}()
}

// poll records one observation. Errors are skipped rather than recorded:
// a missed sample never fails a benchmark run.
func (s *sampler) poll() {
	cpu, err := s.proc.Percent(0)
	if err != nil {
		return
	}
	mem, err := s.proc.MemoryInfo()
	if err != nil {
		return
	}
	s.samples = append(s.samples, sample{cpuPercent: cpu, rssBytes: mem.RSS})
}

// Stop halts polling, takes one final observation, and returns the peak
// resident memory in MB and the mean CPU percentage across all samples.
// Short phases are guaranteed at least the final sample.
func (s *sampler) Stop() (peakMemoryMB, avgCPUPercent float64) {
	close(s.stop)
	<-s.done
	s.poll()
	return aggregate(s.samples)
}

// aggregate reduces a sample sequence to peak resident memory in MB and
// mean CPU percent.
func aggregate(samples []sample) (peakMemoryMB, avgCPUPercent float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	var peakRSS uint64
	var cpuSum float64
	for _, obs := range samples {
		if obs.rssBytes > peakRSS {
			peakRSS = obs.rssBytes
		}
		cpuSum += obs.cpuPercent
	}

	return float64(peakRSS) / (1024 * 1024), cpuSum / float64(len(samples))
}
