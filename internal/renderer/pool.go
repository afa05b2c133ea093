package renderer

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one browser is available.
	MinPoolSize = 1

	// MaxPoolSize caps browser instances to limit memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chromium child processes.
	cpuDivisor = 2
)

// ErrPoolClosed is returned when acquiring from a closed pool
var ErrPoolClosed = errors.New("renderer pool is closed")

// Instance is one headless browser owned by the pool
type Instance struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Healthy reports whether the browser connection is still usable
func (i *Instance) Healthy() bool {
	return i != nil && i.browser != nil && i.browser.IsConnected()
}

// Close releases the browser and its driver
func (i *Instance) Close() error {
	if i == nil {
		return nil
	}
	var firstErr error
	if i.browser != nil {
		if err := i.browser.Close(); err != nil {
			firstErr = err
		}
	}
	if i.pw != nil {
		if err := i.pw.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// launchInstance starts an isolated headless Chromium. The sandbox flags
// match what a containerized deployment needs.
func launchInstance() (*Instance, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, &RenderError{Stage: StageLaunch, Err: err}
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
		},
	})
	if err != nil {
		if stopErr := pw.Stop(); stopErr != nil {
			slog.Debug("error stopping playwright after failed launch", "error", stopErr)
		}
		return nil, &RenderError{Stage: StageLaunch, Err: err}
	}
	return &Instance{pw: pw, browser: browser}, nil
}

// Pool is a bounded pool of browser instances with checkout/checkin.
// Instances are created lazily on first acquire and health-checked on
// every checkout; a dead browser is replaced transparently.
type Pool struct {
	size    int
	factory func() (*Instance, error)
	sem     chan *Instance
	mu      sync.Mutex
	created int
	closed  bool
}

// NewPool creates a pool with capacity for n browser instances
func NewPool(n int) *Pool {
	return newPoolWithFactory(n, launchInstance)
}

func newPoolWithFactory(n int, factory func() (*Instance, error)) *Pool {
	if n < 1 {
		n = 1
	}
	return &Pool{
		size:    n,
		factory: factory,
		sem:     make(chan *Instance, n),
	}
}

// Acquire checks out a healthy instance, creating one if capacity allows.
// Blocks when every instance is in use.
func (p *Pool) Acquire() (*Instance, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		p.mu.Unlock()

		select {
		case inst, ok := <-p.sem:
			if !ok {
				return nil, ErrPoolClosed
			}
			if inst.Healthy() {
				return inst, nil
			}
			// Replace a dead browser instead of handing it out.
			if err := inst.Close(); err != nil {
				slog.Debug("error closing unhealthy browser", "error", err)
			}
			p.mu.Lock()
			p.created--
			p.mu.Unlock()
			continue
		default:
		}

		p.mu.Lock()
		if p.created < p.size {
			p.created++
			p.mu.Unlock()

			inst, err := p.factory()
			if err != nil {
				p.mu.Lock()
				p.created--
				p.mu.Unlock()
				return nil, err
			}
			return inst, nil
		}
		p.mu.Unlock()

		// All instances created, wait for a checkin.
		inst, ok := <-p.sem
		if !ok {
			return nil, ErrPoolClosed
		}
		if inst.Healthy() {
			return inst, nil
		}
		if err := inst.Close(); err != nil {
			slog.Debug("error closing unhealthy browser", "error", err)
		}
		p.mu.Lock()
		p.created--
		p.mu.Unlock()
	}
}

// Release checks an instance back in
func (p *Pool) Release(inst *Instance) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		if err := inst.Close(); err != nil {
			slog.Debug("error closing browser on release after pool close", "error", err)
		}
		return
	}
	// Outstanding instances never exceed the channel capacity, so this
	// send cannot block while the mutex is held.
	p.sem <- inst
}

// Close shuts the pool and every idle instance. Instances still checked
// out are closed when released.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	p.mu.Unlock()

	var errs []error
	for inst := range p.sem {
		if err := inst.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity
func (p *Pool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size: explicit value when positive,
// otherwise derived from GOMAXPROCS and clamped.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
