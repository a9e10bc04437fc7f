package rates

import (
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// every fires at a fixed interval measured from the previous activation. Unlike
// cron.Every it does not round to whole seconds.
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}

// poller keeps at most one scheduled refresh entry alive.
type poller struct {
	cron     *cron.Cron
	interval time.Duration

	mu      sync.Mutex
	entry   cron.EntryID
	running bool
}

func newPoller(interval time.Duration, log *slog.Logger) *poller {
	logger := cron.PrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelDebug))

	return &poller{
		cron:     cron.New(cron.WithLogger(logger), cron.WithChain(cron.SkipIfStillRunning(logger))),
		interval: interval,
	}
}

// restart drops the current entry, if any, and schedules job afresh.
func (p *poller) restart(job func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.entry != 0 {
		p.cron.Remove(p.entry)
		p.entry = 0
	}

	if p.interval <= 0 {
		return
	}

	p.entry = p.cron.Schedule(every(p.interval), cron.FuncJob(job))
}

func (p *poller) cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.entry != 0 {
		p.cron.Remove(p.entry)
		p.entry = 0
	}
}

func (p *poller) active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.entry != 0
}

func (p *poller) start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}

	p.running = true
	p.cron.Start()
}

func (p *poller) stop() {
	p.mu.Lock()

	if !p.running {
		p.mu.Unlock()
		return
	}

	p.running = false
	p.mu.Unlock()

	<-p.cron.Stop().Done()
}
