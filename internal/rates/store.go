// Package rates keeps the exchange rates used to express every amount in one target
// currency. Rates are stored as target units per source unit, so that
// amountInTarget = amountInSource * rate.
package rates

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/spendboard/internal/dedup"
)

const (
	DefaultTarget       = "GBP"
	DefaultPollInterval = 10 * time.Minute
)

type Config struct {
	Target       string
	PollInterval time.Duration
}

// Store is the process-wide rate snapshot. It is seeded with {Target: 1}; entries are
// added or refreshed by fetches and never removed.
type Store struct {
	target   string
	provider Provider
	log      *slog.Logger
	inflight dedup.Group[float64]
	poller   *poller
	now      func() time.Time

	mu          sync.RWMutex
	rates       map[string]float64
	requested   map[string]struct{}
	loading     int
	lastUpdated time.Time

	bgMu     sync.Mutex
	bgCtx    context.Context
	bgCancel context.CancelFunc
}

func NewStore(cfg Config, provider Provider, log *slog.Logger) *Store {
	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if log == nil {
		log = slog.Default()
	}

	log = log.With("component", "rates")
	target := normalize(cfg.Target)

	bgCtx, bgCancel := context.WithCancel(context.Background())

	return &Store{
		target:    target,
		provider:  provider,
		log:       log,
		poller:    newPoller(cfg.PollInterval, log),
		now:       time.Now,
		rates:     map[string]float64{target: 1},
		requested: make(map[string]struct{}),
		bgCtx:     bgCtx,
		bgCancel:  bgCancel,
	}
}

func normalize(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// Start begins running the polling schedule. Entries scheduled before Start wait
// for it.
func (s *Store) Start() {
	s.bgMu.Lock()
	if s.bgCtx.Err() != nil {
		s.bgCtx, s.bgCancel = context.WithCancel(context.Background())
	}
	s.bgMu.Unlock()

	s.poller.start()
	s.log.Info("rate polling started")
}

// Stop cancels any in-progress poll and waits for it to return.
func (s *Store) Stop() {
	s.bgMu.Lock()
	s.bgCancel()
	s.bgMu.Unlock()

	s.poller.stop()
	s.log.Info("rate polling stopped")
}

// FetchRates makes sure a rate is known for each currency. Known currencies are
// skipped and failures are logged per currency, keeping any previous rate. The
// polling schedule is restarted when the fetch adds a currency of interest or no
// schedule is active; repeating a request for known currencies keeps the
// running schedule so polling is not postponed indefinitely.
func (s *Store) FetchRates(ctx context.Context, currencies []string) {
	if grew := s.fetch(ctx, currencies, false); grew || !s.poller.active() {
		s.restartPolling()
	}
}

// Refresh force-fetches every currency requested so far without touching the
// loading flag.
func (s *Store) Refresh(ctx context.Context) {
	s.fetch(ctx, s.Requested(), true)
}

// fetch reports whether currencies added anything to the requested set.
func (s *Store) fetch(ctx context.Context, currencies []string, force bool) bool {
	unique := make([]string, 0, len(currencies))
	seen := make(map[string]struct{}, len(currencies))

	for _, c := range currencies {
		c = normalize(c)
		if c == "" || c == s.target {
			continue
		}

		if _, ok := seen[c]; ok {
			continue
		}

		seen[c] = struct{}{}
		unique = append(unique, c)
	}

	if len(unique) == 0 {
		return false
	}

	var (
		toFetch []string
		fresh   int
		grew    bool
	)

	s.mu.Lock()

	for _, c := range unique {
		if _, ok := s.requested[c]; !ok {
			s.requested[c] = struct{}{}
			grew = true
		}

		if _, known := s.rates[c]; known && !force {
			continue
		}

		if !s.inflight.InFlight(c) {
			fresh++
		}

		toFetch = append(toFetch, c)
	}

	trackLoading := !force && fresh > 0
	if trackLoading {
		s.loading++
	}

	s.mu.Unlock()

	if len(toFetch) == 0 {
		return grew
	}

	var wg sync.WaitGroup

	results := make([]float64, len(toFetch))

	for i, c := range toFetch {
		wg.Add(1)

		go func() {
			defer wg.Done()

			rate, err := s.inflight.Do(ctx, c, func(ctx context.Context) (float64, error) {
				return s.provider.Rate(ctx, c, s.target)
			})
			if err != nil {
				s.log.Warn("failed to fetch exchange rate", "currency", c, "error", err)
				return
			}

			if !usable(rate) {
				s.log.Warn("ignoring unusable exchange rate", "currency", c, "rate", rate)
				return
			}

			results[i] = rate
		}()
	}

	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range toFetch {
		if results[i] > 0 {
			s.rates[c] = results[i]
		}
	}

	s.rates[s.target] = 1
	s.lastUpdated = s.now()

	if trackLoading {
		s.loading--
	}

	return grew
}

func (s *Store) restartPolling() {
	if len(s.Requested()) == 0 {
		s.poller.cancel()
		return
	}

	s.poller.restart(func() {
		s.bgMu.Lock()
		ctx := s.bgCtx
		s.bgMu.Unlock()

		s.log.Debug("polling exchange rates")
		s.Refresh(ctx)
	})
}

// Convert expresses amount in the target currency. An unknown rate yields the amount
// unchanged so callers always get a finite number while rates load.
func (s *Store) Convert(amount float64, from string) float64 {
	from = normalize(from)
	if from == s.target {
		return amount
	}

	rate, ok := s.Rate(from)
	if !ok {
		return amount
	}

	return amount * rate
}

// Rate returns the stored rate for currency, if any.
func (s *Store) Rate(currency string) (float64, bool) {
	currency = normalize(currency)
	if currency == s.target {
		return 1, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rate, ok := s.rates[currency]
	if !ok || !usable(rate) {
		return 0, false
	}

	return rate, true
}

// Snapshot returns a copy of all known rates.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.rates)
}

// Requested returns every currency asked for so far, sorted.
func (s *Store) Requested() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Sorted(maps.Keys(s.requested))
}

// Loading reports whether a non-forced fetch is running.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.loading > 0
}

// LastUpdated is the zero time until the first fetch completes.
func (s *Store) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastUpdated
}

func (s *Store) Target() string {
	return s.target
}

// Polling reports whether a refresh is scheduled.
func (s *Store) Polling() bool {
	return s.poller.active()
}
