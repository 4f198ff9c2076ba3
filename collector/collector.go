package collector

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vainnor/vatsim-scraper/archive"
	"github.com/vainnor/vatsim-scraper/models"
	"github.com/vainnor/vatsim-scraper/notify"
	"github.com/vainnor/vatsim-scraper/types"
)

const DefaultInterval = 300 * time.Second

type Fetcher interface {
	Fetch(ctx context.Context) (*types.VatsimData, error)
}

// Archive persists ended sessions for a day.
type Archive interface {
	Flush(category models.Category, records []*models.Session, dayKey string) (archive.Result, error)
}

type Notifier interface {
	Notify(ctx context.Context, content string) error
}

type Config struct {
	Interval time.Duration
	// Mirror receives a copy of every successful flush. Optional.
	Mirror Archive
	Now    func() time.Time
}

// Collector owns the active session tables and pending accumulators. Only
// the poll loop mutates them; the mutex lets the API read concurrently.
type Collector struct {
	fetcher  Fetcher
	store    Archive
	mirror   Archive
	notifier Notifier
	logger   *log.Logger
	interval time.Duration
	now      func() time.Time

	mu      sync.RWMutex
	tables  map[models.Category]models.Table
	pending map[models.Category][]*models.Session
	day     string
	stats   types.CollectionStats
}

// Summary holds the per-category processed counts of one cycle.
type Summary struct {
	Pilots      int
	Controllers int
}

func (s Summary) String() string {
	return fmt.Sprintf("Pilots updated: %s, Controllers updated: %s",
		humanize.Comma(int64(s.Pilots)), humanize.Comma(int64(s.Controllers)))
}

func NewCollector(cfg Config, fetcher Fetcher, store Archive, notifier Notifier, logger *log.Logger) *Collector {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	c := &Collector{
		fetcher:  fetcher,
		store:    store,
		mirror:   cfg.Mirror,
		notifier: notifier,
		logger:   logger,
		interval: cfg.Interval,
		now:      cfg.Now,
		tables:   make(map[models.Category]models.Table),
		pending:  make(map[models.Category][]*models.Session),
	}
	for _, cat := range models.Categories {
		c.tables[cat] = models.Table{}
	}
	start := cfg.Now()
	c.day = archive.DayKey(start)
	c.stats = types.CollectionStats{StartTime: start, DayKey: c.day}
	return c
}

// Update runs one fetch and reconcile cycle. A category whose reconcile fails
// keeps its previous table; the other category still commits.
func (c *Collector) Update(ctx context.Context) (Summary, error) {
	data, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.countCycle(false)
		return Summary{}, &Failure{Kind: KindFetch, Err: err}
	}

	now := c.now()
	var summary Summary
	var errs []error
	for _, cat := range models.Categories {
		fetched, err := convert(cat, data)
		if err != nil {
			errs = append(errs, &Failure{Kind: KindReconcile, Category: cat, Err: err})
			continue
		}

		c.mu.RLock()
		previous := c.tables[cat]
		c.mu.RUnlock()

		r, err := Reconcile(cat, previous, fetched, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c.commit(cat, r)

		switch cat {
		case models.CategoryPilot:
			summary.Pilots = r.Processed
		case models.CategoryController:
			summary.Controllers = r.Processed
		}
	}

	err = errors.Join(errs...)
	c.countCycle(err == nil)
	return summary, err
}

func convert(cat models.Category, data *types.VatsimData) ([]*models.Session, error) {
	if cat == models.CategoryPilot {
		return models.FromPilots(data.Pilots)
	}
	return models.FromControllers(data.Controllers)
}

func (c *Collector) commit(cat models.Category, r Reconciliation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables[cat] = r.Table
	c.pending[cat] = append(c.pending[cat], r.Ended...)

	for _, e := range r.Events {
		switch e.Kind {
		case EventNew:
			c.stats.NewConnections++
			c.logger.Printf("New %s connection: %s", cat, e.Callsign)
		case EventChanged:
			c.stats.NewConnections++
			c.stats.EndedConnections++
			c.logger.Printf("Ended %s connection: %s", cat, e.Callsign)
			c.logger.Printf("New %s connection: %s", cat, e.Callsign)
		case EventEnded:
			c.stats.EndedConnections++
			c.logger.Printf("Ended %s connection: %s", cat, e.Callsign)
		}
	}
}

func (c *Collector) countCycle(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.TotalCycles++
	if !ok {
		c.stats.FailedCycles++
		return
	}
	c.stats.LastUpdate = c.now()
}

// Flush drains both pending accumulators into the archive under dayKey. Each
// category is flushed independently; a failed category keeps its records.
func (c *Collector) Flush(dayKey string) error {
	var errs []error
	for _, cat := range models.Categories {
		if err := c.flushCategory(cat, dayKey); err != nil {
			c.report(context.Background(), err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Collector) flushCategory(cat models.Category, dayKey string) error {
	c.mu.RLock()
	batch := append([]*models.Session(nil), c.pending[cat]...)
	c.mu.RUnlock()

	res, err := c.store.Flush(cat, batch, dayKey)
	if err != nil {
		return &Failure{Kind: KindPersist, Category: cat, Err: err}
	}

	c.mu.Lock()
	c.pending[cat] = append([]*models.Session(nil), c.pending[cat][len(batch):]...)
	c.stats.ArchivedRecords += int64(res.Written)
	c.stats.LastFlush = c.now()
	c.mu.Unlock()

	if res.Merged {
		c.logger.Printf("Existing %s data found for %s, appending data.", cat, dayKey)
	}
	c.logger.Printf("%s data dumped for %s: %s records.", title(cat), dayKey, humanize.Comma(int64(res.Written)))

	if c.mirror != nil && len(batch) > 0 {
		if _, err := c.mirror.Flush(cat, batch, dayKey); err != nil {
			c.report(context.Background(), fmt.Errorf("mirror %s data for %s: %w", cat, dayKey, err))
		}
	}
	return nil
}

// Run polls every interval until ctx is cancelled, then stops the collector.
// Cancellation is only observed between ticks.
func (c *Collector) Run(ctx context.Context) error {
	c.logger.Printf("Starting VATSIM scraper (update interval: %v)", c.interval)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return c.Stop()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return c.Stop()
		}
		c.tick(context.WithoutCancel(ctx))
		timer.Reset(c.interval)
	}
}

// rollover flushes pending records under the recorded day when now falls on
// a later day, then records the new day.
func (c *Collector) rollover(now time.Time) error {
	day := archive.DayKey(now)
	previous := c.currentDay()
	if day == previous {
		return nil
	}

	c.mu.Lock()
	c.day = day
	c.stats.DayKey = day
	c.mu.Unlock()

	err := c.Flush(previous)
	c.logger.Printf("New day: data flushed for %s", previous)
	return err
}

func (c *Collector) tick(ctx context.Context) {
	c.rollover(c.now())

	summary, err := c.Update(ctx)
	if err != nil {
		var failure *Failure
		if errors.As(err, &failure) && failure.Kind == KindFetch {
			c.logger.Printf("Update failed: could not fetch feed: %v", failure.Err)
		} else {
			c.logger.Printf("Update failed: %v", err)
		}
		c.report(ctx, err)
		return
	}

	c.mu.RLock()
	started := c.stats.StartTime
	c.mu.RUnlock()
	c.logger.Printf("Update successful: %s (running since %s)", summary, humanize.Time(started))
}

// Stop closes every active session as scraper_stopped and flushes both
// categories under the current day. Records ended before a day change that
// no tick has seen yet go to the day they ended on.
func (c *Collector) Stop() error {
	now := c.now()
	rolloverErr := c.rollover(now)

	c.mu.Lock()
	for _, cat := range []models.Category{models.CategoryController, models.CategoryPilot} {
		ended := CloseAll(c.tables[cat], models.EndScraperStopped, now)
		for _, s := range ended {
			c.stats.EndedConnections++
			c.logger.Printf("Ended %s connection: %s", cat, s.Callsign)
		}
		c.pending[cat] = append(c.pending[cat], ended...)
		c.tables[cat] = models.Table{}
	}
	c.mu.Unlock()

	err := c.Flush(archive.DayKey(now))
	c.logger.Printf("Scraper stopped at %s", now.Format(time.RFC3339))
	return errors.Join(rolloverErr, err)
}

func (c *Collector) report(ctx context.Context, err error) {
	if nerr := c.notifier.Notify(ctx, "VATSIM Scraper Error: "+err.Error()); nerr != nil {
		c.logger.Printf("Error sending notification: %v", nerr)
	}
}

func (c *Collector) currentDay() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.day
}

func (c *Collector) GetStats() types.CollectionStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := c.stats
	stats.ActivePilots = len(c.tables[models.CategoryPilot])
	stats.ActiveControllers = len(c.tables[models.CategoryController])
	stats.PendingPilots = len(c.pending[models.CategoryPilot])
	stats.PendingControllers = len(c.pending[models.CategoryController])
	return stats
}

// ActiveSessions returns a copy of the active table in callsign order.
func (c *Collector) ActiveSessions(cat models.Category) []models.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	table := c.tables[cat]
	out := make([]models.Session, 0, len(table))
	for _, cs := range table.Callsigns() {
		out = append(out, *table[cs])
	}
	return out
}

func (c *Collector) PendingCount(cat models.Category) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.pending[cat])
}

func title(cat models.Category) string {
	switch cat {
	case models.CategoryPilot:
		return "Pilot"
	case models.CategoryController:
		return "Controller"
	}
	return string(cat)
}
