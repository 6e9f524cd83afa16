// Package templatecache holds an immutable snapshot of row templates,
// constants and account descriptions, reloaded on demand.
package templatecache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fjacquet/sie-report/internal/logging"
	"fjacquet/sie-report/internal/models"
	"fjacquet/sie-report/internal/store"
)

// Snapshot is one complete load of the template store. It is never mutated
// after construction.
type Snapshot struct {
	RR           []models.RowTemplate
	BR           []models.RowTemplate
	INK2         []models.RowTemplate
	Constants    models.Constants
	Descriptions map[string]string
	LoadedAt     time.Time
}

// Templates returns the templates of a section.
func (s *Snapshot) Templates(section models.Section) []models.RowTemplate {
	switch section {
	case models.SectionRR:
		return s.RR
	case models.SectionBR:
		return s.BR
	case models.SectionINK2:
		return s.INK2
	}
	return nil
}

// Description returns the account description or the fallback label.
func (s *Snapshot) Description(accountID string) string {
	return store.DescriptionOrDefault(s.Descriptions, accountID)
}

// Cache serves snapshots of a TemplateStore.
type Cache struct {
	store  store.TemplateStore
	logger logging.Logger
	now    func() time.Time

	current atomic.Pointer[Snapshot]
	stale   atomic.Bool
	mu      sync.Mutex
}

// New returns an empty cache; the first Get loads.
func New(s store.TemplateStore, logger logging.Logger) *Cache {
	return &Cache{
		store:  s,
		logger: logging.OrDefault(logger),
		now:    time.Now,
	}
}

// Get returns the current snapshot, loading it on first use or after
// Invalidate. If a reload fails and a previous snapshot exists, the previous
// snapshot is returned and the error is logged.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	if snap := c.current.Load(); snap != nil && !c.stale.Load() {
		return snap, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.current.Load()
	if snap != nil && !c.stale.Load() {
		return snap, nil
	}

	// cleared before loading so an Invalidate during the load triggers another
	c.stale.Store(false)
	fresh, err := c.load(ctx)
	if err != nil {
		if snap != nil {
			c.stale.Store(true)
			c.logger.WithError(err).Warn("Template reload failed, keeping previous snapshot")
			return snap, nil
		}
		return nil, err
	}
	c.current.Store(fresh)
	return fresh, nil
}

// Invalidate marks the snapshot stale. Builds already holding the old
// snapshot are unaffected.
func (c *Cache) Invalidate() {
	c.stale.Store(true)
	c.logger.Debug("Template cache invalidated")
}

// Watch invalidates the cache for every value received on signals until ctx
// is done or signals is closed.
func (c *Cache) Watch(ctx context.Context, signals <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-signals:
			if !ok {
				return
			}
			c.Invalidate()
		}
	}
}

func (c *Cache) load(ctx context.Context) (*Snapshot, error) {
	start := c.now()
	snap := &Snapshot{}

	for _, section := range models.Sections {
		rows, err := c.store.LoadRowTemplates(ctx, section)
		if err != nil {
			return nil, fmt.Errorf("load %s templates: %w", section, err)
		}
		rows = models.CloneTemplates(rows)
		switch section {
		case models.SectionRR:
			snap.RR = rows
		case models.SectionBR:
			snap.BR = rows
		case models.SectionINK2:
			snap.INK2 = rows
		}
	}

	constants, err := c.store.LoadGlobalConstants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load constants: %w", err)
	}
	snap.Constants = constants.Clone()

	descriptions, err := c.store.LoadAccountDescriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load descriptions: %w", err)
	}
	snap.Descriptions = make(map[string]string, len(descriptions))
	for k, v := range descriptions {
		snap.Descriptions[k] = v
	}

	snap.LoadedAt = c.now()
	c.logger.Info("Loaded template snapshot",
		logging.F("rr", len(snap.RR)),
		logging.F("br", len(snap.BR)),
		logging.F("ink2", len(snap.INK2)),
		logging.F("constants", len(snap.Constants)),
		logging.F(logging.FieldDuration, snap.LoadedAt.Sub(start).Milliseconds()))
	return snap, nil
}
