// Package migration runs versioned schema changes and records which ones
// have been applied, grouped into batches so the last batch can be undone.
//
//	func init() {
//	    migration.Register("20260301000000_create_products_table", &CreateProductsTable{})
//	}
//
//	storefront migrate            // apply pending
//	storefront migrate:rollback   // undo the last batch
package migration

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/logger"
	"gorm.io/gorm"
)

// Migration is one reversible schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

type migrationRecord struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (migrationRecord) TableName() string { return "schema_migrations" }

// ErrNoMigrations is returned when Run is called but no migrations are registered.
var ErrNoMigrations = errors.New("no migrations registered")

// ── Registry ─────────────────────────────────────────────────────────────────

type registeredMigration struct {
	name string
	m    Migration
}

var registry []registeredMigration

// Register adds a migration. name must start with a sortable timestamp.
func Register(name string, m Migration) {
	registry = append(registry, registeredMigration{name: name, m: m})
}

func sorted() []registeredMigration {
	out := make([]registeredMigration, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ── Runner ───────────────────────────────────────────────────────────────────

type Runner struct {
	db  *gorm.DB
	out io.Writer
}

// New creates a Runner that reports progress to out (io.Discard is fine).
func New(db *gorm.DB, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{db: db, out: out}
}

func (r *Runner) ensureTable() error {
	return r.db.AutoMigrate(&migrationRecord{})
}

func (r *Runner) ran() (map[string]migrationRecord, error) {
	var records []migrationRecord
	if err := r.db.Find(&records).Error; err != nil {
		return nil, err
	}
	out := make(map[string]migrationRecord, len(records))
	for _, rec := range records {
		out[rec.Name] = rec
	}
	return out, nil
}

// Run applies every pending migration as one new batch. Each migration and
// its bookkeeping row commit together.
func (r *Runner) Run() (int, error) {
	if len(registry) == 0 {
		return 0, ErrNoMigrations
	}
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}

	done, err := r.ran()
	if err != nil {
		return 0, fmt.Errorf("migration: fetch applied: %w", err)
	}

	batch := r.lastBatch() + 1
	applied := 0
	for _, reg := range sorted() {
		if _, ok := done[reg.name]; ok {
			continue
		}

		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", reg.name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := reg.m.Up(tx); err != nil {
				return err
			}
			return tx.Create(&migrationRecord{Name: reg.name, Batch: batch}).Error
		})
		if err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		applied++
	}

	if applied == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return 0, nil
	}
	logger.Info("migration: done", "ran", applied, "batch", batch)
	return applied, nil
}

// Rollback undoes every migration of the most recent batch, newest first.
func (r *Runner) Rollback() (int, error) {
	if err := r.ensureTable(); err != nil {
		return 0, fmt.Errorf("migration: ensure table: %w", err)
	}

	batch := r.lastBatch()
	if batch == 0 {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return 0, nil
	}

	var records []migrationRecord
	if err := r.db.Where("batch = ?", batch).Order("id desc").Find(&records).Error; err != nil {
		return 0, err
	}

	byName := make(map[string]Migration, len(registry))
	for _, reg := range registry {
		byName[reg.name] = reg.m
	}

	undone := 0
	for _, rec := range records {
		m, ok := byName[rec.Name]
		if !ok {
			return undone, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return err
			}
			return tx.Delete(&migrationRecord{}, rec.ID).Error
		})
		if err != nil {
			return undone, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		undone++
	}

	logger.Info("migration: rolled back", "batch", batch, "count", undone)
	return undone, nil
}

// Status is one row of `migrate:status`.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Status lists every registered migration in order with its state.
func (r *Runner) Status() ([]Status, error) {
	if err := r.ensureTable(); err != nil {
		return nil, err
	}
	done, err := r.ran()
	if err != nil {
		return nil, err
	}

	var out []Status
	for _, reg := range sorted() {
		rec, ok := done[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

func (r *Runner) lastBatch() int {
	var last struct{ Max int }
	r.db.Model(&migrationRecord{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&last)
	return last.Max
}
