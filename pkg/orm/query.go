// Package orm is a thin chainable wrapper over *gorm.DB that adds
// read-through caching and offset pagination.
//
//	var page []models.Product
//	p, err := orm.New(db).WithContext(ctx).Order("created_at DESC").Paginate(&page, 1, 20)
package orm

import (
	"context"
	"time"

	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

type Query struct {
	db  *gorm.DB
	ctx context.Context
}

// DB starts a query on the global connection.
func DB() *Query {
	return New(database.DB)
}

// New starts a query on db.
func New(db *gorm.DB) *Query {
	return &Query{db: db, ctx: context.Background()}
}

func (q *Query) clone(db *gorm.DB) *Query {
	return &Query{db: db, ctx: q.ctx}
}

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx), ctx: ctx}
}

func (q *Query) Model(v interface{}) *Query {
	return q.clone(q.db.Model(v))
}

func (q *Query) Where(query interface{}, args ...interface{}) *Query {
	return q.clone(q.db.Where(query, args...))
}

func (q *Query) Not(query interface{}, args ...interface{}) *Query {
	return q.clone(q.db.Not(query, args...))
}

func (q *Query) Order(value interface{}) *Query {
	return q.clone(q.db.Order(value))
}

func (q *Query) Preload(query string, args ...interface{}) *Query {
	return q.clone(q.db.Preload(query, args...))
}

func (q *Query) Limit(n int) *Query {
	return q.clone(q.db.Limit(n))
}

func (q *Query) Get(dest interface{}) error {
	return q.db.Find(dest).Error
}

func (q *Query) First(dest interface{}) error {
	return q.db.First(dest).Error
}

// Cache serves dest from the cache under key, falling back to the database
// and populating the cache on a miss.
func (q *Query) Cache(key string, ttl time.Duration, dest interface{}) error {
	if cache.Get(q.ctx, key, dest) {
		return nil
	}

	if err := q.db.Find(dest).Error; err != nil {
		return err
	}

	_ = cache.Set(q.ctx, key, dest, ttl)
	return nil
}

// ── Pagination ───────────────────────────────────────────────────────────────

// Pagination describes one page of a result set.
type Pagination struct {
	Page     int   `json:"page"`
	PerPage  int   `json:"per_page"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// Normalize clamps page and perPage to usable values.
func Normalize(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// Paginate counts the matching rows and loads one page of them into dest.
// Relations named in preload are loaded for the page only; the count query
// never sees them.
func (q *Query) Paginate(dest interface{}, page, perPage int, preload ...string) (Pagination, error) {
	page, perPage = Normalize(page, perPage)
	p := Pagination{Page: page, PerPage: perPage}

	if err := q.db.Session(&gorm.Session{}).Model(dest).Count(&p.Total).Error; err != nil {
		return p, err
	}
	p.LastPage = int((p.Total + int64(perPage) - 1) / int64(perPage))
	if p.LastPage == 0 {
		p.LastPage = 1
	}

	tx := q.db.Offset((page - 1) * perPage).Limit(perPage)
	for _, rel := range preload {
		tx = tx.Preload(rel)
	}
	return p, tx.Find(dest).Error
}
