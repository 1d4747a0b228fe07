package journal

import (
	"time"

	"gorm.io/gorm"
)

// ListFilter bounds a date-keyed listing. From and To are inclusive calendar days.
type ListFilter struct {
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

func (f ListFilter) apply(q *gorm.DB, column string, defaultLimit int) *gorm.DB {
	if f.From != nil {
		q = q.Where(column+" >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where(column+" <= ?", *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	q = q.Limit(limit)
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	return q
}
