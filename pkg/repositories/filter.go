package repositories

import (
	"fmt"

	"gorm.io/gorm"
)

// Op is a filter comparator. The four comparators are the complete set,
// applied the same way across every entity.
type Op int

const (
	OpEquals Op = iota
	OpNotEquals
	OpContains
	OpNotContains
)

// Filter is a single-predicate row filter. A nil Filter matches
// everything. Callers must not depend on result ordering.
type Filter struct {
	Field string
	Op    Op
	Value interface{}
}

func Where(field string, op Op, value interface{}) *Filter {
	return &Filter{Field: field, Op: op, Value: value}
}

func applyFilter(db *gorm.DB, f *Filter) *gorm.DB {
	if f == nil {
		return db
	}

	switch f.Op {
	case OpEquals:
		return db.Where(fmt.Sprintf("%s = ?", f.Field), f.Value)
	case OpNotEquals:
		return db.Where(fmt.Sprintf("%s <> ?", f.Field), f.Value)
	case OpContains:
		return db.Where(fmt.Sprintf("%s LIKE ?", f.Field), "%"+fmt.Sprint(f.Value)+"%")
	case OpNotContains:
		return db.Where(fmt.Sprintf("%s NOT LIKE ?", f.Field), "%"+fmt.Sprint(f.Value)+"%")
	}

	return db
}
