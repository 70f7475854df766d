package quota

import (
	"context"
	"time"
)

// Category is the closed set of bed categories a quota is split into.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryML               // dormitory beds (Matratzenlager)
	CategoryMBZ              // multi-bed rooms
	CategoryTwoBZ            // double rooms
	CategorySK               // special contingent
)

// CategoryFromCode maps the external numeric category codes to the closed
// enum. Anything outside the four known codes ends up in CategoryUnknown and
// is excluded from aggregation.
func CategoryFromCode(code int) Category {
	switch code {
	case 1:
		return CategoryML
	case 2:
		return CategoryMBZ
	case 3:
		return CategoryTwoBZ
	case 4:
		return CategorySK
	default:
		return CategoryUnknown
	}
}

func (c Category) Code() int {
	switch c {
	case CategoryML:
		return 1
	case CategoryMBZ:
		return 2
	case CategoryTwoBZ:
		return 3
	case CategorySK:
		return 4
	default:
		return 0
	}
}

func (c Category) String() string {
	switch c {
	case CategoryML:
		return "ML"
	case CategoryMBZ:
		return "MBZ"
	case CategoryTwoBZ:
		return "2BZ"
	case CategorySK:
		return "SK"
	default:
		return "UNKNOWN"
	}
}

// MarshalText makes JSON output render categories by tag, including when
// they appear as map keys.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Categories lists the four known categories in their canonical order.
func Categories() []Category {
	return []Category{CategoryML, CategoryMBZ, CategoryTwoBZ, CategorySK}
}

// Mode is the allocation mode of a quota.
type Mode string

const (
	ModeServiced    Mode = "serviced"
	ModeSelfService Mode = "self-service"
)

// CategoryAllocation is the bed count a quota assigns to one category.
type CategoryAllocation struct {
	Category Category
	Beds     int
}

// Quota is a block of bed capacity valid over the half-open interval
// [DateFrom, DateTo).
type Quota struct {
	ID         int64
	ExternalID int64
	Title      string
	DateFrom   time.Time
	DateTo     time.Time
	Capacity   int
	Mode       Mode
	Categories []CategoryAllocation
}

// Covers reports whether the quota is valid on the given day. A quota ending
// on day D does not cover D.
func (q *Quota) Covers(day time.Time) bool {
	return !day.Before(q.DateFrom) && day.Before(q.DateTo)
}

// CategoryBeds returns the bed count allocated to the given category, zero
// when the quota carries no allocation for it.
func (q *Quota) CategoryBeds(c Category) int {
	for _, alloc := range q.Categories {
		if alloc.Category == c {
			return alloc.Beds
		}
	}
	return 0
}

type FindParams struct {
	From time.Time
	To   time.Time
}

type Repository interface {
	GetOverlapping(ctx context.Context, params *FindParams) ([]*Quota, error)
	GetByID(ctx context.Context, id int64) (*Quota, error)
	Create(ctx context.Context, q *Quota) (*Quota, error)
	Update(ctx context.Context, q *Quota) error
	Delete(ctx context.Context, id int64) error
}
