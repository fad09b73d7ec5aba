package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics up to a cap; extra ones are dropped.
type Bag struct {
	items []Diagnostic
	limit int
}

// NewBag returns a bag holding at most limit diagnostics (100 when limit <= 0).
func NewBag(limit int) *Bag {
	if limit <= 0 {
		limit = 100
	}
	return &Bag{limit: limit}
}

// Collect fills a bag sized to ds.
func Collect(ds []Diagnostic) *Bag {
	b := NewBag(len(ds))
	for _, d := range ds {
		b.Add(d)
	}
	return b
}

// Add reports false once the cap is reached.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= b.limit {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) HasErrors() bool { return HasErrors(b.items) }

// Items is read-only.
func (b *Bag) Items() []Diagnostic { return b.items }

// Sort orders by file and position, then puts the worse severity first.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}

// Dedup keeps the first of every identical diagnostic.
func (b *Bag) Dedup() {
	seen := make(map[Diagnostic]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		if _, dup := seen[d]; dup {
			return true
		}
		seen[d] = struct{}{}
		return false
	})
}
