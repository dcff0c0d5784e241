package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/stocklight/stocklight-backend/internal/inventory/ledger"
)

// FixtureFactory creates catalog test fixtures with sensible defaults
type FixtureFactory struct {
	seq int64
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	return int(atomic.AddInt64(&f.seq, 1))
}

// Product creates a product fixture with one in-stock variant
func (f *FixtureFactory) Product(opts ...func(*ledger.Product)) ledger.Product {
	n := f.nextSeq()
	p := ledger.Product{
		ID: fmt.Sprintf("prod-%d", n),
		Variants: []ledger.ProductVariant{
			{
				ID:    fmt.Sprintf("var-%d", n),
				SKU:   fmt.Sprintf("SKU-%04d", n),
				Stock: 50,
			},
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithVariants replaces the product's variants
func WithVariants(variants ...ledger.ProductVariant) func(*ledger.Product) {
	return func(p *ledger.Product) {
		p.Variants = variants
	}
}

// WithStock sets the stock level of every variant
func WithStock(stock int) func(*ledger.Product) {
	return func(p *ledger.Product) {
		for i := range p.Variants {
			p.Variants[i].Stock = stock
		}
	}
}

// Variant creates a standalone variant fixture
func (f *FixtureFactory) Variant(stock int) ledger.ProductVariant {
	n := f.nextSeq()
	return ledger.ProductVariant{
		ID:    fmt.Sprintf("var-%d", n),
		SKU:   fmt.Sprintf("SKU-%04d", n),
		Stock: stock,
	}
}
