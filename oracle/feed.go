package oracle

import (
	"sync"

	"github.com/DomeLiquid/pair/core"
	"github.com/shopspring/decimal"
)

// Feed is a settable price source. The oracle data of a pair selects the feed key.
type Feed struct {
	mu      sync.RWMutex
	rates   map[string]decimal.Decimal
	failing map[string]bool
}

var _ core.Oracle = (*Feed)(nil)

func NewFeed() *Feed {
	return &Feed{
		rates:   map[string]decimal.Decimal{},
		failing: map[string]bool{},
	}
}

func Data(key string) []byte {
	return []byte(key)
}

func (f *Feed) Set(key string, rate decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates[key] = rate
	delete(f.failing, key)
}

// Fail makes Get and Peek report failure for key until the next Set.
func (f *Feed) Fail(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[key] = true
}

func (f *Feed) Get(data []byte) (decimal.Decimal, bool) {
	return f.Peek(data)
}

func (f *Feed) Peek(data []byte) (decimal.Decimal, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	key := string(data)
	if f.failing[key] {
		return decimal.Zero, false
	}
	rate, ok := f.rates[key]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}
