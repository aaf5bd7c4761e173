package memory

import (
	"context"
	"sync"
	"time"
)

// SaleSequence consecutivo diario de ventas en memoria.
type SaleSequence struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewSaleSequence crea la secuencia vacía.
func NewSaleSequence() *SaleSequence {
	return &SaleSequence{last: map[string]int64{}}
}

// Next incrementa el consecutivo del día.
func (s *SaleSequence) Next(_ context.Context, day time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := day.Format("20060102")
	s.last[key]++
	return s.last[key], nil
}
