// Package redis contiene adaptadores sobre Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/Inventario-pos/internal/application/sales"
	"github.com/jhoicas/Inventario-pos/pkg/config"
)

var _ sales.SaleNumberAllocator = (*SaleSequence)(nil)

// sequenceTTL conserva la clave del día un tiempo después de que termina.
const sequenceTTL = 48 * time.Hour

// NewClient crea el cliente y verifica la conexión con PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// SaleSequence consecutivo diario de ventas con INCR sobre la clave sale_seq:YYYYMMDD.
type SaleSequence struct {
	client goredis.Cmdable
}

// NewSaleSequence construye el asignador sobre un cliente Redis.
func NewSaleSequence(client goredis.Cmdable) *SaleSequence {
	return &SaleSequence{client: client}
}

// Key devuelve la clave del contador del día.
func Key(day time.Time) string {
	return "sale_seq:" + day.Format("20060102")
}

// Next incrementa y devuelve el consecutivo del día; la clave expira sola.
func (s *SaleSequence) Next(ctx context.Context, day time.Time) (int64, error) {
	key := Key(day)
	var incr *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, sequenceTTL)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis: next sale number: %w", err)
	}
	return incr.Val(), nil
}
