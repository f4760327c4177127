// Package redis genera números de traslado con un consecutivo diario en Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
)

// keyTTL la clave del día vive lo suficiente para cubrir cambios de zona horaria.
const keyTTL = 48 * time.Hour

// Counter lo que se usa del cliente (permite un doble en tests). *goredis.Client lo cumple.
type Counter interface {
	TxPipelined(ctx context.Context, fn func(goredis.Pipeliner) error) ([]goredis.Cmder, error)
}

// TransferNumberGenerator INCR sobre transfer:number:YYYYMMDD.
type TransferNumberGenerator struct {
	rdb    Counter
	prefix string
}

// NewClient crea el cliente a partir de la configuración.
func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewTransferNumberGenerator construye el generador. prefix vacío = "transfer:number".
func NewTransferNumberGenerator(rdb Counter, prefix string) *TransferNumberGenerator {
	if prefix == "" {
		prefix = "transfer:number"
	}
	return &TransferNumberGenerator{rdb: rdb, prefix: prefix}
}

// Key clave del consecutivo para el día (UTC).
func (g *TransferNumberGenerator) Key(now time.Time) string {
	return g.prefix + ":" + now.UTC().Format("20060102")
}

// Next incrementa el consecutivo del día y devuelve TRF-YYYYMMDD-NNNNN.
// INCR y EXPIRE NX viajan en el mismo MULTI/EXEC: o se entrega el número y la clave tiene TTL,
// o no se consume ningún número.
func (g *TransferNumberGenerator) Next(ctx context.Context, now time.Time) (string, error) {
	key := g.Key(now)
	var incr *goredis.IntCmd
	_, err := g.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, keyTTL)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("redis incr %s: %w", key, err)
	}
	return inventory.FormatTransferNumber(now, incr.Val()), nil
}
