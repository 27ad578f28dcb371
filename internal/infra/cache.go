package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const chaveVersaoConsulta = "consulta:versao"

// CacheConsulta caches search results in Redis under a versioned key. Invalidar bumps
// the version, so every cached search becomes unreachable at once without a SCAN/DEL
// sweep; stale keys just expire.
//
// A nil *CacheConsulta, or one built with a nil client, is a valid disabled cache.
type CacheConsulta struct {
	rdb       *redis.Client
	ttl       time.Duration
	disjuntor *Disjuntor
}

func NewCacheConsulta(rdb *redis.Client, ttl time.Duration) *CacheConsulta {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheConsulta{rdb: rdb, ttl: ttl, disjuntor: NewDisjuntor(5, 2, 30*time.Second)}
}

func (c *CacheConsulta) versao(ctx context.Context) (int64, error) {
	v, err := c.rdb.Get(ctx, chaveVersaoConsulta).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *CacheConsulta) chave(ctx context.Context, chave string) (string, error) {
	v, err := c.versao(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("consulta:v%d:%s", v, chave), nil
}

// Obter decodes the cached value for chave into destino. Misses and cache faults both
// report false.
func (c *CacheConsulta) Obter(ctx context.Context, chave string, destino any) bool {
	if !c.Ativo() {
		return false
	}
	var dados []byte
	err := c.disjuntor.Executar(func() error {
		k, err := c.chave(ctx, chave)
		if err != nil {
			return err
		}
		dados, err = c.rdb.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	})
	if err != nil {
		log.Debug().Err(err).Msg("cache: leitura ignorada")
		return false
	}
	if dados == nil {
		return false
	}
	return json.Unmarshal(dados, destino) == nil
}

// Gravar stores valor under chave, best effort.
func (c *CacheConsulta) Gravar(ctx context.Context, chave string, valor any) {
	if !c.Ativo() {
		return
	}
	b, err := json.Marshal(valor)
	if err != nil {
		return
	}
	err = c.disjuntor.Executar(func() error {
		k, err := c.chave(ctx, chave)
		if err != nil {
			return err
		}
		return c.rdb.Set(ctx, k, b, c.ttl).Err()
	})
	if err != nil {
		log.Debug().Err(err).Msg("cache: gravação ignorada")
	}
}

// Invalidar drops every cached search by moving to a new key version.
func (c *CacheConsulta) Invalidar(ctx context.Context) error {
	if !c.Ativo() {
		return nil
	}
	return c.disjuntor.Executar(func() error {
		return c.rdb.Incr(ctx, chaveVersaoConsulta).Err()
	})
}

// Ping reports the Redis status for the health endpoint. Disabled cache is not an error.
func (c *CacheConsulta) Ping(ctx context.Context) error {
	if !c.Ativo() {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

// Ativo tells whether a Redis client is configured.
func (c *CacheConsulta) Ativo() bool { return c != nil && c.rdb != nil }
