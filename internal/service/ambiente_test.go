package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"precomed/internal/dto"
	"precomed/internal/infra"
	"precomed/internal/repository"
	"precomed/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var hoje = time.Date(2025, time.June, 2, 15, 30, 0, 0, time.UTC)

type ambiente struct {
	db        *gorm.DB
	entidades repository.EntidadeRepository
	produtos  repository.ProdutoRepository
	precos    repository.PrecoRepository
	historico repository.HistoricoPrecoRepository
	cache     *infra.CacheConsulta
	redis     *miniredis.Miniredis
	faker     *gofakeit.Faker
}

func novoAmbiente(t *testing.T) *ambiente {
	t.Helper()
	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &ambiente{
		db:        db,
		entidades: repository.NewEntidadeRepository(db),
		produtos:  repository.NewProdutoRepository(db),
		precos:    repository.NewPrecoRepository(db),
		historico: repository.NewHistoricoPrecoRepository(db),
		cache:     infra.NewCacheConsulta(rdb, time.Minute),
		redis:     mr,
		faker:     gofakeit.New(42),
	}
}

func (a *ambiente) importacao(cfg ImportacaoConfig, opts ...OpcaoImportacao) ImportacaoService {
	opts = append([]OpcaoImportacao{ComRelogio(func() time.Time { return hoje })}, opts...)
	return NewImportacaoService(a.db, a.entidades, a.produtos, a.precos, a.historico, a.cache, cfg, opts...)
}

// importar runs an import of linhas with no header lines.
func (a *ambiente) importar(t *testing.T, linhas ...*testutil.LinhaCMED) *dto.ResumoImportacao {
	t.Helper()
	resumo, err := a.importacao(ImportacaoConfig{}).Importar(context.Background(), strings.NewReader(testutil.Arquivo(0, linhas...)))
	require.NoError(t, err)
	return resumo
}

func (a *ambiente) aliquota(t *testing.T, valor string) string {
	t.Helper()
	al, err := a.entidades.FindAliquotaByValor(context.Background(), decimal.RequireFromString(valor))
	require.NoError(t, err)
	return al.ID.String()
}

func (a *ambiente) preco(limite string) PrecoService {
	s := NewPrecoService(a.db, a.produtos, a.entidades, a.precos, a.historico, a.cache, decimal.RequireFromString(limite))
	s.(*precoService).agora = func() time.Time { return hoje }
	return s
}
