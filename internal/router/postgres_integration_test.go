//go:build integration

package router

// Runs the import and the admin API against real Postgres and Redis containers.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"precomed/internal/config"
	"precomed/internal/dto"
	"precomed/internal/infra"
	"precomed/internal/middleware"
	"precomed/internal/model"
	"precomed/internal/repository"
	"precomed/internal/service"
	"precomed/internal/source"
	"precomed/internal/testutil"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestPostgres_ImportacaoEAPI(t *testing.T) {
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("cmed_test"),
		tcPostgres.WithUsername("cmed"),
		tcPostgres.WithPassword("cmed"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(pgC) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(rdC) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                    "test",
		JWTSecret:              testSecret,
		DatabaseURL:            pgURL,
		RedisURL:               rdURL,
		PriceVariationAlertPct: 50,
	}

	db, err := infra.NewDatabase(cfg.DSN())
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	require.NoError(t, infra.RunMigrations(db), "migrations are idempotent")

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	cache := infra.NewCacheConsulta(rdb, time.Minute)

	f := gofakeit.New(11)
	boa := testutil.NovaLinha(f).Com(source.ColSubstancia, "OMEPRAZOL").Com(17, "30,00").Com(43, "25,00").
		Com(source.ColCAP, "Não")
	// codigo_ggrem is varchar(20): the insert fails inside Postgres, not in Go
	longa := testutil.NovaLinha(f).Com(source.ColCodigoGGREM, strings.Repeat("9", 30)).
		Com(source.ColSubstancia, "SUBSTANCIA DA LINHA LONGA")
	outra := testutil.NovaLinha(f).Com(17, "5,00")

	imp := service.NewImportacaoService(db,
		repository.NewEntidadeRepository(db),
		repository.NewProdutoRepository(db),
		repository.NewPrecoRepository(db),
		repository.NewHistoricoPrecoRepository(db),
		cache, service.ImportacaoConfig{Pular: 3, CommitACada: 2})
	resumo, err := imp.Importar(ctx, strings.NewReader(testutil.Arquivo(3, boa, longa, outra)))
	require.NoError(t, err)
	assert.Equal(t, 3, resumo.Processadas)
	assert.Equal(t, 2, resumo.Sucesso)
	assert.Equal(t, 1, resumo.Erros)

	var n int64
	require.NoError(t, db.Model(&model.Substancia{}).Where("nome_substancia = ?", "SUBSTANCIA DA LINHA LONGA").Count(&n).Error)
	assert.Zero(t, n, "failed row rolled back to its savepoint")

	var al model.AliquotaICMS
	require.NoError(t, db.Where("aliquota = ?", 17).First(&al).Error)

	a := &api{engine: New(cfg, db, cache), db: db, ggrem: boa.Campo(source.ColCodigoGGREM), al17: al.ID.String()}

	busca := func() dto.ConsultaResponse {
		w := a.do(http.MethodGet, "/v1/produtos?substancia=omeprazol", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ConsultaResponse
		require.NoError(t, jsonDecode(w, &resp))
		return resp
	}
	antes := busca()
	require.Equal(t, 1, antes.Total)
	assert.Equal(t, "30", antes.Data[0].PrecoFabrica.String())

	w := a.atualizar(token(t, "integracao", middleware.RolAdministrador), "PF", "31.50")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	depois := busca()
	assert.Equal(t, "31.5", depois.Data[0].PrecoFabrica.String(), "update invalidates the cached search")

	w = a.atualizar(token(t, "integracao", middleware.RolAdministrador), "PMVG", "40")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// the bound is compared at full precision, not cast to the column scale
	contar := func(maximo string) int {
		w := a.do(http.MethodGet, "/v1/produtos?substancia=omeprazol&preco_maximo="+maximo, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.ConsultaResponse
		require.NoError(t, jsonDecode(w, &resp))
		return resp.Total
	}
	assert.Equal(t, 0, contar("31.495"))
	assert.Equal(t, 1, contar("31.50"))
}
