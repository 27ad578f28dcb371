package main

import (
	"fmt"
	"time"

	"precomed/internal/config"
	"precomed/internal/infra"
	"precomed/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// flagsConfig maps config keys to the CLI flags that override them.
var flagsConfig = map[string]string{
	"DB_HOST":                   "host",
	"DB_PORT":                   "port",
	"DB_NAME":                   "database",
	"DB_USER":                   "user",
	"DB_PASSWORD":               "password",
	"REDIS_URL":                 "redis",
	"LOG_LEVEL":                 "log-level",
	"IMPORT_CSV":                "csv",
	"IMPORT_SKIP":               "skip",
	"IMPORT_ENCODING":           "encoding",
	"IMPORT_COMMIT_EVERY":       "commit-a-cada",
	"IMPORT_AUDIT_HISTORY":      "auditar",
	"PRICE_VARIATION_ALERT_PCT": "limite-variacao",
}

// abrirBanco is swapped in tests.
var abrirBanco = func(cfg *config.Config) (*gorm.DB, error) {
	return infra.NewDatabase(cfg.DSN())
}

// app is the state shared by the subcommands once the root pre-run has connected.
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	rdb   *redis.Client
	cache *infra.CacheConsulta

	entidades repository.EntidadeRepository
	produtos  repository.ProdutoRepository
	precos    repository.PrecoRepository
	historico repository.HistoricoPrecoRepository
}

func novoRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "cmed",
		Short:         "Carga e administração da lista de preços de medicamentos da CMED",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.iniciar(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) { a.encerrar() },
	}

	pf := root.PersistentFlags()
	pf.String("host", "", "servidor PostgreSQL (DB_HOST)")
	pf.Int("port", 5432, "porta do PostgreSQL (DB_PORT)")
	pf.String("database", "", "nome do banco (DB_NAME)")
	pf.String("user", "", "usuário do banco (DB_USER)")
	pf.String("password", "", "senha do banco (DB_PASSWORD)")
	pf.String("redis", "", "URL do Redis (REDIS_URL), vazio desativa o cache")
	pf.String("log-level", "", "debug | info | warn | error (LOG_LEVEL)")

	root.AddCommand(novoImportarCmd(a), novoPrecoCmd(a), novoBuscarCmd(a))
	return root
}

func bindFlags(fs *pflag.FlagSet) error {
	for chave, nome := range flagsConfig {
		f := fs.Lookup(nome)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(chave, f); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) iniciar(cmd *cobra.Command) error {
	if err := bindFlags(cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("carregando configuração: %w", err)
	}
	infra.ConfigurarLog(cfg.Env, cfg.LogLevel)

	db, err := abrirBanco(cfg)
	if err != nil {
		return fmt.Errorf("conectando ao banco: %w", err)
	}

	rdb, err := infra.NewRedis(cmd.Context(), cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis indisponível, cache de consulta desativado")
		rdb = nil
	}

	a.cfg = cfg
	a.db = db
	a.rdb = rdb
	a.cache = infra.NewCacheConsulta(rdb, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	a.entidades = repository.NewEntidadeRepository(db)
	a.produtos = repository.NewProdutoRepository(db)
	a.precos = repository.NewPrecoRepository(db)
	a.historico = repository.NewHistoricoPrecoRepository(db)
	return nil
}

func (a *app) encerrar() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}
