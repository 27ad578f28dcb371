package infra

import (
	"fmt"

	"precomed/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection to Postgres with the pool settings used by
// the server and the import CLI.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := Open(postgres.Open(dsn))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	return db, nil
}

// Open wraps gorm.Open with the shared config, so tests can hand in another dialector.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// RunMigrations creates or updates every table of the price schema, then applies the
// Postgres-only DDL that AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Substancia{},
		&model.Laboratorio{},
		&model.ClasseTerapeutica{},
		&model.TipoProduto{},
		&model.RegimePreco{},
		&model.AliquotaICMS{},
		&model.Produto{},
		&model.PrecoFabrica{},
		&model.PrecoPMVG{},
		&model.HistoricoPreco{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements: the closed Sim/Não vocabularies as
// CHECK constraints and the indexes behind "latest price" lookups and text search.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"check produtos flags", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_produtos_sim_nao') THEN
    ALTER TABLE produtos ADD CONSTRAINT chk_produtos_sim_nao CHECK (
      cap IN ('Sim', 'Não') AND confaz_87 IN ('Sim', 'Não') AND
      icms_zero IN ('Sim', 'Não') AND comercializacao_2024 IN ('Sim', 'Não'));
  END IF;
END $$`},
		{"check produtos restricao_hospitalar", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_produtos_restricao') THEN
    ALTER TABLE produtos ADD CONSTRAINT chk_produtos_restricao
      CHECK (restricao_hospitalar IN ('Sim', 'Não', 'Não especificado'));
  END IF;
END $$`},
		{"check historico_precos tipo_preco", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_historico_tipo_preco') THEN
    ALTER TABLE historico_precos ADD CONSTRAINT chk_historico_tipo_preco
      CHECK (tipo_preco IN ('PF', 'PMVG'));
  END IF;
END $$`},
		{"index precos_fabrica vigencia",
			`CREATE INDEX IF NOT EXISTS idx_pf_produto_vigencia ON precos_fabrica (id_produto, id_aliquota, data_vigencia DESC)`},
		{"index precos_pmvg vigencia",
			`CREATE INDEX IF NOT EXISTS idx_pmvg_produto_vigencia ON precos_pmvg (id_produto, id_aliquota, data_vigencia DESC)`},
		{"index substancias lower(nome)",
			`CREATE INDEX IF NOT EXISTS idx_substancias_nome_lower ON substancias (LOWER(nome_substancia))`},
		{"index laboratorios lower(nome)",
			`CREATE INDEX IF NOT EXISTS idx_laboratorios_nome_lower ON laboratorios (LOWER(nome_laboratorio))`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
