package repository

import (
	"context"
	"fmt"
	"time"

	"precomed/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ValoresPreco are the three amounts of one price row.
type ValoresPreco struct {
	SemImpostos    *decimal.Decimal
	ComImpostos    *decimal.Decimal
	ComImpostosALC *decimal.Decimal
}

// Vazio reports whether every amount is absent.
func (v ValoresPreco) Vazio() bool {
	return v.SemImpostos == nil && v.ComImpostos == nil && v.ComImpostosALC == nil
}

var chavePreco = []clause.Column{{Name: "id_produto"}, {Name: "id_aliquota"}, {Name: "data_vigencia"}}

// PrecoRepository writes and reads the PF and PMVG schedules. Both share one shape, so
// every method takes the schedule's model.TabelaPreco.
type PrecoRepository interface {
	// UpsertTx writes all amounts of (produto, aliquota, data), overwriting an existing row.
	UpsertTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID, data time.Time, v ValoresPreco) error

	// UpsertComImpostosTx writes only the tax-inclusive amount; the other columns of an
	// existing row are left as they are.
	UpsertComImpostosTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID, data time.Time, valor decimal.Decimal) error

	// UltimoComImpostosTx returns the most recent non-NULL tax-inclusive amount, or nil
	// when no row carries one.
	UltimoComImpostosTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID) (*decimal.Decimal, error)

	ListPF(ctx context.Context, produtoID uuid.UUID) ([]model.PrecoFabrica, error)
	ListPMVG(ctx context.Context, produtoID uuid.UUID) ([]model.PrecoPMVG, error)

	DB() *gorm.DB
}

type precoRepo struct{ db *gorm.DB }

func NewPrecoRepository(db *gorm.DB) PrecoRepository { return &precoRepo{db: db} }

func (r *precoRepo) DB() *gorm.DB { return r.db }

func linhaPreco(t model.TabelaPreco, produtoID, aliquotaID uuid.UUID, data time.Time, v ValoresPreco) (any, error) {
	switch t.Tipo {
	case model.TipoPF:
		return &model.PrecoFabrica{
			ProdutoID: produtoID, AliquotaID: aliquotaID, DataVigencia: data,
			SemImpostos: v.SemImpostos, ComImpostos: v.ComImpostos, ComImpostosALC: v.ComImpostosALC,
		}, nil
	case model.TipoPMVG:
		return &model.PrecoPMVG{
			ProdutoID: produtoID, AliquotaID: aliquotaID, DataVigencia: data,
			SemImpostos: v.SemImpostos, ComImpostos: v.ComImpostos, ComImpostosALC: v.ComImpostosALC,
		}, nil
	}
	return nil, fmt.Errorf("tabela de preço desconhecida: %q", t.Tipo)
}

func (r *precoRepo) upsert(tx *gorm.DB, t model.TabelaPreco, linha any, colunas []string) error {
	err := tx.Clauses(clause.OnConflict{
		Columns:   chavePreco,
		DoUpdates: clause.AssignmentColumns(append(colunas, "updated_at")),
	}).Create(linha).Error
	if err != nil {
		return fmt.Errorf("gravando %s: %w", t.Nome, err)
	}
	return nil
}

func (r *precoRepo) UpsertTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID, data time.Time, v ValoresPreco) error {
	linha, err := linhaPreco(t, produtoID, aliquotaID, data, v)
	if err != nil {
		return err
	}
	return r.upsert(tx, t, linha, []string{t.ColSemImpostos, t.ColComImpostos, t.ColComImpostosALC})
}

func (r *precoRepo) UpsertComImpostosTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID, data time.Time, valor decimal.Decimal) error {
	linha, err := linhaPreco(t, produtoID, aliquotaID, data, ValoresPreco{ComImpostos: &valor})
	if err != nil {
		return err
	}
	return r.upsert(tx, t, linha, []string{t.ColComImpostos})
}

func (r *precoRepo) UltimoComImpostosTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID) (*decimal.Decimal, error) {
	var vals []decimal.NullDecimal
	err := tx.Table(t.Nome).
		Where("id_produto = ? AND id_aliquota = ?", produtoID, aliquotaID).
		Where(t.ColComImpostos + " IS NOT NULL").
		Order("data_vigencia DESC").
		Limit(1).
		Pluck(t.ColComImpostos, &vals).Error
	if err != nil {
		return nil, fmt.Errorf("lendo %s: %w", t.Nome, err)
	}
	if len(vals) == 0 || !vals[0].Valid {
		return nil, nil
	}
	return &vals[0].Decimal, nil
}

func (r *precoRepo) ListPF(ctx context.Context, produtoID uuid.UUID) ([]model.PrecoFabrica, error) {
	var out []model.PrecoFabrica
	err := r.db.WithContext(ctx).
		Where("id_produto = ?", produtoID).
		Order("data_vigencia DESC").
		Find(&out).Error
	return out, err
}

func (r *precoRepo) ListPMVG(ctx context.Context, produtoID uuid.UUID) ([]model.PrecoPMVG, error) {
	var out []model.PrecoPMVG
	err := r.db.WithContext(ctx).
		Where("id_produto = ?", produtoID).
		Order("data_vigencia DESC").
		Find(&out).Error
	return out, err
}
