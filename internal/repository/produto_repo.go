package repository

import (
	"context"
	"errors"
	"fmt"

	"precomed/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNenhumaLinhaAfetada means a write that must touch exactly one row touched none.
var ErrNenhumaLinhaAfetada = errors.New("nenhuma linha afetada")

// colunasMutaveis are rewritten on every import of an existing GGREM code, zero values
// included.
var colunasMutaveis = []string{
	"registro", "ean_1", "ean_2", "ean_3", "nome_produto", "apresentacao",
	"id_substancia", "id_laboratorio", "id_classe", "id_tipo", "id_regime",
	"restricao_hospitalar", "cap", "confaz_87", "icms_zero", "analise_recursal",
	"lista_concessao_credito", "comercializacao_2024", "tarja", "updated_at",
}

// ProdutoRepository defines the data access contract for products.
type ProdutoRepository interface {
	FindByGGREM(ctx context.Context, codigo string) (*model.Produto, error)

	// Used inside transactions — callers must pass the tx instance
	FindByGGREMTx(tx *gorm.DB, codigo string) (*model.Produto, error)

	// UpsertTx inserts p or updates the row with the same GGREM code. p.ID is set to the
	// stored id; criado reports whether a new row was inserted.
	UpsertTx(tx *gorm.DB, p *model.Produto) (id uuid.UUID, criado bool, err error)

	DB() *gorm.DB
}

type produtoRepo struct{ db *gorm.DB }

func NewProdutoRepository(db *gorm.DB) ProdutoRepository { return &produtoRepo{db: db} }

func (r *produtoRepo) DB() *gorm.DB { return r.db }

func (r *produtoRepo) FindByGGREM(ctx context.Context, codigo string) (*model.Produto, error) {
	return r.FindByGGREMTx(r.db.WithContext(ctx), codigo)
}

func (r *produtoRepo) FindByGGREMTx(tx *gorm.DB, codigo string) (*model.Produto, error) {
	var p model.Produto
	err := tx.Where("codigo_ggrem = ?", codigo).First(&p).Error
	return &p, err
}

func (r *produtoRepo) UpsertTx(tx *gorm.DB, p *model.Produto) (uuid.UUID, bool, error) {
	var ids []uuid.UUID
	if err := tx.Model(&model.Produto{}).
		Where("codigo_ggrem = ?", p.CodigoGGREM).
		Limit(1).
		Pluck("id_produto", &ids).Error; err != nil {
		return uuid.Nil, false, fmt.Errorf("buscando produto %s: %w", p.CodigoGGREM, err)
	}

	if len(ids) == 0 {
		p.ID = uuid.Nil
		res := tx.Create(p)
		if res.Error != nil {
			return uuid.Nil, false, fmt.Errorf("inserindo produto %s: %w", p.CodigoGGREM, res.Error)
		}
		if res.RowsAffected == 0 {
			return uuid.Nil, false, fmt.Errorf("inserindo produto %s: %w", p.CodigoGGREM, ErrNenhumaLinhaAfetada)
		}
		return p.ID, true, nil
	}

	p.ID = ids[0]
	res := tx.Model(&model.Produto{ID: p.ID}).
		Select(colunasMutaveis).
		Updates(p)
	if res.Error != nil {
		return uuid.Nil, false, fmt.Errorf("atualizando produto %s: %w", p.CodigoGGREM, res.Error)
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, false, fmt.Errorf("atualizando produto %s: %w", p.CodigoGGREM, ErrNenhumaLinhaAfetada)
	}
	return p.ID, false, nil
}
