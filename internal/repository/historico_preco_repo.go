package repository

import (
	"context"

	"precomed/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HistoricoPrecoRepository interface {
	CreateTx(tx *gorm.DB, h *model.HistoricoPreco) error
	ListByProduto(ctx context.Context, produtoID uuid.UUID, page, limit int) ([]model.HistoricoPreco, int64, error)
}

type historicoPrecoRepository struct{ db *gorm.DB }

func NewHistoricoPrecoRepository(db *gorm.DB) HistoricoPrecoRepository {
	return &historicoPrecoRepository{db: db}
}

func (r *historicoPrecoRepository) CreateTx(tx *gorm.DB, h *model.HistoricoPreco) error {
	return tx.Create(h).Error
}

// ListByProduto returns paginated price-change records for one product,
// ordered newest-first (append-only table, so this reflects natural insert order).
func (r *historicoPrecoRepository) ListByProduto(
	ctx context.Context,
	produtoID uuid.UUID,
	page, limit int,
) ([]model.HistoricoPreco, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.HistoricoPreco{}).
		Where("id_produto = ?", produtoID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.HistoricoPreco
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("id_produto = ?", produtoID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("Aliquota").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
