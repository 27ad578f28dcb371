package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Origem values for HistoricoPreco.
const (
	OrigemManual     = "manual"
	OrigemImportacao = "importacao"
)

// HistoricoPreco registra cada alteração aceita de preço de um produto.
// Rows are immutable: never updated nor deleted. A change that leaves the stored
// value untouched produces no row.
type HistoricoPreco struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;column:id_historico"`
	ProdutoID     uuid.UUID        `gorm:"type:uuid;column:id_produto;not null;index"`
	TipoPreco     TipoPreco        `gorm:"column:tipo_preco;type:varchar(4);not null"`
	AliquotaID    uuid.UUID        `gorm:"type:uuid;column:id_aliquota;not null"`
	ValorAnterior *decimal.Decimal `gorm:"column:valor_anterior;type:decimal(12,2)"`
	ValorNovo     decimal.Decimal  `gorm:"column:valor_novo;type:decimal(12,2);not null"`
	Usuario       string           `gorm:"column:usuario_alteracao;not null"`
	Origem        string           `gorm:"column:origem;type:varchar(20);not null;default:'manual'"` // manual | importacao
	CreatedAt     time.Time        `gorm:"index"`

	Aliquota *AliquotaICMS `gorm:"foreignKey:AliquotaID;references:ID"`
}

func (HistoricoPreco) TableName() string { return "historico_precos" }
