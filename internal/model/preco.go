package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PrecoFabrica (PF) is the factory price of a product for one ICMS tier on one
// effective date. (IDProduto, AliquotaID, DataVigencia) is unique: a second import on
// the same day overwrites the amounts.
type PrecoFabrica struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;column:id_preco"`
	ProdutoID    uuid.UUID        `gorm:"type:uuid;column:id_produto;not null;uniqueIndex:idx_pf_chave"`
	AliquotaID   uuid.UUID        `gorm:"type:uuid;column:id_aliquota;not null;uniqueIndex:idx_pf_chave"`
	DataVigencia time.Time        `gorm:"column:data_vigencia;type:date;not null;uniqueIndex:idx_pf_chave"`
	SemImpostos  *decimal.Decimal `gorm:"column:pf_sem_impostos;type:decimal(12,2)"`
	ComImpostos  *decimal.Decimal `gorm:"column:pf_com_impostos;type:decimal(12,2)"`
	// ComImpostosALC holds the "ALC" surcharge column of the same tier.
	ComImpostosALC *decimal.Decimal `gorm:"column:pf_com_impostos_alc;type:decimal(12,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PrecoFabrica) TableName() string { return "precos_fabrica" }

// PrecoPMVG mirrors PrecoFabrica for the maximum government sale price.
type PrecoPMVG struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;column:id_preco"`
	ProdutoID      uuid.UUID        `gorm:"type:uuid;column:id_produto;not null;uniqueIndex:idx_pmvg_chave"`
	AliquotaID     uuid.UUID        `gorm:"type:uuid;column:id_aliquota;not null;uniqueIndex:idx_pmvg_chave"`
	DataVigencia   time.Time        `gorm:"column:data_vigencia;type:date;not null;uniqueIndex:idx_pmvg_chave"`
	SemImpostos    *decimal.Decimal `gorm:"column:pmvg_sem_impostos;type:decimal(12,2)"`
	ComImpostos    *decimal.Decimal `gorm:"column:pmvg_com_impostos;type:decimal(12,2)"`
	ComImpostosALC *decimal.Decimal `gorm:"column:pmvg_com_impostos_alc;type:decimal(12,2)"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (PrecoPMVG) TableName() string { return "precos_pmvg" }

// TipoPreco selects one of the two price schedules.
type TipoPreco string

const (
	TipoPF   TipoPreco = "PF"
	TipoPMVG TipoPreco = "PMVG"
)

// TabelaPreco describes where a schedule lives. Both schedules share the same shape,
// so repositories address them through this descriptor instead of two code paths.
type TabelaPreco struct {
	Tipo              TipoPreco
	Nome              string
	ColSemImpostos    string
	ColComImpostos    string
	ColComImpostosALC string
}

var (
	TabelaPF = TabelaPreco{
		Tipo:              TipoPF,
		Nome:              "precos_fabrica",
		ColSemImpostos:    "pf_sem_impostos",
		ColComImpostos:    "pf_com_impostos",
		ColComImpostosALC: "pf_com_impostos_alc",
	}
	TabelaPMVG = TabelaPreco{
		Tipo:              TipoPMVG,
		Nome:              "precos_pmvg",
		ColSemImpostos:    "pmvg_sem_impostos",
		ColComImpostos:    "pmvg_com_impostos",
		ColComImpostosALC: "pmvg_com_impostos_alc",
	}
)

// Tabela returns the descriptor for t; ok is false for an unknown type.
func (t TipoPreco) Tabela() (TabelaPreco, bool) {
	switch t {
	case TipoPF:
		return TabelaPF, true
	case TipoPMVG:
		return TabelaPMVG, true
	}
	return TabelaPreco{}, false
}
