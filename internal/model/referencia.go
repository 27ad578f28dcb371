package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reference entities are created on first sighting by the importer and never deleted.
// Each one is addressed by a natural key with a unique index so get-or-create can rely
// on ON CONFLICT.

// Substancia is the active ingredient (princípio ativo) of a product.
type Substancia struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id_substancia"`
	Nome      string    `gorm:"column:nome_substancia;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (Substancia) TableName() string { return "substancias" }

// Laboratorio is the registration holder, keyed by CNPJ.
type Laboratorio struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id_laboratorio"`
	CNPJ      string    `gorm:"column:cnpj;type:varchar(20);uniqueIndex;not null"`
	Nome      string    `gorm:"column:nome_laboratorio"`
	CreatedAt time.Time
}

func (Laboratorio) TableName() string { return "laboratorios" }

// ClasseTerapeutica comes from a combined "CODE - Description" source field.
type ClasseTerapeutica struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id_classe"`
	Codigo    string    `gorm:"column:codigo_classe;uniqueIndex;not null"`
	Descricao string    `gorm:"column:descricao_classe"`
	CreatedAt time.Time
}

func (ClasseTerapeutica) TableName() string { return "classes_terapeuticas" }

type TipoProduto struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id_tipo"`
	Tipo      string    `gorm:"column:tipo_produto;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (TipoProduto) TableName() string { return "tipos_produto" }

type RegimePreco struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;column:id_regime"`
	Regime    string    `gorm:"column:regime_preco;uniqueIndex;not null"`
	CreatedAt time.Time
}

func (RegimePreco) TableName() string { return "regimes_preco" }

// SemAliquotaID is the designated ICMS row for the tax-free price series
// ("PF Sem Impostos" / "PMVG Sem Impostos"). Its Aliquota is NULL.
var SemAliquotaID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// AliquotaICMS is a regional tax-rate tier. Seeded before every import.
type AliquotaICMS struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey;column:id_aliquota"`
	Aliquota  *decimal.Decimal `gorm:"column:aliquota;type:decimal(5,2);uniqueIndex"`
	Descricao string           `gorm:"column:descricao;not null"`
	CreatedAt time.Time
}

func (AliquotaICMS) TableName() string { return "aliquotas_icms" }
