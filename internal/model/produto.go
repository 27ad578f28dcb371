package model

import (
	"time"

	"github.com/google/uuid"
)

// Closed vocabulary for the yes/no style flags of the CMED extract.
const (
	Sim             = "Sim"
	Nao             = "Não"
	NaoEspecificado = "Não especificado" // only RestricaoHospitalar
)

// Produto is the product master record, one row per GGREM code.
// Re-importing a code updates the row in place.
type Produto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;column:id_produto"`
	CodigoGGREM  string    `gorm:"column:codigo_ggrem;type:varchar(20);uniqueIndex;not null"`
	Registro     *string   `gorm:"column:registro"`
	EAN1         *string   `gorm:"column:ean_1"`
	EAN2         *string   `gorm:"column:ean_2"`
	EAN3         *string   `gorm:"column:ean_3"`
	Nome         string    `gorm:"column:nome_produto;index;not null"`
	Apresentacao string    `gorm:"column:apresentacao"`

	SubstanciaID  *uuid.UUID `gorm:"type:uuid;column:id_substancia;index"`
	LaboratorioID *uuid.UUID `gorm:"type:uuid;column:id_laboratorio;index"`
	ClasseID      *uuid.UUID `gorm:"type:uuid;column:id_classe"`
	TipoID        *uuid.UUID `gorm:"type:uuid;column:id_tipo"`
	RegimeID      *uuid.UUID `gorm:"type:uuid;column:id_regime"`

	// RestricaoHospitalar: "Sim" | "Não" | "Não especificado"
	RestricaoHospitalar string  `gorm:"column:restricao_hospitalar;type:varchar(20);not null;default:'Não especificado'"`
	CAP                 string  `gorm:"column:cap;type:varchar(3);not null;default:'Não'"`
	Confaz87            string  `gorm:"column:confaz_87;type:varchar(3);not null;default:'Não'"`
	ICMSZero            string  `gorm:"column:icms_zero;type:varchar(3);not null;default:'Não'"`
	AnaliseRecursal     *string `gorm:"column:analise_recursal"`
	ListaCredito        *string `gorm:"column:lista_concessao_credito"`
	Comercializacao     string  `gorm:"column:comercializacao_2024;type:varchar(3);not null;default:'Não'"`
	Tarja               *string `gorm:"column:tarja"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Substancia  *Substancia  `gorm:"foreignKey:SubstanciaID;references:ID"`
	Laboratorio *Laboratorio `gorm:"foreignKey:LaboratorioID;references:ID"`
	Regime      *RegimePreco `gorm:"foreignKey:RegimeID;references:ID"`
}

func (Produto) TableName() string { return "produtos" }

// TemCAP reports whether the product is subject to the CAP price cap.
func (p *Produto) TemCAP() bool { return p.CAP == Sim }
