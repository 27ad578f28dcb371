// Package source reads the CMED price extract: a semicolon-delimited file with a fixed
// column layout and a block of header lines before the data.
package source

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Column offsets of a data row (0-based).
const (
	ColSubstancia          = 0
	ColCNPJ                = 1
	ColLaboratorio         = 2
	ColCodigoGGREM         = 3
	ColRegistro            = 4
	ColEAN1                = 5
	ColEAN2                = 6
	ColEAN3                = 7
	ColProduto             = 8
	ColApresentacao        = 9
	ColClasseTerapeutica   = 10
	ColTipoProduto         = 11
	ColRegimePreco         = 12
	ColPFSemImpostos       = 13
	ColPMVGSemImpostos     = 39
	ColRestricaoHospitalar = 65
	ColCAP                 = 66
	ColConfaz87            = 67
	ColICMSZero            = 68
	ColAnaliseRecursal     = 69
	ColListaCredito        = 70
	ColComercializacao     = 71
	ColTarja               = 72

	// TotalColunas is the width of a complete data row.
	TotalColunas = 73
)

// TipoValor tells which amount of a price row a column feeds.
type TipoValor int

const (
	SemImpostos TipoValor = iota
	ComImpostos
	ComImpostosALC
)

func (t TipoValor) String() string {
	switch t {
	case SemImpostos:
		return "sem impostos"
	case ComImpostos:
		return "com impostos"
	case ComImpostosALC:
		return "com impostos ALC"
	}
	return fmt.Sprintf("TipoValor(%d)", int(t))
}

// Coluna maps one price column of the extract to an ICMS rate. Aliquota is nil for the
// tax-free column.
type Coluna struct {
	Aliquota  *decimal.Decimal
	Indice    int
	Tipo      TipoValor
	Descricao string
}

// Aliquotas is the ICMS rate ladder of the extract, in column order.
var Aliquotas = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(12),
	decimal.NewFromInt(17),
	decimal.RequireFromString("17.5"),
	decimal.NewFromInt(18),
	decimal.NewFromInt(19),
	decimal.RequireFromString("19.5"),
	decimal.NewFromInt(20),
	decimal.RequireFromString("20.5"),
	decimal.NewFromInt(21),
	decimal.NewFromInt(22),
	decimal.RequireFromString("22.5"),
	decimal.NewFromInt(23),
}

var (
	// ColunasPF holds the 26 factory price columns (offsets 13 to 38).
	ColunasPF = escada("PF", ColPFSemImpostos)
	// ColunasPMVG holds the 26 consumer price columns (offsets 39 to 64).
	ColunasPMVG = escada("PMVG", ColPMVGSemImpostos)
)

// escada lays out one schedule: the tax-free column, the 0% column and then a base/ALC
// pair for every other rate. 0% has no ALC variant.
func escada(prefixo string, inicio int) []Coluna {
	cols := make([]Coluna, 0, 2*len(Aliquotas))
	cols = append(cols, Coluna{Indice: inicio, Tipo: SemImpostos, Descricao: prefixo + " Sem Impostos"})

	idx := inicio + 1
	for i := range Aliquotas {
		a := Aliquotas[i]
		cols = append(cols, Coluna{Aliquota: &a, Indice: idx, Tipo: ComImpostos,
			Descricao: fmt.Sprintf("%s %s%%", prefixo, a.String())})
		idx++
		if a.IsZero() {
			continue
		}
		cols = append(cols, Coluna{Aliquota: &a, Indice: idx, Tipo: ComImpostosALC,
			Descricao: fmt.Sprintf("%s %s%% ALC", prefixo, a.String())})
		idx++
	}
	return cols
}

// Linha is one data row of the extract.
type Linha struct {
	// Numero is the 1-based line number in the file.
	Numero int
	Campos []string
}

// Campo returns the trimmed field at i, or "" when the row is shorter.
func (l Linha) Campo(i int) string {
	if i < 0 || i >= len(l.Campos) {
		return ""
	}
	return strings.TrimSpace(l.Campos[i])
}

// Bruto returns the untrimmed field at i, or "" when the row is shorter.
func (l Linha) Bruto(i int) string {
	if i < 0 || i >= len(l.Campos) {
		return ""
	}
	return l.Campos[i]
}

// Len is the number of fields in the row.
func (l Linha) Len() int { return len(l.Campos) }
