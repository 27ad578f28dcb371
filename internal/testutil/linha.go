package testutil

import (
	"strings"

	"precomed/internal/source"

	"github.com/brianvoe/gofakeit/v6"
)

// LinhaCMED builds one data row of the extract. Every price column starts blank.
type LinhaCMED struct {
	campos []string
}

// NovaLinha fills the master-data columns with fake but well-formed values.
func NovaLinha(f *gofakeit.Faker) *LinhaCMED {
	c := make([]string, source.TotalColunas)
	c[source.ColSubstancia] = strings.ToUpper(f.Word()) + " " + f.Numerify("##")
	c[source.ColCNPJ] = f.Numerify("##.###.###/0001-##")
	c[source.ColLaboratorio] = strings.ToUpper(f.Company())
	c[source.ColCodigoGGREM] = f.Numerify("5############")
	c[source.ColRegistro] = f.Numerify("1#########")
	c[source.ColEAN1] = f.Numerify("789##########")
	c[source.ColEAN2] = "-"
	c[source.ColEAN3] = ""
	c[source.ColProduto] = strings.ToUpper(f.Word())
	c[source.ColApresentacao] = f.Numerify("## MG COM CT BL AL PLAS INC X ##")
	c[source.ColClasseTerapeutica] = f.RandomString([]string{
		"N02B - ANALGÉSICOS NÃO NARCÓTICOS",
		"A02A1 - ANTIÁCIDOS SIMPLES",
		"J01C1 - PENICILINAS ORAIS",
	})
	c[source.ColTipoProduto] = f.RandomString([]string{"Genérico", "Similar", "Novo", "Biológico"})
	c[source.ColRegimePreco] = f.RandomString([]string{"Regulado", "Liberado"})
	c[source.ColRestricaoHospitalar] = "Não"
	c[source.ColCAP] = "Não"
	c[source.ColConfaz87] = "Não"
	c[source.ColICMSZero] = "Não"
	c[source.ColAnaliseRecursal] = ""
	c[source.ColListaCredito] = f.RandomString([]string{"Positiva", "Negativa", "Neutra"})
	c[source.ColComercializacao] = "Sim"
	c[source.ColTarja] = f.RandomString([]string{"Tarja Vermelha", "Tarja Preta", "- (*)"})
	return &LinhaCMED{campos: c}
}

// Com sets column i to v.
func (l *LinhaCMED) Com(i int, v string) *LinhaCMED {
	l.campos[i] = v
	return l
}

// Cortada keeps only the first n columns.
func (l *LinhaCMED) Cortada(n int) *LinhaCMED {
	l.campos = l.campos[:n]
	return l
}

func (l *LinhaCMED) Campo(i int) string { return l.campos[i] }

// Linha returns the row as the source reader would yield it.
func (l *LinhaCMED) Linha(numero int) source.Linha {
	return source.Linha{Numero: numero, Campos: append([]string(nil), l.campos...)}
}

func (l *LinhaCMED) String() string { return strings.Join(l.campos, ";") }

// Arquivo renders an extract with cabecalho header lines followed by the rows.
func Arquivo(cabecalho int, linhas ...*LinhaCMED) string {
	var b strings.Builder
	for i := 0; i < cabecalho; i++ {
		b.WriteString("CABEÇALHO ")
		b.WriteString(strings.Repeat("x", i))
		b.WriteString("\n")
	}
	for _, l := range linhas {
		b.WriteString(l.String())
		b.WriteString("\n")
	}
	return b.String()
}
