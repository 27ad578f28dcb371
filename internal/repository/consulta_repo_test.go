package repository

import (
	"context"
	"testing"

	"precomed/internal/dto"
	"precomed/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// três produtos: A (sem CAP), B (com CAP e PMVG), C (com CAP, só PF)
func consultaFixture(t *testing.T) *fixture {
	f := novoFixture(t)
	a := f.produto(t, produtoFixture{ggrem: "100", nome: "ALFA", substancia: "DIPIRONA SODICA", cnpj: "01", laboratorio: "EMS S/A", tipo: "Genérico", cap: model.Nao})
	b := f.produto(t, produtoFixture{ggrem: "200", nome: "BETA", substancia: "PARACETAMOL", cnpj: "02", laboratorio: "MEDLEY", tipo: "Similar", cap: model.Sim})
	c := f.produto(t, produtoFixture{ggrem: "300", nome: "GAMA", substancia: "DIPIRONA", cnpj: "03", laboratorio: "ACHE 100%", tipo: "Novo", cap: model.Sim})

	f.preco(t, model.TabelaPF, a, "17", dia(1), "30")
	f.preco(t, model.TabelaPF, a, "18", dia(1), "31")
	f.preco(t, model.TabelaPF, b, "17", dia(1), "50")
	f.preco(t, model.TabelaPMVG, b, "17", dia(1), "40")
	// PMVG updated on a later day than the PF row
	f.preco(t, model.TabelaPMVG, b, "17", dia(3), "35")
	f.preco(t, model.TabelaPF, c, "17", dia(1), "25")
	f.preco(t, model.TabelaPF, c, "17", dia(2), "20")
	return f
}

func ggrems(rows []ProdutoConsulta) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.CodigoGGREM)
	}
	return out
}

func TestBuscar_SemFiltros(t *testing.T) {
	f := consultaFixture(t)
	rows, err := NewConsultaRepository(f.db).Buscar(context.Background(), dto.FiltroConsulta{})
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "100", "200", "300"}, ggrems(rows))
}

func TestBuscar_PrecoReferencia(t *testing.T) {
	f := consultaFixture(t)
	rows, err := NewConsultaRepository(f.db).Buscar(context.Background(), dto.FiltroConsulta{OrdenarPor: dto.OrdenarPorPreco})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	byRef := map[string]string{}
	for _, r := range rows {
		require.True(t, r.PrecoReferencia.Valid, r.CodigoGGREM)
		byRef[r.CodigoGGREM+"/"+r.Aliquota.Decimal.String()] = r.PrecoReferencia.Decimal.String()
		if r.CodigoGGREM == "200" {
			assert.Equal(t, "50", r.PrecoFabrica.Decimal.String())
			assert.Equal(t, "35", r.PrecoPMVG.Decimal.String())
		}
	}
	assert.Equal(t, "30", byRef["100/17"])
	assert.Equal(t, "35", byRef["200/17"]) // CAP: latest PMVG, whatever the PF date
	assert.Equal(t, "20", byRef["300/17"]) // CAP without PMVG: latest PF
	assert.Equal(t, []string{"300", "100", "100", "200"}, ggrems(rows))
}

func TestBuscar_Filtros(t *testing.T) {
	f := consultaFixture(t)
	repo := NewConsultaRepository(f.db)
	ctx := context.Background()
	sim, nao := true, false

	cases := []struct {
		nome   string
		filtro dto.FiltroConsulta
		want   []string
	}{
		{"substancia parcial sem caixa", dto.FiltroConsulta{Substancia: "dipirona"}, []string{"100", "100", "300"}},
		{"laboratorio parcial", dto.FiltroConsulta{Laboratorio: "med"}, []string{"200"}},
		{"curinga literal", dto.FiltroConsulta{Laboratorio: "100%"}, []string{"300"}},
		{"curinga sem par", dto.FiltroConsulta{Laboratorio: "_"}, []string{}},
		{"tipo exato", dto.FiltroConsulta{TipoProduto: "Similar"}, []string{"200"}},
		{"tipo parcial nao casa", dto.FiltroConsulta{TipoProduto: "Simil"}, []string{}},
		{"com cap", dto.FiltroConsulta{ComCAP: &sim}, []string{"200", "300"}},
		{"sem cap", dto.FiltroConsulta{ComCAP: &nao}, []string{"100", "100"}},
		{"aliquota", dto.FiltroConsulta{Aliquota: dec("18")}, []string{"100"}},
		{"preco maximo", dto.FiltroConsulta{PrecoMaximo: dec("30")}, []string{"100", "300"}},
		{"preco maximo com PMVG atual", dto.FiltroConsulta{ComCAP: &sim, PrecoMaximo: dec("36")}, []string{"200", "300"}},
		{"preco maximo nao arredonda", dto.FiltroConsulta{PrecoMaximo: dec("19.995")}, []string{}},
		{"combinado", dto.FiltroConsulta{Substancia: "DIPIRONA", ComCAP: &sim, PrecoMaximo: dec("25")}, []string{"300"}},
	}
	for _, tc := range cases {
		t.Run(tc.nome, func(t *testing.T) {
			rows, err := repo.Buscar(ctx, tc.filtro)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ggrems(rows))
		})
	}
}

func TestBuscar_OrdemLaboratorio(t *testing.T) {
	f := consultaFixture(t)
	rows, err := NewConsultaRepository(f.db).Buscar(context.Background(), dto.FiltroConsulta{OrdenarPor: dto.OrdenarPorLaboratorio})
	require.NoError(t, err)
	assert.Equal(t, []string{"300", "100", "100", "200"}, ggrems(rows))
}

func TestBuscar_ProdutoSemLaboratorioFicaFora(t *testing.T) {
	f := consultaFixture(t)
	f.produto(t, produtoFixture{ggrem: "400", nome: "DELTA", substancia: "DIPIRONA", cnpj: "", tipo: "Novo", cap: model.Nao})

	rows, err := NewConsultaRepository(f.db).Buscar(context.Background(), dto.FiltroConsulta{Substancia: "DIPIRONA"})
	require.NoError(t, err)
	assert.NotContains(t, ggrems(rows), "400")
}
