package normalize

import (
	"testing"

	"precomed/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimal_Ausente(t *testing.T) {
	for _, raw := range []string{"", "-", "    -     ", "   ", " - ", "abc", "12,3,4", "R$ 10"} {
		assert.Nil(t, Decimal(raw), "entrada %q", raw)
	}
}

func TestDecimal_FormatoBrasileiro(t *testing.T) {
	a := Decimal("1.234,56")
	b := Decimal("1234,56")
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.True(t, a.Equal(*b))
	assert.Equal(t, "1234.56", a.String())
}

func TestDecimal_Valores(t *testing.T) {
	cases := map[string]string{
		"10,50":        "10.5",
		" 7,3 ":        "7.3",
		"0":            "0",
		"0,00":         "0",
		"1234.5":       "1234.5",
		"1.000.000,01": "1000000.01",
	}
	for raw, want := range cases {
		got := Decimal(raw)
		require.NotNil(t, got, "entrada %q", raw)
		assert.True(t, decimal.RequireFromString(want).Equal(*got), "entrada %q: %s", raw, got)
	}
}

func TestOpcional(t *testing.T) {
	assert.Nil(t, Opcional("  "))
	v := Opcional(" 7896 ")
	require.NotNil(t, v)
	assert.Equal(t, "7896", *v)
}

func TestSimNao(t *testing.T) {
	assert.Equal(t, model.Sim, SimNao("SIM"))
	assert.Equal(t, model.Sim, SimNao(" sim "))
	assert.Equal(t, model.Nao, SimNao("NAO"))
	assert.Equal(t, model.Nao, SimNao("Não"))
	assert.Equal(t, model.Nao, SimNao(""))
}

func TestConfaz(t *testing.T) {
	assert.Equal(t, model.Sim, Confaz("Sim"))
	assert.Equal(t, model.Sim, Confaz("Confaz 87/02"))
	assert.Equal(t, model.Nao, Confaz("Não"))
	assert.Equal(t, model.Nao, Confaz(""))
}

func TestRestricaoHospitalar(t *testing.T) {
	assert.Equal(t, model.Sim, RestricaoHospitalar("sim"))
	assert.Equal(t, model.Nao, RestricaoHospitalar("Não"))
	assert.Equal(t, model.NaoEspecificado, RestricaoHospitalar("Não especificado"))
	assert.Equal(t, model.NaoEspecificado, RestricaoHospitalar("NAO"))
	assert.Equal(t, model.NaoEspecificado, RestricaoHospitalar("talvez"))
	assert.Equal(t, model.NaoEspecificado, RestricaoHospitalar(""))
}

func TestClasseTerapeutica(t *testing.T) {
	cod, desc := ClasseTerapeutica("A02A1 - ANTIÁCIDOS SIMPLES")
	assert.Equal(t, "A02A1", cod)
	assert.Equal(t, "ANTIÁCIDOS SIMPLES", desc)

	cod, desc = ClasseTerapeutica("N02B - ANALGÉSICOS - OUTROS")
	assert.Equal(t, "N02B", cod)
	assert.Equal(t, "ANALGÉSICOS - OUTROS", desc)

	cod, desc = ClasseTerapeutica("SEM CLASSE")
	assert.Equal(t, "SEM CLASSE", cod)
	assert.Equal(t, "SEM CLASSE", desc)
}
