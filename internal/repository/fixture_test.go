package repository

import (
	"testing"
	"time"

	"precomed/internal/model"
	"precomed/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	entidades EntidadeRepository
	produtos  ProdutoRepository
	precos    PrecoRepository
	aliquotas map[string]uuid.UUID
}

func novoFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &fixture{
		db:        db,
		entidades: NewEntidadeRepository(db),
		produtos:  NewProdutoRepository(db),
		precos:    NewPrecoRepository(db),
	}
	ids, err := f.entidades.SemearAliquotas(db)
	require.NoError(t, err)
	f.aliquotas = ids
	return f
}

type produtoFixture struct {
	ggrem, nome, substancia, cnpj, laboratorio, tipo, cap string
}

func (f *fixture) produto(t *testing.T, p produtoFixture) uuid.UUID {
	t.Helper()
	resolver := func(tipo TipoEntidade, chave string, extras map[string]any) *uuid.UUID {
		id, err := f.entidades.Resolver(f.db, tipo, chave, extras)
		require.NoError(t, err)
		return id
	}
	prod := &model.Produto{
		CodigoGGREM:         p.ggrem,
		Nome:                p.nome,
		SubstanciaID:        resolver(EntidadeSubstancia, p.substancia, nil),
		LaboratorioID:       resolver(EntidadeLaboratorio, p.cnpj, map[string]any{"nome_laboratorio": p.laboratorio}),
		TipoID:              resolver(EntidadeTipoProduto, p.tipo, nil),
		RegimeID:            resolver(EntidadeRegime, "Regulado", nil),
		RestricaoHospitalar: model.NaoEspecificado,
		CAP:                 p.cap,
		Confaz87:            model.Nao,
		ICMSZero:            model.Nao,
		Comercializacao:     model.Sim,
	}
	id, _, err := f.produtos.UpsertTx(f.db, prod)
	require.NoError(t, err)
	return id
}

func (f *fixture) preco(t *testing.T, tabela model.TabelaPreco, produtoID uuid.UUID, aliquota string, data time.Time, com string) {
	t.Helper()
	v := decimal.RequireFromString(com)
	require.NoError(t, f.precos.UpsertTx(f.db, tabela, produtoID, f.aliquotas[aliquota], data, ValoresPreco{ComImpostos: &v}))
}

func dia(d int) time.Time { return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC) }
