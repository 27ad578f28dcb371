package repository

import (
	"context"
	"testing"

	"precomed/internal/model"
	"precomed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUpsertTx_InsereDepoisAtualiza(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewProdutoRepository(db)

	p := &model.Produto{
		CodigoGGREM:         "526530101113417",
		Registro:            strPtr("1004300270011"),
		EAN1:                strPtr("7896004703398"),
		Nome:                "DIPIRONA",
		Apresentacao:        "500 MG COM CT BL AL PLAS INC X 10",
		RestricaoHospitalar: model.NaoEspecificado,
		CAP:                 model.Sim,
		Confaz87:            model.Nao,
		ICMSZero:            model.Nao,
		Comercializacao:     model.Sim,
	}
	id, criado, err := repo.UpsertTx(db, p)
	require.NoError(t, err)
	assert.True(t, criado)

	atualizado := &model.Produto{
		CodigoGGREM:         "526530101113417",
		Nome:                "DIPIRONA SÓDICA",
		Apresentacao:        "500 MG",
		RestricaoHospitalar: model.Sim,
		CAP:                 model.Nao,
		Confaz87:            model.Nao,
		ICMSZero:            model.Nao,
		Comercializacao:     model.Nao,
	}
	id2, criado, err := repo.UpsertTx(db, atualizado)
	require.NoError(t, err)
	assert.False(t, criado)
	assert.Equal(t, id, id2)

	got, err := repo.FindByGGREM(context.Background(), "526530101113417")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "DIPIRONA SÓDICA", got.Nome)
	assert.Equal(t, model.Nao, got.CAP)
	assert.False(t, got.TemCAP())
	// absent optional fields are overwritten with NULL
	assert.Nil(t, got.Registro)
	assert.Nil(t, got.EAN1)

	var n int64
	require.NoError(t, db.Model(&model.Produto{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}
