package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"precomed/internal/dto"
	"precomed/internal/model"
	"precomed/internal/repository"
	"precomed/internal/source"
	"precomed/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func contar(t *testing.T, db *gorm.DB, m any, where ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func TestImportar_ArquivoSintetico(t *testing.T) {
	a := novoAmbiente(t)
	linha := testutil.NovaLinha(a.faker).
		Com(source.ColCodigoGGREM, "526530101113417").
		Com(17, "10,50").
		Com(source.ColCAP, "NAO")

	svc := a.importacao(ImportacaoConfig{Pular: 12})
	resumo, err := svc.Importar(context.Background(), strings.NewReader(testutil.Arquivo(12, linha)))
	require.NoError(t, err)

	assert.Equal(t, 1, resumo.Processadas)
	assert.Equal(t, 1, resumo.Sucesso)
	assert.Equal(t, 0, resumo.Erros)
	assert.Equal(t, 1, resumo.ProdutosCriados)
	assert.Equal(t, 1, resumo.PrecosGravados)
	assert.NotEmpty(t, resumo.ExecucaoID)

	assert.Equal(t, int64(1), contar(t, a.db, &model.Produto{}))
	assert.Equal(t, int64(0), contar(t, a.db, &model.PrecoPMVG{}))

	var pf []model.PrecoFabrica
	require.NoError(t, a.db.Find(&pf).Error)
	require.Len(t, pf, 1)
	assert.Equal(t, a.aliquota(t, "17"), pf[0].AliquotaID.String())
	require.NotNil(t, pf[0].ComImpostos)
	assert.True(t, decimal.RequireFromString("10.50").Equal(*pf[0].ComImpostos))
	assert.Nil(t, pf[0].SemImpostos)
	assert.Nil(t, pf[0].ComImpostosALC)
	assert.Equal(t, "2025-06-02", pf[0].DataVigencia.Format("2006-01-02"))

	p, err := a.produtos.FindByGGREM(context.Background(), "526530101113417")
	require.NoError(t, err)
	assert.Equal(t, model.Nao, p.CAP)
	assert.Equal(t, linha.Campo(source.ColProduto), p.Nome)
	require.NotNil(t, p.EAN1)
	assert.Equal(t, linha.Campo(source.ColEAN1), *p.EAN1)
	assert.Nil(t, p.EAN3)
}

func TestImportar_ReexecucaoMesmoDia(t *testing.T) {
	a := novoAmbiente(t)
	linha := testutil.NovaLinha(a.faker).Com(17, "10,50").Com(43, "8,00")

	primeiro := a.importar(t, linha)
	assert.Equal(t, 1, primeiro.ProdutosCriados)

	linha.Com(17, "11,00").Com(source.ColProduto, "NOVO NOME")
	segundo := a.importar(t, linha)
	assert.Equal(t, 0, segundo.ProdutosCriados)
	assert.Equal(t, 1, segundo.ProdutosAtualizados)

	assert.Equal(t, int64(1), contar(t, a.db, &model.Produto{}))
	assert.Equal(t, int64(1), contar(t, a.db, &model.PrecoFabrica{}))
	assert.Equal(t, int64(1), contar(t, a.db, &model.PrecoPMVG{}))
	assert.Equal(t, int64(1), contar(t, a.db, &model.Substancia{}))

	var pf model.PrecoFabrica
	require.NoError(t, a.db.First(&pf).Error)
	assert.True(t, decimal.NewFromInt(11).Equal(*pf.ComImpostos))

	p, err := a.produtos.FindByGGREM(context.Background(), linha.Campo(source.ColCodigoGGREM))
	require.NoError(t, err)
	assert.Equal(t, "NOVO NOME", p.Nome)
}

func TestImportar_NovoDiaNovaVigencia(t *testing.T) {
	a := novoAmbiente(t)
	linha := testutil.NovaLinha(a.faker).Com(17, "10,50")
	a.importar(t, linha)

	amanha := func() time.Time { return hoje.Add(24 * time.Hour) }
	_, err := a.importacao(ImportacaoConfig{}, ComRelogio(amanha)).
		Importar(context.Background(), strings.NewReader(testutil.Arquivo(0, linha)))
	require.NoError(t, err)

	assert.Equal(t, int64(2), contar(t, a.db, &model.PrecoFabrica{}))
}

func TestImportar_ContagemDeLinhas(t *testing.T) {
	a := novoAmbiente(t)
	ok := testutil.NovaLinha(a.faker).Com(17, "1,00")
	curta := testutil.NovaLinha(a.faker).Cortada(9)
	semGGREM := testutil.NovaLinha(a.faker).Com(source.ColCodigoGGREM, " ")
	semSubstancia := testutil.NovaLinha(a.faker).Com(source.ColSubstancia, "")
	semProduto := testutil.NovaLinha(a.faker).Com(source.ColProduto, "")
	// ten fields is enough: the row is processed with every missing column blank
	minima := testutil.NovaLinha(a.faker).Cortada(10)

	resumo := a.importar(t, ok, curta, semGGREM, semSubstancia, semProduto, minima)

	assert.Equal(t, 5, resumo.Processadas)
	assert.Equal(t, 2, resumo.Sucesso)
	assert.Equal(t, 3, resumo.Rejeitadas)
	assert.Equal(t, 0, resumo.Erros)
	assert.Equal(t, 1, resumo.Descartadas)
	assert.Equal(t, int64(2), contar(t, a.db, &model.Produto{}))

	p, err := a.produtos.FindByGGREM(context.Background(), minima.Campo(source.ColCodigoGGREM))
	require.NoError(t, err)
	assert.Equal(t, model.NaoEspecificado, p.RestricaoHospitalar)
	assert.Equal(t, model.Nao, p.CAP)
	assert.Nil(t, p.ClasseID)
	assert.Nil(t, p.TipoID)
}

type produtoRepoFalho struct {
	repository.ProdutoRepository
	ggrem   string
	panicar bool
}

func (r produtoRepoFalho) UpsertTx(tx *gorm.DB, p *model.Produto) (uuid.UUID, bool, error) {
	if p.CodigoGGREM == r.ggrem {
		if r.panicar {
			panic("estado inesperado")
		}
		return uuid.Nil, false, errors.New("falha simulada")
	}
	return r.ProdutoRepository.UpsertTx(tx, p)
}

func TestImportar_FalhaNaLinhaDesfazSoALinha(t *testing.T) {
	for _, panicar := range []bool{false, true} {
		a := novoAmbiente(t)
		boa1 := testutil.NovaLinha(a.faker).Com(17, "1,00")
		ruim := testutil.NovaLinha(a.faker).Com(source.ColSubstancia, "SUBSTANCIA SO DA LINHA RUIM")
		boa2 := testutil.NovaLinha(a.faker).Com(17, "2,00")

		produtos := produtoRepoFalho{ProdutoRepository: a.produtos, ggrem: ruim.Campo(source.ColCodigoGGREM), panicar: panicar}
		svc := NewImportacaoService(a.db, a.entidades, produtos, a.precos, a.historico, a.cache, ImportacaoConfig{})

		resumo, err := svc.Importar(context.Background(), strings.NewReader(testutil.Arquivo(0, boa1, ruim, boa2)))
		require.NoError(t, err)

		assert.Equal(t, 3, resumo.Processadas, "panic=%v", panicar)
		assert.Equal(t, 2, resumo.Sucesso, "panic=%v", panicar)
		assert.Equal(t, 1, resumo.Erros, "panic=%v", panicar)
		assert.Equal(t, int64(2), contar(t, a.db, &model.Produto{}))
		assert.Equal(t, int64(0), contar(t, a.db, &model.Substancia{}, "nome_substancia = ?", "SUBSTANCIA SO DA LINHA RUIM"))
	}
}

func TestImportar_Checkpoints(t *testing.T) {
	a := novoAmbiente(t)
	var linhas []*testutil.LinhaCMED
	for i := 0; i < 5; i++ {
		linhas = append(linhas, testutil.NovaLinha(a.faker))
	}

	var progresso []dto.ProgressoImportacao
	svc := a.importacao(ImportacaoConfig{CommitACada: 2}, ComProgresso(func(p dto.ProgressoImportacao) {
		progresso = append(progresso, p)
	}))
	resumo, err := svc.Importar(context.Background(), strings.NewReader(testutil.Arquivo(0, linhas...)))
	require.NoError(t, err)

	assert.Equal(t, 5, resumo.Sucesso)
	require.Len(t, progresso, 3)
	assert.Equal(t, 2, progresso[0].Processadas)
	assert.Equal(t, 4, progresso[1].Processadas)
	assert.Equal(t, 5, progresso[2].Processadas)
}

func TestImportar_EscadaCompleta(t *testing.T) {
	a := novoAmbiente(t)
	// 14 is PF 0%: zero is a value, not an absent price. 24 (PF 19% ALC) is garbage.
	linha := testutil.NovaLinha(a.faker).
		Com(source.ColPFSemImpostos, "7,10").
		Com(14, "0,00").
		Com(17, "10,50").
		Com(18, "10,80").
		Com(20, "11,00").
		Com(24, "R$ 5").
		Com(source.ColPMVGSemImpostos, "6,00").
		Com(64, "1.234,56")

	resumo := a.importar(t, linha)
	assert.Equal(t, 6, resumo.PrecosGravados)

	var pf []model.PrecoFabrica
	require.NoError(t, a.db.Find(&pf).Error)
	require.Len(t, pf, 4)
	porAliquota := map[uuid.UUID]model.PrecoFabrica{}
	for _, p := range pf {
		porAliquota[p.AliquotaID] = p
	}

	sem := porAliquota[model.SemAliquotaID]
	require.NotNil(t, sem.SemImpostos)
	assert.Equal(t, "7.1", sem.SemImpostos.String())
	assert.Nil(t, sem.ComImpostos)

	zero := porAliquota[uuid.MustParse(a.aliquota(t, "0"))]
	require.NotNil(t, zero.ComImpostos)
	assert.True(t, zero.ComImpostos.IsZero())

	p17 := porAliquota[uuid.MustParse(a.aliquota(t, "17"))]
	assert.Equal(t, "10.5", p17.ComImpostos.String())
	assert.Equal(t, "10.8", p17.ComImpostosALC.String())

	p175 := porAliquota[uuid.MustParse(a.aliquota(t, "17.5"))]
	assert.Nil(t, p175.ComImpostos)
	assert.Equal(t, "11", p175.ComImpostosALC.String())

	var pmvg []model.PrecoPMVG
	require.NoError(t, a.db.Order("pmvg_sem_impostos DESC").Find(&pmvg).Error)
	require.Len(t, pmvg, 2)
	assert.Equal(t, "1234.56", pmvg[1].ComImpostosALC.String())
}

func TestImportar_AuditoriaDeHistorico(t *testing.T) {
	a := novoAmbiente(t)
	linha := testutil.NovaLinha(a.faker).Com(17, "10,00")
	cfg := ImportacaoConfig{AuditarHistorico: true, Usuario: "carga-cmed"}

	importar := func() {
		_, err := a.importacao(cfg).Importar(context.Background(), strings.NewReader(testutil.Arquivo(0, linha)))
		require.NoError(t, err)
	}
	importar()
	importar() // same value: no new row
	linha.Com(17, "12,00")
	importar()

	var hist []model.HistoricoPreco
	require.NoError(t, a.db.Order("valor_novo").Find(&hist).Error)
	require.Len(t, hist, 2)
	assert.Nil(t, hist[0].ValorAnterior)
	assert.Equal(t, model.OrigemImportacao, hist[0].Origem)
	assert.Equal(t, "carga-cmed", hist[0].Usuario)
	require.NotNil(t, hist[1].ValorAnterior)
	assert.Equal(t, "10", hist[1].ValorAnterior.String())
	assert.Equal(t, "12", hist[1].ValorNovo.String())
}

func TestImportar_SemAuditoriaNaoGravaHistorico(t *testing.T) {
	a := novoAmbiente(t)
	linha := testutil.NovaLinha(a.faker).Com(17, "10,00")
	a.importar(t, linha)
	linha.Com(17, "12,00")
	a.importar(t, linha)

	assert.Equal(t, int64(0), contar(t, a.db, &model.HistoricoPreco{}))
}

func TestImportar_InvalidaCache(t *testing.T) {
	a := novoAmbiente(t)
	a.importar(t, testutil.NovaLinha(a.faker))

	v, err := a.redis.Get("consulta:versao")
	require.NoError(t, err)
	assert.Equal(t, "1", v)
}

func TestImportarArquivo(t *testing.T) {
	a := novoAmbiente(t)
	svc := a.importacao(ImportacaoConfig{})

	_, err := svc.ImportarArquivo(context.Background(), filepath.Join(t.TempDir(), "nao-existe.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportar_ContextoCancelado(t *testing.T) {
	a := novoAmbiente(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.importacao(ImportacaoConfig{}).Importar(ctx, strings.NewReader(testutil.Arquivo(0, testutil.NovaLinha(a.faker))))
	assert.Error(t, err)
	assert.Equal(t, int64(0), contar(t, a.db, &model.Produto{}))
}

func TestImportar_EncodingDesconhecido(t *testing.T) {
	a := novoAmbiente(t)
	_, err := a.importacao(ImportacaoConfig{Encoding: "ebcdic"}).Importar(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, source.ErrEncodingDesconhecido)
}
