package service

import (
	"time"

	"precomed/internal/model"
	"precomed/internal/normalize"
	"precomed/internal/repository"
	"precomed/internal/source"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// dataVigencia is the effective date stamped on prices: the calendar day of t, stored
// as midnight UTC so the same day always compares equal.
func dataVigencia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// faixaPreco is one tier of a row after its columns were folded together.
type faixaPreco struct {
	aliquota *decimal.Decimal
	valores  repository.ValoresPreco
}

// agruparFaixas normalizes the price columns of l and folds them per rate, keeping the
// column order of the first appearance.
func agruparFaixas(l source.Linha, colunas []source.Coluna) []faixaPreco {
	var faixas []faixaPreco
	pos := make(map[string]int, len(colunas))
	for _, c := range colunas {
		chave := ""
		if c.Aliquota != nil {
			chave = c.Aliquota.String()
		}
		i, ok := pos[chave]
		if !ok {
			i = len(faixas)
			pos[chave] = i
			faixas = append(faixas, faixaPreco{aliquota: c.Aliquota})
		}

		v := normalize.Decimal(l.Bruto(c.Indice))
		switch c.Tipo {
		case source.SemImpostos:
			faixas[i].valores.SemImpostos = v
		case source.ComImpostos:
			faixas[i].valores.ComImpostos = v
		case source.ComImpostosALC:
			faixas[i].valores.ComImpostosALC = v
		}
	}
	return faixas
}

// CarregadorPrecos writes the PF and PMVG ladders of one extract row.
type CarregadorPrecos struct {
	precos    repository.PrecoRepository
	historico repository.HistoricoPrecoRepository
	aliquotas map[string]uuid.UUID
	auditar   bool
	usuario   string
}

// NewCarregadorPrecos needs the rate ids returned by SemearAliquotas. With auditar set,
// every change of a tax-inclusive amount is also appended to the price history.
func NewCarregadorPrecos(
	precos repository.PrecoRepository,
	historico repository.HistoricoPrecoRepository,
	aliquotas map[string]uuid.UUID,
	auditar bool,
	usuario string,
) *CarregadorPrecos {
	return &CarregadorPrecos{precos: precos, historico: historico, aliquotas: aliquotas, auditar: auditar, usuario: usuario}
}

// CarregarTx upserts every non-empty tier of both schedules for produtoID on data and
// returns how many price rows were written.
func (c *CarregadorPrecos) CarregarTx(tx *gorm.DB, produtoID uuid.UUID, l source.Linha, data time.Time) (int, error) {
	gravados := 0
	for _, esquema := range []struct {
		tabela  model.TabelaPreco
		colunas []source.Coluna
	}{
		{model.TabelaPF, source.ColunasPF},
		{model.TabelaPMVG, source.ColunasPMVG},
	} {
		for _, f := range agruparFaixas(l, esquema.colunas) {
			if f.valores.Vazio() {
				continue
			}
			aliquotaID, ok := c.aliquotaID(f.aliquota)
			if !ok {
				log.Debug().Str("aliquota", f.aliquota.String()).Int("linha", l.Numero).Msg("alíquota sem cadastro, faixa ignorada")
				continue
			}
			if err := c.gravarTx(tx, esquema.tabela, produtoID, aliquotaID, data, f.valores); err != nil {
				return gravados, err
			}
			gravados++
		}
	}
	return gravados, nil
}

func (c *CarregadorPrecos) aliquotaID(a *decimal.Decimal) (uuid.UUID, bool) {
	if a == nil {
		return model.SemAliquotaID, true
	}
	id, ok := c.aliquotas[a.String()]
	return id, ok
}

func (c *CarregadorPrecos) gravarTx(tx *gorm.DB, t model.TabelaPreco, produtoID, aliquotaID uuid.UUID, data time.Time, v repository.ValoresPreco) error {
	if !c.auditar || v.ComImpostos == nil {
		return c.precos.UpsertTx(tx, t, produtoID, aliquotaID, data, v)
	}

	anterior, err := c.precos.UltimoComImpostosTx(tx, t, produtoID, aliquotaID)
	if err != nil {
		return err
	}
	if err := c.precos.UpsertTx(tx, t, produtoID, aliquotaID, data, v); err != nil {
		return err
	}
	if anterior != nil && anterior.Equal(*v.ComImpostos) {
		return nil
	}
	return c.historico.CreateTx(tx, &model.HistoricoPreco{
		ProdutoID:     produtoID,
		TipoPreco:     t.Tipo,
		AliquotaID:    aliquotaID,
		ValorAnterior: anterior,
		ValorNovo:     *v.ComImpostos,
		Usuario:       c.usuario,
		Origem:        model.OrigemImportacao,
	})
}
