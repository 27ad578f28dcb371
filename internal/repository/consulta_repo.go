package repository

import (
	"context"
	"fmt"
	"strings"

	"precomed/internal/dto"
	"precomed/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProdutoConsulta is one row of the product search: a product crossed with the current
// PF row of each of its tiers, with the current PMVG of the same tier alongside.
type ProdutoConsulta struct {
	CodigoGGREM     string              `gorm:"column:codigo_ggrem"`
	Produto         string              `gorm:"column:nome_produto"`
	Apresentacao    string              `gorm:"column:apresentacao"`
	Substancia      string              `gorm:"column:nome_substancia"`
	Laboratorio     string              `gorm:"column:nome_laboratorio"`
	TipoProduto     string              `gorm:"column:tipo_produto"`
	RegimePreco     string              `gorm:"column:regime_preco"`
	CAP             string              `gorm:"column:cap"`
	Comercializacao string              `gorm:"column:comercializacao_2024"`
	Aliquota        decimal.NullDecimal `gorm:"column:aliquota"`
	PrecoFabrica    decimal.NullDecimal `gorm:"column:preco_fabrica"`
	PrecoPMVG       decimal.NullDecimal `gorm:"column:preco_pmvg"`
	PrecoReferencia decimal.NullDecimal `gorm:"column:preco_referencia"`
}

const precoReferencia = `CASE WHEN p.cap = '` + model.Sim + `' AND pmvg.pmvg_com_impostos IS NOT NULL
	THEN pmvg.pmvg_com_impostos ELSE pf.pf_com_impostos END`

var colunasConsulta = strings.Join([]string{
	"p.codigo_ggrem", "p.nome_produto", "p.apresentacao",
	"s.nome_substancia", "l.nome_laboratorio", "tp.tipo_produto", "rp.regime_preco",
	"p.cap", "p.comercializacao_2024", "a.aliquota",
	"pf.pf_com_impostos AS preco_fabrica",
	"pmvg.pmvg_com_impostos AS preco_pmvg",
	precoReferencia + " AS preco_referencia",
}, ", ")

type ConsultaRepository interface {
	Buscar(ctx context.Context, f dto.FiltroConsulta) ([]ProdutoConsulta, error)
}

type consultaRepo struct{ db *gorm.DB }

func NewConsultaRepository(db *gorm.DB) ConsultaRepository { return &consultaRepo{db: db} }

// vigente restricts alias to the current row of its (product, rate): no later
// effective date exists for the pair.
func vigente(tabela, alias string) string {
	return fmt.Sprintf(`NOT EXISTS (SELECT 1 FROM %[1]s novo WHERE novo.id_produto = %[2]s.id_produto
		AND novo.id_aliquota = %[2]s.id_aliquota AND novo.data_vigencia > %[2]s.data_vigencia)`, tabela, alias)
}

// likeEscape escapes LIKE wildcards so user text matches literally.
func likeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}

func (r *consultaRepo) Buscar(ctx context.Context, f dto.FiltroConsulta) ([]ProdutoConsulta, error) {
	q := r.db.WithContext(ctx).
		Table("produtos p").
		Select("DISTINCT "+colunasConsulta).
		Joins("INNER JOIN substancias s ON p.id_substancia = s.id_substancia").
		Joins("INNER JOIN laboratorios l ON p.id_laboratorio = l.id_laboratorio").
		Joins("INNER JOIN tipos_produto tp ON p.id_tipo = tp.id_tipo").
		Joins("INNER JOIN regimes_preco rp ON p.id_regime = rp.id_regime").
		Joins("LEFT JOIN precos_fabrica pf ON p.id_produto = pf.id_produto AND " + vigente("precos_fabrica", "pf")).
		Joins("LEFT JOIN precos_pmvg pmvg ON p.id_produto = pmvg.id_produto AND pf.id_aliquota = pmvg.id_aliquota AND " +
			vigente("precos_pmvg", "pmvg")).
		Joins("LEFT JOIN aliquotas_icms a ON pf.id_aliquota = a.id_aliquota")

	if f.Substancia != "" {
		q = q.Where(`LOWER(s.nome_substancia) LIKE ? ESCAPE '\'`, likeEscape(f.Substancia))
	}
	if f.Laboratorio != "" {
		q = q.Where(`LOWER(l.nome_laboratorio) LIKE ? ESCAPE '\'`, likeEscape(f.Laboratorio))
	}
	if f.TipoProduto != "" {
		q = q.Where("tp.tipo_produto = ?", f.TipoProduto)
	}
	if f.ComCAP != nil {
		v := model.Nao
		if *f.ComCAP {
			v = model.Sim
		}
		q = q.Where("p.cap = ?", v)
	}
	if f.Aliquota != nil {
		q = q.Where("a.aliquota = ?", *f.Aliquota)
	}
	if f.PrecoMaximo != nil {
		q = q.Where("("+precoReferencia+") <= CAST(? AS NUMERIC)", *f.PrecoMaximo)
	}

	switch f.OrdenarPor {
	case dto.OrdenarPorPreco:
		q = q.Order("preco_referencia").Order("p.codigo_ggrem")
	case dto.OrdenarPorLaboratorio:
		q = q.Order("l.nome_laboratorio").Order("p.codigo_ggrem")
	default:
		q = q.Order("p.nome_produto").Order("p.codigo_ggrem")
	}
	// same product can have several tiers; keep their order stable too
	q = q.Order("a.aliquota")

	var rows []ProdutoConsulta
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
