package dto

import "github.com/shopspring/decimal"

// Sort orders accepted by the product search.
const (
	OrdenarPorProduto     = "produto"
	OrdenarPorPreco       = "preco"
	OrdenarPorLaboratorio = "laboratorio"
)

// ─── Filter ──────────────────────────────────────────────────────────────────

// FiltroConsulta combines the search criteria with AND. Zero values mean "no filter".
type FiltroConsulta struct {
	Substancia  string           `json:"substancia,omitempty"`
	Laboratorio string           `json:"laboratorio,omitempty"`
	TipoProduto string           `json:"tipo_produto,omitempty"`
	ComCAP      *bool            `json:"com_cap,omitempty"`
	Aliquota    *decimal.Decimal `json:"aliquota,omitempty"`
	PrecoMaximo *decimal.Decimal `json:"preco_maximo,omitempty"`
	OrdenarPor  string           `json:"ordenar_por,omitempty"` // unknown values sort by produto
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ProdutoConsultaItem is one (product, tier) line of a search. PrecoReferencia is PMVG
// for CAP products that have one, PF otherwise.
type ProdutoConsultaItem struct {
	CodigoGGREM     string           `json:"codigo_ggrem"`
	Produto         string           `json:"nome_produto"`
	Apresentacao    string           `json:"apresentacao"`
	Substancia      string           `json:"substancia"`
	Laboratorio     string           `json:"laboratorio"`
	TipoProduto     string           `json:"tipo_produto"`
	RegimePreco     string           `json:"regime_preco"`
	CAP             string           `json:"cap"`
	Comercializacao string           `json:"comercializacao_2024"`
	Aliquota        *decimal.Decimal `json:"aliquota"`
	PrecoFabrica    *decimal.Decimal `json:"preco_fabrica"`
	PrecoPMVG       *decimal.Decimal `json:"preco_pmvg"`
	PrecoReferencia *decimal.Decimal `json:"preco_referencia"`
}

// ConsultaResponse is returned by GET /v1/produtos.
type ConsultaResponse struct {
	Data  []ProdutoConsultaItem `json:"data"`
	Total int                   `json:"total"`
}
