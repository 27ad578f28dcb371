package dto

import "github.com/shopspring/decimal"

// TipoErroPreco classifies why a price update was refused.
type TipoErroPreco string

const (
	ErroEntradaInvalida       TipoErroPreco = "ENTRADA_INVALIDA"
	ErroTipoPrecoInvalido     TipoErroPreco = "TIPO_PRECO_INVALIDO"
	ErroProdutoNaoEncontrado  TipoErroPreco = "PRODUTO_NAO_ENCONTRADO"
	ErroAliquotaNaoEncontrada TipoErroPreco = "ALIQUOTA_NAO_ENCONTRADA"
	ErroRelacaoPrecoInvalida  TipoErroPreco = "RELACAO_PRECO_INVALIDA"
	ErroFalhaArmazenamento    TipoErroPreco = "FALHA_ARMAZENAMENTO"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// AtualizarPrecoRequest sets one tax-inclusive price. Usuario is filled by the caller
// (JWT subject on HTTP, flag on the CLI), never from the request body.
type AtualizarPrecoRequest struct {
	CodigoGGREM string          `json:"codigo_ggrem" validate:"required"`
	AliquotaID  string          `json:"id_aliquota"  validate:"required,uuid"`
	TipoPreco   string          `json:"tipo_preco"   validate:"required,oneof=PF PMVG"`
	Valor       decimal.Decimal `json:"valor"        validate:"gt=0"`
	Usuario     string          `json:"-"            validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// ResultadoAtualizacaoPreco is the outcome of a price update. Erro is empty on success.
type ResultadoAtualizacaoPreco struct {
	Sucesso             bool             `json:"sucesso"`
	Erro                TipoErroPreco    `json:"erro,omitempty"`
	Mensagem            string           `json:"mensagem"`
	ValorAnterior       *decimal.Decimal `json:"valor_anterior"`
	ValorNovo           *decimal.Decimal `json:"valor_novo,omitempty"`
	VariacaoPct         *decimal.Decimal `json:"variacao_pct,omitempty"`
	Alerta              string           `json:"alerta,omitempty"`
	HistoricoRegistrado bool             `json:"historico_registrado"`
}

// AliquotaResponse lists an ICMS tier; Aliquota is null for the tax-free series.
type AliquotaResponse struct {
	ID        string           `json:"id_aliquota"`
	Aliquota  *decimal.Decimal `json:"aliquota"`
	Descricao string           `json:"descricao"`
}

// PrecoVigenteItem is one stored PF or PMVG row of a product.
type PrecoVigenteItem struct {
	TipoPreco      string           `json:"tipo_preco"`
	AliquotaID     string           `json:"id_aliquota"`
	Aliquota       *decimal.Decimal `json:"aliquota"`
	DataVigencia   string           `json:"data_vigencia"`
	SemImpostos    *decimal.Decimal `json:"sem_impostos"`
	ComImpostos    *decimal.Decimal `json:"com_impostos"`
	ComImpostosALC *decimal.Decimal `json:"com_impostos_alc"`
}

// PrecosProdutoResponse is returned by GET /v1/produtos/:codigo/precos. PF rows come
// first, each schedule newest first.
type PrecosProdutoResponse struct {
	CodigoGGREM string             `json:"codigo_ggrem"`
	Data        []PrecoVigenteItem `json:"data"`
}
