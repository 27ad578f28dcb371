package dto

import "github.com/shopspring/decimal"

// HistoricoPrecoItem is one row in the price-history list.
type HistoricoPrecoItem struct {
	ID            string           `json:"id"`
	CodigoGGREM   string           `json:"codigo_ggrem"`
	TipoPreco     string           `json:"tipo_preco"`
	AliquotaID    string           `json:"id_aliquota"`
	Aliquota      *decimal.Decimal `json:"aliquota"`
	ValorAnterior *decimal.Decimal `json:"valor_anterior"`
	ValorNovo     decimal.Decimal  `json:"valor_novo"`
	Usuario       string           `json:"usuario_alteracao"`
	Origem        string           `json:"origem"`
	CreatedAt     string           `json:"created_at"`
}

// HistoricoPrecoListResponse is returned by GET /v1/produtos/:codigo/historico-precos.
type HistoricoPrecoListResponse struct {
	Data  []HistoricoPrecoItem `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
