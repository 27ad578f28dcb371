package dto

import "time"

// ResumoImportacao summarizes one ingestion run.
//
// Processadas counts every row handed to the row pipeline, so
// Processadas == Sucesso + Erros + Rejeitadas. Descartadas (short rows) are not part of it.
type ResumoImportacao struct {
	ExecucaoID          string        `json:"execucao_id"`
	Processadas         int           `json:"processadas"`
	Sucesso             int           `json:"sucesso"`
	Erros               int           `json:"erros"`
	Rejeitadas          int           `json:"rejeitadas"`
	Descartadas         int           `json:"descartadas"`
	ProdutosCriados     int           `json:"produtos_criados"`
	ProdutosAtualizados int           `json:"produtos_atualizados"`
	PrecosGravados      int           `json:"precos_gravados"`
	Duracao             time.Duration `json:"duracao"`
}

// ProgressoImportacao is reported at every checkpoint.
type ProgressoImportacao struct {
	Processadas int
	Sucesso     int
	Erros       int
}
