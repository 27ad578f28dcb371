package handler

import (
	"net/http"
	"strconv"

	"precomed/internal/apierror"
	"precomed/internal/dto"
	"precomed/internal/normalize"

	"github.com/gin-gonic/gin"
)

// statusPorErro maps a refused price update to its HTTP status.
func statusPorErro(e dto.TipoErroPreco) int {
	switch e {
	case dto.ErroProdutoNaoEncontrado, dto.ErroAliquotaNaoEncontrada:
		return http.StatusNotFound
	case dto.ErroEntradaInvalida, dto.ErroTipoPrecoInvalido:
		return http.StatusUnprocessableEntity
	case dto.ErroRelacaoPrecoInvalida:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// filtroDaQuery reads the search criteria from the query string. Numbers accept both
// "17.5" and "17,5". Returns false after writing a 422 when a parameter is malformed.
func filtroDaQuery(c *gin.Context) (dto.FiltroConsulta, bool) {
	f := dto.FiltroConsulta{
		Substancia:  c.Query("substancia"),
		Laboratorio: c.Query("laboratorio"),
		TipoProduto: c.Query("tipo_produto"),
		OrdenarPor:  c.Query("ordenar_por"),
	}
	fields := map[string]string{}

	if v := c.Query("com_cap"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fields["com_cap"] = "bool"
		} else {
			f.ComCAP = &b
		}
	}
	if v := c.Query("aliquota"); v != "" {
		if f.Aliquota = normalize.Decimal(v); f.Aliquota == nil {
			fields["aliquota"] = "numeric"
		}
	}
	if v := c.Query("preco_maximo"); v != "" {
		if f.PrecoMaximo = normalize.Decimal(v); f.PrecoMaximo == nil {
			fields["preco_maximo"] = "numeric"
		}
	}

	if len(fields) > 0 {
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return f, false
	}
	return f, true
}

func paginacao(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	return page, limit
}
