package handler

import (
	"errors"
	"net/http"

	"precomed/internal/apierror"
	"precomed/internal/service"

	"github.com/gin-gonic/gin"
)

// HistoricoPrecosHandler serves the immutable price-change log of a product.
type HistoricoPrecosHandler struct {
	svc service.PrecoService
}

func NewHistoricoPrecosHandler(svc service.PrecoService) *HistoricoPrecosHandler {
	return &HistoricoPrecosHandler{svc: svc}
}

// ListarPorProduto godoc
// @Summary      Histórico de preços de um produto
// @Tags         produtos
// @Security     BearerAuth
// @Param        codigo path     string  true  "Código GGREM"
// @Param        page   query    int     false "Página (default 1)"
// @Param        limit  query    int     false "Registros por página (default 50, max 200)"
// @Success      200    {object} dto.HistoricoPrecoListResponse
// @Failure      404    {object} apierror.APIError
// @Router       /v1/produtos/{codigo}/historico-precos [get]
func (h *HistoricoPrecosHandler) ListarPorProduto(c *gin.Context) {
	page, limit := paginacao(c)

	resp, err := h.svc.ListarHistorico(c.Request.Context(), c.Param("codigo"), page, limit)
	if errors.Is(err, service.ErrProdutoNaoEncontrado) {
		c.JSON(http.StatusNotFound, apierror.New("Produto não encontrado"))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
