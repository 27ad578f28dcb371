package handler

import (
	"errors"
	"net/http"

	"precomed/internal/apierror"
	"precomed/internal/dto"
	"precomed/internal/middleware"
	"precomed/internal/service"

	"github.com/gin-gonic/gin"
)

type PrecosHandler struct{ svc service.PrecoService }

func NewPrecosHandler(svc service.PrecoService) *PrecosHandler {
	return &PrecosHandler{svc: svc}
}

// Atualizar godoc
// @Summary      Atualiza um preço com impostos (PF ou PMVG) na data de hoje
// @Tags         precos
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        codigo path string                    true "Código GGREM"
// @Param        body   body dto.AtualizarPrecoRequest true "Alíquota, tipo e valor"
// @Success      200 {object} dto.ResultadoAtualizacaoPreco
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Router       /v1/produtos/{codigo}/precos [put]
func (h *PrecosHandler) Atualizar(c *gin.Context) {
	var req dto.AtualizarPrecoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return
	}
	req.CodigoGGREM = c.Param("codigo")
	req.Usuario = middleware.GetClaims(c).Username

	res := h.svc.AtualizarPreco(c.Request.Context(), req)
	if !res.Sucesso {
		c.JSON(statusPorErro(res.Erro), apierror.WithCodigo(string(res.Erro), res.Mensagem))
		return
	}
	c.JSON(http.StatusOK, res)
}

// ListarAliquotas returns every ICMS tier, including the tax-free one with a null rate.
func (h *PrecosHandler) ListarAliquotas(c *gin.Context) {
	out, err := h.svc.ListarAliquotas(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// Listar godoc
// @Summary      Lista os preços PF e PMVG gravados de um produto
// @Tags         precos
// @Security     BearerAuth
// @Produce      json
// @Param        codigo path string true "Código GGREM"
// @Success      200 {object} dto.PrecosProdutoResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/produtos/{codigo}/precos [get]
func (h *PrecosHandler) Listar(c *gin.Context) {
	out, err := h.svc.ListarPrecos(c.Request.Context(), c.Param("codigo"))
	if errors.Is(err, service.ErrProdutoNaoEncontrado) {
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
