package handler

import (
	"net/http"

	"precomed/internal/apierror"
	"precomed/internal/dto"
	"precomed/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ConsultaPrecosHandler serves the product search. Read only.
type ConsultaPrecosHandler struct {
	svc service.ConsultaService
}

func NewConsultaPrecosHandler(svc service.ConsultaService) *ConsultaPrecosHandler {
	return &ConsultaPrecosHandler{svc: svc}
}

// Buscar godoc
// @Summary      Consulta de produtos e preços
// @Description  Uma linha por produto e alíquota de PF. Filtros combinados com AND.
// @Tags         produtos
// @Produce      json
// @Param        substancia    query string false "Trecho do nome da substância"
// @Param        laboratorio   query string false "Trecho do nome do laboratório"
// @Param        tipo_produto  query string false "Tipo exato"
// @Param        com_cap       query bool   false "Sujeito ao CAP"
// @Param        aliquota      query number false "Alíquota de ICMS"
// @Param        preco_maximo  query number false "Teto do preço de referência"
// @Param        ordenar_por   query string false "produto | preco | laboratorio"
// @Success      200 {object} dto.ConsultaResponse
// @Failure      422 {object} apierror.ValidationError
// @Router       /v1/produtos [get]
func (h *ConsultaPrecosHandler) Buscar(c *gin.Context) {
	f, ok := filtroDaQuery(c)
	if !ok {
		return
	}
	data, err := h.svc.Buscar(c.Request.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("consulta de produtos")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao consultar produtos"))
		return
	}
	c.JSON(http.StatusOK, dto.ConsultaResponse{Data: data, Total: len(data)})
}
