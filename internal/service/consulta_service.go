package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"precomed/internal/dto"
	"precomed/internal/infra"
	"precomed/internal/repository"

	"github.com/shopspring/decimal"
)

// ConsultaService answers multi-criteria product searches.
type ConsultaService interface {
	Buscar(ctx context.Context, f dto.FiltroConsulta) ([]dto.ProdutoConsultaItem, error)
}

type consultaService struct {
	repo  repository.ConsultaRepository
	cache *infra.CacheConsulta
}

func NewConsultaService(repo repository.ConsultaRepository, cache *infra.CacheConsulta) ConsultaService {
	return &consultaService{repo: repo, cache: cache}
}

func chaveBusca(f dto.FiltroConsulta) string {
	b, _ := json.Marshal(f)
	sum := sha256.Sum256(b)
	return "busca:" + hex.EncodeToString(sum[:])
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func (s *consultaService) Buscar(ctx context.Context, f dto.FiltroConsulta) ([]dto.ProdutoConsultaItem, error) {
	f.Substancia = strings.TrimSpace(f.Substancia)
	f.Laboratorio = strings.TrimSpace(f.Laboratorio)
	f.TipoProduto = strings.TrimSpace(f.TipoProduto)
	switch f.OrdenarPor {
	case dto.OrdenarPorPreco, dto.OrdenarPorLaboratorio:
	default:
		f.OrdenarPor = dto.OrdenarPorProduto
	}

	chave := chaveBusca(f)
	var cached []dto.ProdutoConsultaItem
	if s.cache.Obter(ctx, chave, &cached) {
		return cached, nil
	}

	rows, err := s.repo.Buscar(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProdutoConsultaItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ProdutoConsultaItem{
			CodigoGGREM:     r.CodigoGGREM,
			Produto:         r.Produto,
			Apresentacao:    r.Apresentacao,
			Substancia:      r.Substancia,
			Laboratorio:     r.Laboratorio,
			TipoProduto:     r.TipoProduto,
			RegimePreco:     r.RegimePreco,
			CAP:             r.CAP,
			Comercializacao: r.Comercializacao,
			Aliquota:        nullable(r.Aliquota),
			PrecoFabrica:    nullable(r.PrecoFabrica),
			PrecoPMVG:       nullable(r.PrecoPMVG),
			PrecoReferencia: nullable(r.PrecoReferencia),
		})
	}

	s.cache.Gravar(ctx, chave, out)
	return out, nil
}
