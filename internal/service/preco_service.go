package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"precomed/internal/dto"
	"precomed/internal/infra"
	"precomed/internal/model"
	"precomed/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrProdutoNaoEncontrado is returned by lookups keyed by GGREM code.
var ErrProdutoNaoEncontrado = errors.New("produto não encontrado")

// PrecoService handles manual price administration.
type PrecoService interface {
	// AtualizarPreco sets one tax-inclusive price for today. It never returns an error:
	// refusals and storage faults come back as the outcome's Erro.
	AtualizarPreco(ctx context.Context, req dto.AtualizarPrecoRequest) dto.ResultadoAtualizacaoPreco

	ListarHistorico(ctx context.Context, codigoGGREM string, page, limit int) (*dto.HistoricoPrecoListResponse, error)
	ListarPrecos(ctx context.Context, codigoGGREM string) (*dto.PrecosProdutoResponse, error)
	ListarAliquotas(ctx context.Context) ([]dto.AliquotaResponse, error)
}

type precoService struct {
	db             *gorm.DB
	produtos       repository.ProdutoRepository
	entidades      repository.EntidadeRepository
	precos         repository.PrecoRepository
	historico      repository.HistoricoPrecoRepository
	cache          *infra.CacheConsulta
	limiteVariacao decimal.Decimal
	agora          func() time.Time
}

func NewPrecoService(
	db *gorm.DB,
	produtos repository.ProdutoRepository,
	entidades repository.EntidadeRepository,
	precos repository.PrecoRepository,
	historico repository.HistoricoPrecoRepository,
	cache *infra.CacheConsulta,
	limiteVariacao decimal.Decimal,
) PrecoService {
	return &precoService{
		db:             db,
		produtos:       produtos,
		entidades:      entidades,
		precos:         precos,
		historico:      historico,
		cache:          cache,
		limiteVariacao: limiteVariacao,
		agora:          time.Now,
	}
}

// recusa aborts the update transaction with a business outcome.
type recusa struct {
	tipo     dto.TipoErroPreco
	mensagem string
}

func (r *recusa) Error() string { return r.mensagem }

func falha(tipo dto.TipoErroPreco, mensagem string) dto.ResultadoAtualizacaoPreco {
	return dto.ResultadoAtualizacaoPreco{Erro: tipo, Mensagem: "ERRO: " + mensagem}
}

func validar(req dto.AtualizarPrecoRequest) *recusa {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return &recusa{dto.ErroEntradaInvalida, err.Error()}
	}
	campos := make([]string, 0, len(ve))
	for _, fe := range ve {
		if fe.Field() == "TipoPreco" {
			return &recusa{dto.ErroTipoPrecoInvalido, "Tipo de preço inválido: use PF ou PMVG"}
		}
		campos = append(campos, fe.Field()+" ("+fe.Tag()+")")
	}
	return &recusa{dto.ErroEntradaInvalida, "Entrada inválida: " + strings.Join(campos, ", ")}
}

func (s *precoService) AtualizarPreco(ctx context.Context, req dto.AtualizarPrecoRequest) (res dto.ResultadoAtualizacaoPreco) {
	req.CodigoGGREM = strings.TrimSpace(req.CodigoGGREM)
	req.Usuario = strings.TrimSpace(req.Usuario)
	// stored as decimal(12,2)
	req.Valor = req.Valor.Round(2)
	if r := validar(req); r != nil {
		return falha(r.tipo, r.mensagem)
	}

	tipo := model.TipoPreco(req.TipoPreco)
	tabela, _ := tipo.Tabela()
	aliquotaID := uuid.MustParse(req.AliquotaID)
	valor := req.Valor

	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("codigo_ggrem", req.CodigoGGREM).Msg("atualização de preço interrompida")
			res = falha(dto.ErroFalhaArmazenamento, fmt.Sprint(p))
		}
	}()

	var (
		anterior  *decimal.Decimal
		variacao  *decimal.Decimal
		alerta    string
		historico bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		produto, err := s.produtos.FindByGGREMTx(tx, req.CodigoGGREM)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &recusa{dto.ErroProdutoNaoEncontrado, "Produto não encontrado"}
		}
		if err != nil {
			return err
		}
		if _, err := s.entidades.FindAliquotaByIDTx(tx, aliquotaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &recusa{dto.ErroAliquotaNaoEncontrada, "Alíquota não encontrada"}
			}
			return err
		}

		if tipo == model.TipoPMVG && !produto.TemCAP() {
			pf, err := s.precos.UltimoComImpostosTx(tx, model.TabelaPF, produto.ID, aliquotaID)
			if err != nil {
				return err
			}
			if pf != nil && valor.GreaterThan(*pf) {
				return &recusa{dto.ErroRelacaoPrecoInvalida,
					fmt.Sprintf("PMVG (%s) não pode ser maior que PF (%s) para produtos sem CAP", valor, pf)}
			}
		}

		anterior, err = s.precos.UltimoComImpostosTx(tx, tabela, produto.ID, aliquotaID)
		if err != nil {
			return err
		}
		if err := s.precos.UpsertComImpostosTx(tx, tabela, produto.ID, aliquotaID, dataVigencia(s.agora()), valor); err != nil {
			return err
		}

		if tipo == model.TipoPF && anterior != nil && !anterior.IsZero() {
			v := valor.Sub(*anterior).Abs().Div(*anterior).Mul(decimal.NewFromInt(100))
			r := v.Round(2)
			variacao = &r
			if v.GreaterThan(s.limiteVariacao) {
				alerta = fmt.Sprintf("AVISO: Variação de %s%% detectada. Prosseguindo com atualização.", r.StringFixed(2))
				log.Warn().
					Str("codigo_ggrem", req.CodigoGGREM).
					Str("variacao_pct", r.StringFixed(2)).
					Str("usuario", req.Usuario).
					Msg("variação de PF acima do limite")
			}
		}

		if anterior == nil || !anterior.Equal(valor) {
			if err := s.historico.CreateTx(tx, &model.HistoricoPreco{
				ProdutoID:     produto.ID,
				TipoPreco:     tipo,
				AliquotaID:    aliquotaID,
				ValorAnterior: anterior,
				ValorNovo:     valor,
				Usuario:       req.Usuario,
				Origem:        model.OrigemManual,
			}); err != nil {
				return err
			}
			historico = true
		}
		return nil
	})

	var r *recusa
	if errors.As(err, &r) {
		return falha(r.tipo, r.mensagem)
	}
	if err != nil {
		log.Error().Err(err).Str("codigo_ggrem", req.CodigoGGREM).Msg("falha ao gravar preço")
		return falha(dto.ErroFalhaArmazenamento, err.Error())
	}

	if err := s.cache.Invalidar(ctx); err != nil {
		log.Warn().Err(err).Msg("cache de consulta não invalidado")
	}

	antes := "N/A"
	if anterior != nil {
		antes = anterior.String()
	}
	return dto.ResultadoAtualizacaoPreco{
		Sucesso:             true,
		Mensagem:            fmt.Sprintf("SUCESSO: Preço atualizado. Valor anterior: %s, Novo valor: %s", antes, valor),
		ValorAnterior:       anterior,
		ValorNovo:           &valor,
		VariacaoPct:         variacao,
		Alerta:              alerta,
		HistoricoRegistrado: historico,
	}
}

func (s *precoService) ListarHistorico(ctx context.Context, codigoGGREM string, page, limit int) (*dto.HistoricoPrecoListResponse, error) {
	produto, err := s.produtos.FindByGGREM(ctx, codigoGGREM)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProdutoNaoEncontrado
	}
	if err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	rows, total, err := s.historico.ListByProduto(ctx, produto.ID, page, limit)
	if err != nil {
		return nil, err
	}

	data := make([]dto.HistoricoPrecoItem, 0, len(rows))
	for i := range rows {
		h := &rows[i]
		item := dto.HistoricoPrecoItem{
			ID:            h.ID.String(),
			CodigoGGREM:   produto.CodigoGGREM,
			TipoPreco:     string(h.TipoPreco),
			AliquotaID:    h.AliquotaID.String(),
			ValorAnterior: h.ValorAnterior,
			ValorNovo:     h.ValorNovo,
			Usuario:       h.Usuario,
			Origem:        h.Origem,
			CreatedAt:     h.CreatedAt.UTC().Format(time.RFC3339),
		}
		if h.Aliquota != nil {
			item.Aliquota = h.Aliquota.Aliquota
		}
		data = append(data, item)
	}
	return &dto.HistoricoPrecoListResponse{Data: data, Total: total, Page: page, Limit: limit}, nil
}

func (s *precoService) ListarAliquotas(ctx context.Context) ([]dto.AliquotaResponse, error) {
	rows, err := s.entidades.ListAliquotas(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.AliquotaResponse, 0, len(rows))
	for _, a := range rows {
		out = append(out, dto.AliquotaResponse{ID: a.ID.String(), Aliquota: a.Aliquota, Descricao: a.Descricao})
	}
	return out, nil
}

func (s *precoService) ListarPrecos(ctx context.Context, codigoGGREM string) (*dto.PrecosProdutoResponse, error) {
	produto, err := s.produtos.FindByGGREM(ctx, codigoGGREM)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProdutoNaoEncontrado
	}
	if err != nil {
		return nil, err
	}

	aliquotas, err := s.entidades.ListAliquotas(ctx)
	if err != nil {
		return nil, err
	}
	taxa := make(map[uuid.UUID]*decimal.Decimal, len(aliquotas))
	for _, a := range aliquotas {
		taxa[a.ID] = a.Aliquota
	}

	pf, err := s.precos.ListPF(ctx, produto.ID)
	if err != nil {
		return nil, err
	}
	pmvg, err := s.precos.ListPMVG(ctx, produto.ID)
	if err != nil {
		return nil, err
	}

	item := func(tipo model.TipoPreco, aliquotaID uuid.UUID, data time.Time, sem, com, alc *decimal.Decimal) dto.PrecoVigenteItem {
		return dto.PrecoVigenteItem{
			TipoPreco:      string(tipo),
			AliquotaID:     aliquotaID.String(),
			Aliquota:       taxa[aliquotaID],
			DataVigencia:   data.UTC().Format(time.DateOnly),
			SemImpostos:    sem,
			ComImpostos:    com,
			ComImpostosALC: alc,
		}
	}
	out := &dto.PrecosProdutoResponse{
		CodigoGGREM: produto.CodigoGGREM,
		Data:        make([]dto.PrecoVigenteItem, 0, len(pf)+len(pmvg)),
	}
	for _, p := range pf {
		out.Data = append(out.Data, item(model.TipoPF, p.AliquotaID, p.DataVigencia, p.SemImpostos, p.ComImpostos, p.ComImpostosALC))
	}
	for _, p := range pmvg {
		out.Data = append(out.Data, item(model.TipoPMVG, p.AliquotaID, p.DataVigencia, p.SemImpostos, p.ComImpostos, p.ComImpostosALC))
	}
	return out, nil
}
