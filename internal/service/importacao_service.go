package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"precomed/internal/dto"
	"precomed/internal/infra"
	"precomed/internal/model"
	"precomed/internal/normalize"
	"precomed/internal/repository"
	"precomed/internal/source"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ImportacaoConfig tunes one ingestion run.
type ImportacaoConfig struct {
	Pular            int    // header lines before the data
	MinColunas       int    // shorter rows are discarded
	CommitACada      int    // processed rows per checkpoint
	Encoding         string // "", "utf-8", "latin1", "windows-1252"
	AuditarHistorico bool
	Usuario          string // author of history rows written by the import
}

func (c *ImportacaoConfig) aplicarPadroes() {
	if c.Pular < 0 {
		c.Pular = 0
	}
	if c.MinColunas <= 0 {
		c.MinColunas = 10
	}
	if c.CommitACada <= 0 {
		c.CommitACada = 100
	}
	if c.Usuario == "" {
		c.Usuario = "importacao"
	}
}

// ImportacaoService loads a CMED extract into the price schema.
type ImportacaoService interface {
	// ImportarArquivo opens caminho and imports it; failing to open is fatal.
	ImportarArquivo(ctx context.Context, caminho string) (*dto.ResumoImportacao, error)

	// Importar reads an extract from r. Row-level failures are counted and skipped;
	// only read or storage faults outside a row abort the run, after a rollback of the
	// pending checkpoint.
	Importar(ctx context.Context, r io.Reader) (*dto.ResumoImportacao, error)
}

// OpcaoImportacao customizes an ImportacaoService.
type OpcaoImportacao func(*importacaoService)

// ComRelogio replaces time.Now as the source of the effective date.
func ComRelogio(agora func() time.Time) OpcaoImportacao {
	return func(s *importacaoService) { s.agora = agora }
}

// ComProgresso registers a callback invoked at every checkpoint.
func ComProgresso(fn func(dto.ProgressoImportacao)) OpcaoImportacao {
	return func(s *importacaoService) { s.progresso = fn }
}

type importacaoService struct {
	db        *gorm.DB
	entidades repository.EntidadeRepository
	produtos  repository.ProdutoRepository
	precos    repository.PrecoRepository
	historico repository.HistoricoPrecoRepository
	cache     *infra.CacheConsulta
	cfg       ImportacaoConfig
	agora     func() time.Time
	progresso func(dto.ProgressoImportacao)
}

func NewImportacaoService(
	db *gorm.DB,
	entidades repository.EntidadeRepository,
	produtos repository.ProdutoRepository,
	precos repository.PrecoRepository,
	historico repository.HistoricoPrecoRepository,
	cache *infra.CacheConsulta,
	cfg ImportacaoConfig,
	opts ...OpcaoImportacao,
) ImportacaoService {
	cfg.aplicarPadroes()
	s := &importacaoService{
		db:        db,
		entidades: entidades,
		produtos:  produtos,
		precos:    precos,
		historico: historico,
		cache:     cache,
		cfg:       cfg,
		agora:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *importacaoService) ImportarArquivo(ctx context.Context, caminho string) (*dto.ResumoImportacao, error) {
	f, err := os.Open(caminho)
	if err != nil {
		return nil, fmt.Errorf("abrindo %s: %w", caminho, err)
	}
	defer f.Close()
	return s.Importar(ctx, f)
}

// resultadoLinha is what one row contributed to the run.
type resultadoLinha struct {
	rejeitada bool
	criado    bool
	precos    int
}

func (s *importacaoService) Importar(ctx context.Context, r io.Reader) (*dto.ResumoImportacao, error) {
	inicio := time.Now()
	resumo := &dto.ResumoImportacao{ExecucaoID: uuid.NewString()}
	logger := log.With().Str("execucao", resumo.ExecucaoID).Logger()

	var aliquotas map[string]uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		aliquotas, err = s.entidades.SemearAliquotas(tx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("semeando alíquotas: %w", err)
	}

	leitor, err := source.NewReader(r, s.cfg.Encoding, s.cfg.Pular)
	if err != nil {
		return nil, err
	}
	carregador := NewCarregadorPrecos(s.precos, s.historico, aliquotas, s.cfg.AuditarHistorico, s.cfg.Usuario)
	data := dataVigencia(s.agora())

	logger.Info().Int("pular", s.cfg.Pular).Time("data_vigencia", data).Msg("importação iniciada")

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("abrindo transação: %w", tx.Error)
	}
	abortar := func(err error) (*dto.ResumoImportacao, error) {
		tx.Rollback()
		logger.Error().Err(err).Int("processadas", resumo.Processadas).Msg("importação abortada")
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return abortar(err)
		}
		linha, err := leitor.Ler()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return abortar(err)
		}
		if linha.Len() < s.cfg.MinColunas {
			resumo.Descartadas++
			continue
		}

		resumo.Processadas++
		res, err := s.processarLinha(tx, linha, carregador, data)
		switch {
		case err != nil:
			resumo.Erros++
			logger.Error().Err(err).
				Int("linha", linha.Numero).
				Str("codigo_ggrem", linha.Campo(source.ColCodigoGGREM)).
				Msg("linha com erro")
		case res.rejeitada:
			resumo.Rejeitadas++
			logger.Warn().Int("linha", linha.Numero).Msg("linha rejeitada: substância, código GGREM ou produto ausente")
		default:
			resumo.Sucesso++
			resumo.PrecosGravados += res.precos
			if res.criado {
				resumo.ProdutosCriados++
			} else {
				resumo.ProdutosAtualizados++
			}
		}

		if resumo.Processadas%s.cfg.CommitACada == 0 {
			if err := tx.Commit().Error; err != nil {
				return nil, fmt.Errorf("commit após %d linhas: %w", resumo.Processadas, err)
			}
			s.checkpoint(logger, resumo)
			tx = s.db.WithContext(ctx).Begin()
			if tx.Error != nil {
				return nil, fmt.Errorf("abrindo transação: %w", tx.Error)
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("commit final: %w", err)
	}
	s.checkpoint(logger, resumo)

	if err := s.cache.Invalidar(ctx); err != nil {
		logger.Warn().Err(err).Msg("cache de consulta não invalidado")
	}

	resumo.Duracao = time.Since(inicio)
	logger.Info().
		Int("processadas", resumo.Processadas).
		Int("sucesso", resumo.Sucesso).
		Int("erros", resumo.Erros).
		Int("rejeitadas", resumo.Rejeitadas).
		Int("descartadas", resumo.Descartadas).
		Int("precos", resumo.PrecosGravados).
		Dur("duracao", resumo.Duracao).
		Msg("importação concluída")
	return resumo, nil
}

func (s *importacaoService) checkpoint(logger zerolog.Logger, r *dto.ResumoImportacao) {
	logger.Info().
		Int("processadas", r.Processadas).
		Int("sucesso", r.Sucesso).
		Int("erros", r.Erros).
		Msg("checkpoint")
	if s.progresso != nil {
		s.progresso(dto.ProgressoImportacao{Processadas: r.Processadas, Sucesso: r.Sucesso, Erros: r.Erros})
	}
}

// processarLinha runs the row pipeline inside a savepoint: any error or panic rolls back
// exactly this row's writes and leaves the outer transaction usable.
func (s *importacaoService) processarLinha(tx *gorm.DB, l source.Linha, c *CarregadorPrecos, data time.Time) (res resultadoLinha, err error) {
	if l.Campo(source.ColSubstancia) == "" || l.Campo(source.ColCodigoGGREM) == "" || l.Campo(source.ColProduto) == "" {
		return resultadoLinha{rejeitada: true}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	err = tx.Transaction(func(sp *gorm.DB) error {
		p, err := s.montarProduto(sp, l)
		if err != nil {
			return err
		}
		id, criado, err := s.produtos.UpsertTx(sp, p)
		if err != nil {
			return err
		}
		n, err := c.CarregarTx(sp, id, l, data)
		if err != nil {
			return err
		}
		res = resultadoLinha{criado: criado, precos: n}
		return nil
	})
	return res, err
}

// montarProduto resolves the reference entities of l and builds the product record.
func (s *importacaoService) montarProduto(tx *gorm.DB, l source.Linha) (*model.Produto, error) {
	resolver := func(tipo repository.TipoEntidade, chave string, extras map[string]any) (*uuid.UUID, error) {
		id, err := s.entidades.Resolver(tx, tipo, chave, extras)
		if err != nil {
			return nil, fmt.Errorf("resolvendo %s: %w", tipo, err)
		}
		return id, nil
	}

	p := &model.Produto{
		CodigoGGREM:         l.Campo(source.ColCodigoGGREM),
		Registro:            normalize.Opcional(l.Campo(source.ColRegistro)),
		EAN1:                normalize.Opcional(l.Campo(source.ColEAN1)),
		EAN2:                normalize.Opcional(l.Campo(source.ColEAN2)),
		EAN3:                normalize.Opcional(l.Campo(source.ColEAN3)),
		Nome:                l.Campo(source.ColProduto),
		Apresentacao:        l.Campo(source.ColApresentacao),
		RestricaoHospitalar: normalize.RestricaoHospitalar(l.Campo(source.ColRestricaoHospitalar)),
		CAP:                 normalize.SimNao(l.Campo(source.ColCAP)),
		Confaz87:            normalize.Confaz(l.Campo(source.ColConfaz87)),
		ICMSZero:            normalize.SimNao(l.Campo(source.ColICMSZero)),
		AnaliseRecursal:     normalize.Opcional(l.Campo(source.ColAnaliseRecursal)),
		ListaCredito:        normalize.Opcional(l.Campo(source.ColListaCredito)),
		Comercializacao:     normalize.SimNao(l.Campo(source.ColComercializacao)),
		Tarja:               normalize.Opcional(l.Campo(source.ColTarja)),
	}

	var err error
	if p.SubstanciaID, err = resolver(repository.EntidadeSubstancia, l.Campo(source.ColSubstancia), nil); err != nil {
		return nil, err
	}
	if p.LaboratorioID, err = resolver(repository.EntidadeLaboratorio, l.Campo(source.ColCNPJ),
		map[string]any{"nome_laboratorio": l.Campo(source.ColLaboratorio)}); err != nil {
		return nil, err
	}
	if classe := l.Campo(source.ColClasseTerapeutica); classe != "" {
		codigo, descricao := normalize.ClasseTerapeutica(classe)
		if p.ClasseID, err = resolver(repository.EntidadeClasse, codigo, map[string]any{"descricao_classe": descricao}); err != nil {
			return nil, err
		}
	}
	if p.TipoID, err = resolver(repository.EntidadeTipoProduto, l.Campo(source.ColTipoProduto), nil); err != nil {
		return nil, err
	}
	if p.RegimeID, err = resolver(repository.EntidadeRegime, l.Campo(source.ColRegimePreco), nil); err != nil {
		return nil, err
	}
	return p, nil
}
