package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"precomed/internal/model"
	"precomed/internal/source"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TipoEntidade names a reference table the importer resolves by natural key.
type TipoEntidade string

const (
	EntidadeSubstancia  TipoEntidade = "substancia"
	EntidadeLaboratorio TipoEntidade = "laboratorio"
	EntidadeClasse      TipoEntidade = "classe_terapeutica"
	EntidadeTipoProduto TipoEntidade = "tipo_produto"
	EntidadeRegime      TipoEntidade = "regime_preco"
	EntidadeAliquota    TipoEntidade = "aliquota_icms"
)

var (
	ErrTipoEntidadeDesconhecido = errors.New("tipo de entidade desconhecido")
	ErrColunaExtraNaoPermitida  = errors.New("coluna extra não permitida")
	ErrEntidadeNaoResolvida     = errors.New("entidade não resolvida")
)

// descritorEntidade is the only place table and column identifiers come from; caller
// text never reaches an identifier position.
type descritorEntidade struct {
	tabela        string
	colunaID      string
	colunaChave   string
	colunasExtras []string
}

var descritores = map[TipoEntidade]descritorEntidade{
	EntidadeSubstancia:  {tabela: "substancias", colunaID: "id_substancia", colunaChave: "nome_substancia"},
	EntidadeLaboratorio: {tabela: "laboratorios", colunaID: "id_laboratorio", colunaChave: "cnpj", colunasExtras: []string{"nome_laboratorio"}},
	EntidadeClasse:      {tabela: "classes_terapeuticas", colunaID: "id_classe", colunaChave: "codigo_classe", colunasExtras: []string{"descricao_classe"}},
	EntidadeTipoProduto: {tabela: "tipos_produto", colunaID: "id_tipo", colunaChave: "tipo_produto"},
	EntidadeRegime:      {tabela: "regimes_preco", colunaID: "id_regime", colunaChave: "regime_preco"},
	EntidadeAliquota:    {tabela: "aliquotas_icms", colunaID: "id_aliquota", colunaChave: "aliquota", colunasExtras: []string{"descricao"}},
}

func (d descritorEntidade) permite(coluna string) bool {
	for _, c := range d.colunasExtras {
		if c == coluna {
			return true
		}
	}
	return false
}

// tentativasResolver bounds the select/insert/select loop. A second attempt is only
// needed when a concurrent writer inserts the key between our select and insert.
const tentativasResolver = 3

type EntidadeRepository interface {
	// Resolver returns the id of the row with natural key chave, inserting it (with the
	// allowed extras) when missing. A blank key resolves to nil without touching storage.
	Resolver(tx *gorm.DB, tipo TipoEntidade, chave string, extras map[string]any) (*uuid.UUID, error)

	// SemearAliquotas makes sure the no-rate row and every rate of the extract exist and
	// returns their ids keyed by the rate's decimal string.
	SemearAliquotas(tx *gorm.DB) (map[string]uuid.UUID, error)

	FindAliquotaByID(ctx context.Context, id uuid.UUID) (*model.AliquotaICMS, error)
	FindAliquotaByIDTx(tx *gorm.DB, id uuid.UUID) (*model.AliquotaICMS, error)
	FindAliquotaByValor(ctx context.Context, aliquota decimal.Decimal) (*model.AliquotaICMS, error)
	ListAliquotas(ctx context.Context) ([]model.AliquotaICMS, error)

	DB() *gorm.DB
}

type entidadeRepo struct{ db *gorm.DB }

func NewEntidadeRepository(db *gorm.DB) EntidadeRepository { return &entidadeRepo{db: db} }

func (r *entidadeRepo) DB() *gorm.DB { return r.db }

func (r *entidadeRepo) Resolver(tx *gorm.DB, tipo TipoEntidade, chave string, extras map[string]any) (*uuid.UUID, error) {
	d, ok := descritores[tipo]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTipoEntidadeDesconhecido, tipo)
	}
	for coluna := range extras {
		if !d.permite(coluna) {
			return nil, fmt.Errorf("%w: %s.%s", ErrColunaExtraNaoPermitida, d.tabela, coluna)
		}
	}
	chave = strings.TrimSpace(chave)
	if chave == "" {
		return nil, nil
	}

	for i := 0; i < tentativasResolver; i++ {
		id, err := r.buscar(tx, d, chave)
		if err != nil {
			return nil, err
		}
		if id != nil {
			return id, nil
		}

		novo := uuid.New()
		linha := map[string]any{d.colunaID: novo, d.colunaChave: chave, "created_at": time.Now()}
		for k, v := range extras {
			linha[k] = v
		}
		res := tx.Table(d.tabela).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: d.colunaChave}}, DoNothing: true}).
			Create(linha)
		if res.Error != nil {
			return nil, fmt.Errorf("inserindo %s %q: %w", d.tabela, chave, res.Error)
		}
		if res.RowsAffected == 1 {
			return &novo, nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", ErrEntidadeNaoResolvida, d.tabela, chave)
}

func (r *entidadeRepo) buscar(tx *gorm.DB, d descritorEntidade, chave string) (*uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Table(d.tabela).
		Where(clause.Eq{Column: clause.Column{Name: d.colunaChave}, Value: chave}).
		Limit(1).
		Pluck(d.colunaID, &ids).Error
	if err != nil {
		return nil, fmt.Errorf("buscando %s %q: %w", d.tabela, chave, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return &ids[0], nil
}

// descricaoAliquota renders a rate the way the CMED tables label it ("17,5%", "Isento").
func descricaoAliquota(a decimal.Decimal) string {
	if a.IsZero() {
		return "Isento"
	}
	return strings.Replace(a.String(), ".", ",", 1) + "%"
}

func (r *entidadeRepo) SemearAliquotas(tx *gorm.DB) (map[string]uuid.UUID, error) {
	sem := model.AliquotaICMS{ID: model.SemAliquotaID, Descricao: "Sem impostos"}
	if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id_aliquota"}}, DoNothing: true}).
		Create(&sem).Error; err != nil {
		return nil, fmt.Errorf("semeando alíquota nula: %w", err)
	}

	ids := make(map[string]uuid.UUID, len(source.Aliquotas))
	for _, a := range source.Aliquotas {
		id, err := r.Resolver(tx, EntidadeAliquota, a.String(), map[string]any{"descricao": descricaoAliquota(a)})
		if err != nil {
			return nil, err
		}
		ids[a.String()] = *id
	}
	return ids, nil
}

func (r *entidadeRepo) FindAliquotaByID(ctx context.Context, id uuid.UUID) (*model.AliquotaICMS, error) {
	return r.FindAliquotaByIDTx(r.db.WithContext(ctx), id)
}

func (r *entidadeRepo) FindAliquotaByIDTx(tx *gorm.DB, id uuid.UUID) (*model.AliquotaICMS, error) {
	var a model.AliquotaICMS
	err := tx.Where("id_aliquota = ?", id).First(&a).Error
	return &a, err
}

func (r *entidadeRepo) FindAliquotaByValor(ctx context.Context, aliquota decimal.Decimal) (*model.AliquotaICMS, error) {
	var a model.AliquotaICMS
	err := r.db.WithContext(ctx).Where("aliquota = ?", aliquota).First(&a).Error
	return &a, err
}

func (r *entidadeRepo) ListAliquotas(ctx context.Context) ([]model.AliquotaICMS, error) {
	var out []model.AliquotaICMS
	err := r.db.WithContext(ctx).Order("aliquota").Find(&out).Error
	return out, err
}
