package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID fills a zero UUID before insert. Postgres could default the column with
// gen_random_uuid(), but the same models are migrated onto SQLite in tests.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Substancia) BeforeCreate(*gorm.DB) error        { assignID(&s.ID); return nil }
func (l *Laboratorio) BeforeCreate(*gorm.DB) error       { assignID(&l.ID); return nil }
func (c *ClasseTerapeutica) BeforeCreate(*gorm.DB) error { assignID(&c.ID); return nil }
func (t *TipoProduto) BeforeCreate(*gorm.DB) error       { assignID(&t.ID); return nil }
func (r *RegimePreco) BeforeCreate(*gorm.DB) error       { assignID(&r.ID); return nil }
func (a *AliquotaICMS) BeforeCreate(*gorm.DB) error      { assignID(&a.ID); return nil }
func (p *Produto) BeforeCreate(*gorm.DB) error           { assignID(&p.ID); return nil }
func (p *PrecoFabrica) BeforeCreate(*gorm.DB) error      { assignID(&p.ID); return nil }
func (p *PrecoPMVG) BeforeCreate(*gorm.DB) error         { assignID(&p.ID); return nil }
func (h *HistoricoPreco) BeforeCreate(*gorm.DB) error    { assignID(&h.ID); return nil }
