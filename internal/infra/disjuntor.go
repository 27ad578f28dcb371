package infra

import (
	"errors"
	"sync"
	"time"
)

// Disjuntor is a circuit breaker (fechado → aberto → semiaberto) in front of Redis.
// When the cache keeps failing, queries go straight to the database instead of paying
// a network timeout on every request.
type Disjuntor struct {
	mu            sync.Mutex
	estado        EstadoDisjuntor
	falhas        int
	sucessos      int
	ultimaFalha   time.Time
	limiteFalhas  int
	limiteSucesso int
	espera        time.Duration
	agora         func() time.Time
}

// EstadoDisjuntor is the current position of a Disjuntor.
type EstadoDisjuntor int

const (
	Fechado    EstadoDisjuntor = iota // calls flow
	Aberto                            // fast-fail
	SemiAberto                        // probing
)

func (e EstadoDisjuntor) String() string {
	switch e {
	case Fechado:
		return "fechado"
	case Aberto:
		return "aberto"
	case SemiAberto:
		return "semiaberto"
	default:
		return "desconhecido"
	}
}

// ErrDisjuntorAberto is returned by Executar while the breaker is open.
var ErrDisjuntorAberto = errors.New("disjuntor aberto")

// NewDisjuntor trips after limiteFalhas consecutive failures and stays open for espera.
// Zero values fall back to 5 failures, 2 probe successes and 30s.
func NewDisjuntor(limiteFalhas, limiteSucesso int, espera time.Duration) *Disjuntor {
	if limiteFalhas <= 0 {
		limiteFalhas = 5
	}
	if limiteSucesso <= 0 {
		limiteSucesso = 2
	}
	if espera <= 0 {
		espera = 30 * time.Second
	}
	return &Disjuntor{
		limiteFalhas:  limiteFalhas,
		limiteSucesso: limiteSucesso,
		espera:        espera,
		agora:         time.Now,
	}
}

// Estado returns the current state, moving aberto → semiaberto once espera elapsed.
func (d *Disjuntor) Estado() EstadoDisjuntor {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.estadoLocked()
}

func (d *Disjuntor) estadoLocked() EstadoDisjuntor {
	if d.estado == Aberto && d.agora().Sub(d.ultimaFalha) >= d.espera {
		d.estado = SemiAberto
		d.sucessos = 0
	}
	return d.estado
}

// Executar runs fn unless the breaker is open.
func (d *Disjuntor) Executar(fn func() error) error {
	d.mu.Lock()
	if d.estadoLocked() == Aberto {
		d.mu.Unlock()
		return ErrDisjuntorAberto
	}
	d.mu.Unlock()

	err := fn()

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.falhou()
		return err
	}
	d.funcionou()
	return nil
}

// must be called under lock
func (d *Disjuntor) falhou() {
	d.falhas++
	d.ultimaFalha = d.agora()

	switch d.estado {
	case Fechado:
		if d.falhas >= d.limiteFalhas {
			d.estado = Aberto
			d.sucessos = 0
		}
	case SemiAberto:
		d.estado = Aberto
		d.falhas = 0
	}
}

// must be called under lock
func (d *Disjuntor) funcionou() {
	switch d.estado {
	case Fechado:
		d.falhas = 0
	case SemiAberto:
		d.sucessos++
		if d.sucessos >= d.limiteSucesso {
			d.estado = Fechado
			d.falhas = 0
			d.sucessos = 0
		}
	}
}
