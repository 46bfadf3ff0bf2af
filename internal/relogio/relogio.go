// Package relogio fornece o relógio injetado nos serviços, para que
// workflow e reconciliação não leiam a hora global diretamente.
package relogio

import "time"

type Relogio interface {
	Agora() time.Time
}

// Sistema devolve a hora local da máquina.
type Sistema struct{}

func (Sistema) Agora() time.Time { return time.Now() }

// Fixo devolve sempre o mesmo instante; usado em testes.
type Fixo struct {
	T time.Time
}

func (f *Fixo) Agora() time.Time { return f.T }

// Avancar move o relógio fixo para frente.
func (f *Fixo) Avancar(d time.Duration) { f.T = f.T.Add(d) }
