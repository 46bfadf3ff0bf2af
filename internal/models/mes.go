package models

import (
	"fmt"
	"time"
)

const layoutMes = "2006-01"

// Mes identifica um mês civil no formato "AAAA-MM".
type Mes string

// ParseMes valida e normaliza uma chave de mês.
func ParseMes(s string) (Mes, error) {
	t, err := time.Parse(layoutMes, s)
	if err != nil {
		return "", fmt.Errorf("mês inválido %q (use AAAA-MM)", s)
	}
	return Mes(t.Format(layoutMes)), nil
}

// MesDe devolve o mês civil que contém t.
func MesDe(t time.Time) Mes {
	return Mes(t.Format(layoutMes))
}

// Seguinte devolve o mês civil seguinte; dezembro vira janeiro do ano seguinte.
func (m Mes) Seguinte() Mes {
	t, err := time.Parse(layoutMes, string(m))
	if err != nil {
		return ""
	}
	return MesDe(t.AddDate(0, 1, 0))
}

func (m Mes) String() string { return string(m) }
