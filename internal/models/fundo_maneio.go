package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoMovimento string

const (
	MovimentoEntrada TipoMovimento = "entrada"
	MovimentoSaida   TipoMovimento = "saida"
)

// Movimento do fundo de maneio. Entradas somam, saídas subtraem.
type Movimento struct {
	ID        string          `json:"id"`
	Data      time.Time       `json:"data"`
	Tipo      TipoMovimento   `json:"tipo"`
	Valor     decimal.Decimal `json:"valor"`
	Descricao string          `json:"descricao"`

	PagamentoID         *string `json:"pagamentoId,omitempty"`
	PagamentoReferencia string  `json:"pagamentoReferencia,omitempty"`
	FornecedorNome      string  `json:"fornecedorNome,omitempty"`
}

// Sinal devolve o valor com sinal aplicado ao saldo.
func (m Movimento) Sinal() decimal.Decimal {
	if m.Tipo == MovimentoSaida {
		return m.Valor.Neg()
	}
	return m.Valor
}

// FundoManeio agrupa os movimentos de um mês civil. SaldoFinal é sempre
// recalculado a partir de SaldoInicial e dos movimentos.
type FundoManeio struct {
	ID           string          `gorm:"primaryKey;size:64" json:"id"`
	Mes          Mes             `gorm:"size:7;not null;uniqueIndex" json:"mes"`
	SaldoInicial decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"saldoInicial"`
	SaldoFinal   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"saldoFinal"`
	Movimentos   []Movimento     `gorm:"type:jsonb;serializer:json" json:"movimentos"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (f FundoManeio) Chave() string { return f.ID }

func (f FundoManeio) Clone() FundoManeio {
	c := f
	if f.Movimentos != nil {
		c.Movimentos = make([]Movimento, len(f.Movimentos))
		for i, m := range f.Movimentos {
			m.PagamentoID = cloneString(m.PagamentoID)
			c.Movimentos[i] = m
		}
	}
	return c
}

// CalcularSaldo = SaldoInicial + Σentradas − Σsaídas.
func (f FundoManeio) CalcularSaldo() decimal.Decimal {
	saldo := f.SaldoInicial
	for _, m := range f.Movimentos {
		saldo = saldo.Add(m.Sinal())
	}
	return saldo
}

// Recalcular grava em SaldoFinal o saldo derivado dos movimentos.
func (f *FundoManeio) Recalcular() {
	f.SaldoFinal = f.CalcularSaldo()
}

// SaldoCorrenteValido indica se o saldo acumulado nunca fica negativo
// ao percorrer os movimentos pela ordem em que foram lançados.
func (f FundoManeio) SaldoCorrenteValido() bool {
	saldo := f.SaldoInicial
	for _, m := range f.Movimentos {
		saldo = saldo.Add(m.Sinal())
		if saldo.IsNegative() {
			return false
		}
	}
	return true
}

// IndiceMovimento devolve a posição do movimento com o id dado, ou -1.
func (f FundoManeio) IndiceMovimento(id string) int {
	for i, m := range f.Movimentos {
		if m.ID == id {
			return i
		}
	}
	return -1
}
