package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EstadoCheque string

const (
	ChequePendente   EstadoCheque = "pendente"
	ChequeCompensado EstadoCheque = "compensado"
	ChequeCancelado  EstadoCheque = "cancelado"
)

// Cheque nasce pendente e termina compensado ou cancelado.
type Cheque struct {
	ID              string          `gorm:"primaryKey;size:64" json:"id"`
	Numero          string          `gorm:"size:50;not null;uniqueIndex" json:"numero"`
	Valor           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"valor"`
	Beneficiario    string          `gorm:"size:255" json:"beneficiario"`
	Banco           string          `gorm:"size:100" json:"banco"`
	DataEmissao     time.Time       `json:"dataEmissao"`
	DataCompensacao *time.Time      `json:"dataCompensacao"`
	Estado          EstadoCheque    `gorm:"size:20;not null;default:'pendente';index" json:"estado"`

	PagamentoID         *string `gorm:"size:64;index" json:"pagamentoId"`
	PagamentoReferencia string  `gorm:"size:100" json:"pagamentoReferencia,omitempty"`
	FornecedorNome      string  `gorm:"size:255" json:"fornecedorNome,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (c Cheque) Chave() string { return c.ID }

func (c Cheque) Clone() Cheque {
	n := c
	n.DataCompensacao = cloneTime(c.DataCompensacao)
	n.PagamentoID = cloneString(c.PagamentoID)
	return n
}

func (c Cheque) Terminal() bool {
	return c.Estado == ChequeCompensado || c.Estado == ChequeCancelado
}

// TransacaoBancaria é o registo de reconciliação bancária gerado quando um cheque compensa.
type TransacaoBancaria struct {
	ID           string          `gorm:"primaryKey;size:64" json:"id"`
	Data         time.Time       `json:"data"`
	Valor        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"valor"`
	Descricao    string          `gorm:"size:255" json:"descricao"`
	Banco        string          `gorm:"size:100" json:"banco"`
	ChequeID     *string         `gorm:"size:64;index" json:"chequeId"`
	PagamentoID  *string         `gorm:"size:64;index" json:"pagamentoId"`
	Reconciliado bool            `json:"reconciliado"`
	CreatedAt    time.Time       `json:"createdAt"`
}

func (t TransacaoBancaria) Chave() string { return t.ID }

func (t TransacaoBancaria) Clone() TransacaoBancaria {
	n := t
	n.ChequeID = cloneString(t.ChequeID)
	n.PagamentoID = cloneString(t.PagamentoID)
	return n
}
