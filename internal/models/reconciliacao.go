package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TipoItem string

const (
	ItemPagamento TipoItem = "pagamento"
	ItemMovimento TipoItem = "fundo_maneio"
	ItemCheque    TipoItem = "cheque"
)

func (t TipoItem) Valido() bool {
	return t == ItemPagamento || t == ItemMovimento || t == ItemCheque
}

// RefItem identifica um item reconciliável.
type RefItem struct {
	Tipo TipoItem `json:"tipo"`
	ID   string   `json:"id"`
}

// ItemReconciliacao é uma vista derivada, nunca persistida, que unifica
// pagamentos, movimentos do fundo e cheques para o cruzamento.
type ItemReconciliacao struct {
	ID                  string          `json:"id"`
	Tipo                TipoItem        `json:"tipo"`
	Referencia          string          `json:"referencia"`
	Valor               decimal.Decimal `json:"valor"`
	Data                time.Time       `json:"data"`
	Fornecedor          string          `json:"fornecedor"`
	Estado              string          `json:"estado"`
	Metodo              MetodoPagamento `json:"metodo,omitempty"`
	Reconciliado        bool            `json:"reconciliado"`
	ItemRelacionadoID   *string         `json:"itemRelacionadoId"`
	ItemRelacionadoTipo TipoItem        `json:"itemRelacionadoTipo,omitempty"`
}

func (i ItemReconciliacao) Ref() RefItem { return RefItem{Tipo: i.Tipo, ID: i.ID} }
