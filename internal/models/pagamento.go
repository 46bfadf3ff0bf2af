package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EstadoPagamento string

const (
	EstadoPendente     EstadoPagamento = "pendente"
	EstadoParcialmente EstadoPagamento = "parcialmente pago"
	EstadoPago         EstadoPagamento = "pago"
	EstadoAtrasado     EstadoPagamento = "atrasado"
	EstadoCancelado    EstadoPagamento = "cancelado"
)

type TipoDocumento string

const (
	TipoFatura  TipoDocumento = "fatura"
	TipoVD      TipoDocumento = "vd"
	TipoCotacao TipoDocumento = "cotacao"
)

type MetodoPagamento string

const (
	MetodoTransferencia MetodoPagamento = "transferência"
	MetodoCheque        MetodoPagamento = "cheque"
	MetodoFundoManeio   MetodoPagamento = "fundo de maneio"
)

func (e EstadoPagamento) Valido() bool {
	switch e {
	case EstadoPendente, EstadoParcialmente, EstadoPago, EstadoAtrasado, EstadoCancelado:
		return true
	}
	return false
}

func (t TipoDocumento) Valido() bool {
	switch t {
	case TipoFatura, TipoVD, TipoCotacao:
		return true
	}
	return false
}

func (m MetodoPagamento) Valido() bool {
	switch m {
	case MetodoTransferencia, MetodoCheque, MetodoFundoManeio:
		return true
	}
	return false
}

// Pagamento é uma dívida a um fornecedor.
// FundoManeioID aponta para o movimento do fundo de maneio e TransacaoBancariaID
// para o cheque que o liquidou; no máximo um dos dois está preenchido.
type Pagamento struct {
	ID             string          `gorm:"primaryKey;size:64" json:"id"`
	FornecedorID   string          `gorm:"size:64;not null;index" json:"fornecedorId"`
	Referencia     string          `gorm:"size:100;not null" json:"referencia"`
	Descricao      string          `gorm:"size:255" json:"descricao"`
	Valor          decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"valor"`
	ValorPago      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"valorPago"`
	DataVencimento time.Time       `json:"dataVencimento"`
	DataPagamento  *time.Time      `json:"dataPagamento"`
	Estado         EstadoPagamento `gorm:"size:30;not null;default:'pendente';index" json:"estado"`
	Tipo           TipoDocumento   `gorm:"size:20;not null" json:"tipo"`
	Metodo         MetodoPagamento `gorm:"size:30;not null" json:"metodo"`

	FacturaRecebida bool `json:"facturaRecebida"`
	ReciboRecebido  bool `json:"reciboRecebido"`
	VDRecebido      bool `json:"vdRecebido"`

	FundoManeioID       *string `gorm:"size:64;index" json:"fundoManeioId"`
	TransacaoBancariaID *string `gorm:"size:64;index" json:"transacaoBancariaId"`

	Workflow *Workflow `gorm:"type:jsonb;serializer:json" json:"workflow,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (p Pagamento) Chave() string { return p.ID }

func (p Pagamento) Clone() Pagamento {
	c := p
	c.DataPagamento = cloneTime(p.DataPagamento)
	c.FundoManeioID = cloneString(p.FundoManeioID)
	c.TransacaoBancariaID = cloneString(p.TransacaoBancariaID)
	if p.Workflow != nil {
		w := p.Workflow.Clone()
		c.Workflow = &w
	}
	return c
}

// DerivarEstado aplica a regra de estado a partir dos valores.
// Cancelado e pago forçado são mantidos; abaixo disso manda o valor pago,
// e um pagamento sem nada pago com vencimento anterior a hoje fica atrasado.
func (p Pagamento) DerivarEstado(hoje time.Time) EstadoPagamento {
	switch {
	case p.Estado == EstadoCancelado:
		return EstadoCancelado
	case p.Estado == EstadoPago:
		return EstadoPago
	case p.ValorPago.GreaterThanOrEqual(p.Valor):
		return EstadoPago
	case p.ValorPago.IsPositive():
		return EstadoParcialmente
	case !p.DataVencimento.IsZero() && inicioDoDia(p.DataVencimento).Before(inicioDoDia(hoje)):
		return EstadoAtrasado
	}
	return EstadoPendente
}

// MarcarPago confirma a liquidação total do pagamento.
func (p *Pagamento) MarcarPago(agora time.Time) {
	p.Estado = EstadoPago
	p.ValorPago = p.Valor
	p.DataPagamento = &agora
}

// DocumentosPendentes lista os documentos ainda não recebidos para o tipo do pagamento.
func (p Pagamento) DocumentosPendentes() []string {
	var faltam []string
	if p.Tipo == TipoVD {
		if !p.VDRecebido {
			faltam = append(faltam, "vdRecebido")
		}
		return faltam
	}
	if !p.FacturaRecebida {
		faltam = append(faltam, "facturaRecebida")
	}
	if !p.ReciboRecebido {
		faltam = append(faltam, "reciboRecebido")
	}
	return faltam
}

// Reconciliado indica se o pagamento está ligado a um instrumento de liquidação.
func (p Pagamento) Reconciliado() bool {
	return p.FundoManeioID != nil || p.TransacaoBancariaID != nil
}

// LimparVinculo remove as duas referências de liquidação.
func (p *Pagamento) LimparVinculo() {
	p.FundoManeioID = nil
	p.TransacaoBancariaID = nil
}

func inicioDoDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// Ptr devolve um ponteiro para s.
func Ptr(s string) *string { return &s }
