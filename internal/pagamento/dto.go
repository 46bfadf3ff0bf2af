package pagamento

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

// pagamentoRequest são os campos editáveis de um pagamento.
type pagamentoRequest struct {
	Referencia      string                 `json:"referencia"`
	Descricao       string                 `json:"descricao"`
	Valor           decimal.Decimal        `json:"valor"`
	ValorPago       decimal.Decimal        `json:"valorPago"`
	DataVencimento  time.Time              `json:"dataVencimento"`
	DataPagamento   *time.Time             `json:"dataPagamento"`
	Estado          models.EstadoPagamento `json:"estado"`
	Tipo            models.TipoDocumento   `json:"tipo"`
	Metodo          models.MetodoPagamento `json:"metodo"`
	FacturaRecebida bool                   `json:"facturaRecebida"`
	ReciboRecebido  bool                   `json:"reciboRecebido"`
	VDRecebido      bool                   `json:"vdRecebido"`
}

func (r pagamentoRequest) modelo() models.Pagamento {
	return models.Pagamento{
		Referencia:      r.Referencia,
		Descricao:       r.Descricao,
		Valor:           r.Valor,
		ValorPago:       r.ValorPago,
		DataVencimento:  r.DataVencimento,
		DataPagamento:   r.DataPagamento,
		Estado:          r.Estado,
		Tipo:            r.Tipo,
		Metodo:          r.Metodo,
		FacturaRecebida: r.FacturaRecebida,
		ReciboRecebido:  r.ReciboRecebido,
		VDRecebido:      r.VDRecebido,
	}
}

type valorPagoRequest struct {
	Valor decimal.Decimal `json:"valor"`
}

type documentosResponse struct {
	PagamentoID string   `json:"pagamentoId"`
	Pendentes   []string `json:"pendentes"`
}
