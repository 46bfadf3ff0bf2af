// Package pagamento regista as dívidas a fornecedores, valida-as e deriva o
// estado a partir do valor pago e da data de vencimento.
package pagamento

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
	"github.com/KromaEnergia/api-tesouraria/internal/workflow"
)

type Service struct {
	ledger  *store.Ledger
	relogio relogio.Relogio
	notif   notificacao.Notificador
	log     *zap.Logger
	// etapas anexadas a cada pagamento novo; vazio desliga o workflow.
	etapas []models.EtapaWorkflow
}

func NewService(ledger *store.Ledger, rel relogio.Relogio, notif notificacao.Notificador, log *zap.Logger, etapas []models.EtapaWorkflow) *Service {
	return &Service{ledger: ledger, relogio: rel, notif: notif, log: log, etapas: etapas}
}

// ResumoEstado agrega os pagamentos de um estado.
type ResumoEstado struct {
	Estado     models.EstadoPagamento `json:"estado"`
	Quantidade int                    `json:"quantidade"`
	Total      decimal.Decimal        `json:"total"`
	TotalPago  decimal.Decimal        `json:"totalPago"`
}

func validar(p models.Pagamento) error {
	if strings.TrimSpace(p.Referencia) == "" {
		return apperr.Validacao("referência é obrigatória")
	}
	if p.Valor.IsNegative() {
		return apperr.Validacao("valor não pode ser negativo")
	}
	if p.ValorPago.IsNegative() {
		return apperr.Validacao("valor pago não pode ser negativo")
	}
	if p.ValorPago.GreaterThan(p.Valor) {
		return apperr.Validacao("valor pago (%s) não pode exceder o valor (%s)", p.ValorPago.StringFixed(2), p.Valor.StringFixed(2))
	}
	if !p.Tipo.Valido() {
		return apperr.Validacao("tipo de documento inválido %q", p.Tipo)
	}
	if !p.Metodo.Valido() {
		return apperr.Validacao("método de pagamento inválido %q", p.Metodo)
	}
	if p.Estado != "" && !p.Estado.Valido() {
		return apperr.Validacao("estado inválido %q", p.Estado)
	}
	return nil
}

func referenciaLivre(ctx context.Context, r store.Repositorios, fornecedorID, referencia, excetoID string) error {
	existentes, err := store.PagamentosDoFornecedor(ctx, r, fornecedorID)
	if err != nil {
		return err
	}
	for _, e := range existentes {
		if e.ID != excetoID && e.Referencia == referencia {
			return apperr.Validacao("o fornecedor já tem um pagamento com a referência %s", referencia)
		}
	}
	return nil
}

// aplicarEstado trata o estado pedido: cancelado e pago são aplicados tal
// como vêm, vazio mantém-nos, e qualquer outro reabre o pagamento e deixa a
// derivação decidir.
func (s *Service) aplicarEstado(p *models.Pagamento, pedido models.EstadoPagamento) {
	agora := s.relogio.Agora()
	switch pedido {
	case models.EstadoCancelado:
		p.Estado = models.EstadoCancelado
		return
	case models.EstadoPago:
		if p.Estado != models.EstadoPago {
			data := p.DataPagamento
			p.MarcarPago(agora)
			if data != nil {
				p.DataPagamento = data
			}
		}
		return
	case "":
	default:
		if p.Estado == models.EstadoPago || p.Estado == models.EstadoCancelado {
			p.Estado = models.EstadoPendente
			p.DataPagamento = nil
		}
	}
	p.Estado = p.DerivarEstado(agora)
	if p.Estado == models.EstadoPago && p.DataPagamento == nil {
		p.DataPagamento = &agora
	}
}

// liquidacaoForaDoWorkflow recusa que um pagamento com workflow em curso
// passe a pago por edição direta; só a aprovação final o liquida.
func liquidacaoForaDoWorkflow(antes, depois models.Pagamento) error {
	if antes.Estado == models.EstadoPago || depois.Estado != models.EstadoPago {
		return nil
	}
	if depois.Workflow != nil && depois.Workflow.Status == models.WorkflowEmCurso {
		return apperr.Validacao("pagamento %s aguarda aprovação do workflow", depois.Referencia)
	}
	return nil
}

// Criar regista um pagamento sob um fornecedor existente. Com workflow
// configurado, o pagamento nasce com as etapas anexadas.
func (s *Service) Criar(ctx context.Context, fornecedorID string, p models.Pagamento) (models.Pagamento, error) {
	p.Referencia = strings.TrimSpace(p.Referencia)
	if err := validar(p); err != nil {
		return models.Pagamento{}, err
	}
	if len(s.etapas) > 0 {
		if err := workflow.ValidarEtapas(s.etapas); err != nil {
			return models.Pagamento{}, err
		}
	}

	pedido := p.Estado
	p.ID = ""
	p.FornecedorID = fornecedorID
	p.FundoManeioID = nil
	p.TransacaoBancariaID = nil
	p.Workflow = nil
	p.Estado = ""
	if pedido != models.EstadoPago {
		p.DataPagamento = nil
	}
	s.aplicarEstado(&p, pedido)
	if len(s.etapas) > 0 && p.Estado != models.EstadoPago && p.Estado != models.EstadoCancelado {
		w := models.NovoWorkflow(s.etapas)
		p.Workflow = &w
	}

	var criado models.Pagamento
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		if _, err := r.Fornecedores.BuscarPorID(ctx, fornecedorID); err != nil {
			return err
		}
		if err := referenciaLivre(ctx, r, fornecedorID, p.Referencia, ""); err != nil {
			return err
		}
		var err error
		criado, err = r.Pagamentos.Adicionar(ctx, p)
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Pagamento %s registado", criado.Referencia))
	return criado, nil
}

// Atualizar substitui os campos editáveis. Vínculos, workflow e fornecedor
// não mudam por aqui.
func (s *Service) Atualizar(ctx context.Context, id string, dados models.Pagamento) (models.Pagamento, error) {
	dados.Referencia = strings.TrimSpace(dados.Referencia)
	if err := validar(dados); err != nil {
		return models.Pagamento{}, err
	}
	var p models.Pagamento
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		atual, err := r.Pagamentos.BuscarPorID(ctx, id)
		if err != nil {
			return err
		}
		if err := referenciaLivre(ctx, r, atual.FornecedorID, dados.Referencia, id); err != nil {
			return err
		}
		if atual.Reconciliado() && dados.Metodo != atual.Metodo {
			return apperr.Validacao("desvincule o pagamento %s antes de mudar o método", atual.Referencia)
		}
		p, err = r.Pagamentos.Atualizar(ctx, id, func(p *models.Pagamento) error {
			p.Referencia = dados.Referencia
			p.Descricao = dados.Descricao
			p.Valor = dados.Valor
			p.ValorPago = dados.ValorPago
			p.DataVencimento = dados.DataVencimento
			p.Tipo = dados.Tipo
			p.Metodo = dados.Metodo
			p.FacturaRecebida = dados.FacturaRecebida
			p.ReciboRecebido = dados.ReciboRecebido
			p.VDRecebido = dados.VDRecebido
			s.aplicarEstado(p, dados.Estado)
			return liquidacaoForaDoWorkflow(atual, *p)
		})
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Pagamento %s atualizado", p.Referencia))
	return p, nil
}

// RegistrarValorPago soma um pagamento parcial ao valor já pago.
func (s *Service) RegistrarValorPago(ctx context.Context, id string, valor decimal.Decimal) (models.Pagamento, error) {
	if !valor.IsPositive() {
		return models.Pagamento{}, apperr.Validacao("valor a registar deve ser positivo")
	}
	var p models.Pagamento
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		p, err = r.Pagamentos.Atualizar(ctx, id, func(p *models.Pagamento) error {
			switch p.Estado {
			case models.EstadoCancelado, models.EstadoPago:
				return apperr.EstadoTerminal("pagamento %s já está %s", p.Referencia, p.Estado)
			}
			novo := p.ValorPago.Add(valor)
			if novo.GreaterThan(p.Valor) {
				return apperr.Validacao("valor pago (%s) excederia o valor (%s)", novo.StringFixed(2), p.Valor.StringFixed(2))
			}
			antes := *p
			p.ValorPago = novo
			s.aplicarEstado(p, "")
			return liquidacaoForaDoWorkflow(antes, *p)
		})
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Pagamento %s: %s pagos de %s", p.Referencia, p.ValorPago.StringFixed(2), p.Valor.StringFixed(2)))
	return p, nil
}

// atualizarVista recalcula o estado para a data de hoje sem gravar.
func (s *Service) atualizarVista(p models.Pagamento) models.Pagamento {
	p.Estado = p.DerivarEstado(s.relogio.Agora())
	return p
}

func (s *Service) BuscarPorID(ctx context.Context, id string) (models.Pagamento, error) {
	p, err := s.ledger.Consultar().Pagamentos.BuscarPorID(ctx, id)
	if err != nil {
		return models.Pagamento{}, err
	}
	return s.atualizarVista(p), nil
}

// Listar devolve os pagamentos, opcionalmente filtrados por estado.
func (s *Service) Listar(ctx context.Context, estado models.EstadoPagamento) ([]models.Pagamento, error) {
	todos, err := s.ledger.Consultar().Pagamentos.Listar(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Pagamento{}
	for _, p := range todos {
		p = s.atualizarVista(p)
		if estado == "" || p.Estado == estado {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *Service) ListarPorFornecedor(ctx context.Context, fornecedorID string) ([]models.Pagamento, error) {
	r := s.ledger.Consultar()
	if _, err := r.Fornecedores.BuscarPorID(ctx, fornecedorID); err != nil {
		return nil, err
	}
	ps, err := store.PagamentosDoFornecedor(ctx, r, fornecedorID)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		ps[i] = s.atualizarVista(ps[i])
	}
	return ps, nil
}

// DocumentosPendentes lista as flags de documento ainda por receber.
func (s *Service) DocumentosPendentes(ctx context.Context, id string) ([]string, error) {
	p, err := s.ledger.Consultar().Pagamentos.BuscarPorID(ctx, id)
	if err != nil {
		return nil, err
	}
	faltam := p.DocumentosPendentes()
	if faltam == nil {
		faltam = []string{}
	}
	return faltam, nil
}

// Resumo agrega quantidade e totais por estado.
func (s *Service) Resumo(ctx context.Context) ([]ResumoEstado, error) {
	ps, err := s.Listar(ctx, "")
	if err != nil {
		return nil, err
	}
	por := map[models.EstadoPagamento]*ResumoEstado{}
	for _, p := range ps {
		r, ok := por[p.Estado]
		if !ok {
			r = &ResumoEstado{Estado: p.Estado, Total: decimal.Zero, TotalPago: decimal.Zero}
			por[p.Estado] = r
		}
		r.Quantidade++
		r.Total = r.Total.Add(p.Valor)
		r.TotalPago = r.TotalPago.Add(p.ValorPago)
	}
	out := make([]ResumoEstado, 0, len(por))
	for _, r := range por {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Estado < out[j].Estado })
	return out, nil
}
