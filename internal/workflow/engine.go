// Package workflow conduz um pagamento pela cadeia sequencial de aprovação.
// Cada etapa é aprovada por um username ou role; a última aprovação liquida
// o pagamento e aciona os liquidadores na mesma unidade de trabalho.
package workflow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

// Liquidador reage à aprovação final de um pagamento, dentro da mesma
// unidade de trabalho. Um erro desfaz a aprovação.
type Liquidador interface {
	Liquidar(ctx context.Context, r store.Repositorios, p *models.Pagamento) error
}

type Engine struct {
	ledger       *store.Ledger
	relogio      relogio.Relogio
	notif        notificacao.Notificador
	log          *zap.Logger
	liquidadores []Liquidador
}

func NewEngine(ledger *store.Ledger, rel relogio.Relogio, notif notificacao.Notificador, log *zap.Logger, liquidadores ...Liquidador) *Engine {
	return &Engine{ledger: ledger, relogio: rel, notif: notif, log: log, liquidadores: liquidadores}
}

// PodeTransitar indica se o ator pode aprovar ou rejeitar a etapa atual.
// A comparação de username e role é literal.
func PodeTransitar(p models.Pagamento, ator models.Ator) bool {
	if p.Workflow == nil || p.Workflow.Status != models.WorkflowEmCurso || p.Estado == models.EstadoCancelado {
		return false
	}
	etapa, ok := p.Workflow.EtapaAtual()
	if !ok {
		return false
	}
	if ator.Admin() {
		return true
	}
	return (etapa.Username != "" && etapa.Username == ator.Username) ||
		(etapa.Role != "" && etapa.Role == ator.Role)
}

// ValidarEtapas confirma que cada etapa identifica um aprovador.
func ValidarEtapas(etapas []models.EtapaWorkflow) error {
	if len(etapas) == 0 {
		return apperr.Validacao("o workflow precisa de pelo menos uma etapa")
	}
	for i, e := range etapas {
		if strings.TrimSpace(e.Role) == "" && strings.TrimSpace(e.Username) == "" {
			return apperr.Validacao("etapa %d sem role nem username", i+1)
		}
	}
	return nil
}

// Iniciar anexa um novo workflow ao pagamento. Um workflow rejeitado pode
// ser substituído; um em curso ou aprovado não.
func (e *Engine) Iniciar(ctx context.Context, pagamentoID string, etapas []models.EtapaWorkflow) (models.Pagamento, error) {
	if err := ValidarEtapas(etapas); err != nil {
		return models.Pagamento{}, err
	}
	var p models.Pagamento
	err := e.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		p, err = r.Pagamentos.Atualizar(ctx, pagamentoID, func(p *models.Pagamento) error {
			switch {
			case p.Estado == models.EstadoCancelado:
				return apperr.EstadoTerminal("pagamento %s está cancelado", p.Referencia)
			case p.Workflow != nil && p.Workflow.Status == models.WorkflowEmCurso:
				return apperr.Validacao("pagamento %s já tem um workflow em curso", p.Referencia)
			case p.Workflow != nil && p.Workflow.Status == models.WorkflowAprovado:
				return apperr.EstadoTerminal("pagamento %s já foi aprovado", p.Referencia)
			}
			w := models.NovoWorkflow(etapas)
			p.Workflow = &w
			return nil
		})
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}
	e.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Workflow iniciado para o pagamento %s", p.Referencia))
	return p, nil
}

func verificarTransicao(p models.Pagamento, ator models.Ator) error {
	if p.Workflow == nil {
		return apperr.Validacao("pagamento %s não está sob workflow", p.Referencia)
	}
	if p.Workflow.Terminal() {
		return apperr.EstadoTerminal("workflow do pagamento %s já está %s", p.Referencia, p.Workflow.Status)
	}
	if p.Estado == models.EstadoCancelado {
		return apperr.EstadoTerminal("pagamento %s está cancelado", p.Referencia)
	}
	if !PodeTransitar(p, ator) {
		return apperr.NaoAutorizado("%s (%s) não pode transitar a etapa %d do pagamento %s",
			ator.Username, ator.Role, p.Workflow.CurrentStep+1, p.Referencia)
	}
	return nil
}

// Aprovar aprova a etapa atual. Na última etapa o workflow fica aprovado, o
// pagamento fica pago e os liquidadores correm; senão avança para a seguinte.
func (e *Engine) Aprovar(ctx context.Context, pagamentoID string, ator models.Ator, comentarios string) (models.Pagamento, error) {
	var (
		p     models.Pagamento
		final bool
	)
	err := e.ledger.Executar(ctx, func(r store.Repositorios) error {
		// fn pode ser repetida pelo fallback no armazenamento local.
		final = false
		agora := e.relogio.Agora()
		var err error
		p, err = r.Pagamentos.Atualizar(ctx, pagamentoID, func(p *models.Pagamento) error {
			if err := verificarTransicao(*p, ator); err != nil {
				return err
			}
			w := p.Workflow
			etapa := &w.Steps[w.CurrentStep]
			etapa.Status = models.EtapaAprovada
			etapa.Date = &agora
			etapa.Comments = strings.TrimSpace(comentarios)
			if w.CurrentStep == len(w.Steps)-1 {
				w.Status = models.WorkflowAprovado
				p.MarcarPago(agora)
				final = true
				return nil
			}
			w.CurrentStep++
			return nil
		})
		if err != nil || !final {
			return err
		}
		for _, l := range e.liquidadores {
			if err := l.Liquidar(ctx, r, &p); err != nil {
				return err
			}
		}
		p, err = r.Pagamentos.BuscarPorID(ctx, pagamentoID)
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}

	e.log.Info("etapa de workflow aprovada",
		zap.String("pagamento", p.ID),
		zap.String("ator", ator.Username),
		zap.Int("etapa", p.Workflow.CurrentStep),
		zap.String("status", string(p.Workflow.Status)))
	if final {
		e.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Pagamento %s aprovado", p.Referencia))
	} else {
		e.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Etapa aprovada; pagamento %s segue para a etapa %d", p.Referencia, p.Workflow.CurrentStep+1))
	}
	return p, nil
}

// Rejeitar termina o workflow na etapa atual. Comentários são obrigatórios e
// o estado do pagamento não muda.
func (e *Engine) Rejeitar(ctx context.Context, pagamentoID string, ator models.Ator, comentarios string) (models.Pagamento, error) {
	comentarios = strings.TrimSpace(comentarios)
	var p models.Pagamento
	err := e.ledger.Executar(ctx, func(r store.Repositorios) error {
		agora := e.relogio.Agora()
		var err error
		p, err = r.Pagamentos.Atualizar(ctx, pagamentoID, func(p *models.Pagamento) error {
			if p.Workflow == nil {
				return apperr.Validacao("pagamento %s não está sob workflow", p.Referencia)
			}
			if comentarios == "" {
				return apperr.Validacao("comentários são obrigatórios na rejeição")
			}
			if err := verificarTransicao(*p, ator); err != nil {
				return err
			}
			w := p.Workflow
			etapa := &w.Steps[w.CurrentStep]
			etapa.Status = models.EtapaRejeitada
			etapa.Date = &agora
			etapa.Comments = comentarios
			w.Status = models.WorkflowRejeitado
			return nil
		})
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}
	e.log.Info("workflow rejeitado", zap.String("pagamento", p.ID), zap.String("ator", ator.Username))
	e.notif.Notificar(ctx, notificacao.Aviso, fmt.Sprintf("Pagamento %s rejeitado: %s", p.Referencia, comentarios))
	return p, nil
}

// Pendentes lista os pagamentos cuja etapa atual o ator pode transitar.
func (e *Engine) Pendentes(ctx context.Context, ator models.Ator) ([]models.Pagamento, error) {
	todos, err := e.ledger.Consultar().Pagamentos.Listar(ctx)
	if err != nil {
		return nil, err
	}
	out := []models.Pagamento{}
	for _, p := range todos {
		if PodeTransitar(p, ator) {
			out = append(out, p)
		}
	}
	return out, nil
}
