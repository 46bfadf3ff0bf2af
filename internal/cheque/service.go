// Package cheque gere o ciclo de vida dos cheques: emitido pendente, depois
// compensado (gera a transação bancária) ou cancelado.
package cheque

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/reconciliacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

type Service struct {
	ledger  *store.Ledger
	relogio relogio.Relogio
	notif   notificacao.Notificador
	log     *zap.Logger
}

func NewService(ledger *store.Ledger, rel relogio.Relogio, notif notificacao.Notificador, log *zap.Logger) *Service {
	return &Service{ledger: ledger, relogio: rel, notif: notif, log: log}
}

func (s *Service) Listar(ctx context.Context) ([]models.Cheque, error) {
	return s.ledger.Consultar().Cheques.Listar(ctx)
}

func (s *Service) BuscarPorID(ctx context.Context, id string) (models.Cheque, error) {
	return s.ledger.Consultar().Cheques.BuscarPorID(ctx, id)
}

func (s *Service) ListarTransacoes(ctx context.Context) ([]models.TransacaoBancaria, error) {
	return s.ledger.Consultar().Transacoes.Listar(ctx)
}

// Emitir regista um cheque pendente. O número é único no livro-razão.
func (s *Service) Emitir(ctx context.Context, c models.Cheque) (models.Cheque, error) {
	var emitido models.Cheque
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		emitido, err = s.emitir(ctx, r, c)
		return err
	})
	if err != nil {
		return models.Cheque{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Cheque %s emitido", emitido.Numero))
	return emitido, nil
}

func (s *Service) emitir(ctx context.Context, r store.Repositorios, c models.Cheque) (models.Cheque, error) {
	c.Numero = strings.TrimSpace(c.Numero)
	if c.Numero == "" {
		return models.Cheque{}, apperr.Validacao("número do cheque é obrigatório")
	}
	if !c.Valor.IsPositive() {
		return models.Cheque{}, apperr.Validacao("valor do cheque deve ser positivo")
	}
	cheques, err := r.Cheques.Listar(ctx)
	if err != nil {
		return models.Cheque{}, err
	}
	for _, existente := range cheques {
		if existente.Numero == c.Numero {
			return models.Cheque{}, apperr.Validacao("já existe um cheque com o número %s", c.Numero)
		}
	}
	if c.DataEmissao.IsZero() {
		c.DataEmissao = s.relogio.Agora()
	}
	c.ID = ""
	c.Estado = models.ChequePendente
	c.DataCompensacao = nil
	c.PagamentoID = nil
	c.PagamentoReferencia = ""
	c.FornecedorNome = ""
	return r.Cheques.Adicionar(ctx, c)
}

// Compensar marca o cheque como compensado e gera a transação bancária.
func (s *Service) Compensar(ctx context.Context, id string) (models.Cheque, error) {
	var c models.Cheque
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		agora := s.relogio.Agora()
		var err error
		c, err = r.Cheques.Atualizar(ctx, id, func(c *models.Cheque) error {
			if c.Terminal() {
				return apperr.EstadoTerminal("cheque %s já está %s", c.Numero, c.Estado)
			}
			c.Estado = models.ChequeCompensado
			c.DataCompensacao = &agora
			return nil
		})
		if err != nil {
			return err
		}
		_, err = r.Transacoes.Adicionar(ctx, models.TransacaoBancaria{
			Data:         agora,
			Valor:        c.Valor,
			Descricao:    "Compensação do cheque " + c.Numero,
			Banco:        c.Banco,
			ChequeID:     models.Ptr(c.ID),
			PagamentoID:  c.PagamentoID,
			Reconciliado: c.PagamentoID != nil,
		})
		return err
	})
	if err != nil {
		return models.Cheque{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Cheque %s compensado", c.Numero))
	return c, nil
}

// Cancelar termina o cheque. O vínculo a um pagamento, se existir, mantém-se.
func (s *Service) Cancelar(ctx context.Context, id string) (models.Cheque, error) {
	var c models.Cheque
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		c, err = r.Cheques.Atualizar(ctx, id, func(c *models.Cheque) error {
			if c.Terminal() {
				return apperr.EstadoTerminal("cheque %s já está %s", c.Numero, c.Estado)
			}
			c.Estado = models.ChequeCancelado
			return nil
		})
		return err
	})
	if err != nil {
		return models.Cheque{}, err
	}
	if c.PagamentoID != nil {
		s.notif.Notificar(ctx, notificacao.Aviso, fmt.Sprintf("Cheque %s cancelado continua ligado ao pagamento %s", c.Numero, c.PagamentoReferencia))
	} else {
		s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Cheque %s cancelado", c.Numero))
	}
	return c, nil
}

// proximoNumero devolve o maior número numérico já usado mais um, com seis dígitos.
func proximoNumero(ctx context.Context, r store.Repositorios) (string, error) {
	cheques, err := r.Cheques.Listar(ctx)
	if err != nil {
		return "", err
	}
	var maior int64
	for _, c := range cheques {
		if n, err := strconv.ParseInt(c.Numero, 10, 64); err == nil && n > maior {
			maior = n
		}
	}
	return fmt.Sprintf("%06d", maior+1), nil
}

// Liquidar emite um cheque para um pagamento aprovado e liga os dois lados.
// Só atua em pagamentos por cheque ainda sem vínculo.
func (s *Service) Liquidar(ctx context.Context, r store.Repositorios, p *models.Pagamento) error {
	if p.Metodo != models.MetodoCheque || p.Reconciliado() || !p.Valor.IsPositive() {
		return nil
	}
	numero, err := proximoNumero(ctx, r)
	if err != nil {
		return err
	}
	nome := reconciliacao.NomeFornecedor(ctx, r)
	c, err := s.emitir(ctx, r, models.Cheque{
		Numero:       numero,
		Valor:        p.Valor,
		Beneficiario: nome(p.FornecedorID),
	})
	if err != nil {
		return err
	}
	vinculado, err := reconciliacao.VincularNoLote(ctx, r, p.ID, models.RefItem{Tipo: models.ItemCheque, ID: c.ID}, nome, nil)
	if err != nil {
		return err
	}
	p.FundoManeioID = vinculado.FundoManeioID
	p.TransacaoBancariaID = vinculado.TransacaoBancariaID
	s.log.Info("cheque emitido na aprovação", zap.String("pagamento", p.ID), zap.String("numero", numero))
	return nil
}
