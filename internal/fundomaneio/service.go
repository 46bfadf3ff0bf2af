// Package fundomaneio mantém o fundo de maneio mensal: saldo inicial mais
// movimentos assinados, com o saldo final sempre recalculado por inteiro.
package fundomaneio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

func (s *Service) Listar(ctx context.Context) ([]models.FundoManeio, error) {
	return s.ledger.Consultar().Fundos.Listar(ctx)
}

func (s *Service) BuscarPorMes(ctx context.Context, mes models.Mes) (models.FundoManeio, error) {
	return store.BuscarFundoPorMes(ctx, s.ledger.Consultar(), mes)
}

// SaldoAtual devolve o saldo derivado do mês, ou zero se não houver fundo.
func (s *Service) SaldoAtual(ctx context.Context, mes models.Mes) (decimal.Decimal, error) {
	f, err := s.BuscarPorMes(ctx, mes)
	if errors.Is(err, apperr.ErrNaoEncontrado) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return f.CalcularSaldo(), nil
}

// Abrir cria o fundo do mês sem movimentos.
func (s *Service) Abrir(ctx context.Context, mes models.Mes, saldoInicial decimal.Decimal) (models.FundoManeio, error) {
	if saldoInicial.IsNegative() {
		return models.FundoManeio{}, apperr.Validacao("saldo inicial não pode ser negativo")
	}
	var fundo models.FundoManeio
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		fundo, err = criarFundo(ctx, r, mes, saldoInicial)
		return err
	})
	return fundo, err
}

func criarFundo(ctx context.Context, r store.Repositorios, mes models.Mes, saldoInicial decimal.Decimal) (models.FundoManeio, error) {
	_, err := store.BuscarFundoPorMes(ctx, r, mes)
	if err == nil {
		return models.FundoManeio{}, fmt.Errorf("%w: %s", apperr.ErrFundoDuplicado, mes)
	}
	if !errors.Is(err, apperr.ErrNaoEncontrado) {
		return models.FundoManeio{}, err
	}
	f := models.FundoManeio{Mes: mes, SaldoInicial: saldoInicial, Movimentos: []models.Movimento{}}
	f.Recalcular()
	return r.Fundos.Adicionar(ctx, f)
}

// AdicionarMovimento lança um movimento no fundo do mês, criando o fundo com
// saldoInicial se ainda não existir. Uma saída acima do saldo é recusada.
func (s *Service) AdicionarMovimento(ctx context.Context, mes models.Mes, saldoInicial decimal.Decimal, mov models.Movimento) (models.FundoManeio, error) {
	var fundo models.FundoManeio
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		fundo, err = s.adicionar(ctx, r, mes, saldoInicial, mov)
		return err
	})
	if err != nil {
		if errors.Is(err, apperr.ErrSaldoInsuficiente) {
			s.notif.Notificar(ctx, notificacao.Erro, fmt.Sprintf("Saldo insuficiente no fundo de maneio de %s", mes))
		}
		return models.FundoManeio{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, "Movimento registado no fundo de maneio")
	return fundo, nil
}

func (s *Service) adicionar(ctx context.Context, r store.Repositorios, mes models.Mes, saldoInicial decimal.Decimal, mov models.Movimento) (models.FundoManeio, error) {
	if _, err := models.ParseMes(string(mes)); err != nil {
		return models.FundoManeio{}, apperr.Validacao("%v", err)
	}
	if mov.Tipo != models.MovimentoEntrada && mov.Tipo != models.MovimentoSaida {
		return models.FundoManeio{}, apperr.Validacao("tipo de movimento inválido %q", mov.Tipo)
	}
	if !mov.Valor.IsPositive() {
		return models.FundoManeio{}, apperr.Validacao("valor do movimento deve ser positivo")
	}
	if saldoInicial.IsNegative() {
		return models.FundoManeio{}, apperr.Validacao("saldo inicial não pode ser negativo")
	}
	mov.Descricao = strings.TrimSpace(mov.Descricao)
	if mov.ID == "" {
		mov.ID = uuid.NewString()
	}
	if mov.Data.IsZero() {
		mov.Data = s.relogio.Agora()
	}

	fundo, err := store.BuscarFundoPorMes(ctx, r, mes)
	if errors.Is(err, apperr.ErrNaoEncontrado) {
		fundo, err = criarFundo(ctx, r, mes, saldoInicial)
	}
	if err != nil {
		return models.FundoManeio{}, err
	}
	if _, _, err := store.LocalizarMovimento(ctx, r, mov.ID); err == nil {
		return models.FundoManeio{}, apperr.Validacao("movimento %q já existe", mov.ID)
	}

	return r.Fundos.Atualizar(ctx, fundo.ID, func(f *models.FundoManeio) error {
		if mov.Tipo == models.MovimentoSaida {
			if saldo := f.CalcularSaldo(); saldo.LessThan(mov.Valor) {
				return fmt.Errorf("%w: saldo %s, saída %s", apperr.ErrSaldoInsuficiente, saldo.StringFixed(2), mov.Valor.StringFixed(2))
			}
		}
		f.Movimentos = append(f.Movimentos, mov)
		f.Recalcular()
		return nil
	})
}

// RemoverMovimento retira o movimento e recalcula o saldo. Se estava ligado a
// um pagamento, a referência do pagamento é limpa na mesma unidade.
func (s *Service) RemoverMovimento(ctx context.Context, mes models.Mes, movimentoID string) (models.FundoManeio, error) {
	var fundo models.FundoManeio
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		atual, err := store.BuscarFundoPorMes(ctx, r, mes)
		if err != nil {
			return err
		}
		i := atual.IndiceMovimento(movimentoID)
		if i < 0 {
			return apperr.NaoEncontrado("movimento", movimentoID)
		}
		if pid := atual.Movimentos[i].PagamentoID; pid != nil {
			if err := desligarPagamento(ctx, r, *pid, movimentoID); err != nil {
				return err
			}
		}
		fundo, err = r.Fundos.Atualizar(ctx, atual.ID, func(f *models.FundoManeio) error {
			f.Movimentos = append(f.Movimentos[:i], f.Movimentos[i+1:]...)
			if !f.SaldoCorrenteValido() {
				return fmt.Errorf("%w: remover o movimento deixaria o saldo negativo", apperr.ErrSaldoInsuficiente)
			}
			f.Recalcular()
			return nil
		})
		return err
	})
	if err != nil {
		return models.FundoManeio{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, "Movimento removido do fundo de maneio")
	return fundo, nil
}

func desligarPagamento(ctx context.Context, r store.Repositorios, pagamentoID, movimentoID string) error {
	_, err := r.Pagamentos.Atualizar(ctx, pagamentoID, func(p *models.Pagamento) error {
		if p.FundoManeioID != nil && *p.FundoManeioID == movimentoID {
			p.FundoManeioID = nil
		}
		return nil
	})
	if errors.Is(err, apperr.ErrNaoEncontrado) {
		return nil
	}
	return err
}

// TransportarSaldo abre o mês seguinte com o saldo final do mês atual.
func (s *Service) TransportarSaldo(ctx context.Context, mesAtual models.Mes) (models.FundoManeio, error) {
	var novo models.FundoManeio
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		atual, err := store.BuscarFundoPorMes(ctx, r, mesAtual)
		if err != nil {
			return err
		}
		novo, err = criarFundo(ctx, r, mesAtual.Seguinte(), atual.CalcularSaldo())
		return err
	})
	if err != nil {
		return models.FundoManeio{}, err
	}
	s.log.Info("saldo transportado",
		zap.String("de", string(mesAtual)),
		zap.String("para", string(novo.Mes)),
		zap.String("saldo", novo.SaldoInicial.StringFixed(2)))
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Saldo transportado para %s", novo.Mes))
	return novo, nil
}

// Liquidar regista a saída de um pagamento aprovado no fundo do mês corrente
// e liga os dois lados. Só atua em pagamentos por fundo de maneio ainda sem vínculo.
func (s *Service) Liquidar(ctx context.Context, r store.Repositorios, p *models.Pagamento) error {
	if p.Metodo != models.MetodoFundoManeio || p.Reconciliado() {
		return nil
	}
	agora := s.relogio.Agora()
	mov := models.Movimento{
		ID:        uuid.NewString(),
		Data:      agora,
		Tipo:      models.MovimentoSaida,
		Valor:     p.Valor,
		Descricao: "Pagamento " + p.Referencia,
	}
	if !mov.Valor.IsPositive() {
		return nil
	}
	if _, err := s.adicionar(ctx, r, models.MesDe(agora), decimal.Zero, mov); err != nil {
		return err
	}
	vinculado, err := reconciliacao.VincularNoLote(ctx, r, p.ID, models.RefItem{Tipo: models.ItemMovimento, ID: mov.ID}, reconciliacao.NomeFornecedor(ctx, r), nil)
	if err != nil {
		return err
	}
	p.FundoManeioID = vinculado.FundoManeioID
	p.TransacaoBancariaID = vinculado.TransacaoBancariaID
	return nil
}
