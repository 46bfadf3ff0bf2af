package reconciliacao

import (
	"context"
	"errors"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

// LimparInstrumento apaga a referência de volta no instrumento para onde o
// pagamento aponta. Instrumentos já inexistentes são ignorados.
// Não altera o próprio pagamento.
func LimparInstrumento(ctx context.Context, r store.Repositorios, p models.Pagamento) error {
	if p.FundoManeioID != nil {
		if err := limparMovimento(ctx, r, *p.FundoManeioID, p.ID); err != nil {
			return err
		}
	}
	if p.TransacaoBancariaID != nil {
		if err := limparCheque(ctx, r, *p.TransacaoBancariaID, p.ID); err != nil {
			return err
		}
	}
	return nil
}

func limparMovimento(ctx context.Context, r store.Repositorios, movimentoID, pagamentoID string) error {
	fundo, i, err := store.LocalizarMovimento(ctx, r, movimentoID)
	if errors.Is(err, apperr.ErrNaoEncontrado) {
		return nil
	}
	if err != nil {
		return err
	}
	m := fundo.Movimentos[i]
	if m.PagamentoID == nil || *m.PagamentoID != pagamentoID {
		return nil
	}
	_, err = r.Fundos.Atualizar(ctx, fundo.ID, func(f *models.FundoManeio) error {
		f.Movimentos[i].PagamentoID = nil
		f.Movimentos[i].PagamentoReferencia = ""
		f.Movimentos[i].FornecedorNome = ""
		return nil
	})
	return err
}

func limparCheque(ctx context.Context, r store.Repositorios, chequeID, pagamentoID string) error {
	c, err := r.Cheques.BuscarPorID(ctx, chequeID)
	if errors.Is(err, apperr.ErrNaoEncontrado) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.PagamentoID == nil || *c.PagamentoID != pagamentoID {
		return nil
	}
	if _, err := r.Cheques.Atualizar(ctx, chequeID, func(c *models.Cheque) error {
		c.PagamentoID = nil
		c.PagamentoReferencia = ""
		c.FornecedorNome = ""
		return nil
	}); err != nil {
		return err
	}
	return marcarTransacoes(ctx, r, chequeID, nil)
}

// marcarTransacoes mantém os registos bancários do cheque alinhados com o vínculo.
func marcarTransacoes(ctx context.Context, r store.Repositorios, chequeID string, pagamentoID *string) error {
	transacoes, err := r.Transacoes.Listar(ctx)
	if err != nil {
		return err
	}
	for _, t := range transacoes {
		if t.ChequeID == nil || *t.ChequeID != chequeID {
			continue
		}
		if _, err := r.Transacoes.Atualizar(ctx, t.ID, func(t *models.TransacaoBancaria) error {
			t.PagamentoID = pagamentoID
			t.Reconciliado = pagamentoID != nil
			return nil
		}); err != nil {
			return err
		}
	}
	return nil
}

// limparPagamento apaga a referência do pagamento se ainda apontar para o instrumento.
func limparPagamento(ctx context.Context, r store.Repositorios, pagamentoID string, tipo models.TipoItem, instrumentoID string) error {
	p, err := r.Pagamentos.BuscarPorID(ctx, pagamentoID)
	if errors.Is(err, apperr.ErrNaoEncontrado) {
		return nil
	}
	if err != nil {
		return err
	}
	if !aponta(p, tipo, instrumentoID) {
		return nil
	}
	_, err = r.Pagamentos.Atualizar(ctx, pagamentoID, func(p *models.Pagamento) error {
		p.LimparVinculo()
		return nil
	})
	return err
}

func aponta(p models.Pagamento, tipo models.TipoItem, instrumentoID string) bool {
	switch tipo {
	case models.ItemMovimento:
		return p.FundoManeioID != nil && *p.FundoManeioID == instrumentoID
	case models.ItemCheque:
		return p.TransacaoBancariaID != nil && *p.TransacaoBancariaID == instrumentoID
	}
	return false
}

// VincularNoLote liga o pagamento ao instrumento dentro de uma unidade já aberta.
// Vínculos anteriores de ambos os lados são desfeitos antes.
func VincularNoLote(ctx context.Context, r store.Repositorios, pagamentoID string, instrumento models.RefItem, nomeFornecedor func(string) string, marcar func(*models.Pagamento)) (models.Pagamento, error) {
	p, err := r.Pagamentos.BuscarPorID(ctx, pagamentoID)
	if err != nil {
		return models.Pagamento{}, err
	}

	var anterior *string
	switch instrumento.Tipo {
	case models.ItemMovimento:
		if p.Metodo != models.MetodoFundoManeio {
			return models.Pagamento{}, apperr.Validacao("pagamento %q com método %q não pode ser ligado a um movimento do fundo de maneio", p.Referencia, p.Metodo)
		}
		fundo, i, err := store.LocalizarMovimento(ctx, r, instrumento.ID)
		if err != nil {
			return models.Pagamento{}, err
		}
		anterior = fundo.Movimentos[i].PagamentoID
	case models.ItemCheque:
		if p.Metodo != models.MetodoCheque {
			return models.Pagamento{}, apperr.Validacao("pagamento %q com método %q não pode ser ligado a um cheque", p.Referencia, p.Metodo)
		}
		c, err := r.Cheques.BuscarPorID(ctx, instrumento.ID)
		if err != nil {
			return models.Pagamento{}, err
		}
		if c.Estado == models.ChequeCancelado {
			return models.Pagamento{}, apperr.EstadoTerminal("cheque %s está cancelado", c.Numero)
		}
		anterior = c.PagamentoID
	default:
		return models.Pagamento{}, apperr.Validacao("tipo de instrumento inválido %q", instrumento.Tipo)
	}

	if !aponta(p, instrumento.Tipo, instrumento.ID) {
		if err := LimparInstrumento(ctx, r, p); err != nil {
			return models.Pagamento{}, err
		}
	}
	if anterior != nil && *anterior != p.ID {
		if err := limparPagamento(ctx, r, *anterior, instrumento.Tipo, instrumento.ID); err != nil {
			return models.Pagamento{}, err
		}
	}

	fornecedor := nomeFornecedor(p.FornecedorID)
	switch instrumento.Tipo {
	case models.ItemMovimento:
		fundo, i, err := store.LocalizarMovimento(ctx, r, instrumento.ID)
		if err != nil {
			return models.Pagamento{}, err
		}
		if _, err := r.Fundos.Atualizar(ctx, fundo.ID, func(f *models.FundoManeio) error {
			f.Movimentos[i].PagamentoID = models.Ptr(p.ID)
			f.Movimentos[i].PagamentoReferencia = p.Referencia
			f.Movimentos[i].FornecedorNome = fornecedor
			return nil
		}); err != nil {
			return models.Pagamento{}, err
		}
	case models.ItemCheque:
		if _, err := r.Cheques.Atualizar(ctx, instrumento.ID, func(c *models.Cheque) error {
			c.PagamentoID = models.Ptr(p.ID)
			c.PagamentoReferencia = p.Referencia
			c.FornecedorNome = fornecedor
			return nil
		}); err != nil {
			return models.Pagamento{}, err
		}
		if err := marcarTransacoes(ctx, r, instrumento.ID, models.Ptr(p.ID)); err != nil {
			return models.Pagamento{}, err
		}
	}

	return r.Pagamentos.Atualizar(ctx, p.ID, func(p *models.Pagamento) error {
		p.LimparVinculo()
		if instrumento.Tipo == models.ItemMovimento {
			p.FundoManeioID = models.Ptr(instrumento.ID)
		} else {
			p.TransacaoBancariaID = models.Ptr(instrumento.ID)
		}
		if marcar != nil {
			marcar(p)
		}
		return nil
	})
}

// NomeFornecedor devolve o nome do fornecedor ou vazio se não existir.
func NomeFornecedor(ctx context.Context, r store.Repositorios) func(string) string {
	return func(id string) string {
		f, err := r.Fornecedores.BuscarPorID(ctx, id)
		if err != nil {
			return ""
		}
		return f.Nome
	}
}
