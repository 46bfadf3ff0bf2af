// Package reconciliacao liga pagamentos aos instrumentos que os liquidaram
// (movimentos do fundo de maneio e cheques) por referências nos dois sentidos.
package reconciliacao

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
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

// Vincular liga um pagamento a um movimento ou cheque, em qualquer ordem.
// O pagamento fica pago com dataPagamento = agora.
func (s *Service) Vincular(ctx context.Context, origem, destino models.RefItem) (models.Pagamento, error) {
	pagamentoID, instrumento, err := separar(origem, destino)
	if err != nil {
		return models.Pagamento{}, err
	}

	var p models.Pagamento
	err = s.ledger.Executar(ctx, func(r store.Repositorios) error {
		agora := s.relogio.Agora()
		var err error
		p, err = VincularNoLote(ctx, r, pagamentoID, instrumento, NomeFornecedor(ctx, r), func(p *models.Pagamento) {
			p.MarcarPago(agora)
		})
		return err
	})
	if err != nil {
		return models.Pagamento{}, err
	}

	s.log.Info("pagamento reconciliado",
		zap.String("pagamento", p.ID),
		zap.String("instrumento", instrumento.ID),
		zap.String("tipo", string(instrumento.Tipo)))
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Pagamento %s reconciliado", p.Referencia))
	return p, nil
}

func separar(a, b models.RefItem) (string, models.RefItem, error) {
	for _, ref := range []models.RefItem{a, b} {
		if !ref.Tipo.Valido() {
			return "", models.RefItem{}, apperr.Validacao("tipo de item inválido %q", ref.Tipo)
		}
		if ref.ID == "" {
			return "", models.RefItem{}, apperr.Validacao("id do item %s é obrigatório", ref.Tipo)
		}
	}
	switch {
	case a.Tipo == models.ItemPagamento && b.Tipo != models.ItemPagamento:
		return a.ID, b, nil
	case b.Tipo == models.ItemPagamento && a.Tipo != models.ItemPagamento:
		return b.ID, a, nil
	}
	return "", models.RefItem{}, apperr.Validacao("só é possível ligar um pagamento a um movimento ou cheque")
}

// Desvincular limpa a referência do item e a do seu par.
// Um item sem vínculo não é erro.
func (s *Service) Desvincular(ctx context.Context, item models.RefItem) error {
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		switch item.Tipo {
		case models.ItemPagamento:
			p, err := r.Pagamentos.BuscarPorID(ctx, item.ID)
			if err != nil {
				return err
			}
			if err := LimparInstrumento(ctx, r, p); err != nil {
				return err
			}
			_, err = r.Pagamentos.Atualizar(ctx, p.ID, func(p *models.Pagamento) error {
				p.LimparVinculo()
				return nil
			})
			return err
		case models.ItemMovimento:
			fundo, i, err := store.LocalizarMovimento(ctx, r, item.ID)
			if err != nil {
				return err
			}
			if pid := fundo.Movimentos[i].PagamentoID; pid != nil {
				if err := limparPagamento(ctx, r, *pid, item.Tipo, item.ID); err != nil {
					return err
				}
				return limparMovimento(ctx, r, item.ID, *pid)
			}
			return nil
		case models.ItemCheque:
			c, err := r.Cheques.BuscarPorID(ctx, item.ID)
			if err != nil {
				return err
			}
			if c.PagamentoID != nil {
				if err := limparPagamento(ctx, r, *c.PagamentoID, item.Tipo, item.ID); err != nil {
					return err
				}
				return limparCheque(ctx, r, item.ID, *c.PagamentoID)
			}
			return nil
		}
		return apperr.Validacao("tipo de item inválido %q", item.Tipo)
	})
	if err != nil {
		return err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, "Vínculo de reconciliação removido")
	return nil
}

// Itens monta a vista unificada de pagamentos (exceto transferências),
// movimentos do fundo de maneio e cheques.
func (s *Service) Itens(ctx context.Context) ([]models.ItemReconciliacao, error) {
	r := s.ledger.Consultar()
	fornecedores, err := r.Fornecedores.Listar(ctx)
	if err != nil {
		return nil, err
	}
	nomes := make(map[string]string, len(fornecedores))
	for _, f := range fornecedores {
		nomes[f.ID] = f.Nome
	}

	itens := []models.ItemReconciliacao{}

	pagamentos, err := r.Pagamentos.Listar(ctx)
	if err != nil {
		return nil, err
	}
	for _, p := range pagamentos {
		if p.Metodo == models.MetodoTransferencia {
			continue
		}
		item := models.ItemReconciliacao{
			ID:           p.ID,
			Tipo:         models.ItemPagamento,
			Referencia:   p.Referencia,
			Valor:        p.Valor,
			Data:         p.DataVencimento,
			Fornecedor:   nomes[p.FornecedorID],
			Estado:       string(p.Estado),
			Metodo:       p.Metodo,
			Reconciliado: p.Reconciliado(),
		}
		if p.DataPagamento != nil {
			item.Data = *p.DataPagamento
		}
		switch {
		case p.FundoManeioID != nil:
			item.ItemRelacionadoID = models.Ptr(*p.FundoManeioID)
			item.ItemRelacionadoTipo = models.ItemMovimento
		case p.TransacaoBancariaID != nil:
			item.ItemRelacionadoID = models.Ptr(*p.TransacaoBancariaID)
			item.ItemRelacionadoTipo = models.ItemCheque
		}
		itens = append(itens, item)
	}

	fundos, err := r.Fundos.Listar(ctx)
	if err != nil {
		return nil, err
	}
	for _, f := range fundos {
		for _, m := range f.Movimentos {
			item := models.ItemReconciliacao{
				ID:           m.ID,
				Tipo:         models.ItemMovimento,
				Referencia:   m.Descricao,
				Valor:        m.Valor,
				Data:         m.Data,
				Fornecedor:   m.FornecedorNome,
				Estado:       string(m.Tipo),
				Reconciliado: m.PagamentoID != nil,
			}
			if m.PagamentoID != nil {
				item.ItemRelacionadoID = models.Ptr(*m.PagamentoID)
				item.ItemRelacionadoTipo = models.ItemPagamento
			}
			itens = append(itens, item)
		}
	}

	cheques, err := r.Cheques.Listar(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cheques {
		item := models.ItemReconciliacao{
			ID:           c.ID,
			Tipo:         models.ItemCheque,
			Referencia:   c.Numero,
			Valor:        c.Valor,
			Data:         c.DataEmissao,
			Fornecedor:   c.FornecedorNome,
			Estado:       string(c.Estado),
			Reconciliado: c.PagamentoID != nil,
		}
		if item.Fornecedor == "" {
			item.Fornecedor = c.Beneficiario
		}
		if c.PagamentoID != nil {
			item.ItemRelacionadoID = models.Ptr(*c.PagamentoID)
			item.ItemRelacionadoTipo = models.ItemPagamento
		}
		itens = append(itens, item)
	}
	return itens, nil
}

// Candidatos lista os itens que podem ser ligados a ref: os compatíveis ainda
// por reconciliar, sem cheques cancelados, mais o que já está ligado a ref.
func (s *Service) Candidatos(ctx context.Context, ref models.RefItem) ([]models.ItemReconciliacao, error) {
	itens, err := s.Itens(ctx)
	if err != nil {
		return nil, err
	}
	var alvo *models.ItemReconciliacao
	for i := range itens {
		if itens[i].Ref() == ref {
			alvo = &itens[i]
			break
		}
	}
	if alvo == nil {
		return nil, apperr.NaoEncontrado(string(ref.Tipo), ref.ID)
	}

	out := []models.ItemReconciliacao{}
	for _, it := range itens {
		if !compativel(*alvo, it) {
			continue
		}
		ligadoAoAlvo := it.ItemRelacionadoID != nil && *it.ItemRelacionadoID == alvo.ID && it.ItemRelacionadoTipo == alvo.Tipo
		cancelado := it.Tipo == models.ItemCheque && it.Estado == string(models.ChequeCancelado)
		if (!it.Reconciliado && !cancelado) || ligadoAoAlvo {
			out = append(out, it)
		}
	}
	return out, nil
}

func compativel(alvo, it models.ItemReconciliacao) bool {
	switch alvo.Tipo {
	case models.ItemPagamento:
		return (alvo.Metodo == models.MetodoFundoManeio && it.Tipo == models.ItemMovimento) ||
			(alvo.Metodo == models.MetodoCheque && it.Tipo == models.ItemCheque)
	case models.ItemMovimento:
		return it.Tipo == models.ItemPagamento && it.Metodo == models.MetodoFundoManeio
	case models.ItemCheque:
		return it.Tipo == models.ItemPagamento && it.Metodo == models.MetodoCheque
	}
	return false
}
