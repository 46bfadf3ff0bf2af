// Package fornecedor gere os fornecedores. Cada fornecedor é dono dos seus
// pagamentos e removê-lo remove-os também.
package fornecedor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/reconciliacao"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

type Service struct {
	ledger *store.Ledger
	notif  notificacao.Notificador
	log    *zap.Logger
}

func NewService(ledger *store.Ledger, notif notificacao.Notificador, log *zap.Logger) *Service {
	return &Service{ledger: ledger, notif: notif, log: log}
}

func normalizar(f *models.Fornecedor) error {
	f.Nome = strings.TrimSpace(f.Nome)
	f.NIF = strings.TrimSpace(f.NIF)
	f.Email = strings.TrimSpace(f.Email)
	f.Telefone = strings.TrimSpace(f.Telefone)
	if f.Nome == "" {
		return apperr.Validacao("nome do fornecedor é obrigatório")
	}
	return nil
}

func (s *Service) Criar(ctx context.Context, f models.Fornecedor) (models.Fornecedor, error) {
	if err := normalizar(&f); err != nil {
		return models.Fornecedor{}, err
	}
	f.Pagamentos = nil
	var criado models.Fornecedor
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		criado, err = r.Fornecedores.Adicionar(ctx, f)
		return err
	})
	if err != nil {
		return models.Fornecedor{}, err
	}
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Fornecedor %s criado", criado.Nome))
	return criado, nil
}

// Listar devolve os fornecedores com os respetivos pagamentos.
func (s *Service) Listar(ctx context.Context) ([]models.Fornecedor, error) {
	r := s.ledger.Consultar()
	fornecedores, err := r.Fornecedores.Listar(ctx)
	if err != nil {
		return nil, err
	}
	pagamentos, err := r.Pagamentos.Listar(ctx)
	if err != nil {
		return nil, err
	}
	por := map[string][]models.Pagamento{}
	for _, p := range pagamentos {
		por[p.FornecedorID] = append(por[p.FornecedorID], p)
	}
	for i := range fornecedores {
		fornecedores[i].Pagamentos = por[fornecedores[i].ID]
		if fornecedores[i].Pagamentos == nil {
			fornecedores[i].Pagamentos = []models.Pagamento{}
		}
	}
	return fornecedores, nil
}

func (s *Service) BuscarPorID(ctx context.Context, id string) (models.Fornecedor, error) {
	r := s.ledger.Consultar()
	f, err := r.Fornecedores.BuscarPorID(ctx, id)
	if err != nil {
		return models.Fornecedor{}, err
	}
	f.Pagamentos, err = store.PagamentosDoFornecedor(ctx, r, id)
	if err != nil {
		return models.Fornecedor{}, err
	}
	return f, nil
}

func (s *Service) Atualizar(ctx context.Context, id string, dados models.Fornecedor) (models.Fornecedor, error) {
	if err := normalizar(&dados); err != nil {
		return models.Fornecedor{}, err
	}
	var f models.Fornecedor
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		f, err = r.Fornecedores.Atualizar(ctx, id, func(f *models.Fornecedor) error {
			f.Nome = dados.Nome
			f.NIF = dados.NIF
			f.Email = dados.Email
			f.Telefone = dados.Telefone
			return nil
		})
		return err
	})
	return f, err
}

// Remover apaga o fornecedor e os seus pagamentos. As referências de volta
// nos instrumentos ligados a esses pagamentos são limpas antes.
func (s *Service) Remover(ctx context.Context, id string) error {
	var (
		f         models.Fornecedor
		removidos int
	)
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		f, err = r.Fornecedores.BuscarPorID(ctx, id)
		if err != nil {
			return err
		}
		pagamentos, err := store.PagamentosDoFornecedor(ctx, r, id)
		if err != nil {
			return err
		}
		for _, p := range pagamentos {
			if err := reconciliacao.LimparInstrumento(ctx, r, p); err != nil {
				return err
			}
			if err := r.Pagamentos.Remover(ctx, p.ID); err != nil {
				return err
			}
		}
		removidos = len(pagamentos)
		return r.Fornecedores.Remover(ctx, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("fornecedor removido", zap.String("fornecedor", id), zap.Int("pagamentos", removidos))
	s.notif.Notificar(ctx, notificacao.Sucesso, fmt.Sprintf("Fornecedor %s removido com %d pagamento(s)", f.Nome, removidos))
	return nil
}
