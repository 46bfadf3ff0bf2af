package store

import (
	"context"
	"sync"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

type tabela[T Entidade[T]] struct {
	itens map[string]T
	ordem []string
}

func novaTabela[T Entidade[T]]() *tabela[T] {
	return &tabela[T]{itens: map[string]T{}}
}

func (t *tabela[T]) copiar() *tabela[T] {
	c := &tabela[T]{itens: make(map[string]T, len(t.itens)), ordem: append([]string(nil), t.ordem...)}
	for id, item := range t.itens {
		c.itens[id] = item.Clone()
	}
	return c
}

type dadosMemoria struct {
	fornecedores *tabela[models.Fornecedor]
	pagamentos   *tabela[models.Pagamento]
	fundos       *tabela[models.FundoManeio]
	cheques      *tabela[models.Cheque]
	transacoes   *tabela[models.TransacaoBancaria]
	usuarios     *tabela[models.Usuario]
}

func novosDados() *dadosMemoria {
	return &dadosMemoria{
		fornecedores: novaTabela[models.Fornecedor](),
		pagamentos:   novaTabela[models.Pagamento](),
		fundos:       novaTabela[models.FundoManeio](),
		cheques:      novaTabela[models.Cheque](),
		transacoes:   novaTabela[models.TransacaoBancaria](),
		usuarios:     novaTabela[models.Usuario](),
	}
}

func (d *dadosMemoria) copiar() *dadosMemoria {
	return &dadosMemoria{
		fornecedores: d.fornecedores.copiar(),
		pagamentos:   d.pagamentos.copiar(),
		fundos:       d.fundos.copiar(),
		cheques:      d.cheques.copiar(),
		transacoes:   d.transacoes.copiar(),
		usuarios:     d.usuarios.copiar(),
	}
}

// MemoriaBackend guarda o livro-razão no processo. É o armazenamento local
// usado quando a base de dados remota não está disponível.
type MemoriaBackend struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	dados *dadosMemoria
}

func NewMemoriaBackend() *MemoriaBackend {
	return &MemoriaBackend{dados: novosDados()}
}

func (b *MemoriaBackend) Nome() string { return "memoria" }

func (b *MemoriaBackend) Repositorios() Repositorios {
	return repositoriosMemoria(&b.mu, func() *dadosMemoria { return b.dados })
}

// Transacao trabalha sobre uma cópia e só a publica se fn terminar sem erro.
func (b *MemoriaBackend) Transacao(ctx context.Context, fn func(Repositorios) error) error {
	b.txMu.Lock()
	defer b.txMu.Unlock()

	b.mu.RLock()
	copia := b.dados.copiar()
	b.mu.RUnlock()

	var txMu sync.RWMutex
	if err := fn(repositoriosMemoria(&txMu, func() *dadosMemoria { return copia })); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	b.dados = copia
	b.mu.Unlock()
	return nil
}

func repositoriosMemoria(mu *sync.RWMutex, d func() *dadosMemoria) Repositorios {
	return Repositorios{
		Fornecedores: &colecaoMemoria[models.Fornecedor]{entidade: "fornecedor", mu: mu, tabela: func() *tabela[models.Fornecedor] { return d().fornecedores }},
		Pagamentos:   &colecaoMemoria[models.Pagamento]{entidade: "pagamento", mu: mu, tabela: func() *tabela[models.Pagamento] { return d().pagamentos }},
		Fundos:       &colecaoMemoria[models.FundoManeio]{entidade: "fundo de maneio", mu: mu, tabela: func() *tabela[models.FundoManeio] { return d().fundos }},
		Cheques:      &colecaoMemoria[models.Cheque]{entidade: "cheque", mu: mu, tabela: func() *tabela[models.Cheque] { return d().cheques }},
		Transacoes:   &colecaoMemoria[models.TransacaoBancaria]{entidade: "transação bancária", mu: mu, tabela: func() *tabela[models.TransacaoBancaria] { return d().transacoes }},
		Usuarios:     &colecaoMemoria[models.Usuario]{entidade: "usuário", mu: mu, tabela: func() *tabela[models.Usuario] { return d().usuarios }},
	}
}

type colecaoMemoria[T Entidade[T]] struct {
	entidade string
	mu       *sync.RWMutex
	tabela   func() *tabela[T]
}

func (c *colecaoMemoria[T]) Listar(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.tabela()
	out := make([]T, 0, len(t.ordem))
	for _, id := range t.ordem {
		out = append(out, t.itens[id].Clone())
	}
	return out, nil
}

func (c *colecaoMemoria[T]) BuscarPorID(_ context.Context, id string) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.tabela().itens[id]
	if !ok {
		var zero T
		return zero, apperr.NaoEncontrado(c.entidade, id)
	}
	return item.Clone(), nil
}

func (c *colecaoMemoria[T]) Adicionar(_ context.Context, item T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if item.Chave() == "" {
		atribuirID(&item)
	}
	t := c.tabela()
	id := item.Chave()
	if existente, ok := t.itens[id]; ok {
		return existente.Clone(), nil
	}
	t.itens[id] = item.Clone()
	t.ordem = append(t.ordem, id)
	return item.Clone(), nil
}

func (c *colecaoMemoria[T]) Atualizar(_ context.Context, id string, patch func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	t := c.tabela()
	atual, ok := t.itens[id]
	if !ok {
		return zero, apperr.NaoEncontrado(c.entidade, id)
	}
	novo := atual.Clone()
	if err := patch(&novo); err != nil {
		return zero, err
	}
	if novo.Chave() != id {
		return zero, apperr.Validacao("o id de %s não pode ser alterado", c.entidade)
	}
	t.itens[id] = novo.Clone()
	return novo, nil
}

func (c *colecaoMemoria[T]) Remover(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.tabela()
	if _, ok := t.itens[id]; !ok {
		return apperr.NaoEncontrado(c.entidade, id)
	}
	delete(t.itens, id)
	for i, v := range t.ordem {
		if v == id {
			t.ordem = append(t.ordem[:i], t.ordem[i+1:]...)
			break
		}
	}
	return nil
}
