// Package store é o livro-razão da tesouraria: coleções genéricas com
// get-all/get-by-id/add/update/delete sobre um backend trocável (Postgres via
// GORM ou memória local), um adaptador de fallback e a unidade de trabalho
// serializada usada por todos os serviços que escrevem.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

// Entidade é qualquer registo guardado numa coleção.
type Entidade[T any] interface {
	Chave() string
	Clone() T
}

// Colecao é o contrato de acesso a dados de uma entidade.
// Adicionar com um id já existente devolve o registo existente sem alterações.
type Colecao[T Entidade[T]] interface {
	Listar(ctx context.Context) ([]T, error)
	BuscarPorID(ctx context.Context, id string) (T, error)
	Adicionar(ctx context.Context, item T) (T, error)
	Atualizar(ctx context.Context, id string, patch func(*T) error) (T, error)
	Remover(ctx context.Context, id string) error
}

// Repositorios agrupa as coleções do livro-razão.
type Repositorios struct {
	Fornecedores Colecao[models.Fornecedor]
	Pagamentos   Colecao[models.Pagamento]
	Fundos       Colecao[models.FundoManeio]
	Cheques      Colecao[models.Cheque]
	Transacoes   Colecao[models.TransacaoBancaria]
	Usuarios     Colecao[models.Usuario]
}

// Backend é um meio de persistência. Transacao aplica fn por inteiro ou nada.
type Backend interface {
	Nome() string
	Repositorios() Repositorios
	Transacao(ctx context.Context, fn func(Repositorios) error) error
}

// Ledger serializa as unidades ler-calcular-escrever sobre um Backend.
// Executar não é reentrante: fn nunca deve chamar Executar de novo.
type Ledger struct {
	mu      sync.Mutex
	backend Backend
}

func NewLedger(b Backend) *Ledger {
	return &Ledger{backend: b}
}

// Executar corre fn com exclusão mútua e dentro de uma transação do backend.
func (l *Ledger) Executar(ctx context.Context, fn func(Repositorios) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.backend.Transacao(ctx, fn)
}

// Consultar devolve as coleções para leitura fora de uma unidade de trabalho.
func (l *Ledger) Consultar() Repositorios {
	return l.backend.Repositorios()
}

func (l *Ledger) Backend() Backend { return l.backend }

type comID interface{ DefinirID(string) }

func atribuirID[T any](item *T) {
	if c, ok := any(item).(comID); ok {
		c.DefinirID(uuid.NewString())
	}
}
