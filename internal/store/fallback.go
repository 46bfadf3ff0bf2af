package store

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

// FallbackBackend usa o remoto enquanto ele responde. À primeira falha de
// disponibilidade passa para o local de vez, regista um aviso e repete a
// operação localmente. Os dois conjuntos de dados não são sincronizados.
type FallbackBackend struct {
	remoto    Backend
	local     Backend
	log       *zap.Logger
	degradado atomic.Bool
}

func NewFallbackBackend(remoto, local Backend, log *zap.Logger) *FallbackBackend {
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackBackend{remoto: remoto, local: local, log: log}
}

func (b *FallbackBackend) Nome() string {
	if b.degradado.Load() {
		return b.local.Nome()
	}
	return b.remoto.Nome()
}

// Degradado indica se o backend já passou para o armazenamento local.
func (b *FallbackBackend) Degradado() bool { return b.degradado.Load() }

func (b *FallbackBackend) degradar(op string, err error) {
	if b.degradado.CompareAndSwap(false, true) {
		b.log.Warn("armazenamento remoto indisponível, a usar armazenamento local",
			zap.String("operacao", op),
			zap.String("remoto", b.remoto.Nome()),
			zap.String("local", b.local.Nome()),
			zap.Error(err))
	}
}

func (b *FallbackBackend) Transacao(ctx context.Context, fn func(Repositorios) error) error {
	if !b.degradado.Load() {
		err := b.remoto.Transacao(ctx, fn)
		if !errors.Is(err, apperr.ErrStoreIndisponivel) {
			return err
		}
		b.degradar("transação", err)
	}
	return b.local.Transacao(ctx, fn)
}

func (b *FallbackBackend) Repositorios() Repositorios {
	r, l := b.remoto.Repositorios(), b.local.Repositorios()
	return Repositorios{
		Fornecedores: &colecaoFallback[models.Fornecedor]{b: b, remoto: r.Fornecedores, local: l.Fornecedores},
		Pagamentos:   &colecaoFallback[models.Pagamento]{b: b, remoto: r.Pagamentos, local: l.Pagamentos},
		Fundos:       &colecaoFallback[models.FundoManeio]{b: b, remoto: r.Fundos, local: l.Fundos},
		Cheques:      &colecaoFallback[models.Cheque]{b: b, remoto: r.Cheques, local: l.Cheques},
		Transacoes:   &colecaoFallback[models.TransacaoBancaria]{b: b, remoto: r.Transacoes, local: l.Transacoes},
		Usuarios:     &colecaoFallback[models.Usuario]{b: b, remoto: r.Usuarios, local: l.Usuarios},
	}
}

type colecaoFallback[T Entidade[T]] struct {
	b      *FallbackBackend
	remoto Colecao[T]
	local  Colecao[T]
}

func tentar[R any](b *FallbackBackend, op string, remoto, local func() (R, error)) (R, error) {
	if !b.degradado.Load() {
		v, err := remoto()
		if !errors.Is(err, apperr.ErrStoreIndisponivel) {
			return v, err
		}
		b.degradar(op, err)
	}
	return local()
}

func (c *colecaoFallback[T]) Listar(ctx context.Context) ([]T, error) {
	return tentar(c.b, "listar",
		func() ([]T, error) { return c.remoto.Listar(ctx) },
		func() ([]T, error) { return c.local.Listar(ctx) })
}

func (c *colecaoFallback[T]) BuscarPorID(ctx context.Context, id string) (T, error) {
	return tentar(c.b, "buscar",
		func() (T, error) { return c.remoto.BuscarPorID(ctx, id) },
		func() (T, error) { return c.local.BuscarPorID(ctx, id) })
}

func (c *colecaoFallback[T]) Adicionar(ctx context.Context, item T) (T, error) {
	return tentar(c.b, "adicionar",
		func() (T, error) { return c.remoto.Adicionar(ctx, item.Clone()) },
		func() (T, error) { return c.local.Adicionar(ctx, item.Clone()) })
}

func (c *colecaoFallback[T]) Atualizar(ctx context.Context, id string, patch func(*T) error) (T, error) {
	return tentar(c.b, "atualizar",
		func() (T, error) { return c.remoto.Atualizar(ctx, id, patch) },
		func() (T, error) { return c.local.Atualizar(ctx, id, patch) })
}

func (c *colecaoFallback[T]) Remover(ctx context.Context, id string) error {
	_, err := tentar(c.b, "remover",
		func() (struct{}, error) { return struct{}{}, c.remoto.Remover(ctx, id) },
		func() (struct{}, error) { return struct{}{}, c.local.Remover(ctx, id) })
	return err
}
