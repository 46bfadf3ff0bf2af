package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

func TestFallbackUsaRemotoQuandoDisponivel(t *testing.T) {
	ctx := context.Background()
	remoto, local := NewMemoriaBackend(), NewMemoriaBackend()
	b := NewFallbackBackend(remoto, local, zap.NewNop())

	_, err := b.Repositorios().Fornecedores.Adicionar(ctx, fornecedor("F1", "Remoto"))
	require.NoError(t, err)

	_, err = remoto.Repositorios().Fornecedores.BuscarPorID(ctx, "F1")
	assert.NoError(t, err)
	_, err = local.Repositorios().Fornecedores.BuscarPorID(ctx, "F1")
	assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)
	assert.False(t, b.Degradado())
}

func TestFallbackNaoDegradaEmErroDeDados(t *testing.T) {
	b := NewFallbackBackend(NewMemoriaBackend(), NewMemoriaBackend(), zap.NewNop())
	_, err := b.Repositorios().Fornecedores.BuscarPorID(context.Background(), "nao-existe")
	assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)
	assert.False(t, b.Degradado())
}

func TestFallbackPassaParaLocalEAvisaUmaVez(t *testing.T) {
	ctx := context.Background()
	g, db := novoGorm(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	core, logs := observer.New(zap.WarnLevel)
	local := NewMemoriaBackend()
	b := NewFallbackBackend(g, local, zap.New(core))

	criado, err := b.Repositorios().Fornecedores.Adicionar(ctx, fornecedor("F1", "Local"))
	require.NoError(t, err)
	assert.Equal(t, "Local", criado.Nome)
	assert.True(t, b.Degradado())
	assert.Equal(t, "memoria", b.Nome())

	err = b.Transacao(ctx, func(r Repositorios) error {
		_, err := r.Fornecedores.Adicionar(ctx, fornecedor("F2", "Também local"))
		return err
	})
	require.NoError(t, err)

	todos, err := local.Repositorios().Fornecedores.Listar(ctx)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
	assert.Equal(t, 1, logs.Len())
}

func TestFallbackTransacaoRepeteNoLocal(t *testing.T) {
	ctx := context.Background()
	g, db := novoGorm(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	local := NewMemoriaBackend()
	l := NewLedger(NewFallbackBackend(g, local, zap.NewNop()))
	err = l.Executar(ctx, func(r Repositorios) error {
		_, err := r.Fundos.Adicionar(ctx, models.FundoManeio{ID: "FM1", Mes: "2024-03"})
		return err
	})
	require.NoError(t, err)

	_, err = local.Repositorios().Fundos.BuscarPorID(ctx, "FM1")
	assert.NoError(t, err)
}

func TestFallbackPropagaErroDoNegocio(t *testing.T) {
	b := NewFallbackBackend(NewMemoriaBackend(), NewMemoriaBackend(), zap.NewNop())
	regra := errors.New("regra de negócio")
	err := b.Transacao(context.Background(), func(Repositorios) error { return regra })
	assert.ErrorIs(t, err, regra)
	assert.False(t, b.Degradado())
}
