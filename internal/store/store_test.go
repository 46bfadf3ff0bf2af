package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

func novoGorm(t *testing.T) (*GormBackend, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	b := NewGormBackend(db)
	require.NoError(t, b.Migrar())
	return b, db
}

type backendTeste struct {
	nome    string
	backend Backend
}

func backends(t *testing.T) []backendTeste {
	g, _ := novoGorm(t)
	return []backendTeste{
		{"memoria", NewMemoriaBackend()},
		{"gorm", g},
	}
}

func fornecedor(id, nome string) models.Fornecedor {
	return models.Fornecedor{ID: id, Nome: nome}
}

func TestColecaoCRUD(t *testing.T) {
	for _, tc := range backends(t) {
		t.Run(tc.nome, func(t *testing.T) {
			ctx := context.Background()
			r := tc.backend.Repositorios()

			criado, err := r.Fornecedores.Adicionar(ctx, fornecedor("F1", "Papelaria Central"))
			require.NoError(t, err)
			assert.Equal(t, "F1", criado.ID)

			obtido, err := r.Fornecedores.BuscarPorID(ctx, "F1")
			require.NoError(t, err)
			assert.Equal(t, "Papelaria Central", obtido.Nome)

			atualizado, err := r.Fornecedores.Atualizar(ctx, "F1", func(f *models.Fornecedor) error {
				f.Email = "geral@papelaria.ao"
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, "geral@papelaria.ao", atualizado.Email)

			todos, err := r.Fornecedores.Listar(ctx)
			require.NoError(t, err)
			assert.Len(t, todos, 1)

			require.NoError(t, r.Fornecedores.Remover(ctx, "F1"))
			_, err = r.Fornecedores.BuscarPorID(ctx, "F1")
			assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)
			assert.ErrorIs(t, r.Fornecedores.Remover(ctx, "F1"), apperr.ErrNaoEncontrado)
		})
	}
}

func TestAdicionarComIDExistenteNaoAltera(t *testing.T) {
	for _, tc := range backends(t) {
		t.Run(tc.nome, func(t *testing.T) {
			ctx := context.Background()
			r := tc.backend.Repositorios()

			_, err := r.Fornecedores.Adicionar(ctx, fornecedor("F1", "Original"))
			require.NoError(t, err)
			devolvido, err := r.Fornecedores.Adicionar(ctx, fornecedor("F1", "Outro nome"))
			require.NoError(t, err)
			assert.Equal(t, "Original", devolvido.Nome)

			todos, err := r.Fornecedores.Listar(ctx)
			require.NoError(t, err)
			require.Len(t, todos, 1)
			assert.Equal(t, "Original", todos[0].Nome)
		})
	}
}

func TestAdicionarSemIDGeraID(t *testing.T) {
	for _, tc := range backends(t) {
		t.Run(tc.nome, func(t *testing.T) {
			criado, err := tc.backend.Repositorios().Fornecedores.Adicionar(context.Background(), fornecedor("", "Sem id"))
			require.NoError(t, err)
			assert.NotEmpty(t, criado.ID)
		})
	}
}

func TestAtualizarPatchComErroNaoGrava(t *testing.T) {
	for _, tc := range backends(t) {
		t.Run(tc.nome, func(t *testing.T) {
			ctx := context.Background()
			r := tc.backend.Repositorios()
			_, err := r.Fornecedores.Adicionar(ctx, fornecedor("F1", "Original"))
			require.NoError(t, err)

			_, err = r.Fornecedores.Atualizar(ctx, "F1", func(f *models.Fornecedor) error {
				f.Nome = "Alterado"
				return apperr.Validacao("nome")
			})
			assert.ErrorIs(t, err, apperr.ErrValidacao)

			obtido, err := r.Fornecedores.BuscarPorID(ctx, "F1")
			require.NoError(t, err)
			assert.Equal(t, "Original", obtido.Nome)

			_, err = r.Fornecedores.Atualizar(ctx, "F1", func(f *models.Fornecedor) error {
				f.ID = "F2"
				return nil
			})
			assert.ErrorIs(t, err, apperr.ErrValidacao)
		})
	}
}

func TestTransacaoDesfazEmErro(t *testing.T) {
	for _, tc := range backends(t) {
		t.Run(tc.nome, func(t *testing.T) {
			ctx := context.Background()
			falha := errors.New("falha no meio")

			err := tc.backend.Transacao(ctx, func(r Repositorios) error {
				if _, err := r.Fornecedores.Adicionar(ctx, fornecedor("F1", "Temporário")); err != nil {
					return err
				}
				return falha
			})
			assert.ErrorIs(t, err, falha)

			_, err = tc.backend.Repositorios().Fornecedores.BuscarPorID(ctx, "F1")
			assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)
		})
	}
}

func TestCamposAninhadosPersistem(t *testing.T) {
	for _, tc := range backends(t) {
		t.Run(tc.nome, func(t *testing.T) {
			ctx := context.Background()
			r := tc.backend.Repositorios()
			data := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

			_, err := r.Fundos.Adicionar(ctx, models.FundoManeio{
				ID:           "FM1",
				Mes:          "2024-03",
				SaldoInicial: decimal.NewFromInt(1000),
				SaldoFinal:   decimal.NewFromInt(800),
				Movimentos: []models.Movimento{{
					ID: "M1", Data: data, Tipo: models.MovimentoSaida, Valor: decimal.NewFromInt(200),
					PagamentoID: models.Ptr("P1"),
				}},
			})
			require.NoError(t, err)

			_, err = r.Pagamentos.Adicionar(ctx, models.Pagamento{
				ID: "P1", FornecedorID: "F1", Referencia: "FT-1", Valor: decimal.NewFromInt(200),
				Estado: models.EstadoPendente, Tipo: models.TipoFatura, Metodo: models.MetodoFundoManeio,
				Workflow: &models.Workflow{Status: models.WorkflowEmCurso, Steps: []models.EtapaWorkflow{
					{Role: "financial_director", Status: models.EtapaPendente},
				}},
			})
			require.NoError(t, err)

			fundo, err := r.Fundos.BuscarPorID(ctx, "FM1")
			require.NoError(t, err)
			require.Len(t, fundo.Movimentos, 1)
			require.NotNil(t, fundo.Movimentos[0].PagamentoID)
			assert.Equal(t, "P1", *fundo.Movimentos[0].PagamentoID)
			assert.True(t, decimal.NewFromInt(800).Equal(fundo.SaldoFinal))

			pag, err := r.Pagamentos.BuscarPorID(ctx, "P1")
			require.NoError(t, err)
			require.NotNil(t, pag.Workflow)
			assert.Equal(t, "financial_director", pag.Workflow.Steps[0].Role)
		})
	}
}

func TestMemoriaDevolveCopias(t *testing.T) {
	ctx := context.Background()
	r := NewMemoriaBackend().Repositorios()
	_, err := r.Fundos.Adicionar(ctx, models.FundoManeio{ID: "FM1", Mes: "2024-03", Movimentos: []models.Movimento{{ID: "M1"}}})
	require.NoError(t, err)

	f, err := r.Fundos.BuscarPorID(ctx, "FM1")
	require.NoError(t, err)
	f.Movimentos[0].Descricao = "alterado fora"

	deNovo, err := r.Fundos.BuscarPorID(ctx, "FM1")
	require.NoError(t, err)
	assert.Empty(t, deNovo.Movimentos[0].Descricao)
}

func TestGormUniqueViraValidacao(t *testing.T) {
	g, _ := novoGorm(t)
	ctx := context.Background()
	r := g.Repositorios()
	_, err := r.Cheques.Adicionar(ctx, models.Cheque{ID: "C1", Numero: "000001", Valor: decimal.NewFromInt(10), Estado: models.ChequePendente})
	require.NoError(t, err)
	_, err = r.Cheques.Adicionar(ctx, models.Cheque{ID: "C2", Numero: "000001", Valor: decimal.NewFromInt(10), Estado: models.ChequePendente})
	assert.ErrorIs(t, err, apperr.ErrValidacao)
	assert.NotErrorIs(t, err, apperr.ErrStoreIndisponivel)
}

func TestGormFechadoFicaIndisponivel(t *testing.T) {
	g, db := novoGorm(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = g.Repositorios().Fornecedores.Listar(context.Background())
	assert.ErrorIs(t, err, apperr.ErrStoreIndisponivel)
	assert.ErrorIs(t, g.Ping(context.Background()), apperr.ErrStoreIndisponivel)
}

func TestLedgerSerializaUnidades(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(NewMemoriaBackend())
	require.NoError(t, l.Executar(ctx, func(r Repositorios) error {
		_, err := r.Fundos.Adicionar(ctx, models.FundoManeio{ID: "FM1", Mes: "2024-03"})
		return err
	}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Executar(ctx, func(r Repositorios) error {
				f, err := r.Fundos.BuscarPorID(ctx, "FM1")
				if err != nil {
					return err
				}
				_, err = r.Fundos.Atualizar(ctx, f.ID, func(f *models.FundoManeio) error {
					f.SaldoInicial = f.SaldoInicial.Add(decimal.NewFromInt(1))
					return nil
				})
				return err
			})
		}()
	}
	wg.Wait()

	f, err := l.Consultar().Fundos.BuscarPorID(ctx, "FM1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(f.SaldoInicial), f.SaldoInicial.String())
}

func TestConsultasAuxiliares(t *testing.T) {
	ctx := context.Background()
	r := NewMemoriaBackend().Repositorios()
	_, err := r.Fundos.Adicionar(ctx, models.FundoManeio{ID: "FM1", Mes: "2024-03", Movimentos: []models.Movimento{{ID: "M1"}, {ID: "M2"}}})
	require.NoError(t, err)
	_, err = r.Pagamentos.Adicionar(ctx, models.Pagamento{ID: "P1", FornecedorID: "F1"})
	require.NoError(t, err)
	_, err = r.Pagamentos.Adicionar(ctx, models.Pagamento{ID: "P2", FornecedorID: "F2"})
	require.NoError(t, err)

	f, err := BuscarFundoPorMes(ctx, r, "2024-03")
	require.NoError(t, err)
	assert.Equal(t, "FM1", f.ID)
	_, err = BuscarFundoPorMes(ctx, r, "2024-04")
	assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)

	_, i, err := LocalizarMovimento(ctx, r, "M2")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	_, _, err = LocalizarMovimento(ctx, r, "M9")
	assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)

	ps, err := PagamentosDoFornecedor(ctx, r, "F1")
	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "P1", ps[0].ID)
}
