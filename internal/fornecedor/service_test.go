package fornecedor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

func novoService(t *testing.T) (*Service, *store.Ledger) {
	t.Helper()
	ledger := store.NewLedger(store.NewMemoriaBackend())
	return NewService(ledger, &notificacao.Memoria{}, zap.NewNop()), ledger
}

func novoServiceGorm(t *testing.T) (*Service, *store.Ledger) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	backend := store.NewGormBackend(db)
	require.NoError(t, backend.Migrar())
	ledger := store.NewLedger(backend)
	return NewService(ledger, notificacao.Nenhum{}, zap.NewNop()), ledger
}

func TestCRUD(t *testing.T) {
	s, _ := novoService(t)
	ctx := context.Background()

	f, err := s.Criar(ctx, models.Fornecedor{Nome: "  Papelaria Central ", NIF: "5000123"})
	require.NoError(t, err)
	assert.Equal(t, "Papelaria Central", f.Nome)

	_, err = s.Criar(ctx, models.Fornecedor{Nome: " "})
	assert.ErrorIs(t, err, apperr.ErrValidacao)

	f, err = s.Atualizar(ctx, f.ID, models.Fornecedor{Nome: "Papelaria Central Lda", Email: "a@b.ao"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.ao", f.Email)

	lista, err := s.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, lista, 1)
	assert.NotNil(t, lista[0].Pagamentos)

	_, err = s.BuscarPorID(ctx, "nao-existe")
	assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)
}

func semearComVinculos(t *testing.T, ledger *store.Ledger) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, ledger.Executar(ctx, func(r store.Repositorios) error {
		for _, f := range []models.Fornecedor{{ID: "F1", Nome: "A"}, {ID: "F2", Nome: "B"}} {
			if _, err := r.Fornecedores.Adicionar(ctx, f); err != nil {
				return err
			}
		}
		pagamentos := []models.Pagamento{
			{ID: "P1", FornecedorID: "F1", Referencia: "1", Valor: decimal.NewFromInt(10), Metodo: models.MetodoCheque, TransacaoBancariaID: models.Ptr("C1")},
			{ID: "P2", FornecedorID: "F1", Referencia: "2", Valor: decimal.NewFromInt(10), Metodo: models.MetodoFundoManeio, FundoManeioID: models.Ptr("M1")},
			{ID: "P3", FornecedorID: "F2", Referencia: "3", Valor: decimal.NewFromInt(10), Metodo: models.MetodoTransferencia},
		}
		for _, p := range pagamentos {
			if _, err := r.Pagamentos.Adicionar(ctx, p); err != nil {
				return err
			}
		}
		if _, err := r.Cheques.Adicionar(ctx, models.Cheque{ID: "C1", Numero: "1", Valor: decimal.NewFromInt(10), PagamentoID: models.Ptr("P1"), PagamentoReferencia: "1"}); err != nil {
			return err
		}
		_, err := r.Fundos.Adicionar(ctx, models.FundoManeio{ID: "FM1", Mes: "2024-03", Movimentos: []models.Movimento{
			{ID: "M1", Tipo: models.MovimentoSaida, Valor: decimal.NewFromInt(10), PagamentoID: models.Ptr("P2")},
		}})
		return err
	}))
}

func TestRemoverEmCascata(t *testing.T) {
	for nome, novo := range map[string]func(*testing.T) (*Service, *store.Ledger){
		"memoria": novoService,
		"gorm":    novoServiceGorm,
	} {
		t.Run(nome, func(t *testing.T) {
			s, ledger := novo(t)
			semearComVinculos(t, ledger)
			ctx := context.Background()

			require.NoError(t, s.Remover(ctx, "F1"))

			r := ledger.Consultar()
			_, err := r.Fornecedores.BuscarPorID(ctx, "F1")
			assert.ErrorIs(t, err, apperr.ErrNaoEncontrado)
			restantes, err := r.Pagamentos.Listar(ctx)
			require.NoError(t, err)
			require.Len(t, restantes, 1)
			assert.Equal(t, "P3", restantes[0].ID)

			c, err := r.Cheques.BuscarPorID(ctx, "C1")
			require.NoError(t, err)
			assert.Nil(t, c.PagamentoID)
			assert.Empty(t, c.PagamentoReferencia)

			f, _, err := store.LocalizarMovimento(ctx, r, "M1")
			require.NoError(t, err)
			assert.Nil(t, f.Movimentos[0].PagamentoID)

			assert.ErrorIs(t, s.Remover(ctx, "F1"), apperr.ErrNaoEncontrado)
		})
	}
}

func TestHandlerFornecedores(t *testing.T) {
	s, _ := novoService(t)
	h := NewHandler(s)
	r := mux.NewRouter()
	r.HandleFunc("/fornecedores", h.Criar).Methods("POST")
	r.HandleFunc("/fornecedores", h.Listar).Methods("GET")
	r.HandleFunc("/fornecedores/{id}", h.Remover).Methods("DELETE")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/fornecedores", strings.NewReader(`{"nome":"Gráfica"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/fornecedores", strings.NewReader(`{"nome":""}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("DELETE", "/fornecedores/xyz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
