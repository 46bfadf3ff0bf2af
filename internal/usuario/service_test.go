package usuario

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/auth"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

func novoService(t *testing.T) (*Service, *auth.Emissor) {
	t.Helper()
	emissor, err := auth.NewEmissor("segredo-de-teste", time.Hour)
	require.NoError(t, err)
	return NewService(store.NewLedger(store.NewMemoriaBackend()), emissor, zap.NewNop()), emissor
}

func TestCriarELogin(t *testing.T) {
	s, emissor := novoService(t)
	ctx := context.Background()

	u, temporaria, err := s.Criar(ctx, models.Usuario{Username: "maria", Role: "financial_director"}, "s3nha")
	require.NoError(t, err)
	assert.Empty(t, temporaria)
	assert.NotEqual(t, "s3nha", u.SenhaHash)
	assert.True(t, u.Ativo)

	_, _, err = s.Criar(ctx, models.Usuario{Username: "maria", Role: "x"}, "outra")
	assert.ErrorIs(t, err, apperr.ErrValidacao)

	sessao, err := s.Login(ctx, "maria", "s3nha")
	require.NoError(t, err)
	claims, err := emissor.ValidarToken(sessao.Token)
	require.NoError(t, err)
	assert.Equal(t, models.Ator{Username: "maria", Role: "financial_director"}, claims.Ator())

	_, err = s.Login(ctx, "maria", "errada")
	assert.ErrorIs(t, err, ErrCredenciais)
	_, err = s.Login(ctx, "joao", "s3nha")
	assert.ErrorIs(t, err, ErrCredenciais)
}

func TestSenhaTemporaria(t *testing.T) {
	s, _ := novoService(t)
	ctx := context.Background()

	_, temporaria, err := s.Criar(ctx, models.Usuario{Username: "ana", Role: "contabilista"}, "")
	require.NoError(t, err)
	assert.Len(t, temporaria, 12)

	_, err = s.Login(ctx, "ana", temporaria)
	assert.NoError(t, err)
}

func TestAtualizarRoleEDesativar(t *testing.T) {
	s, _ := novoService(t)
	ctx := context.Background()
	u, _, err := s.Criar(ctx, models.Usuario{Username: "rui", Role: "a"}, "x")
	require.NoError(t, err)

	inativo := false
	u, err = s.AtualizarRole(ctx, u.ID, "b", &inativo)
	require.NoError(t, err)
	assert.Equal(t, "b", u.Role)

	_, err = s.Login(ctx, "rui", "x")
	assert.ErrorIs(t, err, ErrCredenciais)

	_, err = s.AtualizarRole(ctx, u.ID, " ", nil)
	assert.ErrorIs(t, err, apperr.ErrValidacao)

	require.NoError(t, s.Remover(ctx, u.ID))
	assert.ErrorIs(t, s.Remover(ctx, u.ID), apperr.ErrNaoEncontrado)
}

func TestGarantirAdmin(t *testing.T) {
	s, _ := novoService(t)
	ctx := context.Background()

	require.NoError(t, s.GarantirAdmin(ctx, "admin", "admin123"))
	require.NoError(t, s.GarantirAdmin(ctx, "admin", "admin123"))

	us, err := s.Listar(ctx)
	require.NoError(t, err)
	require.Len(t, us, 1)
	assert.Equal(t, models.RoleAdmin, us[0].Role)
}

func TestHandlerLogin(t *testing.T) {
	s, _ := novoService(t)
	_, _, err := s.Criar(context.Background(), models.Usuario{Username: "maria", Role: "admin"}, "s3nha")
	require.NoError(t, err)

	h := NewHandler(s)
	r := mux.NewRouter()
	r.HandleFunc("/auth/login", h.Login).Methods("POST")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"maria","senha":"s3nha"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "senhaHash")
	var sessao Sessao
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessao))
	assert.NotEmpty(t, sessao.Token)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"maria","senha":"x"}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
