package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/auth"
	"github.com/KromaEnergia/api-tesouraria/internal/config"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
)

type cliente struct {
	t   *testing.T
	srv *httptest.Server
}

func (c cliente) pedir(token, metodo, caminho, corpo string) (int, []byte) {
	c.t.Helper()
	var body io.Reader
	if corpo != "" {
		body = strings.NewReader(corpo)
	}
	req, err := http.NewRequest(metodo, c.srv.URL+caminho, body)
	require.NoError(c.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	dados, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, dados
}

func (c cliente) login(username, senha string) string {
	c.t.Helper()
	status, dados := c.pedir("", "POST", "/auth/login", `{"username":"`+username+`","senha":"`+senha+`"}`)
	require.Equal(c.t, http.StatusOK, status, string(dados))
	var sessao struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.Unmarshal(dados, &sessao))
	return sessao.Token
}

func novoCliente(t *testing.T) cliente {
	t.Helper()
	cfg := &config.Config{
		Workflow: config.WorkflowConfig{Ativo: true, Etapas: []config.EtapaConfig{{Role: "financial_director"}}},
		Backup:   config.BackupConfig{Dir: t.TempDir()},
	}
	emissor, err := auth.NewEmissor("segredo", time.Hour)
	require.NoError(t, err)
	rel := &relogio.Fixo{T: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	a := novaApp(cfg, store.NewLedger(store.NewMemoriaBackend()), emissor, notificacao.Nenhum{}, rel, zap.NewNop())
	require.NoError(t, a.usuarios.GarantirAdmin(context.Background(), "admin", "admin123"))

	srv := httptest.NewServer(a.router)
	t.Cleanup(srv.Close)
	return cliente{t: t, srv: srv}
}

func TestRotasExigemToken(t *testing.T) {
	c := novoCliente(t)

	status, _ := c.pedir("", "GET", "/fornecedores", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = c.pedir("", "GET", "/health", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestAdministracaoSoParaAdmin(t *testing.T) {
	c := novoCliente(t)
	admin := c.login("admin", "admin123")

	status, dados := c.pedir(admin, "POST", "/usuarios", `{"username":"joao","role":"contabilista","senha":"x1"}`)
	require.Equal(t, http.StatusCreated, status, string(dados))

	joao := c.login("joao", "x1")
	status, _ = c.pedir(joao, "GET", "/usuarios", "")
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = c.pedir(joao, "POST", "/backups", "")
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.pedir(admin, "POST", "/backups", "")
	assert.Equal(t, http.StatusCreated, status)
}

func TestFluxoDeAprovacaoComCheque(t *testing.T) {
	c := novoCliente(t)
	admin := c.login("admin", "admin123")

	status, dados := c.pedir(admin, "POST", "/usuarios", `{"username":"maria","role":"financial_director","senha":"m4ria"}`)
	require.Equal(t, http.StatusCreated, status, string(dados))
	maria := c.login("maria", "m4ria")

	status, dados = c.pedir(admin, "POST", "/fornecedores", `{"nome":"Gráfica Luanda"}`)
	require.Equal(t, http.StatusCreated, status, string(dados))
	var f models.Fornecedor
	require.NoError(t, json.Unmarshal(dados, &f))

	status, dados = c.pedir(admin, "POST", "/fornecedores/"+f.ID+"/pagamentos",
		`{"referencia":"FT 2024/31","valor":"1500.00","dataVencimento":"2024-03-30T00:00:00Z","tipo":"fatura","metodo":"cheque"}`)
	require.Equal(t, http.StatusCreated, status, string(dados))
	var p models.Pagamento
	require.NoError(t, json.Unmarshal(dados, &p))
	require.NotNil(t, p.Workflow)
	assert.Equal(t, models.WorkflowEmCurso, p.Workflow.Status)

	status, dados = c.pedir(maria, "GET", "/workflow/pendentes", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(dados), p.ID)

	status, dados = c.pedir(admin, "POST", "/usuarios", `{"username":"joao","role":"contabilista","senha":"x1"}`)
	require.Equal(t, http.StatusCreated, status, string(dados))
	joao := c.login("joao", "x1")
	status, _ = c.pedir(joao, "POST", "/pagamentos/"+p.ID+"/aprovar", `{"comments":"ok"}`)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = c.pedir(maria, "POST", "/pagamentos/"+p.ID+"/rejeitar", `{"comments":""}`)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAprovacaoFinalEmiteCheque(t *testing.T) {
	c := novoCliente(t)
	admin := c.login("admin", "admin123")

	status, dados := c.pedir(admin, "POST", "/usuarios", `{"username":"maria","role":"financial_director","senha":"m4ria"}`)
	require.Equal(t, http.StatusCreated, status, string(dados))
	maria := c.login("maria", "m4ria")

	_, dados = c.pedir(admin, "POST", "/fornecedores", `{"nome":"Gráfica"}`)
	var f models.Fornecedor
	require.NoError(t, json.Unmarshal(dados, &f))
	_, dados = c.pedir(admin, "POST", "/fornecedores/"+f.ID+"/pagamentos",
		`{"referencia":"FT 1","valor":"800","dataVencimento":"2024-03-30T00:00:00Z","tipo":"fatura","metodo":"cheque"}`)
	var p models.Pagamento
	require.NoError(t, json.Unmarshal(dados, &p))

	status, dados = c.pedir(maria, "POST", "/pagamentos/"+p.ID+"/aprovar", `{"comments":"aprovado"}`)
	require.Equal(t, http.StatusOK, status, string(dados))
	require.NoError(t, json.Unmarshal(dados, &p))
	assert.Equal(t, models.EstadoPago, p.Estado)
	assert.Equal(t, models.WorkflowAprovado, p.Workflow.Status)
	require.NotNil(t, p.TransacaoBancariaID)

	status, dados = c.pedir(maria, "GET", "/cheques/"+*p.TransacaoBancariaID, "")
	require.Equal(t, http.StatusOK, status)
	var ch models.Cheque
	require.NoError(t, json.Unmarshal(dados, &ch))
	require.NotNil(t, ch.PagamentoID)
	assert.Equal(t, p.ID, *ch.PagamentoID)

	status, _ = c.pedir(maria, "POST", "/pagamentos/"+p.ID+"/aprovar", `{}`)
	assert.Equal(t, http.StatusConflict, status)
}
