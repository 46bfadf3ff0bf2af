package notificacao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogUsaNivelDoTipo(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLog(zap.New(core))
	n.Notificar(context.Background(), Sucesso, "ok")
	n.Notificar(context.Background(), Aviso, "cuidado")
	n.Notificar(context.Background(), Erro, "falhou")

	entradas := logs.All()
	require.Len(t, entradas, 3)
	assert.Equal(t, zapcore.InfoLevel, entradas[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entradas[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entradas[2].Level)
	assert.Equal(t, "falhou", entradas[2].ContextMap()["mensagem"])
}

func TestMultiReencaminha(t *testing.T) {
	a, b := &Memoria{}, &Memoria{}
	Multi{a, b, Nenhum{}}.Notificar(context.Background(), Sucesso, "pago")
	assert.Equal(t, []Mensagem{{Sucesso, "pago"}}, a.Mensagens())
	assert.Equal(t, []Mensagem{{Sucesso, "pago"}}, b.Mensagens())
}

func TestWebhookEnviaPayload(t *testing.T) {
	var mu sync.Mutex
	var recebido payloadWebhook
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&recebido)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL, zap.NewNop())
	n.Notificar(context.Background(), Aviso, "saldo baixo")
	n.Aguardar()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, Aviso, recebido.Tipo)
	assert.Equal(t, "saldo baixo", recebido.Mensagem)
}

func TestWebhookFalhaSoRegista(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	n := NewWebhook("http://127.0.0.1:1/inexistente", zap.New(core))
	n.Notificar(context.Background(), Erro, "x")
	n.Aguardar()
	assert.Equal(t, 1, logs.Len())
}
