package notificacao

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Webhook publica cada notificação num endpoint HTTP em segundo plano.
// Falhas só são registadas no log.
type Webhook struct {
	url    string
	client *http.Client
	log    *zap.Logger
	wg     sync.WaitGroup
	agora  func() time.Time
}

func NewWebhook(url string, log *zap.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
		log:    log,
		agora:  time.Now,
	}
}

type payloadWebhook struct {
	Tipo     Tipo      `json:"tipo"`
	Mensagem string    `json:"mensagem"`
	Data     time.Time `json:"data"`
}

func (n *Webhook) Notificar(_ context.Context, tipo Tipo, mensagem string) {
	body, err := json.Marshal(payloadWebhook{Tipo: tipo, Mensagem: mensagem, Data: n.agora()})
	if err != nil {
		n.log.Error("erro ao serializar webhook", zap.Error(err))
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		resp, err := n.client.Post(n.url, "application/json", bytes.NewBuffer(body))
		if err != nil {
			n.log.Warn("erro ao enviar webhook", zap.String("url", n.url), zap.Error(err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 300 {
			n.log.Warn("webhook respondeu com erro", zap.String("url", n.url), zap.Int("status", resp.StatusCode))
		}
	}()
}

// Aguardar bloqueia até todos os envios pendentes terminarem.
func (n *Webhook) Aguardar() {
	n.wg.Wait()
}
