// Package notificacao entrega avisos de interface (sucesso, aviso, erro).
// É fire-and-forget: nenhuma regra de negócio depende do resultado.
package notificacao

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Tipo string

const (
	Sucesso Tipo = "sucesso"
	Aviso   Tipo = "aviso"
	Erro    Tipo = "erro"
)

type Notificador interface {
	Notificar(ctx context.Context, tipo Tipo, mensagem string)
}

// Log escreve as notificações no logger estruturado.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log { return &Log{log: log} }

func (n *Log) Notificar(_ context.Context, tipo Tipo, mensagem string) {
	campos := []zap.Field{zap.String("tipo", string(tipo)), zap.String("mensagem", mensagem)}
	switch tipo {
	case Erro:
		n.log.Error("notificação", campos...)
	case Aviso:
		n.log.Warn("notificação", campos...)
	default:
		n.log.Info("notificação", campos...)
	}
}

// Multi reencaminha para todos os notificadores.
type Multi []Notificador

func (m Multi) Notificar(ctx context.Context, tipo Tipo, mensagem string) {
	for _, n := range m {
		n.Notificar(ctx, tipo, mensagem)
	}
}

// Nenhum descarta tudo.
type Nenhum struct{}

func (Nenhum) Notificar(context.Context, Tipo, string) {}

// Mensagem é uma notificação registada por Memoria.
type Mensagem struct {
	Tipo     Tipo
	Mensagem string
}

// Memoria guarda as notificações recebidas.
type Memoria struct {
	mu        sync.Mutex
	mensagens []Mensagem
}

func (m *Memoria) Notificar(_ context.Context, tipo Tipo, mensagem string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mensagens = append(m.mensagens, Mensagem{Tipo: tipo, Mensagem: mensagem})
}

func (m *Memoria) Mensagens() []Mensagem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Mensagem(nil), m.mensagens...)
}
