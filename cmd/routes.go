package main

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/auth"
	"github.com/KromaEnergia/api-tesouraria/internal/backup"
	"github.com/KromaEnergia/api-tesouraria/internal/cheque"
	"github.com/KromaEnergia/api-tesouraria/internal/config"
	"github.com/KromaEnergia/api-tesouraria/internal/fornecedor"
	"github.com/KromaEnergia/api-tesouraria/internal/fundomaneio"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/pagamento"
	"github.com/KromaEnergia/api-tesouraria/internal/reconciliacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
	"github.com/KromaEnergia/api-tesouraria/internal/usuario"
	"github.com/KromaEnergia/api-tesouraria/internal/workflow"
)

type app struct {
	router   *mux.Router
	usuarios *usuario.Service
}

// novaApp monta os serviços sobre o livro-razão e regista as rotas.
func novaApp(cfg *config.Config, ledger *store.Ledger, emissor *auth.Emissor, notif notificacao.Notificador, rel relogio.Relogio, log *zap.Logger) *app {
	etapas := cfg.Workflow.EtapasWorkflow()

	fornecedores := fornecedor.NewService(ledger, notif, log)
	pagamentos := pagamento.NewService(ledger, rel, notif, log, etapas)
	fundos := fundomaneio.NewService(ledger, rel, notif, log)
	cheques := cheque.NewService(ledger, rel, notif, log)
	reconc := reconciliacao.NewService(ledger, rel, notif, log)
	engine := workflow.NewEngine(ledger, rel, notif, log, fundos, cheques)
	usuarios := usuario.NewService(ledger, emissor, log)
	backups := backup.NewService(ledger, rel, notif, log, cfg.Backup.Dir)

	fornecedorHandler := fornecedor.NewHandler(fornecedores)
	pagamentoHandler := pagamento.NewHandler(pagamentos)
	fundoHandler := fundomaneio.NewHandler(fundos)
	chequeHandler := cheque.NewHandler(cheques)
	reconcHandler := reconciliacao.NewHandler(reconc)
	workflowHandler := workflow.NewHandler(engine, etapas)
	usuarioHandler := usuario.NewHandler(usuarios)
	backupHandler := backup.NewHandler(backups)

	r := mux.NewRouter()
	r.Use(comLog(log))

	// Rotas públicas
	r.HandleFunc("/auth/login", usuarioHandler.Login).Methods("POST")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("GET")

	api := r.PathPrefix("/").Subrouter()
	api.Use(emissor.Middleware)

	// Fornecedores
	api.HandleFunc("/fornecedores", fornecedorHandler.Criar).Methods("POST")
	api.HandleFunc("/fornecedores", fornecedorHandler.Listar).Methods("GET")
	api.HandleFunc("/fornecedores/{id}", fornecedorHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/fornecedores/{id}", fornecedorHandler.Atualizar).Methods("PUT")
	api.HandleFunc("/fornecedores/{id}", fornecedorHandler.Remover).Methods("DELETE")

	// Pagamentos
	api.HandleFunc("/fornecedores/{id}/pagamentos", pagamentoHandler.Criar).Methods("POST")
	api.HandleFunc("/fornecedores/{id}/pagamentos", pagamentoHandler.ListarPorFornecedor).Methods("GET")
	api.HandleFunc("/pagamentos", pagamentoHandler.Listar).Methods("GET")
	api.HandleFunc("/pagamentos/resumo", pagamentoHandler.Resumo).Methods("GET")
	api.HandleFunc("/pagamentos/{id}", pagamentoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/pagamentos/{id}", pagamentoHandler.Atualizar).Methods("PUT")
	api.HandleFunc("/pagamentos/{id}/valor-pago", pagamentoHandler.RegistrarValorPago).Methods("POST")
	api.HandleFunc("/pagamentos/{id}/documentos", pagamentoHandler.DocumentosPendentes).Methods("GET")

	// Workflow de aprovação
	api.HandleFunc("/pagamentos/{id}/workflow", workflowHandler.Iniciar).Methods("POST")
	api.HandleFunc("/pagamentos/{id}/aprovar", workflowHandler.Aprovar).Methods("POST")
	api.HandleFunc("/pagamentos/{id}/rejeitar", workflowHandler.Rejeitar).Methods("POST")
	api.HandleFunc("/workflow/pendentes", workflowHandler.Pendentes).Methods("GET")

	// Fundo de maneio
	api.HandleFunc("/fundos", fundoHandler.Listar).Methods("GET")
	api.HandleFunc("/fundos", fundoHandler.Abrir).Methods("POST")
	api.HandleFunc("/fundos/{mes}", fundoHandler.BuscarPorMes).Methods("GET")
	api.HandleFunc("/fundos/{mes}/saldo", fundoHandler.Saldo).Methods("GET")
	api.HandleFunc("/fundos/{mes}/movimentos", fundoHandler.AdicionarMovimento).Methods("POST")
	api.HandleFunc("/fundos/{mes}/movimentos/{mid}", fundoHandler.RemoverMovimento).Methods("DELETE")
	api.HandleFunc("/fundos/{mes}/transportar", fundoHandler.TransportarSaldo).Methods("POST")

	// Cheques
	api.HandleFunc("/cheques", chequeHandler.Listar).Methods("GET")
	api.HandleFunc("/cheques", chequeHandler.Emitir).Methods("POST")
	api.HandleFunc("/cheques/{id}", chequeHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/cheques/{id}/compensar", chequeHandler.Compensar).Methods("POST")
	api.HandleFunc("/cheques/{id}/cancelar", chequeHandler.Cancelar).Methods("POST")
	api.HandleFunc("/transacoes", chequeHandler.ListarTransacoes).Methods("GET")

	// Reconciliação
	api.HandleFunc("/reconciliacao/itens", reconcHandler.ListarItens).Methods("GET")
	api.HandleFunc("/reconciliacao/candidatos", reconcHandler.ListarCandidatos).Methods("GET")
	api.HandleFunc("/reconciliacao/vincular", reconcHandler.Vincular).Methods("POST")
	api.HandleFunc("/reconciliacao/desvincular", reconcHandler.Desvincular).Methods("POST")

	// Administração
	admin := api.PathPrefix("/").Subrouter()
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/usuarios", usuarioHandler.Listar).Methods("GET")
	admin.HandleFunc("/usuarios", usuarioHandler.Criar).Methods("POST")
	admin.HandleFunc("/usuarios/{id}", usuarioHandler.Atualizar).Methods("PUT")
	admin.HandleFunc("/usuarios/{id}", usuarioHandler.Remover).Methods("DELETE")
	admin.HandleFunc("/backups", backupHandler.Exportar).Methods("POST")
	admin.HandleFunc("/backups/restaurar", backupHandler.Restaurar).Methods("POST")

	return &app{router: r, usuarios: usuarios}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// comLog regista método, caminho, status e duração de cada pedido.
func comLog(log *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duracao", time.Since(start)),
			)
		})
	}
}
