package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/auth"
	"github.com/KromaEnergia/api-tesouraria/internal/config"
	"github.com/KromaEnergia/api-tesouraria/internal/notificacao"
	"github.com/KromaEnergia/api-tesouraria/internal/relogio"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
	"github.com/KromaEnergia/api-tesouraria/internal/utils/db"
)

var migrateOnlyFlag = flag.Bool("migrate-only", false, "Executa o AutoMigrate e sai")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Erro na configuração: %v", err)
	}

	logger, err := novoLogger(cfg.App)
	if err != nil {
		log.Fatalf("Erro ao criar logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	backend, err := abrirBackend(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("armazenamento", zap.Error(err))
	}
	if *migrateOnlyFlag {
		logger.Info("migrações concluídas", zap.String("backend", backend.Nome()))
		return
	}
	ledger := store.NewLedger(backend)

	emissor, err := auth.NewEmissor(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		logger.Fatal("auth", zap.Error(err))
	}

	notif := notificacao.Multi{notificacao.NewLog(logger)}
	var webhook *notificacao.Webhook
	if cfg.Notificacao.WebhookURL != "" {
		webhook = notificacao.NewWebhook(cfg.Notificacao.WebhookURL, logger)
		notif = append(notif, webhook)
	}

	a := novaApp(cfg, ledger, emissor, notif, relogio.Sistema{}, logger)
	if err := a.usuarios.GarantirAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("criar administrador inicial", zap.Error(err))
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(a.router),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		logger.Info("servidor a iniciar", zap.String("porta", cfg.Server.Port), zap.String("backend", backend.Nome()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("servidor", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("sinal de encerramento recebido")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("erro no encerramento", zap.Error(err))
	}
	if webhook != nil {
		webhook.Aguardar()
	}
	logger.Info("servidor parado")
}

func novoLogger(app config.AppConfig) (*zap.Logger, error) {
	if app.Dev() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// abrirBackend liga à base remota com fallback para memória. Se a base não
// responder no arranque, a aplicação corre só em memória.
func abrirBackend(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (store.Backend, error) {
	local := store.NewMemoriaBackend()
	if !cfg.Enabled {
		logger.Warn("base de dados desativada, a usar armazenamento em memória")
		return local, nil
	}
	database, err := db.GetDB(ctx, cfg)
	if err != nil {
		logger.Warn("base de dados indisponível, a usar armazenamento em memória", zap.Error(err))
		return local, nil
	}
	remoto := store.NewGormBackend(database)
	if err := remoto.Migrar(); err != nil {
		return nil, err
	}
	return store.NewFallbackBackend(remoto, local, logger), nil
}
