// Package config lê a configuração da aplicação das variáveis de ambiente.
// O .env é carregado em main com godotenv antes de Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Workflow    WorkflowConfig
	Notificacao NotificacaoConfig
	Backup      BackupConfig
	CORS        CORSConfig
	App         AppConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  int // segundos
	WriteTimeout int // segundos
	IdleTimeout  int // segundos
}

// DatabaseConfig descreve a base remota. Sem Enabled a aplicação corre só
// com o armazenamento em memória.
type DatabaseConfig struct {
	Enabled  bool
	Driver   string // postgres | sqlite
	Host     string
	Port     uint
	User     string
	Password string
	DBName   string
	SSLMode  string
	SecretID string
	Path     string // ficheiro sqlite
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminUsername string
	AdminPassword string
}

// EtapaConfig é uma etapa do workflow padrão: aprovador por role ou por username.
type EtapaConfig struct {
	Role     string
	Username string
}

type WorkflowConfig struct {
	Ativo  bool
	Etapas []EtapaConfig
}

type NotificacaoConfig struct {
	WebhookURL string
}

type BackupConfig struct {
	Dir string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type AppConfig struct {
	Env string
}

func (a AppConfig) Dev() bool { return a.Env == "development" }

// EtapasWorkflow devolve as etapas configuradas, ou nil quando o workflow
// automático está desligado.
func (w WorkflowConfig) EtapasWorkflow() []models.EtapaWorkflow {
	if !w.Ativo || len(w.Etapas) == 0 {
		return nil
	}
	etapas := make([]models.EtapaWorkflow, len(w.Etapas))
	for i, e := range w.Etapas {
		etapas[i] = models.EtapaWorkflow{Role: e.Role, Username: e.Username, Status: models.EtapaPendente}
	}
	return etapas
}

func Load() (*Config, error) {
	etapas, err := ParseEtapas(getEnv("WORKFLOW_ETAPAS", "role:financial_director"))
	if err != nil {
		return nil, err
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvBool("DB_ENABLED", true),
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     uint(getEnvInt("DB_PORT", 5432)),
			User:     os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			DBName:   getEnv("DB_NAME", "tesouraria"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
			SecretID: os.Getenv("DB_SECRET_ID"),
			Path:     getEnv("DB_PATH", "tesouraria.db"),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			TokenTTL:      time.Duration(getEnvInt("JWT_TTL_HORAS", 24)) * time.Hour,
			AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		},
		Workflow: WorkflowConfig{
			Ativo:  getEnvBool("WORKFLOW_ATIVO", true),
			Etapas: etapas,
		},
		Notificacao: NotificacaoConfig{WebhookURL: os.Getenv("WEBHOOK_URL")},
		Backup:      BackupConfig{Dir: getEnv("BACKUP_DIR", "backups")},
		CORS:        CORSConfig{AllowedOrigins: splitLista(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))},
		App:         AppConfig{Env: getEnv("APP_ENV", "production")},
	}, nil
}

// ParseEtapas lê "role:financial_director,user:maria". Um item sem prefixo
// é tratado como role.
func ParseEtapas(s string) ([]EtapaConfig, error) {
	var etapas []EtapaConfig
	for _, item := range splitLista(s) {
		tipo, valor, ok := strings.Cut(item, ":")
		if !ok {
			tipo, valor = "role", item
		}
		valor = strings.TrimSpace(valor)
		if valor == "" {
			return nil, fmt.Errorf("WORKFLOW_ETAPAS: etapa vazia em %q", item)
		}
		switch strings.ToLower(strings.TrimSpace(tipo)) {
		case "role":
			etapas = append(etapas, EtapaConfig{Role: valor})
		case "user", "username":
			etapas = append(etapas, EtapaConfig{Username: valor})
		default:
			return nil, fmt.Errorf("WORKFLOW_ETAPAS: tipo de etapa desconhecido %q", tipo)
		}
	}
	return etapas, nil
}

func splitLista(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool aceita "1", "true" e "yes" como verdadeiro.
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
