package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/KromaEnergia/api-tesouraria/internal/config"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ParseCredentials lê o segredo JSON {"username", "password"}.
func ParseCredentials(secret string) (Credentials, error) {
	var c Credentials
	if err := json.Unmarshal([]byte(secret), &c); err != nil {
		return Credentials{}, fmt.Errorf("segredo da base malformado: %w", err)
	}
	if c.Username == "" || c.Password == "" {
		return Credentials{}, errors.New("segredo da base sem username ou password")
	}
	return c, nil
}

func retrieveCredentials(ctx context.Context, cfg config.DatabaseConfig) (string, string, error) {
	if cfg.User != "" && cfg.Password != "" {
		return cfg.User, cfg.Password, nil
	}
	if cfg.SecretID == "" {
		return "", "", errors.New("defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", "", fmt.Errorf("configuração AWS: %w", err)
	}
	secrets := secretsmanager.NewFromConfig(awsCfg)
	result, err := secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(cfg.SecretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return "", "", fmt.Errorf("ler segredo %s: %w", cfg.SecretID, err)
	}
	if result.SecretString == nil {
		return "", "", fmt.Errorf("segredo %s sem SecretString", cfg.SecretID)
	}
	c, err := ParseCredentials(*result.SecretString)
	if err != nil {
		return "", "", err
	}
	return c.Username, c.Password, nil
}
