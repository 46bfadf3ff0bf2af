// Package auth emite e valida os tokens de acesso do painel e injeta o ator
// autenticado no contexto do pedido.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
)

const issuer = "api-tesouraria"

// Claims do token: identidade usada pelo workflow.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c Claims) Ator() models.Ator {
	return models.Ator{Username: c.Username, Role: c.Role}
}

// Emissor assina e valida tokens HS256.
type Emissor struct {
	segredo []byte
	ttl     time.Duration
	agora   func() time.Time
}

func NewEmissor(segredo string, ttl time.Duration) (*Emissor, error) {
	if segredo == "" {
		return nil, errors.New("JWT_SECRET não definida")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Emissor{segredo: []byte(segredo), ttl: ttl, agora: time.Now}, nil
}

// GerarToken devolve o token e a sua expiração.
func (e *Emissor) GerarToken(ator models.Ator) (string, time.Time, error) {
	agora := e.agora()
	expira := agora.Add(e.ttl)
	claims := &Claims{
		Username: ator.Username,
		Role:     ator.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   ator.Username,
			ExpiresAt: jwt.NewNumericDate(expira),
			IssuedAt:  jwt.NewNumericDate(agora),
			NotBefore: jwt.NewNumericDate(agora.Add(-1 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(e.segredo)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("assinar token: %w", err)
	}
	return token, expira, nil
}

// ValidarToken valida assinatura, emissor e expiração.
func (e *Emissor) ValidarToken(tokenStr string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(e.agora),
	)
	tok, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return e.segredo, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token inválido ou expirado: %w", err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("claims inválidas")
	}
	if c.Username == "" {
		return nil, errors.New("token sem username")
	}
	return c, nil
}
