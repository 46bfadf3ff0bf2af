// Package usuario gere os utilizadores do painel e o login.
package usuario

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/auth"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/store"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type Service struct {
	ledger  *store.Ledger
	emissor *auth.Emissor
	log     *zap.Logger
}

func NewService(ledger *store.Ledger, emissor *auth.Emissor, log *zap.Logger) *Service {
	return &Service{ledger: ledger, emissor: emissor, log: log}
}

// Sessao é a resposta de um login bem sucedido.
type Sessao struct {
	Token   string         `json:"token"`
	Expira  time.Time      `json:"expira"`
	Usuario models.Usuario `json:"usuario"`
}

func buscarPorUsername(ctx context.Context, r store.Repositorios, username string) (models.Usuario, bool, error) {
	todos, err := r.Usuarios.Listar(ctx)
	if err != nil {
		return models.Usuario{}, false, err
	}
	for _, u := range todos {
		if u.Username == username {
			return u, true, nil
		}
	}
	return models.Usuario{}, false, nil
}

// Criar grava o utilizador com a senha em bcrypt. Sem senha é gerada uma
// temporária, devolvida uma única vez.
func (s *Service) Criar(ctx context.Context, u models.Usuario, senha string) (models.Usuario, string, error) {
	u.Username = strings.TrimSpace(u.Username)
	u.Nome = strings.TrimSpace(u.Nome)
	u.Role = strings.TrimSpace(u.Role)
	if u.Username == "" {
		return models.Usuario{}, "", apperr.Validacao("username é obrigatório")
	}
	if u.Role == "" {
		return models.Usuario{}, "", apperr.Validacao("role é obrigatória")
	}
	temporaria := ""
	if senha == "" {
		var err error
		if senha, err = utils.GerarSenhaTemporaria(); err != nil {
			return models.Usuario{}, "", fmt.Errorf("gerar senha: %w", err)
		}
		temporaria = senha
	}
	hash, err := utils.HashSenha(senha)
	if err != nil {
		return models.Usuario{}, "", fmt.Errorf("hash senha: %w", err)
	}
	u.SenhaHash = hash
	u.Ativo = true

	var criado models.Usuario
	err = s.ledger.Executar(ctx, func(r store.Repositorios) error {
		_, existe, err := buscarPorUsername(ctx, r, u.Username)
		if err != nil {
			return err
		}
		if existe {
			return apperr.Validacao("username %q já existe", u.Username)
		}
		criado, err = r.Usuarios.Adicionar(ctx, u)
		return err
	})
	if err != nil {
		return models.Usuario{}, "", err
	}
	s.log.Info("usuario criado", zap.String("username", criado.Username), zap.String("role", criado.Role))
	return criado, temporaria, nil
}

// GarantirAdmin cria o administrador inicial quando ainda não há utilizadores.
func (s *Service) GarantirAdmin(ctx context.Context, username, senha string) error {
	if username == "" || senha == "" {
		return nil
	}
	todos, err := s.ledger.Consultar().Usuarios.Listar(ctx)
	if err != nil {
		return err
	}
	if len(todos) > 0 {
		return nil
	}
	_, _, err = s.Criar(ctx, models.Usuario{Username: username, Nome: username, Role: models.RoleAdmin}, senha)
	return err
}

func (s *Service) Listar(ctx context.Context) ([]models.Usuario, error) {
	return s.ledger.Consultar().Usuarios.Listar(ctx)
}

func (s *Service) AtualizarRole(ctx context.Context, id, role string, ativo *bool) (models.Usuario, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return models.Usuario{}, apperr.Validacao("role é obrigatória")
	}
	var u models.Usuario
	err := s.ledger.Executar(ctx, func(r store.Repositorios) error {
		var err error
		u, err = r.Usuarios.Atualizar(ctx, id, func(u *models.Usuario) error {
			u.Role = role
			if ativo != nil {
				u.Ativo = *ativo
			}
			return nil
		})
		return err
	})
	return u, err
}

func (s *Service) Remover(ctx context.Context, id string) error {
	return s.ledger.Executar(ctx, func(r store.Repositorios) error {
		return r.Usuarios.Remover(ctx, id)
	})
}

// Login valida as credenciais e emite o token com username e role.
func (s *Service) Login(ctx context.Context, username, senha string) (Sessao, error) {
	u, existe, err := buscarPorUsername(ctx, s.ledger.Consultar(), strings.TrimSpace(username))
	if err != nil {
		return Sessao{}, err
	}
	if !existe || !u.Ativo || !utils.VerificarSenha(u.SenhaHash, senha) {
		s.log.Warn("login recusado", zap.String("username", username))
		return Sessao{}, ErrCredenciais
	}
	token, expira, err := s.emissor.GerarToken(u.Ator())
	if err != nil {
		return Sessao{}, err
	}
	return Sessao{Token: token, Expira: expira, Usuario: u}, nil
}

// ErrCredenciais não distingue utilizador inexistente de senha errada.
var ErrCredenciais = errors.New("credenciais inválidas")
