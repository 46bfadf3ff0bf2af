// Package apperr define a taxonomia de erros do livro-razão da tesouraria.
// Todas as operações do núcleo falham devolvendo um destes sentinelas
// (possivelmente embrulhado com contexto); quem chama usa errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidacao         = errors.New("dados inválidos")
	ErrNaoEncontrado     = errors.New("registro não encontrado")
	ErrNaoAutorizado     = errors.New("não autorizado")
	ErrEstadoTerminal    = errors.New("estado terminal")
	ErrSaldoInsuficiente = errors.New("saldo insuficiente")
	ErrFundoDuplicado    = errors.New("fundo de maneio já existe para o mês")
	ErrStoreIndisponivel = errors.New("armazenamento indisponível")
)

// Validacao embrulha ErrValidacao com a mensagem do campo violado.
func Validacao(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidacao, fmt.Sprintf(format, args...))
}

// NaoEncontrado embrulha ErrNaoEncontrado identificando entidade e id.
func NaoEncontrado(entidade, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNaoEncontrado, entidade, id)
}

func NaoAutorizado(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNaoAutorizado, fmt.Sprintf(format, args...))
}

func EstadoTerminal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrEstadoTerminal, fmt.Sprintf(format, args...))
}

// Indisponivel marca uma falha do meio de persistência.
func Indisponivel(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreIndisponivel, op, err)
}
