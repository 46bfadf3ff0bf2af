package utils

import (
	"crypto/rand"
	"errors"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
)

// Sem caracteres ambíguos (0/O, 1/l/I) porque a senha temporária é ditada ao utilizador.
const (
	alfabetoSenha     = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	tamanhoTemporaria = 12
)

// HashSenha devolve o hash bcrypt. O bcrypt ignora bytes além do 72.º, por
// isso senhas mais longas são recusadas.
func HashSenha(senha string) (string, error) {
	if senha == "" {
		return "", apperr.Validacao("senha vazia")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperr.Validacao("senha com mais de 72 bytes")
	}
	return string(hash), err
}

func VerificarSenha(hash, senha string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}

func GerarSenhaTemporaria() (string, error) {
	limite := big.NewInt(int64(len(alfabetoSenha)))
	senha := make([]byte, tamanhoTemporaria)
	for i := range senha {
		n, err := rand.Int(rand.Reader, limite)
		if err != nil {
			return "", err
		}
		senha[i] = alfabetoSenha[n.Int64()]
	}
	return string(senha), nil
}
