package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
)

// StatusDoErro traduz a taxonomia de apperr para o código HTTP.
func StatusDoErro(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidacao):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrNaoEncontrado):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrNaoAutorizado):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrEstadoTerminal), errors.Is(err, apperr.ErrFundoDuplicado):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrSaldoInsuficiente):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperr.ErrStoreIndisponivel):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ResponderErro escreve {"erro": "..."} com o status correspondente.
// Erros internos não expõem a mensagem original.
func ResponderErro(w http.ResponseWriter, err error) {
	status := StatusDoErro(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "erro interno"
	}
	ResponderJSON(w, status, map[string]string{"erro": msg})
}

func ResponderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// DecodificarJSON lê o corpo do pedido; corpo malformado é erro de validação.
func DecodificarJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validacao("JSON inválido: %v", err)
	}
	return nil
}
