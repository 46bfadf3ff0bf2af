package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type ctxKey string

const ctxAtor ctxKey = "ator"

// ComAtor devolve um contexto com o ator autenticado.
func ComAtor(ctx context.Context, ator models.Ator) context.Context {
	return context.WithValue(ctx, ctxAtor, ator)
}

// AtorDoContexto lê o ator colocado pelo middleware.
func AtorDoContexto(ctx context.Context) (models.Ator, bool) {
	ator, ok := ctx.Value(ctxAtor).(models.Ator)
	return ator, ok
}

// Middleware exige um Bearer token válido e coloca o ator no contexto.
func (e *Emissor) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			utils.ResponderJSON(w, http.StatusUnauthorized, map[string]string{"erro": "token ausente"})
			return
		}
		claims, err := e.ValidarToken(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			utils.ResponderJSON(w, http.StatusUnauthorized, map[string]string{"erro": "token inválido"})
			return
		}
		next.ServeHTTP(w, r.WithContext(ComAtor(r.Context(), claims.Ator())))
	})
}

// RequireAdmin deixa passar só atores com role admin.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ator, ok := AtorDoContexto(r.Context())
		if !ok || !ator.Admin() {
			utils.ResponderJSON(w, http.StatusForbidden, map[string]string{"erro": "apenas administradores"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
