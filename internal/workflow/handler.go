package workflow

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/auth"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type iniciarRequest struct {
	Etapas []models.EtapaWorkflow `json:"etapas"`
}

type transicaoRequest struct {
	Comments string `json:"comments"`
}

type Handler struct {
	Engine *Engine
	// EtapasPadrao é usada quando o pedido não traz etapas.
	EtapasPadrao []models.EtapaWorkflow
}

func NewHandler(e *Engine, etapasPadrao []models.EtapaWorkflow) *Handler {
	return &Handler{Engine: e, EtapasPadrao: etapasPadrao}
}

func atorDoPedido(r *http.Request) (models.Ator, error) {
	ator, ok := auth.AtorDoContexto(r.Context())
	if !ok {
		return models.Ator{}, apperr.NaoAutorizado("pedido sem ator autenticado")
	}
	return ator, nil
}

// POST /pagamentos/{id}/workflow
func (h *Handler) Iniciar(w http.ResponseWriter, r *http.Request) {
	var req iniciarRequest
	if r.ContentLength != 0 {
		if err := utils.DecodificarJSON(r, &req); err != nil {
			utils.ResponderErro(w, err)
			return
		}
	}
	etapas := req.Etapas
	if len(etapas) == 0 {
		etapas = h.EtapasPadrao
	}
	p, err := h.Engine.Iniciar(r.Context(), mux.Vars(r)["id"], etapas)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// POST /pagamentos/{id}/aprovar
func (h *Handler) Aprovar(w http.ResponseWriter, r *http.Request) {
	h.transitar(w, r, h.Engine.Aprovar)
}

// POST /pagamentos/{id}/rejeitar
func (h *Handler) Rejeitar(w http.ResponseWriter, r *http.Request) {
	h.transitar(w, r, h.Engine.Rejeitar)
}

func (h *Handler) transitar(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string, ator models.Ator, comentarios string) (models.Pagamento, error)) {
	ator, err := atorDoPedido(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	var req transicaoRequest
	if r.ContentLength != 0 {
		if err := utils.DecodificarJSON(r, &req); err != nil {
			utils.ResponderErro(w, err)
			return
		}
	}
	p, err := op(r.Context(), mux.Vars(r)["id"], ator, req.Comments)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// GET /workflow/pendentes
func (h *Handler) Pendentes(w http.ResponseWriter, r *http.Request) {
	ator, err := atorDoPedido(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	pagamentos, err := h.Engine.Pendentes(r.Context(), ator)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, pagamentos)
}
