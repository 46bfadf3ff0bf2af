package reconciliacao

import (
	"net/http"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type vincularRequest struct {
	Origem  models.RefItem `json:"origem"`
	Destino models.RefItem `json:"destino"`
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// GET /reconciliacao/itens
func (h *Handler) ListarItens(w http.ResponseWriter, r *http.Request) {
	itens, err := h.Service.Itens(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, itens)
}

// GET /reconciliacao/candidatos?tipo=pagamento&id=...
func (h *Handler) ListarCandidatos(w http.ResponseWriter, r *http.Request) {
	ref := models.RefItem{
		Tipo: models.TipoItem(r.URL.Query().Get("tipo")),
		ID:   r.URL.Query().Get("id"),
	}
	itens, err := h.Service.Candidatos(r.Context(), ref)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, itens)
}

// POST /reconciliacao/vincular
func (h *Handler) Vincular(w http.ResponseWriter, r *http.Request) {
	var req vincularRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	p, err := h.Service.Vincular(r.Context(), req.Origem, req.Destino)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// POST /reconciliacao/desvincular
func (h *Handler) Desvincular(w http.ResponseWriter, r *http.Request) {
	var ref models.RefItem
	if err := utils.DecodificarJSON(r, &ref); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	if err := h.Service.Desvincular(r.Context(), ref); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
