package backup

import (
	"net/http"

	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type exportarResponse struct {
	Arquivo      string `json:"arquivo"`
	Fornecedores int    `json:"fornecedores"`
	Pagamentos   int    `json:"pagamentos"`
	Fundos       int    `json:"fundos"`
	Cheques      int    `json:"cheques"`
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// POST /backups
func (h *Handler) Exportar(w http.ResponseWriter, r *http.Request) {
	arquivo, snap, err := h.Service.Exportar(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, exportarResponse{
		Arquivo:      arquivo,
		Fornecedores: len(snap.Fornecedores),
		Pagamentos:   len(snap.Pagamentos),
		Fundos:       len(snap.Fundos),
		Cheques:      len(snap.Cheques),
	})
}

// POST /backups/restaurar
func (h *Handler) Restaurar(w http.ResponseWriter, r *http.Request) {
	var snap Snapshot
	if err := utils.DecodificarJSON(r, &snap); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	if err := h.Service.Restaurar(r.Context(), snap); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
