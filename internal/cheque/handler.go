package cheque

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type emitirRequest struct {
	Numero       string          `json:"numero"`
	Valor        decimal.Decimal `json:"valor"`
	Beneficiario string          `json:"beneficiario"`
	Banco        string          `json:"banco"`
	DataEmissao  time.Time       `json:"dataEmissao"`
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// GET /cheques
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	cheques, err := h.Service.Listar(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, cheques)
}

// GET /cheques/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.BuscarPorID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, c)
}

// POST /cheques
func (h *Handler) Emitir(w http.ResponseWriter, r *http.Request) {
	var req emitirRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	c, err := h.Service.Emitir(r.Context(), models.Cheque{
		Numero:       req.Numero,
		Valor:        req.Valor,
		Beneficiario: req.Beneficiario,
		Banco:        req.Banco,
		DataEmissao:  req.DataEmissao,
	})
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, c)
}

// POST /cheques/{id}/compensar
func (h *Handler) Compensar(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Compensar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, c)
}

// POST /cheques/{id}/cancelar
func (h *Handler) Cancelar(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Cancelar(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, c)
}

// GET /transacoes
func (h *Handler) ListarTransacoes(w http.ResponseWriter, r *http.Request) {
	transacoes, err := h.Service.ListarTransacoes(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, transacoes)
}
