package fornecedor

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type fornecedorRequest struct {
	Nome     string `json:"nome"`
	NIF      string `json:"nif"`
	Email    string `json:"email"`
	Telefone string `json:"telefone"`
}

func (r fornecedorRequest) modelo() models.Fornecedor {
	return models.Fornecedor{Nome: r.Nome, NIF: r.NIF, Email: r.Email, Telefone: r.Telefone}
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// POST /fornecedores
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req fornecedorRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	f, err := h.Service.Criar(r.Context(), req.modelo())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, f)
}

// GET /fornecedores
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	fs, err := h.Service.Listar(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, fs)
}

// GET /fornecedores/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	f, err := h.Service.BuscarPorID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, f)
}

// PUT /fornecedores/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	var req fornecedorRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	f, err := h.Service.Atualizar(r.Context(), mux.Vars(r)["id"], req.modelo())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, f)
}

// DELETE /fornecedores/{id}
func (h *Handler) Remover(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Remover(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
