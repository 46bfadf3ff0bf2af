package usuario

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type loginRequest struct {
	Username string `json:"username"`
	Senha    string `json:"senha"`
}

type criarRequest struct {
	Username string `json:"username"`
	Nome     string `json:"nome"`
	Role     string `json:"role"`
	Senha    string `json:"senha"`
}

type criarResponse struct {
	models.Usuario
	SenhaTemporaria string `json:"senhaTemporaria,omitempty"`
}

type roleRequest struct {
	Role  string `json:"role"`
	Ativo *bool  `json:"ativo"`
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	sessao, err := h.Service.Login(r.Context(), req.Username, req.Senha)
	if errors.Is(err, ErrCredenciais) {
		utils.ResponderJSON(w, http.StatusUnauthorized, map[string]string{"erro": err.Error()})
		return
	}
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, sessao)
}

// GET /usuarios
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	us, err := h.Service.Listar(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, us)
}

// POST /usuarios
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req criarRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	u, temporaria, err := h.Service.Criar(r.Context(), models.Usuario{Username: req.Username, Nome: req.Nome, Role: req.Role}, req.Senha)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, criarResponse{Usuario: u, SenhaTemporaria: temporaria})
}

// PUT /usuarios/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	u, err := h.Service.AtualizarRole(r.Context(), mux.Vars(r)["id"], req.Role, req.Ativo)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, u)
}

// DELETE /usuarios/{id}
func (h *Handler) Remover(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Remover(r.Context(), mux.Vars(r)["id"]); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
