package pagamento

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// POST /fornecedores/{id}/pagamentos
func (h *Handler) Criar(w http.ResponseWriter, r *http.Request) {
	var req pagamentoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	p, err := h.Service.Criar(r.Context(), mux.Vars(r)["id"], req.modelo())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, p)
}

// GET /fornecedores/{id}/pagamentos
func (h *Handler) ListarPorFornecedor(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Service.ListarPorFornecedor(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, ps)
}

// GET /pagamentos?estado=...
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Service.Listar(r.Context(), models.EstadoPagamento(r.URL.Query().Get("estado")))
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, ps)
}

// GET /pagamentos/resumo
func (h *Handler) Resumo(w http.ResponseWriter, r *http.Request) {
	resumo, err := h.Service.Resumo(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, resumo)
}

// GET /pagamentos/{id}
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.BuscarPorID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// PUT /pagamentos/{id}
func (h *Handler) Atualizar(w http.ResponseWriter, r *http.Request) {
	var req pagamentoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	p, err := h.Service.Atualizar(r.Context(), mux.Vars(r)["id"], req.modelo())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// POST /pagamentos/{id}/valor-pago
func (h *Handler) RegistrarValorPago(w http.ResponseWriter, r *http.Request) {
	var req valorPagoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	p, err := h.Service.RegistrarValorPago(r.Context(), mux.Vars(r)["id"], req.Valor)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, p)
}

// GET /pagamentos/{id}/documentos
func (h *Handler) DocumentosPendentes(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	faltam, err := h.Service.DocumentosPendentes(r.Context(), id)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, documentosResponse{PagamentoID: id, Pendentes: faltam})
}
