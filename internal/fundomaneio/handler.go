package fundomaneio

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/KromaEnergia/api-tesouraria/internal/apperr"
	"github.com/KromaEnergia/api-tesouraria/internal/models"
	"github.com/KromaEnergia/api-tesouraria/internal/utils"
)

type abrirRequest struct {
	Mes          string          `json:"mes"`
	SaldoInicial decimal.Decimal `json:"saldoInicial"`
}

type movimentoRequest struct {
	SaldoInicial decimal.Decimal      `json:"saldoInicial"`
	Data         time.Time            `json:"data"`
	Tipo         models.TipoMovimento `json:"tipo"`
	Valor        decimal.Decimal      `json:"valor"`
	Descricao    string               `json:"descricao"`
}

type saldoResponse struct {
	Mes   models.Mes      `json:"mes"`
	Saldo decimal.Decimal `json:"saldo"`
}

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func mesDaRota(r *http.Request) (models.Mes, error) {
	mes, err := models.ParseMes(mux.Vars(r)["mes"])
	if err != nil {
		return "", apperr.Validacao("%v", err)
	}
	return mes, nil
}

// GET /fundos
func (h *Handler) Listar(w http.ResponseWriter, r *http.Request) {
	fundos, err := h.Service.Listar(r.Context())
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, fundos)
}

// POST /fundos
func (h *Handler) Abrir(w http.ResponseWriter, r *http.Request) {
	var req abrirRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	mes, err := models.ParseMes(req.Mes)
	if err != nil {
		utils.ResponderErro(w, apperr.Validacao("%v", err))
		return
	}
	fundo, err := h.Service.Abrir(r.Context(), mes, req.SaldoInicial)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, fundo)
}

// GET /fundos/{mes}
func (h *Handler) BuscarPorMes(w http.ResponseWriter, r *http.Request) {
	mes, err := mesDaRota(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	fundo, err := h.Service.BuscarPorMes(r.Context(), mes)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, fundo)
}

// GET /fundos/{mes}/saldo
func (h *Handler) Saldo(w http.ResponseWriter, r *http.Request) {
	mes, err := mesDaRota(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	saldo, err := h.Service.SaldoAtual(r.Context(), mes)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, saldoResponse{Mes: mes, Saldo: saldo})
}

// POST /fundos/{mes}/movimentos
func (h *Handler) AdicionarMovimento(w http.ResponseWriter, r *http.Request) {
	mes, err := mesDaRota(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	var req movimentoRequest
	if err := utils.DecodificarJSON(r, &req); err != nil {
		utils.ResponderErro(w, err)
		return
	}
	fundo, err := h.Service.AdicionarMovimento(r.Context(), mes, req.SaldoInicial, models.Movimento{
		Data:      req.Data,
		Tipo:      req.Tipo,
		Valor:     req.Valor,
		Descricao: req.Descricao,
	})
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, fundo)
}

// DELETE /fundos/{mes}/movimentos/{mid}
func (h *Handler) RemoverMovimento(w http.ResponseWriter, r *http.Request) {
	mes, err := mesDaRota(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	fundo, err := h.Service.RemoverMovimento(r.Context(), mes, mux.Vars(r)["mid"])
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusOK, fundo)
}

// POST /fundos/{mes}/transportar
func (h *Handler) TransportarSaldo(w http.ResponseWriter, r *http.Request) {
	mes, err := mesDaRota(r)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	fundo, err := h.Service.TransportarSaldo(r.Context(), mes)
	if err != nil {
		utils.ResponderErro(w, err)
		return
	}
	utils.ResponderJSON(w, http.StatusCreated, fundo)
}
