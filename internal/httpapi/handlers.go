package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"support-lookup/internal/apperr"
	"support-lookup/internal/calls"
	"support-lookup/internal/clock"
	"support-lookup/internal/customers"
	"support-lookup/internal/deadline"
	"support-lookup/internal/protocols"
	"support-lookup/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Service contracts the handlers depend on.

type CustomerLookup interface {
	GetByTaxID(ctx context.Context, taxID string) (customers.Customer, error)
}

type CallRegistrar interface {
	Register(ctx context.Context, protocol, callID string) (calls.Registration, error)
}

type ProtocolResolver interface {
	GetByProtocol(ctx context.Context, protocol string) (protocols.ProtocolDetail, error)
	FindActiveByPhone(ctx context.Context, phone string, now time.Time, windowHours int) (protocols.ProtocolDetail, error)
	Describe(d protocols.ProtocolDetail, now time.Time, windowHours int) protocols.DetailView
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Customers CustomerLookup
	Calls     CallRegistrar
	Protocols ProtocolResolver

	Clock       clock.Clock
	WindowHours int

	// Ready reports whether the store is reachable. Optional.
	Ready func(ctx context.Context) error
}

const (
	msgInternal          = "Erro interno do servidor."
	msgCPFRequired       = "O parâmetro CPF é obrigatório"
	msgCustomerNotFound  = "Cliente não encontrado"
	msgCallFieldsMissing = "Os campos protocolo e id_chamada são obrigatórios."
	msgInvalidJSON       = "Corpo da requisição inválido."
	msgProtocolRequired  = "O parâmetro protocolo é obrigatório."
	msgProtocolNotFound  = "Protocolo não encontrado."
	msgPhoneRequired     = "O parâmetro telefone é obrigatório."
)

// Register mounts the lookup routes.
func (h Handlers) Register(r gin.IRoutes) {
	r.GET("/cliente", h.GetCustomer)
	r.POST("/registrar-chamada", h.RegisterCall)
	r.GET("/consultar-protocolo/:protocolo", h.GetProtocol)
	r.GET("/consultar-por-telefone", h.GetActiveProtocolByPhone)
}

func (h Handlers) now() time.Time {
	if h.Clock == nil {
		return clock.System{}.Now()
	}
	return h.Clock.Now()
}

func (h Handlers) windowHours() int {
	if h.WindowHours <= 0 {
		return deadline.DefaultWindowHours
	}
	return h.WindowHours
}

// --- Customers ---

// GetCustomer handles GET /cliente?cpf=.
func (h Handlers) GetCustomer(c *gin.Context) {
	if h.Customers == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": msgInternal})
		return
	}
	cust, err := h.Customers.GetByTaxID(c.Request.Context(), c.Query("cpf"))
	if err != nil {
		writeError(c, err, msgCPFRequired, msgCustomerNotFound)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// --- Calls ---

// RegisterCall handles POST /registrar-chamada.
func (h Handlers) RegisterCall(c *gin.Context) {
	if h.Calls == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": msgInternal})
		return
	}
	var req calls.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": msgInvalidJSON})
		return
	}

	reg, err := h.Calls.Register(c.Request.Context(), req.Protocol, req.CallID)
	if err != nil {
		writeError(c, err, msgCallFieldsMissing, "")
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// --- Protocols ---

// GetProtocol handles GET /consultar-protocolo/:protocolo and returns the
// deadline-enriched projection.
func (h Handlers) GetProtocol(c *gin.Context) {
	if h.Protocols == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": msgInternal})
		return
	}
	d, err := h.Protocols.GetByProtocol(c.Request.Context(), c.Param("protocolo"))
	if err != nil {
		writeError(c, err, msgProtocolRequired, msgProtocolNotFound)
		return
	}
	// The store read completes before the policy runs.
	c.JSON(http.StatusOK, h.Protocols.Describe(d, h.now(), h.windowHours()))
}

// GetActiveProtocolByPhone handles GET /consultar-por-telefone?telefone= and
// returns the raw active row.
func (h Handlers) GetActiveProtocolByPhone(c *gin.Context) {
	if h.Protocols == nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": msgInternal})
		return
	}
	window := h.windowHours()
	d, err := h.Protocols.FindActiveByPhone(c.Request.Context(), c.Query("telefone"), h.now(), window)
	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"mensagem": fmt.Sprintf("Nenhum protocolo ativo encontrado para este telefone nas últimas %d horas.", window),
		})
		return
	}
	if err != nil {
		writeError(c, err, msgPhoneRequired, "")
		return
	}
	c.JSON(http.StatusOK, d)
}

// --- Health ---

func (h Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h Handlers) Readyz(c *gin.Context) {
	if h.Ready != nil {
		if err := h.Ready(c.Request.Context()); err != nil {
			logger.FromGin(c).Warn("readiness check failed", "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// writeError maps the error taxonomy to a status and a single-field body.
// Store details are logged, never returned.
func writeError(c *gin.Context, err error, validationMsg, notFoundMsg string) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"erro": validationMsg})
	case errors.Is(err, apperr.ErrNotFound) && notFoundMsg != "":
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"erro": notFoundMsg})
	default:
		logger.FromGin(c).Error("request failed", "err", err, "store", apperr.IsStore(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"erro": msgInternal})
	}
}
