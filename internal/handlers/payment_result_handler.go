package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-result/internal/deeplink"
	"github.com/akylbek/payment-system/payment-result/internal/interfaces"
	"github.com/akylbek/payment-system/payment-result/internal/models"
	"github.com/akylbek/payment-system/payment-result/internal/service"
	"github.com/akylbek/payment-system/payment-result/internal/signal"
	"github.com/akylbek/payment-system/payment-result/internal/telemetry"
)

const (
	headerUserID   = "X-User-ID"
	headerClientID = "X-Client-ID"
)

type PaymentResultHandler struct {
	sessions *service.Sessions
	repo     interfaces.PaymentResultRepository
	intake   *deeplink.Intake
}

func NewPaymentResultHandler(resolver *service.Resolver, repo interfaces.PaymentResultRepository, intake *deeplink.Intake) *PaymentResultHandler {
	return &PaymentResultHandler{
		sessions: service.NewSessions(resolver),
		repo:     repo,
		intake:   intake,
	}
}

type resolveRequest struct {
	ClientID string            `json:"client_id"`
	UserID   string            `json:"user_id"`
	Params   map[string]string `json:"params"`
}

type retryRequest struct {
	ClientID  string `json:"client_id"`
	UserID    string `json:"user_id"`
	OrderCode string `json:"order_code"`
}

type deepLinkRequest struct {
	ClientID string `json:"client_id" binding:"required"`
	URL      string `json:"url" binding:"required"`
}

// Resolve mounts a result screen with the navigation params it was opened with.
func (h *PaymentResultHandler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := h.sessions.Open(req.ClientID, req.UserID, signal.FromMap(req.Params))
	result := session.Mount(c.Request.Context())

	c.JSON(http.StatusOK, result)
}

// Retry re-runs resolution on the client's screen. While a run is in flight,
// or once the screen shows success, the current result comes back unchanged.
func (h *PaymentResultHandler) Retry(c *gin.Context) {
	var req retryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session := h.sessions.Resume(req.ClientID, req.UserID, req.OrderCode)
	result, ran := session.Retry(c.Request.Context())
	if !ran {
		telemetry.Logger.Info("Retry ignored",
			zap.String("client_id", req.ClientID),
			zap.String("status", string(result.Status)),
		)
	}
	c.JSON(http.StatusOK, result)
}

// Unmount closes the client's result screen. Late results are dropped.
func (h *PaymentResultHandler) Unmount(c *gin.Context) {
	h.sessions.Close(c.Param("clientId"))
	c.Status(http.StatusNoContent)
}

// GatewayReturn handles the payment provider's return URL.
func (h *PaymentResultHandler) GatewayReturn(c *gin.Context) {
	session := h.sessions.Open(c.GetHeader(headerClientID), c.GetHeader(headerUserID), c.Request.URL.Query())
	result := session.Mount(c.Request.Context())

	c.JSON(http.StatusOK, result)
}

// DeepLink parks an inbound payment-result link for the client.
func (h *PaymentResultHandler) DeepLink(c *gin.Context) {
	var req deepLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.intake.Deliver(c.Request.Context(), req.ClientID, req.URL)
	switch {
	case errors.Is(err, models.ErrInvalidDeepLink), errors.Is(err, models.ErrEmptySignal), errors.Is(err, deeplink.ErrMissingClient):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		telemetry.Logger.Error("Error storing deep link",
			zap.String("client_id", req.ClientID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store deep link"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "pending", "client_id": req.ClientID})
}

// GetResult returns the last recorded result for an order.
func (h *PaymentResultHandler) GetResult(c *gin.Context) {
	orderCode := c.Param("orderCode")

	result, err := h.repo.GetByOrderCode(c.Request.Context(), orderCode)
	if errors.Is(err, models.ErrResultNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment result not found"})
		return
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payment result"})
		return
	}

	c.JSON(http.StatusOK, result)
}
