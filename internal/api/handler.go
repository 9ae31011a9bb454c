package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/upforaride/server/internal/models"
	"github.com/upforaride/server/internal/observability"
	"github.com/upforaride/server/internal/ocr"
	"github.com/upforaride/server/internal/service"
)

// Handler wires the HTTP surface to the service layer.
type Handler struct {
	svc    service.Service
	ocr    *ocr.Client
	logger *slog.Logger
}

// NewHandler creates a new API handler. The OCR client may be nil when
// no API key is configured; the endpoint then reports a server error.
func NewHandler(svc service.Service, ocrClient *ocr.Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:    svc,
		ocr:    ocrClient,
		logger: logger,
	}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/state", h.getState)
		api.POST("/rides", h.createRide)
		api.PUT("/rides/:id", h.updateRide)
		api.POST("/costs", h.createCost)
		api.POST("/wear-payments", h.createWearPayment)
		api.POST("/odometer-ocr", h.odometerOcr)

		api.GET("/users", h.listUsers)
		api.GET("/users/:id/stats", h.userStats)
		api.GET("/settlement", h.getSettlement)
	}
}

func (h *Handler) getState(c *gin.Context) {
	state, err := h.svc.GetState(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) createRide(c *gin.Context) {
	var req models.CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.svc.StartRide(c.Request.Context(), req); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OkResponse{Ok: true})
}

func (h *Handler) updateRide(c *gin.Context) {
	var req models.UpdateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.svc.UpdateRide(c.Request.Context(), c.Param("id"), req); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OkResponse{Ok: true})
}

func (h *Handler) createCost(c *gin.Context) {
	var req models.CreateCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.svc.AddCost(c.Request.Context(), req); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OkResponse{Ok: true})
}

func (h *Handler) createWearPayment(c *gin.Context) {
	var req models.CreateWearPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if _, err := h.svc.AddWearPayment(c.Request.Context(), req); err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OkResponse{Ok: true})
}

func (h *Handler) odometerOcr(c *gin.Context) {
	var req models.OdometerOcrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	if h.ocr == nil {
		observability.OcrRequestsTotal.WithLabelValues("unconfigured").Inc()
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "OCR_NOT_CONFIGURED",
			Message: "OCR API key not configured on server",
		})
		return
	}

	reading, err := h.ocr.Recognize(c.Request.Context(), req.ImageData)
	if err != nil {
		observability.OcrRequestsTotal.WithLabelValues("error").Inc()
		h.logger.Error("odometer ocr failed", "error", err)
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Status:  "error",
			Code:    "OCR_FAILED",
			Message: "OCR API call failed",
		})
		return
	}

	resp := models.OdometerOcrResponse{
		Value:      reading.Value,
		RawText:    reading.RawText,
		DigitsOnly: reading.DigitsOnly,
	}
	if reading.RawText == "" {
		resp.Message = "No text detected"
	}

	observability.OcrRequestsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listUsers(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Users())
}

func (h *Handler) userStats(c *gin.Context) {
	summary, err := h.svc.UserStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) getSettlement(c *gin.Context) {
	summaries, err := h.svc.Settlement(c.Request.Context())
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "BAD_REQUEST",
		Message: err.Error(),
	})
}

// serviceError maps service failures onto the wire: validation failures
// are 400 with the user-facing message, unknown rides/users are 404,
// everything else is a logged 500.
func (h *Handler) serviceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "VALIDATION",
			Message: ve.Message,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Status:  "error",
			Code:    "NOT_FOUND",
			Message: err.Error(),
		})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Status:  "error",
			Code:    "INTERNAL",
			Message: "internal error",
		})
	}
}
