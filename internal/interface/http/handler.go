package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/astroml/internal/domain/reading"
)

// Handler wires the HTTP transport to the reading service.
type Handler struct {
	readingSvc reading.Service
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(readingSvc reading.Service, logger *slog.Logger) *Handler {
	return &Handler{
		readingSvc: readingSvc,
		logger:     logger.With("component", "http.handler"),
	}
}

// StartReading opens a new session in the input phase.
func (h *Handler) StartReading(c *gin.Context) {
	snap, err := h.readingSvc.Start(c.Request.Context())
	if err != nil {
		abortWithError(c, domainError(err, "reading_failed"))
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetReading returns the current session snapshot.
func (h *Handler) GetReading(c *gin.Context) {
	snap, err := h.readingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "reading_failed"))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// SubmitReading runs the natal flow and responds once the reading settles.
func (h *Handler) SubmitReading(c *gin.Context) {
	var req reading.BirthInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	snap, err := h.readingSvc.Submit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, domainError(err, "reading_failed"))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RequestDailyHoroscope attaches today's transit reading.
func (h *Handler) RequestDailyHoroscope(c *gin.Context) {
	snap, err := h.readingSvc.RequestDailyHoroscope(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "daily_horoscope_failed"))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ResetReading returns the session to the input phase.
func (h *Handler) ResetReading(c *gin.Context) {
	snap, err := h.readingSvc.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "reading_failed"))
		return
	}
	c.JSON(http.StatusOK, snap)
}

// EndReading discards the session.
func (h *Handler) EndReading(c *gin.Context) {
	if err := h.readingSvc.End(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, domainError(err, "reading_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportReading serves the reading document as a JSON attachment.
func (h *Handler) ExportReading(c *gin.Context) {
	doc, err := h.readingSvc.Export(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, domainError(err, "export_failed"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename()))
	c.IndentedJSON(http.StatusOK, doc)
}

// ComputeChart returns a chart without touching any session.
func (h *Handler) ComputeChart(c *gin.Context) {
	var req reading.ChartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.readingSvc.ComputeChart(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, domainError(err, "chart_failed"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Healthz reports liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
