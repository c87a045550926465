package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aniwa/aniwa-server/internal/api/metrics"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

// SyncDispatcher is the interface the handler uses to enqueue sync jobs.
type SyncDispatcher interface {
	Enqueue(job ports.SyncJobInput)
}

// SyncHandler handles metadata import requests. Jobs run asynchronously on
// the sharded worker pool, so the handler answers 202 immediately.
type SyncHandler struct {
	dispatcher SyncDispatcher
}

func NewSyncHandler(dispatcher SyncDispatcher) *SyncHandler {
	return &SyncHandler{dispatcher: dispatcher}
}

type syncRequest struct {
	SourceID string `json:"source_id" validate:"required"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

// Trigger handles POST /v1/admin/sync — enqueues one import, returns 202.
//
// @Summary      Import or refresh a catalog entry from the metadata provider
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      syncRequest  true  "Source ID to import"
// @Success      202   {object}  acceptedResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/admin/sync [post]
func (h *SyncHandler) Trigger(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.dispatcher.Enqueue(ports.SyncJobInput{
		SourceID:    req.SourceID,
		RequestedBy: id.UserID,
	})
	metrics.SyncJobsEnqueuedTotal.Inc()

	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "sync accepted"})
}
