// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/pdiddy/research-radar/internal/annotate"
	"github.com/pdiddy/research-radar/internal/gateway"
	"github.com/pdiddy/research-radar/internal/session"
	"github.com/pdiddy/research-radar/pkg/types"
)

const wsWriteTimeout = 5 * time.Second

type handler struct {
	session        Session
	log            *zap.Logger
	originPatterns []string
}

// apiError is the error envelope of every non-2xx response.
type apiError struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func respondError(c *gin.Context, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, apiError{Error: errorBody{Message: msg, Code: code}})
}

// refreshResponse is a snapshot plus the populate counts.
type refreshResponse struct {
	session.Snapshot
	Summary gateway.IngestSummary `json:"summary"`
}

type scoreRequest struct {
	Score *int `json:"score" binding:"required"`
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) items(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.View())
}

func (h *handler) item(c *gin.Context) {
	e, ok := h.session.Entity(c.Param("id"))
	if !ok {
		respondError(c, http.StatusNotFound, "not_found", nil)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *handler) filters(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Criteria())
}

func (h *handler) updateFilters(c *gin.Context) {
	var patch types.CriteriaPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	snap, err := h.session.UpdateFilters(patch)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_criteria", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *handler) resetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.ResetFilters())
}

func (h *handler) refresh(c *gin.Context) {
	snap, summary := h.session.RefreshData(c.Request.Context())
	c.JSON(http.StatusOK, refreshResponse{Snapshot: snap, Summary: summary})
}

func (h *handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Stats())
}

// toggle adapts one of the session's toggle methods to a handler.
func (h *handler) toggle(fn func(ctx context.Context, id string) (session.Snapshot, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := fn(c.Request.Context(), c.Param("id"))
		if err != nil {
			h.log.Error("annotation failed", zap.String("id", c.Param("id")), zap.Error(err))
			respondError(c, http.StatusInternalServerError, "write_failed", err)
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}

func (h *handler) score(c *gin.Context) {
	id := c.Param("id")
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if _, ok := h.session.Entity(id); !ok {
		respondError(c, http.StatusNotFound, "not_found", nil)
		return
	}

	snap, err := h.session.SetUserScore(c.Request.Context(), id, *req.Score)
	switch {
	case errors.Is(err, annotate.ErrInvalidScore):
		respondError(c, http.StatusBadRequest, "invalid_score", err)
	case err != nil:
		h.log.Error("setting score failed", zap.String("id", id), zap.Error(err))
		respondError(c, http.StatusInternalServerError, "write_failed", err)
	default:
		c.JSON(http.StatusOK, snap)
	}
}

// stream upgrades to a websocket and pushes every session snapshot until
// the client goes away.
func (h *handler) stream(w http.ResponseWriter, r *http.Request) {
	opts := &websocket.AcceptOptions{OriginPatterns: h.originPatterns}
	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	updates, unsubscribe := h.session.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case snap, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			wctx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := wsjson.Write(wctx, conn, snap)
			cancel()
			if err != nil {
				h.log.Debug("websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
