package handlers

import (
	"errors"
	"net/http"

	"motion_security/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK       = "ok"
	statusAccepted = "accepted"
	statusModeSet  = "mode_set"
	statusReloaded = "reloaded"

	errGetState        = "failed to load state"
	errSetMode         = "failed to set mode"
	errTriggerStopped  = "security system is shutting down"
	errReload          = "failed to reload identities"
	errInvalidBodyPref = "invalid body: "
)

// logAndJSONError logs err under logKey and writes userMsg.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// respondWithStatusAndState adds the current state to the response when it
// can be loaded.
func (h *Handler) respondWithStatusAndState(c *gin.Context, code int, status string, extra gin.H) {
	resp := gin.H{"status": status}
	for k, v := range extra {
		resp[k] = v
	}
	if st, err := h.services.Monitoring.GetState(c.Request.Context()); err == nil {
		resp["state"] = st
	}
	c.JSON(code, resp)
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetModeRequest documents the mode switch payload.
type SetModeRequest struct {
	// Operation mode. Allowed: auto, manual
	Mode string `json:"mode" example:"manual"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Get security state
// @Description  Light, mode, latest identity and session status
// @Tags         security
// @Produce      json
// @Success      200  {object}  models.SecurityState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/security/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "security_get_state_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Set operation mode
// @Description  In manual mode motion is ignored
// @Tags         security
// @Accept       json
// @Produce      json
// @Param        body  body      SetModeRequest  true  "Mode payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/security/mode [post]
// @Security     BearerAuth
func (h *Handler) setMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Security.SetMode(c.Request.Context(), service.ModeParams{Mode: req.Mode}); err != nil {
		if errors.Is(err, service.ErrInvalidMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errSetMode, "security_set_mode_failed", err, "mode", req.Mode)
		return
	}
	h.respondWithStatusAndState(c, http.StatusOK, statusModeSet, gin.H{"mode": h.services.Security.CurrentMode().String()})
}

// @Summary      Simulate motion
// @Description  Feeds one motion edge; the response runs in the background
// @Tags         security
// @Produce      json
// @Success      202  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/security/motion [post]
// @Security     BearerAuth
func (h *Handler) triggerMotion(c *gin.Context) {
	if err := h.services.Security.TriggerMotion(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrStopped) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errTriggerStopped})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, err.Error(), "security_trigger_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}

// @Summary      List registered identities
// @Tags         identities
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, identities"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/identities [get]
// @Security     BearerAuth
func (h *Handler) listIdentities(c *gin.Context) {
	ids := h.services.Identities.List(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"count": len(ids), "identities": ids})
}

// @Summary      Reload registered identities
// @Description  On failure the previous snapshot stays active
// @Tags         identities
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/identities/reload [post]
// @Security     BearerAuth
func (h *Handler) reloadIdentities(c *gin.Context) {
	n, err := h.services.Identities.Reload(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errReload, "identities_reload_failed", err, "kept", n)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusReloaded, "count": n})
}
