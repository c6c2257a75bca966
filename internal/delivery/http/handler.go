package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wellnesslens/backend/internal/domain"
	"github.com/wellnesslens/backend/internal/usecase"
)

// AnalyzeRequest is the body of POST /api/v1/analysis. Profile is optional;
// when absent the saved profile for the page key (or the default profile)
// is used.
type AnalyzeRequest struct {
	PageKey string               `json:"pageKey" binding:"required"`
	Record  domain.ProductRecord `json:"record"`
	Profile *domain.UserProfile  `json:"profile,omitempty"`
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	orchestrator *usecase.Orchestrator
	prober       domain.CapabilityProber
	profiles     domain.ProfileStore
}

// NewHandler creates a new HTTP handler
func NewHandler(orchestrator *usecase.Orchestrator, prober domain.CapabilityProber, profiles domain.ProfileStore) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		prober:       prober,
		profiles:     profiles,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "wellnesslens-backend",
		"version": "1.0.0",
	})
}

// Analyze runs the analysis pipeline for one product page and returns the
// resulting payload. A second request for a page key that is already being
// analyzed is dropped with 409.
func (h *Handler) Analyze(c *gin.Context) {
	if h.orchestrator == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Analysis pipeline not configured"})
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	profile := req.Profile
	if profile == nil {
		profile = h.loadProfile(c, req.PageKey)
	}

	payload, err := h.orchestrator.Run(c.Request.Context(), req.PageKey, &req.Record, profile)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRecord):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product record must include a title"})
		case errors.Is(err, domain.ErrAnalysisBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "Analysis already running for this page"})
		default:
			// Generic failure only; details stay in the server log.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed"})
		}
		return
	}

	c.JSON(http.StatusOK, payload)
}

// Capabilities reports which on-device capabilities the gateway has ready.
func (h *Handler) Capabilities(c *gin.Context) {
	if h.prober == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Capability probe not configured"})
		return
	}
	c.JSON(http.StatusOK, h.prober.Probe(c.Request.Context()))
}

// GetProfile returns the saved profile for a page context key, falling
// back to the default profile when none has been saved.
func (h *Handler) GetProfile(c *gin.Context) {
	if h.profiles == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Profile store not configured"})
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			c.JSON(http.StatusOK, domain.DefaultProfile())
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// PutProfile saves a profile for a page context key.
func (h *Handler) PutProfile(c *gin.Context) {
	if h.profiles == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "Profile store not configured"})
		return
	}

	var profile domain.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid profile body: " + err.Error()})
		return
	}
	if profile.Condition == "" {
		profile.Condition = domain.DefaultCondition
	}

	if err := h.profiles.Put(c.Request.Context(), c.Param("key"), &profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// loadProfile reads the saved profile for a key, applying the default
// profile on a miss or store failure.
func (h *Handler) loadProfile(c *gin.Context, pageKey string) *domain.UserProfile {
	if h.profiles == nil {
		return domain.DefaultProfile()
	}
	profile, err := h.profiles.Get(c.Request.Context(), pageKey)
	if err != nil {
		return domain.DefaultProfile()
	}
	return profile
}
