// Package api exposes the discovery pipeline over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/northstar-funding/discovery/internal/database"
	"github.com/northstar-funding/discovery/internal/domain"
	"github.com/northstar-funding/discovery/internal/logger"
	"github.com/northstar-funding/discovery/internal/registry"
	"github.com/northstar-funding/discovery/internal/search"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// SearchService runs one multi-provider discovery pass.
type SearchService interface {
	ExecuteMultiProviderSearch(ctx context.Context, keywordQuery, aiOptimizedQuery string,
		maxResults int, sessionID uuid.UUID) (*search.ExecutionResult, error)
}

// DomainService is the registry surface the admin endpoints need.
type DomainService interface {
	Get(ctx context.Context, name string) (*domain.Domain, error)
	Blacklist(ctx context.Context, name string, actorID uuid.UUID, reason string) (*domain.Domain, error)
	MarkNoFundsThisYear(ctx context.Context, name string, year int) (*domain.Domain, error)
	FindReadyForRetry(ctx context.Context, now time.Time) ([]domain.Domain, error)
}

// DomainLister lists registry records for review.
type DomainLister interface {
	List(ctx context.Context, status domain.DomainStatus, limit int) ([]domain.Domain, error)
}

// SessionService creates and reads discovery session records.
type SessionService interface {
	Create(ctx context.Context, s *domain.DiscoverySession) error
	GetByID(ctx context.Context, sessionID uuid.UUID) (*domain.DiscoverySession, error)
}

// CandidateService reads and reviews persisted candidates.
type CandidateService interface {
	ListByStatus(ctx context.Context, status domain.CandidateStatus, limit int) ([]domain.Candidate, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.CandidateStatus) error
}

// Pinger reports database liveness for the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler handles HTTP requests for the discovery API.
type Handler struct {
	searcher   SearchService
	domains    DomainService
	lister     DomainLister
	sessions   SessionService
	candidates CandidateService
	db         Pinger
	maxResults int
	log        logger.Logger
}

// NewHandler creates a new API handler. db may be nil; the readiness probe
// then only reports process liveness.
func NewHandler(
	searcher SearchService,
	domains DomainService,
	lister DomainLister,
	sessions SessionService,
	candidates CandidateService,
	db Pinger,
	maxResults int,
	log logger.Logger,
) *Handler {
	return &Handler{
		searcher:   searcher,
		domains:    domains,
		lister:     lister,
		sessions:   sessions,
		candidates: candidates,
		db:         db,
		maxResults: maxResults,
		log:        log,
	}
}

// StartDiscovery handles POST /api/v1/discovery/search.
func (h *Handler) StartDiscovery(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid discovery request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.AIOptimizedQuery == "" {
		req.AIOptimizedQuery = req.KeywordQuery
	}
	if req.MaxResults <= 0 || req.MaxResults > h.maxResults {
		req.MaxResults = h.maxResults
	}

	session := &domain.DiscoverySession{
		ID:               uuid.New(),
		Status:           domain.SessionStatusRunning,
		KeywordQuery:     req.KeywordQuery,
		AIOptimizedQuery: req.AIOptimizedQuery,
		StartedAt:        time.Now().UTC(),
	}
	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.log.Error("session creation failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}

	h.log.Info("discovery session started",
		logger.String("session_id", session.ID.String()),
		logger.String("keyword_query", req.KeywordQuery))

	result, err := h.searcher.ExecuteMultiProviderSearch(
		c.Request.Context(), req.KeywordQuery, req.AIOptimizedQuery, req.MaxResults, session.ID)
	if err != nil {
		if errors.Is(err, search.ErrAllProvidersFailed) {
			c.JSON(http.StatusBadGateway, gin.H{
				"session_id": session.ID,
				"status":     domain.SessionStatusFailed,
				"error":      err.Error(),
			})
			return
		}
		h.log.Error("discovery failed",
			logger.String("session_id", session.ID.String()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, SearchResponse{
		SessionID:       session.ID,
		Status:          domain.SessionStatusCompleted,
		Statistics:      result.Statistics,
		CandidatesFound: len(result.Candidates),
		Candidates:      result.Candidates,
		Errors:          toProviderErrors(result.Errors),
	})
}

// GetSession handles GET /api/v1/sessions/:id.
func (h *Handler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		h.log.Error("failed to get session",
			logger.String("session_id", sessionID.String()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get session"})
		return
	}

	c.JSON(http.StatusOK, session)
}

// ListDomains handles GET /api/v1/domains.
func (h *Handler) ListDomains(c *gin.Context) {
	status := domain.DomainStatus(c.Query("status"))
	limit := parseLimit(c.Query("limit"))

	domains, err := h.lister.List(c.Request.Context(), status, limit)
	if err != nil {
		h.log.Error("failed to list domains", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list domains"})
		return
	}

	c.JSON(http.StatusOK, DomainsListResponse{Domains: domains, Total: len(domains)})
}

// GetDomain handles GET /api/v1/domains/:name.
func (h *Handler) GetDomain(c *gin.Context) {
	name := c.Param("name")

	d, err := h.domains.Get(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, registry.ErrDomainNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
			return
		}
		h.log.Error("failed to get domain", logger.String("domain", name), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get domain"})
		return
	}

	c.JSON(http.StatusOK, d)
}

// BlacklistDomain handles POST /api/v1/domains/:name/blacklist.
func (h *Handler) BlacklistDomain(c *gin.Context) {
	name := c.Param("name")

	var req BlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid blacklist request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := h.domains.Blacklist(c.Request.Context(), name, req.BlacklistedBy, req.Reason)
	if err != nil {
		h.log.Error("failed to blacklist domain",
			logger.String("domain", name), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist domain"})
		return
	}

	h.log.Info("domain blacklisted",
		logger.String("domain", name),
		logger.String("blacklisted_by", req.BlacklistedBy.String()),
		logger.String("reason", req.Reason))

	c.JSON(http.StatusOK, d)
}

// MarkNoFunds handles POST /api/v1/domains/:name/no-funds.
func (h *Handler) MarkNoFunds(c *gin.Context) {
	name := c.Param("name")

	var req NoFundsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid no-funds request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Year == 0 {
		req.Year = time.Now().UTC().Year()
	}

	d, err := h.domains.MarkNoFundsThisYear(c.Request.Context(), name, req.Year)
	if err != nil {
		if errors.Is(err, registry.ErrDomainNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "domain not found"})
			return
		}
		h.log.Error("failed to mark domain no-funds",
			logger.String("domain", name), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark domain"})
		return
	}

	c.JSON(http.StatusOK, d)
}

// ListRetryReady handles GET /api/v1/domains/retry-ready.
func (h *Handler) ListRetryReady(c *gin.Context) {
	domains, err := h.domains.FindReadyForRetry(c.Request.Context(), time.Now().UTC())
	if err != nil {
		h.log.Error("failed to list retry-ready domains", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list domains"})
		return
	}

	c.JSON(http.StatusOK, DomainsListResponse{Domains: domains, Total: len(domains)})
}

// ListCandidates handles GET /api/v1/candidates.
func (h *Handler) ListCandidates(c *gin.Context) {
	status := domain.CandidateStatus(c.DefaultQuery("status", string(domain.CandidateStatusPendingReview)))
	limit := parseLimit(c.Query("limit"))

	candidates, err := h.candidates.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		h.log.Error("failed to list candidates", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list candidates"})
		return
	}

	c.JSON(http.StatusOK, CandidatesListResponse{Candidates: candidates, Total: len(candidates)})
}

// UpdateCandidateStatus handles POST /api/v1/candidates/:id/status.
func (h *Handler) UpdateCandidateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid candidate ID"})
		return
	}

	var req UpdateCandidateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid candidate status request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.candidates.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		if errors.Is(err, database.ErrCandidateNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "candidate not found"})
			return
		}
		h.log.Error("failed to update candidate",
			logger.String("candidate_id", id.String()), logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update candidate"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"candidate_id": id, "status": req.Status})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "discovery",
	})
}

// ReadyCheck handles GET /ready.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"checks": gin.H{"postgresql": err.Error()},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": gin.H{"postgresql": "ok"},
	})
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}
