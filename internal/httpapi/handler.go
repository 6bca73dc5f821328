// internal/httpapi/handler.go

// Package httpapi exposes the posting and search operations over HTTP.
package httpapi

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	commonerrors "tradeboard/internal/common/errors"
	"tradeboard/internal/common/logger"
	"tradeboard/internal/common/validation"
	"tradeboard/internal/models"
	"tradeboard/internal/posting"
	"tradeboard/internal/search"
	"tradeboard/internal/store"
)

// Handler wires the HTTP surface to the posting and search services.
// Sessions is optional; the session routes are registered only when a
// session store is configured.
type Handler struct {
	postings *posting.Service
	search   *search.Service
	store    store.Store
	sessions *search.SessionStore
	limits   search.Limits
	logger   logger.Logger
}

func NewHandler(
	postings *posting.Service,
	searchSvc *search.Service,
	st store.Store,
	sessions *search.SessionStore,
	limits search.Limits,
	log logger.Logger,
) *Handler {
	return &Handler{
		postings: postings,
		search:   searchSvc,
		store:    st,
		sessions: sessions,
		limits:   limits,
		logger:   log.WithFields(map[string]interface{}{"component": "httpapi"}),
	}
}

// Register mounts all routes on the app.
func (h *Handler) Register(app *fiber.App) {
	app.Post("/jobs", h.CreateJob)
	app.Get("/jobs", h.ListJobs)
	app.Get("/healthz", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if h.sessions != nil {
		app.Post("/search", h.StartSearch)
		app.Post("/search/:id/more", h.LoadMore)
	}
}

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	std := commonerrors.AsStandard(err)
	status := commonerrors.HTTPStatus(std.Code)
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed", map[string]interface{}{
			"path":  c.Path(),
			"code":  string(std.Code),
			"error": std.Details,
		})
	}
	return c.Status(status).JSON(fiber.Map{"error": std})
}

// CreateJob handles POST /jobs: schema validation, normalization, insert.
func (h *Handler) CreateJob(c *fiber.Ctx) error {
	body := c.Body()

	result, err := validation.ValidateSubmission(body)
	if err != nil {
		return h.writeError(c, commonerrors.NewValidationFailedError(err.Error()))
	}
	if !result.Valid {
		details := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			details = append(details, e.Field+": "+e.Message)
		}
		return h.writeError(c, commonerrors.NewValidationFailedError(strings.Join(details, "; ")))
	}

	var sub models.JobSubmission
	if err := json.Unmarshal(body, &sub); err != nil {
		return h.writeError(c, commonerrors.NewValidationFailedError(err.Error()))
	}

	id, err := h.postings.Create(c.UserContext(), sub)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

type listResponse struct {
	Jobs          []models.JobSummary `json:"jobs"`
	NextPageToken *string             `json:"nextPageToken"`
}

// ListJobs handles GET /jobs: one stateless page.
func (h *Handler) ListJobs(c *fiber.Ctx) error {
	req, err := parseSearchRequest(c)
	if err != nil {
		return h.writeError(c, err)
	}

	res, err := h.search.Page(c.UserContext(), req)
	if err != nil {
		return h.writeError(c, err)
	}

	resp := listResponse{Jobs: res.Jobs}
	if res.NextPageToken != "" {
		resp.NextPageToken = &res.NextPageToken
	}
	return c.JSON(resp)
}

// parseSearchRequest reads the listing query parameters. Integer parameters
// that fail to parse are a request-format fault, not an empty filter.
func parseSearchRequest(c *fiber.Ctx) (models.SearchRequest, error) {
	req := models.SearchRequest{
		Keywords: c.Query("keywords"),
		City:     c.Query("city"),
		Cursor:   c.Query("startAfter"),
	}

	if raw := c.Query("skills"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				req.Skills = append(req.Skills, s)
			}
		}
	}

	intParams := []struct {
		name string
		dst  *int
	}{
		{"limit", &req.PageSize},
		{"daysSincePosted", &req.DaysSincePosted},
		{"minDuration", &req.MinDurationRank},
		{"maxDuration", &req.MaxDurationRank},
	}
	for _, p := range intParams {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return models.SearchRequest{}, commonerrors.NewInvalidFilterFormatError(
				p.name + ": " + raw)
		}
		*p.dst = v
	}
	return req, nil
}

// Health handles GET /healthz with a store ping.
func (h *Handler) Health(c *fiber.Ctx) error {
	if err := h.store.Ping(c.UserContext()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"store":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

type sessionResponse struct {
	SessionID string              `json:"sessionId"`
	Jobs      []models.JobSummary `json:"jobs"`
	HasMore   bool                `json:"hasMore"`
}

// StartSearch handles POST /search: a fresh session executing page one.
// The session is persisted even when the first page is empty, so the client
// can retry "load more" later without repeating the filter payload.
func (h *Handler) StartSearch(c *fiber.Ctx) error {
	var req models.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return h.writeError(c, commonerrors.NewInvalidFilterFormatError(err.Error()))
	}

	sess := search.NewSession(h.store, h.limits)
	id := uuid.NewString()

	_, searchErr := sess.Search(c.UserContext(), req)
	if searchErr != nil && commonerrors.AsStandard(searchErr).Code != commonerrors.ErrCodeNoResults {
		return h.writeError(c, searchErr)
	}

	if err := h.sessions.Save(c.UserContext(), id, sess); err != nil {
		return h.writeError(c, commonerrors.NewStoreUnavailableError(err))
	}

	if searchErr != nil {
		return h.writeError(c, searchErr)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{
		SessionID: id,
		Jobs:      sess.Results(),
		HasMore:   sess.HasMore(),
	})
}

// LoadMore handles POST /search/:id/more: appends the next page to a
// persisted session.
func (h *Handler) LoadMore(c *fiber.Ctx) error {
	id := c.Params("id")

	sess, err := h.sessions.Load(c.UserContext(), id, h.store, h.limits)
	if err != nil {
		if err == store.ErrNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fiber.Map{
				"code":    "SESSION_NOT_FOUND",
				"message": "Search session expired or never existed",
			}})
		}
		return h.writeError(c, commonerrors.NewStoreUnavailableError(err))
	}

	jobs, err := sess.LoadMore(c.UserContext())
	if err != nil {
		return h.writeError(c, err)
	}

	if err := h.sessions.Save(c.UserContext(), id, sess); err != nil {
		return h.writeError(c, commonerrors.NewStoreUnavailableError(err))
	}
	return c.JSON(sessionResponse{
		SessionID: id,
		Jobs:      jobs,
		HasMore:   sess.HasMore(),
	})
}
