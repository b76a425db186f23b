package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/opencivic/civicpulse"
	"github.com/opencivic/civicpulse/internal/domain"
	"github.com/opencivic/civicpulse/internal/present/rest/middleware"
	"github.com/opencivic/civicpulse/internal/present/rest/presenter"
	"github.com/opencivic/civicpulse/internal/service"
	"github.com/opencivic/civicpulse/internal/usecase"
)

var tracer = otel.Tracer("rest")

type Handler struct {
	reports   *usecase.ReportUsecase
	votes     *usecase.VoteUsecase
	overrides *usecase.OverrideUsecase
	auth      *service.AuthService
	signal    *service.SignalService
}

func NewHandler(
	reports *usecase.ReportUsecase,
	votes *usecase.VoteUsecase,
	overrides *usecase.OverrideUsecase,
	auth *service.AuthService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		reports:   reports,
		votes:     votes,
		overrides: overrides,
		auth:      auth,
		signal:    signal,
	}
}

// Register mounts every route on e. The identify middleware must
// already be installed so admin routes can see the requester id.
func (h *Handler) Register(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.POST("/auth/login", h.Login)
	v1.POST("/auth/logout", h.Logout)

	v1.GET("/reports", h.ListReports)
	v1.POST("/reports", h.CreateReport)
	v1.GET("/reports/:id", h.GetReport)
	v1.POST("/reports/:id/votes", h.CastVote)
	v1.GET("/reports/:id/votes/check", h.CheckVote)
	v1.GET("/stats", h.Stats)

	admin := v1.Group("/admin")
	admin.GET("/reports/:id", h.AdminGetReport)
	admin.PATCH("/reports/:id/status", h.UpdateStatus)
	admin.PUT("/reports/:id/override", h.SetOverride)
	admin.DELETE("/reports/:id/override", h.ClearOverride)
	admin.GET("/stats", h.AdminStats)

	e.GET("/realtime", h.Realtime)
}

// mapError translates domain errors to their HTTP shape. AlreadyVoted
// is handled at the cast endpoint before this runs.
func mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return presenter.Unauthorized(c)
	case errors.Is(err, domain.ErrForbidden):
		return presenter.Forbidden(c)
	case errors.Is(err, domain.ErrValidation):
		return presenter.BadRequest(c, err)
	default:
		return presenter.InternalError(c, err)
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) Login(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.Login")
	defer span.End()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		span.RecordError(err)
		return presenter.BadRequest(c, err)
	}

	tok, expiresAt, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, echo.Map{
		"token":     tok,
		"expiresAt": expiresAt.Unix(),
	})
}

func (h *Handler) Logout(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.Logout")
	defer span.End()

	sessionID := middleware.RequesterSession(c)
	if sessionID == "" {
		return presenter.Unauthorized(c)
	}

	if err := h.auth.Logout(ctx, sessionID); err != nil {
		span.RecordError(err)
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

type createReportRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Category     string   `json:"category"`
	LocationName string   `json:"locationName"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Language     string   `json:"language"`
	PhotoURLs    []string `json:"photoUrls"`
	AudioRef     string   `json:"audioRef"`
}

func (h *Handler) CreateReport(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.CreateReport")
	defer span.End()

	var req createReportRequest
	if err := c.Bind(&req); err != nil {
		span.RecordError(err)
		return presenter.BadRequest(c, err)
	}

	report, err := h.reports.Create(ctx, usecase.CreateReportInput{
		Title:        req.Title,
		Description:  req.Description,
		Category:     civicpulse.Category(req.Category),
		LocationName: req.LocationName,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Language:     req.Language,
		PhotoURLs:    req.PhotoURLs,
		AudioRef:     req.AudioRef,
	})
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return c.JSON(http.StatusCreated, presenter.NewPublicReport(report, h.reports.Classify(report)))
}

func (h *Handler) ListReports(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.ListReports")
	defer span.End()

	filter := domain.ReportFilter{
		Category: c.QueryParam("category"),
		Status:   c.QueryParam("status"),
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sort"),
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return presenter.BadRequestMessage(c, "limit must be a non-negative integer")
		}
		filter.Limit = n
	}

	reports, err := h.reports.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	views := make([]presenter.PublicReport, 0, len(reports))
	for _, report := range reports {
		views = append(views, presenter.NewPublicReport(report, h.reports.Classify(report)))
	}

	return presenter.OK(c, views)
}

func (h *Handler) GetReport(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.GetReport")
	defer span.End()

	report, severity, err := h.reports.Get(ctx, c.Param("id"))
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, presenter.NewPublicReport(report, severity))
}

type castVoteRequest struct {
	Locale         string `json:"locale"`
	Screen         string `json:"screen"`
	TimezoneOffset *int   `json:"timezoneOffset"`
	SessionToken   string `json:"sessionToken"`
}

func signalsFrom(c echo.Context, locale, screen string, tz *int, sessionToken string) civicpulse.Signals {
	offset := ""
	if tz != nil {
		offset = strconv.Itoa(*tz)
	}
	return civicpulse.Signals{
		RemoteAddr:     c.RealIP(),
		UserAgent:      c.Request().UserAgent(),
		Locale:         locale,
		Screen:         screen,
		TimezoneOffset: offset,
		SessionToken:   sessionToken,
	}
}

// CastVote records an upvote. A duplicate vote from the same device is
// not an error: the client gets a 200 with alreadyVoted set and renders
// the existing voted state.
func (h *Handler) CastVote(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.CastVote")
	defer span.End()

	var req castVoteRequest
	if err := c.Bind(&req); err != nil {
		span.RecordError(err)
		return presenter.BadRequest(c, err)
	}

	signals := signalsFrom(c, req.Locale, req.Screen, req.TimezoneOffset, req.SessionToken)

	receipt, severity, err := h.votes.Cast(ctx, c.Param("id"), signals)
	if errors.Is(err, domain.ErrAlreadyVoted) {
		return presenter.OK(c, presenter.VoteResult{Accepted: false, AlreadyVoted: true})
	}
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, presenter.VoteResult{
		Accepted:      true,
		IntegrityHash: receipt.IntegrityHash,
		NewVoteCount:  receipt.NewVoteCount,
		Severity:      &severity,
	})
}

// CheckVote rebuilds the caller's fingerprint from the same signals a
// cast would use, so a client that timed out can confirm whether its
// vote landed before retrying.
func (h *Handler) CheckVote(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.CheckVote")
	defer span.End()

	var tz *int
	if raw := c.QueryParam("timezoneOffset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return presenter.BadRequestMessage(c, "timezoneOffset must be an integer")
		}
		tz = &n
	}

	signals := signalsFrom(c,
		c.QueryParam("locale"),
		c.QueryParam("screen"),
		tz,
		c.QueryParam("sessionToken"),
	)

	voted, err := h.votes.HasVoted(ctx, c.Param("id"), signals)
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, echo.Map{"hasVoted": voted})
}

func (h *Handler) Stats(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.Stats")
	defer span.End()

	stats, err := h.reports.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, stats)
}

func (h *Handler) AdminGetReport(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.AdminGetReport")
	defer span.End()

	report, severity, err := h.overrides.Inspect(ctx, c.Param("id"), middleware.RequesterID(c))
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, presenter.NewAdminReport(report, severity))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.UpdateStatus")
	defer span.End()

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		span.RecordError(err)
		return presenter.BadRequest(c, err)
	}

	report, err := h.reports.UpdateStatus(ctx, c.Param("id"), civicpulse.Status(req.Status), middleware.RequesterID(c))
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, presenter.NewAdminReport(report, h.reports.Classify(report)))
}

type setOverrideRequest struct {
	Level  string  `json:"level"`
	Reason *string `json:"reason"`
}

func (h *Handler) SetOverride(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.SetOverride")
	defer span.End()

	var req setOverrideRequest
	if err := c.Bind(&req); err != nil {
		span.RecordError(err)
		return presenter.BadRequest(c, err)
	}
	if req.Level == "" {
		return presenter.BadRequestMessage(c, "level is required")
	}

	level := civicpulse.SeverityLevel(req.Level)
	report, severity, err := h.overrides.Set(ctx, c.Param("id"), middleware.RequesterID(c), &level, req.Reason)
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, presenter.NewAdminReport(report, severity))
}

func (h *Handler) ClearOverride(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.ClearOverride")
	defer span.End()

	report, severity, err := h.overrides.Clear(ctx, c.Param("id"), middleware.RequesterID(c))
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, presenter.NewAdminReport(report, severity))
}

func (h *Handler) AdminStats(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Rest.Handler.AdminStats")
	defer span.End()

	stats, err := h.reports.AdminStats(ctx, middleware.RequesterID(c))
	if err != nil {
		span.RecordError(err)
		return mapError(c, err)
	}

	return presenter.OK(c, stats)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type    string   `json:"type"`
	Reports []string `json:"reports"`
}

// Realtime streams vote events over a websocket. The client sends
// {"type":"listen","reports":[...]} to narrow the feed; an empty list
// subscribes to everything.
func (h *Handler) Realtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade websocket",
			slog.String("error", err.Error()),
			slog.String("module", "realtime"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	input := make(chan []string)
	output := make(chan domain.VoteEvent)

	go h.signal.Realtime(ctx, input, output)

	go func() {
		defer cancel()
		for {
			var req realtimeRequest
			if err := ws.ReadJSON(&req); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.Error(
						"Failed to read websocket message",
						slog.String("error", err.Error()),
						slog.String("module", "realtime"),
					)
				}
				return
			}

			if req.Type == "listen" {
				select {
				case input <- req.Reports:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-output:
			if err := ws.WriteJSON(event); err != nil {
				slog.Error(
					"Failed to write vote event",
					slog.String("error", err.Error()),
					slog.String("module", "realtime"),
				)
				return nil
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second)); err != nil {
				return nil
			}
		}
	}
}
