// Package handlers provides HTTP request handlers
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-skydata/internal/domain"
	"go-skydata/internal/logger"
	"go-skydata/internal/services"
)

// Handler holds all service dependencies. Sync is nil when the archive is disabled.
type Handler struct {
	Space  *services.SpaceService
	Sync   *services.SyncService
	Log    logger.Logger
	Gather prometheus.Gatherer
	Now    func() time.Time
}

// NewHandler creates a new handler with services
func NewHandler(space *services.SpaceService, sync *services.SyncService, log logger.Logger, gatherer prometheus.Gatherer) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Handler{
		Space:  space,
		Sync:   sync,
		Log:    log,
		Gather: gatherer,
		Now:    time.Now,
	}
}

// NeoResponse is the /neo payload
type NeoResponse struct {
	StartDate domain.Date              `json:"start_date"`
	EndDate   domain.Date              `json:"end_date"`
	Summary   services.NeoSummary      `json:"summary"`
	Objects   []domain.NearEarthObject `json:"objects"`
}

// WeatherResponse is the /mars/weather payload
type WeatherResponse struct {
	Summary services.WeatherSummary   `json:"summary"`
	Sols    []domain.SolWeatherRecord `json:"sols"`
}

// Health handles health check requests
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Health{
		Status: "ok",
		Now:    h.Now().UTC(),
	})
}

// GetDailyImage handles /apod
func (h *Handler) GetDailyImage(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	img, err := h.Space.DailyImage(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(img))
}

// GetNearEarthObjects handles /neo. Without dates it uses the 7-day window from today.
func (h *Handler) GetNearEarthObjects(c *gin.Context) {
	start, err := dateQuery(c, "start_date")
	if err != nil {
		h.fail(c, err)
		return
	}
	end, err := dateQuery(c, "end_date")
	if err != nil {
		h.fail(c, err)
		return
	}
	if start.IsZero() && end.IsZero() {
		start, end = services.DefaultNeoWindow(h.Now())
	}
	hazard, err := services.ParseHazardFilter(c.Query("hazard"))
	if err != nil {
		h.fail(c, err)
		return
	}
	sortKey, err := services.ParseNeoSortKey(c.Query("sort"))
	if err != nil {
		h.fail(c, err)
		return
	}

	objs, err := h.Space.NearEarthObjects(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, err)
		return
	}
	objs = services.FilterNEOs(objs, services.NeoFilter{Hazard: hazard, Query: c.Query("q")})
	if sortKey != services.SortByDate {
		objs = services.SortNEOs(objs, sortKey)
	}

	c.JSON(http.StatusOK, domain.SuccessResponse(NeoResponse{
		StartDate: domain.NewDate(start),
		EndDate:   domain.NewDate(end),
		Summary:   services.SummarizeNEOs(objs),
		Objects:   objs,
	}))
}

// GetMarsWeather handles /mars/weather
func (h *Handler) GetMarsWeather(c *gin.Context) {
	sols, err := h.Space.MarsWeather(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(WeatherResponse{
		Summary: services.SummarizeWeather(sols),
		Sols:    sols,
	}))
}

// GetRoverPhotos handles /mars/rovers/:rover/photos
func (h *Handler) GetRoverPhotos(c *gin.Context) {
	q := services.RoverQuery{
		Rover:     c.Param("rover"),
		EarthDate: c.Query("earth_date"),
		Camera:    c.Query("camera"),
	}
	if raw := c.Query("sol"); raw != "" {
		sol, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, &domain.InvalidArgumentError{Argument: "sol", Message: "expected an integer"})
			return
		}
		q.Sol = &sol
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			h.fail(c, &domain.InvalidArgumentError{Argument: "page", Message: "expected an integer"})
			return
		}
		q.Page = page
	}

	page, err := h.Space.RoverPhotos(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(page))
}

// GetEpicImages handles /epic
func (h *Handler) GetEpicImages(c *gin.Context) {
	date, err := dateQuery(c, "date")
	if err != nil {
		h.fail(c, err)
		return
	}
	images, err := h.Space.EpicImages(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(images))
}

// GetEpicAvailableDates handles /epic/available
func (h *Handler) GetEpicAvailableDates(c *gin.Context) {
	dates, err := h.Space.EpicAvailableDates(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.SuccessResponse(dates))
}

// GetSpaceLatest handles requests for the latest archived snapshot
func (h *Handler) GetSpaceLatest(c *gin.Context) {
	if h.Sync == nil {
		c.JSON(http.StatusServiceUnavailable, domain.ErrorResponse("ARCHIVE_DISABLED", "snapshot archive is not configured"))
		return
	}
	source := c.Param("src")
	snap, err := h.Sync.GetLatest(c.Request.Context(), source)
	if err != nil {
		h.fail(c, err)
		return
	}

	if snap == nil {
		c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
			"source":  source,
			"message": "no data",
		}))
		return
	}

	c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
		"source":     snap.Source,
		"fetched_at": snap.FetchedAt,
		"payload":    snap.Payload,
	}))
}

// RefreshSpace handles archive refresh requests
func (h *Handler) RefreshSpace(c *gin.Context) {
	if h.Sync == nil {
		c.JSON(http.StatusServiceUnavailable, domain.ErrorResponse("ARCHIVE_DISABLED", "snapshot archive is not configured"))
		return
	}
	all := make([]string, 0, len(domain.Endpoints))
	for _, e := range domain.Endpoints {
		all = append(all, string(e))
	}
	sources := strings.Split(c.DefaultQuery("src", strings.Join(all, ",")), ",")
	for i := range sources {
		sources[i] = strings.TrimSpace(sources[i])
	}

	refreshed := h.Sync.Refresh(c.Request.Context(), sources)
	c.JSON(http.StatusOK, domain.SuccessResponse(map[string]interface{}{
		"refreshed": refreshed,
	}))
}

// fail writes the error envelope with the status for the error kind
func (h *Handler) fail(c *gin.Context, err error) {
	status, code := classify(err)
	_ = c.Error(err)
	c.JSON(status, domain.ErrorResponse(code, err.Error()))
}

func classify(err error) (int, string) {
	switch {
	case domain.IsInvalidArgument(err):
		return http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, services.ErrUnknownSource):
		return http.StatusNotFound, "UNKNOWN_SOURCE"
	case domain.IsUpstreamHTTP(err):
		return http.StatusBadGateway, "UPSTREAM_HTTP"
	case domain.IsUpstreamFormat(err):
		return http.StatusBadGateway, "UPSTREAM_FORMAT"
	case domain.IsDecode(err):
		return http.StatusBadGateway, "DECODE_ERROR"
	case domain.IsNetwork(err):
		return http.StatusGatewayTimeout, "NETWORK_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// dateQuery parses an optional YYYY-MM-DD query parameter; empty yields the zero time
func dateQuery(c *gin.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return time.Time{}, nil
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, &domain.InvalidArgumentError{Argument: name, Message: "expected YYYY-MM-DD"}
	}
	return d.Time, nil
}

// SetupRoutes configures all routes
func SetupRoutes(r *gin.Engine, h *Handler) {
	// Health check
	r.GET("/health", h.Health)

	// Normalized NASA data
	r.GET("/apod", h.GetDailyImage)
	r.GET("/neo", h.GetNearEarthObjects)
	r.GET("/mars/weather", h.GetMarsWeather)
	r.GET("/mars/rovers/:rover/photos", h.GetRoverPhotos)
	r.GET("/epic", h.GetEpicImages)
	r.GET("/epic/available", h.GetEpicAvailableDates)

	// Snapshot archive
	r.GET("/space/:src/latest", h.GetSpaceLatest)
	r.GET("/space/refresh", h.RefreshSpace)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gather, promhttp.HandlerOpts{})))
}

// NewRouter builds the gin engine with middleware and routes
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(h.Log))
	r.Use(RecoveryMiddleware(h.Log))
	SetupRoutes(r, h)
	return r
}
