// Package services provides the endpoint orchestrators and snapshot sync
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go-skydata/internal/clients"
	"go-skydata/internal/domain"
	"go-skydata/internal/logger"
	"go-skydata/internal/normalize"
)

const (
	// MaxNeoWindow is the widest date window the NEO feed accepts
	MaxNeoWindow = 7 * 24 * time.Hour

	// DefaultRoverSol is used when neither sol nor earth date is given
	DefaultRoverSol = 1000

	defaultRoverPage = 1
)

// Rovers is the allow-list of rover names, lowercase
var Rovers = []string{"curiosity", "perseverance", "opportunity", "spirit"}

// RoverQuery is a caller's rover photo request before validation
type RoverQuery struct {
	Rover     string
	Sol       *int
	EarthDate string
	Camera    string
	Page      int
}

// RoverPhotoPage is one page of rover photos. NoData is set when upstream has
// nothing for the sol/camera combination, which is not an error.
type RoverPhotoPage struct {
	Rover     string              `json:"rover"`
	Sol       *int                `json:"sol,omitempty"`
	EarthDate *domain.Date        `json:"earth_date,omitempty"`
	Camera    string              `json:"camera,omitempty"`
	Page      int                 `json:"page"`
	Photos    []domain.RoverPhoto `json:"photos"`
	NoData    bool                `json:"no_data"`
}

// SpaceService runs Fetch, Validate and Normalize for each endpoint family.
// It holds only read-only collaborators and is safe for concurrent use.
type SpaceService struct {
	client     *clients.NasaClient
	normalizer *normalize.Normalizer
	log        logger.Logger
}

// NewSpaceService creates a new space service
func NewSpaceService(client *clients.NasaClient, normalizer *normalize.Normalizer, log logger.Logger) *SpaceService {
	if log == nil {
		log = logger.NewNop()
	}
	return &SpaceService{client: client, normalizer: normalizer, log: log}
}

// DailyImage fetches the Astronomy Picture of the Day. A zero date lets upstream pick today.
func (s *SpaceService) DailyImage(ctx context.Context, date time.Time) (domain.DailyImage, error) {
	param := ""
	if !date.IsZero() {
		param = domain.NewDate(date).String()
	}
	body, err := s.client.FetchAPOD(ctx, param)
	if err != nil {
		return domain.DailyImage{}, err
	}
	return s.normalizer.DailyImage(body)
}

// DefaultNeoWindow returns the 7-day forward window starting on now's date
func DefaultNeoWindow(now time.Time) (start, end time.Time) {
	start = domain.NewDate(now).Time
	return start, start.Add(MaxNeoWindow)
}

// NearEarthObjects fetches and flattens the NEO feed for [start, end]
func (s *SpaceService) NearEarthObjects(ctx context.Context, start, end time.Time) ([]domain.NearEarthObject, error) {
	if start.IsZero() {
		return nil, &domain.InvalidArgumentError{Argument: "start_date", Message: "required"}
	}
	if end.IsZero() {
		return nil, &domain.InvalidArgumentError{Argument: "end_date", Message: "required"}
	}
	from, to := domain.NewDate(start), domain.NewDate(end)
	if to.Before(from.Time) {
		return nil, &domain.InvalidArgumentError{Argument: "end_date", Message: "must not be before start_date"}
	}
	if to.Sub(from.Time) > MaxNeoWindow {
		return nil, &domain.InvalidArgumentError{Argument: "end_date", Message: "window is limited to 7 days"}
	}

	body, err := s.client.FetchNeoFeed(ctx, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	return s.normalizer.NeoFeed(body)
}

// RoverPhotos validates q before any network call and fetches one page of photos
func (s *SpaceService) RoverPhotos(ctx context.Context, q RoverQuery) (RoverPhotoPage, error) {
	params, page, err := validateRoverQuery(q)
	if err != nil {
		return RoverPhotoPage{}, err
	}

	body, err := s.client.FetchRoverPhotos(ctx, params)
	if errors.Is(err, domain.ErrNoDataForQuery) {
		s.log.Info("no rover photos for query",
			logger.String("rover", params.Rover),
			logger.Int("page", params.Page),
		)
		page.NoData = true
		return page, nil
	}
	if err != nil {
		return RoverPhotoPage{}, err
	}

	photos, err := s.normalizer.RoverPhotos(body)
	if err != nil {
		return RoverPhotoPage{}, err
	}
	page.Photos = photos
	return page, nil
}

func validateRoverQuery(q RoverQuery) (clients.RoverPhotoParams, RoverPhotoPage, error) {
	rover := strings.ToLower(strings.TrimSpace(q.Rover))
	if !slices.Contains(Rovers, rover) {
		return clients.RoverPhotoParams{}, RoverPhotoPage{}, &domain.InvalidArgumentError{
			Argument: "rover",
			Message:  fmt.Sprintf("unknown rover %q, expected one of %s", q.Rover, strings.Join(Rovers, ", ")),
		}
	}

	earthDate := strings.TrimSpace(q.EarthDate)
	if q.Sol != nil && earthDate != "" {
		return clients.RoverPhotoParams{}, RoverPhotoPage{}, &domain.InvalidArgumentError{
			Argument: "sol", Message: "sol and earth_date are mutually exclusive",
		}
	}
	if q.Page < 0 {
		return clients.RoverPhotoParams{}, RoverPhotoPage{}, &domain.InvalidArgumentError{Argument: "page", Message: "must not be negative"}
	}

	params := clients.RoverPhotoParams{
		Rover:  rover,
		Camera: strings.ToLower(strings.TrimSpace(q.Camera)),
		Page:   q.Page,
	}
	if params.Page == 0 {
		params.Page = defaultRoverPage
	}
	result := RoverPhotoPage{
		Rover:  rover,
		Camera: params.Camera,
		Page:   params.Page,
		Photos: []domain.RoverPhoto{},
	}

	switch {
	case q.Sol != nil:
		if *q.Sol < 0 {
			return clients.RoverPhotoParams{}, RoverPhotoPage{}, &domain.InvalidArgumentError{Argument: "sol", Message: "must not be negative"}
		}
		sol := *q.Sol
		params.Sol, result.Sol = &sol, &sol
	case earthDate != "":
		d, err := domain.ParseDate(earthDate)
		if err != nil {
			return clients.RoverPhotoParams{}, RoverPhotoPage{}, &domain.InvalidArgumentError{Argument: "earth_date", Message: "expected YYYY-MM-DD"}
		}
		params.EarthDate = d.String()
		result.EarthDate = &d
	default:
		sol := DefaultRoverSol
		params.Sol, result.Sol = &sol, &sol
	}
	return params, result, nil
}

// MarsWeather fetches the full InSight sol window, newest sol first
func (s *SpaceService) MarsWeather(ctx context.Context) ([]domain.SolWeatherRecord, error) {
	body, err := s.client.FetchMarsWeather(ctx)
	if err != nil {
		return nil, err
	}
	return s.normalizer.MarsWeather(body)
}

// EpicImages fetches EPIC image metadata for a day. A zero date means the most recent day.
func (s *SpaceService) EpicImages(ctx context.Context, date time.Time) ([]domain.EpicImage, error) {
	param := ""
	if !date.IsZero() {
		param = domain.NewDate(date).String()
	}
	body, err := s.client.FetchEpicImages(ctx, param)
	if err != nil {
		return nil, err
	}
	return s.normalizer.EpicImages(body)
}

// EpicAvailableDates lists days with EPIC imagery, newest first
func (s *SpaceService) EpicAvailableDates(ctx context.Context) ([]domain.Date, error) {
	body, err := s.client.FetchEpicAvailableDates(ctx)
	if err != nil {
		return nil, err
	}
	return s.normalizer.EpicDates(body)
}
