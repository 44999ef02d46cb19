package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go-skydata/internal/domain"
	"go-skydata/internal/metrics"
)

// RoverPhotoParams are the already-validated query parameters for the rover photo endpoint
type RoverPhotoParams struct {
	Rover     string
	Sol       *int
	EarthDate string
	Camera    string
	Page      int
}

// NasaClient fetches data from NASA APIs and validates the responses
type NasaClient struct {
	http    *HTTPClient
	baseURL string
	apiKey  string
	metrics *metrics.Metrics
}

// NewNasaClient creates a new NASA API client
func NewNasaClient(baseURL, apiKey string, httpClient *HTTPClient, m *metrics.Metrics) *NasaClient {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &NasaClient{
		http:    httpClient,
		baseURL: baseURL,
		apiKey:  apiKey,
		metrics: m,
	}
}

// FetchAPOD fetches Astronomy Picture of the Day. An empty date lets the API pick today.
func (c *NasaClient) FetchAPOD(ctx context.Context, date string) ([]byte, error) {
	q := url.Values{}
	q.Set("thumbs", "true")
	if date != "" {
		q.Set("date", date)
	}
	return c.get(ctx, domain.EndpointAPOD, q, "planetary", "apod")
}

// FetchNeoFeed fetches Near Earth Objects between two YYYY-MM-DD dates
func (c *NasaClient) FetchNeoFeed(ctx context.Context, start, end string) ([]byte, error) {
	q := url.Values{}
	q.Set("start_date", start)
	q.Set("end_date", end)
	return c.get(ctx, domain.EndpointNEO, q, "neo", "rest", "v1", "feed")
}

// FetchMarsWeather fetches the InSight weather feed
func (c *NasaClient) FetchMarsWeather(ctx context.Context) ([]byte, error) {
	q := url.Values{}
	q.Set("feedtype", "json")
	q.Set("ver", "1.0")
	return c.get(ctx, domain.EndpointWeather, q, "insight_weather/")
}

// FetchRoverPhotos fetches one page of Mars rover photos
func (c *NasaClient) FetchRoverPhotos(ctx context.Context, p RoverPhotoParams) ([]byte, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	if p.Sol != nil {
		q.Set("sol", strconv.Itoa(*p.Sol))
	} else if p.EarthDate != "" {
		q.Set("earth_date", p.EarthDate)
	}
	if p.Camera != "" {
		q.Set("camera", p.Camera)
	}
	return c.get(ctx, domain.EndpointRoverPhotos, q, "mars-photos", "api", "v1", "rovers", p.Rover, "photos")
}

// FetchEpicImages fetches natural-color EPIC image metadata; an empty date means the latest day
func (c *NasaClient) FetchEpicImages(ctx context.Context, date string) ([]byte, error) {
	elems := []string{"EPIC", "api", "natural"}
	if date != "" {
		elems = append(elems, "date", date)
	}
	return c.get(ctx, domain.EndpointEPIC, url.Values{}, elems...)
}

// FetchEpicAvailableDates fetches the list of days that have EPIC imagery
func (c *NasaClient) FetchEpicAvailableDates(ctx context.Context) ([]byte, error) {
	return c.get(ctx, domain.EndpointEPICDates, url.Values{}, "EPIC", "api", "natural", "available")
}

func (c *NasaClient) get(ctx context.Context, endpoint domain.Endpoint, q url.Values, elems ...string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u = u.JoinPath(elems...)
	q.Set("api_key", c.apiKey)
	u.RawQuery = q.Encode()

	start := time.Now()
	resp, err := c.http.Get(ctx, endpoint, u.String())
	c.metrics.UpstreamDuration.WithLabelValues(string(endpoint)).Observe(time.Since(start).Seconds())
	if err != nil {
		c.observe(endpoint, err)
		return nil, err
	}

	err = Validate(endpoint, resp)
	c.observe(endpoint, err)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *NasaClient) observe(endpoint domain.Endpoint, err error) {
	outcome := metrics.OutcomeOK
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNoDataForQuery):
		outcome = metrics.OutcomeNoData
	case domain.IsUpstreamHTTP(err):
		outcome = metrics.OutcomeHTTPError
	case domain.IsUpstreamFormat(err):
		outcome = metrics.OutcomeFormatError
	default:
		outcome = metrics.OutcomeNetwork
	}
	c.metrics.UpstreamRequests.WithLabelValues(string(endpoint), outcome).Inc()
}
