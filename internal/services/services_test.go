package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skydata/internal/clients"
	"go-skydata/internal/domain"
	"go-skydata/internal/metrics"
	"go-skydata/internal/normalize"
	"go-skydata/internal/services"
)

type upstream struct {
	calls atomic.Int32
	mu    sync.Mutex
	last  *http.Request
}

func (u *upstream) lastRequest() *http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.last
}

func newSpaceService(t *testing.T, handler http.HandlerFunc) (*services.SpaceService, *upstream) {
	t.Helper()
	u := &upstream{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.calls.Add(1)
		u.mu.Lock()
		u.last = r
		u.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	m := metrics.New(prometheus.NewRegistry())
	client := clients.NewNasaClient(server.URL, "test-key", clients.NewHTTPClient(), m)
	return services.NewSpaceService(client, normalize.New(nil, m), nil), u
}

func respond(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestRoverPhotos_InvalidRoverMakesNoRequest(t *testing.T) {
	svc, u := newSpaceService(t, respond(`{"photos":[]}`))

	_, err := svc.RoverPhotos(context.Background(), services.RoverQuery{Rover: "INVALID"})
	var argErr *domain.InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "rover", argErr.Argument)
	assert.Equal(t, int32(0), u.calls.Load())
}

func TestRoverPhotos_NotFoundIsNoData(t *testing.T) {
	svc, u := newSpaceService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":"No Photos Found"}`))
	})

	page, err := svc.RoverPhotos(context.Background(), services.RoverQuery{Rover: "spirit"})
	require.NoError(t, err)
	assert.True(t, page.NoData)
	assert.NotNil(t, page.Photos)
	assert.Empty(t, page.Photos)
	assert.Equal(t, int32(1), u.calls.Load())
}

func TestRoverPhotos_DefaultsAndCaseInsensitiveRover(t *testing.T) {
	svc, u := newSpaceService(t, respond(`{"photos":[]}`))

	page, err := svc.RoverPhotos(context.Background(), services.RoverQuery{Rover: " Curiosity ", Camera: "FHAZ"})
	require.NoError(t, err)

	req := u.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "/mars-photos/api/v1/rovers/curiosity/photos", req.URL.Path)
	assert.Equal(t, "1000", req.URL.Query().Get("sol"))
	assert.Equal(t, "1", req.URL.Query().Get("page"))
	assert.Equal(t, "fhaz", req.URL.Query().Get("camera"))

	assert.False(t, page.NoData)
	assert.Equal(t, "curiosity", page.Rover)
	require.NotNil(t, page.Sol)
	assert.Equal(t, services.DefaultRoverSol, *page.Sol)
	assert.Empty(t, page.Photos)
}

func TestRoverPhotos_EarthDate(t *testing.T) {
	svc, u := newSpaceService(t, respond(`{"photos":[]}`))

	page, err := svc.RoverPhotos(context.Background(), services.RoverQuery{Rover: "perseverance", EarthDate: "2021-03-05", Page: 3})
	require.NoError(t, err)

	q := u.lastRequest().URL.Query()
	assert.Equal(t, "2021-03-05", q.Get("earth_date"))
	assert.Empty(t, q.Get("sol"))
	assert.Equal(t, "3", q.Get("page"))
	require.NotNil(t, page.EarthDate)
	assert.Nil(t, page.Sol)
}

func TestRoverPhotos_InvalidQueries(t *testing.T) {
	sol, negative := 10, -1
	tests := []struct {
		name     string
		query    services.RoverQuery
		argument string
	}{
		{name: "sol and earth date", query: services.RoverQuery{Rover: "curiosity", Sol: &sol, EarthDate: "2015-05-30"}, argument: "sol"},
		{name: "negative sol", query: services.RoverQuery{Rover: "curiosity", Sol: &negative}, argument: "sol"},
		{name: "negative page", query: services.RoverQuery{Rover: "curiosity", Page: -2}, argument: "page"},
		{name: "bad earth date", query: services.RoverQuery{Rover: "curiosity", EarthDate: "30/05/2015"}, argument: "earth_date"},
		{name: "empty rover", query: services.RoverQuery{}, argument: "rover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, u := newSpaceService(t, respond(`{"photos":[]}`))
			_, err := svc.RoverPhotos(context.Background(), tt.query)
			var argErr *domain.InvalidArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.argument, argErr.Argument)
			assert.Equal(t, int32(0), u.calls.Load())
		})
	}
}

func TestRoverPhotos_HTMLErrorPage(t *testing.T) {
	svc, _ := newSpaceService(t, respond("<!DOCTYPE html><html><title>Application Error</title></html>"))
	_, err := svc.RoverPhotos(context.Background(), services.RoverQuery{Rover: "curiosity"})
	assert.True(t, domain.IsUpstreamFormat(err))
}

func TestNearEarthObjects_WindowValidation(t *testing.T) {
	day := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		name       string
		start, end time.Time
	}{
		{name: "missing start", end: day},
		{name: "missing end", start: day},
		{name: "end before start", start: day, end: day.AddDate(0, 0, -1)},
		{name: "too wide", start: day, end: day.AddDate(0, 0, 8)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, u := newSpaceService(t, respond(`{"near_earth_objects":{}}`))
			_, err := svc.NearEarthObjects(context.Background(), tt.start, tt.end)
			assert.True(t, domain.IsInvalidArgument(err))
			assert.Equal(t, int32(0), u.calls.Load())
		})
	}
}

func TestNearEarthObjects_DefaultWindow(t *testing.T) {
	svc, u := newSpaceService(t, respond(`{"near_earth_objects":{}}`))
	start, end := services.DefaultNeoWindow(time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC))

	objs, err := svc.NearEarthObjects(context.Background(), start, end)
	require.NoError(t, err)
	assert.Empty(t, objs)

	q := u.lastRequest().URL.Query()
	assert.Equal(t, "2025-01-01", q.Get("start_date"))
	assert.Equal(t, "2025-01-08", q.Get("end_date"))
}

func TestDailyImage_DateParameter(t *testing.T) {
	body := `{"date":"2025-03-15","title":"t","explanation":"e","media_type":"image","url":"https://apod.nasa.gov/x.jpg"}`
	svc, u := newSpaceService(t, respond(body))

	img, err := svc.DailyImage(context.Background(), time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-15", img.Date.String())
	assert.Equal(t, "2025-03-15", u.lastRequest().URL.Query().Get("date"))

	_, err = svc.DailyImage(context.Background(), time.Time{})
	require.NoError(t, err)
	_, has := u.lastRequest().URL.Query()["date"]
	assert.False(t, has)
}

func TestDailyImage_UpstreamError(t *testing.T) {
	svc, _ := newSpaceService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"msg":"Date must be between Jun 16, 1995 and Mar 15, 2025."}`))
	})
	_, err := svc.DailyImage(context.Background(), time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC))
	var httpErr *domain.UpstreamHTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "Date must be between Jun 16, 1995 and Mar 15, 2025.", httpErr.Message)
}

func TestEpicAvailableDates(t *testing.T) {
	svc, u := newSpaceService(t, respond(`["2025-03-13","2025-03-15","2025-03-14"]`))

	dates, err := svc.EpicAvailableDates(context.Background())
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.Equal(t, "2025-03-15", dates[0].String())
	assert.Equal(t, "/EPIC/api/natural/available", u.lastRequest().URL.Path)
}

func TestEpicImages_ForDate(t *testing.T) {
	svc, u := newSpaceService(t, respond(`[{"identifier":"1","image":"epic_1b_20250315120000","date":"2025-03-15 12:00:00"}]`))

	images, err := svc.EpicImages(context.Background(), time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, images, 1)
	assert.Equal(t, "/EPIC/api/natural/date/2025-03-15", u.lastRequest().URL.Path)
}

func TestConcurrentOrchestratorCalls(t *testing.T) {
	svc, u := newSpaceService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/insight_weather/" {
			_, _ = w.Write([]byte(`{"sol_keys":["1"],"1":{"HWS":{"av":1}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"near_earth_objects":{}}`))
	})
	start, end := services.DefaultNeoWindow(time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.MarsWeather(context.Background())
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.NearEarthObjects(context.Background(), start, end)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(16), u.calls.Load())
}
