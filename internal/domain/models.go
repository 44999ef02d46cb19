// Package domain provides domain models for the application
package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// MediaType is the kind of media published as the daily image
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// DailyImage represents the Astronomy Picture of the Day
type DailyImage struct {
	Date         Date      `json:"date"`
	Title        string    `json:"title"`
	Explanation  string    `json:"explanation"`
	MediaType    MediaType `json:"media_type"`
	URL          string    `json:"url"`
	HDURL        *string   `json:"hdurl,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Copyright    *string   `json:"copyright,omitempty"`
}

// DisplayURL returns the URL a client should render for the media kind
func (d DailyImage) DisplayURL() string {
	if d.MediaType == MediaImage && d.HDURL != nil {
		return *d.HDURL
	}
	return d.URL
}

// CloseApproachEvent is one close approach of a near-earth object
type CloseApproachEvent struct {
	Date             Date     `json:"close_approach_date"`
	VelocityKmPerSec *float64 `json:"velocity_km_s,omitempty"`
	MissDistanceKm   *float64 `json:"miss_distance_km,omitempty"`
	OrbitingBody     *string  `json:"orbiting_body,omitempty"`
}

// DiameterRange is an estimated diameter range in kilometers, Min <= Max
type DiameterRange struct {
	MinKm float64 `json:"min_km"`
	MaxKm float64 `json:"max_km"`
}

// NearEarthObject represents an asteroid from the NEO feed
type NearEarthObject struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Diameter          DiameterRange        `json:"estimated_diameter"`
	CloseApproaches   []CloseApproachEvent `json:"close_approaches"`
	Hazardous         bool                 `json:"hazardous"`
	AbsoluteMagnitude *float64             `json:"absolute_magnitude,omitempty"`
	JPLURL            *string              `json:"nasa_jpl_url,omitempty"`
}

// FirstApproach returns the first approach as listed upstream, if any
func (n NearEarthObject) FirstApproach() (CloseApproachEvent, bool) {
	if len(n.CloseApproaches) == 0 {
		return CloseApproachEvent{}, false
	}
	return n.CloseApproaches[0], true
}

// Stats is an average/minimum/maximum triple. Any member may be absent.
type Stats struct {
	Average *float64 `json:"average,omitempty"`
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
}

// SolWeatherRecord is the InSight telemetry summary for one Martian sol
type SolWeatherRecord struct {
	Sol             int        `json:"sol"`
	FirstUTC        *time.Time `json:"first_utc,omitempty"`
	LastUTC         *time.Time `json:"last_utc,omitempty"`
	Season          *string    `json:"season,omitempty"`
	Pressure        *Stats     `json:"pressure,omitempty"`
	WindSpeed       *Stats     `json:"wind_speed,omitempty"`
	AirTemperature  *Stats     `json:"air_temperature,omitempty"`
	DominantWindDir *string    `json:"dominant_wind_direction,omitempty"`
}

// RoverCamera describes the camera that took a rover photo
type RoverCamera struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	RoverID  int    `json:"rover_id"`
}

// Rover describes a Mars rover
type Rover struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	LandingDate Date   `json:"landing_date"`
	LaunchDate  Date   `json:"launch_date"`
	Status      string `json:"status"`
}

// RoverPhoto is one image from the Mars rover photo archive
type RoverPhoto struct {
	ID        int         `json:"id"`
	Sol       int         `json:"sol"`
	Camera    RoverCamera `json:"camera"`
	ImageURL  string      `json:"img_src"`
	EarthDate Date        `json:"earth_date"`
	Rover     Rover       `json:"rover"`
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Vector3 is a J2000 position vector
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a spacecraft attitude quaternion
type Quaternion struct {
	Q0 float64 `json:"q0"`
	Q1 float64 `json:"q1"`
	Q2 float64 `json:"q2"`
	Q3 float64 `json:"q3"`
}

// EpicArchiveBaseURL is the public archive hosting natural-color EPIC images
const EpicArchiveBaseURL = "https://epic.gsfc.nasa.gov/archive/natural"

// EpicTimestampLayout is the capture timestamp format of the EPIC API.
// Fractional seconds after the seconds field are accepted when parsing.
const EpicTimestampLayout = "2006-01-02 15:04:05"

// EpicImage is one DSCOVR EPIC Earth image
type EpicImage struct {
	Identifier     string       `json:"identifier"`
	Caption        string       `json:"caption"`
	Image          string       `json:"image"`
	Version        string       `json:"version,omitempty"`
	Date           string       `json:"date"`
	Centroid       *Coordinates `json:"centroid,omitempty"`
	DscovrPosition *Vector3     `json:"dscovr_j2000_position,omitempty"`
	LunarPosition  *Vector3     `json:"lunar_j2000_position,omitempty"`
	SunPosition    *Vector3     `json:"sun_j2000_position,omitempty"`
	Attitude       *Quaternion  `json:"attitude_quaternions,omitempty"`
}

// CapturedAt parses the capture timestamp
func (e EpicImage) CapturedAt() (time.Time, bool) {
	t, err := time.Parse(EpicTimestampLayout, e.Date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DownloadURL derives the archive PNG URL from the capture date and image token.
// It is empty when the timestamp cannot be parsed.
func (e EpicImage) DownloadURL() string {
	t, ok := e.CapturedAt()
	if !ok || e.Image == "" {
		return ""
	}
	return fmt.Sprintf("%s/%04d/%02d/%02d/png/%s.png",
		EpicArchiveBaseURL, t.Year(), int(t.Month()), t.Day(), e.Image)
}

// MarshalJSON includes the derived download URL
func (e EpicImage) MarshalJSON() ([]byte, error) {
	type plain EpicImage
	return json.Marshal(struct {
		plain
		DownloadURL string `json:"download_url,omitempty"`
	}{plain(e), e.DownloadURL()})
}

// SpaceSnapshot represents an archived normalized payload
type SpaceSnapshot struct {
	ID        int64           `json:"id"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetched_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Health represents health check response
type Health struct {
	Status string    `json:"status"`
	Now    time.Time `json:"now"`
}

// ApiResponse wraps API responses
type ApiResponse struct {
	Ok    bool        `json:"ok"`
	Data  interface{} `json:"data,omitempty"`
	Error *ApiError   `json:"error,omitempty"`
}

// ApiError represents an error response
type ApiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SuccessResponse creates a successful response
func SuccessResponse(data interface{}) ApiResponse {
	return ApiResponse{Ok: true, Data: data}
}

// ErrorResponse creates an error response
func ErrorResponse(code, message string) ApiResponse {
	return ApiResponse{Ok: false, Error: &ApiError{Code: code, Message: message}}
}
