package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skydata/internal/domain"
	"go-skydata/internal/normalize"
)

const photoJSON = `{"id":102693,"sol":1000,
	"camera":{"id":20,"name":"FHAZ","rover_id":5,"full_name":"Front Hazard Avoidance Camera"},
	"img_src":"http://mars.jpl.nasa.gov/msl-raw-images/proj/msl/redops/ods/surface/sol/01000/opgs/edr/fcam/FLB_486265257EDR_F0481570FHAZ00323M_.JPG",
	"earth_date":"2015-05-30",
	"rover":{"id":5,"name":"Curiosity","landing_date":"2012-08-06","launch_date":"2011-11-26","status":"active"}}`

func TestRoverPhotos(t *testing.T) {
	n := normalize.New(nil, nil)
	photos, err := n.RoverPhotos([]byte(`{"photos":[` + photoJSON + `]}`))
	require.NoError(t, err)
	require.Len(t, photos, 1)

	p := photos[0]
	assert.Equal(t, 102693, p.ID)
	assert.Equal(t, 1000, p.Sol)
	assert.Equal(t, "FHAZ", p.Camera.Name)
	assert.Equal(t, 5, p.Camera.RoverID)
	assert.Equal(t, "2015-05-30", p.EarthDate.String())
	assert.Equal(t, "Curiosity", p.Rover.Name)
	assert.Equal(t, "2012-08-06", p.Rover.LandingDate.String())
}

func TestRoverPhotos_EmptyIsNotAnError(t *testing.T) {
	n := normalize.New(nil, nil)
	photos, err := n.RoverPhotos([]byte(`{"photos":[]}`))
	require.NoError(t, err)
	assert.Empty(t, photos)
}

func TestRoverPhotos_MissingPhotosKey(t *testing.T) {
	n := normalize.New(nil, nil)
	_, err := n.RoverPhotos([]byte(`{"errors":"No Photos Found"}`))
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "photos", decodeErr.FieldPath)
}

func TestRoverPhotos_MissingNestedField(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `{"photos":[{"id":1,"sol":2,"img_src":"x","earth_date":"2015-05-30",
		"camera":{"id":20,"name":"FHAZ","full_name":"Front"},
		"rover":{"id":5,"name":"Curiosity","landing_date":"2012-08-06","launch_date":"2011-11-26"}}]}`
	_, err := n.RoverPhotos([]byte(body))
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "photos[0].rover.status", decodeErr.FieldPath)
}
