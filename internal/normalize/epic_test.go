package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skydata/internal/domain"
	"go-skydata/internal/normalize"
)

func TestEpicImages_DerivedURL(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `[{"identifier":"20250315120000","caption":"This image was taken by NASA's EPIC camera",
		"image":"epic_1b_20250315120000","version":"03","date":"2025-03-15 12:00:00",
		"centroid_coordinates":{"lat":1.5,"lon":-20.25},
		"dscovr_j2000_position":{"x":-1,"y":2,"z":3},
		"attitude_quaternions":{"q0":0.1,"q1":0.2,"q2":0.3,"q3":0.4}}]`

	images, err := n.EpicImages([]byte(body))
	require.NoError(t, err)
	require.Len(t, images, 1)

	img := images[0]
	assert.Equal(t, "https://epic.gsfc.nasa.gov/archive/natural/2025/03/15/png/epic_1b_20250315120000.png", img.DownloadURL())
	require.NotNil(t, img.Centroid)
	assert.InDelta(t, -20.25, img.Centroid.Lon, 1e-9)
	assert.NotNil(t, img.DscovrPosition)
	assert.Nil(t, img.LunarPosition)
	assert.NotNil(t, img.Attitude)

	encoded, err := json.Marshal(img)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"download_url":"https://epic.gsfc.nasa.gov/archive/natural/2025/03/15/png/epic_1b_20250315120000.png"`)
}

func TestEpicImages_UnparseableTimestamp(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `[{"identifier":"1","caption":"","image":"epic_x","date":"15/03/2025"},
		{"identifier":"2","caption":"","image":"epic_y","date":"2025-03-14 01:02:03"}]`

	images, err := n.EpicImages([]byte(body))
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "2", images[0].Identifier)
	assert.Empty(t, images[1].DownloadURL())

	encoded, err := json.Marshal(images[1])
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), "download_url")
}

func TestEpicImages_SortedNewestFirst(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `[{"identifier":"a","image":"a","date":"2025-03-15 00:31:45"},
		{"identifier":"b","image":"b","date":"2025-03-15 13:40:12"},
		{"identifier":"c","image":"c","date":"2025-03-15 06:12:00"}]`

	images, err := n.EpicImages([]byte(body))
	require.NoError(t, err)
	var got []string
	for _, img := range images {
		got = append(got, img.Identifier)
	}
	assert.Equal(t, []string{"b", "c", "a"}, got)
}

func TestEpicImages_BadSubObjectIsDropped(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `[{"identifier":"a","image":"a","date":"2025-03-15 00:31:45","centroid":{"lat":"north","lon":1},"sun_j2000_position":{"x":1,"y":2,"z":3}}]`
	images, err := n.EpicImages([]byte(body))
	require.NoError(t, err)
	assert.Nil(t, images[0].Centroid)
	assert.NotNil(t, images[0].SunPosition)
}

func TestEpicImages_MissingImageToken(t *testing.T) {
	n := normalize.New(nil, nil)
	_, err := n.EpicImages([]byte(`[{"identifier":"a","date":"2025-03-15 00:31:45"}]`))
	var decodeErr *domain.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "[0].image", decodeErr.FieldPath)
}

func TestEpicDates_SortedDescendingAndFiltered(t *testing.T) {
	n := normalize.New(nil, nil)
	dates, err := n.EpicDates([]byte(`["2024-12-30","2025-01-02","garbage","2025-01-01"]`))
	require.NoError(t, err)

	var got []string
	for _, d := range dates {
		got = append(got, d.String())
	}
	assert.Equal(t, []string{"2025-01-02", "2025-01-01", "2024-12-30"}, got)
}

func TestEpicDates_NotAnArray(t *testing.T) {
	n := normalize.New(nil, nil)
	_, err := n.EpicDates([]byte(`{"dates":[]}`))
	assert.True(t, domain.IsDecode(err))
}
