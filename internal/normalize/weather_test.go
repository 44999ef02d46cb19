package normalize_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"go-skydata/internal/domain"
	"go-skydata/internal/logger"
	"go-skydata/internal/normalize"
)

const solBody = `{"First_UTC":"2020-10-18T14:12:53Z","Last_UTC":"2020-10-19T14:52:28Z","Season":"summer",
"PRE":{"av":721.4,"ct":113,"mn":698.6,"mx":742.1},
"HWS":{"av":5.2,"ct":88,"mn":0.3,"mx":18.9},
"WD":{"most_common":{"compass_degrees":225.0,"compass_point":"SW","ct":12}}}`

func sols(records []domain.SolWeatherRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.Sol)
	}
	return out
}

func TestMarsWeather_IntAndStringSolKeysAgree(t *testing.T) {
	n := normalize.New(nil, nil)
	asInts := `{"sol_keys":[675,677,676],"675":{},"676":{},"677":{},"validity_checks":{}}`
	asStrings := `{"sol_keys":["675","677","676"],"675":{},"676":{},"677":{},"validity_checks":{}}`

	a, err := n.MarsWeather([]byte(asInts))
	require.NoError(t, err)
	b, err := n.MarsWeather([]byte(asStrings))
	require.NoError(t, err)

	assert.Equal(t, []int{677, 676, 675}, sols(a))
	assert.Equal(t, sols(a), sols(b))
}

func TestMarsWeather_StringKeysDiscardNonNumeric(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `{"sol_keys":["675","abc","-3","676"],"675":{},"676":{}}`

	records, err := n.MarsWeather([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []int{676, 675}, sols(records))
}

func TestMarsWeather_ScanFallbackWhenSolKeysAbsent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	n := normalize.New(logger.FromZap(zap.New(core)), nil)
	body := `{"675":{},"676":{},"validity_checks":{"675":{}},"sol_hours_required":18}`

	records, err := n.MarsWeather([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, []int{676, 675}, sols(records))
	assert.Equal(t, 1, logs.FilterMessage("sol keys recovered by scanning top-level keys").Len())
}

func TestMarsWeather_ScanFallbackWhenSolKeysEmpty(t *testing.T) {
	n := normalize.New(nil, nil)
	records, err := n.MarsWeather([]byte(`{"sol_keys":[],"12":{}}`))
	require.NoError(t, err)
	assert.Equal(t, []int{12}, sols(records))
}

func TestMarsWeather_NoSols(t *testing.T) {
	n := normalize.New(nil, nil)
	records, err := n.MarsWeather([]byte(`{"sol_keys":[],"validity_checks":{}}`))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMarsWeather_NotAnObject(t *testing.T) {
	n := normalize.New(nil, nil)
	_, err := n.MarsWeather([]byte(`[1,2,3]`))
	assert.True(t, domain.IsDecode(err))
}

func TestMarsWeather_FullRecordRoundTrip(t *testing.T) {
	n := normalize.New(nil, nil)
	records, err := n.MarsWeather([]byte(`{"sol_keys":["675"],"675":` + solBody + `}`))
	require.NoError(t, err)
	require.Len(t, records, 1)

	encoded, err := json.Marshal(records[0])
	require.NoError(t, err)
	var decoded domain.SolWeatherRecord
	require.NoError(t, json.Unmarshal(encoded, &decoded))

	require.NotNil(t, decoded.Pressure)
	assert.InDelta(t, 721.4, *decoded.Pressure.Average, 1e-9)
	assert.InDelta(t, 698.6, *decoded.Pressure.Minimum, 1e-9)
	assert.InDelta(t, 742.1, *decoded.Pressure.Maximum, 1e-9)
	require.NotNil(t, decoded.WindSpeed)
	assert.InDelta(t, 5.2, *decoded.WindSpeed.Average, 1e-9)
	assert.InDelta(t, 0.3, *decoded.WindSpeed.Minimum, 1e-9)
	assert.InDelta(t, 18.9, *decoded.WindSpeed.Maximum, 1e-9)

	require.NotNil(t, decoded.Season)
	assert.Equal(t, "summer", *decoded.Season)
	require.NotNil(t, decoded.DominantWindDir)
	assert.Equal(t, "225°", *decoded.DominantWindDir)
	require.NotNil(t, decoded.FirstUTC)
	assert.Equal(t, 2020, decoded.FirstUTC.Year())
}

func TestMarsWeather_SubObjectsDecodeIndependently(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `{"sol_keys":[10],"10":{"PRE":{"av":"broken"},"HWS":{"av":4.5},"WD":{"most_common":{"compass_point":"NW"}}}}`

	records, err := n.MarsWeather([]byte(body))
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec := records[0]

	assert.Nil(t, rec.Pressure)
	require.NotNil(t, rec.WindSpeed)
	assert.InDelta(t, 4.5, *rec.WindSpeed.Average, 1e-9)
	assert.Nil(t, rec.WindSpeed.Minimum)
	require.NotNil(t, rec.DominantWindDir)
	assert.Equal(t, "NW", *rec.DominantWindDir)
	assert.Nil(t, rec.FirstUTC)
	assert.Nil(t, rec.Season)
}

func TestMarsWeather_ListedSolWithoutData(t *testing.T) {
	n := normalize.New(nil, nil)
	records, err := n.MarsWeather([]byte(`{"sol_keys":[1,2],"2":{}}`))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, sols(records))
}

func TestMarsWeather_ZeroPaddedSolKeys(t *testing.T) {
	n := normalize.New(nil, nil)
	body := `{"sol_keys":["0123","0098","007"],
		"0123":{"PRE":{"av":700}},"0098":{"PRE":{"av":710}},"7":{"PRE":{"av":720}}}`

	records, err := n.MarsWeather([]byte(body))
	require.NoError(t, err)
	require.Equal(t, []int{123, 98, 7}, sols(records))
	for i, want := range []float64{700, 710, 720} {
		require.NotNil(t, records[i].Pressure)
		require.NotNil(t, records[i].Pressure.Average)
		assert.InDelta(t, want, *records[i].Pressure.Average, 1e-9)
	}

	scanned, err := n.MarsWeather([]byte(`{"0042":{"PRE":{"av":1}}}`))
	require.NoError(t, err)
	require.Equal(t, []int{42}, sols(scanned))
	require.NotNil(t, scanned[0].Pressure)
}
