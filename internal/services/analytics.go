package services

import (
	"fmt"
	"sort"
	"strings"

	"go-skydata/internal/domain"
)

// HazardFilter selects objects by their hazard flag
type HazardFilter string

const (
	HazardAll       HazardFilter = "all"
	HazardHazardous HazardFilter = "hazardous"
	HazardSafe      HazardFilter = "safe"
)

// NeoSortKey orders a NEO list
type NeoSortKey string

const (
	SortByDate     NeoSortKey = "date"
	SortByDistance NeoSortKey = "distance"
	SortBySize     NeoSortKey = "size"
	SortBySpeed    NeoSortKey = "speed"
)

// NeoFilter narrows a NEO list. Query matches names case-insensitively.
type NeoFilter struct {
	Hazard HazardFilter
	Query  string
}

// ParseHazardFilter maps a query value to a HazardFilter; empty means all
func ParseHazardFilter(s string) (HazardFilter, error) {
	switch f := HazardFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return HazardAll, nil
	case HazardAll, HazardHazardous, HazardSafe:
		return f, nil
	default:
		return "", &domain.InvalidArgumentError{Argument: "hazard", Message: fmt.Sprintf("unknown filter %q", s)}
	}
}

// ParseNeoSortKey maps a query value to a NeoSortKey; empty means date
func ParseNeoSortKey(s string) (NeoSortKey, error) {
	switch k := NeoSortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByDistance, SortBySize, SortBySpeed:
		return k, nil
	default:
		return "", &domain.InvalidArgumentError{Argument: "sort", Message: fmt.Sprintf("unknown sort key %q", s)}
	}
}

// FilterNEOs returns the objects matching f, preserving order
func FilterNEOs(objs []domain.NearEarthObject, f NeoFilter) []domain.NearEarthObject {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.NearEarthObject, 0, len(objs))
	for _, o := range objs {
		switch f.Hazard {
		case HazardHazardous:
			if !o.Hazardous {
				continue
			}
		case HazardSafe:
			if o.Hazardous {
				continue
			}
		}
		if query != "" && !strings.Contains(strings.ToLower(o.Name), query) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// sortValue extracts the value an object is ordered by; ok is false when it is absent
func sortValue(o domain.NearEarthObject, key NeoSortKey) (float64, bool) {
	if key == SortBySize {
		return o.Diameter.MaxKm, true
	}
	first, ok := o.FirstApproach()
	if !ok {
		return 0, false
	}
	switch key {
	case SortByDistance:
		if first.MissDistanceKm == nil {
			return 0, false
		}
		return *first.MissDistanceKm, true
	case SortBySpeed:
		if first.VelocityKmPerSec == nil {
			return 0, false
		}
		return *first.VelocityKmPerSec, true
	default:
		return float64(first.Date.Unix()), true
	}
}

// SortNEOs returns a sorted copy: date and distance ascending, size and speed
// descending. Objects without a value for the key keep their relative order at the end.
func SortNEOs(objs []domain.NearEarthObject, key NeoSortKey) []domain.NearEarthObject {
	type keyed struct {
		obj   domain.NearEarthObject
		value float64
	}
	var withValue []keyed
	var without []domain.NearEarthObject
	for _, o := range objs {
		if v, ok := sortValue(o, key); ok {
			withValue = append(withValue, keyed{obj: o, value: v})
		} else {
			without = append(without, o)
		}
	}

	descending := key == SortBySize || key == SortBySpeed
	sort.SliceStable(withValue, func(i, j int) bool {
		if descending {
			return withValue[i].value > withValue[j].value
		}
		return withValue[i].value < withValue[j].value
	})

	out := make([]domain.NearEarthObject, 0, len(objs))
	for _, k := range withValue {
		out = append(out, k.obj)
	}
	return append(out, without...)
}

// NeoSummary aggregates a NEO list. Derived values are nil when no object carries them.
type NeoSummary struct {
	Total           int      `json:"total"`
	Hazardous       int      `json:"hazardous"`
	AverageSpeedKmS *float64 `json:"average_speed_km_s,omitempty"`
	AverageSizeKm   *float64 `json:"average_size_km,omitempty"`
	FastestID       *string  `json:"fastest_id,omitempty"`
	ClosestID       *string  `json:"closest_id,omitempty"`
}

// SummarizeNEOs computes counts and extremes over each object's first approach
func SummarizeNEOs(objs []domain.NearEarthObject) NeoSummary {
	summary := NeoSummary{Total: len(objs)}
	var speedSum, sizeSum float64
	var speedCount int
	var fastest, closest float64

	for _, o := range objs {
		id := o.ID
		if o.Hazardous {
			summary.Hazardous++
		}
		sizeSum += (o.Diameter.MinKm + o.Diameter.MaxKm) / 2

		first, ok := o.FirstApproach()
		if !ok {
			continue
		}
		if v := first.VelocityKmPerSec; v != nil {
			speedSum += *v
			speedCount++
			if summary.FastestID == nil || *v > fastest {
				fastest, summary.FastestID = *v, &id
			}
		}
		if d := first.MissDistanceKm; d != nil {
			if summary.ClosestID == nil || *d < closest {
				closest, summary.ClosestID = *d, &id
			}
		}
	}

	if speedCount > 0 {
		avg := speedSum / float64(speedCount)
		summary.AverageSpeedKmS = &avg
	}
	if len(objs) > 0 {
		avg := sizeSum / float64(len(objs))
		summary.AverageSizeKm = &avg
	}
	return summary
}

// WeatherSummary aggregates the sols of a weather window
type WeatherSummary struct {
	Sols            int      `json:"sols"`
	LatestSol       *int     `json:"latest_sol,omitempty"`
	AveragePressure *float64 `json:"average_pressure_pa,omitempty"`
	AverageWind     *float64 `json:"average_wind_speed_ms,omitempty"`
	MaxWind         *float64 `json:"max_wind_speed_ms,omitempty"`
}

// SummarizeWeather averages the per-sol averages; sols missing a value are skipped
func SummarizeWeather(sols []domain.SolWeatherRecord) WeatherSummary {
	summary := WeatherSummary{Sols: len(sols)}
	var pressure, wind mean
	var maxWind *float64

	for _, s := range sols {
		if summary.LatestSol == nil || s.Sol > *summary.LatestSol {
			sol := s.Sol
			summary.LatestSol = &sol
		}
		if s.Pressure != nil && s.Pressure.Average != nil {
			pressure.add(*s.Pressure.Average)
		}
		if s.WindSpeed == nil {
			continue
		}
		if s.WindSpeed.Average != nil {
			wind.add(*s.WindSpeed.Average)
		}
		if peak := s.WindSpeed.Maximum; peak != nil && (maxWind == nil || *peak > *maxWind) {
			v := *peak
			maxWind = &v
		}
	}

	summary.AveragePressure = pressure.value()
	summary.AverageWind = wind.value()
	summary.MaxWind = maxWind
	return summary
}

type mean struct {
	sum   float64
	count int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.count++
}

func (m *mean) value() *float64 {
	if m.count == 0 {
		return nil
	}
	v := m.sum / float64(m.count)
	return &v
}
