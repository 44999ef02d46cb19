package normalize

import (
	"encoding/json"
	"fmt"
	"sort"

	"go-skydata/internal/domain"
)

type neoFeedPayload struct {
	NearEarthObjects map[string][]json.RawMessage `json:"near_earth_objects"`
}

type diameterPayload struct {
	Kilometers *struct {
		Min *float64 `json:"estimated_diameter_min"`
		Max *float64 `json:"estimated_diameter_max"`
	} `json:"kilometers"`
}

type approachPayload struct {
	Date             *string `json:"close_approach_date"`
	RelativeVelocity struct {
		KmPerSec json.RawMessage `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Kilometers json.RawMessage `json:"kilometers"`
	} `json:"miss_distance"`
	OrbitingBody *string `json:"orbiting_body"`
}

type neoPayload struct {
	ID                json.RawMessage   `json:"id"`
	Name              *string           `json:"name"`
	EstimatedDiameter *diameterPayload  `json:"estimated_diameter"`
	CloseApproachData []json.RawMessage `json:"close_approach_data"`
	Hazardous         *bool             `json:"is_potentially_hazardous_asteroid"`
	AbsoluteMagnitude *float64          `json:"absolute_magnitude_h"`
	JPLURL            *string           `json:"nasa_jpl_url"`
}

// NeoFeed flattens the date-keyed NEO feed into one sequence ordered by first
// close-approach date. Objects without any approach sort last; ties keep feed order.
func (n *Normalizer) NeoFeed(body []byte) ([]domain.NearEarthObject, error) {
	var feed neoFeedPayload
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, decodeErr("$", err)
	}
	if feed.NearEarthObjects == nil {
		return nil, missing("near_earth_objects")
	}

	objects := make([]domain.NearEarthObject, 0)
	for _, key := range bucketKeys(feed.NearEarthObjects) {
		for i, raw := range feed.NearEarthObjects[key] {
			path := fmt.Sprintf("near_earth_objects[%s][%d]", key, i)
			obj, err := n.nearEarthObject(path, raw)
			if err != nil {
				return nil, err
			}
			objects = append(objects, obj)
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		a, okA := objects[i].FirstApproach()
		b, okB := objects[j].FirstApproach()
		if okA != okB {
			return okA
		}
		return okA && a.Date.Before(b.Date.Time)
	})
	return objects, nil
}

// bucketKeys orders feed buckets by calendar date, unparseable keys last
func bucketKeys(buckets map[string][]json.RawMessage) []string {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := domain.ParseDate(keys[i])
		b, errB := domain.ParseDate(keys[j])
		switch {
		case errA == nil && errB == nil && !a.Equal(b.Time):
			return a.Before(b.Time)
		case (errA == nil) != (errB == nil):
			return errA == nil
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

func (n *Normalizer) nearEarthObject(path string, raw json.RawMessage) (domain.NearEarthObject, error) {
	var p neoPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.NearEarthObject{}, decodeErr(path, err)
	}

	id, ok := stringOrNumber(p.ID)
	if !ok {
		return domain.NearEarthObject{}, missing(path + ".id")
	}
	name, err := requireString(path+".name", p.Name)
	if err != nil {
		return domain.NearEarthObject{}, err
	}
	if p.Hazardous == nil {
		return domain.NearEarthObject{}, missing(path + ".is_potentially_hazardous_asteroid")
	}
	diameter, err := n.diameter(path+".estimated_diameter.kilometers", p.EstimatedDiameter)
	if err != nil {
		return domain.NearEarthObject{}, err
	}

	approaches := make([]domain.CloseApproachEvent, 0, len(p.CloseApproachData))
	for j, rawApproach := range p.CloseApproachData {
		event, err := n.closeApproach(fmt.Sprintf("%s.close_approach_data[%d]", path, j), rawApproach)
		if err != nil {
			return domain.NearEarthObject{}, err
		}
		approaches = append(approaches, event)
	}

	return domain.NearEarthObject{
		ID:                id,
		Name:              name,
		Diameter:          diameter,
		CloseApproaches:   approaches,
		Hazardous:         *p.Hazardous,
		AbsoluteMagnitude: p.AbsoluteMagnitude,
		JPLURL:            optionalString(p.JPLURL),
	}, nil
}

func (n *Normalizer) diameter(path string, p *diameterPayload) (domain.DiameterRange, error) {
	if p == nil || p.Kilometers == nil {
		return domain.DiameterRange{}, missing(path)
	}
	if p.Kilometers.Min == nil {
		return domain.DiameterRange{}, missing(path + ".estimated_diameter_min")
	}
	if p.Kilometers.Max == nil {
		return domain.DiameterRange{}, missing(path + ".estimated_diameter_max")
	}

	r := domain.DiameterRange{MinKm: *p.Kilometers.Min, MaxKm: *p.Kilometers.Max}
	if r.MinKm < 0 || r.MaxKm < 0 {
		n.issue(domain.EndpointNEO, path, "negative diameter clamped to zero")
		r.MinKm = max(r.MinKm, 0)
		r.MaxKm = max(r.MaxKm, 0)
	}
	if r.MinKm > r.MaxKm {
		n.issue(domain.EndpointNEO, path, "diameter bounds inverted")
		r.MinKm, r.MaxKm = r.MaxKm, r.MinKm
	}
	return r, nil
}

// closeApproach requires the date; velocity and distance become absent when they do not parse
func (n *Normalizer) closeApproach(path string, raw json.RawMessage) (domain.CloseApproachEvent, error) {
	var p approachPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.CloseApproachEvent{}, decodeErr(path, err)
	}
	date, err := requireDate(path+".close_approach_date", p.Date)
	if err != nil {
		return domain.CloseApproachEvent{}, err
	}

	event := domain.CloseApproachEvent{Date: date, OrbitingBody: optionalString(p.OrbitingBody)}
	if v, reason := parseDecimal(p.RelativeVelocity.KmPerSec); reason == "" {
		event.VelocityKmPerSec = v
	} else {
		n.issue(domain.EndpointNEO, path+".relative_velocity.kilometers_per_second", reason)
	}
	if d, reason := parseDecimal(p.MissDistance.Kilometers); reason == "" {
		event.MissDistanceKm = d
	} else {
		n.issue(domain.EndpointNEO, path+".miss_distance.kilometers", reason)
	}
	return event, nil
}
