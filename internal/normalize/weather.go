package normalize

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go-skydata/internal/domain"
	"go-skydata/internal/logger"
)

// nonSolKeys are top-level weather keys that are never sol indices
var nonSolKeys = map[string]bool{
	"sol_keys":        true,
	"validity_checks": true,
}

// solKey is a sol index together with the top-level key it was listed as
type solKey struct {
	sol int
	key string
}

// solKeyStrategy is one way of discovering the sol indices of a weather payload
type solKeyStrategy struct {
	name    string
	resolve func(top map[string]json.RawMessage) []solKey
}

// solKeyStrategies are tried in order; the first that yields any index wins
var solKeyStrategies = []solKeyStrategy{
	{name: "sol_keys_int", resolve: intSolKeys},
	{name: "sol_keys_string", resolve: stringSolKeys},
	{name: "top_level_scan", resolve: scanSolKeys},
}

func intSolKeys(top map[string]json.RawMessage) []solKey {
	var keys []int
	if err := json.Unmarshal(top["sol_keys"], &keys); err != nil {
		return nil
	}
	var out []solKey
	for _, k := range keys {
		if k >= 0 {
			out = append(out, solKey{sol: k, key: strconv.Itoa(k)})
		}
	}
	return out
}

func stringSolKeys(top map[string]json.RawMessage) []solKey {
	var keys []string
	if err := json.Unmarshal(top["sol_keys"], &keys); err != nil {
		return nil
	}
	var out []solKey
	for _, k := range keys {
		if sol, ok := parseSolIndex(k); ok {
			out = append(out, solKey{sol: sol, key: k})
		}
	}
	return out
}

func scanSolKeys(top map[string]json.RawMessage) []solKey {
	var out []solKey
	for k := range top {
		if nonSolKeys[k] {
			continue
		}
		if sol, ok := parseSolIndex(k); ok {
			out = append(out, solKey{sol: sol, key: k})
		}
	}
	return out
}

// parseSolIndex accepts only plain decimal digits
func parseSolIndex(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	return n, err == nil
}

type statsPayload struct {
	Av *float64 `json:"av"`
	Mn *float64 `json:"mn"`
	Mx *float64 `json:"mx"`
}

type windDirPayload struct {
	MostCommon *struct {
		CompassDegrees *float64 `json:"compass_degrees"`
		CompassPoint   *string  `json:"compass_point"`
	} `json:"most_common"`
}

// MarsWeather normalizes the InSight feed into per-sol records, newest sol first
func (n *Normalizer) MarsWeather(body []byte) ([]domain.SolWeatherRecord, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, decodeErr("$", err)
	}

	sols, strategy := resolveSolKeys(top)
	if strategy == "top_level_scan" {
		n.log.Warn("sol keys recovered by scanning top-level keys",
			logger.Int("count", len(sols)),
		)
	}

	records := make([]domain.SolWeatherRecord, 0, len(sols))
	for _, sk := range sols {
		key := sk.key
		raw, ok := top[key]
		if !ok {
			// canonical form, e.g. listed as "0123" but keyed "123"
			key = strconv.Itoa(sk.sol)
			raw, ok = top[key]
		}
		if !ok {
			n.issue(domain.EndpointWeather, sk.key, "sol listed without data")
			continue
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			n.issue(domain.EndpointWeather, key, "sol entry is not an object")
			continue
		}
		records = append(records, n.solRecord(sk.sol, key, fields))
	}
	return records, nil
}

// resolveSolKeys returns distinct sol indices sorted descending and the strategy that found them.
// When two keys name the same sol, the first one listed wins.
func resolveSolKeys(top map[string]json.RawMessage) ([]solKey, string) {
	for _, s := range solKeyStrategies {
		keys := s.resolve(top)
		if len(keys) == 0 {
			continue
		}
		seen := make(map[int]bool, len(keys))
		out := make([]solKey, 0, len(keys))
		for _, k := range keys {
			if !seen[k.sol] {
				seen[k.sol] = true
				out = append(out, k)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].sol > out[j].sol })
		return out, s.name
	}
	return nil, ""
}

func (n *Normalizer) solRecord(sol int, prefix string, fields map[string]json.RawMessage) domain.SolWeatherRecord {
	rec := domain.SolWeatherRecord{Sol: sol}

	rec.FirstUTC = n.timestamp(prefix+".First_UTC", fields["First_UTC"])
	rec.LastUTC = n.timestamp(prefix+".Last_UTC", fields["Last_UTC"])
	if raw, ok := fields["Season"]; ok {
		var season string
		if err := json.Unmarshal(raw, &season); err != nil {
			n.issue(domain.EndpointWeather, prefix+".Season", err.Error())
		} else {
			rec.Season = optionalString(&season)
		}
	}

	rec.Pressure = n.stats(prefix+".PRE", fields["PRE"])
	rec.WindSpeed = n.stats(prefix+".HWS", fields["HWS"])
	rec.AirTemperature = n.stats(prefix+".AT", fields["AT"])
	rec.DominantWindDir = n.windDirection(prefix+".WD", fields["WD"])
	return rec
}

func (n *Normalizer) timestamp(path string, raw json.RawMessage) *time.Time {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		n.issue(domain.EndpointWeather, path, err.Error())
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		n.issue(domain.EndpointWeather, path, err.Error())
		return nil
	}
	t = t.UTC()
	return &t
}

func (n *Normalizer) stats(path string, raw json.RawMessage) *domain.Stats {
	if raw == nil {
		return nil
	}
	var p statsPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		n.issue(domain.EndpointWeather, path, err.Error())
		return nil
	}
	if p.Av == nil && p.Mn == nil && p.Mx == nil {
		return nil
	}
	return &domain.Stats{Average: p.Av, Minimum: p.Mn, Maximum: p.Mx}
}

// windDirection prefers the compass degree reading and falls back to the compass point label
func (n *Normalizer) windDirection(path string, raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var p windDirPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		n.issue(domain.EndpointWeather, path, err.Error())
		return nil
	}
	if p.MostCommon == nil {
		return nil
	}
	if p.MostCommon.CompassDegrees != nil {
		s := fmt.Sprintf("%.0f°", *p.MostCommon.CompassDegrees)
		return &s
	}
	return optionalString(p.MostCommon.CompassPoint)
}
