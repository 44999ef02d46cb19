package normalize

import (
	"encoding/json"
	"fmt"
	"sort"

	"go-skydata/internal/domain"
)

type epicPayload struct {
	Identifier          json.RawMessage `json:"identifier"`
	Caption             *string         `json:"caption"`
	Image               *string         `json:"image"`
	Version             *string         `json:"version"`
	Date                *string         `json:"date"`
	CentroidCoordinates json.RawMessage `json:"centroid_coordinates"`
	Centroid            json.RawMessage `json:"centroid"`
	DscovrPosition      json.RawMessage `json:"dscovr_j2000_position"`
	LunarPosition       json.RawMessage `json:"lunar_j2000_position"`
	SunPosition         json.RawMessage `json:"sun_j2000_position"`
	Attitude            json.RawMessage `json:"attitude_quaternions"`
}

// EpicImages normalizes EPIC image metadata, newest capture first.
// Images with an unparseable capture time are kept and sort last.
func (n *Normalizer) EpicImages(body []byte) ([]domain.EpicImage, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, decodeErr("$", err)
	}

	images := make([]domain.EpicImage, 0, len(raws))
	for i, raw := range raws {
		img, err := n.epicImage(fmt.Sprintf("[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	sort.SliceStable(images, func(i, j int) bool {
		a, okA := images[i].CapturedAt()
		b, okB := images[j].CapturedAt()
		if okA != okB {
			return okA
		}
		return okA && a.After(b)
	})
	return images, nil
}

func (n *Normalizer) epicImage(path string, raw json.RawMessage) (domain.EpicImage, error) {
	var p epicPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.EpicImage{}, decodeErr(path, err)
	}

	id, ok := stringOrNumber(p.Identifier)
	if !ok {
		return domain.EpicImage{}, missing(path + ".identifier")
	}
	image, err := requireString(path+".image", p.Image)
	if err != nil {
		return domain.EpicImage{}, err
	}
	date, err := requireString(path+".date", p.Date)
	if err != nil {
		return domain.EpicImage{}, err
	}

	img := domain.EpicImage{Identifier: id, Image: image, Date: date}
	if p.Caption != nil {
		img.Caption = *p.Caption
	}
	if p.Version != nil {
		img.Version = *p.Version
	}
	if _, ok := img.CapturedAt(); !ok {
		n.issue(domain.EndpointEPIC, path+".date", "unparseable capture timestamp "+date)
	}

	centroid := p.CentroidCoordinates
	centroidPath := path + ".centroid_coordinates"
	if centroid == nil {
		centroid, centroidPath = p.Centroid, path+".centroid"
	}
	img.Centroid = optionalObject[domain.Coordinates](n, centroidPath, centroid)
	img.DscovrPosition = optionalObject[domain.Vector3](n, path+".dscovr_j2000_position", p.DscovrPosition)
	img.LunarPosition = optionalObject[domain.Vector3](n, path+".lunar_j2000_position", p.LunarPosition)
	img.SunPosition = optionalObject[domain.Vector3](n, path+".sun_j2000_position", p.SunPosition)
	img.Attitude = optionalObject[domain.Quaternion](n, path+".attitude_quaternions", p.Attitude)
	return img, nil
}

// optionalObject decodes an optional sub-object on its own; failures are reported and yield nil
func optionalObject[T any](n *Normalizer, path string, raw json.RawMessage) *T {
	if raw == nil || string(raw) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		n.issue(domain.EndpointEPIC, path, err.Error())
		return nil
	}
	return &v
}

// EpicDates normalizes the available-dates list, newest first. Entries that are
// not calendar dates are dropped.
func (n *Normalizer) EpicDates(body []byte) ([]domain.Date, error) {
	var raw []string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, decodeErr("$", err)
	}

	dates := make([]domain.Date, 0, len(raw))
	for i, s := range raw {
		d, err := domain.ParseDate(s)
		if err != nil {
			n.issue(domain.EndpointEPICDates, fmt.Sprintf("[%d]", i), err.Error())
			continue
		}
		dates = append(dates, d)
	}
	sort.SliceStable(dates, func(i, j int) bool {
		return dates[i].After(dates[j].Time)
	})
	return dates, nil
}
