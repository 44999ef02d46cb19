package normalize

import (
	"encoding/json"
	"fmt"

	"go-skydata/internal/domain"
)

type roverPhotosPayload struct {
	Photos *[]json.RawMessage `json:"photos"`
}

type photoPayload struct {
	ID        *int    `json:"id"`
	Sol       *int    `json:"sol"`
	ImgSrc    *string `json:"img_src"`
	EarthDate *string `json:"earth_date"`
	Camera    *struct {
		ID       *int    `json:"id"`
		Name     *string `json:"name"`
		FullName *string `json:"full_name"`
		RoverID  *int    `json:"rover_id"`
	} `json:"camera"`
	Rover *struct {
		ID          *int    `json:"id"`
		Name        *string `json:"name"`
		LandingDate *string `json:"landing_date"`
		LaunchDate  *string `json:"launch_date"`
		Status      *string `json:"status"`
	} `json:"rover"`
}

// RoverPhotos normalizes one page of rover photos. An empty page is not an error.
func (n *Normalizer) RoverPhotos(body []byte) ([]domain.RoverPhoto, error) {
	var p roverPhotosPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, decodeErr("$", err)
	}
	if p.Photos == nil {
		return nil, missing("photos")
	}

	photos := make([]domain.RoverPhoto, 0, len(*p.Photos))
	for i, raw := range *p.Photos {
		photo, err := n.roverPhoto(fmt.Sprintf("photos[%d]", i), raw)
		if err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func (n *Normalizer) roverPhoto(path string, raw json.RawMessage) (domain.RoverPhoto, error) {
	var p photoPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.RoverPhoto{}, decodeErr(path, err)
	}

	if p.ID == nil {
		return domain.RoverPhoto{}, missing(path + ".id")
	}
	if p.Sol == nil {
		return domain.RoverPhoto{}, missing(path + ".sol")
	}
	imgSrc, err := requireString(path+".img_src", p.ImgSrc)
	if err != nil {
		return domain.RoverPhoto{}, err
	}
	earthDate, err := requireDate(path+".earth_date", p.EarthDate)
	if err != nil {
		return domain.RoverPhoto{}, err
	}

	if p.Rover == nil {
		return domain.RoverPhoto{}, missing(path + ".rover")
	}
	rp := path + ".rover"
	if p.Rover.ID == nil {
		return domain.RoverPhoto{}, missing(rp + ".id")
	}
	roverName, err := requireString(rp+".name", p.Rover.Name)
	if err != nil {
		return domain.RoverPhoto{}, err
	}
	landing, err := requireDate(rp+".landing_date", p.Rover.LandingDate)
	if err != nil {
		return domain.RoverPhoto{}, err
	}
	launch, err := requireDate(rp+".launch_date", p.Rover.LaunchDate)
	if err != nil {
		return domain.RoverPhoto{}, err
	}
	status, err := requireString(rp+".status", p.Rover.Status)
	if err != nil {
		return domain.RoverPhoto{}, err
	}

	if p.Camera == nil {
		return domain.RoverPhoto{}, missing(path + ".camera")
	}
	cp := path + ".camera"
	if p.Camera.ID == nil {
		return domain.RoverPhoto{}, missing(cp + ".id")
	}
	camName, err := requireString(cp+".name", p.Camera.Name)
	if err != nil {
		return domain.RoverPhoto{}, err
	}
	fullName, err := requireString(cp+".full_name", p.Camera.FullName)
	if err != nil {
		return domain.RoverPhoto{}, err
	}
	roverID := *p.Rover.ID
	if p.Camera.RoverID != nil {
		roverID = *p.Camera.RoverID
	} else {
		n.issue(domain.EndpointRoverPhotos, cp+".rover_id", "missing, using rover id")
	}

	return domain.RoverPhoto{
		ID:  *p.ID,
		Sol: *p.Sol,
		Camera: domain.RoverCamera{
			ID:       *p.Camera.ID,
			Name:     camName,
			FullName: fullName,
			RoverID:  roverID,
		},
		ImageURL:  imgSrc,
		EarthDate: earthDate,
		Rover: domain.Rover{
			ID:          *p.Rover.ID,
			Name:        roverName,
			LandingDate: landing,
			LaunchDate:  launch,
			Status:      status,
		},
	}, nil
}
