package normalize

import (
	"encoding/json"
	"strings"

	"go-skydata/internal/domain"
)

type apodPayload struct {
	Date         *string `json:"date"`
	Title        *string `json:"title"`
	Explanation  *string `json:"explanation"`
	MediaType    *string `json:"media_type"`
	URL          *string `json:"url"`
	HDURL        *string `json:"hdurl"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Copyright    *string `json:"copyright"`
}

// DailyImage normalizes an APOD response body
func (n *Normalizer) DailyImage(body []byte) (domain.DailyImage, error) {
	var p apodPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return domain.DailyImage{}, decodeErr("$", err)
	}

	date, err := requireDate("date", p.Date)
	if err != nil {
		return domain.DailyImage{}, err
	}
	title, err := requireString("title", p.Title)
	if err != nil {
		return domain.DailyImage{}, err
	}
	if p.Explanation == nil {
		return domain.DailyImage{}, missing("explanation")
	}
	url, err := requireString("url", p.URL)
	if err != nil {
		return domain.DailyImage{}, err
	}
	kind, err := requireString("media_type", p.MediaType)
	if err != nil {
		return domain.DailyImage{}, err
	}

	img := domain.DailyImage{
		Date:         date,
		Title:        strings.TrimSpace(title),
		Explanation:  *p.Explanation,
		URL:          url,
		ThumbnailURL: optionalString(p.ThumbnailURL),
	}
	switch domain.MediaType(strings.ToLower(kind)) {
	case domain.MediaImage:
		img.MediaType = domain.MediaImage
		img.HDURL = optionalString(p.HDURL)
	case domain.MediaVideo:
		img.MediaType = domain.MediaVideo
		if p.HDURL != nil {
			n.issue(domain.EndpointAPOD, "hdurl", "ignored for video media")
		}
	default:
		return domain.DailyImage{}, &domain.DecodeError{FieldPath: "media_type", Reason: "unsupported media type " + kind}
	}

	if p.Copyright != nil {
		c := strings.TrimSpace(*p.Copyright)
		img.Copyright = optionalString(&c)
	}
	return img, nil
}
