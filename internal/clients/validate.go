package clients

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"go-skydata/internal/domain"
)

// htmlSniffLen is how much of a body is inspected for markup
const htmlSniffLen = 512

// Validate classifies a raw response. A nil error means the body is JSON from a 2xx.
func Validate(endpoint domain.Endpoint, resp *Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if endpoint == domain.EndpointRoverPhotos && resp.StatusCode == http.StatusNotFound {
			return domain.ErrNoDataForQuery
		}
		return &domain.UpstreamHTTPError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Message:  domain.TruncateMessage(upstreamMessage(resp.Body)),
		}
	}

	if looksLikeHTML(resp.Body) {
		reason := "html document instead of json"
		if title := htmlTitle(resp.Body); title != "" {
			reason += ": " + domain.TruncateMessage(title)
		}
		return &domain.UpstreamFormatError{Endpoint: endpoint, Reason: reason}
	}

	if !json.Valid(resp.Body) {
		return &domain.UpstreamFormatError{Endpoint: endpoint, Reason: "body is not valid json"}
	}
	return nil
}

func looksLikeHTML(body []byte) bool {
	head := body
	if len(head) > htmlSniffLen {
		head = head[:htmlSniffLen]
	}
	head = bytes.ToLower(bytes.TrimSpace(head))
	return bytes.HasPrefix(head, []byte("<!doctype")) ||
		bytes.HasPrefix(head, []byte("<html")) ||
		bytes.Contains(head, []byte("<html"))
}

// htmlTitle returns the text of the first <title> element, if any
func htmlTitle(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}

// upstreamMessage extracts an error message from the known NASA error shapes:
// {"error":{"message":..}}, {"error":".."}, {"message":".."} and {"msg":".."}.
// Anything else yields the raw body.
func upstreamMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, key := range []string{"error", "message", "msg"} {
			raw, ok := payload[key]
			if !ok {
				continue
			}
			var s string
			if json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
			var nested struct {
				Message string `json:"message"`
			}
			if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
				return nested.Message
			}
		}
	}
	return strings.TrimSpace(string(body))
}
