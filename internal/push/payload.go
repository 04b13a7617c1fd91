// Package push is the background push handler: it turns push payloads into
// platform notifications and routes notification clicks back to a client.
// It runs in its own process and never sees the client's cache.
package push

import "encoding/json"

// Defaults applied to missing payload fields.
const (
	DefaultTitle = "Task Reminder"
	DefaultBody  = "You have a task due!"
	DefaultURL   = "/"
)

// Payload is a decoded push message.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url"`
}

// ParsePayload decodes raw as a JSON object with optional title, body and
// url. Anything that is not a JSON object becomes the body, unchanged,
// under the default title. Empty fields take their defaults. structured
// reports whether raw was a JSON object.
func ParsePayload(raw []byte) (p Payload, structured bool) {
	structured = true
	if len(raw) > 0 {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil && fields != nil {
			p.Title = stringField(fields, "title")
			p.Body = stringField(fields, "body")
			p.URL = stringField(fields, "url")
		} else {
			p.Body = string(raw)
			structured = false
		}
	}

	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if p.Body == "" {
		p.Body = DefaultBody
	}
	if p.URL == "" {
		p.URL = DefaultURL
	}
	return p, structured
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
