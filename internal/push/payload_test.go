package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		want       Payload
		structured bool
	}{
		{
			name:       "full object",
			raw:        `{"title": "Pay bills", "body": "finance at 09:00", "url": "/reminders"}`,
			want:       Payload{Title: "Pay bills", Body: "finance at 09:00", URL: "/reminders"},
			structured: true,
		},
		{
			name:       "plain text",
			raw:        "plain text",
			want:       Payload{Title: DefaultTitle, Body: "plain text", URL: DefaultURL},
			structured: false,
		},
		{
			name:       "plain text is kept as sent",
			raw:        "  Pay bills\n",
			want:       Payload{Title: DefaultTitle, Body: "  Pay bills\n", URL: DefaultURL},
			structured: false,
		},
		{
			name:       "object with surrounding whitespace",
			raw:        " {\"body\": \"hi\"}\n",
			want:       Payload{Title: DefaultTitle, Body: "hi", URL: DefaultURL},
			structured: true,
		},
		{
			name:       "empty",
			raw:        "",
			want:       Payload{Title: DefaultTitle, Body: DefaultBody, URL: DefaultURL},
			structured: true,
		},
		{
			name:       "empty object",
			raw:        `{}`,
			want:       Payload{Title: DefaultTitle, Body: DefaultBody, URL: DefaultURL},
			structured: true,
		},
		{
			name:       "empty strings take defaults",
			raw:        `{"title": "", "body": "", "url": ""}`,
			want:       Payload{Title: DefaultTitle, Body: DefaultBody, URL: DefaultURL},
			structured: true,
		},
		{
			name:       "non-string fields ignored",
			raw:        `{"title": 5, "body": "hi"}`,
			want:       Payload{Title: DefaultTitle, Body: "hi", URL: DefaultURL},
			structured: true,
		},
		{
			name:       "broken json",
			raw:        `{"title": "x"`,
			want:       Payload{Title: DefaultTitle, Body: `{"title": "x"`, URL: DefaultURL},
			structured: false,
		},
		{
			name:       "json array is not structured",
			raw:        `[1,2]`,
			want:       Payload{Title: DefaultTitle, Body: `[1,2]`, URL: DefaultURL},
			structured: false,
		},
		{
			name:       "json null is not structured",
			raw:        `null`,
			want:       Payload{Title: DefaultTitle, Body: `null`, URL: DefaultURL},
			structured: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, structured := ParsePayload([]byte(tt.raw))
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.structured, structured)
		})
	}
}
