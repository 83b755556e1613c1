package webhook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
	}))
	defer ok.Close()

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name     string
		endpoint string
		wantOK   bool
		wantMsg  string
	}{
		{name: "empty", endpoint: "", wantMsg: "API endpoint must not be empty"},
		{name: "malformed", endpoint: "not a url", wantMsg: "Invalid URL"},
		{name: "reachable", endpoint: ok.URL, wantOK: true, wantMsg: "API endpoint is valid"},
		{name: "non-200", endpoint: notFound.URL, wantMsg: "API call failed with error code: 404"},
		{name: "unreachable", endpoint: closedURL, wantMsg: "Error connecting to API:"},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Validate(context.Background(), tt.endpoint)
			assert.Equal(t, tt.wantOK, got.OK)
			assert.True(t, strings.HasPrefix(got.Message, tt.wantMsg), "message %q", got.Message)
		})
	}
}
