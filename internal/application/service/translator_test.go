package service

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateRequest(t *testing.T) {
	t.Run("method, path and id are carried over", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/foo", nil)

		event, err := TranslateRequest(42, req)

		require.NoError(t, err)
		assert.Equal(t, uint64(42), event.RequestID)
		assert.Equal(t, "GET", event.Method)
		assert.Equal(t, "/foo", event.Path)
		assert.Equal(t, "", event.Body)
	})

	t.Run("query string is kept verbatim", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/search?q=a%20b&page=2", nil)

		event, err := TranslateRequest(1, req)

		require.NoError(t, err)
		assert.Equal(t, "/search?q=a%20b&page=2", event.Path)
	})

	t.Run("headers are lower-cased and collapse to the first value", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Token", "abc")
		req.Header.Add("Accept", "text/html")
		req.Header.Add("Accept", "application/json")

		event, err := TranslateRequest(1, req)

		require.NoError(t, err)
		assert.Equal(t, "abc", event.Headers["x-token"])
		assert.Equal(t, "text/html", event.Headers["accept"])
		assert.NotContains(t, event.Headers, "X-Token")
	})

	t.Run("body is coerced to a string", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/bar", strings.NewReader(`{"a":1}`))

		event, err := TranslateRequest(1, req)

		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, event.Body)
	})
}
