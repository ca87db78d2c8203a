package pathkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain path", input: "/api/users", expected: "/api/users"},
		{name: "missing leading slash", input: "api/users", expected: "/api/users"},
		{name: "trailing slash stripped", input: "/api/users/", expected: "/api/users"},
		{name: "root kept", input: "/", expected: "/"},
		{name: "repeated slashes collapsed", input: "/api//users///list", expected: "/api/users/list"},
		{name: "query dropped", input: "/api/users?page=2&limit=10", expected: "/api/users"},
		{name: "scheme and host stripped", input: "https://api.example.com:8080/api/users", expected: "/api/users"},
		{name: "template interpolation folded", input: "/api/users/${id}", expected: "/api/users/:param"},
		{name: "numeric segment folded", input: "/api/users/123", expected: "/api/users/:param"},
		{name: "named placeholder folded", input: "/api/users/:id", expected: "/api/users/:param"},
		{name: "uuid segment folded", input: "/api/orders/6f1c2d3e-4a5b-6c7d-8e9f-0a1b2c3d4e5f", expected: "/api/orders/:param"},
		{name: "mixed", input: "https://example.com/api/users/${userId}/posts/42?sort=asc", expected: "/api/users/:param/posts/:param"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Normalize(tc.input))
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	key := Normalize("/api/users/${id}")
	assert.Equal(t, key, Normalize("/api/users/123"))
	assert.Equal(t, "/api/users/:param", key)
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"/api/users/${id}",
		"/api/users/123",
		"https://host/api//v1/orders/",
		"api/users?x=1",
		"/",
		"",
		"/:id/:sub",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}

func TestPathParams(t *testing.T) {
	assert.Equal(t, []string{"id", "postId"}, PathParams("/api/users/:id/posts/:postId"))
	assert.Nil(t, PathParams("/api/users"))
}

func TestQueryParams(t *testing.T) {
	assert.Equal(t, []string{"page", "limit"}, QueryParams("/api/users?page=2&limit=10"))
	assert.Nil(t, QueryParams("/api/users"))
	assert.Equal(t, []string{"q"}, QueryParams("/search?q=term#results"))
}

func TestInterpolationParams(t *testing.T) {
	assert.Equal(t, []string{"userId"}, InterpolationParams("/api/users/${userId}"))
	assert.Equal(t, []string{"id"}, InterpolationParams("/api/users/${user.id}"))
	assert.Nil(t, InterpolationParams("/api/users"))
}
