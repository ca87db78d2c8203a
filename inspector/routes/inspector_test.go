package routes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apidrift/apidrift/inspector/model"
)

func TestInspector_InspectSource(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		filename string
		expected []*model.Endpoint
	}{
		{
			name:     "verbs with filename base path",
			filename: "users.js",
			source: `const express = require('express');
const router = express.Router();

router.get('/', listUsers);
router.post('/', createUser);
router.delete('/:id', removeUser);
`,
			expected: []*model.Endpoint{
				{Method: "GET", Path: "/api/users", RawPath: "/", ControllerRef: "listUsers"},
				{Method: "POST", Path: "/api/users", RawPath: "/", ControllerRef: "createUser"},
				{Method: "DELETE", Path: "/api/users/:param", RawPath: "/:id", ControllerRef: "removeUser", PathParams: []string{"id"}},
			},
		},
		{
			name:     "auth middleware detection",
			filename: "orders.js",
			source: `router.post('/', requireAuth, validate(schema), createOrder);
`,
			expected: []*model.Endpoint{
				{
					Method: "POST", Path: "/api/orders", RawPath: "/",
					Middleware:    []string{"requireAuth", "validate"},
					ControllerRef: "createOrder",
					RequiresAuth:  true,
				},
			},
		},
		{
			name:     "explicit use mount wins over filename",
			filename: "users.js",
			source: `app.use('/v2/accounts', router);
router.get('/:id', getAccount);
`,
			expected: []*model.Endpoint{
				{
					Method: "GET", Path: "/v2/accounts/:param", RawPath: "/:id",
					ControllerRef: "getAccount", PathParams: []string{"id"},
				},
			},
		},
		{
			name:     "route doc comment",
			filename: "index.js",
			source: `// @route /api/billing
router.get('/invoices', listInvoices);
`,
			expected: []*model.Endpoint{
				{Method: "GET", Path: "/api/billing/invoices", RawPath: "/invoices", ControllerRef: "listInvoices"},
			},
		},
		{
			name:     "base path constant",
			filename: "index.js",
			source: `const BASE_PATH = '/api/v3/reports';
router.get('/summary', summary);
`,
			expected: []*model.Endpoint{
				{Method: "GET", Path: "/api/v3/reports/summary", RawPath: "/summary", ControllerRef: "summary"},
			},
		},
		{
			name:     "generic filename falls back to routes dir",
			filename: "src/routes/index.js",
			source: `router.get('/ping', ping);
`,
			expected: []*model.Endpoint{
				{Method: "GET", Path: "/api/ping", RawPath: "/ping", ControllerRef: "ping"},
			},
		},
		{
			name:     "dynamic path skipped",
			filename: "users.js",
			source: `router.get(buildPath('users'), listUsers);
router.get('/active', listActive);
`,
			expected: []*model.Endpoint{
				{Method: "GET", Path: "/api/users/active", RawPath: "/active", ControllerRef: "listActive"},
			},
		},
		{
			name:     "non router receiver ignored",
			filename: "client.js",
			source: `axios.get('/api/users');
`,
			expected: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inspector := NewInspector(nil)
			endpoints, err := inspector.InspectSource(context.Background(), []byte(tc.source), tc.filename)
			assert.NoError(t, err)
			assert.Equal(t, len(tc.expected), len(endpoints))
			for i, expected := range tc.expected {
				if i >= len(endpoints) {
					break
				}
				actual := endpoints[i]
				assert.Equal(t, expected.Method, actual.Method)
				assert.Equal(t, expected.Path, actual.Path)
				assert.Equal(t, expected.RawPath, actual.RawPath)
				assert.Equal(t, expected.Middleware, actual.Middleware)
				assert.Equal(t, expected.ControllerRef, actual.ControllerRef)
				assert.Equal(t, expected.RequiresAuth, actual.RequiresAuth)
				assert.Equal(t, expected.PathParams, actual.PathParams)
			}
		})
	}
}

func TestInspector_InlineControllerFields(t *testing.T) {
	source := `router.post('/', requireAuth, (req, res) => {
  const { items, couponCode } = req.body;
  const page = req.query.page;
  res.json({ items });
});
`
	inspector := NewInspector(nil)
	endpoints, err := inspector.InspectSource(context.Background(), []byte(source), "orders.js")
	assert.NoError(t, err)
	if assert.Len(t, endpoints, 1) {
		assert.Equal(t, []string{"couponCode", "items"}, endpoints[0].BodyFields)
		assert.Equal(t, []string{"page"}, endpoints[0].QueryParams)
		assert.True(t, endpoints[0].RequiresAuth)
	}
}

func TestInspector_DuplicateKeysRetained(t *testing.T) {
	source := `router.get('/items', listItems);
router.get('/items', listItemsV2);
`
	inspector := NewInspector(nil)
	endpoints, err := inspector.InspectSource(context.Background(), []byte(source), "catalog.js")
	assert.NoError(t, err)
	assert.Len(t, endpoints, 2)

	set := model.NewEndpointSet()
	for _, endpoint := range endpoints {
		set.Add(endpoint)
	}
	assert.Equal(t, 1, set.Len())
	latest, ok := set.Lookup(endpoints[0].Key())
	assert.True(t, ok)
	assert.Equal(t, "listItemsV2", latest.ControllerRef)
	assert.Len(t, set.All(endpoints[0].Key()), 2)
}
