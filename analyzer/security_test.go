package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apidrift/apidrift/inspector/model"
)

func TestApplySecurityPolicy_SensitiveEndpoint(t *testing.T) {
	endpoints := model.NewEndpointSet()
	unprotected := endpoint("DELETE", "/api/users/:param")
	endpoints.Add(unprotected)

	issues := ApplySecurityPolicy(model.DefaultConfig(), endpoints, nil)

	counts := countByType(issues)
	assert.Equal(t, 1, counts[model.SensitiveEndpointNoAuth])
	assert.Equal(t, 1, counts[model.SensitiveMethodNoAuth])
	for _, issue := range issues {
		switch issue.Type {
		case model.SensitiveEndpointNoAuth:
			assert.Equal(t, model.SeverityCritical, issue.Severity)
			assert.NotEmpty(t, issue.Suggestions)
		case model.SensitiveMethodNoAuth:
			assert.Equal(t, model.SeverityHigh, issue.Severity)
		}
	}
}

func TestApplySecurityPolicy_AuthenticatedEndpointClean(t *testing.T) {
	endpoints := model.NewEndpointSet()
	protected := endpoint("DELETE", "/api/users/:param")
	protected.RequiresAuth = true
	protected.Middleware = []string{"requireAuth"}
	endpoints.Add(protected)

	issues := ApplySecurityPolicy(model.DefaultConfig(), endpoints, nil)
	assert.Empty(t, issues)
}

func TestApplySecurityPolicy_ExemptPaths(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"health check", "GET", "/health"},
		{"login entry point", "POST", "/api/auth/login"},
		{"static asset", "GET", "/static/app.js"},
		{"site root", "GET", "/"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			endpoints := model.NewEndpointSet()
			endpoints.Add(endpoint(tc.method, tc.path))
			issues := ApplySecurityPolicy(model.DefaultConfig(), endpoints, nil)
			assert.Empty(t, issues)
		})
	}
}

func TestApplySecurityPolicy_PublicEndpointGlob(t *testing.T) {
	config := model.DefaultConfig()
	config.PublicEndpoints = []string{"/api/catalog/*"}

	endpoints := model.NewEndpointSet()
	endpoints.Add(endpoint("GET", "/api/catalog/products"))
	issues := ApplySecurityPolicy(config, endpoints, nil)
	assert.Empty(t, issues)
}

func TestApplySecurityPolicy_ConfiguredPattern(t *testing.T) {
	config := model.DefaultConfig()
	config.RequireAuthPatterns = []string{`^GET /api/reports`}

	endpoints := model.NewEndpointSet()
	endpoints.Add(endpoint("GET", "/api/reports/summary"))
	issues := ApplySecurityPolicy(config, endpoints, nil)

	assert.Equal(t, 1, countByType(issues)[model.SensitiveEndpointNoAuth])
}

func TestApplySecurityPolicy_MissingAuthHeader(t *testing.T) {
	protected := endpoint("POST", "/api/orders")
	protected.RequiresAuth = true

	bare := site("POST", "/api/orders")
	authed := site("POST", "/api/orders")
	authed.HasAuthHeader = true

	endpoints := model.NewEndpointSet()
	endpoints.Add(protected)
	matches := []Match{
		{Endpoint: protected, CallSite: bare},
		{Endpoint: protected, CallSite: authed},
	}
	issues := ApplySecurityPolicy(model.DefaultConfig(), endpoints, matches)

	counts := countByType(issues)
	assert.Equal(t, 1, counts[model.MissingAuthHeader])
	assert.Equal(t, 0, counts[model.SensitiveEndpointNoAuth])
}

func TestReconcileAndSecurity_UnauthenticatedCallToProtectedEndpoint(t *testing.T) {
	protected := endpoint("GET", "/api/users/:param")
	protected.PathParams = []string{"id"}
	protected.RequiresAuth = true
	protected.Middleware = []string{"requireAuth"}

	// axios.get('/api/users/42') with no headers normalizes onto the same key.
	bare := site("GET", "/api/users/:param")
	bare.RawURL = "/api/users/42"
	bare.Shape = model.ShapeHTTPClientMethod

	endpoints := model.NewEndpointSet()
	endpoints.Add(protected)
	reconciliation := Reconcile(model.DefaultConfig(), endpoints, []*model.CallSite{bare})
	issues := append(reconciliation.Issues,
		ApplySecurityPolicy(model.DefaultConfig(), endpoints, reconciliation.Matches)...)

	counts := countByType(issues)
	assert.Equal(t, 0, counts[model.MissingBackendEndpoint])
	assert.Equal(t, 1, counts[model.MissingAuthHeader])
	for _, issue := range issues {
		if issue.Type == model.MissingAuthHeader {
			assert.Equal(t, model.SeverityHigh, issue.Severity)
		}
	}
	assert.True(t, protected.Used)
}

func TestApplySecurityPolicy_NonSensitivePathQuietForGet(t *testing.T) {
	endpoints := model.NewEndpointSet()
	endpoints.Add(endpoint("GET", "/api/weather"))

	issues := ApplySecurityPolicy(model.DefaultConfig(), endpoints, nil)
	assert.Empty(t, issues)
}
