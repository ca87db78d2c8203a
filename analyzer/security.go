package analyzer

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/apidrift/apidrift/inspector/model"
)

// sensitiveKeywords is the built-in sensitivity lexicon, consulted after any
// configured patterns.
var sensitiveKeywords = []string{
	"admin", "delete", "remove", "destroy", "create", "add", "update",
	"edit", "modify", "password", "auth", "login", "register", "user",
	"profile", "settings", "config", "upload", "file",
}

// exemptPaths never require auth: health checks, auth entry points, and the
// site root.
var exemptPaths = []string{
	"/health", "/healthz", "/status", "/version", "/ping", "/metrics",
	"/login", "/register", "/signin", "/signup", "/logout",
	"/password-reset", "/reset-password", "/forgot-password",
	"/auth/login", "/auth/register", "/auth/refresh",
}

// exemptPrefixes cover static-asset trees.
var exemptPrefixes = []string{"/static", "/public", "/assets", "/favicon"}

var staticExtRe = regexp.MustCompile(`\.(css|js|map|png|jpe?g|gif|svg|ico|woff2?|ttf|eot|txt|webp)$`)

// ApplySecurityPolicy classifies endpoint sensitivity and authentication
// gaps: sensitive endpoints without auth middleware, mutating methods
// without auth, and authenticated endpoints called without an auth header.
func ApplySecurityPolicy(config *model.Config, endpoints *model.EndpointSet, matches []Match) []*model.Issue {
	var issues []*model.Issue
	policy := newPolicy(config)

	for _, key := range endpoints.Keys() {
		for _, endpoint := range endpoints.All(key) {
			if endpoint.RequiresAuth || policy.exempt(endpoint.Path) {
				continue
			}
			ref := []model.SourceRef{{File: endpoint.SourceFile, Line: endpoint.Line}}
			if policy.sensitive(endpoint) {
				issue := newIssue(config, model.SensitiveEndpointNoAuth, model.SeverityCritical,
					fmt.Sprintf("sensitive endpoint %s %s has no auth middleware", endpoint.Method, endpoint.Path),
					ref, endpoint, nil)
				issue.Suggestions = append(issue.Suggestions, "add an authentication middleware to this route")
				issues = append(issues, issue)
			}
			if policy.sensitiveMethod(endpoint.Method) {
				issues = append(issues, newIssue(config, model.SensitiveMethodNoAuth, model.SeverityHigh,
					fmt.Sprintf("%s %s mutates state but has no auth middleware", endpoint.Method, endpoint.Path),
					ref, endpoint, nil))
			}
		}
	}

	for _, match := range matches {
		if !match.Endpoint.RequiresAuth || match.CallSite.HasAuthHeader {
			continue
		}
		issues = append(issues, newIssue(config, model.MissingAuthHeader, model.SeverityHigh,
			fmt.Sprintf("call to protected endpoint %s %s sends no auth header", match.Endpoint.Method, match.Endpoint.Path),
			[]model.SourceRef{
				{File: match.CallSite.SourceFile, Line: match.CallSite.Line},
				{File: match.Endpoint.SourceFile, Line: match.Endpoint.Line},
			}, match.Endpoint, nil))
	}
	return issues
}

// policy is the compiled sensitivity classifier for one run.
type policy struct {
	config   *model.Config
	patterns []*regexp.Regexp
	methods  map[string]bool
	public   []string
}

func newPolicy(config *model.Config) *policy {
	compiled := &policy{config: config, methods: make(map[string]bool)}
	for _, pattern := range config.RequireAuthPatterns {
		if re, err := regexp.Compile(pattern); err == nil {
			compiled.patterns = append(compiled.patterns, re)
		}
	}
	for _, method := range config.SensitiveMethods {
		compiled.methods[strings.ToUpper(method)] = true
	}
	compiled.public = config.PublicEndpoints
	return compiled
}

// sensitive classifies an endpoint: explicit config patterns take
// precedence, then the built-in keyword list over the identity key.
func (p *policy) sensitive(endpoint *model.Endpoint) bool {
	key := endpoint.Key()
	for _, re := range p.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	lower := strings.ToLower(key)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func (p *policy) sensitiveMethod(method string) bool {
	return p.methods[strings.ToUpper(method)]
}

// exempt reports whether a path is on the allowlist: configured public
// endpoints, health/auth entry points, static assets, or the site root.
func (p *policy) exempt(endpointPath string) bool {
	if endpointPath == "/" {
		return true
	}
	for _, public := range p.public {
		if endpointPath == public || matchGlob(public, endpointPath) {
			return true
		}
	}
	for _, exemptPath := range exemptPaths {
		if endpointPath == exemptPath || strings.HasSuffix(endpointPath, exemptPath) {
			return true
		}
	}
	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(endpointPath, prefix) {
			return true
		}
	}
	return staticExtRe.MatchString(endpointPath)
}

func matchGlob(pattern, endpointPath string) bool {
	ok, err := path.Match(pattern, endpointPath)
	return err == nil && ok
}
