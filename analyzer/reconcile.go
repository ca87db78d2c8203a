package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/apidrift/apidrift/inspector/model"
)

// Match pairs a call site with the endpoint it resolved to.
type Match struct {
	Endpoint *model.Endpoint
	CallSite *model.CallSite
}

// Reconciliation is the outcome of matching call sites against endpoints.
type Reconciliation struct {
	Issues  []*model.Issue
	Matches []Match
}

// Reconcile matches every call site against the endpoint set, emitting drift
// issues and marking matched endpoints used. It requires full visibility of
// both record sets and runs after all extraction completes.
func Reconcile(config *model.Config, endpoints *model.EndpointSet, callSites []*model.CallSite) *Reconciliation {
	result := &Reconciliation{}

	// Paths reachable under some method, for method-mismatch hints.
	methodsByPath := make(map[string][]string)
	for _, key := range endpoints.Keys() {
		endpoint, _ := endpoints.Lookup(key)
		methodsByPath[endpoint.Path] = append(methodsByPath[endpoint.Path], endpoint.Method)
	}

	for _, site := range callSites {
		endpoint, ok := endpoints.Lookup(site.Key())
		if !ok {
			ref := model.SourceRef{File: site.SourceFile, Line: site.Line}
			issue := newIssue(config, model.MissingBackendEndpoint, model.SeverityCritical,
				fmt.Sprintf("no backend endpoint matches %s %s", site.Method, site.URL),
				[]model.SourceRef{ref}, nil, nil)
			if methods := methodsByPath[site.URL]; len(methods) > 0 {
				issue.Suggestions = append(issue.Suggestions,
					fmt.Sprintf("path %s exists with method %s", site.URL, strings.Join(methods, ", ")))
				mismatch := newIssue(config, model.MethodMismatch, model.SeverityHigh,
					fmt.Sprintf("call uses %s but %s is declared with %s", site.Method, site.URL, strings.Join(methods, ", ")),
					[]model.SourceRef{ref}, nil, nil)
				result.Issues = append(result.Issues, issue, mismatch)
			} else {
				issue.Suggestions = append(issue.Suggestions,
					fmt.Sprintf("declare %s %s in the backend or fix the call URL", site.Method, site.URL))
				result.Issues = append(result.Issues, issue)
			}
			continue
		}

		// Used is set exactly once here; extractors never touch it. Every
		// declaration under the key counts as reached.
		for _, declaration := range endpoints.All(site.Key()) {
			declaration.Used = true
		}
		result.Matches = append(result.Matches, Match{Endpoint: endpoint, CallSite: site})
		result.Issues = append(result.Issues, fieldIssues(config, endpoint, site)...)
	}

	for _, key := range endpoints.Keys() {
		declarations := endpoints.All(key)
		for _, extra := range declarations[:len(declarations)-1] {
			latest := declarations[len(declarations)-1]
			result.Issues = append(result.Issues, newIssue(config, model.DuplicateEndpoint, model.SeverityMedium,
				fmt.Sprintf("%s %s is declared more than once; the declaration at %s:%d shadows this one",
					extra.Method, extra.Path, latest.SourceFile, latest.Line),
				[]model.SourceRef{
					{File: extra.SourceFile, Line: extra.Line},
					{File: latest.SourceFile, Line: latest.Line},
				}, extra, nil))
		}
		for _, declaration := range declarations {
			if declaration.Used {
				continue
			}
			result.Issues = append(result.Issues, newIssue(config, model.UnusedEndpoint, model.SeverityLow,
				fmt.Sprintf("endpoint %s %s has no caller in the frontend", declaration.Method, declaration.Path),
				[]model.SourceRef{{File: declaration.SourceFile, Line: declaration.Line}}, declaration, nil))
		}
	}
	return result
}

// fieldIssues runs the parameter and body checks for one matched pair.
func fieldIssues(config *model.Config, endpoint *model.Endpoint, site *model.CallSite) []*model.Issue {
	var issues []*model.Issue
	refs := []model.SourceRef{
		{File: site.SourceFile, Line: site.Line},
		{File: endpoint.SourceFile, Line: endpoint.Line},
	}

	siteParams := make(map[string]bool, len(site.URLParams))
	for _, param := range site.URLParams {
		siteParams[param] = true
	}
	for _, param := range endpoint.PathParams {
		if siteParams[param] || strings.Contains(site.URL, ":param") {
			continue
		}
		issues = append(issues, newIssue(config, model.MissingURLParam, model.SeverityHigh,
			fmt.Sprintf("call to %s %s does not supply path parameter %q", endpoint.Method, endpoint.Path, param),
			refs, endpoint, nil))
	}

	declaredParams := make(map[string]bool, len(endpoint.PathParams))
	for _, param := range endpoint.PathParams {
		declaredParams[param] = true
	}
	for _, param := range site.URLParams {
		if declaredParams[param] || param == "param" {
			continue
		}
		issues = append(issues, newIssue(config, model.ExtraURLParam, model.SeverityLow,
			fmt.Sprintf("call supplies path parameter %q not declared by %s %s", param, endpoint.Method, endpoint.Path),
			refs, endpoint, nil))
	}

	// Body checks need both sides to be statically known.
	if len(endpoint.BodyFields) > 0 && site.BodyShape != nil {
		for _, field := range endpoint.BodyFields {
			if _, ok := site.BodyShape[field]; !ok {
				issues = append(issues, newIssue(config, model.MissingBodyField, model.SeverityMedium,
					fmt.Sprintf("request body is missing field %q expected by %s %s", field, endpoint.Method, endpoint.Path),
					refs, endpoint, nil))
			}
		}
		declared := make(map[string]bool, len(endpoint.BodyFields))
		for _, field := range endpoint.BodyFields {
			declared[field] = true
		}
		bodyFields := make([]string, 0, len(site.BodyShape))
		for field := range site.BodyShape {
			bodyFields = append(bodyFields, field)
		}
		sort.Strings(bodyFields)
		for _, field := range bodyFields {
			if !declared[field] {
				issues = append(issues, newIssue(config, model.ExtraBodyField, model.SeverityLow,
					fmt.Sprintf("request body field %q is not read by %s %s", field, endpoint.Method, endpoint.Path),
					refs, endpoint, nil))
			}
		}
	}

	siteQuery := make(map[string]bool, len(site.QueryParams))
	for _, param := range site.QueryParams {
		siteQuery[param] = true
	}
	for _, param := range endpoint.QueryParams {
		if !siteQuery[param] {
			issues = append(issues, newIssue(config, model.MissingQueryParam, model.SeverityLow,
				fmt.Sprintf("call does not supply query parameter %q read by %s %s", param, endpoint.Method, endpoint.Path),
				refs, endpoint, nil))
		}
	}
	return issues
}

// newIssue builds an issue with its severity resolved against the config's
// override map.
func newIssue(config *model.Config, issueType model.IssueType, fallback model.Severity, message string, refs []model.SourceRef, endpoint *model.Endpoint, component *model.Component) *model.Issue {
	return &model.Issue{
		ID:        model.NewIssueID(),
		Type:      issueType,
		Severity:  config.SeverityFor(issueType, fallback),
		Message:   message,
		Refs:      refs,
		Endpoint:  endpoint,
		Component: component,
	}
}
