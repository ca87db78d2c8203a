// Package analyzer orchestrates extraction across the backend, frontend, and
// design-system roots and reconciles the resulting record sets into issues.
package analyzer

import (
	"context"
	"fmt"

	"github.com/apidrift/apidrift/inspector/model"
	"github.com/apidrift/apidrift/inspector/repository"
)

// Roots names the three source trees under analysis. Backend and Frontend
// are required; an empty DesignSystem skips component cross-referencing.
type Roots struct {
	Backend      string
	Frontend     string
	DesignSystem string
}

// Result is the complete output of one run: the three record sets, the
// issues derived from them, and per-file diagnostics for files that could
// not be analyzed.
type Result struct {
	Projects           map[string]*repository.Project `json:"projects"`
	Endpoints          []*model.Endpoint              `json:"endpoints"`
	CallSites          []*model.CallSite              `json:"callSites"`
	FrontendComponents []*model.Component             `json:"frontendComponents"`
	DesignComponents   []*model.Component             `json:"designComponents"`
	Issues             []*model.Issue                 `json:"issues"`
	Diagnostics        []model.Diagnostic             `json:"diagnostics"`
}

// Analyze runs the full pipeline: scan, extract (in parallel, cached),
// then reconcile, apply security policy, and cross-reference components.
func (a *Analyzer) Analyze(ctx context.Context, roots Roots) (*Result, error) {
	if roots.Backend == "" || roots.Frontend == "" {
		return nil, fmt.Errorf("backend and frontend roots are required")
	}

	backend, err := a.extractBackend(ctx, roots.Backend)
	if err != nil {
		return nil, err
	}
	frontend, err := a.extractFrontend(ctx, roots.Frontend)
	if err != nil {
		return nil, err
	}
	var design *designExtraction
	if roots.DesignSystem != "" {
		design, err = a.extractDesign(ctx, roots.DesignSystem)
		if err != nil {
			return nil, err
		}
	}

	result := &Result{
		Projects: map[string]*repository.Project{
			"backend":  repository.DetectProject(ctx, roots.Backend),
			"frontend": repository.DetectProject(ctx, roots.Frontend),
		},
		Endpoints:          backend.endpoints,
		CallSites:          frontend.callSites,
		FrontendComponents: frontend.components,
	}
	result.Diagnostics = append(result.Diagnostics, backend.diagnostics...)
	result.Diagnostics = append(result.Diagnostics, frontend.diagnostics...)
	if design != nil {
		result.Projects["designSystem"] = repository.DetectProject(ctx, roots.DesignSystem)
		result.DesignComponents = design.components
		result.Diagnostics = append(result.Diagnostics, design.diagnostics...)
	}

	endpointSet := model.NewEndpointSet()
	for _, endpoint := range backend.endpoints {
		endpointSet.Add(endpoint)
	}

	reconciliation := Reconcile(a.config, endpointSet, frontend.callSites)
	result.Issues = append(result.Issues, reconciliation.Issues...)
	result.Issues = append(result.Issues, ApplySecurityPolicy(a.config, endpointSet, reconciliation.Matches)...)
	if design != nil {
		result.Issues = append(result.Issues, MatchComponents(a.config, frontend.components, design.components, frontend.imports)...)
		result.Issues = append(result.Issues, ComponentHygiene(a.config, design.components)...)
	}

	a.logger.Debug("analysis complete",
		"endpoints", len(result.Endpoints),
		"callSites", len(result.CallSites),
		"issues", len(result.Issues),
		"diagnostics", len(result.Diagnostics))
	return result, nil
}
