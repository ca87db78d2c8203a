package analyzer

import (
	"fmt"
	"strings"

	"github.com/apidrift/apidrift/inspector/model"
)

// synonymGroups fold interchangeable UI vocabulary to one canonical token
// before names are compared.
var synonymGroups = map[string]string{
	"btn":    "button",
	"button": "button",
	"input":  "input",
	"field":  "input",
	"modal":  "modal",
	"dialog": "modal",
	"card":   "card",
	"panel":  "card",
}

// MatchComponents cross-references frontend component declarations against
// the design system: frontend components that fuzzily duplicate an unused
// design-system component are flagged, as are design-system components
// nothing uses. Import analysis runs first so genuinely reused components
// are never reported.
func MatchComponents(config *model.Config, frontend, design []*model.Component, imports []model.Import) []*model.Issue {
	if len(design) == 0 {
		return nil
	}
	threshold := config.SimilarityThreshold
	if threshold <= 0 {
		threshold = 0.8
	}

	designByName := make(map[string]*model.Component, len(design))
	for _, component := range design {
		designByName[component.Name] = component
	}

	// Import analysis: a frontend import of a design-system component name
	// marks it used.
	for _, imported := range imports {
		if strings.HasPrefix(imported.Module, ".") {
			continue
		}
		if component, ok := designByName[imported.Name]; ok {
			component.Used = true
			component.UsedIn = append(component.UsedIn, imported.File)
		}
	}

	var issues []*model.Issue
	claimed := make(map[string]bool)

	for _, candidate := range frontend {
		if twin, ok := designByName[candidate.Name]; ok && twin.Used {
			continue
		}
		normalized := normalizeComponentName(candidate.Name)
		var best *model.Component
		bestScore := 0.0
		for _, target := range design {
			targetName := normalizeComponentName(target.Name)
			score := similarityRatio(normalized, targetName)
			if score <= bestScore {
				continue
			}
			bestScore = score
			best = target
		}
		if best == nil {
			continue
		}
		bestName := normalizeComponentName(best.Name)
		contained := strings.Contains(normalized, bestName) || strings.Contains(bestName, normalized)
		if (bestScore > threshold || contained) && !best.Used {
			issue := newIssue(config, model.DuplicateComponent, model.SeverityMedium,
				fmt.Sprintf("component %s duplicates unused design-system component %s (similarity %.2f)",
					candidate.Name, best.Name, bestScore),
				[]model.SourceRef{
					{File: candidate.SourceFile, Line: candidate.Line},
					{File: best.SourceFile, Line: best.Line},
				}, nil, candidate)
			issue.Suggestions = append(issue.Suggestions,
				fmt.Sprintf("import %s from the design system instead of redefining it", best.Name))
			issues = append(issues, issue)
			claimed[best.Name] = true
		}
	}

	for _, component := range design {
		if component.Used || claimed[component.Name] {
			continue
		}
		issues = append(issues, newIssue(config, model.UnusedDSComponent, model.SeverityLow,
			fmt.Sprintf("design-system component %s is not used anywhere", component.Name),
			[]model.SourceRef{{File: component.SourceFile, Line: component.Line}}, nil, component))
	}
	return issues
}

// ComponentHygiene flags design-system components shipping without companion
// test or story files.
func ComponentHygiene(config *model.Config, design []*model.Component) []*model.Issue {
	var issues []*model.Issue
	for _, component := range design {
		ref := []model.SourceRef{{File: component.SourceFile, Line: component.Line}}
		if !component.HasTests {
			issues = append(issues, newIssue(config, model.ComponentMissingTests, model.SeverityLow,
				fmt.Sprintf("component %s has no test file", component.Name), ref, nil, component))
		}
		if !component.HasStories {
			issues = append(issues, newIssue(config, model.ComponentMissingStories, model.SeverityLow,
				fmt.Sprintf("component %s has no stories file", component.Name), ref, nil, component))
		}
	}
	return issues
}

// normalizeComponentName prepares a component name for comparison: a
// trailing Component suffix and leading UI/DS prefixes are stripped, the
// result lowercased, and synonym vocabulary folded to canonical tokens.
func normalizeComponentName(name string) string {
	trimmed := strings.TrimSuffix(name, "Component")
	for _, prefix := range []string{"UI", "DS", "Ui", "Ds"} {
		if strings.HasPrefix(trimmed, prefix) && len(trimmed) > len(prefix) {
			trimmed = strings.TrimPrefix(trimmed, prefix)
			break
		}
	}
	lower := strings.ToLower(trimmed)
	if canonical, ok := synonymGroups[lower]; ok {
		return canonical
	}
	for synonym, canonical := range synonymGroups {
		if synonym != canonical && strings.Contains(lower, synonym) {
			lower = strings.ReplaceAll(lower, synonym, canonical)
		}
	}
	return lower
}

// similarityRatio is a Levenshtein ratio in [0, 1].
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longest)
}

// levenshtein computes the edit distance with a two-row table.
func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	previous := make([]int, len(b)+1)
	current := make([]int, len(b)+1)
	for j := range previous {
		previous[j] = j
	}
	for i := 1; i <= len(a); i++ {
		current[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[j] = min(previous[j]+1, current[j-1]+1, previous[j-1]+cost)
		}
		previous, current = current, previous
	}
	return previous[len(b)]
}
