package components

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/apidrift/apidrift/inspector/model"
)

// categoryLexicon assigns a category from keywords; evaluation order matters
// and the first matching keyword wins.
var categoryLexicon = []struct {
	category string
	keywords []string
}{
	{model.CategoryButtons, []string{"button", "btn"}},
	{model.CategoryForms, []string{"form", "input", "field", "select", "checkbox", "radio", "textarea", "switch", "slider"}},
	{model.CategoryOverlays, []string{"modal", "dialog", "drawer", "popover", "tooltip", "overlay", "sheet"}},
	{model.CategoryNavigation, []string{"nav", "menu", "breadcrumb", "tab", "sidebar", "link", "pagination"}},
	{model.CategoryLayout, []string{"layout", "grid", "container", "row", "col", "stack", "divider", "spacer", "section"}},
	{model.CategoryTypography, []string{"text", "title", "heading", "label", "paragraph", "typography"}},
	{model.CategoryDataDisplay, []string{"table", "list", "card", "avatar", "badge", "tag", "chip", "tree"}},
	{model.CategoryFeedback, []string{"alert", "toast", "spinner", "loader", "progress", "skeleton", "notification", "banner"}},
	{model.CategoryIcons, []string{"icon"}},
}

// Categorize assigns a component category from the keyword lexicon over the
// component name, then its file path.
func Categorize(name, file string) string {
	lowerName := strings.ToLower(name)
	for _, entry := range categoryLexicon {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowerName, keyword) {
				return entry.category
			}
		}
	}
	lowerPath := strings.ToLower(filepath.ToSlash(file))
	for _, entry := range categoryLexicon {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowerPath, keyword) {
				return entry.category
			}
		}
	}
	return model.CategoryMisc
}

var (
	hookCallRe    = regexp.MustCompile(`\buse[A-Z]\w*\(`)
	ternaryRe     = regexp.MustCompile(`\?[^.:]`)
	logicalAndRe  = regexp.MustCompile(`&&`)
	handlerPropRe = regexp.MustCompile(`\bon[A-Z]\w*=`)
	jsxElementRe  = regexp.MustCompile(`<[A-Za-z]`)
)

const maxComplexity = 10

// ComplexityScore computes a weighted complexity over a component's text:
// hook calls x2, conditional-render operators x1, event-handler props x1,
// JSX elements x0.5, capped at 10.
func ComplexityScore(text string) int {
	score := float64(len(hookCallRe.FindAllString(text, -1))) * 2
	score += float64(len(ternaryRe.FindAllString(text, -1)))
	score += float64(len(logicalAndRe.FindAllString(text, -1)))
	score += float64(len(handlerPropRe.FindAllString(text, -1)))
	score += float64(len(jsxElementRe.FindAllString(text, -1))) * 0.5
	if int(score) > maxComplexity {
		return maxComplexity
	}
	return int(score)
}

// hasSibling checks for companion files next to a component source:
// Button.jsx -> Button.test.jsx, __tests__/Button.test.jsx, Button.stories.tsx.
func hasSibling(file string, markers []string, companionDir string) bool {
	dir := filepath.Dir(file)
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	candidates := make([]string, 0, 8)
	for _, marker := range markers {
		for _, siblingExt := range []string{ext, ".js", ".jsx", ".ts", ".tsx"} {
			candidates = append(candidates, filepath.Join(dir, stem+marker+strings.TrimPrefix(siblingExt, ".")))
		}
	}
	if companionDir != "" {
		for _, marker := range markers {
			candidates = append(candidates,
				filepath.Join(dir, companionDir, stem+marker+strings.TrimPrefix(ext, ".")),
				filepath.Join(dir, companionDir, base))
		}
	}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return true
		}
	}
	return false
}
