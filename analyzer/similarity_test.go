package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/apidrift/apidrift/inspector/model"
)

func component(name, file string) *model.Component {
	return &model.Component{
		Name:       name,
		Kind:       model.KindFunction,
		SourceFile: file,
		Line:       1,
	}
}

func TestMatchComponents_SynonymDuplicate(t *testing.T) {
	frontend := []*model.Component{component("Btn", "src/Btn.jsx")}
	design := []*model.Component{component("Button", "ds/Button.jsx")}

	issues := MatchComponents(model.DefaultConfig(), frontend, design, nil)

	counts := countByType(issues)
	// Btn and Button both normalize to the same token.
	assert.Equal(t, 1, counts[model.DuplicateComponent])
	// A claimed twin is not additionally reported unused.
	assert.Equal(t, 0, counts[model.UnusedDSComponent])
}

func TestMatchComponents_PrefixAndSuffixStripping(t *testing.T) {
	frontend := []*model.Component{component("ModalComponent", "src/ModalComponent.jsx")}
	design := []*model.Component{component("DSDialog", "ds/DSDialog.jsx")}

	issues := MatchComponents(model.DefaultConfig(), frontend, design, nil)
	assert.Equal(t, 1, countByType(issues)[model.DuplicateComponent])
}

func TestMatchComponents_ImportMarksUsed(t *testing.T) {
	frontend := []*model.Component{component("Page", "src/Page.jsx")}
	design := []*model.Component{component("Button", "ds/Button.jsx")}
	imports := []model.Import{
		{Name: "Button", Module: "@acme/ui", File: "src/Page.jsx"},
	}

	issues := MatchComponents(model.DefaultConfig(), frontend, design, imports)

	assert.True(t, design[0].Used)
	assert.Equal(t, []string{"src/Page.jsx"}, design[0].UsedIn)
	counts := countByType(issues)
	assert.Equal(t, 0, counts[model.UnusedDSComponent])
	assert.Equal(t, 0, counts[model.DuplicateComponent])
}

func TestMatchComponents_RelativeImportIgnored(t *testing.T) {
	design := []*model.Component{component("Button", "ds/Button.jsx")}
	imports := []model.Import{
		{Name: "Button", Module: "./Button", File: "src/Page.jsx"},
	}

	issues := MatchComponents(model.DefaultConfig(), nil, design, imports)

	assert.False(t, design[0].Used)
	assert.Equal(t, 1, countByType(issues)[model.UnusedDSComponent])
}

func TestMatchComponents_UsedDesignComponentNotDuplicated(t *testing.T) {
	frontend := []*model.Component{component("Button", "src/Button.jsx")}
	design := []*model.Component{component("Button", "ds/Button.jsx")}
	imports := []model.Import{
		{Name: "Button", Module: "@acme/ui", File: "src/Button.jsx"},
	}

	issues := MatchComponents(model.DefaultConfig(), frontend, design, imports)
	assert.Empty(t, issues)
}

func TestMatchComponents_DissimilarNamesUnclaimed(t *testing.T) {
	frontend := []*model.Component{component("Invoice", "src/Invoice.jsx")}
	design := []*model.Component{component("Tooltip", "ds/Tooltip.jsx")}

	issues := MatchComponents(model.DefaultConfig(), frontend, design, nil)

	counts := countByType(issues)
	assert.Equal(t, 0, counts[model.DuplicateComponent])
	assert.Equal(t, 1, counts[model.UnusedDSComponent])
}

func TestMatchComponents_NoDesignSystem(t *testing.T) {
	frontend := []*model.Component{component("Button", "src/Button.jsx")}
	assert.Nil(t, MatchComponents(model.DefaultConfig(), frontend, nil, nil))
}

func TestComponentHygiene(t *testing.T) {
	tested := component("Button", "ds/Button.jsx")
	tested.HasTests = true
	tested.HasStories = true
	bare := component("Card", "ds/Card.jsx")

	issues := ComponentHygiene(model.DefaultConfig(), []*model.Component{tested, bare})

	counts := countByType(issues)
	assert.Equal(t, 1, counts[model.ComponentMissingTests])
	assert.Equal(t, 1, counts[model.ComponentMissingStories])
	for _, issue := range issues {
		assert.Equal(t, "Card", issue.Component.Name)
	}
}
