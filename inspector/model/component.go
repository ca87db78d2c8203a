package model

// ComponentKind identifies how a UI component was declared.
type ComponentKind string

const (
	KindFunction ComponentKind = "function"
	KindArrow    ComponentKind = "arrow"
	KindClass    ComponentKind = "class"
)

// Component categories, assigned from a keyword lexicon over name and path.
const (
	CategoryButtons     = "buttons"
	CategoryForms       = "forms"
	CategoryOverlays    = "overlays"
	CategoryNavigation  = "navigation"
	CategoryLayout      = "layout"
	CategoryTypography  = "typography"
	CategoryDataDisplay = "data-display"
	CategoryFeedback    = "feedback"
	CategoryIcons       = "icons"
	CategoryMisc        = "misc"
)

// Component represents a statically recognized UI component declaration.
// Identity is Name within its extraction scope; the design-system and
// frontend scopes stay separate until similarity matching cross-references
// them.
type Component struct {
	Name            string        `json:"name"`
	Kind            ComponentKind `json:"kind"`
	SourceFile      string        `json:"sourceFile"`
	Line            int           `json:"line"`
	Props           []string      `json:"props,omitempty"`
	Category        string        `json:"category"`
	ComplexityScore int           `json:"complexityScore"`
	HasTests        bool          `json:"hasTests"`
	HasStories      bool          `json:"hasStories"`
	Used            bool          `json:"used"`
	UsedIn          []string      `json:"usedIn,omitempty"`
}

// Import records a single imported binding in a scanned file, used to mark
// design-system components as consumed by the frontend.
type Import struct {
	Name   string `json:"name"`
	Module string `json:"module"`
	File   string `json:"file"`
}
