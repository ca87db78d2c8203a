// Package components extracts UI component declarations from frontend and
// design-system source trees.
package components

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apidrift/apidrift/inspector/model"
	"github.com/apidrift/apidrift/inspector/parser"
)

var componentNameRe = regexp.MustCompile(`^[A-Z]`)

// skipFilePatterns exclude test, story, config, and declaration files from
// component extraction.
var skipFilePatterns = []string{
	".test.", ".spec.", ".stories.", ".story.", ".config.", ".d.ts",
}

var uiMarkerRe = regexp.MustCompile(`(?:from\s+['"](?:react|preact|vue|solid-js)|require\(['"]react|</|/>)`)

// componentBases are superclass names that mark a class declaration as a UI
// component.
var componentBases = []string{
	"Component", "PureComponent", "React.Component", "React.PureComponent",
}

// Extraction is the result of inspecting one file: the components it
// declares and the bindings it imports.
type Extraction struct {
	Components []*model.Component
	Imports    []model.Import
}

// Inspector recognizes UI component declarations in one source file.
type Inspector struct {
	config   *model.Config
	provider *parser.Provider
	source   []byte
	file     string
}

// NewInspector creates a component inspector with the provided configuration.
func NewInspector(config *model.Config) *Inspector {
	if config == nil {
		config = model.DefaultConfig()
	}
	return &Inspector{config: config, provider: parser.New()}
}

// InspectFile parses a source file and extracts its component declarations.
func (i *Inspector) InspectFile(ctx context.Context, filename string) (*Extraction, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return i.InspectSource(ctx, src, filename)
}

// InspectSource parses source code and extracts its component declarations.
func (i *Inspector) InspectSource(ctx context.Context, src []byte, filename string) (*Extraction, error) {
	if !Eligible(src, filename) {
		return &Extraction{}, nil
	}
	tree, err := i.provider.Parse(ctx, src, filename)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return i.InspectTree(tree.RootNode(), src, filename), nil
}

// Eligible reports whether a file participates in component extraction:
// test/story/config/declaration files are skipped, as are files without any
// UI-framework marker.
func Eligible(src []byte, filename string) bool {
	base := strings.ToLower(filepath.Base(filename))
	for _, pattern := range skipFilePatterns {
		if strings.Contains(base, pattern) {
			return false
		}
	}
	if strings.Contains(filepath.ToSlash(filename), "__tests__/") {
		return false
	}
	return uiMarkerRe.Match(src)
}

// InspectTree walks an already parsed tree and extracts its component
// declarations and imports.
func (i *Inspector) InspectTree(root *sitter.Node, src []byte, filename string) *Extraction {
	i.source = src
	i.file = filename

	extraction := &Extraction{}
	seen := make(map[string]bool)
	add := func(component *model.Component) {
		if component == nil || seen[component.Name] {
			return
		}
		seen[component.Name] = true
		extraction.Components = append(extraction.Components, component)
	}

	parser.Walk(root, func(node *sitter.Node) bool {
		switch node.Type() {
		case "import_statement":
			extraction.Imports = append(extraction.Imports, i.parseImport(node)...)
			return false
		case "function_declaration":
			add(i.functionComponent(node))
			return false
		case "lexical_declaration", "variable_declaration":
			add(i.arrowComponent(node))
			return false
		case "class_declaration":
			add(i.classComponent(node))
			return false
		}
		return true
	})
	return extraction
}

// functionComponent recognizes named function declarations whose name is
// capitalized and whose body renders JSX.
func (i *Inspector) functionComponent(node *sitter.Node) *model.Component {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(i.source)
	if !componentNameRe.MatchString(name) {
		return nil
	}
	body := node.ChildByFieldName("body")
	if body == nil || !containsJSX(body, i.source) {
		return nil
	}
	return i.newComponent(name, model.KindFunction, node, node.ChildByFieldName("parameters"))
}

// arrowComponent recognizes const Component = (...) => <jsx/> declarators.
func (i *Inspector) arrowComponent(node *sitter.Node) *model.Component {
	var declarator *sitter.Node
	for j := 0; j < int(node.NamedChildCount()); j++ {
		child := node.NamedChild(j)
		if child.Type() == "variable_declarator" {
			declarator = child
			break
		}
	}
	if declarator == nil {
		return nil
	}
	nameNode := declarator.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() != "identifier" {
		return nil
	}
	name := nameNode.Content(i.source)
	if !componentNameRe.MatchString(name) {
		return nil
	}
	value := declarator.ChildByFieldName("value")
	if value == nil {
		return nil
	}
	if value.Type() != "arrow_function" && value.Type() != "function_expression" && value.Type() != "function" {
		return nil
	}
	body := value.ChildByFieldName("body")
	if body == nil || !containsJSX(body, i.source) {
		return nil
	}
	return i.newComponent(name, model.KindArrow, node, value.ChildByFieldName("parameters"))
}

// classComponent recognizes class declarations extending a UI component base.
func (i *Inspector) classComponent(node *sitter.Node) *model.Component {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(i.source)
	if !componentNameRe.MatchString(name) {
		return nil
	}
	heritage := findChild(node, "class_heritage")
	if heritage == nil {
		return nil
	}
	superclass := heritage.Content(i.source)
	matched := false
	for _, base := range componentBases {
		if strings.Contains(superclass, base) {
			matched = true
			break
		}
	}
	if !matched {
		return nil
	}
	component := i.newComponent(name, model.KindClass, node, nil)
	// Class components receive props via this.props rather than parameters.
	for _, prop := range fieldNamesFrom(node.Content(i.source), `this\.props\.([A-Za-z_][A-Za-z0-9_]*)`) {
		component.Props = append(component.Props, prop)
	}
	return component
}

func (i *Inspector) newComponent(name string, kind model.ComponentKind, node, params *sitter.Node) *model.Component {
	text := node.Content(i.source)
	component := &model.Component{
		Name:            name,
		Kind:            kind,
		SourceFile:      i.file,
		Line:            int(node.StartPoint().Row) + 1,
		Props:           destructuredProps(params, i.source),
		Category:        Categorize(name, i.file),
		ComplexityScore: ComplexityScore(text),
		HasTests:        hasSibling(i.file, []string{".test.", ".spec."}, "__tests__"),
		HasStories:      hasSibling(i.file, []string{".stories.", ".story."}, ""),
	}
	return component
}

// parseImport extracts the imported bindings of an import statement.
func (i *Inspector) parseImport(node *sitter.Node) []model.Import {
	var module string
	for j := 0; j < int(node.NamedChildCount()); j++ {
		child := node.NamedChild(j)
		if child.Type() == "string" {
			module = strings.Trim(child.Content(i.source), "'\"")
			break
		}
	}
	if module == "" {
		return nil
	}
	var imports []model.Import
	parser.Walk(node, func(child *sitter.Node) bool {
		switch child.Type() {
		case "identifier":
			imports = append(imports, model.Import{
				Name:   child.Content(i.source),
				Module: module,
				File:   i.file,
			})
		case "string":
			return false
		}
		return true
	})
	return imports
}

// destructuredProps extracts prop names from a parameter list: destructured
// keys for object patterns, the parameter name otherwise.
func destructuredProps(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var props []string
	for i := 0; i < int(params.NamedChildCount()); i++ {
		param := params.NamedChild(i)
		switch param.Type() {
		case "object_pattern":
			props = append(props, objectPatternKeys(param, src)...)
		case "identifier":
			props = append(props, param.Content(src))
		case "required_parameter", "optional_parameter":
			// TypeScript grammar wraps the pattern in a parameter node.
			if pattern := param.ChildByFieldName("pattern"); pattern != nil {
				if pattern.Type() == "object_pattern" {
					props = append(props, objectPatternKeys(pattern, src)...)
				} else if pattern.Type() == "identifier" {
					props = append(props, pattern.Content(src))
				}
			}
		}
	}
	return props
}

func objectPatternKeys(pattern *sitter.Node, src []byte) []string {
	var keys []string
	for i := 0; i < int(pattern.NamedChildCount()); i++ {
		child := pattern.NamedChild(i)
		switch child.Type() {
		case "shorthand_property_identifier_pattern", "shorthand_property_identifier", "identifier":
			keys = append(keys, child.Content(src))
		case "pair_pattern":
			if key := child.ChildByFieldName("key"); key != nil {
				keys = append(keys, strings.Trim(key.Content(src), "'\""))
			}
		case "object_assignment_pattern":
			if left := child.ChildByFieldName("left"); left != nil {
				keys = append(keys, left.Content(src))
			}
		}
	}
	return keys
}

// containsJSX tests whether a node's text contains JSX markup.
func containsJSX(node *sitter.Node, src []byte) bool {
	text := string(src[node.StartByte():node.EndByte()])
	return strings.Contains(text, "/>") ||
		(strings.Contains(text, "<") && strings.Contains(text, "</"))
}

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		if child := node.NamedChild(i); child.Type() == nodeType {
			return child
		}
	}
	// class_heritage is an unnamed child in some grammar versions.
	for i := 0; i < int(node.ChildCount()); i++ {
		if child := node.Child(i); child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func fieldNamesFrom(text, pattern string) []string {
	re := regexp.MustCompile(pattern)
	seen := make(map[string]bool)
	var names []string
	for _, match := range re.FindAllStringSubmatch(text, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}
