// Package parser wraps the tree-sitter runtime behind a provider that picks a
// grammar per file extension and reports parse failures as typed errors.
package parser

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ParseError reports that a file failed to parse under every attempted
// grammar. It is the only error shape the provider returns for source-level
// failures.
type ParseError struct {
	Path     string
	Attempts []string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s (attempted: %s)", e.Path, strings.Join(e.Attempts, ", "))
}

type grammar struct {
	name     string
	language *sitter.Language
}

var (
	grammarJavaScript = grammar{"javascript", javascript.GetLanguage()}
	grammarTypeScript = grammar{"typescript", typescript.GetLanguage()}
	grammarTSX        = grammar{"tsx", tsx.GetLanguage()}
)

// Provider parses JS/TS sources into syntax trees. A Provider is safe for
// concurrent use; each Parse call creates its own tree-sitter parser.
type Provider struct{}

// New creates a syntax tree provider.
func New() *Provider {
	return &Provider{}
}

// grammarsFor returns the attempt order for a file extension: the grammar the
// extension names first, then the remaining ones as fallback syntax modes.
func grammarsFor(filename string) []grammar {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts", ".mts", ".cts":
		return []grammar{grammarTypeScript, grammarTSX, grammarJavaScript}
	case ".tsx":
		return []grammar{grammarTSX, grammarTypeScript, grammarJavaScript}
	default:
		return []grammar{grammarJavaScript, grammarTSX, grammarTypeScript}
	}
}

// Parse returns a syntax tree for src, trying grammars in extension order. A
// tree whose root contains syntax errors is rejected and the next grammar is
// attempted; when every grammar fails a *ParseError is returned. The caller
// owns the returned tree and should Close it.
func (p *Provider) Parse(ctx context.Context, src []byte, filename string) (*sitter.Tree, error) {
	attempts := grammarsFor(filename)
	names := make([]string, 0, len(attempts))
	var fallback *sitter.Tree
	for _, candidate := range attempts {
		names = append(names, candidate.name)
		sitterParser := sitter.NewParser()
		sitterParser.SetLanguage(candidate.language)
		tree, err := sitterParser.ParseCtx(ctx, nil, src)
		if err != nil || tree == nil {
			continue
		}
		root := tree.RootNode()
		if root == nil {
			tree.Close()
			continue
		}
		if !root.HasError() {
			if fallback != nil {
				fallback.Close()
			}
			return tree, nil
		}
		// Keep the first errored tree: a best-effort result if no grammar
		// parses cleanly but the root still covers real structure.
		if fallback == nil && root.NamedChildCount() > 0 {
			fallback = tree
		} else {
			tree.Close()
		}
	}
	if fallback != nil {
		return fallback, nil
	}
	return nil, &ParseError{Path: filename, Attempts: names}
}

// Walk performs a depth-first traversal over named nodes. The visit function
// returns false to skip a node's subtree.
func Walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		Walk(node.NamedChild(i), visit)
	}
}
