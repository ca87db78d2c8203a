// Package routes extracts declared HTTP routes from backend source trees.
package routes

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apidrift/apidrift/inspector/model"
	"github.com/apidrift/apidrift/inspector/parser"
	"github.com/apidrift/apidrift/inspector/pathkey"
)

var httpVerbs = map[string]string{
	"get":     "GET",
	"post":    "POST",
	"put":     "PUT",
	"patch":   "PATCH",
	"delete":  "DELETE",
	"options": "OPTIONS",
	"head":    "HEAD",
}

var routerIdents = map[string]bool{
	"router":  true,
	"app":     true,
	"express": true,
}

var (
	bodyMemberRe    = regexp.MustCompile(`req\.body\.([A-Za-z_][A-Za-z0-9_]*)`)
	bodyDestructRe  = regexp.MustCompile(`\{([^}]*)\}\s*=\s*req\.body`)
	queryMemberRe   = regexp.MustCompile(`req\.query\.([A-Za-z_][A-Za-z0-9_]*)`)
	queryDestructRe = regexp.MustCompile(`\{([^}]*)\}\s*=\s*req\.query`)
)

// registration is one recognized route-registration call before base-path
// resolution.
type registration struct {
	verb       string
	localPath  string
	line       int
	middleware []string
	controller string
	bodyFields []string
	query      []string
}

// Inspector recognizes route registrations in one backend source file.
type Inspector struct {
	config   *model.Config
	provider *parser.Provider
	source   []byte
}

// NewInspector creates a route inspector with the provided configuration.
func NewInspector(config *model.Config) *Inspector {
	if config == nil {
		config = model.DefaultConfig()
	}
	return &Inspector{config: config, provider: parser.New()}
}

// InspectFile parses a backend source file and extracts its endpoints.
func (i *Inspector) InspectFile(ctx context.Context, filename string) ([]*model.Endpoint, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return i.InspectSource(ctx, src, filename)
}

// InspectSource parses backend source code and extracts its endpoints.
func (i *Inspector) InspectSource(ctx context.Context, src []byte, filename string) ([]*model.Endpoint, error) {
	tree, err := i.provider.Parse(ctx, src, filename)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return i.InspectTree(tree.RootNode(), src, filename), nil
}

// InspectTree walks an already parsed tree and extracts its endpoints.
func (i *Inspector) InspectTree(root *sitter.Node, src []byte, filename string) []*model.Endpoint {
	i.source = src

	var registrations []registration
	parser.Walk(root, func(node *sitter.Node) bool {
		if node.Type() != "call_expression" {
			return true
		}
		if reg, ok := i.matchRegistration(node); ok {
			registrations = append(registrations, reg)
		}
		return true
	})
	if len(registrations) == 0 {
		return nil
	}

	localPaths := make([]string, 0, len(registrations))
	for _, reg := range registrations {
		localPaths = append(localPaths, reg.localPath)
	}
	basePath := inferBasePath(&fileContext{
		source:     src,
		filename:   filename,
		localPaths: localPaths,
		root:       root,
	})

	endpoints := make([]*model.Endpoint, 0, len(registrations))
	for _, reg := range registrations {
		joined := joinBase(basePath, reg.localPath)
		normalized := pathkey.Normalize(joined)
		endpoints = append(endpoints, &model.Endpoint{
			Method:        reg.verb,
			Path:          normalized,
			RawPath:       reg.localPath,
			SourceFile:    filename,
			Line:          reg.line,
			Middleware:    reg.middleware,
			ControllerRef: reg.controller,
			RequiresAuth:  i.hasAuthMiddleware(reg.middleware),
			PathParams:    pathkey.PathParams(joined),
			QueryParams:   reg.query,
			BodyFields:    reg.bodyFields,
		})
	}
	return endpoints
}

// matchRegistration tests whether a call expression is a route registration
// of the form <router-like>.<verb>(path, ...handlers).
func (i *Inspector) matchRegistration(node *sitter.Node) (registration, bool) {
	var reg registration
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return reg, false
	}
	object := callee.ChildByFieldName("object")
	property := callee.ChildByFieldName("property")
	if object == nil || property == nil || object.Type() != "identifier" {
		return reg, false
	}
	if !routerIdents[object.Content(i.source)] {
		return reg, false
	}
	verb, ok := httpVerbs[property.Content(i.source)]
	if !ok {
		return reg, false
	}

	args := namedArguments(node)
	if len(args) < 2 {
		return reg, false
	}
	localPath, ok := stringValue(args[0], i.source)
	if !ok {
		// Dynamically computed route strings are a known limitation; the
		// registration is silently skipped.
		return reg, false
	}

	reg.verb = verb
	reg.localPath = localPath
	reg.line = int(node.StartPoint().Row) + 1

	handlers := args[1:]
	for _, middleware := range handlers[:len(handlers)-1] {
		if name, ok := handlerName(middleware, i.source); ok {
			reg.middleware = append(reg.middleware, name)
		}
	}
	controller := handlers[len(handlers)-1]
	if name, ok := handlerName(controller, i.source); ok {
		reg.controller = name
	}
	if controller.Type() == "arrow_function" || controller.Type() == "function_expression" || controller.Type() == "function" {
		body := controller.Content(i.source)
		reg.bodyFields = fieldNames(body, bodyMemberRe, bodyDestructRe)
		reg.query = fieldNames(body, queryMemberRe, queryDestructRe)
	}
	return reg, true
}

// hasAuthMiddleware tests middleware names against the configured
// auth-indicating substrings, case-insensitively.
func (i *Inspector) hasAuthMiddleware(middleware []string) bool {
	for _, name := range middleware {
		lower := strings.ToLower(name)
		for _, pattern := range i.config.AuthMiddlewarePatterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

// namedArguments returns the named children of a call's argument list.
func namedArguments(call *sitter.Node) []*sitter.Node {
	argsNode := call.ChildByFieldName("arguments")
	if argsNode == nil {
		return nil
	}
	args := make([]*sitter.Node, 0, argsNode.NamedChildCount())
	for i := 0; i < int(argsNode.NamedChildCount()); i++ {
		args = append(args, argsNode.NamedChild(i))
	}
	return args
}

// stringValue extracts the literal text of a string or simple template
// literal argument.
func stringValue(node *sitter.Node, src []byte) (string, bool) {
	switch node.Type() {
	case "string":
		return strings.Trim(node.Content(src), "'\"`"), true
	case "template_string":
		return strings.Trim(node.Content(src), "`"), true
	}
	return "", false
}

// handlerName renders a middleware or controller argument as a name:
// identifiers and member accesses verbatim, invoked expressions by their
// callee.
func handlerName(node *sitter.Node, src []byte) (string, bool) {
	switch node.Type() {
	case "identifier", "member_expression":
		return node.Content(src), true
	case "call_expression":
		if callee := node.ChildByFieldName("function"); callee != nil {
			return callee.Content(src), true
		}
	}
	return "", false
}

// fieldNames collects member-access and destructured names from a handler
// body using the provided patterns.
func fieldNames(body string, memberRe, destructRe *regexp.Regexp) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		if idx := strings.IndexByte(name, ':'); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if idx := strings.IndexByte(name, '='); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if name == "" || name == "..." || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}
	for _, match := range memberRe.FindAllStringSubmatch(body, -1) {
		add(match[1])
	}
	for _, match := range destructRe.FindAllStringSubmatch(body, -1) {
		for _, field := range strings.Split(match[1], ",") {
			add(strings.TrimPrefix(strings.TrimSpace(field), "..."))
		}
	}
	sort.Strings(names)
	return names
}

// joinBase prepends the inferred mount prefix unless the local path already
// carries it.
func joinBase(basePath, localPath string) string {
	if basePath == "" || basePath == "/" {
		return localPath
	}
	normalized := pathkey.Normalize(localPath)
	if normalized == basePath || strings.HasPrefix(normalized, basePath+"/") {
		return localPath
	}
	return basePath + "/" + strings.TrimPrefix(localPath, "/")
}
