// Package calls extracts outbound HTTP call sites from frontend source trees.
package calls

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apidrift/apidrift/inspector/model"
	"github.com/apidrift/apidrift/inspector/parser"
	"github.com/apidrift/apidrift/inspector/pathkey"
)

var clientVerbs = map[string]string{
	"get":     "GET",
	"post":    "POST",
	"put":     "PUT",
	"patch":   "PATCH",
	"delete":  "DELETE",
	"head":    "HEAD",
	"options": "OPTIONS",
}

// apiLikeIdents are receivers treated as HTTP clients regardless of the
// configured alias list.
var apiLikeIdents = map[string]bool{
	"api":        true,
	"API":        true,
	"client":     true,
	"httpClient": true,
}

var serviceReceiverRe = regexp.MustCompile(`(?i)api|service|client`)

// verbLexicon maps service-method name prefixes to HTTP methods for the
// generic service heuristic.
var verbLexicon = []struct {
	prefix string
	method string
}{
	{"get", "GET"}, {"find", "GET"}, {"list", "GET"}, {"fetch", "GET"},
	{"create", "POST"}, {"add", "POST"}, {"save", "POST"},
	{"update", "PUT"}, {"edit", "PUT"},
	{"delete", "DELETE"}, {"remove", "DELETE"}, {"destroy", "DELETE"},
}

// Inspector recognizes outbound HTTP calls in one frontend source file.
type Inspector struct {
	config   *model.Config
	provider *parser.Provider
	source   []byte
	file     string
	aliases  map[string]bool
}

// NewInspector creates a call-site inspector with the provided configuration.
func NewInspector(config *model.Config) *Inspector {
	if config == nil {
		config = model.DefaultConfig()
	}
	aliases := make(map[string]bool, len(config.HTTPClientAliases))
	for _, alias := range config.HTTPClientAliases {
		aliases[alias] = true
	}
	return &Inspector{config: config, provider: parser.New(), aliases: aliases}
}

// InspectFile parses a frontend source file and extracts its call sites.
func (i *Inspector) InspectFile(ctx context.Context, filename string) ([]*model.CallSite, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return i.InspectSource(ctx, src, filename)
}

// InspectSource parses frontend source code and extracts its call sites.
func (i *Inspector) InspectSource(ctx context.Context, src []byte, filename string) ([]*model.CallSite, error) {
	tree, err := i.provider.Parse(ctx, src, filename)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return i.InspectTree(tree.RootNode(), src, filename), nil
}

// InspectTree walks an already parsed tree and extracts its call sites. Each
// call expression is tested against the recognized shapes in a fixed order;
// the first match wins and a call contributes at most one record.
func (i *Inspector) InspectTree(root *sitter.Node, src []byte, filename string) []*model.CallSite {
	i.source = src
	i.file = filename

	var sites []*model.CallSite
	parser.Walk(root, func(node *sitter.Node) bool {
		if node.Type() != "call_expression" {
			return true
		}
		if site := i.matchCall(node); site != nil {
			sites = append(sites, site)
		}
		return true
	})
	return sites
}

type matcher func(*sitter.Node) *model.CallSite

func (i *Inspector) matchCall(node *sitter.Node) *model.CallSite {
	for _, match := range []matcher{
		i.matchFetch,
		i.matchClientVerb,
		i.matchAPILikeVerb,
		i.matchRequestConfig,
		i.matchServiceHeuristic,
	} {
		if site := match(node); site != nil {
			return site
		}
	}
	return nil
}

// matchFetch recognizes fetch(url, options?): method defaults to GET and is
// overridden by options.method.
func (i *Inspector) matchFetch(node *sitter.Node) *model.CallSite {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Type() != "identifier" || callee.Content(i.source) != "fetch" {
		return nil
	}
	args := namedArguments(node)
	if len(args) == 0 {
		return nil
	}
	rawURL, ok := stringValue(args[0], i.source)
	if !ok {
		return nil
	}
	site := i.newSite(node, "GET", rawURL, model.ShapeFetch)
	if len(args) > 1 && args[1].Type() == "object" {
		options := args[1]
		if method, ok := objectStringValue(options, "method", i.source); ok {
			site.Method = strings.ToUpper(method)
		}
		if body := objectProperty(options, "body", i.source); body != nil {
			site.BodyShape = bodyShape(body, i.source)
		}
		site.HasAuthHeader = i.headersHaveAuth(options)
	}
	return site
}

// matchClientVerb recognizes <clientAlias>.<verb>(url, data?, config?).
func (i *Inspector) matchClientVerb(node *sitter.Node) *model.CallSite {
	return i.matchVerbCall(node, func(receiver string) bool {
		return i.aliases[receiver]
	}, model.ShapeHTTPClientMethod)
}

// matchAPILikeVerb recognizes <apiLikeIdent>.<verb>(url, data?, config?).
func (i *Inspector) matchAPILikeVerb(node *sitter.Node) *model.CallSite {
	return i.matchVerbCall(node, func(receiver string) bool {
		return apiLikeIdents[receiver]
	}, model.ShapeGenericClient)
}

func (i *Inspector) matchVerbCall(node *sitter.Node, accept func(string) bool, shape model.CallShape) *model.CallSite {
	receiver, verb, ok := memberCall(node, i.source)
	if !ok || !accept(receiver) {
		return nil
	}
	method, ok := clientVerbs[verb]
	if !ok {
		return nil
	}
	args := namedArguments(node)
	if len(args) == 0 {
		return nil
	}
	rawURL, ok := stringValue(args[0], i.source)
	if !ok {
		return nil
	}
	site := i.newSite(node, method, rawURL, shape)
	// axios-style argument layout: data precedes config except for
	// body-less verbs, whose second argument is already the config.
	dataIdx, configIdx := 1, 2
	if method == "GET" || method == "DELETE" || method == "HEAD" || method == "OPTIONS" {
		dataIdx, configIdx = -1, 1
	}
	if dataIdx > 0 && len(args) > dataIdx && args[dataIdx].Type() == "object" {
		site.BodyShape = bodyShape(args[dataIdx], i.source)
	}
	if len(args) > configIdx && args[configIdx].Type() == "object" {
		site.HasAuthHeader = i.headersHaveAuth(args[configIdx])
	}
	return site
}

// matchRequestConfig recognizes request({...}) and <ident>.request({...})
// with method and URL read from the config object.
func (i *Inspector) matchRequestConfig(node *sitter.Node) *model.CallSite {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		return nil
	}
	switch callee.Type() {
	case "identifier":
		if callee.Content(i.source) != "request" {
			return nil
		}
	case "member_expression":
		property := callee.ChildByFieldName("property")
		if property == nil || property.Content(i.source) != "request" {
			return nil
		}
	default:
		return nil
	}
	args := namedArguments(node)
	if len(args) == 0 || args[0].Type() != "object" {
		return nil
	}
	config := args[0]
	rawURL, ok := objectStringValue(config, "url", i.source)
	if !ok {
		return nil
	}
	method := "GET"
	if value, ok := objectStringValue(config, "method", i.source); ok {
		method = strings.ToUpper(value)
	}
	site := i.newSite(node, method, rawURL, model.ShapeRequestConfig)
	if body := objectProperty(config, "data", i.source); body != nil {
		site.BodyShape = bodyShape(body, i.source)
	}
	site.HasAuthHeader = i.headersHaveAuth(config)
	return site
}

// matchServiceHeuristic recognizes member calls on service-looking receivers
// and synthesizes a URL from the receiver and method names.
func (i *Inspector) matchServiceHeuristic(node *sitter.Node) *model.CallSite {
	receiver, methodName, ok := memberCall(node, i.source)
	if !ok || !serviceReceiverRe.MatchString(receiver) {
		return nil
	}
	method := "POST"
	verbPrefix := ""
	for _, entry := range verbLexicon {
		if strings.HasPrefix(strings.ToLower(methodName), entry.prefix) {
			method = entry.method
			verbPrefix = entry.prefix
			break
		}
	}
	resource := strings.ToLower(trimServiceSuffix(receiver))
	if resource == "" || resource == "api" || resource == "client" || resource == "service" || resource == "http" {
		resource = resourceFromMethod(methodName, verbPrefix)
	}
	if resource == "" {
		return nil
	}
	site := i.newSite(node, method, "/api/"+resource, model.ShapeServiceHeuristic)
	args := namedArguments(node)
	if len(args) > 0 && args[0].Type() == "object" {
		site.BodyShape = bodyShape(args[0], i.source)
	}
	return site
}

func (i *Inspector) newSite(node *sitter.Node, method, rawURL string, shape model.CallShape) *model.CallSite {
	urlParams := pathkey.InterpolationParams(rawURL)
	urlParams = append(urlParams, pathkey.PathParams(rawURL)...)
	return &model.CallSite{
		Method:      method,
		RawURL:      rawURL,
		URL:         pathkey.Normalize(rawURL),
		SourceFile:  i.file,
		Line:        int(node.StartPoint().Row) + 1,
		URLParams:   urlParams,
		QueryParams: pathkey.QueryParams(rawURL),
		Shape:       shape,
	}
}

// headersHaveAuth reports whether a headers-bearing object argument carries
// any configured auth header key.
func (i *Inspector) headersHaveAuth(options *sitter.Node) bool {
	headers := objectProperty(options, "headers", i.source)
	if headers == nil {
		return false
	}
	if headers.Type() != "object" {
		// Headers built elsewhere (identifier, call) cannot be inspected;
		// treat a reference as authenticated rather than flag a false gap.
		return headers.Type() == "identifier" || headers.Type() == "call_expression"
	}
	for _, key := range objectKeys(headers, i.source) {
		lower := strings.ToLower(key)
		for _, name := range i.config.AuthHeaderNames {
			if lower == strings.ToLower(name) {
				return true
			}
		}
	}
	return false
}

// resourceFromMethod derives a resource name from a service method name once
// its verb prefix is removed: getUserById -> "user".
func resourceFromMethod(methodName, verbPrefix string) string {
	remainder := methodName
	if verbPrefix != "" && len(methodName) > len(verbPrefix) {
		remainder = methodName[len(verbPrefix):]
	}
	if idx := strings.Index(remainder, "By"); idx > 0 {
		remainder = remainder[:idx]
	}
	return strings.ToLower(remainder)
}

func trimServiceSuffix(receiver string) string {
	for _, suffix := range []string{"Service", "Client", "Api", "API", "service", "client", "api"} {
		if strings.HasSuffix(receiver, suffix) && len(receiver) > len(suffix) {
			return strings.TrimSuffix(receiver, suffix)
		}
	}
	return receiver
}

// memberCall decomposes <identifier>.<identifier>(...) calls.
func memberCall(node *sitter.Node, src []byte) (receiver, method string, ok bool) {
	callee := node.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return "", "", false
	}
	object := callee.ChildByFieldName("object")
	property := callee.ChildByFieldName("property")
	if object == nil || property == nil || object.Type() != "identifier" {
		return "", "", false
	}
	return object.Content(src), property.Content(src), true
}

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

func stringValue(node *sitter.Node, src []byte) (string, bool) {
	switch node.Type() {
	case "string":
		return strings.Trim(node.Content(src), "'\"`"), true
	case "template_string":
		return strings.Trim(node.Content(src), "`"), true
	}
	return "", false
}

// objectProperty returns the value node of a named property in an object
// literal.
func objectProperty(object *sitter.Node, name string, src []byte) *sitter.Node {
	if object == nil || object.Type() != "object" {
		return nil
	}
	for i := 0; i < int(object.NamedChildCount()); i++ {
		pair := object.NamedChild(i)
		if pair.Type() != "pair" {
			continue
		}
		key := pair.ChildByFieldName("key")
		if key == nil {
			continue
		}
		if strings.Trim(key.Content(src), "'\"") == name {
			return pair.ChildByFieldName("value")
		}
	}
	return nil
}

func objectStringValue(object *sitter.Node, name string, src []byte) (string, bool) {
	value := objectProperty(object, name, src)
	if value == nil {
		return "", false
	}
	return stringValue(value, src)
}

// objectKeys returns the property keys of an object literal, including
// shorthand properties.
func objectKeys(object *sitter.Node, src []byte) []string {
	var keys []string
	for i := 0; i < int(object.NamedChildCount()); i++ {
		child := object.NamedChild(i)
		switch child.Type() {
		case "pair":
			if key := child.ChildByFieldName("key"); key != nil {
				keys = append(keys, strings.Trim(key.Content(src), "'\"`"))
			}
		case "shorthand_property_identifier":
			keys = append(keys, child.Content(src))
		}
	}
	return keys
}

// bodyShape derives the request body field map from a body argument: object
// literals by their keys, JSON.stringify(obj) by the wrapped object's keys.
// Dynamically built bodies yield nil, which disables field-level checks.
func bodyShape(body *sitter.Node, src []byte) map[string]any {
	switch body.Type() {
	case "object":
		shape := make(map[string]any)
		for _, key := range objectKeys(body, src) {
			shape[key] = "any"
		}
		return shape
	case "call_expression":
		callee := body.ChildByFieldName("function")
		if callee != nil && callee.Content(src) == "JSON.stringify" {
			args := body.ChildByFieldName("arguments")
			if args != nil && args.NamedChildCount() > 0 {
				return bodyShape(args.NamedChild(0), src)
			}
		}
	}
	return nil
}
