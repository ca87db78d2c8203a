package routes

import (
	"path/filepath"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/apidrift/apidrift/inspector/parser"
	"github.com/apidrift/apidrift/inspector/pathkey"
)

// fileContext carries everything the base-path strategies may consult.
type fileContext struct {
	source     []byte
	filename   string
	localPaths []string
	root       *sitter.Node
}

// strategy attempts to resolve the mount prefix for one file.
type strategy func(*fileContext) (string, bool)

// basePathStrategies is the fixed priority order; the first success wins.
// Reordering changes which comparison keys structurally similar files get,
// so the order is part of the observable contract.
var basePathStrategies = []strategy{
	fromUseCall,
	fromCommonPrefix,
	fromRouteComment,
	fromBaseConstant,
	fromFileName,
	fromParentDir,
	fromRoutesDir,
}

var (
	routeCommentRe = regexp.MustCompile(`@route\s+(/\S+)`)
	baseConstantRe = regexp.MustCompile(`(?:BASE_PATH|API_PREFIX|BASE_URL)\w*\s*=\s*` + "[`'\"]" + `([^'"` + "`" + `]+)` + "[`'\"]")
)

// genericFileNames are basenames too generic to name a resource.
var genericFileNames = map[string]bool{
	"index":  true,
	"routes": true,
	"app":    true,
	"server": true,
}

// genericDirNames are directory names too generic to name a resource.
var genericDirNames = map[string]bool{
	"routes": true,
	"src":    true,
	".":      true,
}

// inferBasePath resolves the mount prefix prepended to every local path in
// the file, or "" when nothing applies.
func inferBasePath(ctx *fileContext) string {
	for _, resolve := range basePathStrategies {
		if prefix, ok := resolve(ctx); ok {
			return pathkey.Normalize(prefix)
		}
	}
	return ""
}

// fromUseCall finds an explicit <ident>.use('/prefix', ...) mount earlier in
// the file.
func fromUseCall(ctx *fileContext) (string, bool) {
	var prefix string
	parser.Walk(ctx.root, func(node *sitter.Node) bool {
		if prefix != "" {
			return false
		}
		if node.Type() != "call_expression" {
			return true
		}
		callee := node.ChildByFieldName("function")
		if callee == nil || callee.Type() != "member_expression" {
			return true
		}
		property := callee.ChildByFieldName("property")
		if property == nil || property.Content(ctx.source) != "use" {
			return true
		}
		args := namedArguments(node)
		if len(args) < 2 {
			return true
		}
		if value, ok := stringValue(args[0], ctx.source); ok && strings.HasPrefix(value, "/") && len(value) > 1 {
			prefix = value
			return false
		}
		return true
	})
	return prefix, prefix != ""
}

// fromCommonPrefix derives the prefix already embedded in the local paths:
// the longest common directory-style prefix over all of them, degrading to
// "path minus its last segment" for a single route.
func fromCommonPrefix(ctx *fileContext) (string, bool) {
	if len(ctx.localPaths) == 0 {
		return "", false
	}
	segments := splitSegments(pathkey.Normalize(ctx.localPaths[0]))
	if len(ctx.localPaths) == 1 {
		if len(segments) < 2 {
			return "", false
		}
		return joinPrefix(segments[:len(segments)-1])
	}
	for _, localPath := range ctx.localPaths[1:] {
		other := splitSegments(pathkey.Normalize(localPath))
		limit := len(segments)
		if len(other) < limit {
			limit = len(other)
		}
		matched := 0
		for matched < limit && segments[matched] == other[matched] {
			matched++
		}
		segments = segments[:matched]
	}
	return joinPrefix(segments)
}

// joinPrefix renders prefix segments, stopping at the first parameter
// segment: a directory-style prefix is static by definition.
func joinPrefix(segments []string) (string, bool) {
	for i, segment := range segments {
		if strings.HasPrefix(segment, ":") {
			segments = segments[:i]
			break
		}
	}
	if len(segments) == 0 {
		return "", false
	}
	return "/" + strings.Join(segments, "/"), true
}

// fromRouteComment reads a @route <prefix> doc comment.
func fromRouteComment(ctx *fileContext) (string, bool) {
	match := routeCommentRe.FindSubmatch(ctx.source)
	if match == nil {
		return "", false
	}
	return string(match[1]), true
}

// fromBaseConstant reads a BASE_PATH/API_PREFIX/BASE_URL-like constant.
func fromBaseConstant(ctx *fileContext) (string, bool) {
	match := baseConstantRe.FindSubmatch(ctx.source)
	if match == nil {
		return "", false
	}
	return string(match[1]), true
}

// fromFileName derives the prefix from the file's own basename
// (users.js -> /api/users), excluding generic names.
func fromFileName(ctx *fileContext) (string, bool) {
	name := filepath.Base(ctx.filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimSuffix(name, ".routes")
	name = strings.TrimSuffix(name, ".route")
	if name == "" || genericFileNames[strings.ToLower(name)] {
		return "", false
	}
	return "/api/" + strings.ToLower(name), true
}

// fromParentDir derives the prefix from the parent directory name, excluding
// generic names.
func fromParentDir(ctx *fileContext) (string, bool) {
	dir := filepath.Base(filepath.Dir(ctx.filename))
	if dir == "" || genericDirNames[strings.ToLower(dir)] {
		return "", false
	}
	return "/api/" + strings.ToLower(dir), true
}

// fromRoutesDir falls back to /api for files living under a routes/ segment.
func fromRoutesDir(ctx *fileContext) (string, bool) {
	normalized := filepath.ToSlash(ctx.filename)
	for _, segment := range strings.Split(filepath.Dir(normalized), "/") {
		if segment == "routes" {
			return "/api", true
		}
	}
	return "", false
}

func splitSegments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
