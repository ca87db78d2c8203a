package repository

import (
	"context"
	"path/filepath"
	"regexp"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// Project describes the codebase a scanned root belongs to.
type Project struct {
	RootPath string `json:"rootPath"`
	Type     string `json:"type"`
	Name     string `json:"name"`
}

// markers map a manifest file to its project type, in probe order.
var markers = []struct {
	file string
	kind string
}{
	{"package.json", "javascript"},
	{"go.mod", "go"},
	{".git", "git"},
}

var packageNameRe = regexp.MustCompile(`"name"\s*:\s*"([^"]+)"`)

// DetectProject resolves the project containing root by probing up the
// directory tree for manifest markers, falling back to the root itself.
func DetectProject(ctx context.Context, root string) *Project {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		absRoot = root
	}
	fs := afs.New()

	dir := absRoot
	for {
		for _, marker := range markers {
			markerPath := filepath.Join(dir, marker.file)
			ok, _ := fs.Exists(ctx, markerPath)
			if !ok {
				continue
			}
			project := &Project{RootPath: dir, Type: marker.kind}
			switch marker.kind {
			case "javascript":
				project.Name = packageName(ctx, fs, markerPath)
			case "go":
				project.Name = moduleName(ctx, fs, markerPath)
			}
			if project.Name == "" {
				project.Name = filepath.Base(dir)
			}
			return project
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return &Project{RootPath: absRoot, Type: "unknown", Name: filepath.Base(absRoot)}
}

func packageName(ctx context.Context, fs afs.Service, manifestPath string) string {
	data, err := fs.DownloadWithURL(ctx, manifestPath)
	if err != nil {
		return ""
	}
	match := packageNameRe.FindSubmatch(data)
	if match == nil {
		return ""
	}
	return string(match[1])
}

func moduleName(ctx context.Context, fs afs.Service, goModPath string) string {
	data, err := fs.DownloadWithURL(ctx, goModPath)
	if err != nil {
		return ""
	}
	if mod, _ := modfile.Parse(goModPath, data, nil); mod != nil && mod.Module != nil {
		return mod.Module.Mod.Path
	}
	return ""
}
