package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeFile(t *testing.T, root, name, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(name))
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	result := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(root, path)
		assert.NoError(t, err)
		result = append(result, filepath.ToSlash(rel))
	}
	return result
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"src/routes/users.js",
		"src/routes/orders.ts",
		"src/components/Button.jsx",
		"src/components/Button.css",
		"node_modules/express/x.js",
		"dist/bundle.js",
		".cache/tmp.js",
		"legacy/old.js",
		"src/routes/users.test.js",
		"README.md",
	} {
		writeFile(t, root, name, "")
	}

	files, err := Scan(root, []string{".js", ".jsx", ".ts"}, []string{"legacy/", "**/*.test.js"})
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"src/components/Button.jsx",
		"src/routes/orders.ts",
		"src/routes/users.js",
	}, relative(t, root, files))
}

func TestScan_MissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"), []string{".js"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "root directory does not exist")
}

func TestScan_RootIsFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file.js")
	assert.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := Scan(path, []string{".js"}, nil)
	assert.Error(t, err)
}

func TestScan_ExtensionCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/App.JSX", "")
	files, err := Scan(root, []string{".jsx"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"src/App.JSX"}, relative(t, root, files))
}

func TestDetectProject_JavaScript(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"name": "acme-web", "version": "1.0.0"}`)
	writeFile(t, root, "src/routes/app.js", "")

	project := DetectProject(context.Background(), filepath.Join(root, "src", "routes"))
	assert.Equal(t, "javascript", project.Type)
	assert.Equal(t, "acme-web", project.Name)
	resolved, err := filepath.EvalSymlinks(project.RootPath)
	assert.NoError(t, err)
	expected, err := filepath.EvalSymlinks(root)
	assert.NoError(t, err)
	assert.Equal(t, expected, resolved)
}

func TestDetectProject_GoModule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "go.mod", "module github.com/acme/backend\n\ngo 1.23\n")
	writeFile(t, root, "api/main.go", "")

	project := DetectProject(context.Background(), filepath.Join(root, "api"))
	assert.Equal(t, "go", project.Type)
	assert.Equal(t, "github.com/acme/backend", project.Name)
}

func TestDetectProject_NameFallsBackToDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "package.json", `{"version": "1.0.0"}`)

	project := DetectProject(context.Background(), root)
	assert.Equal(t, "javascript", project.Type)
	assert.Equal(t, filepath.Base(root), project.Name)
}
