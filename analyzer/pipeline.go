package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/apidrift/apidrift/cache"
	"github.com/apidrift/apidrift/inspector/calls"
	"github.com/apidrift/apidrift/inspector/components"
	"github.com/apidrift/apidrift/inspector/model"
	"github.com/apidrift/apidrift/inspector/parser"
	"github.com/apidrift/apidrift/inspector/repository"
	"github.com/apidrift/apidrift/inspector/routes"
)

// rootKind selects which extractors run over a root's files.
type rootKind int

const (
	kindBackend rootKind = iota
	kindFrontend
	kindDesign
)

type backendExtraction struct {
	endpoints   []*model.Endpoint
	diagnostics []model.Diagnostic
}

type frontendExtraction struct {
	callSites   []*model.CallSite
	components  []*model.Component
	imports     []model.Import
	diagnostics []model.Diagnostic
}

type designExtraction struct {
	components  []*model.Component
	imports     []model.Import
	diagnostics []model.Diagnostic
}

func (a *Analyzer) extractBackend(ctx context.Context, root string) (*backendExtraction, error) {
	extractions, err := a.extractRoot(ctx, root, kindBackend)
	if err != nil {
		return nil, err
	}
	result := &backendExtraction{}
	for _, extraction := range extractions {
		result.endpoints = append(result.endpoints, extraction.Endpoints...)
		result.diagnostics = append(result.diagnostics, extraction.Diagnostics...)
	}
	return result, nil
}

func (a *Analyzer) extractFrontend(ctx context.Context, root string) (*frontendExtraction, error) {
	extractions, err := a.extractRoot(ctx, root, kindFrontend)
	if err != nil {
		return nil, err
	}
	result := &frontendExtraction{}
	for _, extraction := range extractions {
		result.callSites = append(result.callSites, extraction.CallSites...)
		result.components = append(result.components, extraction.Components...)
		result.imports = append(result.imports, extraction.Imports...)
		result.diagnostics = append(result.diagnostics, extraction.Diagnostics...)
	}
	return result, nil
}

func (a *Analyzer) extractDesign(ctx context.Context, root string) (*designExtraction, error) {
	extractions, err := a.extractRoot(ctx, root, kindDesign)
	if err != nil {
		return nil, err
	}
	result := &designExtraction{}
	for _, extraction := range extractions {
		result.components = append(result.components, extraction.Components...)
		result.imports = append(result.imports, extraction.Imports...)
		result.diagnostics = append(result.diagnostics, extraction.Diagnostics...)
	}
	return result, nil
}

// extractRoot scans a root and extracts every file on a bounded worker pool.
// Extraction is independent per file: workers fill a pre-sized result slice
// and never share mutable state. A single file's failure is recorded as a
// diagnostic, not an error.
func (a *Analyzer) extractRoot(ctx context.Context, root string, kind rootKind) ([]*model.FileExtraction, error) {
	files, err := repository.Scan(root, a.config.Extensions, a.config.IgnoreGlobs)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("scanned root", "root", root, "files", len(files))

	results := make([]*model.FileExtraction, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(a.workers)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = a.extractFile(groupCtx, file, kind)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	extractions := make([]*model.FileExtraction, 0, len(results))
	for _, extraction := range results {
		if extraction != nil {
			extractions = append(extractions, extraction)
		}
	}
	return extractions, nil
}

// extractFile produces the derived records for one file, consulting the
// analysis cache first. Failures degrade to diagnostics.
func (a *Analyzer) extractFile(ctx context.Context, file string, kind rootKind) *model.FileExtraction {
	key := a.cacheKey(file)
	if extraction := a.cachedExtraction(key, file); extraction != nil {
		return extraction
	}

	src, err := os.ReadFile(file)
	if err != nil {
		return &model.FileExtraction{
			SchemaVersion: model.ExtractionSchemaVersion,
			File:          file,
			Diagnostics:   []model.Diagnostic{{File: file, Stage: "read", Message: err.Error()}},
		}
	}

	extraction := &model.FileExtraction{
		SchemaVersion: model.ExtractionSchemaVersion,
		File:          file,
	}
	needsTree := kind == kindBackend || kind == kindFrontend
	componentsEligible := (kind == kindFrontend || kind == kindDesign) && components.Eligible(src, file)
	if !needsTree && !componentsEligible {
		a.storeExtraction(key, file, src, extraction)
		return extraction
	}

	provider := parser.New()
	tree, err := provider.Parse(ctx, src, file)
	if err != nil {
		var parseErr *parser.ParseError
		if errors.As(err, &parseErr) {
			extraction.Diagnostics = append(extraction.Diagnostics,
				model.Diagnostic{File: file, Stage: "parse", Message: parseErr.Error()})
			a.storeExtraction(key, file, src, extraction)
			return extraction
		}
		extraction.Diagnostics = append(extraction.Diagnostics,
			model.Diagnostic{File: file, Stage: "parse", Message: err.Error()})
		return extraction
	}
	defer tree.Close()
	root := tree.RootNode()

	switch kind {
	case kindBackend:
		extraction.Endpoints = routes.NewInspector(a.config).InspectTree(root, src, file)
	case kindFrontend:
		extraction.CallSites = calls.NewInspector(a.config).InspectTree(root, src, file)
		if componentsEligible {
			componentExtraction := components.NewInspector(a.config).InspectTree(root, src, file)
			extraction.Components = componentExtraction.Components
			extraction.Imports = componentExtraction.Imports
		}
	case kindDesign:
		if componentsEligible {
			componentExtraction := components.NewInspector(a.config).InspectTree(root, src, file)
			extraction.Components = componentExtraction.Components
			extraction.Imports = componentExtraction.Imports
		}
	}

	a.storeExtraction(key, file, src, extraction)
	return extraction
}

// cacheKey derives the content address for a file, or "" when caching is off
// or the file cannot be stated.
func (a *Analyzer) cacheKey(file string) string {
	if a.store == nil {
		return ""
	}
	info, err := os.Stat(file)
	if err != nil {
		return ""
	}
	key, err := cache.Key(file, info.ModTime(), info.Size())
	if err != nil {
		return ""
	}
	return key
}

func (a *Analyzer) cachedExtraction(key, file string) *model.FileExtraction {
	if key == "" {
		return nil
	}
	payload, ok := a.store.Get(cache.CategoryAnalysis, key)
	if !ok {
		return nil
	}
	var extraction model.FileExtraction
	if err := json.Unmarshal(payload, &extraction); err != nil {
		a.store.Invalidate(cache.CategoryAnalysis, key)
		return nil
	}
	if extraction.SchemaVersion != model.ExtractionSchemaVersion || extraction.File != file {
		a.store.Invalidate(cache.CategoryAnalysis, key)
		return nil
	}
	return &extraction
}

// storeExtraction persists the derived records (and the raw source) for a
// file. Cache write failures are non-fatal.
func (a *Analyzer) storeExtraction(key, file string, src []byte, extraction *model.FileExtraction) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(extraction)
	if err != nil {
		return
	}
	if err := a.store.Set(cache.CategoryAnalysis, key, payload); err != nil {
		a.logger.Debug("cache write failed", "file", file, "error", err)
		return
	}
	if raw, err := json.Marshal(string(src)); err == nil {
		if err := a.store.Set(cache.CategoryRaw, key, raw); err != nil {
			a.logger.Debug("cache write failed", "file", file, "error", err)
		}
	}
}
