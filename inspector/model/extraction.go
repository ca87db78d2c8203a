package model

// ExtractionSchemaVersion identifies the persisted analysis payload layout.
// Bump it whenever a record struct changes shape; cached entries carrying an
// older version are treated as misses.
const ExtractionSchemaVersion = 2

// Diagnostic records a recoverable per-file failure. Diagnostics replace
// side-effecting warning logs: extractors return them and the orchestrator
// aggregates them for reporting.
type Diagnostic struct {
	File    string `json:"file"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// FileExtraction is the complete derived result for one source file. It is
// the unit persisted in the analysis cache tier; parser tree shapes are never
// persisted.
type FileExtraction struct {
	SchemaVersion int          `json:"schemaVersion"`
	File          string       `json:"file"`
	Endpoints     []*Endpoint  `json:"endpoints,omitempty"`
	CallSites     []*CallSite  `json:"callSites,omitempty"`
	Components    []*Component `json:"components,omitempty"`
	Imports       []Import     `json:"imports,omitempty"`
	Diagnostics   []Diagnostic `json:"diagnostics,omitempty"`
}
