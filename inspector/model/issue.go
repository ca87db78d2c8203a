package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IssueType classifies a reconciliation, security, or component finding.
type IssueType string

const (
	MissingBackendEndpoint  IssueType = "MISSING_BACKEND_ENDPOINT"
	MethodMismatch          IssueType = "METHOD_MISMATCH"
	UnusedEndpoint          IssueType = "UNUSED_ENDPOINT"
	DuplicateEndpoint       IssueType = "DUPLICATE_ENDPOINT"
	MissingURLParam         IssueType = "MISSING_URL_PARAM"
	ExtraURLParam           IssueType = "EXTRA_URL_PARAM"
	MissingBodyField        IssueType = "MISSING_BODY_FIELD"
	ExtraBodyField          IssueType = "EXTRA_BODY_FIELD"
	MissingQueryParam       IssueType = "MISSING_QUERY_PARAM"
	SensitiveEndpointNoAuth IssueType = "SENSITIVE_ENDPOINT_NO_AUTH"
	SensitiveMethodNoAuth   IssueType = "SENSITIVE_METHOD_NO_AUTH"
	MissingAuthHeader       IssueType = "MISSING_AUTH_HEADER"
	DuplicateComponent      IssueType = "DUPLICATE_COMPONENT"
	UnusedDSComponent       IssueType = "UNUSED_DS_COMPONENT"
	ComponentMissingTests   IssueType = "COMPONENT_MISSING_TESTS"
	ComponentMissingStories IssueType = "COMPONENT_MISSING_STORIES"
	ParseFailure            IssueType = "PARSE_FAILURE"
)

// Severity ranks an issue for reporting collaborators.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SourceRef points at the file and line an issue was observed at.
type SourceRef struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Issue is a single finding produced by a validation component. Issues are
// immutable after creation; IDs are unique within a run only.
type Issue struct {
	ID          string      `json:"id"`
	Type        IssueType   `json:"type"`
	Severity    Severity    `json:"severity"`
	Message     string      `json:"message"`
	Refs        []SourceRef `json:"refs,omitempty"`
	Endpoint    *Endpoint   `json:"endpoint,omitempty"`
	Component   *Component  `json:"component,omitempty"`
	Suggestions []string    `json:"suggestions,omitempty"`
}

// NewIssueID generates a run-unique issue identifier from the current time
// and a random source.
func NewIssueID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}
