package model

// CallShape identifies which recognizer matched an outbound HTTP call.
type CallShape string

const (
	ShapeFetch            CallShape = "fetch"
	ShapeHTTPClientMethod CallShape = "httpClientMethod"
	ShapeGenericClient    CallShape = "genericClient"
	ShapeRequestConfig    CallShape = "requestConfig"
	ShapeServiceHeuristic CallShape = "serviceHeuristic"
)

// CallSite represents a statically recognized outbound HTTP call in client
// code. A CallSite is immutable once created.
type CallSite struct {
	Method        string         `json:"method"`
	RawURL        string         `json:"rawUrl"`
	URL           string         `json:"url"` // normalized comparison key
	SourceFile    string         `json:"sourceFile"`
	Line          int            `json:"line"`
	BodyShape     map[string]any `json:"bodyShape,omitempty"`
	HasAuthHeader bool           `json:"hasAuthHeader"`
	URLParams     []string       `json:"urlParams,omitempty"`
	QueryParams   []string       `json:"queryParams,omitempty"`
	Shape         CallShape      `json:"shape"`
}

// Key returns the call identity aligned with Endpoint.Key.
func (c *CallSite) Key() string {
	return c.Method + " " + c.URL
}
