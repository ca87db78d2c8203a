package model

// Endpoint represents a statically declared backend route with its metadata.
type Endpoint struct {
	Method        string   `json:"method"`
	Path          string   `json:"path"`    // normalized comparison key
	RawPath       string   `json:"rawPath"` // as written in the source
	SourceFile    string   `json:"sourceFile"`
	Line          int      `json:"line"`
	Middleware    []string `json:"middleware,omitempty"`
	ControllerRef string   `json:"controllerRef,omitempty"`
	RequiresAuth  bool     `json:"requiresAuth"`
	PathParams    []string `json:"pathParams,omitempty"`
	QueryParams   []string `json:"queryParams,omitempty"`
	BodyFields    []string `json:"bodyFields,omitempty"`
	Used          bool     `json:"used"`
}

// Key returns the endpoint identity used for reconciliation.
func (e *Endpoint) Key() string {
	return e.Method + " " + e.Path
}

// EndpointSet indexes endpoints by identity key. Declarations that collide on
// a key are all retained; the most recently added one is the match target.
type EndpointSet struct {
	byKey map[string][]*Endpoint
	order []string
}

// NewEndpointSet creates an empty endpoint set.
func NewEndpointSet() *EndpointSet {
	return &EndpointSet{byKey: make(map[string][]*Endpoint)}
}

// Add inserts an endpoint, keeping earlier declarations with the same key.
func (s *EndpointSet) Add(endpoint *Endpoint) {
	key := endpoint.Key()
	if _, ok := s.byKey[key]; !ok {
		s.order = append(s.order, key)
	}
	s.byKey[key] = append(s.byKey[key], endpoint)
}

// Lookup returns the match target for a key: the latest declaration observed.
func (s *EndpointSet) Lookup(key string) (*Endpoint, bool) {
	endpoints, ok := s.byKey[key]
	if !ok || len(endpoints) == 0 {
		return nil, false
	}
	return endpoints[len(endpoints)-1], true
}

// All returns every declaration for a key, in observation order.
func (s *EndpointSet) All(key string) []*Endpoint {
	return s.byKey[key]
}

// Keys returns the distinct identity keys in first-observation order.
func (s *EndpointSet) Keys() []string {
	return s.order
}

// Len returns the number of distinct identity keys.
func (s *EndpointSet) Len() int {
	return len(s.byKey)
}
