package mocks

import (
	"maps"
	"slices"
	"sync"
)

type Span struct {
	Scope      string
	Name       string
	Attributes map[string]any
	Events     []string
	Errors     []error
	Ended      bool
}

func (s *Span) clone() Span {
	out := *s
	out.Attributes = maps.Clone(s.Attributes)
	out.Events = slices.Clone(s.Events)
	out.Errors = slices.Clone(s.Errors)

	return out
}

type scopeImpl struct {
	span *Span
	mu   *sync.Mutex
}

// AddEvent implements otel.Scope.
func (s *scopeImpl) AddEvent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Events = append(s.span.Events, name)
}

// End implements otel.Scope.
func (s *scopeImpl) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Ended = true
}

// SetAttribute implements otel.Scope.
func (s *scopeImpl) SetAttribute(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Attributes[key] = value
}

// SetAttributes implements otel.Scope.
func (s *scopeImpl) SetAttributes(attributes map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.span.Attributes, attributes)
}

// TraceError implements otel.Scope.
func (s *scopeImpl) TraceError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.span.Errors = append(s.span.Errors, err)
}

// TraceIfError implements otel.Scope.
func (s *scopeImpl) TraceIfError(err error) {
	if err != nil {
		s.TraceError(err)
	}
}
