package mocks

import (
	"context"
	"sync"

	"tasktracker/infras/otel"
)

// Otel records every scope it opens so tests can assert on span names,
// attributes and errors without a tracer provider.
type Otel struct {
	mu    sync.Mutex
	spans []*Span
}

// NewScope implements otel.Otel.
func (o *Otel) NewScope(ctx context.Context, scopeName, spanName string) (context.Context, otel.Scope) {
	span := &Span{Scope: scopeName, Name: spanName, Attributes: map[string]any{}}

	o.mu.Lock()
	o.spans = append(o.spans, span)
	o.mu.Unlock()

	return ctx, &scopeImpl{span: span, mu: &o.mu}
}

// Spans returns a snapshot of the recorded spans in the order they were opened.
func (o *Otel) Spans() []Span {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]Span, 0, len(o.spans))
	for _, span := range o.spans {
		out = append(out, span.clone())
	}

	return out
}

// Span returns the last recorded span with the given name.
func (o *Otel) Span(name string) (Span, bool) {
	spans := o.Spans()
	for i := len(spans) - 1; i >= 0; i-- {
		if spans[i].Name == name {
			return spans[i], true
		}
	}

	return Span{}, false
}

func NewOtel() *Otel {
	return &Otel{}
}
