// Package routing provides reverse routing: building concrete hrefs from a
// registration table keyed by (controller, operation). Adapters ask the
// table for the href of a named operation instead of formatting URL strings
// themselves, so a path change propagates to every affordance that
// references it.
package routing

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
)

// Route is one registered route: an HTTP method plus a path pattern with
// {param} placeholders.
type Route struct {
	Method  string
	Pattern string
}

// RouteNotFoundError reports a lookup for an operation that was never
// registered. This is a programmer error: treat it as fatal at adapter
// construction time, not recoverable at request time.
type RouteNotFoundError struct {
	Controller string
	Operation  string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("no route registered for %s.%s", e.Controller, e.Operation)
}

// MissingParameterError reports a placeholder with no matching param.
type MissingParameterError struct {
	Controller string
	Operation  string
	Param      string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("route %s.%s: missing parameter %q", e.Controller, e.Operation, e.Param)
}

type routeKey struct {
	controller string
	operation  string
}

// Table is the route registration table. It is populated once at startup and
// read concurrently afterwards.
type Table struct {
	mu     sync.RWMutex
	routes map[routeKey]Route
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{routes: make(map[routeKey]Route)}
}

// Register records a route for a (controller, operation) pair. Registering
// the same pair twice panics: two handlers claiming one operation is a
// wiring bug, the same class of silent disagreement reverse routing exists
// to prevent.
func (t *Table) Register(controller, operation, method, pattern string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := routeKey{controller: controller, operation: operation}
	if existing, ok := t.routes[key]; ok {
		panic(fmt.Sprintf("routing: %s.%s already registered as %s %s",
			controller, operation, existing.Method, existing.Pattern))
	}
	t.routes[key] = Route{Method: strings.ToUpper(method), Pattern: pattern}
}

// Walk visits every registered route in deterministic order, sorted by
// controller then operation.
func (t *Table) Walk(fn func(controller, operation string, r Route)) {
	t.mu.RLock()
	keys := make([]routeKey, 0, len(t.routes))
	for k := range t.routes {
		keys = append(keys, k)
	}
	t.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].controller != keys[j].controller {
			return keys[i].controller < keys[j].controller
		}
		return keys[i].operation < keys[j].operation
	})
	for _, k := range keys {
		t.mu.RLock()
		r := t.routes[k]
		t.mu.RUnlock()
		fn(k.controller, k.operation, r)
	}
}

// Lookup returns the route registered for a (controller, operation) pair.
func (t *Table) Lookup(controller, operation string) (Route, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	route, ok := t.routes[routeKey{controller: controller, operation: operation}]
	if !ok {
		return Route{}, &RouteNotFoundError{Controller: controller, Operation: operation}
	}
	return route, nil
}

// Href builds the concrete path for an operation by substituting params into
// the registered pattern's placeholders. Every placeholder must be supplied;
// extra params are ignored.
func (t *Table) Href(controller, operation string, params map[string]string) (string, error) {
	route, err := t.Lookup(controller, operation)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	pattern := route.Pattern
	for {
		open := strings.IndexByte(pattern, '{')
		if open < 0 {
			b.WriteString(pattern)
			break
		}
		close := strings.IndexByte(pattern[open:], '}')
		if close < 0 {
			b.WriteString(pattern)
			break
		}
		close += open

		b.WriteString(pattern[:open])
		name := pattern[open+1 : close]
		value, ok := params[name]
		if !ok {
			return "", &MissingParameterError{Controller: controller, Operation: operation, Param: name}
		}
		b.WriteString(url.PathEscape(value))
		pattern = pattern[close+1:]
	}

	return b.String(), nil
}

// MustHref is Href for statically known operations: it panics on failure,
// surfacing missing registrations at adapter construction time.
func (t *Table) MustHref(controller, operation string, params map[string]string) string {
	href, err := t.Href(controller, operation, params)
	if err != nil {
		panic(err)
	}
	return href
}

// Method returns the HTTP method registered for an operation, for adapters
// that stamp it onto a template alongside the target href.
func (t *Table) Method(controller, operation string) (string, error) {
	route, err := t.Lookup(controller, operation)
	if err != nil {
		return "", err
	}
	return route.Method, nil
}
