// Package currency defines the supported-currency registry, the problem
// taxonomy for user-facing failures, and the shared amount-checking rule.
package currency

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the fixed set of currency codes the service supports.
// It is built once at startup and never mutated afterwards.
type Registry struct {
	codes map[string]struct{}
}

// NewRegistry builds a Registry from the configured currency list.
// Codes are normalized to upper case; anything that is not three ASCII
// letters is rejected.
func NewRegistry(codes []string) (*Registry, error) {
	if len(codes) < 2 {
		return nil, fmt.Errorf("at least two supported currencies are required, got %d", len(codes))
	}

	set := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		norm := strings.ToUpper(strings.TrimSpace(code))
		if !isValidCode(norm) {
			return nil, fmt.Errorf("invalid currency code %q: expected three letters", code)
		}
		set[norm] = struct{}{}
	}

	return &Registry{codes: set}, nil
}

func isValidCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// IsSupported reports whether the code belongs to the registry (case-insensitive).
func (r *Registry) IsSupported(code string) bool {
	_, ok := r.codes[strings.ToUpper(code)]
	return ok
}

// All returns every registered currency code in sorted order.
func (r *Registry) All() []string {
	out := make([]string, 0, len(r.codes))
	for code := range r.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// AllExcept returns every registered currency other than the given one, in
// sorted order. These are the target currencies an upstream response for
// that base is expected to carry.
func (r *Registry) AllExcept(base string) []string {
	norm := strings.ToUpper(base)
	out := make([]string, 0, len(r.codes)-1)
	for code := range r.codes {
		if code != norm {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}
