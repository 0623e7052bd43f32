package pagegen

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Variables is an insertion-ordered set of placeholder values.
// Re-setting an existing key keeps its original position.
type Variables struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewVariables returns an empty variable set.
func NewVariables() *Variables {
	return &Variables{m: orderedmap.New[string, string]()}
}

// Set assigns value to key and returns v for chaining.
func (v *Variables) Set(key, value string) *Variables {
	v.m.Set(key, value)
	return v
}

// Get returns the value stored for key.
func (v *Variables) Get(key string) (string, bool) {
	if v == nil {
		return "", false
	}
	return v.m.Get(key)
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	if v == nil {
		return 0
	}
	return v.m.Len()
}

// Keys returns the variable names in insertion order.
func (v *Variables) Keys() []string {
	keys := make([]string, 0, v.Len())
	v.each(func(key, _ string) {
		keys = append(keys, key)
	})
	return keys
}

// Clone returns an independent copy that preserves order.
func (v *Variables) Clone() *Variables {
	out := NewVariables()
	v.each(func(key, value string) {
		out.Set(key, value)
	})
	return out
}

func (v *Variables) each(fn func(key, value string)) {
	if v == nil {
		return
	}
	for pair := v.m.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Placeholder returns the literal token for name, e.g. {{PAGE_TITLE}}.
func Placeholder(name string) string {
	return "{{" + name + "}}"
}

// Substitute replaces every {{KEY}} occurrence for each variable, in insertion
// order. Placeholders without a matching variable are left untouched.
func Substitute(template string, vars *Variables) string {
	result := template
	vars.each(func(key, value string) {
		result = strings.ReplaceAll(result, Placeholder(key), value)
	})
	return result
}
