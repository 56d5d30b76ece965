// Package conditions evaluates the two ordered condition lists that gate
// dialogue: actor interaction conditions (optionally cached) and dialogue
// start conditions.
package conditions

import (
	"github.com/nathoo/parley/engine/state"
	"github.com/nathoo/parley/types"
)

// Condition is anything that can be evaluated now to true or false.
type Condition interface {
	Evaluate() bool
}

// Func adapts a plain function to Condition.
type Func func() bool

// Evaluate calls f.
func (f Func) Evaluate() bool { return f() }

// Cache remembers which conditions of a list (by position) have already
// been satisfied. Once cached, a condition is treated as true until Clear.
type Cache struct {
	ok map[int]bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{ok: map[int]bool{}}
}

// Has reports whether the condition at index i is cached.
func (c *Cache) Has(i int) bool { return c.ok[i] }

// Add marks the condition at index i as satisfied.
func (c *Cache) Add(i int) { c.ok[i] = true }

// Len returns the number of cached conditions.
func (c *Cache) Len() int { return len(c.ok) }

// Clear forgets every cached condition.
func (c *Cache) Clear() { c.ok = map[int]bool{} }

// CanInteract evaluates actor interaction conditions in order and stops at
// the first failure. With a non-nil cache, cached conditions are skipped and
// newly satisfied ones are added; a failing condition is never cached.
// An empty list is vacuously true.
func CanInteract(conds []Condition, cache *Cache) bool {
	for i, c := range conds {
		if cache == nil {
			if !c.Evaluate() {
				return false
			}
			continue
		}
		if cache.Has(i) {
			continue
		}
		if !c.Evaluate() {
			return false
		}
		cache.Add(i)
	}
	return true
}

// CanStart evaluates dialogue start conditions in order and stops at the
// first failure. Never cached.
func CanStart(conds []Condition) bool {
	for _, c := range conds {
		if !c.Evaluate() {
			return false
		}
	}
	return true
}

// Bind turns an authored condition into a Condition reading the world state.
// Each Evaluate reads s afresh.
func Bind(c types.Condition, s *types.State) Condition {
	return Func(func() bool { return Eval(c, s) })
}

// BindAll binds every condition of a list, preserving order.
func BindAll(cs []types.Condition, s *types.State) []Condition {
	out := make([]Condition, 0, len(cs))
	for _, c := range cs {
		out = append(out, Bind(c, s))
	}
	return out
}

// Eval evaluates a single authored condition against the world state.
// Unknown condition types evaluate to false.
func Eval(c types.Condition, s *types.State) bool {
	switch c.Type {
	case "has_item":
		item, _ := c.Params["item"].(string)
		return state.HasItem(s, item)

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "flag_is":
		flag, _ := c.Params["flag"].(string)
		value, _ := c.Params["value"].(bool)
		return state.GetFlag(s, flag) == value

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) > toInt(c.Params["value"])

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) < toInt(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !Eval(*c.Inner, s)

	default:
		return false
	}
}

// KnownTypes lists the condition types Eval understands.
var KnownTypes = map[string]bool{
	"has_item":   true,
	"flag_set":   true,
	"flag_not":   true,
	"flag_is":    true,
	"counter_gt": true,
	"counter_lt": true,
	"not":        true,
}

// toInt converts an any value to int, handling float64 from Lua/YAML.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
