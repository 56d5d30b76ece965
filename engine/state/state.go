// Package state manages the world blackboard that authored conditions read:
// flags, counters and carried items.
package state

import "github.com/nathoo/parley/types"

// NewState creates an empty world state.
func NewState() *types.State {
	return &types.State{
		Flags:    map[string]bool{},
		Counters: map[string]int{},
		Items:    []string{},
	}
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.State, name string) bool {
	return s.Flags[name]
}

// SetFlag sets a flag.
func SetFlag(s *types.State, name string, value bool) {
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	s.Flags[name] = value
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.State, name string) int {
	return s.Counters[name]
}

// SetCounter sets a counter to an absolute value.
func SetCounter(s *types.State, name string, value int) {
	if s.Counters == nil {
		s.Counters = map[string]int{}
	}
	s.Counters[name] = value
}

// IncCounter adds delta to a counter and returns the new value.
func IncCounter(s *types.State, name string, delta int) int {
	SetCounter(s, name, s.Counters[name]+delta)
	return s.Counters[name]
}

// HasItem returns true if the item is carried.
func HasItem(s *types.State, itemID string) bool {
	for _, id := range s.Items {
		if id == itemID {
			return true
		}
	}
	return false
}

// GiveItem adds an item unless it is already carried.
func GiveItem(s *types.State, itemID string) {
	if HasItem(s, itemID) {
		return
	}
	s.Items = append(s.Items, itemID)
}

// RemoveItem drops an item. Returns false if it was not carried.
func RemoveItem(s *types.State, itemID string) bool {
	for i, id := range s.Items {
		if id == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return true
		}
	}
	return false
}
