package engine

import (
	"maps"
	"sort"
)

// ValueSet is a flow-sensitive may-points-to abstraction: for each
// pointer identifier it tracks the set of abstract object names it might
// currently denote (the object named by a Symbol/AddressOf target; no
// NULL or INVALID sentinel objects are recorded). It is intentionally coarse — no
// field-sensitivity, no offsets — matching the "points-to abstraction
// supporting join" scope of the domain and nothing more.
type ValueSet struct {
	pointsTo map[string]map[string]bool
}

func NewValueSet() *ValueSet {
	return &ValueSet{pointsTo: map[string]map[string]bool{}}
}

func (v *ValueSet) Clone() *ValueSet {
	out := make(map[string]map[string]bool, len(v.pointsTo))
	for k, set := range v.pointsTo {
		out[k] = maps.Clone(set)
	}
	return &ValueSet{pointsTo: out}
}

// Assign replaces ptr's points-to set outright (a definite assignment,
// e.g. "p = &a").
func (v *ValueSet) Assign(ptr string, objects ...string) {
	set := make(map[string]bool, len(objects))
	for _, o := range objects {
		set[o] = true
	}
	v.pointsTo[ptr] = set
}

// Merge unions objects into ptr's existing points-to set. The execution
// loop itself only calls Assign and Join; nothing in the engine calls Merge.
func (v *ValueSet) Merge(ptr string, objects ...string) {
	set, ok := v.pointsTo[ptr]
	if !ok {
		set = map[string]bool{}
		v.pointsTo[ptr] = set
	}
	for _, o := range objects {
		set[o] = true
	}
}

// Get returns the (sorted, for determinism) points-to set of ptr.
func (v *ValueSet) Get(ptr string) []string {
	set := v.pointsTo[ptr]
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for o := range set {
		out = append(out, o)
	}
	sort.Strings(out)
	return out
}

// Join unions the two value-sets pointer-by-pointer (§4.5 Merge:
// "value-set join: union").
func (v *ValueSet) Join(o *ValueSet) *ValueSet {
	out := v.Clone()
	for ptr, set := range o.pointsTo {
		cur, ok := out.pointsTo[ptr]
		if !ok {
			out.pointsTo[ptr] = maps.Clone(set)
			continue
		}
		for obj := range set {
			cur[obj] = true
		}
	}
	return out
}
