package igor

// alwaysOnFeature is the feature identifier that is active unconditionally
// and can never be deselected: plain files parse to this feature.
const alwaysOnFeature = "@"

// FeatureSet is the pure selected/deselected predicate described in
// spec.md §3/§4.B. The zero value has nothing selected, so only "@" is
// active — a niche with no configured options still emits plain files.
type FeatureSet struct {
	selected   map[string]struct{}
	deselected map[string]struct{}
}

// NewFeatureSet builds a FeatureSet from explicit selected/deselected lists.
func NewFeatureSet(selected, deselected []string) FeatureSet {
	fs := FeatureSet{
		selected:   make(map[string]struct{}, len(selected)),
		deselected: make(map[string]struct{}, len(deselected)),
	}
	for _, s := range selected {
		fs.selected[s] = struct{}{}
	}
	for _, d := range deselected {
		fs.deselected[d] = struct{}{}
	}
	return fs
}

// Active reports whether feature f is active for this set. "@" is
// always active. A feature deselected wins over a feature selected
// (deselection is an explicit override); any feature not mentioned at
// all is inactive, never an error.
func (fs FeatureSet) Active(f string) bool {
	if f == alwaysOnFeature {
		return true
	}
	if _, deselected := fs.deselected[f]; deselected {
		return false
	}
	_, selected := fs.selected[f]
	return selected
}

// Selected returns the explicitly selected feature names, in no
// particular order. Used for debug logging only.
func (fs FeatureSet) Selected() []string {
	out := make([]string, 0, len(fs.selected))
	for s := range fs.selected {
		out = append(out, s)
	}
	return out
}
