package igor

// WriteMode controls how Emit writes a target that may already exist.
type WriteMode int

const (
	WriteOverwrite WriteMode = iota
	WriteNew
	WriteIgnore
)

func (m WriteMode) String() string {
	switch m {
	case WriteOverwrite:
		return "overwrite"
	case WriteNew:
		return "write-new"
	case WriteIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// InvarConfig is the effective per-target configuration after merging
// project defaults, niche defaults, and any per-file +config-* override
// (spec.md §3/§4.E).
type InvarConfig struct {
	WriteMode   WriteMode
	Target      string // path template; "" means no override
	Interpolate bool
	Props       map[string]string
}

// DefaultInvarConfig is the baseline spec.md §3 describes: Overwrite, no
// target override, interpolation on, no props.
func DefaultInvarConfig() InvarConfig {
	return InvarConfig{WriteMode: WriteOverwrite, Interpolate: true, Props: map[string]string{}}
}

// InvarOverride is a sparse set of fields a layer wants to set;
// unset pointer/bool fields mean "inherit from the weaker layer".
// ConfigDecoder implementations (internal/manifest) build these from
// TOML and the resolver merges them weakest-to-strongest.
type InvarOverride struct {
	WriteMode   *WriteMode
	Target      *string
	Interpolate *bool
	Props       map[string]string
}

// Merge applies override on top of base per spec.md §4.E: maps union
// with the override's keys winning, scalars overwritten only if the
// override explicitly sets them.
func (base InvarConfig) Merge(override InvarOverride) InvarConfig {
	out := base
	if out.Props == nil {
		out.Props = map[string]string{}
	} else {
		merged := make(map[string]string, len(out.Props))
		for k, v := range out.Props {
			merged[k] = v
		}
		out.Props = merged
	}
	if override.WriteMode != nil {
		out.WriteMode = *override.WriteMode
	}
	if override.Target != nil {
		out.Target = *override.Target
	}
	if override.Interpolate != nil {
		out.Interpolate = *override.Interpolate
	}
	for k, v := range override.Props {
		out.Props[k] = v
	}
	return out
}

// ResolveInvarConfig merges, weakest to strongest, the project-wide
// defaults, the niche-level defaults, and (if its feature is active) a
// per-file config override, per spec.md §4.E. perFile may be nil when
// no +config-* sibling exists for this target.
func ResolveInvarConfig(projectDefaults, nicheDefaults InvarConfig, perFile *InvarOverride, features FeatureSet, perFileFeature string) InvarConfig {
	effective := projectDefaults
	effective = effective.Merge(overrideFrom(nicheDefaults))
	if perFile != nil && features.Active(perFileFeature) {
		effective = effective.Merge(*perFile)
	}
	return effective
}

// overrideFrom converts a fully-populated InvarConfig into an
// InvarOverride that sets every field, for layering one full config on
// top of another via Merge.
func overrideFrom(cfg InvarConfig) InvarOverride {
	wm := cfg.WriteMode
	target := cfg.Target
	interp := cfg.Interpolate
	return InvarOverride{WriteMode: &wm, Target: &target, Interpolate: &interp, Props: cfg.Props}
}
