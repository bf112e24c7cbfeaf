package igor

import (
	"path"
	"sort"
)

// ConfigDecoder turns the raw bytes of a +config-*.toml sibling into an
// InvarOverride. The igor package never parses TOML itself; callers
// (internal/manifest) supply the decoder so the core stays format-agnostic
// per spec.md §1's external-collaborator boundary.
type ConfigDecoder func(raw []byte) (InvarOverride, error)

// rawEntry is one file discovered while walking a Source, with enough
// context to plan an Action from it.
type rawEntry struct {
	sourcePath string // path within the Source tree
	fromInvar  bool
	parsed     ParsedName
}

// configEntry is a decoded +config-* sibling, keyed by the nominal
// target path it configures.
type configEntry struct {
	nominalTarget string
	fromInvar     bool
	sourcePath    string
	feature       string
	override      InvarOverride
}

// Plan walks niche.Invar (if set) then niche.Thundercloud, producing the
// ordered list of Actions for one niche, per spec.md §4.F. decodeConfig
// may be nil if the niche has no per-file config files to decode.
func Plan(niche Niche, projectDefaults InvarConfig, decodeConfig ConfigDecoder) ([]Action, []Warning, error) {
	var warnings []Warning

	var entries []rawEntry
	var configs []configEntry

	collect := func(src Source, fromInvar bool) error {
		if src == nil {
			return nil
		}
		return walkSource(src, "", func(p string) error {
			name := path.Base(p)
			pn, err := ParseName(name)
			if err != nil {
				return err
			}
			if pn.Function == FuncConfig {
				if decodeConfig == nil {
					warnings = append(warnings, Warning{Path: p, Message: "config file present but no decoder configured, ignoring"})
					return nil
				}
				raw, err := src.Read(p)
				if err != nil {
					return newErr(KindIoError, p, "reading config sibling", err)
				}
				override, err := decodeConfig(raw)
				if err != nil {
					return newErr(KindBadConfig, p, "decoding config sibling", err)
				}
				dir := path.Dir(p)
				nominal := pn.TargetPath()
				if dir != "." && dir != "" {
					nominal = path.Join(dir, nominal)
				}
				configs = append(configs, configEntry{
					nominalTarget: nominal,
					fromInvar:     fromInvar,
					sourcePath:    p,
					feature:       pn.Feature,
					override:      override,
				})
				return nil
			}
			entries = append(entries, rawEntry{sourcePath: p, fromInvar: fromInvar, parsed: pn})
			return nil
		})
	}

	if err := collect(niche.Invar, true); err != nil {
		return nil, warnings, err
	}
	if err := collect(niche.Thundercloud, false); err != nil {
		return nil, warnings, err
	}

	// Sort configs in (thundercloud before invar, source-path) order. For a
	// target with several matching configs only the last one is used, so
	// an invar-sourced config wins; the others are not merged in.
	sort.Slice(configs, func(i, j int) bool {
		if configs[i].fromInvar != configs[j].fromInvar {
			return !configs[i].fromInvar // thundercloud (false) sorts first, invar last
		}
		return configs[i].sourcePath < configs[j].sourcePath
	})

	suppressed := map[string]bool{}
	var actions []Action

	for _, e := range entries {
		nominal := nominalTargetOf(e)
		if e.parsed.Function == FuncIgnore {
			if niche.Options.Active(e.parsed.Feature) {
				suppressed[nominal] = true
			}
			continue
		}
		if !niche.Options.Active(e.parsed.Feature) {
			continue
		}

		nicheCfg := niche.InvarDefaults
		var perFile *InvarOverride
		var perFileFeature string
		for _, c := range configs {
			if c.nominalTarget == nominal {
				ov := c.override
				perFile = &ov
				perFileFeature = c.feature
			}
		}
		effective := ResolveInvarConfig(projectDefaults, nicheCfg, perFile, niche.Options, perFileFeature)

		target := nominal
		if effective.Target != "" {
			target = effective.Target
			if effective.Interpolate {
				target = Interpolate(target, effective.Props)
			}
		}

		if e.parsed.Function == FuncFragment {
			body, err := readSourceBody(niche, e)
			if err != nil {
				return nil, warnings, err
			}
			if effective.Interpolate {
				body = Interpolate(body, effective.Props)
			}
			actions = append(actions, Action{
				Kind:          ActionSplice,
				TargetPath:    target,
				SourcePath:    e.sourcePath,
				FromInvar:     e.fromInvar,
				Function:      e.parsed.Function,
				PlaceholderID: e.parsed.Placeholder,
				Body:          []byte(body),
			})
			continue
		}

		body, err := readSourceBody(niche, e)
		if err != nil {
			return nil, warnings, err
		}
		if effective.Interpolate {
			body = Interpolate(body, effective.Props)
		}

		wm := effective.WriteMode
		if perFile == nil || perFile.WriteMode == nil {
			// No per-file write-mode override: Example forces WriteNew and
			// Overwrite forces WriteOverwrite (spec.md §4.G), replacing any
			// write-mode set in the project or niche invar-defaults. Other
			// functions keep the write-mode merged into `effective`.
			switch e.parsed.Function {
			case FuncExample:
				wm = WriteNew
			case FuncOverwrite:
				wm = WriteOverwrite
			}
		}

		actions = append(actions, Action{
			Kind:        ActionEmit,
			TargetPath:  target,
			SourcePath:  e.sourcePath,
			FromInvar:   e.fromInvar,
			Function:    e.parsed.Function,
			Body:        []byte(body),
			WriteMode:   wm,
			Interpolate: effective.Interpolate,
			Props:       effective.Props,
		})
	}

	// Remove actions whose target was suppressed by an active Ignore,
	// per spec.md invariant I3.
	filtered := actions[:0]
	for _, a := range actions {
		if suppressed[a.TargetPath] {
			continue
		}
		filtered = append(filtered, a)
	}
	actions = filtered

	sort.SliceStable(actions, func(i, j int) bool {
		a, b := actions[i], actions[j]
		if a.TargetPath != b.TargetPath {
			return a.TargetPath < b.TargetPath
		}
		if a.priorityKey() != b.priorityKey() {
			return a.priorityKey() < b.priorityKey()
		}
		if a.FromInvar != b.FromInvar {
			// Actions for the same target apply in this order, each one a
			// candidate overwrite of the last; invar must apply after
			// thundercloud so it wins, hence thundercloud (false) sorts first.
			return !a.FromInvar
		}
		return a.SourcePath < b.SourcePath
	})

	return actions, warnings, nil
}

// Warning is a non-fatal diagnostic raised during planning or execution
// (spec.md §7: UnbalancedPlaceholder/MissingTarget degrade to warnings).
type Warning struct {
	Path    string
	Message string
}

func nominalTargetOf(e rawEntry) string {
	nominal := e.parsed.TargetPath()
	dir := path.Dir(e.sourcePath)
	if dir != "." && dir != "" {
		nominal = path.Join(dir, nominal)
	}
	return nominal
}

func readSourceBody(niche Niche, e rawEntry) (string, error) {
	var src Source
	if e.fromInvar {
		src = niche.Invar
	} else {
		src = niche.Thundercloud
	}
	raw, err := src.Read(e.sourcePath)
	if err != nil {
		return "", newErr(KindIoError, e.sourcePath, "reading source file", err)
	}
	return string(raw), nil
}

// walkSource recursively lists every file (not directory) under dir in
// a Source, invoking visit with each file's full path.
func walkSource(src Source, dir string, visit func(path string) error) error {
	entries, err := src.List(dir)
	if err != nil {
		return newErr(KindIoError, dir, "listing source directory", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, ent := range entries {
		full := ent.Name
		if dir != "" {
			full = path.Join(dir, ent.Name)
		}
		if ent.Kind == KindDir {
			if err := walkSource(src, full, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(full); err != nil {
			return err
		}
	}
	return nil
}
