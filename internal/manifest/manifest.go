// Package manifest decodes the project manifest, per-niche settings
// file, and per-file config siblings from TOML, converting them into
// the igor package's pure Go types. igor itself never imports an
// encoding package (spec.md §1's external-collaborator boundary).
package manifest

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/igor-vendor/igor/igor"
)

// DefaultNichesDirectory is the manifest's niches-directory fallback.
const DefaultNichesDirectory = "yeth-marthter"

// invarConfigToml mirrors InvarConfig but with pointer/optional fields
// so Load can tell "absent" from "explicitly zero" (spec.md §4.E).
type invarConfigToml struct {
	WriteMode   *string           `toml:"write-mode"`
	Target      *string           `toml:"target"`
	Interpolate *bool             `toml:"interpolate"`
	Props       map[string]string `toml:"props"`
}

func (t invarConfigToml) override() (igor.InvarOverride, error) {
	var ov igor.InvarOverride
	if t.WriteMode != nil {
		wm, err := parseWriteMode(*t.WriteMode)
		if err != nil {
			return ov, err
		}
		ov.WriteMode = &wm
	}
	ov.Target = t.Target
	ov.Interpolate = t.Interpolate
	ov.Props = t.Props
	return ov, nil
}

func parseWriteMode(s string) (igor.WriteMode, error) {
	switch s {
	case "", "overwrite":
		return igor.WriteOverwrite, nil
	case "write-new":
		return igor.WriteNew, nil
	case "ignore":
		return igor.WriteIgnore, nil
	default:
		return 0, fmt.Errorf("unknown write-mode %q", s)
	}
}

// cueToml is one [[psychotropic.cues]] entry.
type cueToml struct {
	Name            string   `toml:"name"`
	WaitFor         []string `toml:"wait-for"`
	UseThundercloud bool     `toml:"use-thundercloud"`
}

type psychotropicToml struct {
	Cues []cueToml `toml:"cues"`
}

// Manifest is the decoded project manifest (spec.md §6).
type Manifest struct {
	NichesDirectory string           `toml:"niches-directory"`
	InvarDefaults   invarConfigToml  `toml:"invar-defaults"`
	Psychotropic    psychotropicToml `toml:"psychotropic"`
}

// Load decodes a project manifest from raw TOML bytes.
func Load(data []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}
	if m.NichesDirectory == "" {
		m.NichesDirectory = DefaultNichesDirectory
	}
	return m, nil
}

// ResolvedInvarDefaults merges the manifest's invar-defaults on top of
// igor's baseline (spec.md §3).
func (m Manifest) ResolvedInvarDefaults() (igor.InvarConfig, error) {
	ov, err := m.InvarDefaults.override()
	if err != nil {
		return igor.InvarConfig{}, err
	}
	return igor.DefaultInvarConfig().Merge(ov), nil
}

// Cues converts the manifest's psychotropic cue list into igor.Cue,
// preserving declaration order (the order ValidateCues depends on).
func (m Manifest) Cues() []igor.Cue {
	cues := make([]igor.Cue, 0, len(m.Psychotropic.Cues))
	for _, c := range m.Psychotropic.Cues {
		cues = append(cues, igor.Cue{Name: c.Name, WaitFor: c.WaitFor, UseThundercloud: c.UseThundercloud})
	}
	return cues
}

// gitToml is the niche settings [thundercloud.git] table.
type gitToml struct {
	Remote     string `toml:"remote"`
	Revision   string `toml:"revision"`
	OnIncoming string `toml:"on-incoming"`
}

type thundercloudToml struct {
	Directory string   `toml:"directory"`
	Git       *gitToml `toml:"git"`
}

type optionsToml struct {
	Selected   []string `toml:"selected"`
	Deselected []string `toml:"deselected"`
}

type nicheSettingsToml struct {
	Thundercloud thundercloudToml `toml:"thundercloud"`
	Options      optionsToml      `toml:"options"`
	Settings     struct {
		Watch bool   `toml:"watch"`
		Build string `toml:"build"`
	} `toml:"settings"`
	InvarDefaults invarConfigToml `toml:"invar-defaults"`
}

// NicheSettings is the decoded per-niche igor-thettingth.toml (spec.md §6).
type NicheSettings struct {
	raw nicheSettingsToml
}

// LoadNicheSettings decodes one niche's settings file.
func LoadNicheSettings(data []byte) (NicheSettings, error) {
	var raw nicheSettingsToml
	if err := toml.Unmarshal(data, &raw); err != nil {
		return NicheSettings{}, fmt.Errorf("decoding niche settings: %w", err)
	}
	return NicheSettings{raw: raw}, nil
}

// ThundercloudDirectory is the local directory path, if this niche binds
// a plain directory thundercloud ("" if it binds git instead).
func (ns NicheSettings) ThundercloudDirectory() string {
	return ns.raw.Thundercloud.Directory
}

// GitThundercloud reports the [thundercloud.git] table, if present.
func (ns NicheSettings) GitThundercloud() (remote, revision, onIncoming string, ok bool) {
	g := ns.raw.Thundercloud.Git
	if g == nil {
		return "", "", "", false
	}
	return g.Remote, g.Revision, g.OnIncoming, true
}

// Options builds the niche's FeatureSet from its [options] table.
func (ns NicheSettings) Options() igor.FeatureSet {
	return igor.NewFeatureSet(ns.raw.Options.Selected, ns.raw.Options.Deselected)
}

// Watch reports the niche's [settings] watch flag.
func (ns NicheSettings) Watch() bool { return ns.raw.Settings.Watch }

// BuildCommand reports the niche's [settings] build field.
func (ns NicheSettings) BuildCommand() string { return ns.raw.Settings.Build }

// ResolvedInvarDefaults merges this niche's invar-defaults on top of the
// already-resolved project defaults, producing the full InvarConfig
// Niche.InvarDefaults expects (spec.md §4.E layer 2).
func (ns NicheSettings) ResolvedInvarDefaults(projectDefaults igor.InvarConfig) (igor.InvarConfig, error) {
	ov, err := ns.raw.InvarDefaults.override()
	if err != nil {
		return igor.InvarConfig{}, err
	}
	return projectDefaults.Merge(ov), nil
}

// perFileConfigToml is a `*+config-*.toml` sibling (spec.md §6).
type perFileConfigToml struct {
	WriteMode   *string           `toml:"write-mode"`
	Target      *string           `toml:"target"`
	Interpolate *bool             `toml:"interpolate"`
	Props       map[string]string `toml:"props"`
}

// DecodeConfig is the igor.ConfigDecoder implementation for per-file
// `+config-*.toml` siblings.
func DecodeConfig(raw []byte) (igor.InvarOverride, error) {
	var t perFileConfigToml
	if err := toml.Unmarshal(raw, &t); err != nil {
		return igor.InvarOverride{}, fmt.Errorf("decoding per-file config: %w", err)
	}
	wrapped := invarConfigToml{WriteMode: t.WriteMode, Target: t.Target, Interpolate: t.Interpolate, Props: t.Props}
	return wrapped.override()
}
