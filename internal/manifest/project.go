package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/igor-vendor/igor/internal/source"
	"github.com/igor-vendor/igor/igor"
)

// SettingsFilename is the per-niche settings file spec.md §6 names.
const SettingsFilename = "igor-thettingth.toml"

// invarDirName is the local-override subdirectory inside a niche
// directory, read before the thundercloud (spec.md §4.F).
const invarDirName = "invar"

// BuildProject walks root/<niches-directory>, loading every niche's
// settings file and assembling the igor.Project RunOnce needs. cacheDir
// is where git-backed thunderclouds are cloned/cached.
func BuildProject(root, cacheDir string, manifestData []byte) (igor.Project, error) {
	m, err := Load(manifestData)
	if err != nil {
		return igor.Project{}, fmt.Errorf("loading manifest: %w", err)
	}
	projectDefaults, err := m.ResolvedInvarDefaults()
	if err != nil {
		return igor.Project{}, fmt.Errorf("resolving invar defaults: %w", err)
	}

	nichesRoot := filepath.Join(root, m.NichesDirectory)
	entries, err := os.ReadDir(nichesRoot)
	if err != nil {
		return igor.Project{}, fmt.Errorf("reading niches directory %s: %w", nichesRoot, err)
	}

	niches := make(map[string]igor.Niche, len(entries))
	for _, de := range entries {
		if !de.IsDir() {
			continue
		}
		name := de.Name()
		nicheDir := filepath.Join(nichesRoot, name)
		settingsPath := filepath.Join(nicheDir, SettingsFilename)

		raw, err := os.ReadFile(settingsPath)
		if err != nil {
			return igor.Project{}, fmt.Errorf("niche %s: reading %s: %w", name, SettingsFilename, err)
		}
		ns, err := LoadNicheSettings(raw)
		if err != nil {
			return igor.Project{}, fmt.Errorf("niche %s: %w", name, err)
		}

		niche, err := buildNiche(name, nicheDir, settingsPath, cacheDir, ns, projectDefaults)
		if err != nil {
			return igor.Project{}, err
		}
		niches[name] = niche
	}

	return igor.Project{
		Niches:        niches,
		InvarDefaults: projectDefaults,
		Cues:          m.Cues(),
		DecodeConfig:  DecodeConfig,
	}, nil
}

func buildNiche(name, nicheDir, settingsPath, cacheDir string, ns NicheSettings, projectDefaults igor.InvarConfig) (igor.Niche, error) {
	invarDefaults, err := ns.ResolvedInvarDefaults(projectDefaults)
	if err != nil {
		return igor.Niche{}, fmt.Errorf("niche %s: resolving invar defaults: %w", name, err)
	}

	thundercloud, err := buildThundercloud(name, nicheDir, cacheDir, ns)
	if err != nil {
		return igor.Niche{}, err
	}

	var invar igor.Source
	if info, err := os.Stat(filepath.Join(nicheDir, invarDirName)); err == nil && info.IsDir() {
		invar = source.Local{Dir: filepath.Join(nicheDir, invarDirName)}
	}

	return igor.Niche{
		Name:          name,
		SettingsPath:  settingsPath,
		Thundercloud:  thundercloud,
		Invar:         invar,
		Options:       ns.Options(),
		InvarDefaults: invarDefaults,
		BuildCommand:  ns.BuildCommand(),
		Watch:         ns.Watch(),
	}, nil
}

func buildThundercloud(name, nicheDir, cacheDir string, ns NicheSettings) (igor.Source, error) {
	if remote, revision, onIncoming, ok := ns.GitThundercloud(); ok {
		policy, err := source.ParseOnIncoming(onIncoming)
		if err != nil {
			return nil, fmt.Errorf("niche %s: %w", name, err)
		}
		return &source.Git{
			Remote:     remote,
			Revision:   revision,
			CacheDir:   filepath.Join(cacheDir, name),
			OnIncoming: policy,
		}, nil
	}
	dir := ns.ThundercloudDirectory()
	if dir == "" {
		return nil, fmt.Errorf("niche %s: no thundercloud directory or git remote configured", name)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(nicheDir, dir)
	}
	return source.Local{Dir: dir}, nil
}
