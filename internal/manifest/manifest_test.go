package manifest

import (
	"testing"

	"github.com/igor-vendor/igor/igor"
)

func TestLoadDefaultsNichesDirectory(t *testing.T) {
	m, err := Load([]byte(``))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.NichesDirectory != DefaultNichesDirectory {
		t.Fatalf("expected default niches directory, got %q", m.NichesDirectory)
	}
}

func TestLoadExplicitNichesDirectory(t *testing.T) {
	m, err := Load([]byte(`niches-directory = "niches"`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.NichesDirectory != "niches" {
		t.Fatalf("got %q", m.NichesDirectory)
	}
}

func TestResolvedInvarDefaultsMergesOverBaseline(t *testing.T) {
	m, err := Load([]byte(`
[invar-defaults]
write-mode = "write-new"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := m.ResolvedInvarDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WriteMode != igor.WriteNew {
		t.Fatalf("expected WriteNew, got %v", cfg.WriteMode)
	}
	if !cfg.Interpolate {
		t.Fatal("expected Interpolate to keep its baseline default of true")
	}
}

func TestResolvedInvarDefaultsRejectsBadWriteMode(t *testing.T) {
	m, err := Load([]byte(`
[invar-defaults]
write-mode = "bogus"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.ResolvedInvarDefaults(); err == nil {
		t.Fatal("expected an error for an unrecognized write-mode")
	}
}

func TestCuesPreservesDeclarationOrder(t *testing.T) {
	m, err := Load([]byte(`
[[psychotropic.cues]]
name = "a"

[[psychotropic.cues]]
name = "b"
wait-for = ["a"]
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cues := m.Cues()
	if len(cues) != 2 || cues[0].Name != "a" || cues[1].Name != "b" {
		t.Fatalf("unexpected cue order: %+v", cues)
	}
	if len(cues[1].WaitFor) != 1 || cues[1].WaitFor[0] != "a" {
		t.Fatalf("unexpected wait-for: %+v", cues[1])
	}
}

func TestLoadNicheSettingsLocalDirectory(t *testing.T) {
	ns, err := LoadNicheSettings([]byte(`
[thundercloud]
directory = "cloud"

[options]
selected = ["foo"]
deselected = ["bar"]

[settings]
watch = true
build = "make build"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ns.ThundercloudDirectory() != "cloud" {
		t.Fatalf("got %q", ns.ThundercloudDirectory())
	}
	if _, _, _, ok := ns.GitThundercloud(); ok {
		t.Fatal("expected no git thundercloud for a local-directory niche")
	}
	if !ns.Options().Active("foo") {
		t.Fatal("expected foo selected")
	}
	if ns.Options().Active("bar") {
		t.Fatal("expected bar deselected")
	}
	if !ns.Watch() || ns.BuildCommand() != "make build" {
		t.Fatalf("unexpected settings: watch=%v build=%q", ns.Watch(), ns.BuildCommand())
	}
}

func TestLoadNicheSettingsGitThundercloud(t *testing.T) {
	ns, err := LoadNicheSettings([]byte(`
[thundercloud.git]
remote = "https://example.com/cloud.git"
revision = "main"
on-incoming = "rebase"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remote, revision, onIncoming, ok := ns.GitThundercloud()
	if !ok || remote != "https://example.com/cloud.git" || revision != "main" || onIncoming != "rebase" {
		t.Fatalf("unexpected git thundercloud: remote=%q revision=%q on-incoming=%q ok=%v", remote, revision, onIncoming, ok)
	}
}

func TestNicheSettingsResolvedInvarDefaultsLayersOverProject(t *testing.T) {
	projectDefaults := igor.DefaultInvarConfig()
	ns, err := LoadNicheSettings([]byte(`
[invar-defaults]
interpolate = false
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resolved, err := ns.ResolvedInvarDefaults(projectDefaults)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Interpolate {
		t.Fatal("expected niche override to disable interpolation")
	}
	if resolved.WriteMode != igor.WriteOverwrite {
		t.Fatalf("expected WriteMode to keep the project default, got %v", resolved.WriteMode)
	}
}

func TestDecodeConfig(t *testing.T) {
	ov, err := DecodeConfig([]byte(`
target = "renamed.txt"
interpolate = true

[props]
key = "value"
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ov.Target == nil || *ov.Target != "renamed.txt" {
		t.Fatalf("unexpected target: %+v", ov.Target)
	}
	if ov.Interpolate == nil || !*ov.Interpolate {
		t.Fatalf("unexpected interpolate: %+v", ov.Interpolate)
	}
	if ov.Props["key"] != "value" {
		t.Fatalf("unexpected props: %+v", ov.Props)
	}
}

func TestDecodeConfigRejectsBadWriteMode(t *testing.T) {
	if _, err := DecodeConfig([]byte(`write-mode = "bogus"`)); err == nil {
		t.Fatal("expected an error for an unrecognized write-mode")
	}
}
