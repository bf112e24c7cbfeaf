package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TestBuildProjectAssemblesNiches lays out a minimal project on a real
// temp directory (niches-directory/<name>/igor-thettingth.toml, with one
// niche carrying a local invar/ override) and checks BuildProject wires
// everything RunOnce needs.
func TestBuildProjectAssemblesNiches(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "niches", "alpha", SettingsFilename), `
[thundercloud]
directory = "cloud"

[options]
selected = ["bash_config"]
`)
	writeFile(t, filepath.Join(root, "niches", "alpha", "cloud", "dot_bashrc+option-bash_config"), "export A=1")
	writeFile(t, filepath.Join(root, "niches", "alpha", "invar", "dot_bashrc+option-bash_config"), "export A=override")

	writeFile(t, filepath.Join(root, "niches", "beta", SettingsFilename), `
[thundercloud]
directory = "cloud"
`)
	writeFile(t, filepath.Join(root, "niches", "beta", "cloud", "main+option.rs"), "fn main() {}")

	manifestData := []byte(`niches-directory = "niches"`)

	project, err := BuildProject(root, filepath.Join(root, ".cache"), manifestData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(project.Niches) != 2 {
		t.Fatalf("expected 2 niches, got %d: %+v", len(project.Niches), project.Niches)
	}
	alpha, ok := project.Niches["alpha"]
	if !ok {
		t.Fatal("expected an alpha niche")
	}
	if alpha.Invar == nil {
		t.Fatal("expected alpha's invar/ subdirectory to be wired")
	}
	if alpha.Thundercloud == nil {
		t.Fatal("expected alpha's thundercloud to be wired")
	}
	if !alpha.Options.Active("bash_config") {
		t.Fatal("expected alpha's bash_config feature to be selected")
	}

	beta, ok := project.Niches["beta"]
	if !ok {
		t.Fatal("expected a beta niche")
	}
	if beta.Invar != nil {
		t.Fatal("expected beta (no invar/ subdirectory) to have a nil Invar source")
	}
	if project.DecodeConfig == nil {
		t.Fatal("expected DecodeConfig to be wired")
	}
}

func TestBuildProjectErrorsOnMissingThundercloud(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "niches", "alpha", SettingsFilename), "")

	_, err := BuildProject(root, filepath.Join(root, ".cache"), []byte(`niches-directory = "niches"`))
	if err == nil {
		t.Fatal("expected an error for a niche with no thundercloud configured")
	}
}

func TestBuildProjectErrorsOnMissingNichesDirectory(t *testing.T) {
	root := t.TempDir()
	_, err := BuildProject(root, filepath.Join(root, ".cache"), []byte(`niches-directory = "does-not-exist"`))
	if err == nil {
		t.Fatal("expected an error when the niches directory does not exist")
	}
}
