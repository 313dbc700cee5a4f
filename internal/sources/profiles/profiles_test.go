package profiles

import (
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `profiles:
  - name: wise
    match:
      tableIds: ["wise-*"]
    activateServiceDef: true
    componentKey: wise
    ucdKeys: ["obs.field"]
    cutoutDeg: 0.05
  - name: irsa
    match:
      urlPrefixes: ["https://irsa.example.edu/"]
    singleViewImageOnly: true
  - name: default
    activateServiceDef: false
`

func loadTestSet(t *testing.T) *Set {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	if err := os.WriteFile(path, []byte(testYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}
	compiled, err := NewMapper().MapProfiles(config)
	if err != nil {
		t.Fatal(err)
	}
	set := NewSet()
	set.Replace(compiled)
	return set
}

func TestOptionsForTableIDGlob(t *testing.T) {
	set := loadTestSet(t)

	opts, name := set.OptionsFor("wise-allsky", "https://other/dl")
	if name != "wise" {
		t.Fatalf("profile = %q, want wise", name)
	}
	if !opts.ActivateServiceDef || opts.ComponentKey != "wise" {
		t.Errorf("options = %+v, want the wise profile settings", opts)
	}
	if len(opts.UCDKeys) != 1 || opts.UCDKeys[0] != "obs.field" {
		t.Errorf("ucd keys = %v", opts.UCDKeys)
	}
}

func TestOptionsForURLPrefix(t *testing.T) {
	set := loadTestSet(t)

	opts, name := set.OptionsFor("some-table", "https://irsa.example.edu/dl?id=1")
	if name != "irsa" {
		t.Fatalf("profile = %q, want irsa", name)
	}
	if !opts.SingleViewImageOnly {
		t.Errorf("SingleViewImageOnly not set")
	}
}

func TestDefaultProfileCatchesRest(t *testing.T) {
	set := loadTestSet(t)

	opts, name := set.OptionsFor("unrelated", "https://elsewhere/dl")
	if name != "default" {
		t.Fatalf("profile = %q, want default", name)
	}
	if opts.ActivateServiceDef {
		t.Errorf("default options = %+v", opts)
	}
}

func TestCutoutFor(t *testing.T) {
	set := loadTestSet(t)

	if got := set.CutoutFor("wise-allsky", ""); got != 0.05 {
		t.Errorf("wise cutout = %v, want 0.05", got)
	}
	if got := set.CutoutFor("unrelated", ""); got != 0 {
		t.Errorf("default cutout = %v, want 0 (unset)", got)
	}
}

func TestMapperRejectsUnnamedProfile(t *testing.T) {
	_, err := NewMapper().MapProfiles(FileConfig{Profiles: []ProfileProps{{}}})
	if err == nil {
		t.Fatal("unnamed profile accepted")
	}
}

func TestLoaderRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("profiles: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewLoader(path).Load(); err == nil {
		t.Fatal("bad yaml accepted")
	}
}
