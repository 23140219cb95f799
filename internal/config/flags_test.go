package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// TestFlagOverridesMissingFile verifies a missing flags.json is an empty
// store, not an error.
func TestFlagOverridesMissingFile(t *testing.T) {
	overrides, err := LoadFlagOverrides(filepath.Join(t.TempDir(), "flags.json"))
	if err != nil {
		t.Fatalf("LoadFlagOverrides: %v", err)
	}
	if len(overrides) != 0 {
		t.Errorf("overrides = %v, want empty", overrides)
	}
}

// TestFlagOverridesSetUnset exercises the set/load/unset cycle against a
// real file.
func TestFlagOverridesSetUnset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")

	if err := SetFlagOverride(path, "mega", "--vfs-cache-max-size", "200M"); err != nil {
		t.Fatalf("SetFlagOverride: %v", err)
	}
	if err := SetFlagOverride(path, "mega", "--fast-list", ""); err != nil {
		t.Fatalf("SetFlagOverride bare: %v", err)
	}
	if err := SetFlagOverride(path, "drive", "--drive-chunk-size", "64M"); err != nil {
		t.Fatalf("SetFlagOverride second type: %v", err)
	}

	overrides, err := LoadFlagOverrides(path)
	if err != nil {
		t.Fatalf("LoadFlagOverrides: %v", err)
	}
	want := FlagOverrides{
		"mega":  {"--vfs-cache-max-size": "200M", "--fast-list": ""},
		"drive": {"--drive-chunk-size": "64M"},
	}
	if !reflect.DeepEqual(overrides, want) {
		t.Errorf("overrides = %v, want %v", overrides, want)
	}

	// Replacing an existing flag keeps a single entry.
	if err := SetFlagOverride(path, "mega", "--vfs-cache-max-size", "500M"); err != nil {
		t.Fatalf("SetFlagOverride replace: %v", err)
	}
	overrides, err = LoadFlagOverrides(path)
	if err != nil {
		t.Fatalf("LoadFlagOverrides after replace: %v", err)
	}
	if got := overrides["mega"]["--vfs-cache-max-size"]; got != "500M" {
		t.Errorf("replaced value = %q, want 500M", got)
	}

	if err := UnsetFlagOverride(path, "mega", "--fast-list"); err != nil {
		t.Fatalf("UnsetFlagOverride: %v", err)
	}
	overrides, err = LoadFlagOverrides(path)
	if err != nil {
		t.Fatalf("LoadFlagOverrides after unset: %v", err)
	}
	if _, ok := overrides["mega"]["--fast-list"]; ok {
		t.Error("--fast-list still present after unset")
	}
}

// TestUnsetFlagOverrideMissingFile verifies unsetting against no file is a
// no-op.
func TestUnsetFlagOverrideMissingFile(t *testing.T) {
	if err := UnsetFlagOverride(filepath.Join(t.TempDir(), "flags.json"), "mega", "--x"); err != nil {
		t.Fatalf("UnsetFlagOverride: %v", err)
	}
}

// TestFlagOverridesInvalidJSON verifies corrupt flags.json is rejected.
func TestFlagOverridesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFlagOverrides(path); err == nil {
		t.Fatal("LoadFlagOverrides accepted invalid JSON")
	}
}

// TestFlagOverridesArgs verifies argv flattening: sorted order, bare flags
// without values.
func TestFlagOverridesArgs(t *testing.T) {
	overrides := FlagOverrides{
		"mega": {
			"--vfs-cache-max-size": "200M",
			"--fast-list":          "",
			"--checkers":           "16",
		},
	}

	want := []string{"--checkers", "16", "--fast-list", "--vfs-cache-max-size", "200M"}
	if got := overrides.Args("mega"); !reflect.DeepEqual(got, want) {
		t.Errorf("Args(mega) = %v, want %v", got, want)
	}
	if got := overrides.Args("drive"); got != nil {
		t.Errorf("Args(drive) = %v, want nil", got)
	}
}

// TestEscapeKey verifies path-separator escaping so flag names containing
// dots survive the JSON path round trip.
func TestEscapeKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flags.json")

	if err := SetFlagOverride(path, "s3", "--s3.upload-cutoff", "5G"); err != nil {
		t.Fatalf("SetFlagOverride: %v", err)
	}
	overrides, err := LoadFlagOverrides(path)
	if err != nil {
		t.Fatalf("LoadFlagOverrides: %v", err)
	}
	if got := overrides["s3"]["--s3.upload-cutoff"]; got != "5G" {
		t.Errorf("dotted flag = %q, want 5G (overrides: %v)", got, overrides)
	}
}
