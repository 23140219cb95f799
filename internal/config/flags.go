package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// FlagOverrides maps a remote type (e.g. "mega", "drive") to extra serve
// flags, flag name to value. A flag with an empty value is passed bare.
//
// The store is a small JSON document so the `rcmdr flags` subcommands can
// edit single keys in place without round-tripping the whole file through
// a schema.
type FlagOverrides map[string]map[string]string

// LoadFlagOverrides reads flags.json. A missing file yields an empty map.
func LoadFlagOverrides(path string) (FlagOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FlagOverrides{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}

	overrides := FlagOverrides{}
	gjson.ParseBytes(data).ForEach(func(remoteType, flags gjson.Result) bool {
		m := map[string]string{}
		flags.ForEach(func(flag, value gjson.Result) bool {
			m[flag.String()] = value.String()
			return true
		})
		overrides[remoteType.String()] = m
		return true
	})
	return overrides, nil
}

// SetFlagOverride adds or replaces one flag for a remote type, editing the
// JSON document in place.
func SetFlagOverride(path, remoteType, flag, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		data = []byte("{}")
	}

	updated, err := sjson.SetBytes(data, flagPath(remoteType, flag), value)
	if err != nil {
		return fmt.Errorf("failed to update flag: %w", err)
	}
	return writeFlags(path, updated)
}

// UnsetFlagOverride removes one flag from a remote type.
func UnsetFlagOverride(path, remoteType, flag string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	updated, err := sjson.DeleteBytes(data, flagPath(remoteType, flag))
	if err != nil {
		return fmt.Errorf("failed to remove flag: %w", err)
	}
	return writeFlags(path, updated)
}

// Args flattens the overrides for one remote type into argv form, flags in
// sorted order so constructed commands are deterministic.
func (o FlagOverrides) Args(remoteType string) []string {
	flags := o[remoteType]
	if len(flags) == 0 {
		return nil
	}

	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	var args []string
	for _, name := range names {
		args = append(args, name)
		if v := flags[name]; v != "" {
			args = append(args, v)
		}
	}
	return args
}

// flagPath builds the sjson path for one flag, escaping the separators
// that are special in gjson/sjson path syntax.
func flagPath(remoteType, flag string) string {
	return escapeKey(remoteType) + "." + escapeKey(flag)
}

func escapeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		if key[i] == '.' || key[i] == '*' || key[i] == '?' || key[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, key[i])
	}
	return string(out)
}

func writeFlags(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
