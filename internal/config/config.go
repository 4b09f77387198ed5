// Package config loads persistent defaults for command-line flags from a YAML file.
//
// Keys match flag names with hyphens or underscores; flags of one family may also be
// nested under a section, so `s3-bucket` can be written as:
//
//	s3:
//	  bucket: journal-attachments
//
// A flag given on the command line or through its environment variable always wins
// over the file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML returns a kong resolver backed by the YAML document in r. It has the
// signature kong.Configuration expects.
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		if envSet(flag) {
			return nil, nil
		}
		raw, ok := lookup(values, flag.Name)
		if !ok {
			return nil, nil
		}
		return scalar(flag.Name, raw)
	}
	return f, nil
}

func envSet(flag *kong.Flag) bool {
	if flag.Tag == nil {
		return false
	}
	for _, env := range flag.Tag.Envs {
		if _, ok := os.LookupEnv(env); ok {
			return true
		}
	}
	return false
}

// lookup finds name as a top-level key (hyphen or underscore form) or as
// section.rest where the section is the part before the first hyphen.
func lookup(values map[string]any, name string) (any, bool) {
	for _, key := range []string{name, strings.ReplaceAll(name, "-", "_")} {
		if v, ok := values[key]; ok {
			return v, true
		}
	}

	section, rest, found := strings.Cut(name, "-")
	if !found {
		return nil, false
	}
	nested, ok := values[section].(map[string]any)
	if !ok {
		return nil, false
	}
	return lookup(nested, rest)
}

// scalar renders a YAML value as the string form kong's mappers parse.
func scalar(name string, raw any) (any, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case string:
		return v, nil
	case bool, int, int64, float64:
		return fmt.Sprint(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ","), nil
	default:
		return nil, fmt.Errorf("config key %q: unsupported value %v", name, raw)
	}
}
