package main

import (
	"fmt"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
	"os"
	"sort"
	"strings"
)

// applyParams loads the YAML file given with --params and uses its values for
// every flag of the current command that was not set on the command line.
// Keys use underscores in place of the dashes of the flag names, e.g.
//
//	weighting_coefficient: 1.5
//	keep_sources: false
func applyParams(c *cli.Context) error {
	path := c.GlobalString("params")
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read params file: %w", err)
	}
	var values map[string]interface{}
	if err = yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("parse params file %s: %w", path, err)
	}

	known := make(map[string]bool)
	for _, name := range paramNames() {
		known[name] = true
	}
	defined := make(map[string]bool)
	for _, name := range c.FlagNames() {
		defined[name] = true
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := strings.ReplaceAll(key, "_", "-")
		if !known[name] {
			return fmt.Errorf("params file %s: unknown parameter %q", path, key)
		}
		if !defined[name] || c.IsSet(name) {
			continue
		}
		if err = c.Set(name, fmt.Sprint(values[key])); err != nil {
			return fmt.Errorf("params file %s: parameter %q: %w", path, key, err)
		}
	}
	return nil
}

// paramNames returns the names of every flag that may appear in a params
// file.
func paramNames() []string {
	var names []string
	for _, flags := range [][]cli.Flag{definitionFlags(), engineFlags(), hierarchyFlags(), batchFlags()} {
		for _, f := range flags {
			names = append(names, f.GetName())
		}
	}
	return names
}
