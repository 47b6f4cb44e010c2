// Copyright (c) 2026 Keysafe Team
// Keysafe - local secrets vault
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks that every message ID passed to i18n.T exists in the
// primary locale, that the other locales carry the same IDs, and lists IDs
// no code refers to.
//
// Usage (from the repository root):
//
//	go run ./tools/i18n-linter
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Location stores the file and line number of a found key.
type Location struct {
	Filepath string
	Line     int
}

const (
	localesDir    = "internal/i18n/locales"
	primaryLocale = "en.yaml"
	projectRoot   = "."
)

var (
	// i18n.T("some.key")
	reCall = regexp.MustCompile(`i18n\.T\("([^"]+)"`)
	// i18n.T("strength." + band): every key under the prefix counts as used.
	rePrefix = regexp.MustCompile(`i18n\.T\("([a-z_.]+\.)"\s*\+`)
)

// usage is what the scan of the Go sources found.
type usage struct {
	keys     map[string][]Location
	prefixes map[string]struct{}
}

// report is the outcome of one lint run.
type report struct {
	Undefined []string            // used in code, missing from the primary locale
	Orphaned  []string            // in the primary locale, never used
	Missing   map[string][]string // per secondary locale file
}

func (r report) failed() bool {
	if len(r.Undefined) > 0 {
		return true
	}
	for _, keys := range r.Missing {
		if len(keys) > 0 {
			return true
		}
	}
	return false
}

func main() {
	fmt.Println("🔍 Running i18n linter...")
	r, err := lint(projectRoot, localesDir)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	section := func(title string, keys []string) {
		fmt.Printf("--- %s ---\n", title)
		if len(keys) == 0 {
			fmt.Println("  ✨ None found.")
		}
		for _, k := range keys {
			fmt.Printf("  - %s\n", k)
		}
		fmt.Println()
	}
	section("Undefined keys (used in code, not in "+primaryLocale+")", r.Undefined)
	section("Orphaned keys (in "+primaryLocale+", not used in code)", r.Orphaned)

	files := make([]string, 0, len(r.Missing))
	for f := range r.Missing {
		files = append(files, f)
	}
	sort.Strings(files)
	for _, f := range files {
		section("Missing keys in "+f, r.Missing[f])
	}

	switch {
	case r.failed():
		fmt.Println("❌ Found issues that need to be addressed.")
		os.Exit(1)
	case len(r.Orphaned) > 0:
		fmt.Println("⚠️  Found orphaned keys. Please consider removing them.")
	default:
		fmt.Println("✅ All translation files are consistent!")
	}
}

// lint compares the keys used under root with the locale files in locales.
func lint(root, locales string) (report, error) {
	used, err := findUsedKeys(root)
	if err != nil {
		return report{}, fmt.Errorf("error finding used keys: %w", err)
	}
	primary, err := loadKeysFromLocale(filepath.Join(locales, primaryLocale))
	if err != nil {
		return report{}, fmt.Errorf("error loading primary locale %q: %w", primaryLocale, err)
	}

	r := report{Missing: map[string][]string{}}
	for key := range used.keys {
		if _, ok := primary[key]; !ok {
			r.Undefined = append(r.Undefined, key)
		}
	}
	for key := range primary {
		if _, ok := used.keys[key]; ok || used.coversPrefix(key) || key == "language.name" {
			continue
		}
		r.Orphaned = append(r.Orphaned, key)
	}
	sort.Strings(r.Undefined)
	sort.Strings(r.Orphaned)

	files, err := filepath.Glob(filepath.Join(locales, "*.yaml"))
	if err != nil {
		return report{}, err
	}
	for _, file := range files {
		if filepath.Base(file) == primaryLocale {
			continue
		}
		secondary, err := loadKeysFromLocale(file)
		if err != nil {
			return report{}, fmt.Errorf("error loading %s: %w", file, err)
		}
		var missing []string
		for key := range primary {
			if _, ok := secondary[key]; !ok {
				missing = append(missing, key)
			}
		}
		sort.Strings(missing)
		r.Missing[filepath.Base(file)] = missing
	}
	return r, nil
}

func (u usage) coversPrefix(key string) bool {
	for p := range u.prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// findUsedKeys scans the non-test .go files under root for i18n.T calls.
func findUsedKeys(root string) (usage, error) {
	u := usage{keys: map[string][]Location{}, prefixes: map[string]struct{}{}}
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			name := info.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for i, line := range strings.Split(string(content), "\n") {
			for _, m := range rePrefix.FindAllStringSubmatch(line, -1) {
				u.prefixes[m[1]] = struct{}{}
			}
			for _, m := range reCall.FindAllStringSubmatch(line, -1) {
				if strings.HasSuffix(m[1], ".") {
					continue
				}
				u.keys[m[1]] = append(u.keys[m[1]], Location{Filepath: path, Line: i + 1})
			}
		}
		return nil
	})
	return u, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}

	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML converts a nested map into dot-separated keys. Flat dotted
// keys pass through unchanged.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			newPrefix := k
			if prefix != "" {
				newPrefix = prefix + "." + k
			}
			flattenYAML(newPrefix, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
