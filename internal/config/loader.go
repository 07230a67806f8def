package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source is where a setting came from.
type Source struct {
	Kind   SourceKind
	Name   string // for defaults
	File   string
	Line   int
	Column int
}

type LoadResult struct {
	Config *Config
	// Sources maps dotted key paths (classes.mpv.open_at) to the position
	// in the file that set them.
	Sources map[string]Source
	Path    string
	// Found is false when Path did not exist and only defaults apply.
	Found bool
}

func DefaultConfigPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "fullframe", "config.yaml"), nil
}

// LoadWithSources loads the config at the standard location.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the config at path. A missing file
// yields the defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	raw, sources, found, err := readRaw(path)
	if err != nil {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, sources)
	}
	return &LoadResult{Config: cfg, Sources: sources, Path: path, Found: found}, nil
}

func readRaw(path string) (RawConfig, map[string]Source, bool, error) {
	sources := map[string]Source{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return RawConfig{}, sources, false, nil
	}
	if err != nil {
		return RawConfig{}, nil, false, fmt.Errorf("%s: failed to read: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, false, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}

	// Unknown keys are errors so typos do not silently fall back to defaults.
	var raw RawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return RawConfig{}, nil, false, fmt.Errorf("%s: %w", path, err)
	}

	recordSources(&doc, path, "", sources)
	return raw, sources, true, nil
}

func recordSources(node *yaml.Node, file, prefix string, out map[string]Source) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, child := range node.Content {
			recordSources(child, file, prefix, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i].Value, node.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			out[key] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
			recordSources(val, file, key, out)
		}
	}
}

// withSource points a validation error at the key that caused it, or at
// its nearest enclosing key when the value itself was left at default.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for path := verr.Path; path != ""; path = parentKey(path) {
		if src, ok := sources[path]; ok {
			verr.Source = src
			break
		}
	}
	return err
}

func parentKey(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return ""
}
