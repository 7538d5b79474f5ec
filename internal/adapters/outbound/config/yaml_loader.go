package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Mike-Gough/raml-enforcer/internal/domain"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = ".raml-enforcer.yaml"

// fileConfig mirrors the YAML keys. Pointers tell an absent key from false.
type fileConfig struct {
	ReportIncludes     *bool `yaml:"report_includes"`
	ReportWarnings     *bool `yaml:"report_warnings"`
	ReportErrors       *bool `yaml:"report_errors"`
	ThrowOnWarnings    *bool `yaml:"throw_on_warnings"`
	ThrowOnErrors      *bool `yaml:"throw_on_errors"`
	WarnOldRAMLVersion *bool `yaml:"warn_old_raml_version"`
	Color              *bool `yaml:"color"`
	NoBodyStatusCodes  []int `yaml:"no_body_status_codes"`
}

// YAMLLoader implements domain.ConfigLoader by reading .raml-enforcer.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads the config file at path and overlays it on the defaults.
// A missing file yields the defaults.
func (l *YAMLLoader) Load(path string) (domain.Options, error) {
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultOptions(), nil
		}
		return domain.Options{}, err
	}

	var cfg fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.Options{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	opts := cfg.apply(domain.DefaultOptions())
	if err := opts.Validate(); err != nil {
		return domain.Options{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return opts, nil
}

func (c fileConfig) apply(opts domain.Options) domain.Options {
	set := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	set(&opts.ReportIncludes, c.ReportIncludes)
	set(&opts.ReportWarnings, c.ReportWarnings)
	set(&opts.ReportErrors, c.ReportErrors)
	set(&opts.ThrowOnWarnings, c.ThrowOnWarnings)
	set(&opts.ThrowOnErrors, c.ThrowOnErrors)
	set(&opts.WarnOldRAMLVersion, c.WarnOldRAMLVersion)
	set(&opts.Color, c.Color)

	// An explicit list replaces the default set entirely.
	if c.NoBodyStatusCodes != nil {
		opts.NoBodyStatuses = append([]int(nil), c.NoBodyStatusCodes...)
	}
	return opts
}
