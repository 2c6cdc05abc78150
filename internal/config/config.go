// Package config loads the single YAML configuration document described in
// spec.md §6: the regex bank, the museum-code list, debug/troubleshoot
// flags, and the collection-code-to-department table. There are two entry
// points, Load and Default, and the resulting value is threaded explicitly through
// the program rather than held in a package-level global (spec.md §9).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/adamancer/speciminer/internal/regexbank"
)

//go:embed ../../configs/regex.yml
var defaultYAML []byte

// Departments maps two-letter collection codes to their human-readable
// department names, per spec.md §6.
type Departments map[string]string

// Name returns the department name for a code, stripping a trailing "*"
// (the marker for an inferred, as opposed to confirmed, department).
func (d Departments) Name(code string) (string, bool) {
	code = trimStar(code)
	name, ok := d[code]
	return name, ok
}

func trimStar(s string) string {
	if len(s) > 0 && s[len(s)-1] == '*' {
		return s[:len(s)-1]
	}
	return s
}

// Config is the fully parsed application configuration.
type Config struct {
	RegexBank   regexbank.Config
	Departments Departments
}

// Load reads and parses the YAML configuration at path, then compiles the
// regex bank. A missing file, malformed YAML, or an empty museum-code list
// are all configuration failures and therefore fatal at startup (spec.md
// §7).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return parse(data)
}

// Default returns the configuration bundled with the binary, used when no
// --config flag is supplied.
func Default() (*Config, error) {
	return parse(defaultYAML)
}

func parse(data []byte) (*Config, error) {
	var raw regexbank.Config
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parsing YAML: %w", err)
	}
	var depts struct {
		Departments Departments `yaml:"departments"`
	}
	if err := yaml.Unmarshal(data, &depts); err != nil {
		return nil, fmt.Errorf("config: parsing departments: %w", err)
	}
	bank, err := regexbank.NewBank(raw)
	if err != nil {
		return nil, err
	}
	_ = bank // validated eagerly; Bank is rebuilt by callers that need it
	return &Config{RegexBank: raw, Departments: depts.Departments}, nil
}

// Bank compiles the regex bank held by this configuration into a new Bank
// on each call. Load and Default already compile it once, to validate it,
// so loading a configuration pays for that compilation even when only the
// departments are used.
func (c *Config) Bank() (*regexbank.Bank, error) {
	return regexbank.NewBank(c.RegexBank)
}
