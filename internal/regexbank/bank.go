// ===========================================================================
//
//                            PUBLIC DOMAIN NOTICE
//           National Museum of Natural History (Smithsonian Institution)
//
//  This software is a "United States Government Work" under the terms of
//  the United States Copyright Act. It was written as part of the authors'
//  official duties as United States Government employees and thus cannot
//  be copyrighted. This software is freely available to the public for
//  use. The Smithsonian Institution and the U.S. Government do not place
//  any restriction on its use or reproduction. We would, however,
//  appreciate having the Smithsonian and the authors cited in any work or
//  product based on this material.
//
//  Although all reasonable efforts have been taken to ensure the accuracy
//  and reliability of the software and data, the Smithsonian and the U.S.
//  Government do not and cannot warrant the performance or results that
//  may be obtained by using this software or data.
//
// ===========================================================================
//
// File Name:  bank.go
//
// Authors:  MinSci Informatics Group, NMNH
//
// ==========================================================================

// Package regexbank loads the named regular expressions that drive catalog
// number mining from a declarative configuration, as required by the
// maintainers who own the pattern set and are not Go programmers.
package regexbank

import (
	"fmt"
	"regexp"
	"strings"
)

// Config is the raw, uncompiled regex bank as it appears in the YAML
// configuration. Every field is a named pattern; fields may reference other
// fields by wrapping the field name in braces (e.g. "{prefix}?{number}"),
// mirroring the Python source's `self.regex['catnum'].format(**self.regex)`
// idiom. Expansion happens once, in NewBank.
type Config struct {
	Code         string `yaml:"code"`
	Prefix       string `yaml:"prefix"`
	Number       string `yaml:"number"`
	Suffix       string `yaml:"suffix"`
	Suffix2      string `yaml:"suffix2"`
	Catnum       string `yaml:"catnum"`
	Filler       string `yaml:"filler"`
	JoinRange    string `yaml:"join_range"`
	JoinDiscrete string `yaml:"join_discrete"`
	DiscreteMask string `yaml:"discrete_mask"`
	RangeMask    string `yaml:"range_mask"`
	Mask         string `yaml:"mask"`
	Simple       string `yaml:"simple"`
	Debug        bool   `yaml:"debug"`
	Troubleshoot string `yaml:"troubleshoot"`
}

// Bank is the compiled form of Config: one *regexp.Regexp per named
// pattern, plus the flattened list of museum codes the mask alternates
// over. Bank is immutable once built and safe for concurrent use, unlike
// the module-level singleton parser object in the source (spec.md §9).
type Bank struct {
	Code         *regexp.Regexp
	Prefix       *regexp.Regexp
	Number       *regexp.Regexp
	Suffix       *regexp.Regexp
	Suffix2      *regexp.Regexp
	Catnum       *regexp.Regexp
	CatnumAnchor *regexp.Regexp
	Filler       *regexp.Regexp
	JoinRange    *regexp.Regexp
	JoinDiscrete *regexp.Regexp
	DiscreteMask *regexp.Regexp
	RangeMask    *regexp.Regexp
	Mask         *regexp.Regexp
	Simple       *regexp.Regexp

	Codes        []string
	Debug        bool
	Troubleshoot string
}

var placeholder = regexp.MustCompile(`\{([a-z_0-9]+)\}`)

// expand substitutes every "{name}" token in tmpl with vars[name], applied
// to a fixed point (a handful of passes) so that patterns may reference
// other patterns that themselves still contain placeholders, the same
// multi-level templating the Python source relies on via repeated
// .format(**self.regex) calls.
func expand(tmpl string, vars map[string]string) (string, error) {
	out := tmpl
	for i := 0; i < 8; i++ {
		if !strings.Contains(out, "{") {
			return out, nil
		}
		replaced := placeholder.ReplaceAllStringFunc(out, func(tok string) string {
			name := tok[1 : len(tok)-1]
			if v, ok := vars[name]; ok {
				return v
			}
			return tok
		})
		if replaced == out {
			break
		}
		out = replaced
	}
	if strings.Contains(out, "{") {
		return "", fmt.Errorf("regexbank: unresolved placeholder in %q", tmpl)
	}
	return out, nil
}

func compile(name, pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("regexbank: pattern %q: %w", name, err)
	}
	return re, nil
}

// NewBank expands template references and compiles every named pattern in
// cfg. Configuration failures here are fatal at startup per spec.md §7.
func NewBank(cfg Config) (*Bank, error) {
	if strings.TrimSpace(cfg.Code) == "" {
		return nil, fmt.Errorf("regexbank: no museum codes configured")
	}

	vars := map[string]string{
		"code":          cfg.Code,
		"prefix":        cfg.Prefix,
		"number":        cfg.Number,
		"suffix":        cfg.Suffix,
		"suffix2":       cfg.Suffix2,
		"filler":        cfg.Filler,
		"join_range":    cfg.JoinRange,
		"join_discrete": cfg.JoinDiscrete,
	}

	catnum, err := expand(cfg.Catnum, vars)
	if err != nil {
		return nil, err
	}
	vars["catnum"] = catnum

	discreteMask, err := expand(cfg.DiscreteMask, vars)
	if err != nil {
		return nil, err
	}
	rangeMask, err := expand(cfg.RangeMask, vars)
	if err != nil {
		return nil, err
	}
	mask, err := expand(cfg.Mask, vars)
	if err != nil {
		return nil, err
	}
	simple, err := expand(cfg.Simple, vars)
	if err != nil {
		return nil, err
	}

	b := &Bank{Codes: splitCodes(cfg.Code), Debug: cfg.Debug, Troubleshoot: cfg.Troubleshoot}

	fields := []struct {
		name    string
		pattern string
		dst     **regexp.Regexp
	}{
		{"code", cfg.Code, &b.Code},
		{"prefix", cfg.Prefix, &b.Prefix},
		{"number", cfg.Number, &b.Number},
		{"suffix", cfg.Suffix, &b.Suffix},
		{"suffix2", cfg.Suffix2, &b.Suffix2},
		{"catnum", catnum, &b.Catnum},
		{"catnum_anchor", "^" + catnum + "$", &b.CatnumAnchor},
		{"filler", cfg.Filler, &b.Filler},
		{"join_range", cfg.JoinRange, &b.JoinRange},
		{"join_discrete", cfg.JoinDiscrete, &b.JoinDiscrete},
		{"discrete_mask", discreteMask, &b.DiscreteMask},
		{"range_mask", rangeMask, &b.RangeMask},
		{"mask", mask, &b.Mask},
		{"simple", simple, &b.Simple},
	}
	for _, f := range fields {
		re, err := compile(f.name, f.pattern)
		if err != nil {
			return nil, err
		}
		*f.dst = re
	}
	return b, nil
}

// splitCodes flattens the "(USNM|NMNH|...)" alternation into a slice,
// trimming the enclosing group the way Python's Parser.__init__ does with
// `self.regex['code'].strip('()').split('|')`.
func splitCodes(codeAlternation string) []string {
	trimmed := strings.Trim(codeAlternation, "()")
	parts := strings.Split(trimmed, "|")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			codes = append(codes, p)
		}
	}
	return codes
}
