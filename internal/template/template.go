// Package template implements bank-specific PDF extraction: a declarative
// catalog of known statement layouts, matched against page-1 text, each
// selecting an extraction strategy for that bank's quirks.
package template

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Method selects how a matched template extracts transactions.
type Method string

const (
	MethodTextRegex Method = "text_regex"
	MethodHybrid    Method = "hybrid"
	MethodTable     Method = "table"
)

// BankTemplate describes one bank's statement layout.
type BankTemplate struct {
	BankName        string            `yaml:"bank_name"`
	Identifiers     []string          `yaml:"identifiers"`
	Method          Method            `yaml:"extraction_method"`
	Pattern         string            `yaml:"regex_pattern,omitempty"`
	DateFormat      string            `yaml:"date_format,omitempty"`
	SkipRows        []string          `yaml:"skip_rows,omitempty"`
	PageHint        int               `yaml:"page_hint,omitempty"` // 1-indexed; 0 = all pages
	AmountIndicator string            `yaml:"amount_indicator,omitempty"`
	ColumnMappings  map[string]string `yaml:"column_mappings,omitempty"`

	re *regexp.Regexp
}

// Matches reports whether any of the template's identifier strings appear
// in the page-1 text (case-insensitive substring search).
func (t *BankTemplate) Matches(firstPageText string) bool {
	lower := strings.ToLower(firstPageText)
	for _, id := range t.Identifiers {
		if strings.Contains(lower, strings.ToLower(id)) {
			return true
		}
	}
	return false
}

// shouldSkip reports whether a description or line carries one of the
// template's skip-row markers (summary rows, carried-forward balances).
func (t *BankTemplate) shouldSkip(text string) bool {
	lower := strings.ToLower(text)
	for _, marker := range t.SkipRows {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

// catalogFile is the YAML document shape of a template catalog.
type catalogFile struct {
	Templates []*BankTemplate `yaml:"templates"`
}

// defaultAcceptThreshold is the minimum transaction count a cascade
// strategy must exceed to be accepted. Carried over from observed bank
// statement behavior; override via CatalogOption when tuning.
const defaultAcceptThreshold = 5

// Catalog is an explicitly constructed, read-only collection of bank
// templates. It is built once at startup and injected into the parsing
// entry point; there is no process-wide singleton.
type Catalog struct {
	templates []*BankTemplate
	threshold int
}

// CatalogOption customizes catalog construction.
type CatalogOption func(*Catalog)

// WithAcceptThreshold overrides the cascade acceptance threshold.
func WithAcceptThreshold(n int) CatalogOption {
	return func(c *Catalog) { c.threshold = n }
}

// NewCatalog builds a catalog from already-validated templates.
func NewCatalog(templates []*BankTemplate, opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{threshold: defaultAcceptThreshold}
	for _, t := range templates {
		if err := prepare(t); err != nil {
			return nil, err
		}
		c.templates = append(c.templates, t)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LoadCatalog parses a YAML catalog document.
func LoadCatalog(data []byte, opts ...CatalogOption) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse template catalog: %w", err)
	}
	return NewCatalog(file.Templates, opts...)
}

// LoadCatalogFile reads and parses a YAML catalog from disk.
func LoadCatalogFile(path string, opts ...CatalogOption) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template catalog %s: %w", path, err)
	}
	return LoadCatalog(data, opts...)
}

// prepare validates a template and compiles its regex pattern.
func prepare(t *BankTemplate) error {
	if t.BankName == "" {
		return fmt.Errorf("template missing bank_name")
	}
	if len(t.Identifiers) == 0 {
		return fmt.Errorf("template %s has no identifiers", t.BankName)
	}
	switch t.Method {
	case MethodTextRegex, MethodHybrid, MethodTable:
	default:
		return fmt.Errorf("template %s has unknown extraction method %q", t.BankName, t.Method)
	}
	if t.DateFormat == "" {
		t.DateFormat = "DD/MM/YY"
	}
	if t.Pattern != "" {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return fmt.Errorf("template %s has invalid regex: %w", t.BankName, err)
		}
		t.re = re
	}
	if t.Method == MethodTextRegex && t.re == nil {
		return fmt.Errorf("template %s uses text_regex but has no regex_pattern", t.BankName)
	}
	return nil
}

// Match returns the first template whose identifiers appear in the page-1
// text, or nil when no bank-specific layout is known.
func (c *Catalog) Match(firstPageText string) *BankTemplate {
	for _, t := range c.templates {
		if t.Matches(firstPageText) {
			return t
		}
	}
	return nil
}

// ByName looks a template up by its bank name.
func (c *Catalog) ByName(name string) *BankTemplate {
	for _, t := range c.templates {
		if strings.EqualFold(t.BankName, name) {
			return t
		}
	}
	return nil
}

// AcceptThreshold returns the configured cascade acceptance threshold.
func (c *Catalog) AcceptThreshold() int {
	return c.threshold
}

// Len returns the number of loaded templates.
func (c *Catalog) Len() int {
	return len(c.templates)
}
