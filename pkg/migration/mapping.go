// Package migration moves legacy accounting data into the standardized
// ledger: it assesses legacy data quality, normalizes account and department
// codes via a YAML mapping, and emits raw transaction lines for validation.
// Migrated records never bypass the validator.
package migration

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CodeMapping maps one legacy code to its standardized replacement.
type CodeMapping struct {
	Legacy   string `yaml:"legacy"`
	Standard string `yaml:"standard"`
}

// Mapping is the migration configuration: legacy account codes to chart
// account IDs, legacy department variants to department codes, and the
// clearing account that receives the offsetting side of each migrated
// single-sided legacy amount.
type Mapping struct {
	Accounts          []CodeMapping `yaml:"accounts"`
	Departments       []CodeMapping `yaml:"departments"`
	DefaultDepartment string        `yaml:"default_department"`
	ClearingAccount   string        `yaml:"clearing_account"`

	accountMap map[string]string
	deptMap    map[string]string
}

// LoadMapping reads and parses a mapping YAML file.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping parses mapping YAML.
func ParseMapping(data []byte) (*Mapping, error) {
	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse mapping YAML: %w", err)
	}
	if m.ClearingAccount == "" {
		return nil, fmt.Errorf("mapping must name a clearing_account")
	}

	m.accountMap = make(map[string]string, len(m.Accounts))
	for _, cm := range m.Accounts {
		m.accountMap[cm.Legacy] = cm.Standard
	}
	m.deptMap = make(map[string]string, len(m.Departments))
	for _, cm := range m.Departments {
		m.deptMap[cm.Legacy] = cm.Standard
	}

	return &m, nil
}

// AccountID returns the standardized account ID for a legacy account code.
func (m *Mapping) AccountID(legacy string) (string, bool) {
	id, ok := m.accountMap[legacy]
	return id, ok
}

// Department returns the standardized department code for a legacy variant,
// falling back to the default department.
func (m *Mapping) Department(legacy string) string {
	if code, ok := m.deptMap[legacy]; ok && code != "" {
		return code
	}
	return m.DefaultDepartment
}
