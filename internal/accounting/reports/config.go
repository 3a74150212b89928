package reports

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ledgerbook/ledgerbook/internal/accounting/ledger"
	"github.com/ledgerbook/ledgerbook/internal/accounting/pattern"
)

//go:embed config/statements.json
var defaultStatements []byte

// ErrInvalidConfig indicates a statement configuration that cannot be served.
var ErrInvalidConfig = errors.New("reports: invalid statement configuration")

// StatementDef is the static configuration of one statement.
type StatementDef struct {
	Type          ReportType           `json:"type" validate:"required,oneof=balance_sheet income_statement cash_flow"`
	AccountTypes  []ledger.AccountType `json:"accountTypes" validate:"required,min=1,dive,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE COST"`
	History       HistoryPolicy        `json:"history" validate:"required,oneof=all_history fiscal_year"`
	Measure       string               `json:"measure" validate:"required,oneof=beginning midterm ending"`
	ReferenceCode string               `json:"referenceCode,omitempty"`
	Totals        map[string]string    `json:"totals,omitempty"`
	General       []TemplateLine       `json:"general" validate:"required,min=1,dive"`
	Detail        []TemplateLine       `json:"detail,omitempty" validate:"omitempty,dive"`
	CashAccounts  *pattern.Pattern     `json:"cashAccounts,omitempty" validate:"-"`
	Sections      []SectionDef         `json:"sections,omitempty" validate:"omitempty,dive"`
}

type fileConfig struct {
	FiscalYearStartMonth int            `json:"fiscalYearStartMonth" validate:"required,min=1,max=12"`
	Statements           []StatementDef `json:"statements" validate:"required,min=1,dive"`
}

var requiredTotals = map[ReportType][]string{
	BalanceSheet:    {TotalAssets, TotalLiabilities, TotalEquity},
	IncomeStatement: {TotalRevenue, TotalExpense},
}

// Config is the immutable statement catalogue shared by every request.
type Config struct {
	fiscalStart time.Month
	variants    map[ReportType]Variant
}

// DefaultConfig loads the embedded statement configuration.
func DefaultConfig(logger *slog.Logger) (*Config, error) {
	return LoadConfig(logger, defaultStatements)
}

// LoadConfigFile loads statement configuration from disk.
func LoadConfigFile(logger *slog.Logger, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reports: read config %s: %w", path, err)
	}
	return LoadConfig(logger, data)
}

// LoadConfig decodes and validates statement configuration. Every report
// type must be configured, and every template line that names an account
// type must name one the statement reads.
func LoadConfig(logger *slog.Logger, data []byte) (*Config, error) {
	var raw fileConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validator.New().Struct(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg := &Config{
		fiscalStart: time.Month(raw.FiscalYearStartMonth),
		variants:    make(map[ReportType]Variant, len(raw.Statements)),
	}
	for _, def := range raw.Statements {
		if _, dup := cfg.variants[def.Type]; dup {
			return nil, fmt.Errorf("%w: %s configured twice", ErrInvalidConfig, def.Type)
		}
		if err := checkStatement(def); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, def.Type, err)
		}
		switch def.Type {
		case BalanceSheet:
			cfg.variants[def.Type] = balanceSheet{base: newBase(def, cfg.fiscalStart)}
		case IncomeStatement:
			cfg.variants[def.Type] = incomeStatement{base: newBase(def, cfg.fiscalStart)}
		case CashFlow:
			cf := newCashFlow(logger, def, cfg.fiscalStart)
			if len(cf.sections.Warnings) > 0 {
				return nil, fmt.Errorf("%w: %s: inconsistent sections: %v", ErrInvalidConfig, def.Type, cf.sections.Warnings)
			}
			cfg.variants[def.Type] = cf
		}
	}
	for _, t := range ReportTypes {
		if _, ok := cfg.variants[t]; !ok {
			return nil, fmt.Errorf("%w: %s not configured", ErrInvalidConfig, t)
		}
	}
	return cfg, nil
}

func checkStatement(def StatementDef) error {
	mapped := make(map[ledger.AccountType]bool, len(def.AccountTypes))
	for _, t := range def.AccountTypes {
		mapped[t] = true
	}
	for _, lines := range [][]TemplateLine{def.General, def.Detail} {
		for _, line := range lines {
			if line.AccountType != "" && !mapped[line.AccountType] {
				return fmt.Errorf("line %s uses account type %s which the statement does not read", line.Code, line.AccountType)
			}
		}
	}

	general := make(map[string]bool, len(def.General))
	for _, line := range def.General {
		general[line.Code] = true
	}
	if def.ReferenceCode != "" && !general[def.ReferenceCode] {
		return fmt.Errorf("reference code %s missing from general template", def.ReferenceCode)
	}
	for key, code := range def.Totals {
		if !general[code] {
			return fmt.Errorf("total %s points at %s which is missing from general template", key, code)
		}
	}
	for _, key := range requiredTotals[def.Type] {
		if _, ok := def.Totals[key]; !ok {
			return fmt.Errorf("total %s is required", key)
		}
	}

	if def.Type != CashFlow {
		if len(def.Sections) > 0 || def.CashAccounts != nil {
			return errors.New("sections and cash accounts apply to cash_flow only")
		}
		return nil
	}
	if def.CashAccounts == nil {
		return errors.New("cash accounts pattern is required")
	}
	if len(def.Sections) == 0 {
		return errors.New("at least one section is required")
	}
	codes := make(map[string]bool, len(def.Sections))
	for _, s := range def.Sections {
		if codes[s.Code] {
			return fmt.Errorf("section %s defined twice", s.Code)
		}
		codes[s.Code] = true
	}
	for _, s := range def.Sections {
		if s.Parent != "" && !codes[s.Parent] {
			return fmt.Errorf("section %s has unknown parent %s", s.Code, s.Parent)
		}
	}
	return nil
}

// Variant returns the configured statement for t.
func (c *Config) Variant(t ReportType) (Variant, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, t)
	}
	v, ok := c.variants[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReportType, t)
	}
	return v, nil
}

// FiscalYearStartMonth returns the configured first month of the fiscal year.
func (c *Config) FiscalYearStartMonth() time.Month { return c.fiscalStart }
