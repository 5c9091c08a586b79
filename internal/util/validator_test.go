package util

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount_Valid(t *testing.T) {
	cases := []string{"0.01", "1", "100.5", "9999999.99"}

	for _, in := range cases {
		if _, err := ParseAmount(in); err != nil {
			t.Errorf("ParseAmount(%q) error = %v, want nil", in, err)
		}
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	cases := []string{"", "abc", "0", "-1", "-0.01", "10000000", "1.234", "1.2.3"}

	for _, in := range cases {
		if _, err := ParseAmount(in); err == nil {
			t.Errorf("ParseAmount(%q) error = nil, want error", in)
		}
	}
}

func TestValidateNonNegativeAmount(t *testing.T) {
	if err := ValidateNonNegativeAmount(decimal.Zero); err != nil {
		t.Errorf("zero should be allowed, got %v", err)
	}
	if err := ValidateNonNegativeAmount(decimal.NewFromInt(-1)); err == nil {
		t.Error("negative amount should be rejected")
	}
}

func TestValidatePercentage(t *testing.T) {
	valid := []string{"0.01", "25", "100"}
	for _, in := range valid {
		if err := ValidatePercentage(decimal.RequireFromString(in)); err != nil {
			t.Errorf("ValidatePercentage(%s) error = %v, want nil", in, err)
		}
	}

	invalid := []string{"0", "-5", "100.01", "250"}
	for _, in := range invalid {
		if err := ValidatePercentage(decimal.RequireFromString(in)); err == nil {
			t.Errorf("ValidatePercentage(%s) error = nil, want error", in)
		}
	}
}

func TestParseDate_Valid(t *testing.T) {
	cases := []string{"2024-01-01", "2024-12-31", "2025-06-15"}

	for _, in := range cases {
		if _, err := ParseDate(in); err != nil {
			t.Errorf("ParseDate(%q) error = %v, want nil", in, err)
		}
	}
}

func TestParseDate_Invalid(t *testing.T) {
	cases := []string{"", "2024-13-01", "2024-1-1", "15/06/2025", "not-a-date"}

	for _, in := range cases {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) error = nil, want error", in)
		}
	}
}
