package blog

import (
	"testing"
	"time"
)

func TestDateFormatter(t *testing.T) {
	saoPaulo := time.FixedZone("BRT", -3*60*60)
	tests := []struct {
		name     string
		locale   string
		loc      *time.Location
		input    string
		expected string
	}{
		{"pt-BR", "pt-BR", nil, "2021-03-15T12:00:00Z", "15 mar 2021"},
		{"en", "en", nil, "2021-03-15T12:00:00Z", "15 mar 2021"},
		{"pt-BR february", "pt-BR", nil, "2021-02-03T08:00:00Z", "3 fev 2021"},
		{"pt-BR december", "pt-BR", nil, "2020-12-25T08:00:00Z", "25 dez 2020"},
		{"es", "es", nil, "2021-01-05T08:00:00Z", "5 ene 2021"},
		{"unmatched locale falls back", "de", nil, "2021-10-01T08:00:00Z", "1 oct 2021"},
		{"time zone shifts the day", "pt-BR", saoPaulo, "2021-03-15T01:00:00Z", "14 mar 2021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewDateFormatter(tt.locale, tt.loc)
			if err != nil {
				t.Fatalf("NewDateFormatter(%q) failed: %v", tt.locale, err)
			}
			ts, err := time.Parse(time.RFC3339, tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if got := f.Format(ts); got != tt.expected {
				t.Errorf("Format(%s) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestDateFormatterZeroTime(t *testing.T) {
	f, err := NewDateFormatter("pt-BR", nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.Format(time.Time{}); got != "" {
		t.Errorf("expected empty string for zero time, got %q", got)
	}
	if f.Locale().String() != "pt-BR" {
		t.Errorf("Locale() = %s", f.Locale())
	}
}

func TestDateFormatterRejectsBadLocale(t *testing.T) {
	if _, err := NewDateFormatter("not a locale!", nil); err == nil {
		t.Fatal("expected error for malformed locale")
	}
}
