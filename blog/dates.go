package blog

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Abbreviated month names per supported locale. The first entry is the
// fallback for locales the matcher cannot place.
var (
	supportedLocales = []language.Tag{
		language.English,
		language.BrazilianPortuguese,
		language.Spanish,
	}
	monthAbbrev = [][12]string{
		{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
		{"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
		{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"},
	}
	localeMatcher = language.NewMatcher(supportedLocales)
)

// DateFormatter renders publication dates as lowercase "day month year"
// (e.g. "15 mar 2021") in a fixed locale and time zone.
type DateFormatter struct {
	tag    language.Tag
	months [12]string
	loc    *time.Location
}

// NewDateFormatter builds a formatter for a BCP 47 locale such as "pt-BR".
// A nil loc means UTC.
func NewDateFormatter(locale string, loc *time.Location) (*DateFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	if loc == nil {
		loc = time.UTC
	}
	_, idx, conf := localeMatcher.Match(tag)
	if conf == language.No {
		idx = 0
	}
	return &DateFormatter{tag: tag, months: monthAbbrev[idx], loc: loc}, nil
}

// Locale returns the configured language tag.
func (f *DateFormatter) Locale() language.Tag { return f.tag }

// Format renders t. The zero time renders as "".
func (f *DateFormatter) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	t = t.In(f.loc)
	s := fmt.Sprintf("%d %s %d", t.Day(), f.months[t.Month()-1], t.Year())
	// Casers keep state and must not be shared across goroutines.
	return cases.Lower(f.tag).String(s)
}
