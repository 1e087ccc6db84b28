package prismic

import (
	"strings"
	"time"
)

// Predicate is a single query clause in the repository's predicate syntax,
// e.g. [at(document.type, "publication")].
type Predicate string

// At matches documents whose path equals value.
func At(path, value string) Predicate {
	return Predicate("[at(" + path + ", " + quote(value) + ")]")
}

// DateAfter matches documents whose date at path is strictly after t.
func DateAfter(path string, t time.Time) Predicate {
	return Predicate("[date.after(" + path + ", " + quote(t.UTC().Format(time.RFC3339)) + ")]")
}

// DateBefore matches documents whose date at path is strictly before t.
func DateBefore(path string, t time.Time) Predicate {
	return Predicate("[date.before(" + path + ", " + quote(t.UTC().Format(time.RFC3339)) + ")]")
}

// Ordering sorts search results by a field.
type Ordering struct {
	Field string
	Desc  bool
}

func (o Ordering) String() string {
	if o.Desc {
		return o.Field + " desc"
	}
	return o.Field
}

// Field paths used by the blog queries.
const (
	FieldType                 = "document.type"
	FieldID                   = "document.id"
	FieldFirstPublicationDate = "document.first_publication_date"
)

// UIDField returns the uid path for a custom type, e.g. my.publication.uid.
func UIDField(docType string) string {
	return "my." + docType + ".uid"
}

func joinPredicates(preds []Predicate) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, p := range preds {
		b.WriteString(string(p))
	}
	b.WriteByte(']')
	return b.String()
}

func joinOrderings(orderings []Ordering) string {
	parts := make([]string, len(orderings))
	for i, o := range orderings {
		parts[i] = o.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
