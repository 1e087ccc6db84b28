package prismic

import (
	"testing"
	"time"
)

func TestPredicates(t *testing.T) {
	when := time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		got  Predicate
		want string
	}{
		{At(FieldType, "publication"), `[at(document.type, "publication")]`},
		{At(UIDField("publication"), `say "hi"`), `[at(my.publication.uid, "say \"hi\"")]`},
		{DateAfter(FieldFirstPublicationDate, when), `[date.after(document.first_publication_date, "2021-03-15T12:00:00Z")]`},
		{DateBefore(FieldFirstPublicationDate, when.In(time.FixedZone("BRT", -3*3600))), `[date.before(document.first_publication_date, "2021-03-15T12:00:00Z")]`},
	}
	for _, tt := range tests {
		if string(tt.got) != tt.want {
			t.Errorf("predicate = %s, want %s", tt.got, tt.want)
		}
	}
}

func TestJoinPredicatesAndOrderings(t *testing.T) {
	q := joinPredicates([]Predicate{At(FieldType, "publication"), At(FieldID, "x")})
	want := `[[at(document.type, "publication")][at(document.id, "x")]]`
	if q != want {
		t.Errorf("joinPredicates = %s, want %s", q, want)
	}

	o := joinOrderings([]Ordering{
		{Field: FieldFirstPublicationDate, Desc: true},
		{Field: "my.publication.title"},
	})
	if o != "[document.first_publication_date desc,my.publication.title]" {
		t.Errorf("joinOrderings = %s", o)
	}
}

func TestParseTime(t *testing.T) {
	for _, in := range []string{"2021-03-15T12:00:00+0000", "2021-03-15T12:00:00Z", "2021-03-15T09:00:00-03:00"} {
		got, err := ParseTime(in)
		if err != nil {
			t.Fatalf("ParseTime(%q) failed: %v", in, err)
		}
		if !got.Equal(time.Date(2021, 3, 15, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("ParseTime(%q) = %v", in, got)
		}
	}
	if _, err := ParseTime("15/03/2021"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}
