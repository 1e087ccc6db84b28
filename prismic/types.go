package prismic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Ref is a content release pointer. The master ref serves published content;
// preview refs serve drafts.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

// API is the subset of the repository root document the client relies on.
type API struct {
	Refs []Ref `json:"refs"`
}

// Document is one search result. Data is decoded lazily by the caller into
// its own schema via DecodeData.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// Response is one page of search results. NextPage is the opaque cursor URL
// for the following page; nil means end of list.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Next returns the continuation cursor, or "" at the end of the list.
func (r *Response) Next() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// DecodeData unmarshals the document data into v.
func (d Document) DecodeData(v any) error {
	if len(d.Data) == 0 || bytes.Equal(d.Data, []byte("null")) {
		return &DecodeError{DocumentID: d.ID, Field: "data", Err: ErrMissingField}
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return &DecodeError{DocumentID: d.ID, Field: "data", Err: err}
	}
	return nil
}

// PublishedAt parses first_publication_date. A null date yields nil.
func (d Document) PublishedAt() (*time.Time, error) {
	if d.FirstPublicationDate == nil || *d.FirstPublicationDate == "" {
		return nil, nil
	}
	t, err := ParseTime(*d.FirstPublicationDate)
	if err != nil {
		return nil, &DecodeError{DocumentID: d.ID, Field: "first_publication_date", Err: err}
	}
	return &t, nil
}

var timeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTime accepts the repository's timestamp format
// (2021-03-15T12:00:00+0000) as well as RFC 3339.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
