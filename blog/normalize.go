package blog

import (
	"strconv"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// publicationData is the CMS schema of a publication. Pointers distinguish
// absent or null fields from empty ones.
type publicationData struct {
	Title    *string `json:"title"`
	Subtitle *string `json:"subtitle"`
	Author   *string `json:"author"`
	Banner   *struct {
		URL *string `json:"url"`
		Alt *string `json:"alt"`
	} `json:"banner"`
	Content []struct {
		Heading *string          `json:"heading"`
		Body    []richtext.Block `json:"body"`
	} `json:"content"`
}

// Normalizer validates publication documents and converts them to posts.
type Normalizer struct {
	dates *DateFormatter
}

// NewNormalizer returns a Normalizer formatting dates with f.
func NewNormalizer(f *DateFormatter) *Normalizer {
	return &Normalizer{dates: f}
}

// Summary converts a listing document: uid, date, title, subtitle, author.
func (n *Normalizer) Summary(doc prismic.Document) (Post, error) {
	p, _, err := n.summary(doc)
	return p, err
}

func (n *Normalizer) summary(doc prismic.Document) (Post, publicationData, error) {
	var data publicationData
	if doc.UID == "" {
		return Post{}, data, missing(doc, "uid")
	}
	if err := doc.DecodeData(&data); err != nil {
		return Post{}, data, err
	}
	publishedAt, err := doc.PublishedAt()
	if err != nil {
		return Post{}, data, err
	}
	switch {
	case data.Title == nil:
		return Post{}, data, missing(doc, "title")
	case data.Subtitle == nil:
		return Post{}, data, missing(doc, "subtitle")
	case data.Author == nil:
		return Post{}, data, missing(doc, "author")
	}

	p := Post{
		UID:         doc.UID,
		PublishedAt: publishedAt,
		Title:       *data.Title,
		Subtitle:    *data.Subtitle,
		Author:      *data.Author,
	}
	if publishedAt != nil {
		p.Date = n.dates.Format(*publishedAt)
	}
	return p, data, nil
}

// Full converts a detail document. Banner and content are required on top
// of the summary fields.
func (n *Normalizer) Full(doc prismic.Document) (Post, error) {
	p, data, err := n.summary(doc)
	if err != nil {
		return Post{}, err
	}
	if data.Banner == nil || data.Banner.URL == nil || *data.Banner.URL == "" {
		return Post{}, missing(doc, "banner.url")
	}
	if data.Content == nil {
		return Post{}, missing(doc, "content")
	}

	p.Banner = &Banner{URL: *data.Banner.URL}
	if data.Banner.Alt != nil {
		p.Banner.Alt = *data.Banner.Alt
	}
	p.Content = make([]ContentGroup, 0, len(data.Content))
	for i, g := range data.Content {
		if g.Heading == nil {
			return Post{}, missing(doc, "content["+strconv.Itoa(i)+"].heading")
		}
		p.Content = append(p.Content, ContentGroup{Heading: *g.Heading, Body: g.Body})
	}
	return p, nil
}

// Page normalizes one page of listing results.
func (n *Normalizer) Page(resp *prismic.Response) (PostPagination, error) {
	page := PostPagination{
		NextPage: resp.Next(),
		Results:  make([]Post, 0, len(resp.Results)),
	}
	for _, doc := range resp.Results {
		p, err := n.Summary(doc)
		if err != nil {
			return PostPagination{}, err
		}
		page.Results = append(page.Results, p)
	}
	return page, nil
}

// neighbor is lenient: a missing title falls back to the uid.
func neighbor(doc prismic.Document) *Neighbor {
	var data struct {
		Title *string `json:"title"`
	}
	nb := &Neighbor{UID: doc.UID, Title: doc.UID}
	if err := doc.DecodeData(&data); err == nil && data.Title != nil && *data.Title != "" {
		nb.Title = *data.Title
	}
	return nb
}

func missing(doc prismic.Document, field string) error {
	return &prismic.DecodeError{DocumentID: doc.ID, Field: field, Err: prismic.ErrMissingField}
}
