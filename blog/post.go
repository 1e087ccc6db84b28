// Package blog turns publication documents from the CMS into display-ready
// posts and drives listing, pagination and detail lookups.
package blog

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/eringen/spacetraveling/richtext"
)

// DocumentType is the CMS custom type holding blog posts.
const DocumentType = "publication"

// ErrNotFound is returned when no post matches a uid.
var ErrNotFound = errors.New("blog: post not found")

const wordsPerMinute = 200

// Banner is the post's hero image.
type Banner struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// ContentGroup is one titled section of a post body.
type ContentGroup struct {
	Heading string           `json:"heading"`
	Body    []richtext.Block `json:"body"`
}

// Post is a display-ready publication. Listing posts carry only the summary
// fields; detail posts also carry Banner and Content.
type Post struct {
	UID         string         `json:"uid"`
	PublishedAt *time.Time     `json:"published_at"`
	Date        string         `json:"date"`
	Title       string         `json:"title"`
	Subtitle    string         `json:"subtitle"`
	Author      string         `json:"author"`
	Banner      *Banner        `json:"banner,omitempty"`
	Content     []ContentGroup `json:"content,omitempty"`
}

// Link is the site path of the post.
func (p Post) Link() string {
	return "/post/" + url.PathEscape(p.UID)
}

// ReadingTime estimates minutes to read the post body, rounded up. Posts
// without content report 0.
func (p Post) ReadingTime() int {
	words := 0
	for _, g := range p.Content {
		words += len(strings.Fields(g.Heading))
		words += len(strings.Fields(richtext.Text(g.Body)))
	}
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

// PostPagination is one page of the listing. NextPage is the CMS cursor URL
// for the following page, "" at the end of the list.
type PostPagination struct {
	NextPage string `json:"next_page"`
	Results  []Post `json:"results"`
}

// Neighbor links a post to an adjacent one in publication order.
type Neighbor struct {
	UID   string `json:"uid"`
	Title string `json:"title"`
}

// PostPage is everything the detail view needs. Previous is the nearest newer
// post, Next the nearest older one; either may be nil.
type PostPage struct {
	Post     Post      `json:"post"`
	Previous *Neighbor `json:"previous_post"`
	Next     *Neighbor `json:"next_post"`
}
