// Package prismictest provides an in-process fake of the Prismic search API
// for tests. It understands the handful of predicates the blog issues.
package prismictest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eringen/spacetraveling/prismic"
)

// MasterRef is the ref reported by the fake API root.
const MasterRef = "master-ref"

var rePredicate = regexp.MustCompile(`\[(at|date\.after|date\.before)\(([\w.]+), "((?:[^"\\]|\\.)*)"\)\]`)

// Server is a fake repository. Docs are kept in insertion order; searches
// without orderings return them in that order.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	docs     []prismic.Document
	previews map[string][]prismic.Document
	fail     bool
	lastRef  string

	searches atomic.Int64
}

// NewServer starts a fake repository holding docs.
func NewServer(docs ...prismic.Document) *Server {
	s := &Server{docs: docs, previews: make(map[string][]prismic.Document)}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", s.handleRoot)
	mux.HandleFunc("/api/v2/documents/search", s.handleSearch)
	mux.HandleFunc("/images/banner.png", handleBanner)
	s.Server = httptest.NewServer(mux)
	return s
}

// Endpoint is the API root to hand to prismic.New.
func (s *Server) Endpoint() string { return s.URL + "/api/v2" }

// SetFail makes every search answer 500 until reset.
func (s *Server) SetFail(fail bool) {
	s.mu.Lock()
	s.fail = fail
	s.mu.Unlock()
}

// SetDocs replaces the published documents.
func (s *Server) SetDocs(docs ...prismic.Document) {
	s.mu.Lock()
	s.docs = docs
	s.mu.Unlock()
}

// AddPreview registers the documents visible under a preview ref.
func (s *Server) AddPreview(ref string, docs ...prismic.Document) {
	s.mu.Lock()
	s.previews[ref] = docs
	s.mu.Unlock()
}

// Searches is the number of search requests served so far.
func (s *Server) Searches() int64 { return s.searches.Load() }

// LastRef is the ref sent with the most recent search.
func (s *Server) LastRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRef
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, prismic.API{Refs: []prismic.Ref{
		{ID: "master", Ref: MasterRef, Label: "Master", IsMasterRef: true},
	}})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.searches.Add(1)
	q := r.URL.Query()

	s.mu.Lock()
	fail := s.fail
	ref := q.Get("ref")
	s.lastRef = ref
	docs := s.docs
	preview, known := s.previews[ref]
	if known {
		docs = preview
	}
	s.mu.Unlock()

	if fail {
		http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		return
	}
	if ref != MasterRef && !known {
		http.Error(w, `{"message":"unknown ref"}`, http.StatusBadRequest)
		return
	}

	matched := filter(docs, q.Get("q"))
	if o := q.Get("orderings"); o != "" {
		desc := strings.Contains(o, " desc")
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := publishedAt(matched[i]), publishedAt(matched[j])
			if desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	}

	pageSize := atoiDefault(q.Get("pageSize"), 20)
	page := atoiDefault(q.Get("page"), 1)
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	totalPages := (len(matched) + pageSize - 1) / pageSize

	resp := prismic.Response{
		Page:             page,
		ResultsPerPage:   pageSize,
		ResultsSize:      end - start,
		TotalResultsSize: len(matched),
		TotalPages:       totalPages,
		Results:          append([]prismic.Document{}, matched[start:end]...),
	}
	if page < totalPages {
		next := *r.URL
		nq := next.Query()
		nq.Set("page", strconv.Itoa(page+1))
		next.RawQuery = nq.Encode()
		u := "http://" + r.Host + next.String()
		resp.NextPage = &u
	}
	writeJSON(w, resp)
}

func filter(docs []prismic.Document, q string) []prismic.Document {
	var out []prismic.Document
	preds := rePredicate.FindAllStringSubmatch(q, -1)
	for _, d := range docs {
		ok := true
		for _, p := range preds {
			if !match(d, p[1], p[2], p[3]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, d)
		}
	}
	return out
}

func match(d prismic.Document, op, path, value string) bool {
	switch op {
	case "at":
		switch {
		case path == prismic.FieldType:
			return d.Type == value
		case path == prismic.FieldID:
			return d.ID == value
		case strings.HasSuffix(path, ".uid"):
			return d.UID == value
		}
		return false
	case "date.after", "date.before":
		if d.FirstPublicationDate == nil {
			return false
		}
		t, err := prismic.ParseTime(value)
		if err != nil {
			return false
		}
		pub := publishedAt(d)
		if op == "date.after" {
			return pub.After(t)
		}
		return pub.Before(t)
	}
	return false
}

func publishedAt(d prismic.Document) time.Time {
	if d.FirstPublicationDate == nil {
		return time.Time{}
	}
	t, _ := prismic.ParseTime(*d.FirstPublicationDate)
	return t
}

func atoiDefault(s string, fallback int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func handleBanner(w http.ResponseWriter, _ *http.Request) {
	img := image.NewRGBA(image.Rect(0, 0, 1600, 900))
	for y := 0; y < 900; y += 10 {
		for x := 0; x < 1600; x += 10 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// Publication builds a publication document with a full data payload. An
// empty date produces a null first_publication_date.
func Publication(uid, date, title string) prismic.Document {
	data := map[string]any{
		"title":    title,
		"subtitle": "Subtitle of " + title,
		"author":   "Joseph Oliveira",
		"banner": map[string]any{
			"url": "/images/banner.png",
			"alt": title,
		},
		"content": []map[string]any{
			{
				"heading": "Introduction",
				"body": []map[string]any{
					{"type": "paragraph", "text": "Body of " + title, "spans": []any{}},
				},
			},
		},
	}
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	doc := prismic.Document{
		ID:   "id-" + uid,
		UID:  uid,
		Type: "publication",
		Data: raw,
	}
	if date != "" {
		d := date
		doc.FirstPublicationDate = &d
	}
	return doc
}

// WithBannerHost rewrites a document's relative banner URL onto base.
func WithBannerHost(doc prismic.Document, base string) prismic.Document {
	var data map[string]any
	if err := json.Unmarshal(doc.Data, &data); err != nil {
		panic(err)
	}
	if banner, ok := data["banner"].(map[string]any); ok {
		if u, ok := banner["url"].(string); ok && strings.HasPrefix(u, "/") {
			banner["url"] = strings.TrimSuffix(base, "/") + u
		}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		panic(err)
	}
	doc.Data = raw
	return doc
}

// WithData replaces a document's data payload.
func WithData(doc prismic.Document, data map[string]any) prismic.Document {
	raw, err := json.Marshal(data)
	if err != nil {
		panic(fmt.Sprintf("prismictest: %v", err))
	}
	doc.Data = raw
	return doc
}

// Cursor builds a next_page URL against this server for page n of the
// listing query. Useful for tests that start mid-list.
func (s *Server) Cursor(pageSize, page int) string {
	v := url.Values{}
	v.Set("ref", MasterRef)
	v.Set("q", `[[at(document.type, "publication")]]`)
	v.Set("pageSize", strconv.Itoa(pageSize))
	v.Set("page", strconv.Itoa(page))
	v.Set("orderings", "[document.first_publication_date desc]")
	return s.Endpoint() + "/documents/search?" + v.Encode()
}
