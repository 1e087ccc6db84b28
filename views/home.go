package views

import (
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/richtext"
)

// Home renders the first listing page around its items and load-more
// control, so the same components serve the first page and later fragments.
func Home(meta PageMeta, items, loadMore templ.Component) templ.Component {
	return Layout(meta, component(func(h *htmlWriter) {
		h.raw(`<main class="container posts"><div id="posts">`)
		h.render(items)
		h.raw("</div>")
		h.render(loadMore)
		h.raw("</main>")
	}))
}

// PostItems renders listing entries. Each carries its uid in data-uid so
// the load-more script can skip posts it already shows.
func PostItems(posts []blog.Post) templ.Component {
	return component(func(h *htmlWriter) {
		for _, p := range posts {
			h.raw(`<article class="post"`)
			h.attr("data-uid", p.UID)
			h.raw("><a")
			h.href(p.Link())
			h.raw("><strong>")
			h.text(p.Title)
			h.raw("</strong><p>")
			h.text(p.Subtitle)
			h.raw(`</p><ul class="info">`)
			postDate(h, p)
			h.raw(`<li class="author">`)
			h.text(p.Author)
			h.raw("</li></ul></a></article>")
		}
	})
}

// LoadMoreButton renders the "load more" control, or nothing when there is
// no next page.
func LoadMoreButton(nextPage string) templ.Component {
	return component(func(h *htmlWriter) {
		if nextPage == "" {
			return
		}
		h.raw(`<button type="button" class="load-more" data-target="posts"`)
		h.attr("data-next-page", nextPage)
		h.raw(">Carregar mais posts</button>")
	})
}

func postDate(h *htmlWriter, p blog.Post) {
	if p.Date == "" {
		return
	}
	h.raw(`<li class="date"><time`)
	if p.PublishedAt != nil {
		h.attr("datetime", p.PublishedAt.UTC().Format(time.RFC3339))
	}
	h.raw(">")
	h.text(p.Date)
	h.raw("</time></li>")
}

// Post renders the detail page.
func Post(meta PageMeta, page blog.PostPage) templ.Component {
	p := page.Post
	return Layout(meta, component(func(h *htmlWriter) {
		if p.Banner != nil {
			h.raw(`<img class="banner" src="/banner/`)
			h.raw(templ.EscapeString(PathEscape(p.UID)))
			h.raw(`"`)
			h.attr("alt", p.Banner.Alt)
			h.raw(">")
		}
		h.raw(`<main class="container post-detail"><article><h1>`)
		h.text(p.Title)
		h.raw(`</h1><ul class="info">`)
		postDate(h, p)
		h.raw(`<li class="author">`)
		h.text(p.Author)
		h.raw(`</li><li class="reading-time">`)
		h.text(strconv.Itoa(p.ReadingTime()) + " min")
		h.raw("</li></ul>")
		for _, g := range p.Content {
			h.raw("<section><h2>")
			h.text(g.Heading)
			h.raw(`</h2><div class="post-content">`)
			h.render(richtext.Component(g.Body))
			h.raw("</div></section>")
		}
		h.raw("</article>")
		neighbors(h, page.Previous, page.Next)
		h.raw("</main>")
	}))
}

func neighbors(h *htmlWriter, previous, next *blog.Neighbor) {
	if previous == nil && next == nil {
		return
	}
	h.raw(`<nav class="navigation">`)
	neighborLink(h, previous, "previous", "Post anterior")
	neighborLink(h, next, "next", "Próximo post")
	h.raw("</nav>")
}

func neighborLink(h *htmlWriter, nb *blog.Neighbor, class, label string) {
	if nb == nil {
		h.raw(`<span class="` + class + `"></span>`)
		return
	}
	h.raw(`<a class="` + class + `"`)
	h.href(blog.Post{UID: nb.UID}.Link())
	h.raw("><span>")
	h.text(nb.Title)
	h.raw("</span><small>")
	h.text(label)
	h.raw("</small></a>")
}
