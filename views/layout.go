package views

import (
	"github.com/a-h/templ"
)

// Layout wraps body in the document shell: head metadata, the site header,
// the preview banner and the hidden loading block.
func Layout(meta PageMeta, body templ.Component) templ.Component {
	return component(func(h *htmlWriter) {
		title := meta.Site.Name
		if meta.Title != "" {
			title = meta.Title + " | " + meta.Site.Name
		}
		lang := meta.Site.Locale
		if lang == "" {
			lang = "pt-BR"
		}

		h.raw("<!DOCTYPE html><html")
		h.attr("lang", lang)
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		description := meta.Description
		if description == "" {
			description = meta.Site.Description
		}
		if description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", description)
			h.raw(">")
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.href(meta.URL)
			h.raw(">")
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		ogTag(h, "og:type", ogType)
		ogTag(h, "og:title", title)
		ogTag(h, "og:url", meta.URL)
		ogTag(h, "og:image", meta.Image)
		ogTag(h, "og:site_name", meta.Site.Name)
		h.raw(`<link rel="icon" type="image/svg+xml" href="/public/logo.svg">`)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", meta.Site.Name)
		h.raw(">")
		h.raw(`<link rel="stylesheet" href="/public/site.css">`)
		if meta.JSONLD != "" {
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw("</script>")
		}
		h.raw(`<script src="/public/loadmore.js" defer></script></head><body>`)

		h.raw(`<header class="header"><a href="/" class="logo"><img src="/public/logo.svg"`)
		h.attr("alt", meta.Site.Name)
		h.raw("></a></header>")

		h.render(Loading())
		h.render(body)

		if meta.Preview {
			h.raw(`<aside class="preview"><a href="/api/exit-preview">Sair do modo Preview</a></aside>`)
		}
		h.raw("</body></html>")
	})
}

func ogTag(h *htmlWriter, property, content string) {
	if content == "" {
		return
	}
	h.raw("<meta")
	h.attr("property", property)
	h.attr("content", content)
	h.raw(">")
}

// Loading is the placeholder shown while a post page is generated on demand.
// It starts hidden; loadmore.js reveals it when a post link is followed.
func Loading() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div id="loading" class="loading" hidden aria-live="polite">Carregando...</div>`)
	})
}

// NotFound renders the 404 page.
func NotFound(meta PageMeta) templ.Component {
	meta.Title = "Página não encontrada"
	return Layout(meta, component(func(h *htmlWriter) {
		h.raw(`<main class="container error"><h1>404</h1><p>Página não encontrada.</p><a href="/">Voltar para o início</a></main>`)
	}))
}

// ServerError renders the 5xx page.
func ServerError(meta PageMeta) templ.Component {
	meta.Title = "Erro"
	return Layout(meta, component(func(h *htmlWriter) {
		h.raw(`<main class="container error"><h1>Algo deu errado</h1><p>Não foi possível carregar o conteúdo. Tente novamente em instantes.</p><a href="/">Voltar para o início</a></main>`)
	}))
}
