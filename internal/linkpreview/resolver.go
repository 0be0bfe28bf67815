// Package linkpreview resolves page metadata for the first URL in a message
// draft. It is a compose-time affordance: results are cached per URL and
// never persisted with the sent message.
package linkpreview

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/koltech/wallline/internal/domain"
)

const (
	fetchTimeout = 5 * time.Second
	maxBodySize  = 1 << 20 // 1 MiB is plenty for <head>
)

// urlRegex matches schemed URLs or bare domain-like tokens (label.tld/path).
var urlRegex = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"]+|\b[a-z0-9][a-z0-9-]*(?:\.[a-z0-9][a-z0-9-]*)*\.[a-z]{2,}(?:/[^\s<>"]*)?`)

// ExtractFirstURL finds the first URL-like token in text and normalizes it
// by prepending https:// when no scheme is present. Only the first URL is
// resolved, to bound cost.
func ExtractFirstURL(text string) (string, bool) {
	match := urlRegex.FindString(text)
	if match == "" {
		return "", false
	}
	match = strings.TrimRight(match, ".,;:!?)")
	if !strings.HasPrefix(strings.ToLower(match), "http://") && !strings.HasPrefix(strings.ToLower(match), "https://") {
		match = "https://" + match
	}
	if _, err := url.Parse(match); err != nil {
		return "", false
	}
	return match, true
}

type Resolver struct {
	client *http.Client
	cache  Cache
}

func NewResolver(cache Cache) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: fetchTimeout},
		cache:  cache,
	}
}

// Resolve fetches metadata for a normalized URL. It never fails: any fetch
// or parse problem degrades to a minimal record carrying the hostname as
// title, so the compose UI never hangs or errors.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) *domain.LinkMetadata {
	if r.cache != nil {
		if meta, ok := r.cache.Get(ctx, rawURL); ok {
			return meta
		}
	}

	meta := r.fetch(ctx, rawURL)

	if r.cache != nil {
		r.cache.Set(ctx, rawURL, meta)
	}
	return meta
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) *domain.LinkMetadata {
	fallback := fallbackMetadata(rawURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fallback
	}
	req.Header.Set("User-Agent", "wallline-linkpreview/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return fallback
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fallback
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fallback
	}

	meta := &domain.LinkMetadata{URL: rawURL}
	walkHead(doc, meta)

	if meta.Title == "" {
		meta.Title = fallback.Title
	}
	meta.Image = absoluteURL(rawURL, meta.Image)
	meta.Favicon = absoluteURL(rawURL, meta.Favicon)
	return meta
}

func fallbackMetadata(rawURL string) *domain.LinkMetadata {
	meta := &domain.LinkMetadata{URL: rawURL}
	if u, err := url.Parse(rawURL); err == nil {
		meta.Title = u.Hostname()
	}
	return meta
}

// walkHead walks the parsed document picking og:/twitter:/plain metadata.
// Open Graph wins over twitter cards, which win over plain tags.
func walkHead(n *html.Node, meta *domain.LinkMetadata) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "meta":
			handleMetaTag(n, meta)
		case "title":
			if meta.Title == "" && n.FirstChild != nil {
				meta.Title = strings.TrimSpace(n.FirstChild.Data)
			}
		case "link":
			if meta.Favicon == "" && isIconLink(n) {
				meta.Favicon = attr(n, "href")
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkHead(c, meta)
	}
}

func handleMetaTag(n *html.Node, meta *domain.LinkMetadata) {
	key := attr(n, "property")
	if key == "" {
		key = attr(n, "name")
	}
	content := strings.TrimSpace(attr(n, "content"))
	if content == "" {
		return
	}

	switch strings.ToLower(key) {
	case "og:title":
		meta.Title = content
	case "og:description":
		meta.Description = content
	case "og:image":
		meta.Image = content
	case "og:site_name":
		meta.SiteName = content
	case "twitter:title":
		if meta.Title == "" {
			meta.Title = content
		}
	case "twitter:description":
		if meta.Description == "" {
			meta.Description = content
		}
	case "twitter:image":
		if meta.Image == "" {
			meta.Image = content
		}
	case "description":
		if meta.Description == "" {
			meta.Description = content
		}
	}
}

func isIconLink(n *html.Node) bool {
	rel := strings.ToLower(attr(n, "rel"))
	return strings.Contains(rel, "icon")
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func absoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
