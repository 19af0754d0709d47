package fetch

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoImage is returned when an HTML page names no image.
var ErrNoImage = errors.New("page has no image")

// ImageURLFromHTML returns the page's og:image, or the first <img src> when
// there is none, resolved against base.
func ImageURLFromHTML(r io.Reader, base *url.URL) (*url.URL, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	src := findOpenGraphImage(doc)
	if src == "" {
		src = findFirstImg(doc)
	}
	if src == "" {
		return nil, ErrNoImage
	}

	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return nil, err
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	return ref, nil
}

func findOpenGraphImage(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Meta {
		prop := attr(n, "property")
		if prop == "" {
			prop = attr(n, "name")
		}
		if strings.EqualFold(prop, "og:image") {
			if content := attr(n, "content"); content != "" {
				return content
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src := findOpenGraphImage(c); src != "" {
			return src
		}
	}
	return ""
}

func findFirstImg(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		if src := attr(n, "src"); src != "" {
			return src
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src := findFirstImg(c); src != "" {
			return src
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
