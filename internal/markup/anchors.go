package markup

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Anchor is an <a> element found in a document body.
type Anchor struct {
	Href string
	Text string
}

// Anchors returns every anchor with an href attribute, in document order.
func Anchors(content string) ([]Anchor, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var anchors []Anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					anchors = append(anchors, Anchor{
						Href: strings.TrimSpace(attr.Val),
						Text: strings.TrimSpace(textContent(n)),
					})
					break
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return anchors, nil
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// SingleAnchor checks that fragment holds exactly one closed <a> element
// with a non-empty href and non-empty text, and returns it.
func SingleAnchor(fragment string) (Anchor, bool) {
	if strings.Count(strings.ToLower(fragment), "</a>") != 1 {
		return Anchor{}, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Anchor{}, false
	}
	sel := doc.Find("a")
	if sel.Length() != 1 {
		return Anchor{}, false
	}
	href, ok := sel.Attr("href")
	href = strings.TrimSpace(href)
	text := strings.TrimSpace(sel.Text())
	if !ok || href == "" || text == "" {
		return Anchor{}, false
	}
	return Anchor{Href: href, Text: text}, true
}

// NormalizeURL resolves href against base and returns a canonical form for
// comparison: lowercase scheme and host, no fragment, no trailing slash.
// Non-http(s) links (mailto:, javascript:, tel:) return false.
func NormalizeURL(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", false
	}
	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
		u.RawPath = ""
	}
	if u.Path == "/" {
		u.Path = ""
	}
	return u.String(), true
}
