package webdir

import (
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/jlumbroso/ptonppl/internal/core/domain"
)

// Class names of the results page.
const (
	classResultsBlock = "people-results"
	classResultsInner = "bordered"
	classResultsRow   = "row"
	classDetailsValue = "expanded-details-value"
)

// headingFields maps detail headings to directory attributes.
var headingFields = []struct {
	heading string
	field   string
}{
	{"NetID", "uid"},
	{"University ID", "universityid"},
	{"Office Location", "street"},
	{"Interoffice Address", "puinterofficeaddress"},
}

// classFields maps element classes to directory attributes.
var classFields = []struct {
	class string
	field string
}{
	{"title", "title"},
	{"people-search-email", "mail"},
	{"people-search-result-phone", "telephoneNumber"},
	{"people-search-result-name", "pudisplayname"},
	{"people-search-result-department", "ou"},
}

// ParseResults reads every result row of a people-search page.
// It returns nil when the page has no results container.
func ParseResults(r io.Reader, emailDomain string) []domain.RawFields {
	doc, err := html.Parse(r)
	if err != nil {
		return nil
	}

	block := findFirst(doc, func(n *html.Node) bool { return isDiv(n) && hasClass(n, classResultsBlock) })
	if block == nil {
		return nil
	}
	inner := findFirst(block, func(n *html.Node) bool { return isDiv(n) && hasClass(n, classResultsInner) })
	if inner == nil {
		return nil
	}

	var rows []domain.RawFields
	for _, row := range findAll(inner, func(n *html.Node) bool { return isDiv(n) && hasClass(n, classResultsRow) }) {
		rows = append(rows, parseRow(row, emailDomain))
	}
	return rows
}

func parseRow(row *html.Node, emailDomain string) domain.RawFields {
	raw := domain.RawFields{}

	for _, hf := range headingFields {
		if v, ok := headingValue(row, hf.heading); ok {
			raw.Set(hf.field, v)
		}
	}
	for _, cf := range classFields {
		n := findFirst(row, func(n *html.Node) bool { return hasClass(n, cf.class) })
		if n != nil {
			raw.Set(cf.field, textContent(n))
		}
	}

	if full, ok := raw.First("pudisplayname"); ok {
		if last, first, found := strings.Cut(full, ", "); found {
			display := first + " " + last
			raw.Set("displayName", display)
			raw.Set("givenName", first)
			raw.Set("cn", display)
			raw.Set("sn", last)
		}
	}

	if raw.Has("mail") && raw.Has("uid") {
		uid, _ := raw.First("uid")
		raw.Set("eduPersonPrincipalName", domain.EmailFor(uid, emailDomain))
	}
	return raw
}

// headingValue finds an h4 whose text is heading and returns the text of
// the next sibling span carrying the details class.
func headingValue(row *html.Node, heading string) (string, bool) {
	h := findFirst(row, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h4" && strings.TrimSpace(textContent(n)) == heading
	})
	if h == nil {
		return "", false
	}
	for s := h.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode && s.Data == "span" && hasClass(s, classDetailsValue) {
			return textContent(s), true
		}
	}
	return "", false
}

func isDiv(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "div"
}

func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findFirst returns the first descendant of n, in document order,
// matching match.
func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll returns every descendant of n matching match, in document order.
func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if match(c) {
				out = append(out, c)
			}
			traverse(c)
		}
	}
	traverse(n)
	return out
}

// textContent joins the trimmed text nodes under n with no separator.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(strings.TrimSpace(node.Data))
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.TrimSpace(sb.String())
}
