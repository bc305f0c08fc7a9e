package source

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ExtractVisibleText parses HTML and returns its visible text with
// whitespace collapsed, plus the document title if present
func ExtractVisibleText(r io.Reader) (text, title string, err error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "svg", "template":
				return
			case "title":
				if title == "" {
					title = strings.TrimSpace(nodeText(n))
				}
				return
			}
		}

		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				buf.WriteString(t)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(buf.String()), " "), title, nil
}

func nodeText(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			buf.WriteString(c.Data)
		}
	}
	return buf.String()
}
