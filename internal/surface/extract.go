package surface

import (
	"strings"

	"golang.org/x/net/html"

	"pollnerd/internal/poll"
)

// PollEverywhere component classes, stable across the response UI.
const (
	classQuestionTitle = "component-response-header__title"
	classOptionValue   = "component-response-multiple-choice__option__value"
	classOptionVote    = "component-response-multiple-choice__option__vote"
)

// ParseQuestion extracts the currently displayed multiple-choice question
// from raw page HTML. Returns nil when no question is on screen, which
// covers the idle lobby, loading states, and non-choice activity types.
func ParseQuestion(raw string) *poll.Question {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}

	title := findByClass(doc, classQuestionTitle)
	if title == nil {
		return nil
	}

	var options []string
	walkByClass(doc, classOptionValue, func(n *html.Node) {
		options = append(options, nodeText(n))
	})
	if len(options) == 0 {
		return nil
	}

	return poll.NewQuestion(nodeText(title), options)
}

// hasClass reports whether the element node carries the CSS class.
func hasClass(n *html.Node, class string) bool {
	if n.Type != html.ElementNode {
		return false
	}
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

// findByClass returns the first node with the class in document order.
func findByClass(n *html.Node, class string) *html.Node {
	if hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// walkByClass visits every node with the class in document order. Matching
// nodes are not descended into, so nested duplicates do not double-report.
func walkByClass(n *html.Node, class string, visit func(*html.Node)) {
	if hasClass(n, class) {
		visit(n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkByClass(c, class, visit)
	}
}

// nodeText concatenates the text content under n.
func nodeText(n *html.Node) string {
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
	return strings.TrimSpace(sb.String())
}
