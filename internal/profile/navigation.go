package profile

import (
	"net/url"
	"strings"
)

// maxNavDepth caps navigation traversal. Navigation markup is assumed to be
// a tree, but adversarial or malformed markup must not take us down with it.
const maxNavDepth = 5

type navFrame struct {
	item  NavigationItem
	depth int
}

// NavigationURLs walks a navigation tree and returns every same-host href
// resolved against base, in document order. The traversal is an explicit
// stack rather than recursion so depth is bounded regardless of input.
func NavigationURLs(items []NavigationItem, base string) []string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil
	}

	var out []string
	stack := make([]navFrame, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, navFrame{item: items[i], depth: 0})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.depth > maxNavDepth {
			continue
		}

		if href := strings.TrimSpace(frame.item.Href); href != "" && href != "#" {
			ref, err := url.Parse(href)
			if err == nil {
				abs := baseURL.ResolveReference(ref).String()
				if SameHost(base, abs) {
					out = append(out, abs)
				}
			}
		}

		children := frame.item.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, navFrame{item: children[i], depth: frame.depth + 1})
		}
	}
	return out
}

// RenderNavigation produces an indented text rendering of the navigation
// tree for inclusion in summarizer prompts. Same explicit-stack traversal
// and depth cap as NavigationURLs.
func RenderNavigation(items []NavigationItem) string {
	var sb strings.Builder
	stack := make([]navFrame, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		stack = append(stack, navFrame{item: items[i], depth: 0})
	}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frame.depth > maxNavDepth {
			continue
		}

		label := strings.TrimSpace(frame.item.Label)
		if label != "" {
			sb.WriteString(strings.Repeat("  ", frame.depth))
			sb.WriteString("- ")
			sb.WriteString(label)
			if frame.item.IsDropdown {
				sb.WriteString(" >")
			}
			sb.WriteString("\n")
		}

		children := frame.item.Children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, navFrame{item: children[i], depth: frame.depth + 1})
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
