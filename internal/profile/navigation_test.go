package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func navFixture() []NavigationItem {
	return []NavigationItem{
		{Label: "Home", Href: "/"},
		{
			Label:      "Services",
			Href:       "/services",
			IsDropdown: true,
			Children: []NavigationItem{
				{Label: "Consulting", Href: "/services/consulting"},
				{Label: "Training", Href: "/services/training"},
			},
		},
		{Label: "Twitter", Href: "https://twitter.com/acme"},
		{Label: "Skip", Href: "#"},
		{Label: "Contact", Href: "https://acme.com/contact"},
	}
}

func TestNavigationURLs(t *testing.T) {
	t.Parallel()

	got := NavigationURLs(navFixture(), "https://acme.com/")
	want := []string{
		"https://acme.com/",
		"https://acme.com/services",
		"https://acme.com/services/consulting",
		"https://acme.com/services/training",
		"https://acme.com/contact",
	}
	assert.Equal(t, want, got)
}

func TestNavigationURLsDepthCap(t *testing.T) {
	t.Parallel()

	// Build a chain deeper than the traversal cap.
	leaf := NavigationItem{Label: "Leaf", Href: "/leaf"}
	node := leaf
	for i := 0; i < 10; i++ {
		node = NavigationItem{Label: "Level", Href: "/level", Children: []NavigationItem{node}}
	}

	got := NavigationURLs([]NavigationItem{node}, "https://acme.com/")
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "https://acme.com/leaf")
}

func TestRenderNavigation(t *testing.T) {
	t.Parallel()

	got := RenderNavigation(navFixture())
	want := "- Home\n" +
		"- Services >\n" +
		"  - Consulting\n" +
		"  - Training\n" +
		"- Twitter\n" +
		"- Skip\n" +
		"- Contact"
	assert.Equal(t, want, got)
}

func TestRenderNavigationEmpty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", RenderNavigation(nil))
}
