package htmlparse

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandworks/siteprofiler/internal/profile"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>  Widgets &amp; More |
    Acme Widgets  </title>
  <meta name="description" content="  We make the best widgets. ">
</head>
<body>
  <header>
    <img src="/img/logo.png" alt="Acme Widgets">
  </header>
  <nav>
    <ul>
      <li><a href="/">Home</a></li>
      <li>
        <span>Products</span>
        <ul>
          <li><a href="/products/widget">Widget</a></li>
          <li><a href="/products/gadget">Gadget</a></li>
        </ul>
      </li>
      <li><a href="/contact">Contact</a></li>
    </ul>
  </nav>
  <h1>Widgets for Everyone</h1>
  <h2>Built to Last</h2>
  <p>Our widgets are handcrafted.</p>
  <h3>Trusted Worldwide</h3>
  <a href="/about?ref=footer">About</a>
  <a href="/about#team">About Team</a>
  <a href="https://other.com/partners">Partners</a>
  <a href="/brochure.pdf">Brochure</a>
  <a href="mailto:hi@acme.com">Mail</a>
  <a href="/pricing/">Pricing</a>
  <script>console.log("hidden")</script>
  <footer>
    <p>© 2024 Acme Widgets LLC. All rights reserved.</p>
  </footer>
</body>
</html>`

func parseSample(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse("https://acme.com/", []byte(samplePage))
	require.NoError(t, err)
	return doc
}

func TestTitleAndMetaDescription(t *testing.T) {
	t.Parallel()

	doc := parseSample(t)
	assert.Equal(t, "Widgets & More | Acme Widgets", doc.Title())
	assert.Equal(t, "We make the best widgets.", doc.MetaDescription())
}

func TestHeadings(t *testing.T) {
	t.Parallel()

	doc := parseSample(t)
	assert.Equal(t, []string{"Widgets for Everyone", "Built to Last", "Trusted Worldwide"}, doc.Headings(10))
	assert.Equal(t, []string{"Widgets for Everyone", "Built to Last"}, doc.Headings(2))
}

func TestBodyTextExcludesChrome(t *testing.T) {
	t.Parallel()

	doc := parseSample(t)
	text := doc.BodyText(0)
	assert.Contains(t, text, "Our widgets are handcrafted.")
	assert.NotContains(t, text, "console.log")
	assert.NotContains(t, text, "All rights reserved")
	assert.NotContains(t, text, "Products")

	short := doc.BodyText(10)
	assert.Len(t, short, 10)
}

func TestBodyTextCapKeepsRuneBoundaries(t *testing.T) {
	t.Parallel()

	html := "<html><body><p>" + strings.Repeat("ü", 40) + "</p></body></html>"
	doc, err := Parse("https://acme.com/", []byte(html))
	require.NoError(t, err)

	text := doc.BodyText(15)
	assert.LessOrEqual(t, len(text), 15)
	assert.True(t, utf8.ValidString(text), "cap must not split a rune")
}

func TestOutboundLinks(t *testing.T) {
	t.Parallel()

	doc := parseSample(t)
	links := doc.OutboundLinks()

	assert.Contains(t, links, "https://acme.com/about")
	assert.Contains(t, links, "https://acme.com/pricing")
	assert.Contains(t, links, "https://acme.com/products/widget")

	// Query and fragment variants of the same path collapse to one entry.
	count := 0
	for _, l := range links {
		if l == "https://acme.com/about" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	assert.NotContains(t, links, "https://other.com/partners")
	for _, l := range links {
		assert.NotContains(t, l, ".pdf")
		assert.NotContains(t, l, "mailto")
	}
}

func TestNavigationTree(t *testing.T) {
	t.Parallel()

	doc := parseSample(t)
	nav := doc.Navigation()
	require.Len(t, nav, 3)

	assert.Equal(t, "Home", nav[0].Label)
	assert.Equal(t, "/", nav[0].Href)
	assert.False(t, nav[0].IsDropdown)

	assert.Equal(t, "Products", nav[1].Label)
	assert.True(t, nav[1].IsDropdown)
	require.Len(t, nav[1].Children, 2)
	assert.Equal(t, "Widget", nav[1].Children[0].Label)
	assert.Equal(t, "/products/widget", nav[1].Children[0].Href)

	assert.Equal(t, "Contact", nav[2].Label)
}

func TestNavigationFlatAnchors(t *testing.T) {
	t.Parallel()

	html := `<html><body><nav>
		<a href="/">Home</a>
		<a href="/about">About</a>
	</nav></body></html>`
	doc, err := Parse("https://acme.com/", []byte(html))
	require.NoError(t, err)

	nav := doc.Navigation()
	require.Len(t, nav, 2)
	assert.Equal(t, profile.NavigationItem{Label: "Home", Href: "/"}, nav[0])
	assert.Equal(t, profile.NavigationItem{Label: "About", Href: "/about"}, nav[1])
}

func TestNavigationMissing(t *testing.T) {
	t.Parallel()

	doc, err := Parse("https://acme.com/", []byte("<html><body><p>hello</p></body></html>"))
	require.NoError(t, err)
	assert.Nil(t, doc.Navigation())
}
