package generator

import (
	"fmt"
	"strings"

	"github.com/brandworks/siteprofiler/internal/profile"
)

// BuildPrompt renders a crawl result into the structured prompt handed to
// the summarizer. Section order is fixed so downstream prompt templates can
// rely on it.
func BuildPrompt(result profile.CrawlResult) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Website: %s\n", result.Domain)
	fmt.Fprintf(&sb, "Brand name: %s (confidence: %s)\n", result.Brand.RecommendedName, result.Brand.NameConfidence)
	fmt.Fprintf(&sb, "Pages analyzed: %d\n", result.PagesCrawled)

	writeSection(&sb, "Site navigation", result.Aggregated.NavigationSummary)
	writeSection(&sb, "Company information", result.Aggregated.CompanyInfo)
	writeSection(&sb, "Products and services", result.Aggregated.ProductsAndServices)
	writeSection(&sb, "Value propositions", result.Aggregated.ValuePropositions)
	writeSection(&sb, "Target audience", result.Aggregated.TargetAudience)
	writeSection(&sb, "Pricing", result.Aggregated.PricingInfo)
	writeSection(&sb, "Team", result.Aggregated.TeamInfo)
	writeSection(&sb, "Blog topics", result.Aggregated.BlogTopics)

	if len(result.Services.Services) > 0 {
		writeSection(&sb, "Named services", strings.Join(result.Services.Services, ", "))
	}
	if len(result.Services.PracticeAreas) > 0 {
		writeSection(&sb, "Practice areas", strings.Join(result.Services.PracticeAreas, ", "))
	}
	if result.Blog.HasBlog && len(result.Blog.BlogTopics) > 0 {
		writeSection(&sb, "Recent blog themes", strings.Join(result.Blog.BlogTopics, "; "))
	}
	if len(result.Aggregated.AllHeadings) > 0 {
		writeSection(&sb, "Page headings", strings.Join(result.Aggregated.AllHeadings, "; "))
	}

	return sb.String()
}

func writeSection(sb *strings.Builder, name, content string) {
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	fmt.Fprintf(sb, "\n## %s\n%s\n", name, content)
}
