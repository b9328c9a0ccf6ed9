package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/newslens/internal/contracts"
)

// contentCandidate resolves one possible content field of a raw feed item.
// 후보 목록은 우선순위 순서, 첫 번째로 값이 있는 필드가 이긴다.
type contentCandidate struct {
	name    string
	resolve func(rssItem) string
}

var contentCandidates = []contentCandidate{
	{name: "turbo:content", resolve: func(it rssItem) string { return it.TurboContent }},
	{name: "content:encoded", resolve: func(it rssItem) string { return it.EncodedContent }},
	{name: "description", resolve: func(it rssItem) string { return it.Description }},
}

// Embedded end-date templates. 피드 본문이 쓰는 두 가지 알려진 형태.
var (
	endDateArticlesExpr = regexp.MustCompile(`End date for the articles:\s*(\d{4}-\d{2}-\d{2})`)
	endDateBeforeExpr   = regexp.MustCompile(`before\s+(\d{4}-\d{2}-\d{2})[^U]*UTC`)
)

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
}

// normalizeItem resolves a raw feed item into the internal entry shape.
// Content is resolved exactly once here, not re-branched downstream.
func normalizeItem(item rssItem) contracts.FeedEntry {
	entry := contracts.FeedEntry{
		Title: strings.TrimSpace(item.Title),
		Link:  strings.TrimSpace(item.Link),
	}

	for _, candidate := range contentCandidates {
		if value := strings.TrimSpace(candidate.resolve(item)); value != "" {
			entry.Content = value
			break
		}
	}

	if item.PubDate != "" {
		for _, layout := range pubDateLayouts {
			if ts, err := time.Parse(layout, item.PubDate); err == nil {
				entry.Published = ts.UTC()
				break
			}
		}
	}

	if entry.Content != "" {
		entry.EndDate = ParseEmbeddedEndDate(PlainText(entry.Content))
	}

	return entry
}

// ParseEmbeddedEndDate extracts the article end-date from entry text.
// Both known templates are tried; the maximum of all matches wins because an
// entry can carry several summary blocks.
func ParseEmbeddedEndDate(text string) time.Time {
	var max time.Time

	for _, expr := range []*regexp.Regexp{endDateArticlesExpr, endDateBeforeExpr} {
		for _, match := range expr.FindAllStringSubmatch(text, -1) {
			ts, err := time.Parse(contracts.DateLayout, match[1])
			if err != nil {
				continue
			}
			if ts.After(max) {
				max = ts
			}
		}
	}

	return max
}

// PlainText strips HTML markup from entry content. Falls back to the raw
// string when the markup does not parse.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style").Remove()
	text := doc.Text()

	// Collapse whitespace runs left behind by removed tags
	return strings.Join(strings.Fields(text), " ")
}
