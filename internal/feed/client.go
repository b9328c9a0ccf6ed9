package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/wonny/newslens/internal/contracts"
	"github.com/wonny/newslens/pkg/config"
	"github.com/wonny/newslens/pkg/httputil"
	"github.com/wonny/newslens/pkg/logger"
)

// Client fetches and parses the market-news RSS feed
// ⭐ SSOT: 피드 취득은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	feedURL    string
}

var _ contracts.FeedSource = (*Client)(nil)

// NewClient creates a new feed client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "feed"),
		feedURL:    cfg.Feed.URL,
	}
}

// rssDocument mirrors the feed XML, turbo 네임스페이스 포함
type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Author      string `xml:"author"`
	Category    string `xml:"category"`
	Description string `xml:"description"`

	// Content candidates, first-present-wins (resolveContent)
	TurboContent   string `xml:"http://turbo.yandex.ru content"`
	EncodedContent string `xml:"http://purl.org/rss/1.0/modules/content/ encoded"`
}

// Fetch downloads the feed and returns its entries ordered by descending
// embedded end-date, so "last" mode is well-defined regardless of the feed's
// native order. Entries without a parseable end-date sort last.
func (c *Client) Fetch(ctx context.Context) ([]contracts.FeedEntry, error) {
	resp, err := c.httpClient.Get(ctx, c.feedURL)
	if err != nil {
		return nil, &contracts.TransportError{Op: "feed fetch", Target: c.feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &contracts.TransportError{
			Op:     "feed fetch",
			Target: c.feedURL,
			Err:    fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &contracts.TransportError{Op: "feed fetch", Target: c.feedURL, Err: err}
	}

	entries, err := ParseFeed(body)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   c.feedURL,
		"count": len(entries),
	}).Info("Fetched feed")

	return entries, nil
}

// ParseFeed parses raw RSS bytes into normalized entries
func ParseFeed(data []byte) ([]contracts.FeedEntry, error) {
	var doc rssDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse feed XML: %w", err)
	}

	entries := make([]contracts.FeedEntry, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		entries = append(entries, normalizeItem(item))
	}

	sortByEndDateDesc(entries)
	return entries, nil
}

// sortByEndDateDesc orders entries newest-first by embedded end-date.
// 날짜 없는 엔트리는 뒤로.
func sortByEndDateDesc(entries []contracts.FeedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].EndDate, entries[j].EndDate
		if a.IsZero() {
			return false
		}
		if b.IsZero() {
			return true
		}
		return a.After(b)
	})
}
