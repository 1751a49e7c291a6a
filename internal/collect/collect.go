// Package collect scrapes articles from a financial news section page and
// hands them to the structuring stage as raw text.
package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marketbrief/internal/core"
	"marketbrief/internal/logger"
	"marketbrief/internal/store"
)

const (
	// DefaultSectionURL is the section page scraped when none is configured.
	DefaultSectionURL = "https://www.wsj.com/news/business"

	// DefaultMaxArticles caps how many articles a single run collects.
	DefaultMaxArticles = 3

	// DefaultUserAgent identifies the scraper as a regular browser. Section
	// pages frequently refuse requests with an obvious bot agent.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// DefaultTimeout bounds each page fetch.
	DefaultTimeout = 30 * time.Second

	// minParagraphLength filters navigation fragments and bylines when the
	// body has to be reassembled from bare <p> tags.
	minParagraphLength = 50
)

// linkSelectors are tried in priority order against the section page. News
// sites rework their markup regularly, so several generations of selector
// are kept.
var linkSelectors = []string{
	`a[href*="/articles/"]`,
	`a[data-module="ArticleLink"]`,
	`a[class*="headline-link"]`,
	".headline-link",
}

// titleSelectors are tried in priority order against an article page.
var titleSelectors = []string{
	"h1",
	".headline",
	".article-headline",
	`[data-module="ArticleHeader"] h1`,
}

// bodySelectors locate the article body container.
var bodySelectors = []string{
	".articleBody",
	`[data-module="ArticleBody"]`,
	".article-content",
	".article-body",
	`div[data-module="BodyText"]`,
}

// Config holds the knobs for a collection run.
type Config struct {
	SectionURL  string
	MaxArticles int
	UserAgent   string
	Timeout     time.Duration
	Delay       time.Duration
}

// Collector scrapes a section page for article links and extracts the title
// and body text of each linked article.
type Collector struct {
	cfg      Config
	client   *http.Client
	cache    *store.Store
	cacheTTL time.Duration
}

// NewCollector creates a Collector, filling unset config fields with defaults.
func NewCollector(cfg Config) *Collector {
	if cfg.SectionURL == "" {
		cfg.SectionURL = DefaultSectionURL
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = DefaultMaxArticles
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Collector{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// WithCache attaches a scrape cache consulted by URL before each network
// fetch. Entries older than ttl are treated as misses.
func (c *Collector) WithCache(cache *store.Store, ttl time.Duration) *Collector {
	c.cache = cache
	c.cacheTTL = ttl
	return c
}

// ArticleLinks scrapes the configured section page and returns up to
// MaxArticles article URLs, deduplicated, in discovery order.
func (c *Collector) ArticleLinks(ctx context.Context) ([]string, error) {
	doc, err := c.fetchDocument(ctx, c.cfg.SectionURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(c.cfg.SectionURL)
	if err != nil {
		return nil, fmt.Errorf("invalid section URL %s: %w", c.cfg.SectionURL, err)
	}

	var links []string
	seen := make(map[string]bool)

	for _, selector := range linkSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			href, ok := s.Attr("href")
			if !ok || href == "" {
				return
			}
			if strings.HasPrefix(href, "/") {
				href = base.Scheme + "://" + base.Host + href
			}
			if !strings.Contains(href, "/articles/") || seen[href] {
				return
			}
			seen[href] = true
			links = append(links, href)
		})
		if len(links) >= c.cfg.MaxArticles {
			break
		}
	}

	if len(links) > c.cfg.MaxArticles {
		links = links[:c.cfg.MaxArticles]
	}
	return links, nil
}

// ScrapeArticle fetches a single article page and extracts its title and
// body text. It returns an error when either could not be extracted.
func (c *Collector) ScrapeArticle(ctx context.Context, articleURL string) (core.ScrapedArticle, error) {
	doc, err := c.fetchDocument(ctx, articleURL)
	if err != nil {
		return core.ScrapedArticle{}, err
	}

	title := extractTitle(doc)
	content := extractContent(doc)

	if title == "" || content == "" {
		return core.ScrapedArticle{}, fmt.Errorf("could not extract content from %s", articleURL)
	}

	return core.ScrapedArticle{
		Title:     title,
		URL:       articleURL,
		Content:   content,
		ScrapedAt: time.Now().UTC(),
	}, nil
}

// Collect runs a full collection pass: discover links on the section page,
// scrape each article (consulting the cache first when one is attached), and
// return the results. A failed link discovery or zero successful scrapes
// falls back to SampleArticles so the downstream stages always have input.
func (c *Collector) Collect(ctx context.Context) ([]core.ScrapedArticle, error) {
	logger.Info("Getting article links", "section_url", c.cfg.SectionURL)

	links, err := c.ArticleLinks(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("Failed to discover article links", "error", err.Error())
	}
	if len(links) == 0 {
		logger.Warn("No article links found, using sample content")
		return SampleArticles(), nil
	}

	logger.Info("Found article links", "count", len(links))

	var articles []core.ScrapedArticle
	for i, articleURL := range links {
		if cached := c.cachedArticle(articleURL); cached != nil {
			logger.Info("Using cached article", "url", articleURL)
			articles = append(articles, *cached)
			continue
		}

		logger.Info("Scraping article", "index", i+1, "total", len(links), "url", articleURL)

		article, err := c.ScrapeArticle(ctx, articleURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping article", "url", articleURL, "error", err.Error())
		} else {
			articles = append(articles, article)
			if c.cache != nil {
				if err := c.cache.CacheArticle(article); err != nil {
					logger.Warn("Failed to cache article", "url", articleURL, "error", err.Error())
				}
			}
		}

		// Be polite to the server between fetches.
		if i < len(links)-1 {
			if err := sleepContext(ctx, c.cfg.Delay); err != nil {
				return nil, err
			}
		}
	}

	if len(articles) == 0 {
		logger.Warn("No articles successfully scraped, using sample content")
		return SampleArticles(), nil
	}

	logger.Info("Collected articles", "count", len(articles))
	return articles, nil
}

func (c *Collector) cachedArticle(articleURL string) *core.ScrapedArticle {
	if c.cache == nil {
		return nil
	}
	cached, err := c.cache.GetCachedArticle(articleURL, c.cacheTTL)
	if err != nil {
		logger.Warn("Cache lookup failed", "url", articleURL, "error", err.Error())
		return nil
	}
	return cached
}

func (c *Collector) fetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL %s: status code %d", rawURL, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", rawURL, err)
	}
	return doc, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}

func extractContent(doc *goquery.Document) string {
	var paragraphs []string

	for _, selector := range bodySelectors {
		body := doc.Find(selector).First()
		if body.Length() == 0 {
			continue
		}
		body.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); text != "" {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) > 0 {
			break
		}
	}

	// No recognized body container: reassemble from bare paragraphs, keeping
	// only ones long enough to be prose.
	if len(paragraphs) == 0 {
		doc.Find("p").Each(func(_ int, p *goquery.Selection) {
			if text := strings.TrimSpace(p.Text()); len(text) > minParagraphLength {
				paragraphs = append(paragraphs, text)
			}
		})
	}

	return strings.Join(paragraphs, "\n\n")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
