// cmd/verifact/fetcher.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

// EvidenceSource gathers evidence articles for a claim.
type EvidenceSource interface {
	FetchAll(ctx context.Context, query string, maxTotal int) []EvidenceArticle
}

// fetchFunc retrieves up to max articles for a query. Fetchers never return
// errors: any failure degrades to an empty slice with a logged warning.
type fetchFunc func(ctx context.Context, query string, max int) []EvidenceArticle

// namedFetcher pairs a fetcher with its API name and per-call result cap.
// Slice position defines aggregation priority.
type namedFetcher struct {
	name  string
	max   int
	fetch fetchFunc
}

// NewsFetcher aggregates evidence from the three news source APIs with
// per-fetcher 30-minute result caching and a shared outbound rate limiter.
type NewsFetcher struct {
	cfg     *Config
	client  *http.Client
	parser  *gofeed.Parser
	limiter *rate.Limiter
	cache   *Cache
	sources []namedFetcher
}

// NewNewsFetcher creates a fetcher over the configured sources.
func NewNewsFetcher(cfg *Config, cache *Cache) *NewsFetcher {
	f := &NewsFetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: FetchTimeout},
		parser:  gofeed.NewParser(),
		limiter: rate.NewLimiter(rate.Limit(FetchRatePerSecond), FetchRateBurst),
		cache:   cache,
	}
	// Priority order: most-trusted source first
	f.sources = []namedFetcher{
		{APIGoogleNewsRSS, 8, f.fetchGoogleNewsRSS},
		{APINewsAPI, 6, f.fetchNewsAPI},
		{APIGDELT, 4, f.fetchGDELT},
	}
	return f
}

// FetchAll queries every source, merges results in fetcher-priority order,
// deduplicates by canonical link (first occurrence wins, empty links
// dropped), and truncates to maxTotal. An empty or whitespace-only query
// short-circuits without contacting any source.
func (f *NewsFetcher) FetchAll(ctx context.Context, query string, maxTotal int) []EvidenceArticle {
	if strings.TrimSpace(query) == "" {
		return []EvidenceArticle{}
	}

	// Fetchers run concurrently but results land in fixed slots, so the
	// merge below always sees priority order regardless of arrival order.
	batches := make([][]EvidenceArticle, len(f.sources))
	var wg sync.WaitGroup
	for i, src := range f.sources {
		wg.Add(1)
		go func(i int, src namedFetcher) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					Logger().Warning("%s fetcher panicked: %v", src.name, r)
				}
			}()
			batches[i] = f.cachedFetch(ctx, src, query)
		}(i, src)
	}
	wg.Wait()

	seen := make(map[string]bool)
	merged := []EvidenceArticle{}
	for _, batch := range batches {
		for _, article := range batch {
			link := strings.TrimSpace(article.Link)
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			merged = append(merged, article)
		}
	}

	if len(merged) > maxTotal {
		merged = merged[:maxTotal]
	}
	return merged
}

// cachedFetch serves a fetcher's results from the 30-minute cache when the
// same query was asked recently. Empty results cache too: a source that
// found nothing will find nothing again a minute later.
func (f *NewsFetcher) cachedFetch(ctx context.Context, src namedFetcher, query string) []EvidenceArticle {
	key := fmt.Sprintf("fetch:%s:%d:%s", src.name, src.max, query)
	if value, ok := f.cache.Get(key); ok {
		if articles, ok := value.([]EvidenceArticle); ok {
			return articles
		}
	}

	articles := src.fetch(ctx, query, src.max)
	f.cache.SetWithTTL(key, articles, FetchCacheTTL)
	return articles
}

// fetchGoogleNewsRSS queries the Google News search feed, restricted to the
// trusted domain allowlist via site: filters.
func (f *NewsFetcher) fetchGoogleNewsRSS(ctx context.Context, query string, max int) []EvidenceArticle {
	siteFilters := make([]string, 0, len(f.cfg.TrustedDomains))
	for _, domain := range f.cfg.TrustedDomains {
		siteFilters = append(siteFilters, "site:"+domain)
	}
	q := query
	if len(siteFilters) > 0 {
		q = fmt.Sprintf("%s (%s)", query, strings.Join(siteFilters, " OR "))
	}

	rssURL := fmt.Sprintf(
		"https://news.google.com/rss/search?q=%s&hl=%s&gl=%s&ceid=%s",
		url.QueryEscape(q),
		url.QueryEscape(f.cfg.GoogleNewsHL),
		url.QueryEscape(f.cfg.GoogleNewsGL),
		url.QueryEscape(f.cfg.GoogleNewsCEID),
	)

	body, err := f.get(ctx, rssURL, FetchTimeout)
	if err != nil {
		Logger().Warning("Google News RSS fetch failed: %v", err)
		return nil
	}
	defer body.Close()

	feed, err := f.parser.Parse(body)
	if err != nil {
		Logger().Warning("Google News RSS parse failed: %v", err)
		return nil
	}

	var articles []EvidenceArticle
	for _, item := range feed.Items {
		if len(articles) >= max {
			break
		}
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		source, snippet := parseRSSDescription(item.Description)
		articles = append(articles, EvidenceArticle{
			Title:     title,
			Link:      link,
			Published: item.Published,
			Source:    source,
			Snippet:   snippet,
			API:       APIGoogleNewsRSS,
		})
	}
	return articles
}

// parseRSSDescription pulls the publisher name and a plain-text snippet out
// of a Google News RSS description, which arrives as an HTML fragment.
func parseRSSDescription(description string) (source, snippet string) {
	if description == "" {
		return "", ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return "", ""
	}
	source = strings.TrimSpace(doc.Find("font").First().Text())
	snippet = strings.TrimSpace(doc.Text())
	return source, snippet
}

// newsAPIResponse is the subset of the NewsAPI /v2/everything payload we use.
type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		Description string `json:"description"`
	} `json:"articles"`
}

// fetchNewsAPI queries NewsAPI's everything endpoint with a 30-day recency
// filter. A missing API key short-circuits to an empty result.
func (f *NewsFetcher) fetchNewsAPI(ctx context.Context, query string, max int) []EvidenceArticle {
	if f.cfg.NewsAPIKey == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", fmt.Sprintf("%d", max))
	params.Set("apiKey", f.cfg.NewsAPIKey)
	params.Set("from", time.Now().AddDate(0, 0, -30).Format("2006-01-02"))

	body, err := f.get(ctx, "https://newsapi.org/v2/everything?"+params.Encode(), NewsAPITimeout)
	if err != nil {
		Logger().Warning("NewsAPI fetch failed: %v", err)
		return nil
	}
	defer body.Close()

	var resp newsAPIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		Logger().Warning("NewsAPI returned invalid JSON: %v", err)
		return nil
	}

	var articles []EvidenceArticle
	for _, a := range resp.Articles {
		if len(articles) >= max {
			break
		}
		if a.Title == "" || a.URL == "" {
			continue
		}
		articles = append(articles, EvidenceArticle{
			Title:     a.Title,
			Link:      a.URL,
			Published: a.PublishedAt,
			Source:    a.Source.Name,
			Snippet:   a.Description,
			API:       APINewsAPI,
		})
	}
	return articles
}

// gdeltResponse is the subset of the GDELT doc API payload we use.
type gdeltResponse struct {
	Articles []struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		SeenDate string `json:"seendate"`
		Domain   string `json:"domain"`
	} `json:"articles"`
}

// fetchGDELT queries the GDELT document API in article-list mode.
func (f *NewsFetcher) fetchGDELT(ctx context.Context, query string, max int) []EvidenceArticle {
	params := url.Values{}
	q := query
	if f.cfg.GDELTSourceCountry != "" {
		q = fmt.Sprintf("%s sourcecountry:%s", query, f.cfg.GDELTSourceCountry)
	}
	params.Set("query", q)
	params.Set("mode", "artlist")
	params.Set("format", "json")
	params.Set("maxrecords", fmt.Sprintf("%d", max))

	body, err := f.get(ctx, "https://api.gdeltproject.org/api/v2/doc/doc?"+params.Encode(), GDELTTimeout)
	if err != nil {
		Logger().Warning("GDELT fetch failed: %v", err)
		return nil
	}
	defer body.Close()

	var resp gdeltResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		Logger().Warning("GDELT returned invalid JSON: %v", err)
		return nil
	}

	var articles []EvidenceArticle
	for _, a := range resp.Articles {
		if len(articles) >= max {
			break
		}
		if a.URL == "" {
			continue
		}
		articles = append(articles, EvidenceArticle{
			Title:     a.Title,
			Link:      a.URL,
			Published: a.SeenDate,
			Source:    a.Domain,
			API:       APIGDELT,
		})
	}
	return articles
}

// get performs a rate-limited GET and returns the response body on a 2xx
// status. The caller owns closing the body.
func (f *NewsFetcher) get(ctx context.Context, requestURL string, timeout time.Duration) (io.ReadCloser, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("User-Agent", fmt.Sprintf("%s/%s", AppName, VERSION))

	resp, err := f.client.Do(req)
	if err != nil {
		cancel()
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	return &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}, nil
}

// cancelReadCloser ties a request-scoped cancel func to body closure.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
