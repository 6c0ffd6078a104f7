// cmd/verifact/fetcher_test.go
package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcherConfig() *Config {
	return &Config{
		TrustedDomains:     defaultTrustedDomains,
		TrustedSources:     defaultTrustedSources,
		GoogleNewsHL:       "en-IN",
		GoogleNewsGL:       "IN",
		GoogleNewsCEID:     "IN:en",
		GDELTSourceCountry: "IN",
		MaxEvidence:        DefaultMaxEvidence,
	}
}

func stubArticles(links ...string) []EvidenceArticle {
	var articles []EvidenceArticle
	for _, link := range links {
		articles = append(articles, EvidenceArticle{
			Title: "story " + link,
			Link:  link,
			API:   APIGoogleNewsRSS,
		})
	}
	return articles
}

func stubFetcher(name string, articles []EvidenceArticle) namedFetcher {
	return namedFetcher{
		name: name,
		max:  8,
		fetch: func(ctx context.Context, query string, max int) []EvidenceArticle {
			return articles
		},
	}
}

func TestFetchAllDedupesInPriorityOrder(t *testing.T) {
	f := NewNewsFetcher(testFetcherConfig(), NewCache(time.Minute, 100))
	f.sources = []namedFetcher{
		stubFetcher("one", stubArticles("A", "B")),
		stubFetcher("two", stubArticles("B", "C")),
		stubFetcher("three", stubArticles("C", "D")),
	}

	merged := f.FetchAll(context.Background(), "some claim", 10)

	require.Len(t, merged, 4)
	links := make([]string, 0, len(merged))
	for _, article := range merged {
		links = append(links, article.Link)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, links)
}

func TestFetchAllEmptyQueryShortCircuits(t *testing.T) {
	var called int32
	f := NewNewsFetcher(testFetcherConfig(), NewCache(time.Minute, 100))
	f.sources = []namedFetcher{{
		name: "counting",
		max:  8,
		fetch: func(ctx context.Context, query string, max int) []EvidenceArticle {
			atomic.AddInt32(&called, 1)
			return stubArticles("A")
		},
	}}

	assert.Empty(t, f.FetchAll(context.Background(), "", 10))
	assert.Empty(t, f.FetchAll(context.Background(), "   \t ", 10))
	assert.Equal(t, int32(0), atomic.LoadInt32(&called))
}

func TestFetchAllDropsEmptyLinks(t *testing.T) {
	f := NewNewsFetcher(testFetcherConfig(), NewCache(time.Minute, 100))
	f.sources = []namedFetcher{
		stubFetcher("one", []EvidenceArticle{
			{Title: "no link", Link: "   ", API: APIGDELT},
			{Title: "has link", Link: "X", API: APIGDELT},
		}),
	}

	merged := f.FetchAll(context.Background(), "claim", 10)
	require.Len(t, merged, 1)
	assert.Equal(t, "X", merged[0].Link)
}

func TestFetchAllTruncatesToMaxTotal(t *testing.T) {
	f := NewNewsFetcher(testFetcherConfig(), NewCache(time.Minute, 100))
	f.sources = []namedFetcher{
		stubFetcher("one", stubArticles("A", "B", "C", "D", "E")),
	}

	merged := f.FetchAll(context.Background(), "claim", 2)
	require.Len(t, merged, 2)
	assert.Equal(t, "A", merged[0].Link)
	assert.Equal(t, "B", merged[1].Link)
}

func TestCachedFetchServesRepeatQueriesFromCache(t *testing.T) {
	var calls int32
	f := NewNewsFetcher(testFetcherConfig(), NewCache(time.Minute, 100))
	f.sources = []namedFetcher{{
		name: "counting",
		max:  8,
		fetch: func(ctx context.Context, query string, max int) []EvidenceArticle {
			atomic.AddInt32(&calls, 1)
			return stubArticles("A")
		},
	}}

	first := f.FetchAll(context.Background(), "same query", 10)
	second := f.FetchAll(context.Background(), "same query", 10)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCachedFetchCachesEmptyResults(t *testing.T) {
	var calls int32
	f := NewNewsFetcher(testFetcherConfig(), NewCache(time.Minute, 100))
	f.sources = []namedFetcher{{
		name: "empty",
		max:  8,
		fetch: func(ctx context.Context, query string, max int) []EvidenceArticle {
			atomic.AddInt32(&calls, 1)
			return nil
		},
	}}

	f.FetchAll(context.Background(), "nothing found", 10)
	f.FetchAll(context.Background(), "nothing found", 10)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewsAPISkippedWithoutKey(t *testing.T) {
	cfg := testFetcherConfig()
	cfg.NewsAPIKey = ""
	f := NewNewsFetcher(cfg, NewCache(time.Minute, 100))

	// No key means no request is attempted at all
	assert.Empty(t, f.fetchNewsAPI(context.Background(), "claim", 6))
}

func TestParseRSSDescription(t *testing.T) {
	source, snippet := parseRSSDescription(
		`<a href="https://news.google.com/x">Minister denies report</a>&nbsp;&nbsp;<font color="#6f6f6f">NDTV</font>`)

	assert.Equal(t, "NDTV", source)
	assert.Contains(t, snippet, "Minister denies report")
}

func TestParseRSSDescriptionEmpty(t *testing.T) {
	source, snippet := parseRSSDescription("")
	assert.Empty(t, source)
	assert.Empty(t, snippet)
}
