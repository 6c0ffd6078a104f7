// cmd/verifact/constants.go
package main

import "time"

// Application constants
const (
	AppName    = "Verifact"
	AppVersion = "1.0.0"

	VERSION = AppVersion

	// Default paths
	DefaultCacheDir    = "data/cache"
	DefaultLogPath     = "data/logs/verifact.log"
	DefaultSourcesPath = "config/sources.yml"

	// Cache file names inside the cache directory
	VerificationCacheFile = "verification_cache.json"
	ModelCacheFile        = "model_cache.json"

	// Result cache policy
	MaxCacheEntries = 100
	CacheTTLDays    = 30

	// Model resolution cache freshness
	ModelCacheTTL = 24 * time.Hour

	// Per-fetcher result cache freshness
	FetchCacheTTL = 30 * time.Minute

	// In-memory cache sizing
	MemoryCacheMaxItems = 500

	// Evidence limits
	DefaultMaxEvidence = 15
	MaxPromptEvidence  = 8

	// Model call retry policy
	MaxGenerateAttempts = 3
	MaxTagAttempts      = 2
	RetryBaseDelay      = 2 * time.Second
	RetryDelayBuffer    = 5 * time.Second

	// HTTP timeouts
	FetchTimeout   = 15 * time.Second
	NewsAPITimeout = 12 * time.Second
	GDELTTimeout   = 15 * time.Second

	// Outbound request throttle for news sources
	FetchRatePerSecond = 2
	FetchRateBurst     = 3

	// API server
	DefaultAPIPort = 8080

	// Persisted timestamp format for verification results
	TimestampLayout = "2006-01-02 15:04:05"
)

// Verification statuses
const (
	StatusTrue          = "TRUE"
	StatusFalse         = "FALSE"
	StatusPartiallyTrue = "PARTIALLY_TRUE"
	StatusMisleading    = "MISLEADING"
	StatusUnverified    = "UNVERIFIED"
	StatusError         = "ERROR"
)

// Evidence stance tags
const (
	TagSupportive    = "supportive"
	TagContradictory = "contradictory"
	TagIrrelevant    = "irrelevant"
)

// Evidence source API names
const (
	APIGoogleNewsRSS = "Google News RSS"
	APINewsAPI       = "NewsAPI"
	APIGDELT         = "GDELT"
)

// defaultKnownModels lists model identifiers tried before any quota-bearing
// discovery call, in preference order.
var defaultKnownModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4-turbo",
	"gpt-3.5-turbo",
}

// defaultTrustedDomains restricts the RSS fetcher to known-reliable outlets.
var defaultTrustedDomains = []string{
	"ndtv.com",
	"thehindu.com",
	"indiatoday.in",
	"indiatimes.com",
	"indianexpress.com",
	"boomlive.in",
	"altnews.in",
	"thequint.com",
	"firstpost.com",
	"news18.com",
	"republicworld.com",
}

// defaultTrustedSources are the informational descriptors attached to results.
var defaultTrustedSources = []string{
	"Times of India - https://timesofindia.indiatimes.com",
	"NDTV - https://www.ndtv.com",
	"The Hindu - https://www.thehindu.com",
	"Indian Express - https://indianexpress.com",
	"India Today - https://www.indiatoday.in",
	"Alt News - https://www.altnews.in",
	"Boom Live - https://www.boomlive.in",
	"The Quint WebQoof - https://www.thequint.com/news/webqoof",
}
