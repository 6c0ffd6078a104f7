// cmd/verifact/verifier_test.go
package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeResponse scripts one GenerateContent outcome.
type fakeResponse struct {
	text string
	err  error
}

// fakeModelClient scripts GenerateContent responses in call order and
// records which model each call targeted.
type fakeModelClient struct {
	responses []fakeResponse
	calls     []string
	prompts   []string

	listModels []string
	listErr    error
	listCalls  int
}

func (f *fakeModelClient) GenerateContent(ctx context.Context, model, prompt string) (string, error) {
	f.calls = append(f.calls, model)
	f.prompts = append(f.prompts, prompt)
	i := len(f.calls) - 1
	if i < len(f.responses) {
		return f.responses[i].text, f.responses[i].err
	}
	return "", errors.New("unscripted model call")
}

func (f *fakeModelClient) ListGenerationModels(ctx context.Context) ([]string, error) {
	f.listCalls++
	return f.listModels, f.listErr
}

// fakeSource returns fixed evidence.
type fakeSource struct {
	articles []EvidenceArticle
}

func (s *fakeSource) FetchAll(ctx context.Context, query string, maxTotal int) []EvidenceArticle {
	return s.articles
}

const goodResponse = "VERIFICATION_STATUS: TRUE\nCONFIDENCE_SCORE: 90\n\nEVIDENCE_BASED_ANALYSIS:\nMultiple outlets confirm."

func notFoundErr() error {
	return &openai.APIError{HTTPStatusCode: 404, Message: "The model does not exist"}
}

func rateLimitErr() error {
	return &openai.APIError{HTTPStatusCode: 429, Message: "You exceeded your current quota"}
}

type verifierFixture struct {
	verifier  *Verifier
	client    *fakeModelClient
	store     *ResultStore
	fileCache *ModelCache
	sleeps    []time.Duration
}

func newVerifierFixture(t *testing.T, client *fakeModelClient, evidence []EvidenceArticle) *verifierFixture {
	t.Helper()

	dir := t.TempDir()
	cfg := testFetcherConfig()
	cfg.KnownModels = []string{"model-a", "model-b"}

	session := NewCache(time.Hour, 100)
	fileCache := NewModelCache(dir)
	store := NewResultStore(dir)
	resolver := NewModelResolver(client, fileCache, session, cfg.KnownModels)

	v := NewVerifier(cfg, client, resolver, &fakeSource{articles: evidence}, store, session)
	require.True(t, v.Ready())
	require.Equal(t, "model-a", v.ModelName())

	fx := &verifierFixture{verifier: v, client: client, store: store, fileCache: fileCache}
	v.sleep = func(d time.Duration) {
		fx.sleeps = append(fx.sleeps, d)
	}
	return fx
}

func TestVerifyNotReadyWithoutClient(t *testing.T) {
	dir := t.TempDir()
	cfg := testFetcherConfig()
	session := NewCache(time.Hour, 100)
	resolver := NewModelResolver(nil, NewModelCache(dir), session, defaultKnownModels)

	v := NewVerifier(cfg, nil, resolver, &fakeSource{}, NewResultStore(dir), session)

	assert.False(t, v.Ready())

	result := v.Verify(context.Background(), "some claim")
	assert.Equal(t, StatusError, result.Status)
	assert.False(t, result.Success)
	assert.Contains(t, result.Analysis, "ERROR:")
	assert.Contains(t, result.Analysis, "OPENAI_API_KEY")

	// No cache interaction on the not-ready path
	assert.Empty(t, v.store.Load())
}

func TestVerifySuccessThenCacheHit(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{{text: goodResponse}}}
	fx := newVerifierFixture(t, client, sampleEvidence(2))

	first := fx.verifier.Verify(context.Background(), "The  Election was POSTPONED")
	require.True(t, first.Success)
	assert.Equal(t, StatusTrue, first.Status)
	assert.Equal(t, 90, first.Confidence)
	assert.False(t, first.Cached)
	assert.Equal(t, 2, first.EvidenceCount)

	// Same claim modulo whitespace and case must hit the cache
	second := fx.verifier.Verify(context.Background(), "the election was postponed")
	assert.True(t, second.Cached)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Analysis, second.Analysis)

	// Only the first call reached the model
	assert.Len(t, client.calls, 1)
}

func TestVerifyPromptCarriesClaimAndEvidence(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{{text: goodResponse}}}
	evidence := []EvidenceArticle{{Title: "Minister denies report", Link: "https://example.com/a", API: APINewsAPI}}
	fx := newVerifierFixture(t, client, evidence)

	fx.verifier.Verify(context.Background(), "minister resigned today")

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "minister resigned today")
	assert.Contains(t, client.prompts[0], "Minister denies report")
	assert.Contains(t, client.prompts[0], "EVIDENCE CLASSIFICATION")
}

func TestVerifyRateLimitExhausted(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{
		{err: rateLimitErr()},
		{err: rateLimitErr()},
		{err: rateLimitErr()},
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim under load")

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Analysis, "Rate limit exceeded")

	// Exactly the attempt cap, with non-decreasing backoff between attempts
	assert.Len(t, client.calls, MaxGenerateAttempts)
	require.Len(t, fx.sleeps, MaxGenerateAttempts-1)
	for i := 1; i < len(fx.sleeps); i++ {
		assert.GreaterOrEqual(t, fx.sleeps[i], fx.sleeps[i-1])
	}

	// Error paths never write the store
	assert.Empty(t, fx.store.Load())
}

func TestVerifyRateLimitThenSuccess(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{
		{err: rateLimitErr()},
		{err: rateLimitErr()},
		{text: goodResponse},
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim under load")

	assert.True(t, result.Success)
	assert.Len(t, client.calls, 3)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, fx.sleeps)
	assert.Len(t, fx.store.Load(), 1)
}

func TestVerifyRateLimitHonorsServerHint(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{
		{err: errors.New("429 rate limited, please retry in 30 seconds")},
		{text: goodResponse},
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim")

	assert.True(t, result.Success)
	require.Len(t, fx.sleeps, 1)
	// Parsed hint plus the safety buffer
	assert.Equal(t, 35*time.Second, fx.sleeps[0])
}

func TestVerifyModelNotFoundRecovery(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{
		{err: notFoundErr()}, // primary attempt against model-a
		{err: notFoundErr()}, // rediscovery retries model-a
		{text: goodResponse}, // model-b works
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim with stale model")

	assert.True(t, result.Success)
	assert.Equal(t, []string{"model-a", "model-a", "model-b"}, client.calls)
	assert.Equal(t, "model-b", fx.verifier.ModelName())

	// Both cache levels now reflect the newly discovered identifier
	entry, ok := fx.fileCache.Load()
	require.True(t, ok)
	assert.Equal(t, "model-b", entry.ModelName)
}

func TestVerifyModelNotFoundDiscoveryLastResort(t *testing.T) {
	client := &fakeModelClient{
		responses: []fakeResponse{
			{err: notFoundErr()}, // primary attempt
			{err: notFoundErr()}, // rediscovery: model-a
			{err: notFoundErr()}, // rediscovery: model-b
			{text: goodResponse}, // discovered model works
		},
		listModels: []string{"model-c"},
	}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim")

	assert.True(t, result.Success)
	assert.Equal(t, 1, client.listCalls)
	assert.Equal(t, "model-c", fx.verifier.ModelName())
}

func TestVerifyModelNotFoundAllRediscoveryFails(t *testing.T) {
	client := &fakeModelClient{
		responses: []fakeResponse{
			{err: notFoundErr()},
			{err: notFoundErr()},
			{err: notFoundErr()},
			{err: notFoundErr()},
		},
		listModels: []string{"model-b"},
	}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim")

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Analysis, "No available models")
	assert.Empty(t, fx.store.Load())
}

func TestVerifyRepeatModelNotFoundTerminal(t *testing.T) {
	// A 404 on a later attempt must not trigger a second rediscovery
	client := &fakeModelClient{responses: []fakeResponse{
		{err: rateLimitErr()},
		{err: notFoundErr()},
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim")

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Analysis, "Model not available")
	assert.Len(t, client.calls, 2)
	assert.Equal(t, 0, client.listCalls)
}

func TestVerifyOtherErrorTerminalImmediately(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{
		{err: errors.New("connection reset by peer")},
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim")

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Analysis, "AI analysis failed")
	assert.Len(t, client.calls, 1)
	assert.Empty(t, fx.sleeps)
}

func TestVerifyEmptyResponseTerminal(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{{text: "   "}}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "claim")

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Analysis, "No response from model")
	assert.Len(t, client.calls, 1)
}

func TestVerifyNoEvidencePenaltyApplied(t *testing.T) {
	client := &fakeModelClient{responses: []fakeResponse{
		{text: "VERIFICATION_STATUS: FALSE\nCONFIDENCE_SCORE: 85"},
	}}
	fx := newVerifierFixture(t, client, nil)

	result := fx.verifier.Verify(context.Background(), "unsupported claim")

	assert.Equal(t, StatusFalse, result.Status)
	assert.Equal(t, 65, result.Confidence)
}
