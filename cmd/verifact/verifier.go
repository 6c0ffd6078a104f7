// cmd/verifact/verifier.go
package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Verifier orchestrates the verification pipeline: cache check, evidence
// fetch, prompt, model call with retry, response parse, cache write.
type Verifier struct {
	cfg      *Config
	client   ModelClient
	resolver *ModelResolver
	fetcher  EvidenceSource
	store    *ResultStore
	session  *Cache

	modelName string
	initErr   error
	mutex     sync.Mutex

	// sleep is swappable so retry tests don't block
	sleep func(time.Duration)
}

// NewVerifier wires the pipeline and resolves a model up front. Resolution
// failure is not fatal to construction: every later Verify call surfaces it
// as an ERROR result.
func NewVerifier(cfg *Config, client ModelClient, resolver *ModelResolver, fetcher EvidenceSource, store *ResultStore, session *Cache) *Verifier {
	v := &Verifier{
		cfg:      cfg,
		client:   client,
		resolver: resolver,
		fetcher:  fetcher,
		store:    store,
		session:  session,
		sleep:    time.Sleep,
	}

	if client == nil {
		v.initErr = NewInitError("OPENAI_API_KEY not found", nil)
		return v
	}

	name, err := resolver.Resolve(context.Background())
	if err != nil {
		v.initErr = err
		return v
	}
	v.modelName = name
	return v
}

// Ready reports whether initialization succeeded.
func (v *Verifier) Ready() bool {
	return v.initErr == nil
}

// ModelName returns the currently bound model identifier.
func (v *Verifier) ModelName() string {
	v.mutex.Lock()
	defer v.mutex.Unlock()
	return v.modelName
}

func (v *Verifier) setModel(name string) {
	v.mutex.Lock()
	v.modelName = name
	v.mutex.Unlock()
}

// Verify checks a news claim and returns a structured verdict. The caller
// always receives a well-formed result; failures arrive as status ERROR
// with the reason in the analysis field.
func (v *Verifier) Verify(ctx context.Context, claim string) VerificationResult {
	if v.initErr != nil {
		return errorResult(v.initErr.Error())
	}

	claimKey := ClaimHash(claim)
	cache := v.store.Load()

	// Cache hit: return the stored verdict untouched apart from the flag
	if stored, ok := cache[claimKey]; ok {
		stored.Cached = true
		return stored
	}

	// Evidence failures degrade to empty: the claim can still be assessed
	// on model knowledge alone
	evidence := v.fetcher.FetchAll(ctx, claim, v.cfg.MaxEvidence)

	prompt := CreateHybridPrompt(claim, evidence, true)

	text, failure := v.generateWithRetry(ctx, prompt)
	if failure != nil {
		return *failure
	}

	result := ParseHybridResponse(text, evidence, v.cfg.TrustedSources)
	result.Cached = false

	cache[claimKey] = result
	v.store.Save(cache)

	return result
}

// generateWithRetry invokes the model with a bounded retry loop. Rate
// limits back off exponentially (or per the server's hint plus a buffer);
// a model-not-found error triggers rediscovery once, on the first attempt
// only; anything else is terminal immediately.
func (v *Verifier) generateWithRetry(ctx context.Context, prompt string) (string, *VerificationResult) {
	for attempt := 0; attempt < MaxGenerateAttempts; attempt++ {
		text, err := v.client.GenerateContent(ctx, v.ModelName(), prompt)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return "", failureResult("No response from model")
			}
			return text, nil
		}

		switch ClassifyModelError(err) {
		case ErrKindModelNotFound:
			if attempt > 0 {
				// Rediscovery already ran once this call; give up
				return "", failureResult(fmt.Sprintf(
					"Model not available. Please check your API key. Error: %s",
					truncateString(err.Error(), 200)))
			}
			text, rerr := v.rediscoverAndGenerate(ctx, prompt)
			if rerr != nil {
				return "", failureResult(fmt.Sprintf(
					"%v. Original error: %s", rerr, truncateString(err.Error(), 200)))
			}
			return text, nil

		case ErrKindRateLimit:
			if attempt >= MaxGenerateAttempts-1 {
				return "", failureResult(fmt.Sprintf(
					"Rate limit exceeded. Please wait a few minutes and try again. Error: %s",
					truncateString(err.Error(), 200)))
			}
			delay := RetryBaseDelay * time.Duration(1<<attempt)
			if hinted, ok := ParseRetryDelay(err); ok {
				delay = hinted + RetryDelayBuffer
			}
			Logger().Warning("Rate limit hit. Retrying in %s (attempt %d/%d)",
				delay, attempt+1, MaxGenerateAttempts)
			v.sleep(delay)

		default:
			return "", failureResult(fmt.Sprintf("AI analysis failed: %v", err))
		}
	}

	return "", failureResult("Failed to get model response after retries")
}

// rediscoverAndGenerate handles a poisoned cached model: both cache levels
// are cleared, the known-good list is retried, and the quota-bearing
// discovery call runs as last resort. The first model that produces text
// wins and is persisted to both cache levels.
func (v *Verifier) rediscoverAndGenerate(ctx context.Context, prompt string) (string, error) {
	Logger().Warning("Cached model is not available. Finding a working model...")
	v.resolver.Invalidate()

	for _, name := range v.resolver.KnownModels() {
		if text, ok := v.tryModel(ctx, name, prompt, []string{name}); ok {
			return text, nil
		}
	}

	models, err := v.client.ListGenerationModels(ctx)
	if err == nil {
		for _, name := range preferredFirst(v.resolver.KnownModels(), models) {
			if text, ok := v.tryModel(ctx, name, prompt, models); ok {
				return text, nil
			}
		}
	}

	return "", fmt.Errorf("No available models found. Please check your API key")
}

// tryModel generates with a candidate model and, on success, adopts it.
func (v *Verifier) tryModel(ctx context.Context, name, prompt string, availableModels []string) (string, bool) {
	text, err := v.client.GenerateContent(ctx, name, prompt)
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	v.setModel(name)
	v.resolver.Persist(name, availableModels)
	Logger().Info("Switched to model: %s", name)
	return text, true
}

// errorResult builds the well-formed ERROR verdict for a failure message.
func errorResult(msg string) VerificationResult {
	return VerificationResult{
		Status:        StatusError,
		Confidence:    0,
		Analysis:      "ERROR: " + msg,
		LiveEvidence:  []EvidenceArticle{},
		EvidenceCount: 0,
		Timestamp:     time.Now().Format(TimestampLayout),
		Sources:       []string{},
		Success:       false,
	}
}

func failureResult(msg string) *VerificationResult {
	result := errorResult(msg)
	return &result
}
