package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"creativedesk/internal/models"
)

type fakeProvider struct {
	name       string
	configured bool
	result     *models.ClassificationResult
	err        error
	calls      int
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) TryClassify(ctx context.Context, prompt, assetKind string) (*models.ClassificationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func setupClassifier(t *testing.T, chain ...ClassifierProvider) (*ClassifierService, *CRMService, *SessionService, func()) {
	db, cleanup := setupTestDB(t)
	crm := NewCRMService(db)
	sessions := NewSessionService(NewLibraryService(db))
	filer := NewAutoFileService(crm, sessions)
	registry := NewProviderRegistryWithChain(chain)
	classifier := NewClassifierService(registry, nil, filer, sessions)
	return classifier, crm, sessions, cleanup
}

func TestClassifierService_FallbackFirstValidWins(t *testing.T) {
	failing := &fakeProvider{name: "gemini", configured: true, err: errors.New("quota exceeded")}
	skipped := &fakeProvider{name: "openai", configured: false}
	winning := &fakeProvider{name: "anthropic", configured: true, result: acmeClassification()}

	classifier, _, sessions, cleanup := setupClassifier(t, failing, skipped, winning)
	defer cleanup()

	session := sessions.Current()
	asset := sessions.AddImage(session, models.AssetInput{ContentRef: "img.png", Prompt: "acme banner"})

	result := classifier.Classify(context.Background(), session, asset)
	if result == nil {
		t.Fatal("Expected a classification result, got nil")
	}
	if result.Provider != "anthropic" {
		t.Errorf("Expected winning provider 'anthropic', got '%s'", result.Provider)
	}
	if failing.calls != 1 {
		t.Errorf("Expected failing provider tried once, got %d", failing.calls)
	}
	if skipped.calls != 0 {
		t.Errorf("Unconfigured provider must be skipped, got %d calls", skipped.calls)
	}
	if winning.calls != 1 {
		t.Errorf("Expected winning provider called once, got %d", winning.calls)
	}
}

func TestClassifierService_NilResultFallsThrough(t *testing.T) {
	// A provider returning (nil, nil) counts as a failed attempt, not a win.
	empty := &fakeProvider{name: "gemini", configured: true}
	winning := &fakeProvider{name: "openai", configured: true, result: acmeClassification()}

	classifier, _, sessions, cleanup := setupClassifier(t, empty, winning)
	defer cleanup()

	session := sessions.Current()
	asset := sessions.AddImage(session, models.AssetInput{ContentRef: "img.png", Prompt: "acme banner"})

	result := classifier.Classify(context.Background(), session, asset)
	if result == nil {
		t.Fatal("Expected the next provider to win after a nil result")
	}
	if result.Provider != "openai" {
		t.Errorf("Expected provider 'openai', got '%s'", result.Provider)
	}
	if empty.calls != 1 {
		t.Errorf("Expected nil-result provider tried once, got %d", empty.calls)
	}
}

func TestClassifierService_TotalFailureIsNil(t *testing.T) {
	a := &fakeProvider{name: "gemini", configured: true, err: errors.New("timeout")}
	b := &fakeProvider{name: "openai", configured: true, err: errors.New("bad gateway")}

	classifier, crm, sessions, cleanup := setupClassifier(t, a, b)
	defer cleanup()

	session := sessions.Current()
	asset := sessions.AddImage(session, models.AssetInput{ContentRef: "img.png", Prompt: "acme banner"})

	if result := classifier.Classify(context.Background(), session, asset); result != nil {
		t.Errorf("Expected nil on total provider failure, got %+v", result)
	}

	companies, err := crm.ListCompanies()
	if err != nil {
		t.Fatalf("ListCompanies failed: %v", err)
	}
	if len(companies) != 0 {
		t.Errorf("Total failure must not file anything, got %d companies", len(companies))
	}
}

func TestClassifierService_EmptyChainIsNil(t *testing.T) {
	classifier, _, sessions, cleanup := setupClassifier(t)
	defer cleanup()

	session := sessions.Current()
	asset := sessions.AddImage(session, models.AssetInput{ContentRef: "img.png", Prompt: "acme banner"})

	if result := classifier.Classify(context.Background(), session, asset); result != nil {
		t.Errorf("Expected nil with no providers, got %+v", result)
	}
}

func TestClassifierService_CacheHitSkipsProviderButRefiles(t *testing.T) {
	provider := &fakeProvider{name: "gemini", configured: true, result: acmeClassification()}

	classifier, crm, sessions, cleanup := setupClassifier(t, provider)
	defer cleanup()

	session := sessions.Current()
	first := sessions.AddImage(session, models.AssetInput{ContentRef: "a.png", Prompt: "acme banner"})
	second := sessions.AddImage(session, models.AssetInput{ContentRef: "b.png", Prompt: "acme banner"})

	classifier.Classify(context.Background(), session, first)
	result := classifier.Classify(context.Background(), session, second)

	if provider.calls != 1 {
		t.Errorf("Expected a single provider call across identical prompts, got %d", provider.calls)
	}
	if result == nil || result.Provider != "gemini" {
		t.Errorf("Cache hit must return the original result, got %+v", result)
	}

	// Filing replays on the cache hit, so both assets end up linked.
	company, err := crm.FindCompanyByName("Acme Corp")
	if err != nil || company == nil {
		t.Fatalf("Expected filed company, got %+v (err %v)", company, err)
	}
	ids, err := crm.CompanyAssetIDs(company.ID)
	if err != nil {
		t.Fatalf("CompanyAssetIDs failed: %v", err)
	}
	linked := make(map[string]bool)
	for _, id := range ids {
		linked[id] = true
	}
	if !linked[first.ID] || !linked[second.ID] {
		t.Errorf("Expected both assets linked after cache-hit refiling, got %v", ids)
	}
}

func TestClassifierService_CacheKeyIsPromptPrefix(t *testing.T) {
	provider := &fakeProvider{name: "gemini", configured: true, result: acmeClassification()}

	classifier, _, sessions, cleanup := setupClassifier(t, provider)
	defer cleanup()

	base := strings.Repeat("x ", classifierCacheKeyLen/2) // well past the key length
	session := sessions.Current()
	first := sessions.AddImage(session, models.AssetInput{ContentRef: "a.png", Prompt: base + "tail one"})
	second := sessions.AddImage(session, models.AssetInput{ContentRef: "b.png", Prompt: base + "tail two"})

	classifier.Classify(context.Background(), session, first)
	classifier.Classify(context.Background(), session, second)

	if provider.calls != 1 {
		t.Errorf("Prompts sharing a %d-char prefix must share a cache entry, got %d calls", classifierCacheKeyLen, provider.calls)
	}
}

func TestClassifierService_FailureNotCached(t *testing.T) {
	provider := &fakeProvider{name: "gemini", configured: true, err: errors.New("flaky")}

	classifier, _, sessions, cleanup := setupClassifier(t, provider)
	defer cleanup()

	session := sessions.Current()
	asset := sessions.AddImage(session, models.AssetInput{ContentRef: "a.png", Prompt: "acme banner"})

	classifier.Classify(context.Background(), session, asset)

	// Provider recovers: the retry must reach it instead of a cached nil.
	provider.err = nil
	provider.result = acmeClassification()

	result := classifier.Classify(context.Background(), session, asset)
	if result == nil {
		t.Fatal("Expected retry to succeed after transient provider failure")
	}
	if provider.calls != 2 {
		t.Errorf("Expected 2 provider calls (failure not cached), got %d", provider.calls)
	}
}

// gatedProvider blocks TryClassify until released, to stage a classification
// that resolves after the session it belongs to was closed.
type gatedProvider struct {
	release chan struct{}
	result  *models.ClassificationResult
}

func (g *gatedProvider) Name() string     { return "gemini" }
func (g *gatedProvider) Configured() bool { return true }

func (g *gatedProvider) TryClassify(ctx context.Context, prompt, assetKind string) (*models.ClassificationResult, error) {
	<-g.release
	return g.result, nil
}

func TestClassifierService_LateResultLandsOnClosedSession(t *testing.T) {
	provider := &gatedProvider{release: make(chan struct{}), result: acmeClassification()}

	db, cleanup := setupTestDB(t)
	defer cleanup()
	crm := NewCRMService(db)
	library := NewLibraryService(db)
	sessions := NewSessionService(library)
	filer := NewAutoFileService(crm, sessions)
	classifier := NewClassifierService(NewProviderRegistryWithChain([]ClassifierProvider{provider}), nil, filer, sessions)

	sessions.SetAssetHook(func(session *models.Session, asset models.GeneratedAsset) {
		classifier.Classify(context.Background(), session, asset)
	})

	old := sessions.Current()
	sessions.AddImage(old, models.AssetInput{ContentRef: "img.png", Prompt: "acme banner"})

	// Close the session while its classification is still in flight.
	fresh := sessions.StartSession("next")

	close(provider.release)
	sessions.Drain()

	loaded, err := library.LoadSession(old.ID)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Closed session missing from library")
	}
	if loaded.Meta.DetectedCompany != "Acme Corp" {
		t.Errorf("Late classification not persisted on the closed session: %+v", loaded.Meta)
	}

	if fresh.Meta.DetectedCompany != "" || fresh.Meta.LastResult != nil {
		t.Errorf("Late classification leaked onto the new current session: %+v", fresh.Meta)
	}
}

func TestClassifierService_AnnotatesSessionMeta(t *testing.T) {
	provider := &fakeProvider{name: "gemini", configured: true, result: acmeClassification()}

	classifier, _, sessions, cleanup := setupClassifier(t, provider)
	defer cleanup()

	session := sessions.Current()
	asset := sessions.AddImage(session, models.AssetInput{ContentRef: "img.png", Prompt: "acme banner"})

	classifier.Classify(context.Background(), session, asset)

	if session.Meta.LastResult == nil || session.Meta.LastResult.Provider != "gemini" {
		t.Errorf("Expected last result recorded on session meta, got %+v", session.Meta.LastResult)
	}
	found := false
	for _, tag := range session.Meta.Tags {
		if tag == "banner" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected classification tags merged into session meta, got %v", session.Meta.Tags)
	}
}
