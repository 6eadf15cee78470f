package services

import (
	"context"
	"log"
	"time"

	"creativedesk/internal/logging"
	"creativedesk/internal/models"

	cache "github.com/patrickmn/go-cache"
)

// classifierCacheKeyLen is the prompt prefix length used as the cache key,
// so near-duplicate prompts within a session reuse one provider call.
const classifierCacheKeyLen = 120

// companyValidationMinConfidence gates the web-search validation step.
const companyValidationMinConfidence = 0.5

// ClassifierService runs the multi-provider classification chain. Total
// failure (no provider configured, or all providers failed) is a normal
// outcome represented by a nil result; no error ever escapes to the caller.
type ClassifierService struct {
	registry *ProviderRegistry
	search   *SearchService
	filer    *AutoFileService
	sessions *SessionService
	cache    *cache.Cache // process-lifetime, no eviction
}

// NewClassifierService creates a new classifier service
func NewClassifierService(registry *ProviderRegistry, search *SearchService, filer *AutoFileService, sessions *SessionService) *ClassifierService {
	return &ClassifierService{
		registry: registry,
		search:   search,
		filer:    filer,
		sessions: sessions,
		cache:    cache.New(cache.NoExpiration, 0),
	}
}

// Classify analyzes the asset's originating prompt and applies the result to
// the session (metadata annotation plus auto-filing). Cache hits skip the
// provider call but still replay the application step, because filing must
// happen for every asset, not just the first with a given prompt prefix.
func (s *ClassifierService) Classify(ctx context.Context, session *models.Session, asset models.GeneratedAsset) *models.ClassificationResult {
	start := time.Now()
	if m := GetMetrics(); m != nil {
		m.ClassificationRequests.Inc()
		defer func() {
			m.ClassificationLatency.Observe(time.Since(start).Seconds())
		}()
	}

	key := cacheKey(asset.Prompt)
	if cached, found := s.cache.Get(key); found {
		result := cached.(*models.ClassificationResult)
		if m := GetMetrics(); m != nil {
			m.ClassificationCacheHit.Inc()
		}
		log.Printf("✅ [CLASSIFIER] Cache hit for asset %s", asset.ID)
		s.apply(session, asset, result)
		return result
	}

	result := s.classifyWithChain(ctx, asset.Prompt, asset.Kind)
	if result == nil {
		// Expected when nothing is configured or every provider failed
		log.Printf("ℹ️ [CLASSIFIER] No classification for asset %s", asset.ID)
		return nil
	}

	s.validateCompany(ctx, result)

	// Cache even partial results (e.g. no company detected) before applying
	s.cache.Set(key, result, cache.NoExpiration)

	s.apply(session, asset, result)

	logging.WithAsset(logging.WithSession(session.ID, session.Name), asset.ID, asset.Kind).Info(
		"classification applied",
		"provider", result.Provider,
		"company", result.CompanyName(),
	)
	return result
}

// classifyWithChain tries providers in priority order, first valid result
// wins. Provider errors are logged and trigger fallback, never propagation.
func (s *ClassifierService) classifyWithChain(ctx context.Context, prompt, assetKind string) *models.ClassificationResult {
	for _, provider := range s.registry.Chain() {
		if !provider.Configured() {
			continue
		}

		result, err := provider.TryClassify(ctx, prompt, assetKind)
		if err != nil {
			if m := GetMetrics(); m != nil {
				m.ClassificationErrors.WithLabelValues(provider.Name()).Inc()
			}
			log.Printf("⚠️ [CLASSIFIER] Provider '%s' failed: %v, trying next", provider.Name(), err)
			continue
		}
		if result == nil {
			if m := GetMetrics(); m != nil {
				m.ClassificationErrors.WithLabelValues(provider.Name()).Inc()
			}
			log.Printf("⚠️ [CLASSIFIER] Provider '%s' returned no result, trying next", provider.Name())
			continue
		}

		result.Provider = provider.Name()
		if m := GetMetrics(); m != nil {
			m.ClassificationWins.WithLabelValues(provider.Name()).Inc()
		}
		log.Printf("✅ [CLASSIFIER] Provider '%s' classified prompt (company: '%s')",
			provider.Name(), result.CompanyName())
		return result
	}

	return nil
}

// validateCompany enriches a confidently detected company with the top web
// search result. Best effort: failures leave the unvalidated data intact.
func (s *ClassifierService) validateCompany(ctx context.Context, result *models.ClassificationResult) {
	if s.search == nil || !s.search.Available() {
		return
	}
	if result.Company == nil || result.Company.Confidence <= companyValidationMinConfidence {
		return
	}

	results, err := s.search.Search(ctx, result.Company.Name+" company", 1)
	if err != nil {
		log.Printf("⚠️ [CLASSIFIER] Search validation failed for '%s': %v", result.Company.Name, err)
		return
	}
	if len(results) == 0 {
		return
	}

	top := results[0]
	result.Validation = &models.SearchValidation{
		Validated:   true,
		Website:     top.URL,
		Description: top.Content,
	}
	log.Printf("🔎 [CLASSIFIER] Validated company '%s' via %s", result.Company.Name, top.URL)
}

// apply annotates the session and runs auto-filing. Filing errors are logged
// only; the asset itself is already durable.
func (s *ClassifierService) apply(session *models.Session, asset models.GeneratedAsset, result *models.ClassificationResult) {
	s.sessions.Annotate(session, func(meta *models.SessionMeta) {
		meta.LastResult = result
		meta.Tags = mergeTags(meta.Tags, result.Tags)
	})

	company, _, err := s.filer.FileAsset(result, asset.ID, session)
	m := GetMetrics()
	switch {
	case err != nil:
		if m != nil {
			m.FilingResults.WithLabelValues("error").Inc()
		}
		log.Printf("⚠️ [CLASSIFIER] Auto-filing failed for asset %s: %v", asset.ID, err)
	case company == nil:
		if m != nil {
			m.FilingResults.WithLabelValues("skipped").Inc()
		}
	default:
		if m != nil {
			m.FilingResults.WithLabelValues("filed").Inc()
		}
	}
}

func cacheKey(prompt string) string {
	if len(prompt) > classifierCacheKeyLen {
		return prompt[:classifierCacheKeyLen]
	}
	return prompt
}

func mergeTags(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t] = struct{}{}
	}
	for _, t := range incoming {
		if _, ok := seen[t]; !ok {
			existing = append(existing, t)
			seen[t] = struct{}{}
		}
	}
	return existing
}
