package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchService queries a SearXNG instance for web results. It is optional:
// when no URL is configured, Available reports false and Search returns an
// error, which callers treat as "validation unavailable".
type SearchService struct {
	baseURL string
	client  *http.Client
	cache   *cache.Cache
	limiter *rate.Limiter
}

// NewSearchService creates a search service backed by the given SearXNG URL.
// An empty URL disables the service.
func NewSearchService(baseURL string) *SearchService {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	return &SearchService{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		cache:   cache.New(5*time.Minute, 10*time.Minute),
		limiter: rate.NewLimiter(rate.Limit(2), 4), // 2 req/s, burst 4
	}
}

// Available reports whether a search backend is configured.
func (s *SearchService) Available() bool {
	return s.baseURL != ""
}

// Search runs a query and returns up to maxResults hits.
func (s *SearchService) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if !s.Available() {
		return nil, fmt.Errorf("no search backend configured")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	cacheKey := strings.ToLower(query)
	if cached, found := s.cache.Get(cacheKey); found {
		log.Printf("✅ [SEARCH] Cache hit for: '%s'", query)
		return limitResults(cached.([]SearchResult), maxResults), nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	searchURL := fmt.Sprintf("%s/search?q=%s&format=json&safesearch=1",
		s.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "CreativeDesk/1.0 (Bot)")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var payload struct {
		Results []SearchResult `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	s.cache.Set(cacheKey, payload.Results, cache.DefaultExpiration)

	log.Printf("✅ [SEARCH] Found %d results for '%s'", len(payload.Results), query)
	return limitResults(payload.Results, maxResults), nil
}

func limitResults(results []SearchResult, max int) []SearchResult {
	if max > 0 && len(results) > max {
		return results[:max]
	}
	return results
}
