package services

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"creativedesk/internal/models"

	"github.com/fsnotify/fsnotify"
)

// ProviderRegistry holds the ordered classifier provider chain and supports
// hot-reloading it from a providers file. Reads take a snapshot so in-flight
// classifications keep the chain they started with.
type ProviderRegistry struct {
	mu      sync.RWMutex
	chain   []ClassifierProvider
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewProviderRegistry builds a registry from the initial provider configs.
func NewProviderRegistry(configs []models.ProviderConfig) *ProviderRegistry {
	return &ProviderRegistry{
		chain: BuildProviderChain(configs),
		done:  make(chan struct{}),
	}
}

// NewProviderRegistryWithChain wraps an explicit chain, for embedders that
// construct providers themselves.
func NewProviderRegistryWithChain(chain []ClassifierProvider) *ProviderRegistry {
	return &ProviderRegistry{
		chain: chain,
		done:  make(chan struct{}),
	}
}

// Chain returns the current provider chain snapshot, priority order.
func (r *ProviderRegistry) Chain() []ClassifierProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chain
}

// Reload replaces the chain with a newly built one.
func (r *ProviderRegistry) Reload(configs []models.ProviderConfig) {
	chain := BuildProviderChain(configs)
	r.mu.Lock()
	r.chain = chain
	r.mu.Unlock()
	log.Printf("🔄 [CLASSIFIER] Provider chain reloaded (%d providers)", len(chain))
}

// Watch hot-reloads the chain whenever the providers file changes.
// load re-reads the file; load errors keep the existing chain.
// The parent directory is watched, not the file itself, so the watch
// survives editors that replace the file via rename.
func (r *ProviderRegistry) Watch(path string, load func() ([]models.ProviderConfig, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}
	r.watcher = watcher

	fileName := filepath.Base(path)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != fileName {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				configs, err := load()
				if err != nil {
					log.Printf("⚠️ [CLASSIFIER] Failed to reload providers file: %v", err)
					continue
				}
				r.Reload(configs)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [CLASSIFIER] Provider watcher error: %v", err)
			case <-r.done:
				return
			}
		}
	}()

	log.Printf("👀 [CLASSIFIER] Watching providers file: %s", path)
	return nil
}

// Close stops the file watcher, if any.
func (r *ProviderRegistry) Close() {
	close(r.done)
	if r.watcher != nil {
		r.watcher.Close()
	}
}
