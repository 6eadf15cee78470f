package services

import (
	"fmt"
	"log"
	"sync"
	"time"

	"creativedesk/internal/models"

	"github.com/google/uuid"
)

// PairThreshold is the minimum prompt similarity for implicit image/video
// pairing. Scores at or below the threshold leave the video unpaired.
const PairThreshold = 0.7

// AssetHook is invoked after an asset is recorded. The session service spawns
// it on its own goroutine; the hook addresses the session object it was given,
// even after that session stops being current.
type AssetHook func(session *models.Session, asset models.GeneratedAsset)

// SessionService owns the process-wide current session and all mutations to
// session state. A single mutex serializes every read-modify-write, including
// late classification callbacks against historical sessions. Each mutation
// persists a full snapshot; persistence failures are logged and swallowed so
// the creative workflow is never blocked.
type SessionService struct {
	mu      sync.Mutex
	current *models.Session
	library *LibraryService
	onAsset AssetHook
	wg      sync.WaitGroup
}

// NewSessionService creates a new session service
func NewSessionService(library *LibraryService) *SessionService {
	return &SessionService{library: library}
}

// SetAssetHook registers the post-add hook (classification kick-off).
func (s *SessionService) SetAssetHook(hook AssetHook) {
	s.onAsset = hook
}

// StartSession closes the current session into the library (when it holds at
// least one asset) and makes a fresh empty session current.
func (s *SessionService) StartSession(name string) *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil && s.current.Meta.ImageCount+s.current.Meta.VideoCount > 0 {
		logPersistErr(s.current.ID, s.library.PersistSession(s.current))
		log.Printf("📦 [SESSION] Closed session %s (%d images, %d videos, %d pairs)",
			s.current.ID, s.current.Meta.ImageCount, s.current.Meta.VideoCount, s.current.Meta.PairCount)
	}

	s.current = newSession(name)
	log.Printf("✨ [SESSION] Started session %s ('%s')", s.current.ID, s.current.Name)
	return s.current
}

// Current returns the current session, lazily creating one so callers never
// see a "no session" state.
func (s *SessionService) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		s.current = newSession("")
		log.Printf("✨ [SESSION] Started session %s ('%s')", s.current.ID, s.current.Name)
	}
	return s.current
}

// AddImage records a generated image into the session and kicks off the
// asset hook.
func (s *SessionService) AddImage(session *models.Session, input models.AssetInput) models.GeneratedAsset {
	asset := newAsset(models.AssetKindImage, input)

	s.mu.Lock()
	session.Images = append(session.Images, asset)
	session.Meta.ImageCount = len(session.Images)
	session.Meta.Prompts = append(session.Meta.Prompts, input.Prompt)
	logPersistErr(session.ID, s.library.PersistSession(session))
	s.mu.Unlock()

	if m := GetMetrics(); m != nil {
		m.AssetsAdded.WithLabelValues(models.AssetKindImage).Inc()
	}

	s.spawnHook(session, asset)
	return asset
}

// AddVideo records a generated video. Pairing: an explicit image ID pairs
// immediately with no score; otherwise the best-scoring image above
// PairThreshold is paired, and anything at or below it leaves the video
// unpaired.
func (s *SessionService) AddVideo(session *models.Session, input models.AssetInput, explicitImageID string) (models.GeneratedAsset, error) {
	asset := newAsset(models.AssetKindVideo, input)

	s.mu.Lock()
	if explicitImageID != "" && session.ImageByID(explicitImageID) == nil {
		s.mu.Unlock()
		return models.GeneratedAsset{}, fmt.Errorf("image %s not found in session %s", explicitImageID, session.ID)
	}

	session.Videos = append(session.Videos, asset)
	session.Meta.VideoCount = len(session.Videos)
	session.Meta.Prompts = append(session.Meta.Prompts, input.Prompt)

	if explicitImageID != "" {
		session.Pairs = append(session.Pairs, models.Pair{
			ImageID:   explicitImageID,
			VideoID:   asset.ID,
			Prompt:    input.Prompt,
			CreatedAt: time.Now(),
		})
		if m := GetMetrics(); m != nil {
			m.PairsCreated.WithLabelValues("explicit").Inc()
		}
		log.Printf("🔗 [SESSION] Paired video %s with image %s (explicit)", asset.ID, explicitImageID)
	} else if imageID, score, ok := bestMatch(session.Images, input.Prompt); ok {
		similarity := score
		session.Pairs = append(session.Pairs, models.Pair{
			ImageID:    imageID,
			VideoID:    asset.ID,
			Prompt:     input.Prompt,
			Similarity: &similarity,
			CreatedAt:  time.Now(),
		})
		if m := GetMetrics(); m != nil {
			m.PairsCreated.WithLabelValues("similarity").Inc()
		}
		log.Printf("🔗 [SESSION] Paired video %s with image %s (similarity %.2f)", asset.ID, imageID, score)
	}

	session.Meta.PairCount = len(session.Pairs)
	logPersistErr(session.ID, s.library.PersistSession(session))
	s.mu.Unlock()

	if m := GetMetrics(); m != nil {
		m.AssetsAdded.WithLabelValues(models.AssetKindVideo).Inc()
	}

	s.spawnHook(session, asset)
	return asset, nil
}

// Annotate applies a serialized mutation to the session's aggregate metadata
// and persists the snapshot. Classification callbacks use this so two
// concurrently resolving results never interleave their read-modify-write.
func (s *SessionService) Annotate(session *models.Session, mutate func(meta *models.SessionMeta)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&session.Meta)
	logPersistErr(session.ID, s.library.PersistSession(session))
}

// Snapshot copies the session under the mutation lock. Callers that marshal
// session state use the copy; the live object stays writable to late
// classification callbacks.
func (s *SessionService) Snapshot(session *models.Session) models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return session.Clone()
}

// AssetIDs returns the IDs of every asset in the session, images first.
func (s *SessionService) AssetIDs(session *models.Session) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(session.Images)+len(session.Videos))
	for _, img := range session.Images {
		ids = append(ids, img.ID)
	}
	for _, vid := range session.Videos {
		ids = append(ids, vid.ID)
	}
	return ids
}

// Persist writes the current session snapshot, if one exists. Used by the
// autosave job.
func (s *SessionService) Persist() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}
	logPersistErr(s.current.ID, s.library.PersistSession(s.current))
}

// Drain waits for in-flight asset hooks (classification goroutines) to
// finish. Called on shutdown.
func (s *SessionService) Drain() {
	s.wg.Wait()
}

func (s *SessionService) spawnHook(session *models.Session, asset models.GeneratedAsset) {
	if s.onAsset == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.onAsset(session, asset)
	}()
}

// bestMatch returns the image whose prompt scores highest against the video
// prompt, when that score is strictly above PairThreshold.
func bestMatch(images []models.GeneratedAsset, prompt string) (imageID string, score float64, ok bool) {
	best := -1.0
	for i := range images {
		if sim := Similarity(images[i].Prompt, prompt); sim > best {
			best = sim
			imageID = images[i].ID
		}
	}
	if best > PairThreshold {
		return imageID, best, true
	}
	return "", 0, false
}

func newSession(name string) *models.Session {
	now := time.Now()
	if name == "" {
		name = "Session " + now.Format("Jan 2 15:04")
	}
	return &models.Session{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		Images:    []models.GeneratedAsset{},
		Videos:    []models.GeneratedAsset{},
		Pairs:     []models.Pair{},
	}
}

func newAsset(kind string, input models.AssetInput) models.GeneratedAsset {
	return models.GeneratedAsset{
		ID:           uuid.NewString(),
		Kind:         kind,
		ContentRef:   input.ContentRef,
		ThumbnailRef: input.ThumbnailRef,
		Prompt:       input.Prompt,
		Model:        input.Model,
		Width:        input.Width,
		Height:       input.Height,
		DurationSecs: input.DurationSecs,
		CreatedAt:    time.Now(),
		Metadata:     input.Metadata,
	}
}
