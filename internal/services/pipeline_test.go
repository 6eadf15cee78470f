package services

import (
	"context"
	"testing"

	"creativedesk/internal/models"
)

// End-to-end: two assets with related but not near-identical prompts flow
// through pairing, classification, and auto-filing via the asset hook.
func TestPipeline_ImageAndVideo(t *testing.T) {
	provider := &fakeProvider{
		name:       "gemini",
		configured: true,
		result: &models.ClassificationResult{
			Company: &models.CompanyCandidate{Name: "Acme Corp", Confidence: 0.9},
			Project: &models.ProjectCandidate{Name: "Summer Sale", Type: "campaign"},
			Tags:    []string{"summer", "sale"},
		},
	}

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

	session := sessions.Current()
	img := sessions.AddImage(session, models.AssetInput{
		ContentRef: "banner.png",
		Prompt:     "Acme Corp summer sale banner",
	})
	vid, err := sessions.AddVideo(session, models.AssetInput{
		ContentRef: "spot.mp4",
		Prompt:     "Acme Corp summer sale video",
	}, "")
	if err != nil {
		t.Fatalf("AddVideo failed: %v", err)
	}

	sessions.Drain()

	// 4 shared tokens of 6 total is 0.667, below the pairing threshold.
	if len(session.Pairs) != 0 {
		t.Errorf("Expected 0 pairs for these prompts, got %d", len(session.Pairs))
	}

	companies, err := crm.ListCompanies()
	if err != nil {
		t.Fatalf("ListCompanies failed: %v", err)
	}
	if len(companies) != 1 {
		t.Fatalf("Expected exactly 1 company, got %d", len(companies))
	}
	company := companies[0]
	if company.Name != "Acme Corp" {
		t.Errorf("Expected company 'Acme Corp', got '%s'", company.Name)
	}

	ids, err := crm.CompanyAssetIDs(company.ID)
	if err != nil {
		t.Fatalf("CompanyAssetIDs failed: %v", err)
	}
	linked := make(map[string]bool)
	for _, id := range ids {
		linked[id] = true
	}
	if !linked[img.ID] || !linked[vid.ID] {
		t.Errorf("Expected both assets linked to the company, got %v", ids)
	}

	if session.Meta.DetectedCompany != "Acme Corp" || session.Meta.CompanyID != company.ID {
		t.Errorf("Session meta not annotated by pipeline: %+v", session.Meta)
	}

	// The session snapshot in the library reflects the final state.
	loaded, err := library.LoadSession(session.ID)
	if err != nil {
		t.Fatalf("LoadSession failed: %v", err)
	}
	if loaded == nil || loaded.Meta.DetectedCompany != "Acme Corp" {
		t.Errorf("Persisted snapshot missing classification outcome: %+v", loaded)
	}
	if loaded.Meta.ImageCount != 1 || loaded.Meta.VideoCount != 1 || loaded.Meta.PairCount != 0 {
		t.Errorf("Persisted counts wrong: %+v", loaded.Meta)
	}
}
