package services

import (
	"testing"
)

func TestCRMService_FindCompanyByName_CaseInsensitive(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	crm := NewCRMService(db)

	created, err := crm.CreateCompany("Acme Corp", "https://acme.example", "", "", nil)
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	for _, name := range []string{"Acme Corp", "acme corp", "  ACME CORP  "} {
		found, err := crm.FindCompanyByName(name)
		if err != nil {
			t.Fatalf("FindCompanyByName(%q) failed: %v", name, err)
		}
		if found == nil {
			t.Fatalf("FindCompanyByName(%q) returned nil", name)
		}
		if found.ID != created.ID {
			t.Errorf("FindCompanyByName(%q) returned wrong company %d", name, found.ID)
		}
	}
}

func TestCRMService_FindCompanyByName_MissingIsNil(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	crm := NewCRMService(db)

	found, err := crm.FindCompanyByName("Nobody Inc")
	if err != nil {
		t.Fatalf("FindCompanyByName failed: %v", err)
	}
	if found != nil {
		t.Errorf("Expected nil for missing company, got %+v", found)
	}
}

func TestCRMService_ProjectsScopedToCompany(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	crm := NewCRMService(db)

	acme, err := crm.CreateCompany("Acme", "", "", "", nil)
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}
	globex, err := crm.CreateCompany("Globex", "", "", "", nil)
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	// Same project name under two companies must coexist.
	if _, err := crm.CreateProject(acme.ID, "Summer Sale", "campaign", nil); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := crm.CreateProject(globex.ID, "Summer Sale", "campaign", nil); err != nil {
		t.Fatalf("CreateProject under second company failed: %v", err)
	}

	found, err := crm.FindProjectByName(acme.ID, "summer sale")
	if err != nil {
		t.Fatalf("FindProjectByName failed: %v", err)
	}
	if found == nil || found.CompanyID != acme.ID {
		t.Errorf("Project lookup crossed company scope: %+v", found)
	}

	other, err := crm.FindProjectByName(globex.ID, "SUMMER SALE")
	if err != nil {
		t.Fatalf("FindProjectByName failed: %v", err)
	}
	if other == nil || other.CompanyID != globex.ID {
		t.Errorf("Project lookup crossed company scope: %+v", other)
	}
}

func TestCRMService_LinkAssetIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	crm := NewCRMService(db)

	company, err := crm.CreateCompany("Acme", "", "", "", nil)
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := crm.LinkAssetToCompany("asset-1", company.ID); err != nil {
			t.Fatalf("LinkAssetToCompany failed on attempt %d: %v", i, err)
		}
	}

	ids, err := crm.CompanyAssetIDs(company.ID)
	if err != nil {
		t.Fatalf("CompanyAssetIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "asset-1" {
		t.Errorf("Expected single linked asset, got %v", ids)
	}
}

func TestCRMService_TagsRoundTrip(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	crm := NewCRMService(db)

	created, err := crm.CreateCompany("Acme", "", "", "advertising", []string{"ai-generated", "priority"})
	if err != nil {
		t.Fatalf("CreateCompany failed: %v", err)
	}

	loaded, err := crm.GetCompanyByID(created.ID)
	if err != nil {
		t.Fatalf("GetCompanyByID failed: %v", err)
	}
	if loaded == nil {
		t.Fatal("Expected company, got nil")
	}
	if len(loaded.Tags) != 2 || loaded.Tags[0] != "ai-generated" {
		t.Errorf("Tags did not round-trip: %v", loaded.Tags)
	}
	if loaded.Industry != "advertising" {
		t.Errorf("Expected industry 'advertising', got '%s'", loaded.Industry)
	}
}
