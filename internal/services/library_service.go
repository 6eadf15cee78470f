package services

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"creativedesk/internal/database"
	"creativedesk/internal/models"
)

// LibraryService is the durable index of past sessions. Each persisted
// session gets an index row for listing plus the full JSON payload for
// recall. Writes overwrite by ID, no merge logic.
type LibraryService struct {
	db *database.DB
}

// NewLibraryService creates a new library service
func NewLibraryService(db *database.DB) *LibraryService {
	return &LibraryService{db: db}
}

// PersistSession upserts the index entry and full payload for a session.
func (s *LibraryService) PersistSession(session *models.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO library_sessions
			(id, name, created_at, image_count, video_count, pair_count,
			 detected_company, detected_project, company_id, project_id, payload, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			image_count = excluded.image_count,
			video_count = excluded.video_count,
			pair_count = excluded.pair_count,
			detected_company = excluded.detected_company,
			detected_project = excluded.detected_project,
			company_id = excluded.company_id,
			project_id = excluded.project_id,
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`, session.ID, session.Name, session.CreatedAt,
		session.Meta.ImageCount, session.Meta.VideoCount, session.Meta.PairCount,
		session.Meta.DetectedCompany, session.Meta.DetectedProject,
		nullableID(session.Meta.CompanyID), nullableID(session.Meta.ProjectID),
		string(payload))
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	if m := GetMetrics(); m != nil {
		m.SessionsPersisted.Inc()
	}
	return nil
}

// LoadSession retrieves a full session payload by ID. Missing is nil, nil.
func (s *LibraryService) LoadSession(id string) (*models.Session, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM library_sessions WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil // Not found, not an error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session payload: %w", err)
	}

	return &session, nil
}

// ListSessions returns index entries, newest first.
func (s *LibraryService) ListSessions() ([]models.LibraryEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, name, created_at, image_count, video_count, pair_count,
		       detected_company, detected_project, company_id, project_id, updated_at
		FROM library_sessions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query library: %w", err)
	}
	defer rows.Close()

	var entries []models.LibraryEntry
	for rows.Next() {
		var e models.LibraryEntry
		var detectedCompany, detectedProject sql.NullString
		var companyID, projectID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &e.CreatedAt, &e.ImageCount, &e.VideoCount,
			&e.PairCount, &detectedCompany, &detectedProject, &companyID, &projectID,
			&e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		e.DetectedCompany = detectedCompany.String
		e.DetectedProject = detectedProject.String
		e.CompanyID = companyID.Int64
		e.ProjectID = projectID.Int64
		entries = append(entries, e)
	}

	return entries, nil
}

// nullableID maps a zero CRM ID to SQL NULL so unlinked sessions don't carry
// a fake id 0.
func nullableID(id int64) interface{} {
	if id == 0 {
		return nil
	}
	return id
}

// logPersistErr is the shared swallow-and-log for fire-and-forget persistence.
func logPersistErr(sessionID string, err error) {
	if err != nil {
		log.Printf("⚠️ [LIBRARY] Failed to persist session %s: %v (in-memory state remains authoritative)", sessionID, err)
	}
}
