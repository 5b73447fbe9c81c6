package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/planforge-be/internal/completion"
	"github.com/isdelr/planforge-be/internal/models"
	"github.com/isdelr/planforge-be/internal/planformat"
)

// Profile is the saved-plan view of an account: the email plus every
// serialized blob in insertion order. Blobs are returned raw; the
// client decodes them with the same fallback rules as ListPlans.
type Profile struct {
	Email      string   `json:"email"`
	SavedPlans []string `json:"savedPlans"`
}

// PlanServiceProvider defines the interface for plan services.
type PlanServiceProvider interface {
	GeneratePlan(ctx context.Context, businessIdea, location string) (string, error)
	ExpandSection(ctx context.Context, sectionTitle, businessIdea, location string) (string, error)
	AnswerChat(ctx context.Context, question, planContext string) (string, error)
	SavePlan(userID string, content []byte) error
	ListPlans(userID string) ([]models.PlanEntry, error)
	GetProfile(userID string) (Profile, error)
	DeletePlan(userID string, index int) error
}

// PlanService orchestrates plan generation against the completion
// backend and owns the per-user saved-plan store.
type PlanService struct {
	db         *sql.DB
	completion completion.Provider
}

// NewPlanService creates a new PlanService.
func NewPlanService(db *sql.DB, provider completion.Provider) *PlanService {
	return &PlanService{db: db, completion: provider}
}

// GeneratePlan produces the raw text of a full business plan. The
// caller splits it into sections for display; nothing is persisted.
func (s *PlanService) GeneratePlan(ctx context.Context, businessIdea, location string) (string, error) {
	return s.completion.GeneratePlan(ctx, businessIdea, location)
}

// ExpandSection produces elaborated text for one section. Purely
// additive: the stored plans are untouched and the client merges the
// result into its in-progress plan before saving.
func (s *PlanService) ExpandSection(ctx context.Context, sectionTitle, businessIdea, location string) (string, error) {
	return s.completion.ExpandSection(ctx, sectionTitle, businessIdea, location)
}

// AnswerChat answers a question grounded in the supplied plan text.
// Calls are independent; no conversation state is kept server-side.
func (s *PlanService) AnswerChat(ctx context.Context, question, planContext string) (string, error) {
	return s.completion.AnswerQuestion(ctx, question, planContext)
}

// SavePlan validates and appends one plan to the user's saved list.
// Existing entries are never overwritten.
func (s *PlanService) SavePlan(userID string, content []byte) error {
	plan, err := planformat.DecodeStrict(content)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPlanContent, err)
	}

	if err := s.userExists(userID); err != nil {
		return err
	}

	encoded, err := planformat.Encode(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	_, err = s.db.Exec("INSERT INTO saved_plans(id, user_id, content) VALUES(?, ?, ?)",
		uuid.New().String(), userID, encoded)
	return err
}

// ListPlans returns the user's plans in insertion order, each decoded
// with the total fallback so a malformed legacy blob can never break
// the listing.
func (s *PlanService) ListPlans(userID string) ([]models.PlanEntry, error) {
	rows, err := s.db.Query(
		"SELECT id, content, created_at FROM saved_plans WHERE user_id = ? ORDER BY created_at, rowid", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.PlanEntry
	for rows.Next() {
		var entry models.PlanEntry
		var content string
		if err := rows.Scan(&entry.ID, &content, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.Plan = planformat.Decode(content)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetProfile returns the user's email and raw serialized plans.
func (s *PlanService) GetProfile(userID string) (Profile, error) {
	var profile Profile
	row := s.db.QueryRow("SELECT email FROM users WHERE id = ?", userID)
	if err := row.Scan(&profile.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, ErrUserNotFound
		}
		return Profile{}, err
	}

	rows, err := s.db.Query(
		"SELECT content FROM saved_plans WHERE user_id = ? ORDER BY created_at, rowid", userID)
	if err != nil {
		return Profile{}, err
	}
	defer rows.Close()

	profile.SavedPlans = []string{}
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return Profile{}, err
		}
		profile.SavedPlans = append(profile.SavedPlans, content)
	}
	return profile, rows.Err()
}

// DeletePlan removes the plan at the given position in the user's
// list. The position is resolved to the row's stable id and deletion
// happens by id, so a racing delete from the same account can only
// ever remove the row it resolved, never a shifted neighbor.
func (s *PlanService) DeletePlan(userID string, index int) error {
	if index < 0 {
		return ErrInvalidIndex
	}

	if err := s.userExists(userID); err != nil {
		return err
	}

	var planID string
	row := s.db.QueryRow(
		"SELECT id FROM saved_plans WHERE user_id = ? ORDER BY created_at, rowid LIMIT 1 OFFSET ?",
		userID, index)
	if err := row.Scan(&planID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidIndex
		}
		return err
	}

	_, err := s.db.Exec("DELETE FROM saved_plans WHERE id = ?", planID)
	return err
}

func (s *PlanService) userExists(userID string) error {
	var one int
	row := s.db.QueryRow("SELECT 1 FROM users WHERE id = ?", userID)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
