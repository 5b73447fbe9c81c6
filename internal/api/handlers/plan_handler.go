package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/isdelr/planforge-be/internal/auth"
	"github.com/isdelr/planforge-be/internal/completion"
	"github.com/isdelr/planforge-be/internal/models"
	"github.com/isdelr/planforge-be/internal/planformat"
	"github.com/isdelr/planforge-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PlanHandler handles HTTP requests for plan generation and the saved
// plan list.
type PlanHandler struct {
	service services.PlanServiceProvider
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(service services.PlanServiceProvider) *PlanHandler {
	return &PlanHandler{service: service}
}

// GeneratePayload defines the structure for plan generation requests.
type GeneratePayload struct {
	BusinessIdea string `json:"businessIdea"`
	Location     string `json:"location"`
}

// ExpandPayload defines the structure for section expansion requests.
type ExpandPayload struct {
	SectionTitle string `json:"sectionTitle"`
	BusinessIdea string `json:"businessIdea"`
	Location     string `json:"location"`
}

// ChatPayload defines the structure for chat requests.
type ChatPayload struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

// SavePayload defines the structure for save requests. PlanContent is
// kept raw so the service can validate its shape.
type SavePayload struct {
	PlanContent json.RawMessage `json:"planContent"`
}

// DeletePayload defines the structure for delete requests.
type DeletePayload struct {
	PlanIndex int `json:"planIndex"`
}

// Generate handles the request to generate a full business plan.
func (h *PlanHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var payload GeneratePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.BusinessIdea == "" || payload.Location == "" {
		writeError(w, http.StatusBadRequest, "Business idea and location are required")
		return
	}

	log.Info().Str("business_idea", payload.BusinessIdea).Str("location", payload.Location).
		Msg("Generating business plan")

	plan, err := h.service.GeneratePlan(r.Context(), payload.BusinessIdea, payload.Location)
	if err != nil {
		h.writeUpstreamError(w, err, "An error occurred while generating the business plan")
		return
	}

	// The raw text stays in the response for older clients; newer ones
	// render the pre-split sections directly.
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"businessPlan": plan,
		"sections":     planformat.Split(plan),
	})
}

// Expand handles the request to expand a single plan section.
func (h *PlanHandler) Expand(w http.ResponseWriter, r *http.Request) {
	var payload ExpandPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.SectionTitle == "" {
		writeError(w, http.StatusBadRequest, "Section title is required")
		return
	}

	expanded, err := h.service.ExpandSection(r.Context(), payload.SectionTitle, payload.BusinessIdea, payload.Location)
	if err != nil {
		h.writeUpstreamError(w, err, "An error occurred while expanding the section")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"expandedContent": expanded})
}

// Chat handles a follow-up question grounded in the current plan text.
func (h *PlanHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var payload ChatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if payload.Question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	answer, err := h.service.AnswerChat(r.Context(), payload.Question, payload.Context)
	if err != nil {
		h.writeUpstreamError(w, err, "An error occurred while processing your question")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// Save appends a plan to the authenticated user's saved list.
func (h *PlanHandler) Save(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload SavePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SavePlan(claims.UserID, payload.PlanContent); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidPlanContent):
			writeError(w, http.StatusBadRequest, "Invalid plan content")
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to save plan")
			writeError(w, http.StatusInternalServerError, "Failed to save plan")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Plan saved successfully"})
}

// Profile returns the user's email and raw saved plans.
func (h *PlanHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	profile, err := h.service.GetProfile(claims.UserID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to load profile")
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// List returns the user's saved plans decoded, with stable ids.
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	entries, err := h.service.ListPlans(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list plans")
		writeError(w, http.StatusInternalServerError, "Failed to list plans")
		return
	}
	if entries == nil {
		entries = []models.PlanEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": entries})
}

// Delete removes the saved plan at the given position.
func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "Could not retrieve user from token")
		return
	}

	var payload DeletePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.DeletePlan(claims.UserID, payload.PlanIndex); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidIndex):
			writeError(w, http.StatusBadRequest, "Invalid plan index")
		case errors.Is(err, services.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			log.Error().Err(err).Str("user_id", claims.UserID).Int("index", payload.PlanIndex).
				Msg("Failed to delete plan")
			writeError(w, http.StatusInternalServerError, "Failed to delete plan")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Plan deleted successfully"})
}

// writeUpstreamError maps a completion failure to a 500 with detail.
func (h *PlanHandler) writeUpstreamError(w http.ResponseWriter, err error, msg string) {
	var upstream *completion.UpstreamError
	if errors.As(err, &upstream) {
		log.Error().Int("upstream_status", upstream.Status).Str("detail", upstream.Detail).Msg(msg)
		writeErrorDetails(w, http.StatusInternalServerError, msg, upstream.Detail)
		return
	}
	log.Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, msg)
}
