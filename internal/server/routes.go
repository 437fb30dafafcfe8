package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ICGNU3/rhiz-prototype-sub002/internal/store"
	"github.com/ICGNU3/rhiz-prototype-sub002/internal/trust"
)

type createContactRequest struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Tags    string `json:"tags"`
	Notes   string `json:"notes"`
}

func (req createContactRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
	)
}

func (s *Server) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contact := &store.Contact{
		UserID:  req.UserID,
		Name:    req.Name,
		Title:   req.Title,
		Company: req.Company,
		Email:   req.Email,
		Tags:    req.Tags,
		Notes:   req.Notes,
	}
	if err := s.db.CreateContact(contact); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": contact.ID})
}

func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	limit := queryInt(r, "limit", 100)

	contacts, err := s.db.ListContactsByActivity(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if contacts == nil {
		contacts = []store.ContactActivity{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}

type addInteractionRequest struct {
	InteractionType   string  `json:"interaction_type"`
	Notes             string  `json:"notes"`
	ResponseTimeHours float64 `json:"response_time_hours"`
}

func (req addInteractionRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.InteractionType, validation.Required),
		validation.Field(&req.ResponseTimeHours, validation.Min(0.0)),
	)
}

func (s *Server) handleAddInteraction(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathInt64(r, "contactID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	var req addInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := s.db.AddInteraction(contactID, req.InteractionType, req.Notes, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.engine.RecordInteractionImpact(contactID, req.InteractionType, req.ResponseTimeHours); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": in.ID})
}

type createGoalRequest struct {
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (req createGoalRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, validation.Required),
	)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	goal := &store.Goal{UserID: req.UserID, Title: req.Title, Description: req.Description}
	if err := s.db.CreateGoal(goal); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": goal.ID})
}

type recordContributionRequest struct {
	ContactID        int64  `json:"contact_id"`
	ContributionType string `json:"contribution_type"`
	ValueLevel       string `json:"value_level"`
	Description      string `json:"description"`
	Outcome          string `json:"outcome"`
}

// Unknown types and levels are not rejected here: the ledger's permissive
// policy scores them 0.0. Validation covers presence only.
func (req recordContributionRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.ContactID, validation.Required),
		validation.Field(&req.ContributionType, validation.Required),
		validation.Field(&req.ValueLevel, validation.Required),
	)
}

func (s *Server) handleRecordContribution(w http.ResponseWriter, r *http.Request) {
	var req recordContributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.ledger.Record(req.ContactID, req.ContributionType, req.ValueLevel, req.Description, req.Outcome)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, trust.ErrConflict) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"contribution_id": id})
}

type updateOutcomeRequest struct {
	Outcome string `json:"outcome"`
}

func (req updateOutcomeRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Outcome, validation.Required),
	)
}

func (s *Server) handleUpdateOutcome(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req updateOutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ok, err := s.ledger.UpdateOutcome(eventID, req.Outcome)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, trust.ErrConflict) {
			status = http.StatusConflict
		}
		writeError(w, status, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "contribution not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (s *Server) handleGetTrust(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathInt64(r, "contactID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}

	m, err := s.db.GetTrustMetric(contactID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "no trust metric for contact")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contact_id":      m.ContactID,
		"reliability":     m.Reliability,
		"responsiveness":  m.Responsiveness,
		"value_delivered": m.ValueDelivered,
		"consistency":     m.Consistency,
		"trust_score":     m.TrustScore,
		"trust_level":     trust.Level(m.TrustScore),
		"last_updated":    m.LastUpdated,
	})
}

func (s *Server) handleTrustHistory(w http.ResponseWriter, r *http.Request) {
	contactID, err := pathInt64(r, "contactID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid contact id")
		return
	}
	limit := queryInt(r, "limit", 50)

	records, err := s.db.TrustHistoryForContact(contactID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []store.TrustHistoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

func (s *Server) handleTopContributors(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	limit := queryInt(r, "limit", 10)

	top, err := s.db.TopContributors(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if top == nil {
		top = []store.TopContributor{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"top_contributors": top})
}

func (s *Server) handleTrustInsights(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	insights, err := s.engine.Insights(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleDecay(w http.ResponseWriter, r *http.Request) {
	updated, err := s.db.DecayTrustMetrics(30*24*time.Hour, 90*24*time.Hour)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"decayed": updated})
}

type generateInsightsRequest struct {
	UserID string `json:"user_id"`
}

func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	var req generateInsightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}

	// Always a well-formed envelope: success, empty, or safe fallback.
	result := s.insights.GenerateInsights(r.Context(), req.UserID)
	writeJSON(w, http.StatusOK, result)
}

func pathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
