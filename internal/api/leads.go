package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/valuation-api/internal/model"
	"github.com/sells-group/valuation-api/pkg/salesforce"
)

type leadRequest struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	ValuationID string `json:"valuation_id"`
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	if req.ValuationID != "" {
		if _, err := s.store.GetValuation(r.Context(), req.ValuationID); err != nil {
			writeError(w, http.StatusBadRequest, "unknown valuation_id")
			return
		}
	}

	lead, err := s.store.CreateLead(r.Context(), req.Email, req.Name, req.ValuationID)
	if err != nil {
		s.log.Error("persist lead failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to store lead")
		return
	}

	// Push to the CRM off the request path; the wizard should never wait on
	// Salesforce.
	if s.sf != nil {
		go s.pushLead(lead)
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":     lead.ID,
		"status": string(lead.Status),
	})
}

func (s *Server) pushLead(lead *model.Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lastName := lead.Name
	if lastName == "" {
		lastName = lead.Email
	}
	company := lead.Name
	if company == "" {
		company = "Individual"
	}

	fields := map[string]any{
		"Email":      lead.Email,
		"LastName":   lastName,
		"Company":    company,
		"LeadSource": "Valuation Tool",
	}
	if lead.ValuationID != "" {
		fields["Description"] = "Valuation " + lead.ValuationID
	}

	sfID, err := salesforce.CreateLead(ctx, s.sf, fields)
	if err != nil {
		s.log.Error("salesforce push failed",
			zap.String("lead_id", lead.ID),
			zap.Error(err),
		)
		if markErr := s.store.MarkLeadSyncFailed(ctx, lead.ID); markErr != nil {
			s.log.Error("mark lead failed", zap.String("lead_id", lead.ID), zap.Error(markErr))
		}
		return
	}

	if err := s.store.MarkLeadSynced(ctx, lead.ID, sfID); err != nil {
		s.log.Error("mark lead synced", zap.String("lead_id", lead.ID), zap.Error(err))
		return
	}

	s.log.Info("lead pushed to salesforce",
		zap.String("lead_id", lead.ID),
		zap.String("salesforce_id", sfID),
	)
}
