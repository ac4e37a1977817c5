package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/matching"
	"github.com/philipposk/ThatJob/internal/types"
)

type analyzeRequest struct {
	URL  string `json:"url" validate:"omitempty,url"`
	Text string `json:"text" validate:"omitempty,min=1"`
}

// handleAnalyze turns a job posting URL or pasted text into a structured
// posting. Account holders get it persisted; guests get it inline only.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req analyzeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if (req.URL == "") == (req.Text == "") {
		writeError(w, http.StatusBadRequest, "provide exactly one of url or text")
		return
	}

	var posting *types.JobPosting
	if req.URL != "" {
		posting, err = s.analyzer.FromURL(r.Context(), identity.UserID, req.URL)
	} else {
		posting, err = s.analyzer.FromText(r.Context(), identity.UserID, req.Text)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// Snapshot company research at analysis time so generation still has
	// context if later research fails.
	if posting.Company != nil && *posting.Company != "" {
		posting.CompanyInfo = s.researcher.Company(r.Context(), *posting.Company)
	}

	if !identity.Guest {
		if err := s.store.CreateJobPosting(r.Context(), posting); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to store job posting")
			return
		}
	}
	writeJSON(w, http.StatusCreated, posting)
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeJSON(w, http.StatusOK, []types.JobPosting{})
		return
	}

	postings, err := s.store.JobPostingsByUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list job postings")
		return
	}
	if postings == nil {
		postings = []types.JobPosting{}
	}
	writeJSON(w, http.StatusOK, postings)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	_, posting, ok := s.loadJob(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, posting)
}

// handleMatchingScore computes the deterministic match between the caller's
// profile and a stored posting, persisting the latest score. A previously
// stored score is served as-is unless ?refresh=true.
func (s *Server) handleMatchingScore(w http.ResponseWriter, r *http.Request) {
	identity, posting, ok := s.loadJob(w, r)
	if !ok {
		return
	}

	if !identity.Guest && r.URL.Query().Get("refresh") != "true" {
		stored, err := s.store.GetMatchingScore(r.Context(), identity.UserID, posting.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load matching score")
			return
		}
		if stored != nil {
			writeJSON(w, http.StatusOK, stored)
			return
		}
	}

	extracted, err := s.extractor.Extract(r.Context(), s.materialSource(identity, nil))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	score := matching.Score(extracted, posting.Requirements)
	if !identity.Guest {
		if err := s.store.UpsertMatchingScore(r.Context(), identity.UserID, posting.ID, &score); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist matching score")
		}
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) loadJob(w http.ResponseWriter, r *http.Request) (Identity, *types.JobPosting, bool) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return Identity{}, nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return identity, nil, false
	}

	posting, err := s.store.GetJobPosting(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job posting")
		return identity, nil, false
	}
	if posting == nil {
		writeError(w, http.StatusNotFound, "job posting not found")
		return identity, nil, false
	}
	return identity, posting, true
}
