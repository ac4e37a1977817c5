package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/queue"
	"github.com/philipposk/ThatJob/internal/types"
)

type inlineMaterial struct {
	Type    string  `json:"type" validate:"required"`
	Title   *string `json:"title"`
	Content string  `json:"content" validate:"required,min=1"`
}

type generateRequest struct {
	Type      string            `json:"type" validate:"required,oneof=cv cover_letter both"`
	Alignment int               `json:"alignment" validate:"required"`
	JobID     *uuid.UUID        `json:"job_id"`
	Job       *types.JobPosting `json:"job"`
	// Materials is the guest path: profile extraction runs over these
	// instead of stored materials.
	Materials []inlineMaterial `json:"materials" validate:"dive"`
}

type generateResponse struct {
	CV          *types.Draft `json:"cv,omitempty"`
	CoverLetter *types.Draft `json:"cover_letter,omitempty"`
	DocumentID  *uuid.UUID   `json:"document_id,omitempty"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	resp, err := s.runGeneration(r.Context(), identity, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGenerateAsync queues a generation and returns the task for polling.
func (s *Server) handleGenerateAsync(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req generateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	payload := generateTaskPayload{Identity: identity, Request: req}
	task, err := s.queue.Add(context.WithoutCancel(r.Context()), identity.UserID, TaskKindGenerate, payload)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to queue generation")
		return
	}
	writeJSON(w, http.StatusAccepted, task)
}

type generateTaskPayload struct {
	Identity Identity        `json:"identity"`
	Request  generateRequest `json:"request"`
}

func (s *Server) processGenerateTask(ctx context.Context, task *queue.Task) (any, error) {
	payload, ok := task.Payload.(generateTaskPayload)
	if !ok {
		// Payload round-tripped through JSON (e.g. task restored from a
		// snapshot); decode it back.
		data, err := json.Marshal(task.Payload)
		if err != nil {
			return nil, fmt.Errorf("invalid task payload: %w", err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("invalid task payload: %w", err)
		}
	}
	return s.runGeneration(ctx, payload.Identity, payload.Request)
}

func (s *Server) runGeneration(ctx context.Context, identity Identity, req generateRequest) (*generateResponse, error) {
	alignment := types.AlignmentLevel(req.Alignment)

	// Resolve a stored job here rather than in the generator so the lookup
	// stays scoped to the caller.
	job := req.Job
	if job == nil && req.JobID != nil {
		stored, err := s.store.GetJobPosting(ctx, identity.UserID, *req.JobID)
		if err != nil {
			return nil, fmt.Errorf("failed to load job posting: %w", err)
		}
		if stored == nil {
			return nil, &generation.JobNotFoundError{ID: *req.JobID}
		}
		job = stored
	}

	genReq := generation.Request{
		Materials: s.materialSource(identity, inlineMaterials(identity.UserID, req.Materials)),
		Job:       job,
		Alignment: alignment,
	}

	docType := types.DocumentType(req.Type)
	resp := &generateResponse{}
	var err error
	switch docType {
	case types.DocumentCV:
		resp.CV, err = s.generator.CV(ctx, genReq)
	case types.DocumentCover:
		resp.CoverLetter, err = s.generator.CoverLetter(ctx, genReq)
	case types.DocumentBoth:
		resp.CV, resp.CoverLetter, err = s.generator.Both(ctx, genReq)
	}
	if err != nil {
		return nil, err
	}

	if !identity.Guest {
		if id, err := s.persistDocument(ctx, identity.UserID, req, docType, alignment, resp); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist generated document")
		} else {
			resp.DocumentID = &id
		}
	}
	return resp, nil
}

func (s *Server) persistDocument(ctx context.Context, userID uuid.UUID, req generateRequest, docType types.DocumentType, alignment types.AlignmentLevel, resp *generateResponse) (uuid.UUID, error) {
	doc := &types.GeneratedDocument{
		ID:           uuid.New(),
		UserID:       userID,
		JobPostingID: req.JobID,
		Type:         docType,
		Alignment:    alignment,
	}
	if resp.CV != nil {
		doc.CVContent = &resp.CV.Content
		doc.Citations = append(doc.Citations, resp.CV.Citations...)
	}
	if resp.CoverLetter != nil {
		doc.CoverContent = &resp.CoverLetter.Content
		doc.Citations = append(doc.Citations, resp.CoverLetter.Citations...)
	}
	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return uuid.Nil, err
	}
	return doc.ID, nil
}

func inlineMaterials(userID uuid.UUID, inline []inlineMaterial) []types.Material {
	materials := make([]types.Material, 0, len(inline))
	for _, m := range inline {
		content := m.Content
		materials = append(materials, types.Material{
			ID:      uuid.New(),
			UserID:  userID,
			Type:    types.MaterialType(m.Type),
			Title:   m.Title,
			Content: &content,
		})
	}
	return materials
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tasks := s.queue.ByUser(identity.UserID)
	if tasks == nil {
		tasks = []*queue.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task := s.queue.Get(id)
	if task == nil || task.UserID != identity.UserID {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeJSON(w, http.StatusOK, []types.GeneratedDocument{})
		return
	}

	documents, err := s.store.DocumentsByUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if documents == nil {
		documents = []types.GeneratedDocument{}
	}
	writeJSON(w, http.StatusOK, documents)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	document, err := s.store.GetDocument(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	if document == nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, document)
}

type updateDocumentRequest struct {
	CVContent    *string `json:"cv_content" validate:"omitempty,min=1"`
	CoverContent *string `json:"cover_content" validate:"omitempty,min=1"`
}

// handleUpdateDocument saves edited content back onto a stored document,
// typically after a chat refinement round.
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests have no stored documents")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}

	var req updateDocumentRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.CVContent == nil && req.CoverContent == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	if err := s.store.UpdateDocumentContent(r.Context(), identity.UserID, id, req.CVContent, req.CoverContent); err != nil {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}

	document, err := s.store.GetDocument(r.Context(), identity.UserID, id)
	if err != nil || document == nil {
		writeError(w, http.StatusInternalServerError, "failed to load document")
		return
	}
	writeJSON(w, http.StatusOK, document)
}
