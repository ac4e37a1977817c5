package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/queue"
	"github.com/philipposk/ThatJob/internal/types"
)

// TaskKindBatch is the queue kind for one batch item: analyze a job URL,
// then generate documents against it.
const TaskKindBatch = "analyze_and_generate"

// batchDefaultAlignment is used when a batch request leaves alignment unset.
const batchDefaultAlignment = 50

type batchGenerateRequest struct {
	JobURLs   []string `json:"job_urls" validate:"required,min=1,max=20,dive,url"`
	Type      string   `json:"type" validate:"omitempty,oneof=cv cover_letter both"`
	Alignment int      `json:"alignment"`
}

type batchGenerateResponse struct {
	Tasks []*queue.Task `json:"tasks"`
	Total int           `json:"total"`
}

type batchTaskPayload struct {
	Identity  Identity `json:"identity"`
	URL       string   `json:"url"`
	Type      string   `json:"type"`
	Alignment int      `json:"alignment"`
}

type batchTaskResult struct {
	Job      *types.JobPosting `json:"job"`
	Document *generateResponse `json:"document"`
}

// handleBatchGenerate queues one analyze-and-generate task per job URL.
// Batch runs reference stored postings and documents, so guests are out.
func (s *Server) handleBatchGenerate(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "batch generation requires an account")
		return
	}

	var req batchGenerateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Type == "" {
		req.Type = string(types.DocumentBoth)
	}
	if req.Alignment == 0 {
		req.Alignment = batchDefaultAlignment
	}
	if !types.AlignmentLevel(req.Alignment).Valid() {
		writeDomainError(w, &generation.InvalidAlignmentError{Level: types.AlignmentLevel(req.Alignment)})
		return
	}

	ctx := context.WithoutCancel(r.Context())
	tasks := make([]*queue.Task, 0, len(req.JobURLs))
	for _, url := range req.JobURLs {
		task, err := s.queue.Add(ctx, identity.UserID, TaskKindBatch, batchTaskPayload{
			Identity:  identity,
			URL:       url,
			Type:      req.Type,
			Alignment: req.Alignment,
		})
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to queue batch task")
			return
		}
		tasks = append(tasks, task)
	}

	writeJSON(w, http.StatusAccepted, batchGenerateResponse{Tasks: tasks, Total: len(tasks)})
}

func (s *Server) processBatchTask(ctx context.Context, task *queue.Task) (any, error) {
	payload, ok := task.Payload.(batchTaskPayload)
	if !ok {
		data, err := json.Marshal(task.Payload)
		if err != nil {
			return nil, fmt.Errorf("invalid task payload: %w", err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("invalid task payload: %w", err)
		}
	}

	posting, err := s.analyzer.FromURL(ctx, payload.Identity.UserID, payload.URL)
	if err != nil {
		return nil, err
	}

	if posting.Company != nil && *posting.Company != "" {
		posting.CompanyInfo = s.researcher.Company(ctx, *posting.Company)
	}

	if !payload.Identity.Guest {
		if err := s.store.CreateJobPosting(ctx, posting); err != nil {
			return nil, fmt.Errorf("failed to store job posting: %w", err)
		}
	}

	document, err := s.runGeneration(ctx, payload.Identity, generateRequest{
		Type:      payload.Type,
		Alignment: payload.Alignment,
		JobID:     &posting.ID,
		Job:       posting,
	})
	if err != nil {
		return nil, err
	}
	return batchTaskResult{Job: posting, Document: document}, nil
}
