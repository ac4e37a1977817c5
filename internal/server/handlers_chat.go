package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/chat"
)

type chatRequest struct {
	Message        string     `json:"message" validate:"required,min=1,max=8000"`
	ConversationID *uuid.UUID `json:"conversation_id"`
	// DocumentID selects a stored document as editing context. Guests pass
	// the document content inline instead.
	DocumentID      *uuid.UUID `json:"document_id"`
	DocumentContent string     `json:"document_content"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req chatRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	documentContent := req.DocumentContent
	if req.DocumentID != nil && !identity.Guest {
		document, err := s.store.GetDocument(r.Context(), identity.UserID, *req.DocumentID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load document")
			return
		}
		if document == nil {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		var parts []string
		if document.CVContent != nil {
			parts = append(parts, *document.CVContent)
		}
		if document.CoverContent != nil {
			parts = append(parts, *document.CoverContent)
		}
		documentContent = strings.Join(parts, "\n\n")
	}

	// The chat context uses the stored profile rather than running an
	// extraction; a missing profile just means less context.
	profileSummary := ""
	if !identity.Guest {
		if stored, err := s.store.GetProfile(r.Context(), identity.UserID); err == nil && stored != nil && stored.Summary != nil {
			profileSummary = *stored.Summary
		}
	}

	resp, err := s.assistant.Send(r.Context(), chat.Request{
		UserID:          identity.UserID,
		ConversationID:  req.ConversationID,
		Message:         req.Message,
		DocumentContent: documentContent,
		ProfileSummary:  profileSummary,
		Persist:         !identity.Guest,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
