package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/profile"
	"github.com/philipposk/ThatJob/internal/types"
)

type createMaterialRequest struct {
	Type    string  `json:"type" validate:"required"`
	Title   *string `json:"title" validate:"omitempty,max=500"`
	Content string  `json:"content" validate:"required,min=1"`
}

// handleCreateMaterial stores an uploaded material and invalidates the
// cached profile so the next extraction sees it.
func (s *Server) handleCreateMaterial(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests supply materials inline with each request")
		return
	}

	var req createMaterialRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	materialType := types.MaterialType(req.Type)
	if !materialType.Valid() {
		writeError(w, http.StatusBadRequest, "unknown material type "+req.Type)
		return
	}

	material := &types.Material{
		UserID:  identity.UserID,
		Type:    materialType,
		Title:   req.Title,
		Content: &req.Content,
	}
	if err := s.store.CreateMaterial(r.Context(), material); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store material")
		return
	}

	if err := s.extractor.InvalidateUser(r.Context(), identity.UserID.String()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate profile cache")
	}

	writeJSON(w, http.StatusCreated, material)
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeJSON(w, http.StatusOK, []types.Material{})
		return
	}

	materials, err := s.store.MaterialsByUser(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list materials")
		return
	}
	if materials == nil {
		materials = []types.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}

func (s *Server) handleDeleteMaterial(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests have no stored materials")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}

	deleted, err := s.store.DeleteMaterial(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete material")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	if s.blobs != nil {
		if err := s.blobs.Delete(r.Context(), materialObjectName(identity.UserID, id)); err != nil {
			s.logger.Warn().Err(err).Str("material_id", id.String()).Msg("failed to delete material file")
		}
	}

	if err := s.extractor.InvalidateUser(r.Context(), identity.UserID.String()); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate profile cache")
	}
	w.WriteHeader(http.StatusNoContent)
}

const (
	maxMaterialFileSize = 10 << 20
	fileURLExpiry       = 15 * time.Minute
)

func materialObjectName(userID, materialID uuid.UUID) string {
	return fmt.Sprintf("users/%s/materials/%s", userID, materialID)
}

// handleUploadMaterialFile stores the original file behind a material. The
// extracted text lives in the database; the file itself goes to object
// storage.
func (s *Server) handleUploadMaterialFile(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests have no stored materials")
		return
	}
	if s.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "file storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}

	material, err := s.store.GetMaterial(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load material")
		return
	}
	if material == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	body := http.MaxBytesReader(w, r.Body, maxMaterialFileSize)
	path, err := s.blobs.Upload(r.Context(), materialObjectName(identity.UserID, id), body, r.ContentLength, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

// handleMaterialFileContent streams a material's original file through the
// server, for deployments where object storage is not reachable by clients.
func (s *Server) handleMaterialFileContent(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests have no stored materials")
		return
	}
	if s.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "file storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}

	material, err := s.store.GetMaterial(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load material")
		return
	}
	if material == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	data, err := s.blobs.Download(r.Context(), materialObjectName(identity.UserID, id))
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	contentType := "application/octet-stream"
	if material.FileType != nil && *material.FileType != "" {
		contentType = *material.FileType
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleMaterialFileURL returns a time-limited download URL for a
// material's original file.
func (s *Server) handleMaterialFileURL(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests have no stored materials")
		return
	}
	if s.blobs == nil {
		writeError(w, http.StatusServiceUnavailable, "file storage is not configured")
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid material id")
		return
	}

	material, err := s.store.GetMaterial(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load material")
		return
	}
	if material == nil {
		writeError(w, http.StatusNotFound, "material not found")
		return
	}

	url, err := s.blobs.PresignedURL(r.Context(), materialObjectName(identity.UserID, id), fileURLExpiry)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to sign download url")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

// handleGetProfile runs (or serves the cached) profile extraction for the
// caller's stored materials.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	identity, err := callerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if identity.Guest {
		writeError(w, http.StatusForbidden, "guests supply materials inline with each request")
		return
	}

	extracted, err := s.extractor.Extract(r.Context(), s.materialSource(identity, nil))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, extracted)
}

// materialSource picks the extraction source for a caller: stored materials
// for account holders, the inline snapshot for guests.
func (s *Server) materialSource(identity Identity, inline []types.Material) profile.MaterialSource {
	if identity.Guest {
		return profile.NewSnapshotSource(inline)
	}
	return profile.NewStoreSource(s.store, identity.UserID)
}
