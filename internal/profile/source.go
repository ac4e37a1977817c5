package profile

import (
	"context"

	"github.com/google/uuid"

	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/types"
)

// MaterialSource supplies the career materials an extraction reads from.
// Durable users and session-only guests differ in where materials live and
// whether results may be cached or persisted; those differences are expressed
// by the source, so the extractor itself has no identity branching.
type MaterialSource interface {
	// Materials returns all career materials for the subject.
	Materials(ctx context.Context) ([]types.Material, error)
	// CacheKey returns the cache key for the extracted profile. ok=false
	// means the result must not enter the shared cache.
	CacheKey() (key string, ok bool)
}

// ProfileSink is implemented by sources whose extracted profile should be
// persisted. Guest snapshots deliberately do not implement it.
type ProfileSink interface {
	SaveProfile(ctx context.Context, profile *types.StructuredProfile) error
}

// MaterialStore is the subset of the database layer the store-backed source
// reads from.
type MaterialStore interface {
	MaterialsByUser(ctx context.Context, userID uuid.UUID) ([]types.Material, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, profile *types.StructuredProfile) error
}

// StoreSource reads a durable user's materials from the database. Extracted
// profiles are cached under the user id and persisted back to the store.
type StoreSource struct {
	store  MaterialStore
	userID uuid.UUID
}

// NewStoreSource creates a database-backed source for userID.
func NewStoreSource(store MaterialStore, userID uuid.UUID) *StoreSource {
	return &StoreSource{store: store, userID: userID}
}

// Materials implements MaterialSource.
func (s *StoreSource) Materials(ctx context.Context) ([]types.Material, error) {
	return s.store.MaterialsByUser(ctx, s.userID)
}

// CacheKey implements MaterialSource.
func (s *StoreSource) CacheKey() (string, bool) {
	return cache.ProfileKey(s.userID.String()), true
}

// SaveProfile implements ProfileSink.
func (s *StoreSource) SaveProfile(ctx context.Context, profile *types.StructuredProfile) error {
	return s.store.UpsertProfile(ctx, s.userID, profile)
}

// SnapshotSource holds guest materials supplied in the request itself.
// Nothing leaves the request scope: no cache entry, no database row.
type SnapshotSource struct {
	materials []types.Material
}

// NewSnapshotSource creates an in-memory source over the given materials.
func NewSnapshotSource(materials []types.Material) *SnapshotSource {
	return &SnapshotSource{materials: materials}
}

// Materials implements MaterialSource.
func (s *SnapshotSource) Materials(_ context.Context) ([]types.Material, error) {
	return s.materials, nil
}

// CacheKey implements MaterialSource.
func (s *SnapshotSource) CacheKey() (string, bool) {
	return "", false
}
