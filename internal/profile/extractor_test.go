package profile

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/types"
)

type fakeCompleter struct {
	calls    atomic.Int64
	response string
	err      error
}

func (f *fakeCompleter) Complete(_ context.Context, _ []llm.Message, _ llm.Options) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeStore struct {
	materials []types.Material
	saved     *types.StructuredProfile
	saveCalls int
}

func (f *fakeStore) MaterialsByUser(_ context.Context, _ uuid.UUID) ([]types.Material, error) {
	return f.materials, nil
}

func (f *fakeStore) UpsertProfile(_ context.Context, _ uuid.UUID, p *types.StructuredProfile) error {
	f.saved = p
	f.saveCalls++
	return nil
}

func strPtr(s string) *string { return &s }

func cvMaterial(userID uuid.UUID) types.Material {
	return types.Material{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    types.MaterialCV,
		Title:   strPtr("My CV"),
		Content: strPtr("Senior engineer, Python and SQL, 5 years at Initech."),
	}
}

const extractedJSON = `{
	"skills": ["Python", "SQL"],
	"experience": [{"title": "Engineer", "company": "Initech", "start_date": "2019-01", "end_date": null, "description": "Backend work", "skills": ["Python"]}],
	"education": [],
	"projects": [],
	"summary": "Backend engineer with five years of experience."
}`

func TestExtractAcceptsNumericGPA(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: []types.Material{cvMaterial(userID)}}
	completer := &fakeCompleter{response: `{
		"skills": ["Python"],
		"experience": [],
		"education": [{"degree": "BSc", "institution": "MIT", "field": "CS", "start_date": "2015", "end_date": "2019", "gpa": 3.8}],
		"projects": [],
		"summary": null
	}`}
	e := New(completer, cache.NewMemory(), DefaultTTL, zerolog.Nop())

	extracted, err := e.Extract(context.Background(), NewStoreSource(store, userID))
	require.NoError(t, err, "a schema-valid numeric gpa must decode")
	require.Len(t, extracted.Education, 1)
	require.NotNil(t, extracted.Education[0].GPA)
	assert.Equal(t, types.FlexString("3.8"), *extracted.Education[0].GPA)
}

func TestExtractAcceptsStringGPA(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: []types.Material{cvMaterial(userID)}}
	completer := &fakeCompleter{response: `{
		"skills": ["Python"],
		"experience": [],
		"education": [{"degree": "BSc", "institution": "MIT", "field": "CS", "start_date": "2015", "end_date": "2019", "gpa": "3.8/4.0"}],
		"projects": [],
		"summary": null
	}`}
	e := New(completer, cache.NewMemory(), DefaultTTL, zerolog.Nop())

	extracted, err := e.Extract(context.Background(), NewStoreSource(store, userID))
	require.NoError(t, err)
	require.Len(t, extracted.Education, 1)
	require.NotNil(t, extracted.Education[0].GPA)
	assert.Equal(t, types.FlexString("3.8/4.0"), *extracted.Education[0].GPA)
}

func TestExtractCachesForDurableUser(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: []types.Material{cvMaterial(userID)}}
	completer := &fakeCompleter{response: extractedJSON}
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	mem := cache.NewMemoryWithClock(func() time.Time { return now })
	e := New(completer, mem, DefaultTTL, zerolog.Nop()).WithClock(func() time.Time { return now })

	src := NewStoreSource(store, userID)
	first, err := e.Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, first.Skills)
	assert.Equal(t, now, first.LastUpdated)
	require.NotNil(t, store.saved, "extraction must be persisted for durable users")

	_, err = e.Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(1), completer.calls.Load(), "second extraction within TTL must hit cache")
	assert.Equal(t, 1, store.saveCalls, "cache hit must not re-persist")
}

func TestExtractGuestSkipsCacheAndPersistence(t *testing.T) {
	completer := &fakeCompleter{response: extractedJSON}
	mem := cache.NewMemory()
	e := New(completer, mem, DefaultTTL, zerolog.Nop())

	guestID := uuid.New()
	src := NewSnapshotSource([]types.Material{cvMaterial(guestID)})

	_, err := e.Extract(context.Background(), src)
	require.NoError(t, err)
	_, err = e.Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completer.calls.Load(), "guest extractions must not share cache entries")
}

func TestExtractNoMaterialsReturnsEmptyProfile(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: nil}
	completer := &fakeCompleter{response: extractedJSON}
	mem := cache.NewMemory()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	e := New(completer, mem, DefaultTTL, zerolog.Nop()).WithClock(func() time.Time { return now })

	profile, err := e.Extract(context.Background(), NewStoreSource(store, userID))
	require.NoError(t, err)
	assert.Empty(t, profile.Skills)
	assert.Empty(t, profile.Experience)
	assert.Nil(t, profile.Summary)
	assert.Equal(t, now, profile.LastUpdated)
	assert.Equal(t, int64(0), completer.calls.Load(), "no materials means no model call")

	// The empty result is not cached: once a material exists the next
	// extraction runs the model.
	store.materials = []types.Material{cvMaterial(userID)}
	profile, err = e.Extract(context.Background(), NewStoreSource(store, userID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "SQL"}, profile.Skills)
}

func TestExtractModelFailureReturnsExtractionError(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: []types.Material{cvMaterial(userID)}}
	completer := &fakeCompleter{err: errors.New("all providers down")}
	e := New(completer, cache.NewMemory(), DefaultTTL, zerolog.Nop())

	_, err := e.Extract(context.Background(), NewStoreSource(store, userID))
	var extractErr *ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.ErrorContains(t, err, "all providers down")
}

func TestExtractMissingFieldsDefaultEmpty(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: []types.Material{cvMaterial(userID)}}
	completer := &fakeCompleter{response: `{"skills": ["Go"]}`}
	e := New(completer, cache.NewMemory(), DefaultTTL, zerolog.Nop())

	profile, err := e.Extract(context.Background(), NewStoreSource(store, userID))
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, profile.Skills)
	assert.NotNil(t, profile.Experience)
	assert.Empty(t, profile.Experience)
	assert.NotNil(t, profile.Education)
	assert.NotNil(t, profile.Projects)
}

func TestInvalidateUserDropsCacheEntry(t *testing.T) {
	userID := uuid.New()
	store := &fakeStore{materials: []types.Material{cvMaterial(userID)}}
	completer := &fakeCompleter{response: extractedJSON}
	mem := cache.NewMemory()
	e := New(completer, mem, DefaultTTL, zerolog.Nop())

	src := NewStoreSource(store, userID)
	_, err := e.Extract(context.Background(), src)
	require.NoError(t, err)

	require.NoError(t, e.InvalidateUser(context.Background(), userID.String()))

	_, err = e.Extract(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, int64(2), completer.calls.Load(), "invalidation must force re-extraction")
}

func TestRenderMaterialsSkipsEmptyContent(t *testing.T) {
	userID := uuid.New()
	materials := []types.Material{
		{UserID: userID, Type: types.MaterialCV, Content: strPtr("  ")},
		{UserID: userID, Type: types.MaterialLinkedIn, Content: nil},
	}
	assert.Equal(t, "", renderMaterials(materials))
}
