package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipposk/ThatJob/internal/analyze"
	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/chat"
	"github.com/philipposk/ThatJob/internal/config"
	"github.com/philipposk/ThatJob/internal/db"
	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/profile"
	"github.com/philipposk/ThatJob/internal/queue"
	"github.com/philipposk/ThatJob/internal/research"
	"github.com/philipposk/ThatJob/internal/types"
)

// scriptedModel answers according to which prompt it receives, standing in
// for the provider chain.
type scriptedModel struct{}

func (scriptedModel) Complete(_ context.Context, msgs []llm.Message, _ llm.Options) (string, error) {
	user := msgs[len(msgs)-1].Content
	switch {
	case strings.Contains(user, "Extract the following information"):
		return `{"skills": ["Python", "SQL"], "experience": [], "education": [], "projects": [], "summary": "Backend engineer."}`, nil
	case strings.Contains(user, "Research the company"):
		return `{"name": "Acme Corp", "values": ["integrity"], "culture": ["remote-first"], "mission": null, "recent_news": [], "ethics": []}`, nil
	case strings.Contains(user, "Analyze the following job posting"):
		return `{"title": "Backend Engineer", "company": "Acme Corp", "description": "Build things.", "requirements": {"skills": ["python"], "responsibilities": []}}`, nil
	case strings.Contains(user, "cover letter"):
		return `{"cover_content": "Dear team...", "citations": []}`, nil
	default:
		return `{"cv_content": "Jane Doe CV", "citations": []}`, nil
	}
}

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*db.User
	byEmail   map[string]*db.User
	materials map[uuid.UUID][]types.Material
	profiles  map[uuid.UUID]*types.StructuredProfile
	jobs      map[uuid.UUID]*types.JobPosting
	scores    map[string]*types.MatchingScore
	documents map[uuid.UUID]*types.GeneratedDocument
}

func newMemStore() *memStore {
	return &memStore{
		users:     make(map[uuid.UUID]*db.User),
		byEmail:   make(map[string]*db.User),
		materials: make(map[uuid.UUID][]types.Material),
		profiles:  make(map[uuid.UUID]*types.StructuredProfile),
		jobs:      make(map[uuid.UUID]*types.JobPosting),
		scores:    make(map[string]*types.MatchingScore),
		documents: make(map[uuid.UUID]*types.GeneratedDocument),
	}
}

func (m *memStore) CreateUser(_ context.Context, email, name, hash string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return nil, db.ErrEmailTaken
	}
	u := &db.User{ID: uuid.New(), Email: email, Name: name, PasswordHash: hash, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.users[u.ID] = u
	m.byEmail[email] = u
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}

func (m *memStore) GetUserByID(_ context.Context, id uuid.UUID) (*db.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id], nil
}

func (m *memStore) CreateMaterial(_ context.Context, mat *types.Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mat.ID = uuid.New()
	mat.CreatedAt = time.Now()
	m.materials[mat.UserID] = append(m.materials[mat.UserID], *mat)
	return nil
}

func (m *memStore) MaterialsByUser(_ context.Context, userID uuid.UUID) ([]types.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.materials[userID], nil
}

func (m *memStore) GetMaterial(_ context.Context, userID, id uuid.UUID) (*types.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mat := range m.materials[userID] {
		if mat.ID == id {
			return &mat, nil
		}
	}
	return nil, nil
}

func (m *memStore) DeleteMaterial(_ context.Context, userID, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.materials[userID]
	for i, mat := range list {
		if mat.ID == id {
			m.materials[userID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpsertProfile(_ context.Context, userID uuid.UUID, p *types.StructuredProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[userID] = p
	return nil
}

func (m *memStore) GetProfile(_ context.Context, userID uuid.UUID) (*types.StructuredProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *memStore) CreateJobPosting(_ context.Context, p *types.JobPosting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.CreatedAt = time.Now()
	m.jobs[p.ID] = p
	return nil
}

func (m *memStore) GetJobPosting(_ context.Context, userID, id uuid.UUID) (*types.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.jobs[id]
	if !ok || p.UserID != userID {
		return nil, nil
	}
	return p, nil
}

func (m *memStore) JobPostingsByUser(_ context.Context, userID uuid.UUID) ([]types.JobPosting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.JobPosting
	for _, p := range m.jobs {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) UpsertMatchingScore(_ context.Context, userID, jobID uuid.UUID, score *types.MatchingScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[userID.String()+"/"+jobID.String()] = score
	return nil
}

func (m *memStore) GetMatchingScore(_ context.Context, userID, jobID uuid.UUID) (*types.MatchingScore, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[userID.String()+"/"+jobID.String()], nil
}

func (m *memStore) CreateDocument(_ context.Context, d *types.GeneratedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.documents[d.ID] = d
	return nil
}

func (m *memStore) GetDocument(_ context.Context, userID, id uuid.UUID) (*types.GeneratedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok || d.UserID != userID {
		return nil, nil
	}
	return d, nil
}

func (m *memStore) DocumentsByUser(_ context.Context, userID uuid.UUID) ([]types.GeneratedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.GeneratedDocument
	for _, d := range m.documents {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) UpdateDocumentContent(_ context.Context, userID, id uuid.UUID, cvContent, coverContent *string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.documents[id]
	if !ok || d.UserID != userID {
		return errors.New("document not found")
	}
	if cvContent != nil {
		d.CVContent = cvContent
	}
	if coverContent != nil {
		d.CoverContent = coverContent
	}
	d.UpdatedAt = time.Now()
	return nil
}

// fakeBlobs records object-store calls in memory.
type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: make(map[string][]byte)}
}

func (f *fakeBlobs) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[objectName] = data
	return objectName, nil
}

func (f *fakeBlobs) Download(_ context.Context, objectName string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[objectName]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeBlobs) PresignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[objectName]; !ok {
		return "", errors.New("object not found")
	}
	return "https://blobs.test/" + objectName, nil
}

func (f *fakeBlobs) Delete(_ context.Context, objectName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, objectName)
	return nil
}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()

	store := newMemStore()
	model := scriptedModel{}
	mem := cache.NewMemory()
	log := zerolog.Nop()

	extractor := profile.New(model, mem, profile.DefaultTTL, log)
	researcher := research.New(model, mem, research.DefaultTTL, log)
	generator := generation.New(model, extractor, nil, researcher, log)
	analyzer := analyze.New(model, false, log)
	assistant := chat.New(model, nil, log)
	tasks := queue.New(log).WithSleep(func(_ context.Context, _ time.Duration) error { return nil })

	srv := New(0, Deps{
		Store:      store,
		Extractor:  extractor,
		Researcher: researcher,
		Generator:  generator,
		Analyzer:   analyzer,
		Assistant:  assistant,
		Queue:      tasks,
		JWT:        NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1}),
		Passwords:  &config.PasswordConfig{BcryptCost: 10},
		Blobs:      newFakeBlobs(),
		Logger:     log,
	})
	return srv, store
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func registerUser(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "jane@example.com",
		"name":     "Jane Doe",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[authResponse](t, rec).Token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterLoginFlow(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)
	assert.NotEmpty(t, token)

	// Duplicate registration conflicts.
	rec := doJSON(t, srv, http.MethodPost, "/auth/register", "", map[string]string{
		"email":    "jane@example.com",
		"name":     "Jane Doe",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "jane@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/materials", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/materials", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMaterialUploadAndProfile(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/materials", token, map[string]string{
		"type":    "cv",
		"content": "Senior engineer, Python and SQL.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	extracted := decodeBody[types.StructuredProfile](t, rec)
	assert.Equal(t, []string{"Python", "SQL"}, extracted.Skills)
}

func TestAnalyzeAndMatch(t *testing.T) {
	srv, store := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/materials", token, map[string]string{
		"type":    "cv",
		"content": "Senior engineer, Python and SQL.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/jobs/analyze", token, map[string]string{
		"text": "We are hiring a backend engineer with python experience.",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	posting := decodeBody[types.JobPosting](t, rec)
	require.NotNil(t, posting.CompanyInfo, "analysis must snapshot company research")
	assert.Len(t, store.jobs, 1)

	rec = doJSON(t, srv, http.MethodGet, "/jobs/"+posting.ID.String()+"/score", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	score := decodeBody[types.MatchingScore](t, rec)
	assert.Equal(t, 100, score.SkillsMatch, "python requirement matches Python skill")
	assert.Equal(t, 75, score.CultureFit)

	// Subsequent reads serve the stored score; refresh recomputes.
	store.mu.Lock()
	for k := range store.scores {
		store.scores[k].SkillsMatch = 1
	}
	store.mu.Unlock()

	rec = doJSON(t, srv, http.MethodGet, "/jobs/"+posting.ID.String()+"/score", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[types.MatchingScore](t, rec).SkillsMatch)

	rec = doJSON(t, srv, http.MethodGet, "/jobs/"+posting.ID.String()+"/score?refresh=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 100, decodeBody[types.MatchingScore](t, rec).SkillsMatch)
}

func TestMatchingUnknownJob(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/jobs/"+uuid.NewString()+"/score", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateRejectsOffTierAlignment(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/generate", token, map[string]any{
		"type":      "cv",
		"alignment": 60,
		"job":       types.JobPosting{ID: uuid.New()},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGuestGeneratesWithInlineMaterials(t *testing.T) {
	srv, store := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	guestToken := decodeBody[authResponse](t, rec).Token

	company := "Acme Corp"
	rec = doJSON(t, srv, http.MethodPost, "/generate", guestToken, map[string]any{
		"type":      "both",
		"alignment": 50,
		"job": map[string]any{
			"id":      uuid.New(),
			"company": company,
		},
		"materials": []map[string]string{
			{"type": "cv", "content": "Senior engineer, Python and SQL."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[generateResponse](t, rec)
	require.NotNil(t, resp.CV)
	require.NotNil(t, resp.CoverLetter)
	assert.Nil(t, resp.DocumentID, "guest documents are not persisted")
	assert.Empty(t, store.documents)
}

func TestAuthedGeneratePersistsDocument(t *testing.T) {
	srv, store := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/materials", token, map[string]string{
		"type":    "cv",
		"content": "Senior engineer, Python and SQL.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/jobs/analyze", token, map[string]string{
		"text": "Hiring a backend engineer.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	posting := decodeBody[types.JobPosting](t, rec)

	rec = doJSON(t, srv, http.MethodPost, "/generate", token, map[string]any{
		"type":      "cv",
		"alignment": 70,
		"job_id":    posting.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[generateResponse](t, rec)
	require.NotNil(t, resp.DocumentID)
	assert.Len(t, store.documents, 1)

	rec = doJSON(t, srv, http.MethodGet, "/documents/"+resp.DocumentID.String(), token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAsyncGenerate(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/generate/async", token, map[string]any{
		"type":      "cv",
		"alignment": 50,
		"job": map[string]any{
			"id":      uuid.New(),
			"company": "Acme Corp",
		},
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	task := decodeBody[queue.Task](t, rec)

	srv.queue.Wait()
	rec = doJSON(t, srv, http.MethodGet, "/tasks/"+task.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	finished := decodeBody[queue.Task](t, rec)
	assert.Equal(t, queue.StatusCompleted, finished.Status)
}

func TestMe(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[authResponse](t, rec)
	require.NotNil(t, me.User)
	assert.Equal(t, "jane@example.com", me.User.Email)

	rec = doJSON(t, srv, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	guestToken := decodeBody[authResponse](t, rec).Token

	rec = doJSON(t, srv, http.MethodGet, "/auth/me", guestToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	guest := decodeBody[authResponse](t, rec)
	assert.True(t, guest.Guest)
	assert.Nil(t, guest.User)
}

func TestUpdateDocument(t *testing.T) {
	srv, store := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/generate", token, map[string]any{
		"type":      "cv",
		"alignment": 30,
		"job": map[string]any{
			"id":      uuid.New(),
			"company": "Acme Corp",
		},
		"materials": []map[string]string{
			{"type": "cv", "content": "Senior engineer, Python and SQL."},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[generateResponse](t, rec)
	require.NotNil(t, resp.DocumentID)

	rec = doJSON(t, srv, http.MethodPatch, "/documents/"+resp.DocumentID.String(), token, map[string]string{
		"cv_content": "Jane Doe CV, revised",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[types.GeneratedDocument](t, rec)
	require.NotNil(t, updated.CVContent)
	assert.Equal(t, "Jane Doe CV, revised", *updated.CVContent)
	assert.Len(t, store.documents, 1)

	// A body with neither field is rejected.
	rec = doJSON(t, srv, http.MethodPatch, "/documents/"+resp.DocumentID.String(), token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMaterialFileLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/materials", token, map[string]string{
		"type":    "cv",
		"content": "Senior engineer, Python and SQL.",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	material := decodeBody[types.Material](t, rec)

	req := httptest.NewRequest(http.MethodPut, "/materials/"+material.ID.String()+"/file", strings.NewReader("%PDF-1.4 ..."))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/pdf")
	upload := httptest.NewRecorder()
	srv.Handler().ServeHTTP(upload, req)
	require.Equal(t, http.StatusCreated, upload.Code, upload.Body.String())

	rec = doJSON(t, srv, http.MethodGet, "/materials/"+material.ID.String()+"/file", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	signed := decodeBody[map[string]string](t, rec)
	assert.Contains(t, signed["url"], material.ID.String())

	rec = doJSON(t, srv, http.MethodGet, "/materials/"+material.ID.String()+"/file/content", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 ...", rec.Body.String())

	// Deleting the material removes the stored file with it.
	rec = doJSON(t, srv, http.MethodDelete, "/materials/"+material.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	blobs := srv.blobs.(*fakeBlobs)
	assert.Empty(t, blobs.objects)
}

func TestMaterialFileUnknownMaterial(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/materials/"+uuid.NewString()+"/file", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchGenerate(t *testing.T) {
	srv, store := newTestServer(t)
	token := registerUser(t, srv)

	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><div class="job-description">We are hiring a backend engineer with python experience at Acme Corp.</div></body></html>`))
	}))
	defer page.Close()

	rec := doJSON(t, srv, http.MethodPost, "/generate/batch", token, map[string]any{
		"job_urls":  []string{page.URL + "/roles/1", page.URL + "/roles/2"},
		"type":      "cv",
		"alignment": 70,
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	resp := decodeBody[batchGenerateResponse](t, rec)
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Tasks, 2)

	srv.queue.Wait()
	for _, queued := range resp.Tasks {
		rec = doJSON(t, srv, http.MethodGet, "/tasks/"+queued.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		finished := decodeBody[queue.Task](t, rec)
		assert.Equal(t, queue.StatusCompleted, finished.Status, finished.Error)
	}

	assert.Len(t, store.jobs, 2, "each batch item persists its analyzed posting")
	assert.Len(t, store.documents, 2, "each batch item persists its document")
}

func TestBatchGenerateRejectsGuests(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	guestToken := decodeBody[authResponse](t, rec).Token

	rec = doJSON(t, srv, http.MethodPost, "/generate/batch", guestToken, map[string]any{
		"job_urls": []string{"https://example.com/job"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBatchGenerateValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerUser(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/generate/batch", token, map[string]any{
		"job_urls": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/generate/batch", token, map[string]any{
		"job_urls":  []string{"https://example.com/job"},
		"alignment": 60,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatWithInlineDocument(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	guestToken := decodeBody[authResponse](t, rec).Token

	rec = doJSON(t, srv, http.MethodPost, "/chat", guestToken, map[string]string{
		"message":          "Shorten the intro",
		"document_content": "Jane Doe CV",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[chat.Response](t, rec)
	assert.NotEmpty(t, resp.Reply)
}
