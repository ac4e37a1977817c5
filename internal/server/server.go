// Package server provides the HTTP REST API: authentication, material
// management, job analysis, matching scores, document generation and the
// follow-up chat assistant.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/philipposk/ThatJob/internal/analyze"
	"github.com/philipposk/ThatJob/internal/chat"
	"github.com/philipposk/ThatJob/internal/config"
	"github.com/philipposk/ThatJob/internal/db"
	"github.com/philipposk/ThatJob/internal/generation"
	"github.com/philipposk/ThatJob/internal/profile"
	"github.com/philipposk/ThatJob/internal/queue"
	"github.com/philipposk/ThatJob/internal/research"
	"github.com/philipposk/ThatJob/internal/storage"
	"github.com/philipposk/ThatJob/internal/types"
)

// Store is the database surface the handlers depend on. *db.DB implements
// it; tests substitute an in-memory fake.
type Store interface {
	CreateUser(ctx context.Context, email, name, passwordHash string) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*db.User, error)

	CreateMaterial(ctx context.Context, m *types.Material) error
	MaterialsByUser(ctx context.Context, userID uuid.UUID) ([]types.Material, error)
	DeleteMaterial(ctx context.Context, userID, id uuid.UUID) (bool, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, profile *types.StructuredProfile) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*types.StructuredProfile, error)

	CreateJobPosting(ctx context.Context, p *types.JobPosting) error
	GetJobPosting(ctx context.Context, userID, id uuid.UUID) (*types.JobPosting, error)
	JobPostingsByUser(ctx context.Context, userID uuid.UUID) ([]types.JobPosting, error)

	UpsertMatchingScore(ctx context.Context, userID, jobID uuid.UUID, score *types.MatchingScore) error
	GetMatchingScore(ctx context.Context, userID, jobID uuid.UUID) (*types.MatchingScore, error)

	CreateDocument(ctx context.Context, d *types.GeneratedDocument) error
	GetDocument(ctx context.Context, userID, id uuid.UUID) (*types.GeneratedDocument, error)
	DocumentsByUser(ctx context.Context, userID uuid.UUID) ([]types.GeneratedDocument, error)
	UpdateDocumentContent(ctx context.Context, userID, id uuid.UUID, cvContent, coverContent *string) error

	GetMaterial(ctx context.Context, userID, id uuid.UUID) (*types.Material, error)
}

// Deps bundles the components the server routes requests to.
type Deps struct {
	Store      Store
	Extractor  *profile.Extractor
	Researcher *research.Researcher
	Generator  *generation.Generator
	Analyzer   *analyze.Analyzer
	Assistant  *chat.Assistant
	Queue      *queue.Queue
	JWT        *JWTService
	Passwords  *config.PasswordConfig
	// Blobs holds original material files. Optional; nil disables the
	// file endpoints.
	Blobs  storage.BlobStore
	Logger zerolog.Logger
}

// Server is the HTTP server.
type Server struct {
	httpServer *http.Server
	store      Store
	extractor  *profile.Extractor
	researcher *research.Researcher
	generator  *generation.Generator
	analyzer   *analyze.Analyzer
	assistant  *chat.Assistant
	queue      *queue.Queue
	jwt        *JWTService
	passwords  *config.PasswordConfig
	blobs      storage.BlobStore
	validator  *validator.Validate
	logger     zerolog.Logger
}

// TaskKindGenerate is the queue kind for async document generation.
const TaskKindGenerate = "generate"

// New creates a server and wires its routes.
func New(port int, deps Deps) *Server {
	s := &Server{
		store:      deps.Store,
		extractor:  deps.Extractor,
		researcher: deps.Researcher,
		generator:  deps.Generator,
		analyzer:   deps.Analyzer,
		assistant:  deps.Assistant,
		queue:      deps.Queue,
		jwt:        deps.JWT,
		passwords:  deps.Passwords,
		blobs:      deps.Blobs,
		validator:  validator.New(),
		logger:     deps.Logger,
	}

	if s.queue != nil {
		s.queue.Register(TaskKindGenerate, s.processGenerateTask)
		s.queue.Register(TaskKindBatch, s.processBatchTask)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/guest", s.handleGuest)
	mux.HandleFunc("GET /auth/me", s.requireAuth(s.handleMe))

	mux.HandleFunc("POST /materials", s.requireAuth(s.handleCreateMaterial))
	mux.HandleFunc("GET /materials", s.requireAuth(s.handleListMaterials))
	mux.HandleFunc("DELETE /materials/{id}", s.requireAuth(s.handleDeleteMaterial))
	mux.HandleFunc("PUT /materials/{id}/file", s.requireAuth(s.handleUploadMaterialFile))
	mux.HandleFunc("GET /materials/{id}/file", s.requireAuth(s.handleMaterialFileURL))
	mux.HandleFunc("GET /materials/{id}/file/content", s.requireAuth(s.handleMaterialFileContent))
	mux.HandleFunc("GET /profile", s.requireAuth(s.handleGetProfile))

	mux.HandleFunc("POST /jobs/analyze", s.requireAuth(s.handleAnalyze))
	mux.HandleFunc("GET /jobs", s.requireAuth(s.handleListJobs))
	mux.HandleFunc("GET /jobs/{id}", s.requireAuth(s.handleGetJob))
	mux.HandleFunc("GET /jobs/{id}/score", s.requireAuth(s.handleMatchingScore))

	mux.HandleFunc("POST /generate", s.requireAuth(s.handleGenerate))
	mux.HandleFunc("POST /generate/async", s.requireAuth(s.handleGenerateAsync))
	mux.HandleFunc("POST /generate/batch", s.requireAuth(s.handleBatchGenerate))
	mux.HandleFunc("GET /tasks", s.requireAuth(s.handleListTasks))
	mux.HandleFunc("GET /tasks/{id}", s.requireAuth(s.handleGetTask))

	mux.HandleFunc("GET /documents", s.requireAuth(s.handleListDocuments))
	mux.HandleFunc("GET /documents/{id}", s.requireAuth(s.handleGetDocument))
	mux.HandleFunc("PATCH /documents/{id}", s.requireAuth(s.handleUpdateDocument))

	mux.HandleFunc("POST /chat", s.requireAuth(s.handleChat))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           requestLogger(deps.Logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully,
// waiting for in-flight requests and queued tasks.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		s.logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	if s.queue != nil {
		s.queue.Wait()
	}
	return nil
}
