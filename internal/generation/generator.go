// Package generation produces tailored CVs and cover letters. Each document
// is generated from the subject's extracted profile, the target job posting,
// company research, and an alignment tier controlling how strongly the text
// echoes company values.
package generation

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/profile"
	"github.com/philipposk/ThatJob/internal/prompts"
	"github.com/philipposk/ThatJob/internal/schemas"
	"github.com/philipposk/ThatJob/internal/types"
)

// JobStore is the job posting lookup the generator depends on. A nil posting
// with a nil error means not found.
type JobStore interface {
	JobByID(ctx context.Context, id uuid.UUID) (*types.JobPosting, error)
}

// ProfileSource produces the subject's structured profile.
type ProfileSource interface {
	Extract(ctx context.Context, src profile.MaterialSource) (*types.StructuredProfile, error)
}

// CompanySource provides company research. Lookups are best-effort and
// always yield a profile.
type CompanySource interface {
	Company(ctx context.Context, name string) *types.CompanyProfile
}

// Request describes one generation. Exactly one of JobID or Job identifies
// the target posting: durable users reference stored postings by id, guests
// and batch callers supply the posting inline.
type Request struct {
	Materials profile.MaterialSource
	JobID     *uuid.UUID
	Job       *types.JobPosting
	Alignment types.AlignmentLevel
}

// Generator renders CVs and cover letters through the model chain.
type Generator struct {
	llm      llm.Completer
	profiles ProfileSource
	jobs     JobStore
	research CompanySource
	logger   zerolog.Logger
}

// New creates a Generator. jobs may be nil when callers always supply
// postings inline.
func New(completer llm.Completer, profiles ProfileSource, jobs JobStore, research CompanySource, logger zerolog.Logger) *Generator {
	return &Generator{
		llm:      completer,
		profiles: profiles,
		jobs:     jobs,
		research: research,
		logger:   logger,
	}
}

// CV generates a tailored CV draft.
func (g *Generator) CV(ctx context.Context, req Request) (*types.Draft, error) {
	return g.generate(ctx, req, types.DocumentCV)
}

// CoverLetter generates a tailored cover letter draft.
func (g *Generator) CoverLetter(ctx context.Context, req Request) (*types.Draft, error) {
	return g.generate(ctx, req, types.DocumentCover)
}

// Both generates the CV and cover letter concurrently. The two calls are
// independent; either failure fails the pair.
func (g *Generator) Both(ctx context.Context, req Request) (cv, cover *types.Draft, err error) {
	if err := g.validate(req); err != nil {
		return nil, nil, err
	}
	env, err := g.resolve(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		cv, err = g.render(ctx, env, types.DocumentCV)
		return err
	})
	grp.Go(func() error {
		var err error
		cover, err = g.render(ctx, env, types.DocumentCover)
		return err
	})
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}
	return cv, cover, nil
}

func (g *Generator) generate(ctx context.Context, req Request, docType types.DocumentType) (*types.Draft, error) {
	if err := g.validate(req); err != nil {
		return nil, err
	}
	env, err := g.resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return g.render(ctx, env, docType)
}

func (g *Generator) validate(req Request) error {
	if !req.Alignment.Valid() {
		return &InvalidAlignmentError{Level: req.Alignment}
	}
	return nil
}

// environment is the fully resolved input set for a render.
type environment struct {
	profile   *types.StructuredProfile
	job       *types.JobPosting
	company   *types.CompanyProfile
	alignment types.AlignmentLevel
}

func (g *Generator) resolve(ctx context.Context, req Request) (*environment, error) {
	userProfile, err := g.profiles.Extract(ctx, req.Materials)
	if err != nil {
		return nil, err
	}

	job := req.Job
	if job == nil {
		if req.JobID == nil || g.jobs == nil {
			return nil, &GenerationError{Message: "no job posting supplied"}
		}
		job, err = g.jobs.JobByID(ctx, *req.JobID)
		if err != nil {
			return nil, &GenerationError{Message: "failed to load job posting", Cause: err}
		}
		if job == nil {
			return nil, &JobNotFoundError{ID: *req.JobID}
		}
	}

	return &environment{
		profile:   userProfile,
		job:       job,
		company:   g.resolveCompany(ctx, job),
		alignment: req.Alignment,
	}, nil
}

// resolveCompany prefers fresh research by company name, then the snapshot
// captured at analysis time, then an empty minimal profile. Generation never
// blocks on missing company context.
func (g *Generator) resolveCompany(ctx context.Context, job *types.JobPosting) *types.CompanyProfile {
	if job.Company != nil && *job.Company != "" {
		return g.research.Company(ctx, *job.Company)
	}
	if job.CompanyInfo != nil {
		return job.CompanyInfo
	}
	return types.MinimalCompanyProfile("")
}

func (g *Generator) render(ctx context.Context, env *environment, docType types.DocumentType) (*types.Draft, error) {
	var systemKey, userKey string
	switch docType {
	case types.DocumentCV:
		systemKey, userKey = "generate-cv-system", "generate-cv"
	case types.DocumentCover:
		systemKey, userKey = "generate-cover-system", "generate-cover"
	default:
		return nil, &GenerationError{Message: "unsupported document type " + string(docType)}
	}

	prompt := prompts.Format(prompts.MustGet("generation.json", userKey), promptData(env))
	msgs := llm.SystemAndUser(prompts.MustGet("generation.json", systemKey), prompt)

	raw, err := g.llm.Complete(ctx, msgs, llm.Options{
		Temperature:  0.7,
		JSONResponse: true,
	})
	if err != nil {
		return nil, &GenerationError{Message: "document generation failed", Cause: err}
	}

	cleaned := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.GeneratedDocument, cleaned); err != nil {
		return nil, &GenerationError{Message: "model returned invalid document", Cause: err}
	}

	var out struct {
		CVContent    string           `json:"cv_content"`
		CoverContent string           `json:"cover_content"`
		Citations    []types.Citation `json:"citations"`
	}
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return nil, &GenerationError{Message: "failed to decode document", Cause: err}
	}

	content := out.CVContent
	if docType == types.DocumentCover {
		content = out.CoverContent
	}
	if content == "" {
		return nil, &GenerationError{Message: "model returned empty " + string(docType) + " content"}
	}
	if out.Citations == nil {
		out.Citations = []types.Citation{}
	}

	g.logger.Debug().
		Str("type", string(docType)).
		Int("alignment", int(env.alignment)).
		Int("citations", len(out.Citations)).
		Msg("document generated")

	return &types.Draft{Content: content, Citations: out.Citations}, nil
}

func promptData(env *environment) map[string]string {
	return map[string]string{
		"Skills":            joinList(env.profile.Skills),
		"Experience":        renderExperience(env.profile.Experience),
		"Education":         renderEducation(env.profile.Education),
		"Projects":          renderProjects(env.profile.Projects),
		"Summary":           strOrDash(env.profile.Summary),
		"JobDescription":    renderJob(env.job),
		"CompanyValues":     joinList(env.company.Values),
		"CompanyCulture":    joinList(env.company.Culture),
		"CompanyMission":    strOrDash(env.company.Mission),
		"AlignmentLevel":    strconv.Itoa(int(env.alignment)),
		"AlignmentGuidance": env.alignment.Description(),
	}
}
