// Package profile turns a user's uploaded career materials into a structured
// professional profile via a model call. Extraction is memoized per durable
// user; guest extractions run from a request-scoped snapshot and leave no
// trace in the cache or the database.
package profile

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/prompts"
	"github.com/philipposk/ThatJob/internal/schemas"
	"github.com/philipposk/ThatJob/internal/types"
)

// DefaultTTL is how long an extracted profile stays fresh in the cache.
const DefaultTTL = time.Hour

// Extractor runs profile extraction over a material source.
type Extractor struct {
	llm    llm.Completer
	cache  cache.Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// New creates an Extractor. A zero ttl falls back to DefaultTTL.
func New(completer llm.Completer, store cache.Store, ttl time.Duration, logger zerolog.Logger) *Extractor {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Extractor{
		llm:    completer,
		cache:  store,
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the wall clock, for tests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Extract produces the structured profile for the source's materials. A
// subject with no materials gets an empty profile, which is a valid result,
// not an error; the empty result is never cached so a first upload takes
// effect immediately. Total model failure returns an *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, src MaterialSource) (*types.StructuredProfile, error) {
	key, cacheable := src.CacheKey()
	if cacheable {
		if cached, ok, err := cache.GetJSON[types.StructuredProfile](ctx, e.cache, key); err == nil && ok {
			return cached, nil
		}
	}

	materials, err := src.Materials(ctx)
	if err != nil {
		return nil, &ExtractionError{Message: "failed to load materials", Cause: err}
	}

	text := renderMaterials(materials)
	if text == "" {
		return types.EmptyProfile(e.now()), nil
	}

	extracted, err := e.extract(ctx, text)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := cache.SetJSON(ctx, e.cache, key, extracted, e.ttl); err != nil {
			e.logger.Warn().Err(err).Str("key", key).Msg("failed to cache extracted profile")
		}
	}
	if sink, ok := src.(ProfileSink); ok {
		if err := sink.SaveProfile(ctx, extracted); err != nil {
			e.logger.Warn().Err(err).Msg("failed to persist extracted profile")
		}
	}
	return extracted, nil
}

// InvalidateUser drops the cached profile for a durable user. Called after a
// material upload or delete so the next extraction sees current materials.
func (e *Extractor) InvalidateUser(ctx context.Context, userID string) error {
	return e.cache.Delete(ctx, cache.ProfileKey(userID))
}

func (e *Extractor) extract(ctx context.Context, materialsText string) (*types.StructuredProfile, error) {
	prompt := prompts.Format(prompts.MustGet("extraction.json", "extract-profile"), map[string]string{
		"Materials": materialsText,
	})
	msgs := llm.SystemAndUser(prompts.MustGet("extraction.json", "extract-profile-system"), prompt)

	raw, err := e.llm.Complete(ctx, msgs, llm.Options{
		Temperature:  0.2,
		JSONResponse: true,
	})
	if err != nil {
		return nil, &ExtractionError{Message: "profile extraction failed", Cause: err}
	}

	cleaned := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.UserProfile, cleaned); err != nil {
		return nil, &ExtractionError{Message: "model returned invalid profile", Cause: err}
	}

	var profile types.StructuredProfile
	if err := json.Unmarshal(cleaned, &profile); err != nil {
		return nil, &ExtractionError{Message: "failed to decode profile", Cause: err}
	}
	normalize(&profile)
	profile.LastUpdated = e.now()
	return &profile, nil
}

// renderMaterials concatenates material text for the prompt. Materials with
// no extracted content are skipped; an all-empty set renders to "".
func renderMaterials(materials []types.Material) string {
	var b strings.Builder
	for _, m := range materials {
		if m.Content == nil || strings.TrimSpace(*m.Content) == "" {
			continue
		}
		b.WriteString("=== ")
		b.WriteString(string(m.Type))
		if m.Title != nil && *m.Title != "" {
			b.WriteString(": ")
			b.WriteString(*m.Title)
		}
		b.WriteString(" ===\n")
		b.WriteString(strings.TrimSpace(*m.Content))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// normalize replaces nil sequences with empty ones so a model response with
// missing fields still yields a complete profile.
func normalize(p *types.StructuredProfile) {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []types.WorkExperience{}
	}
	if p.Education == nil {
		p.Education = []types.EducationRecord{}
	}
	if p.Projects == nil {
		p.Projects = []types.ProjectRecord{}
	}
	for i := range p.Experience {
		if p.Experience[i].Skills == nil {
			p.Experience[i].Skills = []string{}
		}
	}
	for i := range p.Projects {
		if p.Projects[i].Technologies == nil {
			p.Projects[i].Technologies = []string{}
		}
	}
}
