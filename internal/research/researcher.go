// Package research produces structured company profiles (values, culture,
// mission, news) through a model call, cached per company name. Research is
// best-effort: any failure degrades to a minimal profile instead of
// propagating, because company context must never block document generation.
package research

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/prompts"
	"github.com/philipposk/ThatJob/internal/schemas"
	"github.com/philipposk/ThatJob/internal/types"
)

// DefaultTTL is how long research results stay fresh. Entries expire after
// this window and are recomputed lazily on the next access; there is no
// background refresh.
const DefaultTTL = 24 * time.Hour

// Researcher looks up company context with caching.
type Researcher struct {
	llm    llm.Completer
	cache  cache.Store
	ttl    time.Duration
	logger zerolog.Logger
}

// New creates a Researcher. A zero ttl falls back to DefaultTTL.
func New(completer llm.Completer, store cache.Store, ttl time.Duration, logger zerolog.Logger) *Researcher {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Researcher{
		llm:    completer,
		cache:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Company returns the research profile for a company name. Within the ttl
// window repeated calls issue at most one model call. Failed research is
// not cached, so the next access retries.
func (r *Researcher) Company(ctx context.Context, name string) *types.CompanyProfile {
	key := cache.CompanyKey(name)
	if cached, ok, err := cache.GetJSON[types.CompanyProfile](ctx, r.cache, key); err == nil && ok {
		return cached
	}

	profile, err := r.lookup(ctx, name)
	if err != nil {
		r.logger.Warn().Err(err).Str("company", name).Msg("company research failed, using minimal profile")
		return types.MinimalCompanyProfile(name)
	}

	if err := cache.SetJSON(ctx, r.cache, key, profile, r.ttl); err != nil {
		r.logger.Warn().Err(err).Str("company", name).Msg("failed to cache company profile")
	}
	return profile
}

func (r *Researcher) lookup(ctx context.Context, name string) (*types.CompanyProfile, error) {
	prompt := prompts.Format(prompts.MustGet("research.json", "research-company"), map[string]string{
		"Company": name,
	})
	msgs := llm.SystemAndUser(prompts.MustGet("research.json", "research-company-system"), prompt)

	raw, err := r.llm.Complete(ctx, msgs, llm.Options{
		Temperature:  0.3,
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	cleaned := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.CompanyProfile, cleaned); err != nil {
		return nil, err
	}

	var profile types.CompanyProfile
	if err := json.Unmarshal(cleaned, &profile); err != nil {
		return nil, err
	}
	if profile.Name == "" {
		profile.Name = name
	}
	normalize(&profile)
	return &profile, nil
}

// normalize replaces nil sequences with empty ones so downstream prompt
// construction never branches on nil.
func normalize(p *types.CompanyProfile) {
	if p.Values == nil {
		p.Values = []string{}
	}
	if p.Culture == nil {
		p.Culture = []string{}
	}
	if p.RecentNews == nil {
		p.RecentNews = []string{}
	}
	if p.Ethics == nil {
		p.Ethics = []string{}
	}
}
