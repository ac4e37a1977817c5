// Package analyze turns a job posting URL or pasted text into a structured
// JobPosting: fetch and clean the page if needed, then model-parse the text
// into title, company, description and requirements.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/philipposk/ThatJob/internal/cache"
	"github.com/philipposk/ThatJob/internal/fetch"
	"github.com/philipposk/ThatJob/internal/llm"
	"github.com/philipposk/ThatJob/internal/prompts"
	"github.com/philipposk/ThatJob/internal/schemas"
	"github.com/philipposk/ThatJob/internal/types"
)

// BrowserTimeout bounds the headless render fallback for SPA job boards.
const BrowserTimeout = 45 * time.Second

// DefaultTTL is how long a URL analysis stays cached. Postings change
// rarely within a day.
const DefaultTTL = 24 * time.Hour

// Error indicates a posting could not be analyzed.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Analyzer parses job postings through the model chain.
type Analyzer struct {
	llm     llm.Completer
	browser bool
	cache   cache.Store
	ttl     time.Duration
	logger  zerolog.Logger
}

// New creates an Analyzer. browser enables the headless-render fallback for
// pages whose static HTML carries too little text.
func New(completer llm.Completer, browser bool, logger zerolog.Logger) *Analyzer {
	return &Analyzer{
		llm:     completer,
		browser: browser,
		logger:  logger,
	}
}

// WithCache enables caching of URL analyses under job:posting keys. The
// cached posting is shared across users; id and owner are assigned per
// caller on a hit.
func (a *Analyzer) WithCache(store cache.Store, ttl time.Duration) *Analyzer {
	a.cache = store
	a.ttl = ttl
	return a
}

// FromURL fetches a posting page, extracts its main text and analyzes it.
// The returned posting carries the source URL.
func (a *Analyzer) FromURL(ctx context.Context, userID uuid.UUID, url string) (*types.JobPosting, error) {
	if a.cache != nil {
		if cached, ok, err := cache.GetJSON[types.JobPosting](ctx, a.cache, cache.JobKey(url)); err == nil && ok {
			cached.ID = uuid.New()
			cached.UserID = userID
			a.logger.Debug().Str("url", url).Msg("job analysis cache hit")
			return cached, nil
		}
	}

	text, err := a.pageText(ctx, url)
	if err != nil {
		return nil, err
	}

	posting, err := a.FromText(ctx, userID, text)
	if err != nil {
		return nil, err
	}
	posting.URL = &url

	if a.cache != nil {
		if err := cache.SetJSON(ctx, a.cache, cache.JobKey(url), posting, a.ttl); err != nil {
			a.logger.Warn().Err(err).Str("url", url).Msg("failed to cache job analysis")
		}
	}
	return posting, nil
}

// FromText analyzes pasted posting text.
func (a *Analyzer) FromText(ctx context.Context, userID uuid.UUID, text string) (*types.JobPosting, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &Error{Message: "empty job posting text"}
	}

	prompt := prompts.Format(prompts.MustGet("analysis.json", "analyze-job"), map[string]string{
		"Content": text,
	})
	msgs := llm.SystemAndUser(prompts.MustGet("analysis.json", "analyze-job-system"), prompt)

	raw, err := a.llm.Complete(ctx, msgs, llm.Options{
		Temperature:  0.2,
		JSONResponse: true,
	})
	if err != nil {
		return nil, &Error{Message: "job analysis failed", Cause: err}
	}

	cleaned := []byte(llm.CleanJSONBlock(raw))
	if err := schemas.Validate(schemas.JobAnalysis, cleaned); err != nil {
		return nil, &Error{Message: "model returned invalid job analysis", Cause: err}
	}

	var parsed struct {
		Title        *string                `json:"title"`
		Company      *string                `json:"company"`
		Description  *string                `json:"description"`
		Requirements *types.JobRequirements `json:"requirements"`
	}
	if err := json.Unmarshal(cleaned, &parsed); err != nil {
		return nil, &Error{Message: "failed to decode job analysis", Cause: err}
	}

	if parsed.Requirements != nil {
		if parsed.Requirements.Skills == nil {
			parsed.Requirements.Skills = []string{}
		}
		if parsed.Requirements.Responsibilities == nil {
			parsed.Requirements.Responsibilities = []string{}
		}
		if lvl := parsed.Requirements.ExperienceLevel; lvl != nil && !lvl.Valid() {
			parsed.Requirements.ExperienceLevel = nil
		}
	}

	return &types.JobPosting{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        parsed.Title,
		Company:      parsed.Company,
		Description:  parsed.Description,
		Requirements: parsed.Requirements,
	}, nil
}

// pageText fetches the page and extracts its main text, re-rendering through
// the browser when the static body is too thin.
func (a *Analyzer) pageText(ctx context.Context, url string) (string, error) {
	result, err := fetch.URL(ctx, url, nil)
	if err != nil {
		return "", &Error{Message: "failed to fetch job posting", Cause: err}
	}

	text, err := fetch.ExtractMainText(result.HTML, fetch.JobPostingSelectors())
	if err != nil {
		return "", &Error{Message: "failed to extract posting text", Cause: err}
	}

	if fetch.ShouldUseBrowser(text) && a.browser {
		a.logger.Info().Str("url", url).Msg("static fetch too thin, rendering in browser")
		html, err := fetch.WithBrowser(ctx, url, BrowserTimeout, a.logger)
		if err != nil {
			a.logger.Warn().Err(err).Str("url", url).Msg("browser render failed, keeping static text")
			return text, nil
		}
		rendered, err := fetch.ExtractMainText(html, fetch.JobPostingSelectors())
		if err == nil && len(rendered) > len(text) {
			return rendered, nil
		}
	}
	return text, nil
}
