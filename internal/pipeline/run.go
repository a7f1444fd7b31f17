// Package pipeline orchestrates the cold-message generation flow:
// fetch → extract → compose → generate. The runner is stateless between
// invocations; every call owns its records exclusively and callers always
// receive a GenerationResult, never a fault.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/deepika/coldgen/internal/extract"
	"github.com/deepika/coldgen/internal/fetch"
	"github.com/deepika/coldgen/internal/llm"
	"github.com/deepika/coldgen/internal/portfolio"
	"github.com/deepika/coldgen/internal/prompt"
	"github.com/deepika/coldgen/internal/types"
)

// State names the pipeline stages. Transitions happen only on success of the
// prior stage; any failure moves directly to StateFailed.
type State string

// Pipeline states.
const (
	StateIdle       State = "idle"
	StateFetching   State = "fetching"
	StateExtracting State = "extracting"
	StateComposing  State = "composing"
	StateGenerating State = "generating"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Request is the raw input surface from the presentation layer.
// Enum fields arrive as untyped strings and are converted at this boundary.
type Request struct {
	URL         string `json:"job_url"`
	Name        string `json:"username"`
	Background  string `json:"background,omitempty"`
	MessageType string `json:"message_type"`
	Tone        string `json:"tone"`
}

// GenerationResult is what every pipeline invocation returns.
// On failure Error is set and MessageText is empty; no partial message is surfaced.
type GenerationResult struct {
	RunID       uuid.UUID    `json:"run_id"`
	State       State        `json:"state"`
	MessageText string       `json:"message_text"`
	JobsFound   int          `json:"jobs_found"`
	Error       string       `json:"error,omitempty"`
	Spec        *prompt.Spec `json:"-"`
}

// Fetcher abstracts listing-page retrieval.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Options configures a Runner.
type Options struct {
	// Fetcher overrides the default cached fetcher.
	Fetcher Fetcher
	// Store supplies portfolio projects for prompt enrichment; optional.
	Store portfolio.Store
	// FetchOptions configures the default fetcher when Fetcher is nil.
	FetchOptions *fetch.Options
	// UseBrowser enables the headless-browser fallback for SPA listings.
	UseBrowser bool
	// StructuredExtraction enables LLM-assisted listing extraction.
	StructuredExtraction bool
	// RetryBackoff is the pause before the single rate-limit retry.
	RetryBackoff time.Duration
	// Verbose logs per-stage detail.
	Verbose bool
}

// Runner executes generation pipelines. Safe for concurrent use: it holds the
// shared LLM client and fetch cache but no per-request state.
type Runner struct {
	client  llm.Client
	fetcher Fetcher
	store   portfolio.Store
	opts    Options
}

// New creates a Runner around a process-wide LLM client.
func New(client llm.Client, opts Options) *Runner {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = fetch.NewCache(opts.FetchOptions, 0)
	}
	return &Runner{
		client:  client,
		fetcher: fetcher,
		store:   opts.Store,
		opts:    opts,
	}
}

// Generate runs the full pipeline for one request.
func (r *Runner) Generate(ctx context.Context, req Request) *GenerationResult {
	runID := uuid.New()

	// Boundary validation: closed enums and a syntactically valid URL,
	// rejected before any stage runs.
	msgType, err := types.ParseMessageType(req.MessageType)
	if err != nil {
		return failed(runID, err.Error(), 0)
	}
	tone, err := types.ParseTone(req.Tone)
	if err != nil {
		return failed(runID, err.Error(), 0)
	}
	profile := types.RequesterProfile{Name: req.Name, Background: req.Background}
	greq := types.GenerationRequest{Profile: profile, MessageType: msgType, Tone: tone}
	if err := greq.Validate(); err != nil {
		return failed(runID, "username is required", 0)
	}
	if _, err := fetch.NormalizeURL(req.URL); err != nil {
		return failed(runID, "Invalid URL", 0)
	}

	// Fetching
	r.logStage(StateFetching, req.URL)
	page, err := r.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return failed(runID, humanize(err), 0)
	}

	// Extracting
	r.logStage(StateExtracting, page.URL)
	extractOpts := &extract.Options{Verbose: r.opts.Verbose}
	if r.opts.StructuredExtraction {
		extractOpts.Client = r.client
	}
	job, err := extract.Extract(ctx, page, extractOpts)
	if err != nil {
		if r.opts.UseBrowser && errors.Is(err, extract.ErrNoContent) {
			job, err = r.extractViaBrowser(ctx, page, extractOpts)
		}
		if err != nil {
			return failed(runID, humanize(err), 0)
		}
	} else if r.opts.UseBrowser && fetch.ShouldUseBrowser(job.Description) {
		job = r.retryWithBrowser(ctx, page, extractOpts, job)
	}
	jobsFound := 1 // extraction guarantees a non-empty description

	// Portfolio retrieval is best-effort: a failed lookup degrades the
	// prompt, it does not fail the run.
	var projects []portfolio.Project
	if r.store != nil {
		projects, err = r.store.Query(ctx, job.Skills, 0)
		if err != nil {
			log.Printf("portfolio query failed: %v", err)
			projects = nil
		}
	}

	// Composing
	r.logStage(StateComposing, string(msgType))
	spec, err := prompt.Compose(*job, profile, msgType, tone, portfolio.Descriptions(projects))
	if err != nil {
		return failed(runID, humanize(err), jobsFound)
	}

	// Generating
	r.logStage(StateGenerating, "")
	text, err := llm.GenerateWithRetry(ctx, r.client, spec.Text, r.opts.RetryBackoff)
	if err != nil {
		return failed(runID, humanize(err), jobsFound)
	}

	return &GenerationResult{
		RunID:       runID,
		State:       StateDone,
		MessageText: text,
		JobsFound:   jobsFound,
		Spec:        spec,
	}
}

// Regenerate re-invokes only the generator with a previously composed spec.
// The generator is non-deterministic, so the new message may differ while the
// spec stays identical.
func (r *Runner) Regenerate(ctx context.Context, spec *prompt.Spec) *GenerationResult {
	runID := uuid.New()
	if spec == nil {
		return failed(runID, "nothing to regenerate", 0)
	}

	jobsFound := 0
	if spec.Job.Description != "" {
		jobsFound = 1
	}

	r.logStage(StateGenerating, "regenerate")
	text, err := llm.GenerateWithRetry(ctx, r.client, spec.Text, r.opts.RetryBackoff)
	if err != nil {
		return failed(runID, humanize(err), jobsFound)
	}

	return &GenerationResult{
		RunID:       runID,
		State:       StateDone,
		MessageText: text,
		JobsFound:   jobsFound,
		Spec:        spec,
	}
}

// retryWithBrowser re-renders a thin page in a headless browser and keeps
// whichever extraction produced more content.
func (r *Runner) retryWithBrowser(ctx context.Context, page *fetch.Result, opts *extract.Options, httpJob *types.JobListing) *types.JobListing {
	browserJob, err := r.extractViaBrowser(ctx, page, opts)
	if err != nil {
		if r.opts.Verbose {
			log.Printf("[VERBOSE] Browser fallback failed: %v, using HTTP content", err)
		}
		return httpJob
	}
	if len(browserJob.Description) > len(httpJob.Description) {
		return browserJob
	}
	return httpJob
}

func (r *Runner) extractViaBrowser(ctx context.Context, page *fetch.Result, opts *extract.Options) (*types.JobListing, error) {
	html, err := fetch.BrowserSimple(ctx, page.URL, r.opts.Verbose)
	if err != nil {
		return nil, err
	}
	rendered := &fetch.Result{URL: page.URL, HTML: html, StatusCode: page.StatusCode}
	return extract.Extract(ctx, rendered, opts)
}

func (r *Runner) logStage(state State, detail string) {
	if !r.opts.Verbose {
		return
	}
	if detail != "" {
		log.Printf("[VERBOSE] Stage %s: %s", state, detail)
		return
	}
	log.Printf("[VERBOSE] Stage %s", state)
}

// failed builds the terminal result for a failed run.
func failed(runID uuid.UUID, msg string, jobsFound int) *GenerationResult {
	return &GenerationResult{
		RunID:     runID,
		State:     StateFailed,
		JobsFound: jobsFound,
		Error:     msg,
	}
}

// humanize turns stage errors into the messages surfaced to the caller.
func humanize(err error) string {
	var ferr *fetch.Error
	if errors.As(err, &ferr) {
		switch ferr.Kind {
		case fetch.KindInvalidURL:
			return "Invalid URL"
		case fetch.KindTimeout:
			return "The listing page timed out"
		case fetch.KindHTTP:
			return fmt.Sprintf("The listing page returned HTTP %d", ferr.StatusCode)
		case fetch.KindConnection:
			return "Could not connect to the listing page"
		}
	}

	if errors.Is(err, extract.ErrNoContent) {
		return "The page has no extractable job content"
	}
	if errors.Is(err, prompt.ErrInvalidInput) {
		return err.Error()
	}

	var gerr *llm.GenerationError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case llm.RateLimited:
			return "The model service is rate limiting requests; try again shortly"
		case llm.EmptyResponse:
			return "The model returned an empty response"
		default:
			return "The model service is unavailable"
		}
	}

	return err.Error()
}
