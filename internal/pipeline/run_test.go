package pipeline

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepika/coldgen/internal/fetch"
	"github.com/deepika/coldgen/internal/llm"
	"github.com/deepika/coldgen/internal/portfolio"
)

const listingHTML = `<html>
<head><meta property="og:title" content="Senior Go Engineer"><meta property="og:site_name" content="Acme Corp"></head>
<body><main>
<h1>Senior Go Engineer</h1>
<p>Build distributed systems in Go with PostgreSQL and Kubernetes.</p>
</main></body>
</html>`

// fakeFetcher serves canned pages keyed by URL.
type fakeFetcher struct {
	pages map[string]*fetch.Result
	err   error
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*fetch.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	page, ok := f.pages[url]
	if !ok {
		return nil, &fetch.Error{URL: url, Kind: fetch.KindHTTP, StatusCode: 404, Message: "HTTP status 404"}
	}
	return page, nil
}

// fakeGenerator cycles through canned message texts.
type fakeGenerator struct {
	texts []string
	err   error
	calls int
}

func (g *fakeGenerator) GenerateMessage(ctx context.Context, prompt string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	text := g.texts[g.calls%len(g.texts)]
	g.calls++
	return text, nil
}

func (g *fakeGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return "", &llm.GenerationError{Kind: llm.ModelUnavailable, Message: "not used"}
}

func (g *fakeGenerator) Close() error { return nil }

const listingURL = "https://careers.acme.example/jobs/42"

func newTestRunner(gen *fakeGenerator, store portfolio.Store) *Runner {
	return New(gen, Options{
		Fetcher: &fakeFetcher{pages: map[string]*fetch.Result{
			listingURL: {URL: listingURL, HTML: listingHTML, StatusCode: 200},
		}},
		Store: store,
	})
}

func validRequest() Request {
	return Request{
		URL:         listingURL,
		Name:        "Deepika",
		Background:  "a backend engineer",
		MessageType: "cold_email",
		Tone:        "formal",
	}
}

func TestGenerate_HappyPath(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"Subject: Senior Go Engineer\n\nDear hiring team, ..."}}
	runner := newTestRunner(gen, nil)

	result := runner.Generate(context.Background(), validRequest())

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 1, result.JobsFound)
	assert.Empty(t, result.Error)
	assert.Equal(t, "Subject: Senior Go Engineer\n\nDear hiring team, ...", result.MessageText)
	assert.NotEqual(t, uuid.Nil, result.RunID)

	require.NotNil(t, result.Spec)
	assert.Contains(t, result.Spec.Text, "You are Deepika")
	assert.Contains(t, result.Spec.Job.Skills, "Go")
}

func TestGenerate_InvalidURL(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"unused"}}
	runner := newTestRunner(gen, nil)

	req := validRequest()
	req.URL = "not-a-url"
	result := runner.Generate(context.Background(), req)

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "Invalid URL", result.Error)
	assert.Equal(t, 0, result.JobsFound)
	assert.Empty(t, result.MessageText)
	assert.Equal(t, 0, gen.calls, "no model call for an invalid URL")
}

func TestGenerate_MissingName(t *testing.T) {
	runner := newTestRunner(&fakeGenerator{texts: []string{"unused"}}, nil)

	req := validRequest()
	req.Name = ""
	result := runner.Generate(context.Background(), req)

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "username is required", result.Error)
	assert.Equal(t, 0, result.JobsFound)
}

func TestGenerate_BadEnums(t *testing.T) {
	runner := newTestRunner(&fakeGenerator{texts: []string{"unused"}}, nil)

	req := validRequest()
	req.MessageType = "spam"
	result := runner.Generate(context.Background(), req)
	assert.Equal(t, StateFailed, result.State)
	assert.Contains(t, result.Error, "spam")

	req = validRequest()
	req.Tone = "shouty"
	result = runner.Generate(context.Background(), req)
	assert.Equal(t, StateFailed, result.State)
	assert.Contains(t, result.Error, "shouty")
}

func TestGenerate_FetchHTTPError(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"unused"}}
	runner := newTestRunner(gen, nil)

	req := validRequest()
	req.URL = "https://careers.acme.example/jobs/404"
	result := runner.Generate(context.Background(), req)

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "The listing page returned HTTP 404", result.Error)
	assert.Equal(t, 0, result.JobsFound)
}

func TestGenerate_FetchTimeout(t *testing.T) {
	runner := New(&fakeGenerator{texts: []string{"unused"}}, Options{
		Fetcher: &fakeFetcher{err: &fetch.Error{URL: listingURL, Kind: fetch.KindTimeout, Message: "request timed out"}},
	})

	result := runner.Generate(context.Background(), validRequest())
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "The listing page timed out", result.Error)
	assert.Equal(t, 0, result.JobsFound)
}

func TestGenerate_NoContent(t *testing.T) {
	runner := New(&fakeGenerator{texts: []string{"unused"}}, Options{
		Fetcher: &fakeFetcher{pages: map[string]*fetch.Result{
			listingURL: {URL: listingURL, HTML: "<html><body><script>app()</script></body></html>", StatusCode: 200},
		}},
	})

	result := runner.Generate(context.Background(), validRequest())
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "The page has no extractable job content", result.Error)
	assert.Equal(t, 0, result.JobsFound)
}

func TestGenerate_ModelFailureAfterExtraction(t *testing.T) {
	gen := &fakeGenerator{err: &llm.GenerationError{Kind: llm.ModelUnavailable, Message: "model service unavailable"}}
	runner := newTestRunner(gen, nil)

	result := runner.Generate(context.Background(), validRequest())

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "The model service is unavailable", result.Error)
	assert.Equal(t, 1, result.JobsFound, "the listing was still found even though generation failed")
	assert.Empty(t, result.MessageText)
}

func TestGenerate_EmptyModelResponse(t *testing.T) {
	gen := &fakeGenerator{err: &llm.GenerationError{Kind: llm.EmptyResponse, Message: "no text parts in response"}}
	runner := newTestRunner(gen, nil)

	result := runner.Generate(context.Background(), validRequest())
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "The model returned an empty response", result.Error)
	assert.Equal(t, 1, result.JobsFound)
}

func TestGenerate_PortfolioProjectsReachPrompt(t *testing.T) {
	store := portfolio.NewMemoryStore(
		portfolio.Project{Techstack: "Go PostgreSQL", Description: "Built a listing ingestion pipeline in Go"},
		portfolio.Project{Techstack: "React CSS", Description: "Shipped a dashboard frontend"},
	)
	gen := &fakeGenerator{texts: []string{"message"}}
	runner := newTestRunner(gen, store)

	result := runner.Generate(context.Background(), validRequest())

	require.Equal(t, StateDone, result.State)
	require.NotNil(t, result.Spec)
	assert.Contains(t, result.Spec.Text, "Built a listing ingestion pipeline in Go")
	assert.NotContains(t, result.Spec.Text, "Shipped a dashboard frontend", "unrelated projects stay out of the prompt")
}

func TestRegenerate_SameSpecDifferentText(t *testing.T) {
	gen := &fakeGenerator{texts: []string{"first draft", "second draft"}}
	runner := newTestRunner(gen, nil)

	first := runner.Generate(context.Background(), validRequest())
	require.Equal(t, StateDone, first.State)

	second := runner.Regenerate(context.Background(), first.Spec)
	require.Equal(t, StateDone, second.State)

	assert.Equal(t, first.Spec, second.Spec, "regenerate reuses the composed spec verbatim")
	assert.NotEqual(t, first.MessageText, second.MessageText)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, 1, second.JobsFound)
}

func TestRegenerate_NilSpec(t *testing.T) {
	runner := newTestRunner(&fakeGenerator{texts: []string{"unused"}}, nil)

	result := runner.Regenerate(context.Background(), nil)
	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, "nothing to regenerate", result.Error)
}

func TestGenerate_RateLimitRetrySucceeds(t *testing.T) {
	gen := &rateLimitedOnce{text: "recovered message"}
	runner := New(gen, Options{
		Fetcher: &fakeFetcher{pages: map[string]*fetch.Result{
			listingURL: {URL: listingURL, HTML: listingHTML, StatusCode: 200},
		}},
		RetryBackoff: 1, // nanosecond; tests should not sleep
	})

	result := runner.Generate(context.Background(), validRequest())
	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, "recovered message", result.MessageText)
	assert.Equal(t, 2, gen.calls)
}

// rateLimitedOnce fails the first message call with a rate limit, then succeeds.
type rateLimitedOnce struct {
	text  string
	calls int
}

func (g *rateLimitedOnce) GenerateMessage(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.calls == 1 {
		return "", &llm.GenerationError{Kind: llm.RateLimited, Message: "rate limited by model service"}
	}
	return g.text, nil
}

func (g *rateLimitedOnce) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return "", &llm.GenerationError{Kind: llm.ModelUnavailable, Message: "not used"}
}

func (g *rateLimitedOnce) Close() error { return nil }
