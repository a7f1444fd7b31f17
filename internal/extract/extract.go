package extract

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/deepika/coldgen/internal/fetch"
	"github.com/deepika/coldgen/internal/llm"
	"github.com/deepika/coldgen/internal/types"
)

// Options configures extraction behavior.
type Options struct {
	// Client enables LLM-assisted structured extraction when set.
	Client llm.Client
	// Verbose logs detail about the extraction process.
	Verbose bool
}

// Extract parses a fetched listing page into a normalized JobListing.
// Missing title/company are tolerated (left empty); a page with no extractable
// text at all fails with ErrNoContent.
func Extract(ctx context.Context, page *fetch.Result, opts *Options) (*types.JobListing, error) {
	if opts == nil {
		opts = &Options{}
	}

	platform := fetch.DetectPlatform(page.URL)
	if opts.Verbose {
		log.Printf("[VERBOSE] Detected platform: %s", platform)
	}

	text, err := fetch.ExtractMainText(page.HTML, fetch.ContentSelectors(platform), fetch.NoiseSelectors(platform)...)
	if err != nil {
		// Not parseable as HTML; treat the body as plain text.
		text = page.HTML
	}

	cleaned := CleanText(text)
	if opts.Verbose {
		log.Printf("[VERBOSE] Cleaned text: %d chars", len(cleaned))
	}
	if cleaned == "" {
		return nil, ErrNoContent
	}

	job := &types.JobListing{
		URL:         page.URL,
		Description: cleaned,
		RawSource:   page.HTML,
	}
	fillDocumentFields(job, page.HTML)
	job.Skills = RecognizeSkills(cleaned)

	if opts.Client != nil {
		structured, serr := extractStructured(ctx, opts.Client, cleaned)
		if serr != nil {
			if opts.Verbose {
				log.Printf("[VERBOSE] %v, keeping heuristic fields", serr)
			}
		} else {
			mergeStructured(job, structured)
		}
	}

	return job, nil
}

// fillDocumentFields populates title and company from document metadata.
func fillDocumentFields(job *types.JobListing, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		job.Title = strings.TrimSpace(v)
	} else if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		job.Title = h1
	} else if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		job.Title = t
	}

	if v, ok := doc.Find(`meta[property="og:site_name"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		job.Company = strings.TrimSpace(v)
	} else if parsed, err := url.Parse(job.URL); err == nil && parsed.Host != "" {
		job.Company = strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")
	}
}

// mergeStructured overlays LLM-extracted fields onto the heuristic listing.
// Heuristic values survive wherever the model returned nothing.
func mergeStructured(job *types.JobListing, s *structuredListing) {
	if strings.TrimSpace(s.Role) != "" {
		job.Title = strings.TrimSpace(s.Role)
	}
	if strings.TrimSpace(s.Company) != "" {
		job.Company = strings.TrimSpace(s.Company)
	}
	if strings.TrimSpace(s.Experience) != "" {
		job.Experience = strings.TrimSpace(s.Experience)
	}
	if strings.TrimSpace(s.Description) != "" {
		job.Description = strings.TrimSpace(s.Description)
	}
	if len(s.Skills) > 0 {
		skills := make([]string, 0, len(s.Skills))
		for _, skill := range s.Skills {
			if trimmed := strings.TrimSpace(skill); trimmed != "" {
				skills = append(skills, trimmed)
			}
		}
		if len(skills) > 0 {
			job.Skills = skills
		}
	}
}
