package prompt

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deepika/coldgen/internal/types"
)

// MaxDescriptionChars is the documented maximum job description length carried
// into a prompt. Longer descriptions are truncated with TruncationMarker so
// they never blow the model context, and never silently.
const MaxDescriptionChars = 4000

// TruncationMarker is appended when a description is cut at MaxDescriptionChars.
const TruncationMarker = " ..."

// ErrInvalidInput is returned when compose inputs fail validation.
var ErrInvalidInput = errors.New("invalid input")

// noProjectsFallback is used when portfolio retrieval matched nothing.
const noProjectsFallback = "No specific projects matched, but the candidate has general software engineering experience."

// Spec is the structured instruction payload handed to the language model.
// Composition is pure: identical inputs always produce an identical Spec.
type Spec struct {
	MessageType types.MessageType      `json:"message_type"`
	Tone        types.Tone             `json:"tone"`
	Job         types.JobListing       `json:"job"`
	Requester   types.RequesterProfile `json:"requester"`
	Projects    []string               `json:"projects,omitempty"`
	Text        string                 `json:"text"`
}

// Compose combines the job record, requester profile, message type, and tone
// into a generation request. It performs no I/O and fails only on invalid input.
func Compose(job types.JobListing, profile types.RequesterProfile, msgType types.MessageType, tone types.Tone, projects []string) (*Spec, error) {
	if _, err := types.ParseMessageType(string(msgType)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if _, err := types.ParseTone(string(tone)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, fmt.Errorf("%w: requester name is required", ErrInvalidInput)
	}

	job.Description = TruncateDescription(job.Description)

	template, err := Get("messages.json", string(msgType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	text := Format(template, map[string]string{
		"Name":       profile.Name,
		"Background": backgroundLine(profile),
		"Tone":       string(tone),
		"JobFacts":   FormatJobFacts(job),
		"Projects":   projectsBlock(projects),
	})

	return &Spec{
		MessageType: msgType,
		Tone:        tone,
		Job:         job,
		Requester:   profile,
		Projects:    projects,
		Text:        text,
	}, nil
}

// TruncateDescription enforces the documented description maximum.
// The cut never splits a multi-byte rune, so the result is always valid UTF-8.
func TruncateDescription(desc string) string {
	if len(desc) <= MaxDescriptionChars {
		return desc
	}
	cut := MaxDescriptionChars
	for cut > 0 && !utf8.RuneStart(desc[cut]) {
		cut--
	}
	return desc[:cut] + TruncationMarker
}

// FormatJobFacts renders the job record as labeled lines for the prompt.
// Empty fields are omitted rather than rendered as blanks.
func FormatJobFacts(job types.JobListing) string {
	var parts []string
	if job.Title != "" {
		parts = append(parts, "Role: "+job.Title)
	}
	if job.Company != "" {
		parts = append(parts, "Company: "+job.Company)
	}
	if job.Experience != "" {
		parts = append(parts, "Experience: "+job.Experience)
	}
	if len(job.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(job.Skills, ", "))
	}
	if job.Description != "" {
		parts = append(parts, "Description: "+job.Description)
	}
	if len(parts) == 0 {
		return "No job information available"
	}
	return strings.Join(parts, "\n")
}

func backgroundLine(profile types.RequesterProfile) string {
	if strings.TrimSpace(profile.Background) == "" {
		return "a software practitioner interested in this role"
	}
	return profile.Background
}

func projectsBlock(projects []string) string {
	var kept []string
	for _, p := range projects {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	if len(kept) == 0 {
		return noProjectsFallback
	}
	return strings.Join(kept, "\n")
}
