// Package types provides type definitions for structured data used throughout the coldgen system.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// MessageType is the category of outreach message to generate.
type MessageType string

// Supported message types.
const (
	MessageColdEmail       MessageType = "cold_email"
	MessageLinkedIn        MessageType = "linkedin_message"
	MessageReferralRequest MessageType = "referral_request"
)

// ParseMessageType converts a raw form value into a MessageType.
// Unrecognized values are rejected at the boundary so they never reach the generator.
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case MessageColdEmail, MessageLinkedIn, MessageReferralRequest:
		return MessageType(s), nil
	default:
		return "", fmt.Errorf("unrecognized message type %q", s)
	}
}

// Tone is the writing tone for the generated message.
type Tone string

// Supported tones.
const (
	ToneFormal       Tone = "formal"
	ToneCasual       Tone = "casual"
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
)

// ParseTone converts a raw form value into a Tone.
func ParseTone(s string) (Tone, error) {
	switch Tone(s) {
	case ToneFormal, ToneCasual, ToneProfessional, ToneFriendly:
		return Tone(s), nil
	default:
		return "", fmt.Errorf("unrecognized tone %q", s)
	}
}

// JobListing represents a normalized job record extracted from a listing page.
// It is immutable once created and owned by the pipeline run that produced it.
type JobListing struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Experience  string   `json:"experience,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	Description string   `json:"description"`
	RawSource   string   `json:"-"`
}

// RequesterProfile holds the identity and context of the person the message is written for.
// It is supplied per request and not persisted beyond the request lifecycle.
type RequesterProfile struct {
	Name       string `json:"name" validate:"required,min=1"`
	Background string `json:"background,omitempty"`
}

// GenerationRequest is the validated input handed to the prompt composer.
type GenerationRequest struct {
	Job         JobListing       `json:"job"`
	Profile     RequesterProfile `json:"profile" validate:"required"`
	MessageType MessageType      `json:"message_type" validate:"required,oneof=cold_email linkedin_message referral_request"`
	Tone        Tone             `json:"tone" validate:"required,oneof=formal casual professional friendly"`
}

// Validate validates the GenerationRequest using the validator.
func (r *GenerationRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := validate.Struct(&r.Profile); err != nil {
		return err
	}
	return nil
}
