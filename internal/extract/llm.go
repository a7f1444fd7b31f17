package extract

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"

	"github.com/deepika/coldgen/internal/llm"
	"github.com/deepika/coldgen/internal/prompt"
)

//go:embed listing.schema.json
var listingSchema string

// maxStructuredInputChars bounds the page text handed to the model for extraction.
const maxStructuredInputChars = 12000

// structuredListing is the JSON shape the extraction prompt asks for.
type structuredListing struct {
	Role        string   `json:"role"`
	Company     string   `json:"company"`
	Experience  string   `json:"experience"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
}

// extractStructured asks the model for structured listing fields and validates
// the response against the embedded JSON schema before trusting it.
func extractStructured(ctx context.Context, client llm.Client, cleanedText string) (*structuredListing, error) {
	if len(cleanedText) > maxStructuredInputChars {
		// Back up to a rune boundary so the cut never produces invalid UTF-8.
		cut := maxStructuredInputChars
		for cut > 0 && !utf8.RuneStart(cleanedText[cut]) {
			cut--
		}
		cleanedText = cleanedText[:cut]
	}

	template := prompt.MustGet("extraction.json", "extract-listing")
	p := prompt.Format(template, map[string]string{
		"PageText": cleanedText,
	})

	raw, err := client.GenerateJSON(ctx, p)
	if err != nil {
		return nil, &StructuredError{Message: "model call failed", Cause: err}
	}
	raw = llm.CleanJSONBlock(raw)

	if err := validateListingJSON(raw); err != nil {
		return nil, err
	}

	var listing structuredListing
	if err := json.Unmarshal([]byte(raw), &listing); err != nil {
		return nil, &StructuredError{Message: "failed to parse JSON response", Cause: err}
	}
	return &listing, nil
}

// validateListingJSON checks the model output against the listing schema.
func validateListingJSON(raw string) error {
	schemaLoader := gojsonschema.NewStringLoader(listingSchema)
	docLoader := gojsonschema.NewStringLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return &StructuredError{Message: "schema validation errored", Cause: err}
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return &StructuredError{Message: "response does not match listing schema: " + strings.Join(msgs, "; ")}
	}
	return nil
}
