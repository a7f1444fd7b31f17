// Package portfolio stores the requester's project portfolio and retrieves the
// projects most relevant to a listing's skills. Retrieved project descriptions
// are folded into the generation prompt so the message cites real work.
package portfolio

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultQueryLimit is the number of projects retrieved per listing.
const DefaultQueryLimit = 5

// Project is one portfolio entry: a tech stack and a short description of the work.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Techstack   string    `json:"techstack"`
	Description string    `json:"description"`
}

// Store holds portfolio projects and answers skill-based relevance queries.
type Store interface {
	// Query returns up to limit projects relevant to the given skills,
	// most relevant first. A zero limit uses DefaultQueryLimit.
	Query(ctx context.Context, skills []string, limit int) ([]Project, error)
	// Add inserts a new project.
	Add(ctx context.Context, techstack, description string) error
	// All returns every stored project.
	All(ctx context.Context) ([]Project, error)
}

// MemoryStore is an in-memory Store, typically seeded from a CSV file.
type MemoryStore struct {
	mu       sync.RWMutex
	projects []Project
}

// NewMemoryStore creates a store holding the given projects.
func NewMemoryStore(projects ...Project) *MemoryStore {
	return &MemoryStore{projects: projects}
}

// Query returns the most relevant projects for the given skills.
func (s *MemoryStore) Query(_ context.Context, skills []string, limit int) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank(s.projects, skills, limit), nil
}

// Add inserts a new project.
func (s *MemoryStore) Add(_ context.Context, techstack, description string) error {
	if strings.TrimSpace(techstack) == "" || strings.TrimSpace(description) == "" {
		return fmt.Errorf("both techstack and description are required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append(s.projects, Project{
		ID:          uuid.New(),
		Techstack:   techstack,
		Description: description,
	})
	return nil
}

// All returns every stored project.
func (s *MemoryStore) All(_ context.Context) ([]Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, len(s.projects))
	copy(out, s.projects)
	return out, nil
}

// LoadCSV reads a portfolio CSV with a "Techstack,Description" header.
// Rows with missing fields are skipped rather than failing the load.
func LoadCSV(path string) ([]Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open portfolio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse portfolio CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip a header row when present.
	start := 0
	if strings.EqualFold(strings.TrimSpace(records[0][0]), "techstack") {
		start = 1
	}

	var projects []Project
	for _, record := range records[start:] {
		if len(record) < 2 {
			continue
		}
		techstack := strings.TrimSpace(record[0])
		description := strings.TrimSpace(record[1])
		if techstack == "" || description == "" {
			continue
		}
		projects = append(projects, Project{
			ID:          uuid.New(),
			Techstack:   techstack,
			Description: description,
		})
	}
	return projects, nil
}

// AppendCSV appends a project row to a portfolio CSV, creating the file with
// a header when it does not exist yet.
func AppendCSV(path, techstack, description string) error {
	if strings.TrimSpace(techstack) == "" || strings.TrimSpace(description) == "" {
		return fmt.Errorf("both techstack and description are required")
	}

	_, statErr := os.Stat(path)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open portfolio file: %w", err)
	}
	defer func() { _ = f.Close() }()

	writer := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := writer.Write([]string{"Techstack", "Description"}); err != nil {
			return fmt.Errorf("failed to write portfolio header: %w", err)
		}
	}
	if err := writer.Write([]string{techstack, description}); err != nil {
		return fmt.Errorf("failed to write portfolio row: %w", err)
	}
	writer.Flush()
	return writer.Error()
}

// Descriptions extracts the description strings from a project slice.
func Descriptions(projects []Project) []string {
	out := make([]string, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Description)
	}
	return out
}

var reToken = regexp.MustCompile(`[a-z0-9+#.]+`)

// rank scores projects by token overlap between their tech stack and the
// requested skills. Zero-score projects are dropped; ties keep insertion order.
func rank(projects []Project, skills []string, limit int) []Project {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	want := make(map[string]bool)
	for _, skill := range skills {
		for _, token := range tokenize(skill) {
			want[token] = true
		}
	}
	if len(want) == 0 {
		return nil
	}

	type scored struct {
		project Project
		score   int
		order   int
	}
	var candidates []scored
	for i, p := range projects {
		score := 0
		seen := make(map[string]bool)
		for _, token := range tokenize(p.Techstack + " " + p.Description) {
			if want[token] && !seen[token] {
				seen[token] = true
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{project: p, score: score, order: i})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	out := make([]Project, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.project)
	}
	return out
}

func tokenize(s string) []string {
	return reToken.FindAllString(strings.ToLower(s), -1)
}
