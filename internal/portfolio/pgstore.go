package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is a PostgreSQL-backed Store for portfolios that outlive a process.
type PGStore struct {
	pool *pgxpool.Pool
}

// ConnectPG establishes a connection pool and verifies it.
func ConnectPG(ctx context.Context, databaseURL string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the portfolio table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS portfolio_projects (
			id UUID PRIMARY KEY,
			techstack TEXT NOT NULL,
			description TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create portfolio schema: %w", err)
	}
	return nil
}

// Add inserts a new project.
func (s *PGStore) Add(ctx context.Context, techstack, description string) error {
	if strings.TrimSpace(techstack) == "" || strings.TrimSpace(description) == "" {
		return fmt.Errorf("both techstack and description are required")
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO portfolio_projects (id, techstack, description) VALUES ($1, $2, $3)`,
		uuid.New(), techstack, description)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// All returns every stored project in insertion order.
func (s *PGStore) All(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, techstack, description FROM portfolio_projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Techstack, &p.Description); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}
	return projects, nil
}

// Query returns the most relevant projects for the given skills.
// Portfolios are small, so scoring happens in memory with the same ranking
// used by MemoryStore.
func (s *PGStore) Query(ctx context.Context, skills []string, limit int) ([]Project, error) {
	projects, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return rank(projects, skills, limit), nil
}
