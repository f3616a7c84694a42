package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hyperifyio/seoscan/internal/report"
)

// ErrNotFound is returned when no report has been persisted for a URL.
var ErrNotFound = errors.New("report not found")

// Postgres persists assembled reports: the JSON blob verbatim plus the
// numeric scores as separate columns for querying.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Postgres) Close() {
	s.pool.Close()
}

// Init creates the reports table if it does not exist.
func (s *Postgres) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS reports (
			id                     BIGSERIAL PRIMARY KEY,
			url                    TEXT NOT NULL,
			overall_score          INT NOT NULL,
			meta_score             INT NOT NULL,
			page_quality_score     INT NOT NULL,
			link_structure_score   INT NOT NULL,
			performance_score      INT NOT NULL,
			crawlability_score     INT NOT NULL,
			external_factors_score INT NOT NULL,
			report                 JSONB NOT NULL,
			created_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS reports_url_created_idx ON reports (url, created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Save stores the report JSON unchanged alongside the extracted scores. A
// new row is inserted per scan; existing rows are never updated.
func (s *Postgres) Save(ctx context.Context, r *report.Report) error {
	blob, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO reports (
			url, overall_score, meta_score, page_quality_score,
			link_structure_score, performance_score, crawlability_score,
			external_factors_score, report, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		r.URL,
		r.OverallScore,
		r.Sections[report.SectionMeta].Score,
		r.Sections[report.SectionPageQuality].Score,
		r.Sections[report.SectionLinkStructure].Score,
		r.Sections[report.SectionPerformance].Score,
		r.Sections[report.SectionCrawlability].Score,
		r.Sections[report.SectionExternalFactors].Score,
		blob,
		r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Latest returns the most recently persisted report for the URL.
func (s *Postgres) Latest(ctx context.Context, url string) (*report.Report, error) {
	var blob []byte
	err := s.pool.QueryRow(ctx,
		`SELECT report FROM reports WHERE url = $1 ORDER BY created_at DESC LIMIT 1`,
		url,
	).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}
	var r report.Report
	if err := json.Unmarshal(blob, &r); err != nil {
		return nil, fmt.Errorf("decode stored report: %w", err)
	}
	return &r, nil
}
