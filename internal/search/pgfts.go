package search

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Search ranks posts by ts_rank over the generated fts column and builds
// snippets with ts_headline.
func (p *PgFTS) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	where := "fts @@ plainto_tsquery('english', $1)"
	args := []any{q.Text}
	if q.Category != "" {
		args = append(args, q.Category)
		where += " AND category = $" + strconv.Itoa(len(args))
	}
	args = append(args, q.limit(), q.offset())

	query := fmt.Sprintf(`
		SELECT id, title, category,
			ts_headline('english', description, plainto_tsquery('english', $1), 'MaxFragments=1,MaxWords=30') AS snippet,
			COUNT(*) OVER() AS total
		FROM posts
		WHERE %s
		ORDER BY ts_rank(fts, plainto_tsquery('english', $1)) DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts search: %w", err)
	}
	defer rows.Close()

	var results []Result
	total := 0
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.Snippet, &total); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgfts iterate: %w", err)
	}
	return results, total, nil
}

// LoadAllRecords returns every post for a full reindex.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]PostRecord, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, title, category, description FROM posts`)
	if err != nil {
		return nil, fmt.Errorf("load posts: %w", err)
	}
	defer rows.Close()

	records := make([]PostRecord, 0)
	for rows.Next() {
		var r PostRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Category, &r.Description); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return records, nil
}
