package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type seedDocument struct {
	Title    string
	Content  string
	Author   string
	Category string
	Status   string
}

// Demo corpus. Categories and statuses are picked so that every facet
// dimension has more than one value.
var seedDocuments = []seedDocument{
	{"Getting Started Guide", "How to set up the project, configure the environment and run the first search.", "Alice Johnson", "document", "approved"},
	{"API Reference", "Complete reference for the public search and document endpoints.", "Alice Johnson", "document", "approved"},
	{"Quarterly Report Q1", "Summary of search traffic and indexing volume for the first quarter.", "Bob Smith", "report", "pending"},
	{"Quarterly Report Q2", "Summary of search traffic and indexing volume for the second quarter.", "Bob Smith", "report", "draft"},
	{"Architecture Overview", "High level view of the orchestrator, the relational store and the three engines.", "Carol White", "document", "approved"},
	{"Incident Postmortem", "Analysis of the March indexing outage and the fallback behaviour observed.", "Carol White", "report", "approved"},
	{"Onboarding Checklist", "Steps for new team members joining the search platform team.", "Dave Brown", "task", "draft"},
	{"Index Maintenance Task", "Recurring task covering segment merges and collection compaction.", "Dave Brown", "task", "pending"},
}

// SeedDemoData inserts the demo corpus when the documents table is empty.
// It is a no-op on a populated database so restarts never duplicate rows.
func SeedDemoData(ctx context.Context, db *sql.DB, loc *time.Location) error {
	start := time.Now()

	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count); err != nil {
		return fmt.Errorf("seed count check: %w", err)
	}
	if count > 0 {
		logJSON(loc, map[string]any{
			"component": "database",
			"event":     "db_seed_skip",
			"status":    "success",
			"msg":       "documents table already populated",
			"row_count": count,
		})
		return nil
	}

	const q = `
		INSERT INTO documents (title, content, author, category, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, d := range seedDocuments {
		if _, err := db.ExecContext(ctx, q, d.Title, d.Content, d.Author, d.Category, d.Status); err != nil {
			return fmt.Errorf("seed insert %q: %w", d.Title, err)
		}
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_seed_success",
		"status":      "success",
		"row_count":   len(seedDocuments),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}
