package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Skufu/healthdesk/internal/faq"
)

var ErrNoFAQEntries = errors.New("faq_entries table is empty")

// FAQEntries returns the corpus in position order.
func (d *DB) FAQEntries(ctx context.Context) ([]faq.Entry, error) {
	rows, err := d.Pool.Query(ctx, `SELECT question, answer FROM faq_entries ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query faq entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (faq.Entry, error) {
		var e faq.Entry
		err := row.Scan(&e.Question, &e.Answer)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan faq entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoFAQEntries
	}
	return entries, nil
}

// ReplaceFAQEntries swaps the stored corpus for entries in one transaction.
// Running services keep the corpus they loaded at startup.
func (d *DB) ReplaceFAQEntries(ctx context.Context, entries []faq.Entry) error {
	if err := faq.Validate(entries); err != nil {
		return err
	}

	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM faq_entries`); err != nil {
		return fmt.Errorf("clear faq entries: %w", err)
	}

	rows := make([][]any, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []any{i, e.Question, e.Answer})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"faq_entries"},
		[]string{"position", "question", "answer"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return fmt.Errorf("copy faq entries: %w", err)
	}

	return tx.Commit(ctx)
}
