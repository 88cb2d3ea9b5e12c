package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Document prefixes numbered through document_sequences.
const (
	SequencePR       = "PR"
	SequenceHandover = "TH"
)

// NextNumber reserves the next gapless number for (prefix, year) inside the
// caller's transaction and formats it as PREFIX-YEAR-NNNNN. A rolled back
// transaction releases the number.
func NextNumber(ctx context.Context, tx pgx.Tx, prefix string, year int) (string, error) {
	var lastNumber int64
	err := tx.QueryRow(ctx, `
		INSERT INTO document_sequences (type_code, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (type_code, year)
		DO UPDATE SET last_number = document_sequences.last_number + 1
		RETURNING last_number`,
		prefix, year,
	).Scan(&lastNumber)
	if err != nil {
		return "", fmt.Errorf("failed to generate gapless sequence number: %w", err)
	}
	return FormatNumber(prefix, year, lastNumber), nil
}

// FormatNumber renders a sequence number, e.g. PR-2024-00042.
func FormatNumber(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%05d", prefix, year, n)
}
