package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
)

type PgxReconciliationRepository struct {
	BaseRepository
}

// newPgxReconciliationRepository creates a new repository for bank reconciliation data.
func newPgxReconciliationRepository(pool *pgxpool.Pool) portsrepo.ReconciliationRepositoryFacade {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

const stmtLineColumns = `statement_line_id, account_code, statement_date, amount, direction, description, external_ref,
       created_at, created_by, last_updated_at, last_updated_by`

func scanStatementLine(row pgx.Row) (*domain.BankStatementLine, error) {
	var l domain.BankStatementLine
	err := row.Scan(
		&l.StatementLineID,
		&l.AccountCode,
		&l.StatementDate,
		&l.Amount,
		&l.Direction,
		&l.Description,
		&l.ExternalRef,
		&l.CreatedAt,
		&l.CreatedBy,
		&l.LastUpdatedAt,
		&l.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// FindStatementLineByID retrieves one imported statement line.
func (r *PgxReconciliationRepository) FindStatementLineByID(ctx context.Context, statementLineID string) (*domain.BankStatementLine, error) {
	query := `SELECT ` + stmtLineColumns + ` FROM bank_statement_lines WHERE statement_line_id = $1;`
	line, err := scanStatementLine(r.Pool.QueryRow(ctx, query, statementLineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: statement line %s", apperrors.ErrNotFound, statementLineID)
		}
		return nil, fmt.Errorf("failed to query statement line %s: %w", statementLineID, err)
	}
	return line, nil
}

// ListUnmatchedStatementLines retrieves statement lines with no match, dated
// on or before asOf, ordered by date then ID.
func (r *PgxReconciliationRepository) ListUnmatchedStatementLines(ctx context.Context, accountCode string, asOf time.Time) ([]domain.BankStatementLine, error) {
	query := `
		SELECT ` + stmtLineColumns + `
		FROM bank_statement_lines s
		WHERE s.account_code = $1
		  AND s.statement_date <= $2
		  AND NOT EXISTS (
		      SELECT 1 FROM reconciliation_matches m WHERE m.statement_line_id = s.statement_line_id
		  )
		ORDER BY s.statement_date, s.statement_line_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountCode, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched statement lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.BankStatementLine, 0)
	for rows.Next() {
		line, err := scanStatementLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement line row: %w", err)
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

// ListUnmatchedJournalLines retrieves Posted journal lines on the account
// with no match and entry dates in [from, to], ordered by entry date then ID.
func (r *PgxReconciliationRepository) ListUnmatchedJournalLines(ctx context.Context, accountCode string, from, to time.Time) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1
		  AND e.status = $2
		  AND e.entry_date >= $3 AND e.entry_date <= $4
		  AND NOT EXISTS (
		      SELECT 1 FROM reconciliation_matches m WHERE m.journal_line_id = l.line_id
		  )
		ORDER BY e.entry_date, l.line_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountCode, domain.Posted, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query unmatched journal lines: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.JournalLine, 0)
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal line row: %w", err)
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

const matchColumns = `m.match_id, m.statement_line_id, m.journal_line_id, m.confidence, m.amount_mismatch, m.matched_at,
       (e.status = 'REVERSED') AS inconsistent`

func scanMatch(row pgx.Row) (*domain.ReconciliationMatch, error) {
	var m domain.ReconciliationMatch
	err := row.Scan(
		&m.MatchID,
		&m.StatementLineID,
		&m.JournalLineID,
		&m.Confidence,
		&m.AmountMismatch,
		&m.MatchedAt,
		&m.Inconsistent,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindMatchByID retrieves one match; Inconsistent is derived from the matched
// entry's current status.
func (r *PgxReconciliationRepository) FindMatchByID(ctx context.Context, matchID string) (*domain.ReconciliationMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM reconciliation_matches m
		JOIN journal_lines l ON l.line_id = m.journal_line_id
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE m.match_id = $1;
	`
	m, err := scanMatch(r.Pool.QueryRow(ctx, query, matchID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: match %s", apperrors.ErrNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to query match %s: %w", matchID, err)
	}
	return m, nil
}

// ListInconsistentMatches retrieves matches whose journal entry has been
// reversed since the match was recorded.
func (r *PgxReconciliationRepository) ListInconsistentMatches(ctx context.Context, accountCode string, asOf time.Time) ([]domain.ReconciliationMatch, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM reconciliation_matches m
		JOIN journal_lines l ON l.line_id = m.journal_line_id
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1
		  AND e.status = $2
		  AND m.matched_at <= $3
		ORDER BY m.matched_at, m.match_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountCode, domain.Reversed, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to query inconsistent matches: %w", err)
	}
	defer rows.Close()

	matches := make([]domain.ReconciliationMatch, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

// SaveStatementLines inserts a batch of statement lines. Lines whose external
// reference was imported before are skipped; the number of new lines is
// returned.
func (r *PgxReconciliationRepository) SaveStatementLines(ctx context.Context, lines []domain.BankStatementLine) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	query := `
		INSERT INTO bank_statement_lines (statement_line_id, account_code, statement_date, amount, direction,
		                                  description, external_ref,
		                                  created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (account_code, external_ref) DO NOTHING;
	`
	inserted := 0
	for _, l := range lines {
		tag, err := tx.Exec(ctx, query,
			l.StatementLineID,
			l.AccountCode,
			l.StatementDate,
			l.Amount,
			l.Direction,
			l.Description,
			l.ExternalRef,
			l.CreatedAt,
			l.CreatedBy,
			l.LastUpdatedAt,
			l.LastUpdatedBy,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert statement line %s: %w", l.ExternalRef, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// SaveMatch records a match. Unique indexes on both line columns map repeated
// or concurrent matches to ErrDuplicate.
func (r *PgxReconciliationRepository) SaveMatch(ctx context.Context, match domain.ReconciliationMatch) error {
	query := `
		INSERT INTO reconciliation_matches (match_id, statement_line_id, journal_line_id, confidence, amount_mismatch, matched_at)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	_, err := r.Pool.Exec(ctx, query,
		match.MatchID,
		match.StatementLineID,
		match.JournalLineID,
		match.Confidence,
		match.AmountMismatch,
		match.MatchedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: statement line %s or journal line %s is already matched",
				apperrors.ErrDuplicate, match.StatementLineID, match.JournalLineID)
		}
		return fmt.Errorf("failed to insert match %s: %w", match.MatchID, err)
	}
	return nil
}

// DeleteMatch removes a match.
func (r *PgxReconciliationRepository) DeleteMatch(ctx context.Context, matchID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM reconciliation_matches WHERE match_id = $1;`, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete match %s: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: match %s", apperrors.ErrNotFound, matchID)
	}
	return nil
}
