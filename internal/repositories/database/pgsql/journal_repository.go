package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/templetrust/templeledger/internal/apperrors"
	"github.com/templetrust/templeledger/internal/core/domain"
	portsrepo "github.com/templetrust/templeledger/internal/core/ports/repositories"
	"github.com/templetrust/templeledger/internal/utils/accounting"
)

type PgxJournalRepository struct {
	BaseRepository
}

// newPgxJournalRepository creates a new repository for journal entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool) portsrepo.JournalRepositoryFacade {
	return &PgxJournalRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.JournalRepositoryFacade = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, entry_date, narration, status, source_type, source_id,
       reverses_entry_id, reversed_by_entry_id,
       created_at, created_by, last_updated_at, last_updated_by`

func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var entry domain.JournalEntry
	var sourceType, sourceID sql.NullString
	err := row.Scan(
		&entry.EntryID,
		&entry.EntryDate,
		&entry.Narration,
		&entry.Status,
		&sourceType,
		&sourceID,
		&entry.ReversesEntryID,
		&entry.ReversedByEntryID,
		&entry.CreatedAt,
		&entry.CreatedBy,
		&entry.LastUpdatedAt,
		&entry.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	entry.Source = domain.SourceRef{Type: sourceType.String, ID: sourceID.String}
	return &entry, nil
}

// FindEntryByID retrieves an entry without its lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return nil, fmt.Errorf("failed to query entry %s: %w", entryID, err)
	}
	return entry, nil
}

// FindEntryBySource retrieves the entry recorded for a source reference.
func (r *PgxJournalRepository) FindEntryBySource(ctx context.Context, source domain.SourceRef) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE source_type = $1 AND source_id = $2;`
	entry, err := scanEntry(r.Pool.QueryRow(ctx, query, source.Type, source.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: no entry for source %s/%s", apperrors.ErrNotFound, source.Type, source.ID)
		}
		return nil, fmt.Errorf("failed to query entry by source: %w", err)
	}
	return entry, nil
}

const lineColumns = `l.line_id, l.entry_id, l.account_code, l.side, l.amount, l.position,
       e.entry_date, e.status, e.narration,
       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by`

func scanLine(row pgx.Row) (*domain.JournalLine, error) {
	var line domain.JournalLine
	err := row.Scan(
		&line.LineID,
		&line.EntryID,
		&line.AccountCode,
		&line.Side,
		&line.Amount,
		&line.Position,
		&line.EntryDate,
		&line.EntryStatus,
		&line.Narration,
		&line.CreatedAt,
		&line.CreatedBy,
		&line.LastUpdatedAt,
		&line.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *PgxJournalRepository) queryLines(ctx context.Context, query string, args ...any) ([]domain.JournalLine, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.JournalLine, 0)
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan line row: %w", err)
		}
		lines = append(lines, *line)
	}
	return lines, rows.Err()
}

// FindLinesByEntryID retrieves an entry's lines in caller-supplied order.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.entry_id = $1
		ORDER BY l.position;
	`
	lines, err := r.queryLines(ctx, query, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines for entry %s: %w", entryID, err)
	}
	return lines, nil
}

// FindLineByID retrieves one line with its entry's date and status denormalised.
func (r *PgxJournalRepository) FindLineByID(ctx context.Context, lineID string) (*domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.line_id = $1;
	`
	line, err := scanLine(r.Pool.QueryRow(ctx, query, lineID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: line %s", apperrors.ErrNotFound, lineID)
		}
		return nil, fmt.Errorf("failed to query line %s: %w", lineID, err)
	}
	return line, nil
}

// ListPostedLines retrieves Posted lines for one account over a date range,
// ordered by entry date then position.
func (r *PgxJournalRepository) ListPostedLines(ctx context.Context, accountCode string, from, to time.Time) ([]domain.JournalLine, error) {
	query := `
		SELECT ` + lineColumns + `
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1
		  AND e.status = $2
		  AND e.entry_date >= $3 AND e.entry_date <= $4
		ORDER BY e.entry_date, l.line_id;
	`
	lines, err := r.queryLines(ctx, query, accountCode, domain.Posted, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query posted lines for %s: %w", accountCode, err)
	}
	return lines, nil
}

// lockOpenPeriods takes a shared lock on every financial period covering the
// date and fails with ErrPeriodClosed when any of them is closed. The lock is
// held until the posting transaction commits, so a concurrent close cannot
// take its balance snapshot in between: its exclusive lock on the period row
// waits for the post, and a post arriving after the close began observes the
// period Closed here.
func lockOpenPeriods(ctx context.Context, tx pgx.Tx, date time.Time) error {
	query := `
		SELECT period_id, status FROM financial_periods
		WHERE start_date <= $1 AND end_date >= $1
		FOR SHARE;
	`
	rows, err := tx.Query(ctx, query, date)
	if err != nil {
		return fmt.Errorf("failed to lock periods for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	for rows.Next() {
		var periodID string
		var status domain.PeriodStatus
		if err := rows.Scan(&periodID, &status); err != nil {
			return fmt.Errorf("failed to scan period lock row: %w", err)
		}
		if status == domain.Closed {
			return fmt.Errorf("%w: %s falls in closed period %s", apperrors.ErrPeriodClosed, date.Format("2006-01-02"), periodID)
		}
	}
	return rows.Err()
}

// SaveEntry persists an entry and its lines in one transaction. The
// double-entry invariant is re-checked at the storage boundary; an
// unbalanced entry never reaches the tables. Entries saved as Posted hold
// period locks until commit.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine) error {
	if err := accounting.ValidateBalanced(lines); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if entry.Status == domain.Posted {
		if err := lockOpenPeriods(ctx, tx, entry.EntryDate); err != nil {
			return err
		}
	}

	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry) error {
	query := `
		INSERT INTO journal_entries (entry_id, entry_date, narration, status, source_type, source_id,
		                             reverses_entry_id, reversed_by_entry_id,
		                             created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	var sourceType, sourceID *string
	if !entry.Source.IsZero() {
		sourceType, sourceID = &entry.Source.Type, &entry.Source.ID
	}
	_, err := tx.Exec(ctx, query,
		entry.EntryID,
		entry.EntryDate,
		entry.Narration,
		entry.Status,
		sourceType,
		sourceID,
		entry.ReversesEntryID,
		entry.ReversedByEntryID,
		entry.CreatedAt,
		entry.CreatedBy,
		entry.LastUpdatedAt,
		entry.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: entry for source %s/%s already exists", apperrors.ErrDuplicate, entry.Source.Type, entry.Source.ID)
		}
		return fmt.Errorf("failed to insert entry %s: %w", entry.EntryID, err)
	}
	return nil
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	batch := &pgx.Batch{}
	query := `
		INSERT INTO journal_lines (line_id, entry_id, account_code, side, amount, position,
		                           created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	for _, l := range lines {
		batch.Queue(query,
			l.LineID,
			l.EntryID,
			l.AccountCode,
			l.Side,
			l.Amount,
			l.Position,
			l.CreatedAt,
			l.CreatedBy,
			l.LastUpdatedAt,
			l.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to insert journal lines: %w", err)
	}
	return nil
}

// UpdateEntryStatus transitions an entry's status and reversal linkage. A
// transition to Posted re-checks the covering periods under a shared lock, so
// a post racing a period close either commits before the close's snapshot or
// fails with ErrPeriodClosed.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.EntryStatus, reversedByEntryID *string, updatedBy string, updatedAt time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var entryDate time.Time
	dateQuery := `SELECT entry_date FROM journal_entries WHERE entry_id = $1 FOR UPDATE;`
	if err := tx.QueryRow(ctx, dateQuery, entryID).Scan(&entryDate); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: entry %s", apperrors.ErrNotFound, entryID)
		}
		return fmt.Errorf("failed to query entry %s: %w", entryID, err)
	}

	if status == domain.Posted {
		if err := lockOpenPeriods(ctx, tx, entryDate); err != nil {
			return err
		}
	}

	query := `
		UPDATE journal_entries
		SET status = $2,
		    reversed_by_entry_id = COALESCE($3, reversed_by_entry_id),
		    last_updated_by = $4, last_updated_at = $5
		WHERE entry_id = $1;
	`
	if _, err := tx.Exec(ctx, query, entryID, status, reversedByEntryID, updatedBy, updatedAt); err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entryID, err)
	}
	return r.Commit(ctx, tx)
}

// SaveReversal posts the reversing entry and marks the original Reversed in
// one transaction, holding period locks for the reversal date until commit.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, originalEntryID string) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := lockOpenPeriods(ctx, tx, reversal.EntryDate); err != nil {
		return err
	}

	if err := insertEntry(ctx, tx, reversal); err != nil {
		return err
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return err
	}

	linkQuery := `
		UPDATE journal_entries
		SET status = $2, reversed_by_entry_id = $3, last_updated_by = $4, last_updated_at = $5
		WHERE entry_id = $1 AND status = $6;
	`
	tag, err := tx.Exec(ctx, linkQuery,
		originalEntryID, domain.Reversed, reversal.EntryID,
		reversal.LastUpdatedBy, reversal.LastUpdatedAt, domain.Posted,
	)
	if err != nil {
		return fmt.Errorf("failed to mark entry %s reversed: %w", originalEntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: entry %s is no longer posted", apperrors.ErrConflict, originalEntryID)
	}

	return r.Commit(ctx, tx)
}

// SumPostedLines returns the debit and credit totals of Posted lines for one
// account over a date range.
func (r *PgxJournalRepository) SumPostedLines(ctx context.Context, accountCode string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
		    COALESCE(SUM(l.amount) FILTER (WHERE l.side = $2), 0),
		    COALESCE(SUM(l.amount) FILTER (WHERE l.side = $3), 0)
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		WHERE l.account_code = $1
		  AND e.status = $4
		  AND e.entry_date >= $5 AND e.entry_date <= $6;
	`
	var debit, credit decimal.Decimal
	err := r.Pool.QueryRow(ctx, query,
		accountCode, domain.Debit, domain.Credit, domain.Posted, from, to,
	).Scan(&debit, &credit)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum posted lines for %s: %w", accountCode, err)
	}
	return debit, credit, nil
}

// GetTrialBalanceData returns per-account debit/credit totals over Posted
// lines in the range, ordered by account code.
func (r *PgxJournalRepository) GetTrialBalanceData(ctx context.Context, from, to time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT a.code, a.name, a.class,
		    COALESCE(SUM(l.amount) FILTER (WHERE l.side = $1), 0) AS debit,
		    COALESCE(SUM(l.amount) FILTER (WHERE l.side = $2), 0) AS credit
		FROM journal_lines l
		JOIN journal_entries e ON e.entry_id = l.entry_id
		JOIN accounts a ON a.code = l.account_code
		WHERE e.status = $3
		  AND e.entry_date >= $4 AND e.entry_date <= $5
		GROUP BY a.code, a.name, a.class
		ORDER BY a.code;
	`
	rows, err := r.Pool.Query(ctx, query, domain.Debit, domain.Credit, domain.Posted, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query trial balance data: %w", err)
	}
	defer rows.Close()

	result := make([]domain.TrialBalanceRow, 0)
	for rows.Next() {
		var row domain.TrialBalanceRow
		if err := rows.Scan(&row.AccountCode, &row.AccountName, &row.Class, &row.Debit, &row.Credit); err != nil {
			return nil, fmt.Errorf("failed to scan trial balance row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
