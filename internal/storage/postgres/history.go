package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fortio.org/safecast"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicecalc/internal/dice"
)

// ErrEntryNotFound is returned when a history lookup yields no results.
var ErrEntryNotFound = errors.New("history entry not found")

// Entry is one recorded calculation. Failed calculations carry a non-empty
// ErrorKind and zero numeric fields.
type Entry struct {
	ID         uuid.UUID
	Request    string
	Normalized string
	Text       string
	Min        int
	Max        int
	Average    float64
	Generated  int
	ErrorKind  string
	CreatedAt  time.Time
}

// Succeeded reports whether the entry records a successful calculation.
func (e Entry) Succeeded() bool {
	return e.ErrorKind == ""
}

// NewEntry builds an Entry for request from a calculation outcome.
//
// Postcondition: err != nil yields an entry with ErrorKind set to the dice
// error kind and no result fields.
func NewEntry(request string, res dice.Result, err error) Entry {
	e := Entry{
		Request:    request,
		Normalized: dice.Normalize(request),
	}
	if err != nil {
		kind := dice.KindOf(err)
		if kind == 0 {
			e.ErrorKind = "internal"
		} else {
			e.ErrorKind = kind.String()
		}
		return e
	}
	e.Text = res.Text
	e.Min = res.Min
	e.Max = res.Max
	e.Average = res.Average
	e.Generated = res.Generated
	return e
}

// HistoryRepository provides calculation history persistence.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

const entryColumns = `id, request, normalized, text, min_value, max_value, average, generated, error_kind, created_at`

// Record inserts e. A zero ID is replaced by a fresh random UUID.
//
// Postcondition: Returns the stored Entry with ID and CreatedAt set, or an
// error if a numeric field does not fit the INTEGER columns.
func (r *HistoryRepository) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	minV, err := safecast.Conv[int32](e.Min)
	if err != nil {
		return Entry{}, fmt.Errorf("min out of range: %w", err)
	}
	maxV, err := safecast.Conv[int32](e.Max)
	if err != nil {
		return Entry{}, fmt.Errorf("max out of range: %w", err)
	}
	genV, err := safecast.Conv[int32](e.Generated)
	if err != nil {
		return Entry{}, fmt.Errorf("generated out of range: %w", err)
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO calculations
			(id, request, normalized, text, min_value, max_value, average, generated, error_kind)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+entryColumns,
		e.ID, e.Request, e.Normalized, e.Text, minV, maxV, e.Average, genV, e.ErrorKind,
	)
	out, err := scanEntry(row)
	if err != nil {
		return Entry{}, fmt.Errorf("inserting calculation: %w", err)
	}
	return out, nil
}

// Get retrieves an entry by ID.
//
// Postcondition: Returns the Entry or ErrEntryNotFound.
func (r *HistoryRepository) Get(ctx context.Context, id uuid.UUID) (Entry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM calculations WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrEntryNotFound
		}
		return Entry{}, fmt.Errorf("querying calculation: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
//
// Precondition: limit > 0.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+entryColumns+` FROM calculations
		 ORDER BY created_at DESC, id
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying calculations: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning calculation: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating calculations: %w", err)
	}
	return out, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e             Entry
		minV, maxV, g int32
	)
	if err := row.Scan(&e.ID, &e.Request, &e.Normalized, &e.Text,
		&minV, &maxV, &e.Average, &g, &e.ErrorKind, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	e.Min, e.Max, e.Generated = int(minV), int(maxV), int(g)
	return e, nil
}
