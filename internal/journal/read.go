package journal

import (
	"context"
	"fmt"

	"github.com/roach88/standin/internal/engine"
	"github.com/roach88/standin/internal/value"
)

// CountCalls returns how many applied calls the journal holds for the
// operation on the given double.
func (j *Journal) CountCalls(ctx context.Context, doubleID, operation string) (int, error) {
	var count int
	err := j.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM calls
		WHERE double_id = ? AND operation = ?
	`, doubleID, operation).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return count, nil
}

// ListCalls returns every journaled call in logical order.
// Ordering is ORDER BY seq ASC, id ASC so ties resolve deterministically.
//
// Returns an empty slice (not nil) when the journal is empty.
func (j *Journal) ListCalls(ctx context.Context) ([]engine.CallRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT double_id, operation, args, seq
		FROM calls
		ORDER BY seq ASC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query calls: %w", err)
	}
	defer rows.Close()

	return scanCalls(rows)
}

// ListByDouble returns every journaled call for one double in logical order.
func (j *Journal) ListByDouble(ctx context.Context, doubleID string) ([]engine.CallRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT double_id, operation, args, seq
		FROM calls
		WHERE double_id = ?
		ORDER BY seq ASC, id ASC
	`, doubleID)
	if err != nil {
		return nil, fmt.Errorf("query calls for %s: %w", doubleID, err)
	}
	defer rows.Close()

	return scanCalls(rows)
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanCalls(rows rowScanner) ([]engine.CallRecord, error) {
	var records []engine.CallRecord
	for rows.Next() {
		var (
			rec      engine.CallRecord
			argsJSON string
		)
		if err := rows.Scan(&rec.DoubleID, &rec.Operation, &argsJSON, &rec.Seq); err != nil {
			return nil, fmt.Errorf("scan call: %w", err)
		}

		args, err := unmarshalArgs(argsJSON)
		if err != nil {
			return nil, err
		}
		rec.Args = args

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate calls: %w", err)
	}

	if records == nil {
		records = []engine.CallRecord{}
	}

	return records, nil
}

func unmarshalArgs(argsJSON string) (value.Array, error) {
	v, err := value.Unmarshal([]byte(argsJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal args: %w", err)
	}
	arr, ok := v.(value.Array)
	if !ok {
		return nil, fmt.Errorf("unmarshal args: expected array, got %T", v)
	}
	return arr, nil
}
