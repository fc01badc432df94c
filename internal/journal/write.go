package journal

import (
	"context"
	"fmt"

	"github.com/roach88/standin/internal/engine"
	"github.com/roach88/standin/internal/value"
)

// WriteCall inserts an applied call record into the journal.
// Uses ON CONFLICT(double_id, seq) DO NOTHING for idempotency so that
// re-mirroring the same inbox is safe.
//
// Args are serialized to canonical JSON per RFC 8785 so that equal
// argument lists always produce identical rows.
func (j *Journal) WriteCall(ctx context.Context, rec engine.CallRecord) error {
	argsJSON, err := value.MarshalCanonical(rec.Args)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO calls
		(double_id, operation, args, arity, seq)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(double_id, seq) DO NOTHING
	`,
		rec.DoubleID,
		rec.Operation,
		string(argsJSON),
		len(rec.Args),
		rec.Seq,
	)
	if err != nil {
		return fmt.Errorf("write call: %w", err)
	}

	return nil
}

// Mirror writes every record from the slice, typically an inbox snapshot.
// Idempotent across overlapping snapshots.
func (j *Journal) Mirror(ctx context.Context, records []engine.CallRecord) error {
	for _, rec := range records {
		if err := j.WriteCall(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}
