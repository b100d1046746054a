package repository

import (
	"context"

	"gorm.io/gorm"
)

// Step is one mutation in an atomic step sequence. All steps of a Run share
// the same database transaction.
type Step func(tx *gorm.DB) error

// Lookup checks whether the operation identified by its natural key has
// already been performed. It runs inside the same transaction as the steps.
type Lookup func(tx *gorm.DB) (existing interface{}, found bool, err error)

// StepRunner executes an ordered list of mutation steps as one all-or-nothing
// unit. When the natural-key lookup finds an existing record, the steps are
// skipped and the record is returned unchanged; the surrounding transaction
// still commits as a read-only no-op. If any step fails, every write made by
// earlier steps is rolled back and the original error is returned unmodified.
type StepRunner struct {
	db *gorm.DB
}

// NewStepRunner creates a new step runner
func NewStepRunner(db *gorm.DB) *StepRunner {
	return &StepRunner{db: db}
}

// Run executes the step sequence. The returned boolean is true when the
// lookup short-circuited the run with an already-existing record.
func (r *StepRunner) Run(ctx context.Context, lookup Lookup, steps ...Step) (interface{}, bool, error) {
	var existing interface{}
	var replayed bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if lookup != nil {
			record, found, err := lookup(tx)
			if err != nil {
				return err
			}
			if found {
				existing = record
				replayed = true
				return nil
			}
		}
		for _, step := range steps {
			if err := step(tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return existing, replayed, nil
}

// DB exposes the underlying handle for callers that need to run a separate
// unit of work after a rollback (e.g. recording a failed retry attempt).
func (r *StepRunner) DB() *gorm.DB {
	return r.db
}
