package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
)

var (
	// ErrNotFound is returned by point lookups and deletes that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (bed number, email) collides.
	ErrDuplicate = errors.New("duplicate record")
)

// BedMatch selects beds. Zero-valued fields do not constrain the match.
type BedMatch struct {
	ID     uuid.UUID
	Status model.BedStatus
	Ward   string
	Type   model.BedType
}

// Matches reports whether bed satisfies the predicate.
func (m BedMatch) Matches(bed *model.Bed) bool {
	if m.ID != uuid.Nil && bed.ID != m.ID {
		return false
	}
	if m.Status != "" && bed.Status != m.Status {
		return false
	}
	if m.Ward != "" && bed.Ward != m.Ward {
		return false
	}
	if m.Type != "" && bed.Type != m.Type {
		return false
	}
	return true
}

// BedUpdate describes the mutation applied by CompareAndSet. Status is left
// untouched when empty; PatientID is only written when SetPatient is true, so
// a nil PatientID with SetPatient clears the reference.
type BedUpdate struct {
	Status     model.BedStatus
	SetPatient bool
	PatientID  *uuid.UUID
}

// Apply mutates bed in place.
func (u BedUpdate) Apply(bed *model.Bed) {
	if u.Status != "" {
		bed.Status = u.Status
	}
	if u.SetPatient {
		if u.PatientID == nil {
			bed.PatientID = nil
		} else {
			id := *u.PatientID
			bed.PatientID = &id
		}
	}
}

// All repository interfaces in one file
type (
	// BedRepository is the record store for beds. CompareAndSet is the only
	// primitive that may be used to reserve a bed.
	BedRepository interface {
		Create(ctx context.Context, bed *model.Bed) error
		Get(ctx context.Context, id uuid.UUID) (*model.Bed, error)
		FindOne(ctx context.Context, match BedMatch) (*model.Bed, error)
		List(ctx context.Context) ([]*model.BedListItem, error)
		Delete(ctx context.Context, id uuid.UUID) error
		// CompareAndSet atomically applies update to one bed satisfying match
		// and returns the post-update record, or (nil, nil) if nothing matched.
		CompareAndSet(ctx context.Context, match BedMatch, update BedUpdate) (*model.Bed, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		UpdateBed(ctx context.Context, id uuid.UUID, bedID *uuid.UUID) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
	}
)
