package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

type patientRepository struct {
	*Store
}

func (r *patientRepository) Create(_ context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[patient.ID]; ok {
		return repository.ErrDuplicate
	}
	r.patients[patient.ID] = copyPatient(patient)
	r.patientOrder = append(r.patientOrder, patient.ID)
	return nil
}

func (r *patientRepository) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyPatient(p), nil
}

func (r *patientRepository) UpdateBed(_ context.Context, id uuid.UUID, bedID *uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.patients[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.BedID = copyID(bedID)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *patientRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.patients[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.patients, id)
	r.patientOrder = removeID(r.patientOrder, id)
	return nil
}

func (r *patientRepository) List(_ context.Context) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Patient, 0, len(r.patientOrder))
	for _, id := range r.patientOrder {
		out = append(out, copyPatient(r.patients[id]))
	}
	return out, nil
}
