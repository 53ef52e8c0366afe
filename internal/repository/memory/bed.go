package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

type bedRepository struct {
	*Store
}

func (r *bedRepository) Create(_ context.Context, bed *model.Bed) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.beds {
		if existing.BedNumber == bed.BedNumber {
			return repository.ErrDuplicate
		}
	}
	r.beds[bed.ID] = copyBed(bed)
	r.bedOrder = append(r.bedOrder, bed.ID)
	return nil
}

func (r *bedRepository) Get(_ context.Context, id uuid.UUID) (*model.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bed, ok := r.beds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyBed(bed), nil
}

func (r *bedRepository) FindOne(_ context.Context, match repository.BedMatch) (*model.Bed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if bed := r.findLocked(match); bed != nil {
		return copyBed(bed), nil
	}
	return nil, repository.ErrNotFound
}

func (r *bedRepository) List(_ context.Context) ([]*model.BedListItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := make([]*model.BedListItem, 0, len(r.bedOrder))
	for _, id := range r.bedOrder {
		item := &model.BedListItem{Bed: *copyBed(r.beds[id])}
		if item.PatientID != nil {
			if p, ok := r.patients[*item.PatientID]; ok {
				name := p.Name
				item.PatientName = &name
			}
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *bedRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.beds[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.beds, id)
	r.bedOrder = removeID(r.bedOrder, id)
	return nil
}

func (r *bedRepository) CompareAndSet(_ context.Context, match repository.BedMatch, update repository.BedUpdate) (*model.Bed, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bed := r.findLocked(match)
	if bed == nil {
		return nil, nil
	}
	update.Apply(bed)
	bed.UpdatedAt = time.Now().UTC()
	return copyBed(bed), nil
}

// findLocked walks beds in insertion order; callers hold the lock.
func (r *bedRepository) findLocked(match repository.BedMatch) *model.Bed {
	if match.ID != uuid.Nil {
		bed, ok := r.beds[match.ID]
		if ok && match.Matches(bed) {
			return bed
		}
		return nil
	}
	for _, id := range r.bedOrder {
		if bed := r.beds[id]; match.Matches(bed) {
			return bed
		}
	}
	return nil
}
