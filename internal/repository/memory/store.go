package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

// Store is an in-process record store used when no database is configured
// and by tests. Every operation takes the single mutex, which is what makes
// CompareAndSet atomic here. Records are copied in and out so callers never
// share memory with the store.
type Store struct {
	mu sync.RWMutex

	beds     map[uuid.UUID]*model.Bed
	bedOrder []uuid.UUID

	patients     map[uuid.UUID]*model.Patient
	patientOrder []uuid.UUID

	accounts map[uuid.UUID]*model.Account
}

func NewStore() *Store {
	return &Store{
		beds:     map[uuid.UUID]*model.Bed{},
		patients: map[uuid.UUID]*model.Patient{},
		accounts: map[uuid.UUID]*model.Account{},
	}
}

func (s *Store) Beds() repository.BedRepository {
	return &bedRepository{s}
}

func (s *Store) Patients() repository.PatientRepository {
	return &patientRepository{s}
}

func (s *Store) Accounts() repository.AccountRepository {
	return &accountRepository{s}
}

func copyID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyBed(b *model.Bed) *model.Bed {
	out := *b
	out.PatientID = copyID(b.PatientID)
	return &out
}

func copyPatient(p *model.Patient) *model.Patient {
	out := *p
	out.BedID = copyID(p.BedID)
	return &out
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
