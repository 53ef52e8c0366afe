package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

type accountRepository struct {
	*Store
}

func (r *accountRepository) Create(_ context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return repository.ErrDuplicate
		}
	}
	a := *account
	r.accounts[a.ID] = &a
	return nil
}

func (r *accountRepository) Get(_ context.Context, id uuid.UUID) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (r *accountRepository) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			out := *a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}
