package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

const accountColumns = `id, name, email, password_hash, role, created_at, updated_at`

type accountRepository struct {
	BaseRepository
}

func NewAccountRepository(base BaseRepository) repository.AccountRepository {
	return &accountRepository{base}
}

func (r *accountRepository) Create(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err = translate(err); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepository) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", translate(err))
	}
	return &account, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, email); err != nil {
		return nil, fmt.Errorf("failed to get account: %w", translate(err))
	}
	return &account, nil
}
