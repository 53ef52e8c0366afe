package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

const bedColumns = `id, bed_number, ward, type, status, patient_id, created_at, updated_at`

type bedRepository struct {
	BaseRepository
}

func NewBedRepository(base BaseRepository) repository.BedRepository {
	return &bedRepository{base}
}

func (r *bedRepository) Create(ctx context.Context, bed *model.Bed) (err error) {
	start := time.Now()
	defer func() { r.observe("bed_create", start, err) }()

	query := `
		INSERT INTO beds (` + bedColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		bed.ID,
		bed.BedNumber,
		bed.Ward,
		bed.Type,
		bed.Status,
		bed.PatientID,
		bed.CreatedAt,
		bed.UpdatedAt,
	)
	if err = translate(err); err != nil {
		return fmt.Errorf("failed to create bed: %w", err)
	}
	return nil
}

func (r *bedRepository) Get(ctx context.Context, id uuid.UUID) (*model.Bed, error) {
	query := `SELECT ` + bedColumns + ` FROM beds WHERE id = $1`
	var bed model.Bed
	if err := r.db.GetContext(ctx, &bed, query, id); err != nil {
		return nil, fmt.Errorf("failed to get bed: %w", translate(err))
	}
	return &bed, nil
}

func (r *bedRepository) FindOne(ctx context.Context, match repository.BedMatch) (*model.Bed, error) {
	where, args := matchClause(match, nil)
	query := `SELECT ` + bedColumns + ` FROM beds WHERE ` + where + ` ORDER BY created_at LIMIT 1`
	var bed model.Bed
	if err := r.db.GetContext(ctx, &bed, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find bed: %w", translate(err))
	}
	return &bed, nil
}

func (r *bedRepository) List(ctx context.Context) ([]*model.BedListItem, error) {
	query := `
		SELECT b.id, b.bed_number, b.ward, b.type, b.status, b.patient_id,
			b.created_at, b.updated_at, p.name AS patient_name
		FROM beds b
		LEFT JOIN patients p ON p.id = b.patient_id
		ORDER BY b.created_at
	`
	beds := []*model.BedListItem{}
	if err := r.db.SelectContext(ctx, &beds, query); err != nil {
		return nil, fmt.Errorf("failed to list beds: %w", err)
	}
	return beds, nil
}

func (r *bedRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM beds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CompareAndSet updates one matching row and returns it, or nil when no row
// matched. Without an id it picks any row under FOR UPDATE SKIP LOCKED, so
// concurrent allocations skip rows another transaction holds and the outer
// predicate re-checks the row once locked. With an id it is a plain
// conditional update that waits for a held lock instead of skipping it.
func (r *bedRepository) CompareAndSet(ctx context.Context, match repository.BedMatch, update repository.BedUpdate) (bed *model.Bed, err error) {
	start := time.Now()
	defer func() { r.observe("bed_compare_and_set", start, err) }()

	sets := []string{"updated_at = NOW()"}
	var args []interface{}
	if update.Status != "" {
		args = append(args, update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.SetPatient {
		args = append(args, update.PatientID)
		sets = append(sets, fmt.Sprintf("patient_id = $%d", len(args)))
	}
	where, args := matchClause(match, args)

	var query string
	if match.ID != uuid.Nil {
		query = fmt.Sprintf(`
			UPDATE beds SET %s
			WHERE %s
			RETURNING %s
		`, strings.Join(sets, ", "), where, bedColumns)
	} else {
		query = fmt.Sprintf(`
			UPDATE beds SET %s
			WHERE id = (
				SELECT id FROM beds
				WHERE %s
				ORDER BY created_at
				LIMIT 1
				FOR UPDATE SKIP LOCKED
			) AND %s
			RETURNING %s
		`, strings.Join(sets, ", "), where, where, bedColumns)
	}

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update bed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to update bed: %w", err)
		}
		return nil, nil
	}
	var out model.Bed
	if err = rows.StructScan(&out); err != nil {
		return nil, fmt.Errorf("failed to scan bed: %w", err)
	}
	return &out, nil
}

// matchClause renders match as a WHERE fragment, appending its arguments
// after the ones already in args.
func matchClause(match repository.BedMatch, args []interface{}) (string, []interface{}) {
	var conds []string
	if match.ID != uuid.Nil {
		args = append(args, match.ID)
		conds = append(conds, fmt.Sprintf("id = $%d", len(args)))
	}
	if match.Status != "" {
		args = append(args, match.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if match.Ward != "" {
		args = append(args, match.Ward)
		conds = append(conds, fmt.Sprintf("ward = $%d", len(args)))
	}
	if match.Type != "" {
		args = append(args, match.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "TRUE", args
	}
	return strings.Join(conds, " AND "), args
}
