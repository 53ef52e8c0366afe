package bed

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
)

// Refresher pushes the current bed board to viewers.
type Refresher interface {
	Refresh(ctx context.Context)
}

// Service is the administrative view of beds. Status edits here do not
// maintain the bed/patient link; that is the occupancy engine's job.
type Service struct {
	repo      repository.BedRepository
	refresher Refresher
	logger    zerolog.Logger
}

func NewService(repo repository.BedRepository, refresher Refresher, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		refresher: refresher,
		logger:    logger.With().Str("component", "beds").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateBedRequest) (*model.Bed, error) {
	if req == nil || strings.TrimSpace(req.BedNumber) == "" || strings.TrimSpace(req.Ward) == "" {
		return nil, errors.Validation("bed_number and ward are required", nil)
	}

	bed := &model.Bed{
		Base:      model.NewBase(),
		BedNumber: strings.TrimSpace(req.BedNumber),
		Ward:      strings.TrimSpace(req.Ward),
		Type:      req.Type,
		Status:    req.Status,
	}
	if bed.Type == "" {
		bed.Type = model.BedTypeGeneral
	}
	if bed.Status == "" {
		bed.Status = model.BedStatusAvailable
	}
	if !bed.Type.Valid() {
		return nil, errors.Validation(fmt.Sprintf("invalid bed type %q", bed.Type), nil)
	}
	if !bed.Status.Valid() {
		return nil, errors.Validation(fmt.Sprintf("invalid bed status %q", bed.Status), nil)
	}

	if err := s.repo.Create(ctx, bed); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict(fmt.Sprintf("bed %s already exists", bed.BedNumber), err)
		}
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to create bed: %w", err))
	}

	s.logger.Info().Str("bed_id", bed.ID.String()).Str("bed_number", bed.BedNumber).Msg("bed created")
	s.refresh(ctx)
	return bed, nil
}

func (s *Service) List(ctx context.Context) ([]*model.BedListItem, error) {
	beds, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to list beds: %w", err))
	}
	return beds, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Bed, error) {
	bed, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.BedNotFound
		}
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to get bed: %w", err))
	}
	return bed, nil
}

// UpdateStatus overwrites the status of a bed as-is.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.BedStatus) (*model.Bed, error) {
	if !status.Valid() {
		return nil, errors.Validation(fmt.Sprintf("invalid bed status %q", status), nil)
	}

	bed, err := s.repo.CompareAndSet(ctx, repository.BedMatch{ID: id}, repository.BedUpdate{Status: status})
	if err != nil {
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to update bed: %w", err))
	}
	if bed == nil {
		return nil, errors.BedNotFound
	}

	s.logger.Info().Str("bed_id", id.String()).Str("status", string(status)).Msg("bed status updated")
	s.refresh(ctx)
	return bed, nil
}

// Delete removes the bed record. An occupying patient keeps its reference.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errors.BedNotFound
		}
		return errors.StoreUnavailable(fmt.Errorf("failed to delete bed: %w", err))
	}

	s.logger.Info().Str("bed_id", id.String()).Msg("bed deleted")
	s.refresh(ctx)
	return nil
}

// Summary counts beds per ward and status, ordered by ward name.
func (s *Service) Summary(ctx context.Context) ([]*model.WardSummary, error) {
	beds, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	byWard := map[string]*model.WardSummary{}
	for _, b := range beds {
		ws, ok := byWard[b.Ward]
		if !ok {
			ws = &model.WardSummary{Ward: b.Ward}
			byWard[b.Ward] = ws
		}
		ws.Total++
		switch b.Status {
		case model.BedStatusAvailable:
			ws.Available++
		case model.BedStatusOccupied:
			ws.Occupied++
		case model.BedStatusMaintenance:
			ws.Maintenance++
		}
	}

	out := make([]*model.WardSummary, 0, len(byWard))
	for _, ws := range byWard {
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ward < out[j].Ward })
	return out, nil
}

func (s *Service) refresh(ctx context.Context) {
	if s.refresher != nil {
		s.refresher.Refresh(ctx)
	}
}
