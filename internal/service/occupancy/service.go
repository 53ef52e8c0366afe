package occupancy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/errors"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/pkg/metrics"
)

const (
	opAdmit     = "admit"
	opDischarge = "discharge"
	opTransfer  = "transfer"

	maxAge = 150
)

// Notifier receives committed transitions. Implementations must not block.
type Notifier interface {
	Publish(ctx context.Context, event string, payload interface{})
}

type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, string, interface{}) {}

// Service allocates, releases and moves beds. It holds no locks of its own:
// exclusion between concurrent requests comes from BedRepository.CompareAndSet.
type Service struct {
	beds     repository.BedRepository
	patients repository.PatientRepository
	notifier Notifier
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

// NewService creates the occupancy engine. notifier and m may be nil.
func NewService(beds repository.BedRepository, patients repository.PatientRepository,
	notifier Notifier, logger zerolog.Logger, m *metrics.Metrics) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Service{
		beds:     beds,
		patients: patients,
		notifier: notifier,
		logger:   logger.With().Str("component", "occupancy").Logger(),
		metrics:  m,
	}
}

// Admit reserves an available bed matching the optional preferences, creates
// the patient on it and links the bed back to the patient.
func (s *Service) Admit(ctx context.Context, req *model.AdmitRequest) (patient *model.Patient, bed *model.Bed, err error) {
	start := time.Now()
	defer func() { s.record(opAdmit, start, err) }()

	if err := validateAdmit(req); err != nil {
		return nil, nil, err
	}

	bed, err = s.reserve(ctx, req.PreferredWard, req.PreferredType)
	if err != nil {
		return nil, nil, err
	}
	if bed == nil {
		return nil, nil, errors.NoBedAvailable
	}

	bedID := bed.ID
	patient = &model.Patient{
		Base:    model.NewBase(),
		Name:    strings.TrimSpace(req.Name),
		Age:     *req.Age,
		Disease: strings.TrimSpace(req.Disease),
		BedID:   &bedID,
	}
	if err := s.patients.Create(ctx, patient); err != nil {
		s.release(ctx, bed.ID, "admit: patient create failed")
		return nil, nil, errors.StoreUnavailable(fmt.Errorf("failed to create patient: %w", err))
	}

	linked, err := s.link(ctx, bed.ID, patient.ID)
	if err != nil || linked == nil {
		// Bed vanished or the link failed; undo both records.
		if derr := s.patients.Delete(ctx, patient.ID); derr != nil {
			s.logger.Error().Err(derr).Str("patient_id", patient.ID.String()).Msg("admit: failed to remove patient during rollback")
		}
		s.release(ctx, bed.ID, "admit: link failed")
		if err == nil {
			return nil, nil, errors.BedNotFound
		}
		return nil, nil, errors.StoreUnavailable(fmt.Errorf("failed to link bed: %w", err))
	}

	s.loggerFor(ctx).Info().
		Str("patient_id", patient.ID.String()).
		Str("bed_id", linked.ID.String()).
		Str("bed_number", linked.BedNumber).
		Msg("patient admitted")

	s.notifier.Publish(ctx, model.EventPatientsAdmitted, model.AdmittedEvent{Patient: patient, Bed: linked})
	return patient, linked, nil
}

// Discharge releases the patient's bed, if any, and deletes the patient.
func (s *Service) Discharge(ctx context.Context, patientID uuid.UUID) (err error) {
	start := time.Now()
	defer func() { s.record(opDischarge, start, err) }()

	patient, err := s.getPatient(ctx, patientID)
	if err != nil {
		return err
	}

	var released *model.Bed
	if patient.BedID != nil {
		// Unconditional release by id; a missing bed is not an error.
		released, err = s.beds.CompareAndSet(ctx,
			repository.BedMatch{ID: *patient.BedID},
			repository.BedUpdate{Status: model.BedStatusAvailable, SetPatient: true})
		if err != nil {
			return errors.StoreUnavailable(fmt.Errorf("failed to release bed: %w", err))
		}
	}

	if err := s.patients.Delete(ctx, patientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return errors.PatientNotFound
		}
		// The patient still points at the freed bed; take it back.
		if released != nil {
			s.restore(ctx, patient.BedID, patientID)
		}
		return errors.StoreUnavailable(fmt.Errorf("failed to delete patient: %w", err))
	}

	s.loggerFor(ctx).Info().Str("patient_id", patientID.String()).Bool("bed_released", released != nil).Msg("patient discharged")

	s.notifier.Publish(ctx, model.EventPatientsDischarged, model.DischargedEvent{PatientID: patientID, Bed: released})
	return nil
}

// Transfer moves a patient to another available bed. The new bed is reserved
// before the old one is released, so a failed transfer never leaves the
// patient without a bed.
func (s *Service) Transfer(ctx context.Context, patientID uuid.UUID, req *model.TransferRequest) (patient *model.Patient, newBed *model.Bed, err error) {
	start := time.Now()
	defer func() { s.record(opTransfer, start, err) }()

	if req == nil {
		req = &model.TransferRequest{}
	}
	if req.TargetType != "" && !req.TargetType.Valid() {
		return nil, nil, errors.Validation(fmt.Sprintf("invalid bed type %q", req.TargetType), nil)
	}

	patient, err = s.getPatient(ctx, patientID)
	if err != nil {
		return nil, nil, err
	}

	newBed, err = s.reserve(ctx, req.TargetWard, req.TargetType)
	if err != nil {
		return nil, nil, err
	}
	if newBed == nil {
		return nil, nil, errors.NoTargetBedAvailable
	}

	oldBedID := patient.BedID
	if oldBedID != nil {
		_, err := s.beds.CompareAndSet(ctx,
			repository.BedMatch{ID: *oldBedID},
			repository.BedUpdate{Status: model.BedStatusAvailable, SetPatient: true})
		if err != nil {
			s.release(ctx, newBed.ID, "transfer: old bed release failed")
			return nil, nil, errors.StoreUnavailable(fmt.Errorf("failed to release bed: %w", err))
		}
	}

	newBedID := newBed.ID
	if err := s.patients.UpdateBed(ctx, patient.ID, &newBedID); err != nil {
		s.release(ctx, newBed.ID, "transfer: patient update failed")
		if errors.Is(err, repository.ErrNotFound) {
			// Discharged concurrently; the old bed stays free.
			return nil, nil, errors.PatientNotFound
		}
		s.restore(ctx, oldBedID, patient.ID)
		return nil, nil, errors.StoreUnavailable(fmt.Errorf("failed to update patient: %w", err))
	}

	linked, err := s.link(ctx, newBed.ID, patient.ID)
	if err != nil || linked == nil {
		// Point the patient back at the old bed before giving the new one up.
		if uerr := s.patients.UpdateBed(ctx, patient.ID, oldBedID); uerr != nil {
			s.logger.Error().Err(uerr).Str("patient_id", patient.ID.String()).Msg("transfer: failed to revert patient bed during rollback")
		} else {
			s.restore(ctx, oldBedID, patient.ID)
		}
		s.release(ctx, newBed.ID, "transfer: link failed")
		if err == nil {
			return nil, nil, errors.BedNotFound
		}
		return nil, nil, errors.StoreUnavailable(fmt.Errorf("failed to link bed: %w", err))
	}
	newBed = linked
	patient.BedID = &newBedID
	patient.UpdatedAt = time.Now().UTC()

	s.loggerFor(ctx).Info().
		Str("patient_id", patient.ID.String()).
		Str("bed_id", newBed.ID.String()).
		Str("bed_number", newBed.BedNumber).
		Msg("patient transferred")

	s.notifier.Publish(ctx, model.EventPatientsTransferred, model.TransferredEvent{Patient: patient, NewBed: newBed})
	return patient, newBed, nil
}

// ListPatients returns every admitted patient with its bed resolved.
func (s *Service) ListPatients(ctx context.Context) ([]*model.PatientWithBed, error) {
	patients, err := s.patients.List(ctx)
	if err != nil {
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to list patients: %w", err))
	}
	beds, err := s.beds.List(ctx)
	if err != nil {
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to list beds: %w", err))
	}

	byID := make(map[uuid.UUID]*model.Bed, len(beds))
	for _, b := range beds {
		bed := b.Bed
		byID[bed.ID] = &bed
	}

	out := make([]*model.PatientWithBed, 0, len(patients))
	for _, p := range patients {
		item := &model.PatientWithBed{Patient: *p}
		if p.BedID != nil {
			item.Bed = byID[*p.BedID]
		}
		out = append(out, item)
	}
	return out, nil
}

// GetPatient returns one patient with its bed resolved.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientWithBed, error) {
	patient, err := s.getPatient(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &model.PatientWithBed{Patient: *patient}
	if patient.BedID != nil {
		bed, err := s.beds.Get(ctx, *patient.BedID)
		switch {
		case err == nil:
			out.Bed = bed
		case errors.Is(err, repository.ErrNotFound):
		default:
			return nil, errors.StoreUnavailable(fmt.Errorf("failed to get bed: %w", err))
		}
	}
	return out, nil
}

// loggerFor tags entries with the account that made the request, if known.
func (s *Service) loggerFor(ctx context.Context) *zerolog.Logger {
	if actor, ok := model.ActorFromContext(ctx); ok {
		l := s.logger.With().Str("actor_id", actor.AccountID.String()).Logger()
		return &l
	}
	return &s.logger
}

func (s *Service) getPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.PatientNotFound
		}
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to get patient: %w", err))
	}
	return patient, nil
}

// reserve flips one Available bed to Occupied in a single conditional update.
func (s *Service) reserve(ctx context.Context, ward string, bedType model.BedType) (*model.Bed, error) {
	bed, err := s.beds.CompareAndSet(ctx,
		repository.BedMatch{Status: model.BedStatusAvailable, Ward: strings.TrimSpace(ward), Type: bedType},
		repository.BedUpdate{Status: model.BedStatusOccupied})
	if err != nil {
		return nil, errors.StoreUnavailable(fmt.Errorf("failed to reserve bed: %w", err))
	}
	return bed, nil
}

func (s *Service) link(ctx context.Context, bedID, patientID uuid.UUID) (*model.Bed, error) {
	pid := patientID
	return s.beds.CompareAndSet(ctx,
		repository.BedMatch{ID: bedID},
		repository.BedUpdate{SetPatient: true, PatientID: &pid})
}

// release undoes a reservation made by this request. Only an Occupied bed is
// touched so a concurrent admin edit is not overwritten.
func (s *Service) release(ctx context.Context, bedID uuid.UUID, reason string) {
	_, err := s.beds.CompareAndSet(ctx,
		repository.BedMatch{ID: bedID, Status: model.BedStatusOccupied},
		repository.BedUpdate{Status: model.BedStatusAvailable, SetPatient: true})
	if err != nil {
		s.logger.Error().Err(err).Str("bed_id", bedID.String()).Str("reason", reason).Msg("failed to release reserved bed")
		return
	}
	s.logger.Warn().Str("bed_id", bedID.String()).Str("reason", reason).Msg("released reserved bed")
}

// restore re-occupies the old bed after a transfer failed past its release.
func (s *Service) restore(ctx context.Context, bedID *uuid.UUID, patientID uuid.UUID) {
	if bedID == nil {
		return
	}
	pid := patientID
	bed, err := s.beds.CompareAndSet(ctx,
		repository.BedMatch{ID: *bedID, Status: model.BedStatusAvailable},
		repository.BedUpdate{Status: model.BedStatusOccupied, SetPatient: true, PatientID: &pid})
	if err != nil || bed == nil {
		s.logger.Error().Err(err).Str("bed_id", bedID.String()).Msg("failed to restore previous bed")
	}
}

func (s *Service) record(operation string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.OccupancyOperations.WithLabelValues(operation, outcome(err)).Inc()
	s.metrics.OccupancyLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		return "error"
	}
	switch appErr.Code {
	case errors.ErrNoBedAvailable, errors.ErrNoTargetBedAvailable:
		return "no_bed"
	case errors.ErrPatientNotFound, errors.ErrBedNotFound:
		return "not_found"
	case errors.ErrValidation:
		return "invalid"
	case errors.ErrStoreUnavailable:
		return "store_unavailable"
	default:
		return "error"
	}
}

func validateAdmit(req *model.AdmitRequest) error {
	if req == nil {
		return errors.Validation("name and age are required", nil)
	}
	if strings.TrimSpace(req.Name) == "" {
		return errors.Validation("name is required", nil)
	}
	if req.Age == nil {
		return errors.Validation("age is required", nil)
	}
	if *req.Age < 0 || *req.Age > maxAge {
		return errors.Validation(fmt.Sprintf("age must be between 0 and %d", maxAge), nil)
	}
	if req.PreferredType != "" && !req.PreferredType.Valid() {
		return errors.Validation(fmt.Sprintf("invalid bed type %q", req.PreferredType), nil)
	}
	return nil
}
