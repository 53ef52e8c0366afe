package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/repository"
)

func newBed(number, ward string, bedType model.BedType) *model.Bed {
	return &model.Bed{
		Base:      model.NewBase(),
		BedNumber: number,
		Ward:      ward,
		Type:      bedType,
		Status:    model.BedStatusAvailable,
	}
}

func TestBedCreateRejectsDuplicateNumber(t *testing.T) {
	beds := NewStore().Beds()
	ctx := context.Background()

	require.NoError(t, beds.Create(ctx, newBed("B1", "North", model.BedTypeGeneral)))
	err := beds.Create(ctx, newBed("B1", "South", model.BedTypeICU))
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestBedRecordsAreCopied(t *testing.T) {
	beds := NewStore().Beds()
	ctx := context.Background()

	bed := newBed("B1", "North", model.BedTypeGeneral)
	require.NoError(t, beds.Create(ctx, bed))
	bed.Status = model.BedStatusMaintenance

	got, err := beds.Get(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BedStatusAvailable, got.Status)

	got.Ward = "Changed"
	again, err := beds.Get(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, "North", again.Ward)
}

func TestCompareAndSetFirstMatchInInsertionOrder(t *testing.T) {
	beds := NewStore().Beds()
	ctx := context.Background()

	first := newBed("B1", "North", model.BedTypeGeneral)
	second := newBed("B2", "North", model.BedTypeGeneral)
	require.NoError(t, beds.Create(ctx, first))
	require.NoError(t, beds.Create(ctx, second))

	got, err := beds.CompareAndSet(ctx,
		repository.BedMatch{Status: model.BedStatusAvailable, Ward: "North"},
		repository.BedUpdate{Status: model.BedStatusOccupied},
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, model.BedStatusOccupied, got.Status)

	got, err = beds.CompareAndSet(ctx,
		repository.BedMatch{Status: model.BedStatusAvailable, Ward: "North"},
		repository.BedUpdate{Status: model.BedStatusOccupied},
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)

	got, err = beds.CompareAndSet(ctx,
		repository.BedMatch{Status: model.BedStatusAvailable},
		repository.BedUpdate{Status: model.BedStatusOccupied},
	)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompareAndSetByID(t *testing.T) {
	beds := NewStore().Beds()
	ctx := context.Background()

	bed := newBed("B1", "North", model.BedTypeICU)
	require.NoError(t, beds.Create(ctx, bed))
	patientID := uuid.New()

	got, err := beds.CompareAndSet(ctx,
		repository.BedMatch{ID: bed.ID, Status: model.BedStatusOccupied},
		repository.BedUpdate{SetPatient: true, PatientID: &patientID},
	)
	require.NoError(t, err)
	assert.Nil(t, got, "status predicate must hold")

	got, err = beds.CompareAndSet(ctx,
		repository.BedMatch{ID: bed.ID, Status: model.BedStatusAvailable},
		repository.BedUpdate{Status: model.BedStatusOccupied, SetPatient: true, PatientID: &patientID},
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.PatientID)
	assert.Equal(t, patientID, *got.PatientID)

	got, err = beds.CompareAndSet(ctx,
		repository.BedMatch{ID: bed.ID},
		repository.BedUpdate{Status: model.BedStatusAvailable, SetPatient: true},
	)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.PatientID)

	got, err = beds.CompareAndSet(ctx, repository.BedMatch{ID: uuid.New()}, repository.BedUpdate{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCompareAndSetConcurrentReservations(t *testing.T) {
	beds := NewStore().Beds()
	ctx := context.Background()
	require.NoError(t, beds.Create(ctx, newBed("B1", "North", model.BedTypeGeneral)))

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := beds.CompareAndSet(ctx,
				repository.BedMatch{Status: model.BedStatusAvailable},
				repository.BedUpdate{Status: model.BedStatusOccupied},
			)
			if err == nil && got != nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestBedListResolvesPatientName(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	patient := &model.Patient{Base: model.NewBase(), Name: "Jane", Age: 40}
	bed := newBed("B1", "North", model.BedTypeGeneral)
	bed.Status = model.BedStatusOccupied
	bed.PatientID = &patient.ID
	require.NoError(t, store.Patients().Create(ctx, patient))
	require.NoError(t, store.Beds().Create(ctx, bed))
	require.NoError(t, store.Beds().Create(ctx, newBed("B2", "North", model.BedTypeGeneral)))

	items, err := store.Beds().List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[0].PatientName)
	assert.Equal(t, "Jane", *items[0].PatientName)
	assert.Nil(t, items[1].PatientName)
}

func TestBedDelete(t *testing.T) {
	beds := NewStore().Beds()
	ctx := context.Background()

	bed := newBed("B1", "North", model.BedTypeGeneral)
	require.NoError(t, beds.Create(ctx, bed))
	require.NoError(t, beds.Delete(ctx, bed.ID))
	assert.ErrorIs(t, beds.Delete(ctx, bed.ID), repository.ErrNotFound)

	_, err := beds.FindOne(ctx, repository.BedMatch{ID: bed.ID})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	items, err := beds.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPatientLifecycle(t *testing.T) {
	patients := NewStore().Patients()
	ctx := context.Background()

	p := &model.Patient{Base: model.NewBase(), Name: "Jane", Age: 40}
	require.NoError(t, patients.Create(ctx, p))
	assert.ErrorIs(t, patients.Create(ctx, p), repository.ErrDuplicate)

	bedID := uuid.New()
	require.NoError(t, patients.UpdateBed(ctx, p.ID, &bedID))
	got, err := patients.Get(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.BedID)
	assert.Equal(t, bedID, *got.BedID)

	assert.ErrorIs(t, patients.UpdateBed(ctx, uuid.New(), nil), repository.ErrNotFound)

	list, err := patients.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, patients.Delete(ctx, p.ID))
	_, err = patients.Get(ctx, p.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, patients.Delete(ctx, p.ID), repository.ErrNotFound)
}

func TestAccountEmailIsCaseInsensitive(t *testing.T) {
	accounts := NewStore().Accounts()
	ctx := context.Background()

	a := &model.Account{ID: uuid.New(), Name: "A", Email: "a@example.com", Role: model.RoleStaff}
	require.NoError(t, accounts.Create(ctx, a))
	assert.ErrorIs(t, accounts.Create(ctx, &model.Account{ID: uuid.New(), Email: "A@Example.com"}), repository.ErrDuplicate)

	got, err := accounts.GetByEmail(ctx, "A@EXAMPLE.COM")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = accounts.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
