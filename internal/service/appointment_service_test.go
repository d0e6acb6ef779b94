package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain/schedule"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// fakeAppointmentStore is an in-memory AppointmentStore that records the
// calls the service makes. WithTx returns the same store; the
// transaction itself is exercised through sqlmock.
type fakeAppointmentStore struct {
	appointments map[int64]*domain.Appointment
	startTimes   []domain.TimeOfDay
	nextID       int64

	createCalled bool
	updateCalled bool
	excludedID   int64
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{
		appointments: make(map[int64]*domain.Appointment),
		nextID:       1,
	}
}

func (f *fakeAppointmentStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.AppointmentPage, error) {
	return &store.AppointmentPage{}, nil
}

func (f *fakeAppointmentStore) LoadRelated(ctx context.Context, appts []*domain.Appointment, includes []string) (*store.AppointmentRelated, error) {
	return &store.AppointmentRelated{}, nil
}

func (f *fakeAppointmentStore) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.appointments[id]
	if !ok {
		return nil, store.ErrAppointmentNotFound
	}
	return appt, nil
}

func (f *fakeAppointmentStore) StartTimesOn(ctx context.Context, date domain.Date, excludeID int64) ([]domain.TimeOfDay, error) {
	f.excludedID = excludeID
	return f.startTimes, nil
}

func (f *fakeAppointmentStore) Create(ctx context.Context, appt *domain.Appointment) error {
	f.createCalled = true
	appt.ID = f.nextID
	f.nextID++
	f.appointments[appt.ID] = appt
	return nil
}

func (f *fakeAppointmentStore) Update(ctx context.Context, appt *domain.Appointment) error {
	f.updateCalled = true
	if _, ok := f.appointments[appt.ID]; !ok {
		return store.ErrAppointmentNotFound
	}
	f.appointments[appt.ID] = appt
	return nil
}

func (f *fakeAppointmentStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.appointments[id]; !ok {
		return store.ErrAppointmentNotFound
	}
	delete(f.appointments, id)
	return nil
}

func (f *fakeAppointmentStore) WithTx(tx *sql.Tx) store.AppointmentStore { return f }

// fakeCommentStore records comment association calls.
type fakeCommentStore struct {
	associatedWith int64
	associatedIDs  []int64
	associateErr   error
}

func (f *fakeCommentStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.CommentPage, error) {
	return &store.CommentPage{}, nil
}

func (f *fakeCommentStore) LoadRelated(ctx context.Context, comments []*domain.Comment, includes []string) (*store.CommentRelated, error) {
	return &store.CommentRelated{}, nil
}

func (f *fakeCommentStore) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	return nil, store.ErrCommentNotFound
}

func (f *fakeCommentStore) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.Comment, error) {
	return nil, nil
}

func (f *fakeCommentStore) Create(ctx context.Context, comment *domain.Comment) error { return nil }

func (f *fakeCommentStore) Update(ctx context.Context, comment *domain.Comment) error { return nil }

func (f *fakeCommentStore) Delete(ctx context.Context, id int64) error { return nil }

func (f *fakeCommentStore) AssociateWithAppointment(ctx context.Context, appointmentID int64, commentIDs []int64) error {
	if f.associateErr != nil {
		return f.associateErr
	}
	f.associatedWith = appointmentID
	f.associatedIDs = commentIDs
	return nil
}

func (f *fakeCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return f }

// testValidator pins the clock to a Friday morning so the default
// office schedule accepts Monday bookings.
func testValidator() *schedule.Validator {
	return schedule.NewValidator(schedule.NewDefaultParams(), func() time.Time {
		return time.Date(2025, time.November, 14, 8, 0, 0, 0, time.UTC)
	})
}

func newServiceUnderTest(t *testing.T) (*AppointmentService, *fakeAppointmentStore, *fakeCommentStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	appointments := newFakeAppointmentStore()
	comments := &fakeCommentStore{}
	svc := NewAppointmentService(db, appointments, comments, testValidator(), nil)
	return svc, appointments, comments, mock
}

func validAppointment(t *testing.T) *domain.Appointment {
	t.Helper()
	appt, err := domain.NewAppointment(
		domain.NewDate(2025, time.November, 17),
		domain.TimeOfDay(10*60),
		"falseemail@gmail.com",
		1,
	)
	require.NoError(t, err)
	return appt
}

func TestServiceCreateCommits(t *testing.T) {
	svc, appointments, _, mock := newServiceUnderTest(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	appt := validAppointment(t)
	err := svc.Create(context.Background(), appt)

	require.NoError(t, err)
	assert.True(t, appointments.createCalled)
	assert.Equal(t, int64(1), appt.ID, "the store assigns the ID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceCreateRejectsCrossHours(t *testing.T) {
	svc, appointments, _, mock := newServiceUnderTest(t)
	appointments.startTimes = []domain.TimeOfDay{domain.TimeOfDay(10*60 + 30)}
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.Create(context.Background(), validAppointment(t))

	var violations schedule.Violations
	require.ErrorAs(t, err, &violations)
	require.Len(t, violations, 1)
	assert.Equal(t, "There are cross hours", violations[0].Detail)
	assert.False(t, appointments.createCalled, "rejected slots never reach the store")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceCreateRejectsWeekend(t *testing.T) {
	svc, appointments, _, mock := newServiceUnderTest(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	appt := validAppointment(t)
	appt.Date = domain.NewDate(2025, time.November, 15) // Saturday

	err := svc.Create(context.Background(), appt)

	var violations schedule.Violations
	require.ErrorAs(t, err, &violations)
	assert.False(t, appointments.createCalled)
}

func TestServiceUpdateExcludesOwnSlot(t *testing.T) {
	svc, appointments, _, mock := newServiceUnderTest(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	appt := validAppointment(t)
	appt.ID = 7
	appointments.appointments[7] = appt

	before := appt.UpdatedAt
	err := svc.Update(context.Background(), appt)

	require.NoError(t, err)
	assert.True(t, appointments.updateCalled)
	assert.Equal(t, int64(7), appointments.excludedID,
		"the overlap check must not count the appointment's own booking")
	assert.True(t, appt.UpdatedAt.After(before) || appt.UpdatedAt.Equal(before))
}

func TestServiceReassignSkipsSlotValidation(t *testing.T) {
	svc, appointments, _, mock := newServiceUnderTest(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	// A booking whose slot has already passed; only its relationships
	// change, so the scheduling rules must stay out of the way.
	appt := validAppointment(t)
	appt.ID = 7
	appt.Date = domain.NewDate(2025, time.November, 10)
	appointments.appointments[7] = appt
	appointments.startTimes = []domain.TimeOfDay{domain.TimeOfDay(10*60 + 30)}

	appt.CategoryID = 2
	err := svc.Reassign(context.Background(), appt)

	require.NoError(t, err)
	assert.True(t, appointments.updateCalled)
	assert.Zero(t, appointments.excludedID, "the overlap check is never consulted")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceAssociateComments(t *testing.T) {
	svc, appointments, comments, mock := newServiceUnderTest(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	appt := validAppointment(t)
	appt.ID = 3
	appt.AuthorID = uuid.NullUUID{UUID: uuid.New(), Valid: true}
	appointments.appointments[3] = appt

	err := svc.AssociateComments(context.Background(), 3, []int64{10, 11})

	require.NoError(t, err)
	assert.Equal(t, int64(3), comments.associatedWith)
	assert.Equal(t, []int64{10, 11}, comments.associatedIDs)
}

func TestServiceAssociateCommentsMissingAppointment(t *testing.T) {
	svc, _, comments, mock := newServiceUnderTest(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.AssociateComments(context.Background(), 99, []int64{10})

	assert.ErrorIs(t, err, store.ErrAppointmentNotFound)
	assert.Zero(t, comments.associatedWith, "a missing appointment stops the association")
}

func TestServiceDelete(t *testing.T) {
	svc, appointments, _, _ := newServiceUnderTest(t)
	appointments.appointments[5] = validAppointment(t)

	require.NoError(t, svc.Delete(context.Background(), 5))
	assert.ErrorIs(t, svc.Delete(context.Background(), 5), store.ErrAppointmentNotFound)
}
