package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/api/shared"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/domain/schedule"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/jsonapi"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/service/auth"
	"github.com/MoisesCorcho/Asimov-Challenge-jsonapi/internal/store"
)

// In-memory store fakes. They honor the interfaces' error contracts so
// the handlers under test see realistic store behavior.

type fakeAppointmentStore struct {
	items      map[int64]*domain.Appointment
	categories map[int64]*domain.Category
	authors    map[uuid.UUID]*domain.User
	comments   map[int64][]*domain.Comment
	nextID     int64

	listErr error
}

func newFakeAppointmentStore() *fakeAppointmentStore {
	return &fakeAppointmentStore{
		items:      make(map[int64]*domain.Appointment),
		categories: make(map[int64]*domain.Category),
		authors:    make(map[uuid.UUID]*domain.User),
		comments:   make(map[int64][]*domain.Comment),
		nextID:     1,
	}
}

func (f *fakeAppointmentStore) sorted() []*domain.Appointment {
	out := make([]*domain.Appointment, 0, len(f.items))
	for _, appt := range f.items {
		out = append(out, appt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeAppointmentStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.AppointmentPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	items := f.sorted()
	return &store.AppointmentPage{
		Items: items,
		Meta:  jsonapi.NewPageMeta(len(items), spec.Page),
	}, nil
}

func (f *fakeAppointmentStore) LoadRelated(ctx context.Context, appts []*domain.Appointment, includes []string) (*store.AppointmentRelated, error) {
	related := &store.AppointmentRelated{
		Categories: make(map[int64]*domain.Category),
		Authors:    make(map[uuid.UUID]*domain.User),
		Comments:   make(map[int64][]*domain.Comment),
	}
	for _, include := range includes {
		for _, appt := range appts {
			switch include {
			case "category":
				if cat, ok := f.categories[appt.CategoryID]; ok {
					related.Categories[cat.ID] = cat
				}
			case "author":
				if appt.AuthorID.Valid {
					if user, ok := f.authors[appt.AuthorID.UUID]; ok {
						related.Authors[user.ID] = user
					}
				}
			case "comments":
				related.Comments[appt.ID] = f.comments[appt.ID]
			}
		}
	}
	return related, nil
}

func (f *fakeAppointmentStore) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	appt, ok := f.items[id]
	if !ok {
		return nil, store.ErrAppointmentNotFound
	}
	return appt, nil
}

func (f *fakeAppointmentStore) StartTimesOn(ctx context.Context, date domain.Date, excludeID int64) ([]domain.TimeOfDay, error) {
	var times []domain.TimeOfDay
	for _, appt := range f.items {
		if appt.ID != excludeID && appt.Date.Equal(date) {
			times = append(times, appt.StartTime)
		}
	}
	return times, nil
}

func (f *fakeAppointmentStore) Create(ctx context.Context, appt *domain.Appointment) error {
	for _, existing := range f.items {
		if existing.Date.Equal(appt.Date) && existing.StartTime == appt.StartTime {
			return store.ErrSlotTaken
		}
	}
	appt.ID = f.nextID
	f.nextID++
	f.items[appt.ID] = appt
	return nil
}

func (f *fakeAppointmentStore) Update(ctx context.Context, appt *domain.Appointment) error {
	if _, ok := f.items[appt.ID]; !ok {
		return store.ErrAppointmentNotFound
	}
	f.items[appt.ID] = appt
	return nil
}

func (f *fakeAppointmentStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrAppointmentNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeAppointmentStore) WithTx(tx *sql.Tx) store.AppointmentStore { return f }

type fakeCategoryStore struct {
	items map[int64]*domain.Category
}

func (f *fakeCategoryStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.CategoryPage, error) {
	out := make([]*domain.Category, 0, len(f.items))
	for _, cat := range f.items {
		out = append(out, cat)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return &store.CategoryPage{Items: out, Meta: jsonapi.NewPageMeta(len(out), spec.Page)}, nil
}

func (f *fakeCategoryStore) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	cat, ok := f.items[id]
	if !ok {
		return nil, store.ErrCategoryNotFound
	}
	return cat, nil
}

type fakeUserStore struct {
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserStore) add(user *domain.User) {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
}

func (f *fakeUserStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.UserPage, error) {
	out := make([]*domain.User, 0, len(f.byID))
	for _, user := range f.byID {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return &store.UserPage{Items: out, Meta: jsonapi.NewPageMeta(len(out), spec.Page)}, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	if _, ok := f.byEmail[user.Email]; ok {
		return store.ErrEmailExists
	}
	f.add(user)
	return nil
}

func (f *fakeUserStore) GrantPermission(ctx context.Context, userID uuid.UUID, permission string) error {
	user, ok := f.byID[userID]
	if !ok {
		return store.ErrUserNotFound
	}
	user.GrantPermission(permission)
	return nil
}

func (f *fakeUserStore) WithTx(tx *sql.Tx) store.UserStore { return f }

type fakeCommentStore struct {
	items        map[int64]*domain.Comment
	appointments *fakeAppointmentStore
	users        *fakeUserStore
	nextID       int64
}

func newFakeCommentStore(appointments *fakeAppointmentStore, users *fakeUserStore) *fakeCommentStore {
	return &fakeCommentStore{
		items:        make(map[int64]*domain.Comment),
		appointments: appointments,
		users:        users,
		nextID:       1,
	}
}

func (f *fakeCommentStore) sorted() []*domain.Comment {
	out := make([]*domain.Comment, 0, len(f.items))
	for _, comment := range f.items {
		out = append(out, comment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeCommentStore) List(ctx context.Context, spec *jsonapi.QuerySpec) (*store.CommentPage, error) {
	items := f.sorted()
	return &store.CommentPage{Items: items, Meta: jsonapi.NewPageMeta(len(items), spec.Page)}, nil
}

func (f *fakeCommentStore) LoadRelated(ctx context.Context, comments []*domain.Comment, includes []string) (*store.CommentRelated, error) {
	related := &store.CommentRelated{
		Appointments: make(map[int64]*domain.Appointment),
		Authors:      make(map[uuid.UUID]*domain.User),
	}
	for _, include := range includes {
		for _, comment := range comments {
			switch include {
			case "appointment":
				if appt, ok := f.appointments.items[comment.AppointmentID]; ok {
					related.Appointments[appt.ID] = appt
				}
			case "author":
				if user, ok := f.users.byID[comment.AuthorID]; ok {
					related.Authors[user.ID] = user
				}
			}
		}
	}
	return related, nil
}

func (f *fakeCommentStore) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	comment, ok := f.items[id]
	if !ok {
		return nil, store.ErrCommentNotFound
	}
	return comment, nil
}

func (f *fakeCommentStore) ListByAppointment(ctx context.Context, appointmentID int64) ([]*domain.Comment, error) {
	var out []*domain.Comment
	for _, comment := range f.sorted() {
		if comment.AppointmentID == appointmentID {
			out = append(out, comment)
		}
	}
	return out, nil
}

func (f *fakeCommentStore) Create(ctx context.Context, comment *domain.Comment) error {
	comment.ID = f.nextID
	f.nextID++
	f.items[comment.ID] = comment
	return nil
}

func (f *fakeCommentStore) Update(ctx context.Context, comment *domain.Comment) error {
	if _, ok := f.items[comment.ID]; !ok {
		return store.ErrCommentNotFound
	}
	f.items[comment.ID] = comment
	return nil
}

func (f *fakeCommentStore) Delete(ctx context.Context, id int64) error {
	if _, ok := f.items[id]; !ok {
		return store.ErrCommentNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeCommentStore) AssociateWithAppointment(ctx context.Context, appointmentID int64, commentIDs []int64) error {
	for _, id := range commentIDs {
		if _, ok := f.items[id]; !ok {
			return store.ErrCommentNotFound
		}
	}
	for _, id := range commentIDs {
		f.items[id].AppointmentID = appointmentID
	}
	return nil
}

func (f *fakeCommentStore) WithTx(tx *sql.Tx) store.CommentStore { return f }

type fakeTokenStore struct {
	revoked map[string]time.Time
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{revoked: make(map[string]time.Time)}
}

func (f *fakeTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	f.revoked[jti] = expiresAt
	return nil
}

func (f *fakeTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, ok := f.revoked[jti]
	return ok, nil
}

// testAPI bundles the fakes, the transaction mock and a router with the
// production route shape.
type testAPI struct {
	appointments *fakeAppointmentStore
	categories   *fakeCategoryStore
	users        *fakeUserStore
	comments     *fakeCommentStore
	tokens       *fakeTokenStore
	mock         sqlmock.Sqlmock
	router       chi.Router
}

// newTestAPI wires handlers against in-memory stores. The scheduling
// clock is pinned to Friday 2025-11-14 08:00 so Monday 2025-11-17 is
// always bookable.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	appointments := newFakeAppointmentStore()
	categories := &fakeCategoryStore{items: make(map[int64]*domain.Category)}
	users := newFakeUserStore()
	comments := newFakeCommentStore(appointments, users)
	tokens := newFakeTokenStore()

	validator := schedule.NewValidator(schedule.NewDefaultParams(), func() time.Time {
		return time.Date(2025, time.November, 14, 8, 0, 0, 0, time.UTC)
	})
	svc := service.NewAppointmentService(db, appointments, comments, validator, nil)

	appointmentHandler := NewAppointmentHandler(svc, appointments, categories, users, comments, nil)
	categoryHandler := NewCategoryHandler(categories, nil)
	authorHandler := NewAuthorHandler(users, nil)
	commentHandler := NewCommentHandler(comments, appointments, users, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/appointments", appointmentHandler.List)
		r.Post("/appointments", appointmentHandler.Create)
		r.Get("/appointments/{id}", appointmentHandler.Get)
		r.Patch("/appointments/{id}", appointmentHandler.Update)
		r.Delete("/appointments/{id}", appointmentHandler.Delete)
		r.Get("/appointments/{id}/relationships/category", appointmentHandler.GetCategoryRelationship)
		r.Get("/appointments/{id}/category", appointmentHandler.GetCategory)
		r.Patch("/appointments/{id}/relationships/category", appointmentHandler.PatchCategoryRelationship)
		r.Get("/appointments/{id}/relationships/author", appointmentHandler.GetAuthorRelationship)
		r.Get("/appointments/{id}/author", appointmentHandler.GetAuthor)
		r.Patch("/appointments/{id}/relationships/author", appointmentHandler.PatchAuthorRelationship)
		r.Get("/appointments/{id}/relationships/comments", appointmentHandler.GetCommentsRelationship)
		r.Get("/appointments/{id}/comments", appointmentHandler.GetComments)
		r.Patch("/appointments/{id}/relationships/comments", appointmentHandler.PatchCommentsRelationship)

		r.Get("/categories", categoryHandler.List)
		r.Get("/categories/{id}", categoryHandler.Get)

		r.Get("/authors", authorHandler.List)
		r.Get("/authors/{id}", authorHandler.Get)
		r.Get("/user", authorHandler.CurrentUser)

		r.Get("/comments", commentHandler.List)
		r.Post("/comments", commentHandler.Create)
		r.Get("/comments/{id}", commentHandler.Get)
		r.Patch("/comments/{id}", commentHandler.Update)
		r.Delete("/comments/{id}", commentHandler.Delete)
		r.Get("/comments/{id}/relationships/appointment", commentHandler.GetAppointmentRelationship)
		r.Get("/comments/{id}/appointment", commentHandler.GetAppointment)
		r.Get("/comments/{id}/relationships/author", commentHandler.GetAuthorRelationship)
		r.Get("/comments/{id}/author", commentHandler.GetAuthor)
	})

	return &testAPI{
		appointments: appointments,
		categories:   categories,
		users:        users,
		comments:     comments,
		tokens:       tokens,
		mock:         mock,
		router:       r,
	}
}

// do serves a request without credentials.
func (a *testAPI) do(method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", jsonapi.MediaType)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// doAs serves a request carrying the given claims, as if the auth
// middleware had validated a token.
func (a *testAPI) doAs(claims *auth.Claims, method, target string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", jsonapi.MediaType)
	}
	req = req.WithContext(context.WithValue(req.Context(), shared.ClaimsContextKey, claims))
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// claimsFor builds claims for a user with the given abilities.
func claimsFor(user *domain.User, abilities ...string) *auth.Claims {
	return &auth.Claims{
		UserID:    user.ID,
		Abilities: abilities,
		Subject:   user.ID.String(),
		IssuedAt:  time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
		ID:        uuid.New().String(),
	}
}

// seedUser registers a user in the fake store.
func seedUser(t *testing.T, api *testAPI, name, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(name, email, "strongpassword")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$fakehash"
	api.users.add(user)
	api.appointments.authors[user.ID] = user
	return user
}

// seedAppointment stores an appointment directly in the fake store.
func seedAppointment(api *testAPI, id int64, date string, start string, email string, categoryID int64, author *domain.User) *domain.Appointment {
	d, _ := domain.ParseDate(date)
	s, _ := domain.ParseTimeOfDay(start)
	appt := &domain.Appointment{
		ID:         id,
		Date:       d,
		StartTime:  s,
		Email:      email,
		CategoryID: categoryID,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if author != nil {
		appt.AuthorID = uuid.NullUUID{UUID: author.ID, Valid: true}
	}
	api.appointments.items[id] = appt
	if id >= api.appointments.nextID {
		api.appointments.nextID = id + 1
	}
	return appt
}

// seedCategory stores a category in the fake store.
func seedCategory(api *testAPI, id int64, name string) *domain.Category {
	cat := &domain.Category{ID: id, Name: name}
	api.categories.items[id] = cat
	api.appointments.categories[id] = cat
	return cat
}

// decodeDocument unmarshals a JSON:API response body into a generic map.
func decodeDocument(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}
