package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinkertanker/bitvibe-extension/models"
)

// fakeStore keeps everything in maps and mirrors the store's quota
// contract: ConsumeQuota increments only below the limit.
type fakeStore struct {
	students     map[string]*models.Student // keyed by token hash
	classrooms   map[uint]*models.Classroom
	consumeCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		students:   map[string]*models.Student{},
		classrooms: map[uint]*models.Classroom{},
	}
}

func (f *fakeStore) addClassroom(id uint, active bool, limit int) {
	f.classrooms[id] = &models.Classroom{ID: id, Name: "test", Active: active, RequestLimit: limit}
}

func (f *fakeStore) addStudent(token string, id, classroomID uint, active bool, used int) {
	f.students[HashToken(token)] = &models.Student{
		ID: id, ClassroomID: classroomID, Active: active, RequestsUsed: used,
	}
}

func (f *fakeStore) FindStudentByHash(_ context.Context, hash string) (*models.Student, error) {
	return f.students[hash], nil
}

func (f *fakeStore) FindClassroomByID(_ context.Context, id uint) (*models.Classroom, error) {
	return f.classrooms[id], nil
}

func (f *fakeStore) ConsumeQuota(_ context.Context, studentID uint, limit int) (bool, error) {
	f.consumeCalls++
	for _, s := range f.students {
		if s.ID == studentID {
			if !s.Active || s.RequestsUsed >= limit {
				return false, nil
			}
			s.RequestsUsed++
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) studentByID(id uint) *models.Student {
	for _, s := range f.students {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func TestStaticTokenAdmitsUnmetered(t *testing.T) {
	store := newFakeStore()
	store.addClassroom(1, true, 5)
	store.addStudent("tok", 1, 1, true, 5) // even an exhausted roster is irrelevant

	engine := NewEngine(store, "app-secret")

	p, err := engine.Authorize(context.Background(), "app-secret")
	require.NoError(t, err)
	assert.True(t, p.Unmetered)
	assert.Zero(t, store.consumeCalls, "static mode must not touch usage accounting")
}

func TestOpenModeOnlyWithoutStaticToken(t *testing.T) {
	engine := NewEngine(newFakeStore(), "")
	p, err := engine.Authorize(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, p.Unmetered)

	engine = NewEngine(newFakeStore(), "app-secret")
	_, err = engine.Authorize(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUnknownTokenNeverFallsBackToOpen(t *testing.T) {
	// No static secret configured, so an empty credential would be
	// admitted; a wrong non-empty one must not be.
	engine := NewEngine(newFakeStore(), "")
	_, err := engine.Authorize(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestInactiveStudentForbidden(t *testing.T) {
	store := newFakeStore()
	store.addClassroom(1, true, 5)
	store.addStudent("tok", 1, 1, false, 0)

	engine := NewEngine(store, "")
	_, err := engine.Authorize(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Zero(t, store.consumeCalls)
}

func TestInactiveClassroomForbidden(t *testing.T) {
	store := newFakeStore()
	store.addClassroom(1, false, 5)
	store.addStudent("tok", 1, 1, true, 0)

	engine := NewEngine(store, "")
	_, err := engine.Authorize(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMissingClassroomForbidden(t *testing.T) {
	store := newFakeStore()
	store.addStudent("tok", 1, 99, true, 0) // classroom 99 does not exist

	engine := NewEngine(store, "")
	_, err := engine.Authorize(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestQuotaBoundary(t *testing.T) {
	store := newFakeStore()
	store.addClassroom(1, true, 3)
	store.addStudent("tok", 1, 1, true, 2) // one slot left

	engine := NewEngine(store, "")

	p, err := engine.Authorize(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, uint(1), p.StudentID)
	assert.Equal(t, 3, p.RequestLimit)
	assert.Equal(t, 3, store.studentByID(1).RequestsUsed, "admission increments to exactly the limit")

	// Now at the limit: rejected, and the counter stays put.
	_, err = engine.Authorize(context.Background(), "tok")
	var rateLimited *RateLimitError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, 3, rateLimited.Limit)
	assert.Equal(t, 3, store.studentByID(1).RequestsUsed)
}

func TestWrongTokenWithStaticConfigured(t *testing.T) {
	// A non-empty credential that is not the static secret goes through
	// student lookup and fails there; it never reaches open mode.
	engine := NewEngine(newFakeStore(), "app-secret")
	_, err := engine.Authorize(context.Background(), "not-the-secret")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
