package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tinkertanker/bitvibe-extension/auth"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return NewStore(db)
}

func TestCreateClassroomIssuesCredentials(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, rawToken, err := store.CreateClassroom(ctx, "Sec 2 Computing", 50, 40)
	require.NoError(t, err)

	assert.Len(t, cls.JoinCode, 6)
	assert.Equal(t, strings.ToUpper(cls.JoinCode), cls.JoinCode)
	assert.Len(t, rawToken, 48)
	assert.True(t, cls.Active)
	assert.Equal(t, 50, cls.RequestLimit)
	assert.Equal(t, 40, cls.MaxStudents)

	// The raw token is not stored; its hash finds the row.
	found, err := store.FindClassroomByTeacherHash(ctx, auth.HashToken(rawToken))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cls.ID, found.ID)

	missing, err := store.FindClassroomByTeacherHash(ctx, auth.HashToken("wrong"))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestJoinCodeLookupIsCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 10, 10)
	require.NoError(t, err)

	found, err := store.FindClassroomByJoinCode(ctx, "  "+strings.ToLower(cls.JoinCode)+" ")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, cls.ID, found.ID)
}

func TestJoinCodeLookupSkipsInactiveClassrooms(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 10, 10)
	require.NoError(t, err)

	ok, err := store.UpdateClassroom(ctx, cls.ID, map[string]any{"active": false})
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := store.FindClassroomByJoinCode(ctx, cls.JoinCode)
	require.NoError(t, err)
	assert.Nil(t, found, "paused classrooms must not accept joins")
}

func TestCreateStudentAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 10, 10)
	require.NoError(t, err)

	student, rawToken, err := store.CreateStudent(ctx, cls.ID, "Ada")
	require.NoError(t, err)
	assert.True(t, student.Active)
	assert.Zero(t, student.RequestsUsed)

	found, err := store.FindStudentByHash(ctx, auth.HashToken(rawToken))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, student.ID, found.ID)
	assert.Equal(t, cls.ID, found.ClassroomID)

	students, err := store.ListStudents(ctx, cls.ID)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Ada", students[0].DisplayName)
}

func TestCountActiveStudents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 10, 10)
	require.NoError(t, err)

	s1, _, err := store.CreateStudent(ctx, cls.ID, "a")
	require.NoError(t, err)
	_, _, err = store.CreateStudent(ctx, cls.ID, "b")
	require.NoError(t, err)

	n, err := store.CountActiveStudents(ctx, cls.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ok, err := store.DeactivateStudent(ctx, s1.ID, cls.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	n, err = store.CountActiveStudents(ctx, cls.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestConsumeQuotaBoundary(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 2, 10)
	require.NoError(t, err)
	student, rawToken, err := store.CreateStudent(ctx, cls.ID, "a")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		ok, err := store.ConsumeQuota(ctx, student.ID, cls.RequestLimit)
		require.NoError(t, err)
		assert.True(t, ok, "call %d should be admitted", i+1)
	}

	// Third call hits the limit exactly; no increment happens.
	ok, err := store.ConsumeQuota(ctx, student.ID, cls.RequestLimit)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := store.FindStudentByHash(ctx, auth.HashToken(rawToken))
	require.NoError(t, err)
	assert.Equal(t, 2, found.RequestsUsed, "counter stops exactly at the limit")
}

func TestConsumeQuotaInactiveStudent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 5, 10)
	require.NoError(t, err)
	student, _, err := store.CreateStudent(ctx, cls.ID, "a")
	require.NoError(t, err)

	ok, err := store.DeactivateStudent(ctx, student.ID, cls.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.ConsumeQuota(ctx, student.ID, cls.RequestLimit)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeactivateStudentScopedToClassroom(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls1, _, err := store.CreateClassroom(ctx, "one", 5, 10)
	require.NoError(t, err)
	cls2, _, err := store.CreateClassroom(ctx, "two", 5, 10)
	require.NoError(t, err)

	student, _, err := store.CreateStudent(ctx, cls1.ID, "a")
	require.NoError(t, err)

	// Another teacher's classroom id must not reach this student.
	ok, err := store.DeactivateStudent(ctx, student.ID, cls2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.DeactivateStudent(ctx, student.ID, cls1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Already inactive: reports no matching active row.
	ok, err = store.DeactivateStudent(ctx, student.ID, cls1.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResetUsage(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "c", 5, 10)
	require.NoError(t, err)
	student, rawToken, err := store.CreateStudent(ctx, cls.ID, "a")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := store.ConsumeQuota(ctx, student.ID, cls.RequestLimit)
		require.NoError(t, err)
		require.True(t, ok)
	}

	require.NoError(t, store.ResetUsage(ctx, cls.ID))

	found, err := store.FindStudentByHash(ctx, auth.HashToken(rawToken))
	require.NoError(t, err)
	assert.Zero(t, found.RequestsUsed)
}

func TestUpdateClassroomPartial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cls, _, err := store.CreateClassroom(ctx, "old name", 5, 10)
	require.NoError(t, err)

	ok, err := store.UpdateClassroom(ctx, cls.ID, map[string]any{"name": "new name", "request_limit": 7})
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := store.FindClassroomByID(ctx, cls.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "new name", found.Name)
	assert.Equal(t, 7, found.RequestLimit)
	assert.Equal(t, 10, found.MaxStudents, "untouched fields keep their values")

	ok, err = store.UpdateClassroom(ctx, 9999, map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}
