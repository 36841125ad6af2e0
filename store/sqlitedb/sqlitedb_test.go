package sqlitedb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirec/clinic-ui/model"
	"github.com/medirec/clinic-ui/store"
)

func newTestDB(t *testing.T) *SqliteDB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "clinic.db"))
	require.NoError(t, err)
	require.NoError(t, db.Init())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Init())
}

func TestCreateUserAssignsIDAndDefaultRole(t *testing.T) {
	db := newTestDB(t)

	user, err := db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-a"})
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "staff", user.Role)

	found, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user, found)

	byID, err := db.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, byID)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	first, err := db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-a"})
	require.NoError(t, err)

	_, err = db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-b"})
	require.ErrorIs(t, err, store.ErrUsernameTaken)

	// first user must remain intact
	found, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, "hash-a", found.PasswordHash)
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = db.GetUserByID(42)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestUsernameIsCaseSensitive(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-a"})
	require.NoError(t, err)

	_, err = db.GetUserByUsername("Alice")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestCreateAndListPatients(t *testing.T) {
	db := newTestDB(t)

	created, err := db.CreatePatient(model.Patient{Name: "Jane Doe", Age: 42, Gender: "F", Diagnosis: "flu"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	patients, err := db.GetPatients()
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, created, patients[0])
}

func TestGetPatientsOrderedByID(t *testing.T) {
	db := newTestDB(t)

	for _, name := range []string{"one", "two", "three"} {
		_, err := db.CreatePatient(model.Patient{Name: name})
		require.NoError(t, err)
	}

	patients, err := db.GetPatients()
	require.NoError(t, err)
	require.Len(t, patients, 3)
	for i := 1; i < len(patients); i++ {
		assert.Less(t, patients[i-1].ID, patients[i].ID)
	}
}

func TestUpdatePatientOverwritesAllFields(t *testing.T) {
	db := newTestDB(t)

	created, err := db.CreatePatient(model.Patient{Name: "Jane Doe", Age: 42, Gender: "F", Diagnosis: "flu"})
	require.NoError(t, err)

	// change diagnosis only, resubmitting the other fields unchanged
	updated := created
	updated.Diagnosis = "recovered"
	require.NoError(t, db.UpdatePatient(updated))

	found, err := db.GetPatientByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", found.Name)
	assert.Equal(t, 42, found.Age)
	assert.Equal(t, "F", found.Gender)
	assert.Equal(t, "recovered", found.Diagnosis)
}

func TestUpdateMissingPatient(t *testing.T) {
	db := newTestDB(t)
	err := db.UpdatePatient(model.Patient{ID: 99, Name: "ghost"})
	assert.ErrorIs(t, err, store.ErrPatientNotFound)
}

func TestDeletePatient(t *testing.T) {
	db := newTestDB(t)

	created, err := db.CreatePatient(model.Patient{Name: "Jane Doe", Age: 42})
	require.NoError(t, err)

	require.NoError(t, db.DeletePatient(created.ID))

	_, err = db.GetPatientByID(created.ID)
	assert.ErrorIs(t, err, store.ErrPatientNotFound)
}

func TestDeleteMissingPatientLeavesOthersIntact(t *testing.T) {
	db := newTestDB(t)

	created, err := db.CreatePatient(model.Patient{Name: "Jane Doe", Age: 42})
	require.NoError(t, err)

	err = db.DeletePatient(created.ID + 100)
	assert.ErrorIs(t, err, store.ErrPatientNotFound)

	patients, err := db.GetPatients()
	require.NoError(t, err)
	assert.Len(t, patients, 1)
}
