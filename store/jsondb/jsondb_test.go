package jsondb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirec/clinic-ui/model"
	"github.com/medirec/clinic-ui/store"
)

func newTestDB(t *testing.T) *JsonDB {
	t.Helper()
	db, err := New(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Init())
	return db
}

func TestCreateUserAssignsID(t *testing.T) {
	db := newTestDB(t)

	alice, err := db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-a"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, "staff", alice.Role)

	bob, err := db.CreateUser(model.User{Username: "bob", PasswordHash: "hash-b"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	found, err := db.GetUserByID(bob.ID)
	require.NoError(t, err)
	assert.Equal(t, bob, found)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	db := newTestDB(t)

	_, err := db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-a"})
	require.NoError(t, err)

	_, err = db.CreateUser(model.User{Username: "alice", PasswordHash: "hash-b"})
	require.ErrorIs(t, err, store.ErrUsernameTaken)

	found, err := db.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, "hash-a", found.PasswordHash)
}

func TestGetUserNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByUsername("nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = db.GetUserByID(42)
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestPatientCRUD(t *testing.T) {
	db := newTestDB(t)

	created, err := db.CreatePatient(model.Patient{Name: "Jane Doe", Age: 42, Gender: "F", Diagnosis: "flu"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	patients, err := db.GetPatients()
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, created, patients[0])

	updated := created
	updated.Diagnosis = "recovered"
	require.NoError(t, db.UpdatePatient(updated))

	found, err := db.GetPatientByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", found.Name)
	assert.Equal(t, 42, found.Age)
	assert.Equal(t, "F", found.Gender)
	assert.Equal(t, "recovered", found.Diagnosis)

	require.NoError(t, db.DeletePatient(created.ID))
	_, err = db.GetPatientByID(created.ID)
	assert.ErrorIs(t, err, store.ErrPatientNotFound)
}

func TestPatientsOrderedByID(t *testing.T) {
	db := newTestDB(t)

	// scribble lists files lexicographically, so create enough records
	// that "10" would sort before "2"
	for i := 0; i < 11; i++ {
		_, err := db.CreatePatient(model.Patient{Name: "p"})
		require.NoError(t, err)
	}

	patients, err := db.GetPatients()
	require.NoError(t, err)
	require.Len(t, patients, 11)
	for i := 1; i < len(patients); i++ {
		assert.Less(t, patients[i-1].ID, patients[i].ID)
	}
}

func TestUpdateAndDeleteMissingPatient(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdatePatient(model.Patient{ID: 7, Name: "ghost"})
	assert.ErrorIs(t, err, store.ErrPatientNotFound)

	err = db.DeletePatient(7)
	assert.ErrorIs(t, err, store.ErrPatientNotFound)
}
