package store

import (
	"errors"

	"github.com/medirec/clinic-ui/model"
)

// Sentinel errors shared by every storage backend. Handlers match on these
// to decide between a flash message, a 404 page and a plain 500.
var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUserNotFound    = errors.New("user not found")
	ErrPatientNotFound = errors.New("patient not found")
)

// IStore is the persistence contract for users and patients.
type IStore interface {
	Init() error
	Close() error

	// CreateUser persists a new user and returns it with the assigned ID.
	// Returns ErrUsernameTaken when the username is already present.
	CreateUser(user model.User) (model.User, error)
	GetUserByUsername(username string) (model.User, error)
	GetUserByID(id int64) (model.User, error)

	// GetPatients returns all patients ordered by id ascending.
	GetPatients() ([]model.Patient, error)
	GetPatientByID(id int64) (model.Patient, error)
	CreatePatient(patient model.Patient) (model.Patient, error)
	UpdatePatient(patient model.Patient) error
	DeletePatient(id int64) error
}
