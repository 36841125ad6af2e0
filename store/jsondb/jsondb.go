// Package jsondb provides a flat-file storage backend for Clinic UI
package jsondb

import (
	"encoding/json"
	"os"
	"path"
	"sort"
	"strconv"
	"sync"

	"github.com/sdomino/scribble"

	"github.com/medirec/clinic-ui/model"
	"github.com/medirec/clinic-ui/store"
)

type JsonDB struct {
	conn   *scribble.Driver
	dbPath string

	// guards id assignment across concurrent requests
	mu sync.Mutex
}

// New returns a new pointer JsonDB
func New(dbPath string) (*JsonDB, error) {
	conn, err := scribble.New(dbPath, nil)
	if err != nil {
		return nil, err
	}
	ans := JsonDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

// Init creates the collection directories if they do not exist
func (o *JsonDB) Init() error {
	var usersPath string = path.Join(o.dbPath, "users")
	var patientsPath string = path.Join(o.dbPath, "patients")

	if _, err := os.Stat(usersPath); os.IsNotExist(err) {
		if err := os.MkdirAll(usersPath, os.ModePerm); err != nil {
			return err
		}
	}
	if _, err := os.Stat(patientsPath); os.IsNotExist(err) {
		if err := os.MkdirAll(patientsPath, os.ModePerm); err != nil {
			return err
		}
	}

	return nil
}

// Close is a no-op for the flat-file backend
func (o *JsonDB) Close() error {
	return nil
}

// CreateUser writes a new user record keyed by username. The username file
// acts as the uniqueness constraint: an existing file rejects the write.
func (o *JsonDB) CreateUser(user model.User) (model.User, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	userPath := path.Join(o.dbPath, "users", user.Username+".json")
	if _, err := os.Stat(userPath); err == nil {
		return model.User{}, store.ErrUsernameTaken
	}

	if user.Role == "" {
		user.Role = model.DefaultRole
	}

	nextID, err := o.nextUserID()
	if err != nil {
		return model.User{}, err
	}
	user.ID = nextID

	if err := o.conn.Write("users", user.Username, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// GetUserByUsername reads a user record by exact username match
func (o *JsonDB) GetUserByUsername(username string) (model.User, error) {
	userPath := path.Join(o.dbPath, "users", username+".json")
	if _, err := os.Stat(userPath); os.IsNotExist(err) {
		return model.User{}, store.ErrUserNotFound
	}

	user := model.User{}
	if err := o.conn.Read("users", username, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// GetUserByID scans the users collection for a matching id
func (o *JsonDB) GetUserByID(id int64) (model.User, error) {
	records, err := o.conn.ReadAll("users")
	if err != nil {
		return model.User{}, err
	}

	for _, f := range records {
		user := model.User{}
		if err := json.Unmarshal([]byte(f), &user); err != nil {
			return model.User{}, err
		}
		if user.ID == id {
			return user, nil
		}
	}
	return model.User{}, store.ErrUserNotFound
}

// GetPatients reads all patient records, ordered by id ascending
func (o *JsonDB) GetPatients() ([]model.Patient, error) {
	records, err := o.conn.ReadAll("patients")
	if err != nil {
		return nil, err
	}

	patients := []model.Patient{}
	for _, f := range records {
		patient := model.Patient{}
		if err := json.Unmarshal([]byte(f), &patient); err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}

	// scribble returns records in file-name order; sort by id for a
	// stable listing
	sort.Slice(patients, func(i, j int) bool {
		return patients[i].ID < patients[j].ID
	})
	return patients, nil
}

// GetPatientByID reads a single patient record by id
func (o *JsonDB) GetPatientByID(id int64) (model.Patient, error) {
	key := strconv.FormatInt(id, 10)
	patientPath := path.Join(o.dbPath, "patients", key+".json")
	if _, err := os.Stat(patientPath); os.IsNotExist(err) {
		return model.Patient{}, store.ErrPatientNotFound
	}

	patient := model.Patient{}
	if err := o.conn.Read("patients", key, &patient); err != nil {
		return model.Patient{}, err
	}
	return patient, nil
}

// CreatePatient writes a new patient record keyed by the assigned id
func (o *JsonDB) CreatePatient(patient model.Patient) (model.Patient, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	nextID, err := o.nextPatientID()
	if err != nil {
		return model.Patient{}, err
	}
	patient.ID = nextID

	if err := o.conn.Write("patients", strconv.FormatInt(patient.ID, 10), patient); err != nil {
		return model.Patient{}, err
	}
	return patient, nil
}

// UpdatePatient overwrites all fields of an existing patient record
func (o *JsonDB) UpdatePatient(patient model.Patient) error {
	if _, err := o.GetPatientByID(patient.ID); err != nil {
		return err
	}
	return o.conn.Write("patients", strconv.FormatInt(patient.ID, 10), patient)
}

// DeletePatient removes a patient record permanently
func (o *JsonDB) DeletePatient(id int64) error {
	if _, err := o.GetPatientByID(id); err != nil {
		return err
	}
	return o.conn.Delete("patients", strconv.FormatInt(id, 10))
}

func (o *JsonDB) nextUserID() (int64, error) {
	records, err := o.conn.ReadAll("users")
	if err != nil {
		return 0, err
	}

	var max int64
	for _, f := range records {
		user := model.User{}
		if err := json.Unmarshal([]byte(f), &user); err != nil {
			return 0, err
		}
		if user.ID > max {
			max = user.ID
		}
	}
	return max + 1, nil
}

func (o *JsonDB) nextPatientID() (int64, error) {
	records, err := o.conn.ReadAll("patients")
	if err != nil {
		return 0, err
	}

	var max int64
	for _, f := range records {
		patient := model.Patient{}
		if err := json.Unmarshal([]byte(f), &patient); err != nil {
			return 0, err
		}
		if patient.ID > max {
			max = patient.ID
		}
	}
	return max + 1, nil
}
