// Package sqlitedb provides a SQLite storage backend for Clinic UI
package sqlitedb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/medirec/clinic-ui/model"
	"github.com/medirec/clinic-ui/store"
)

// SqliteDB - Representation of SQLite database backend
type SqliteDB struct {
	conn   *sql.DB
	dbPath string
}

// New returns pointer to SQLite database
func New(dbPath string) (*SqliteDB, error) {
	if err := createDBFileIfNotExists(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	conn.SetConnMaxLifetime(time.Minute * 3)
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	// Test the connection
	if err := conn.Ping(); err != nil {
		return nil, err
	}

	ans := SqliteDB{
		conn:   conn,
		dbPath: dbPath,
	}
	return &ans, nil
}

func createDBFileIfNotExists(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("cannot create database directory: %w", err)
		}
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		f, err := os.Create(dbPath)
		if err != nil {
			return fmt.Errorf("cannot create database file: %w", err)
		}
		f.Close()
	}
	return nil
}

// Init initializes the database schema idempotently
func (o *SqliteDB) Init() error {
	return migrate(o.conn)
}

// Close closes the underlying connection pool
func (o *SqliteDB) Close() error {
	return o.conn.Close()
}

// CreateUser func inserts a new user row and returns it with the assigned id
func (o *SqliteDB) CreateUser(user model.User) (model.User, error) {
	if user.Role == "" {
		user.Role = model.DefaultRole
	}

	query, args, err := sq.Insert("users").
		Columns("username", "password_hash", "role").
		Values(user.Username, user.PasswordHash, user.Role).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	result, err := o.conn.Exec(query, args...)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return model.User{}, store.ErrUsernameTaken
		}
		return model.User{}, err
	}

	user.ID, err = result.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return user, nil
}

// GetUserByUsername func queries a user by exact username match
func (o *SqliteDB) GetUserByUsername(username string) (model.User, error) {
	query, args, err := sq.Select("id", "username", "password_hash", "role").
		From("users").
		Where(sq.Eq{"username": username}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	user := model.User{}
	row := o.conn.QueryRow(query, args...)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// GetUserByID func queries a user by id
func (o *SqliteDB) GetUserByID(id int64) (model.User, error) {
	query, args, err := sq.Select("id", "username", "password_hash", "role").
		From("users").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.User{}, err
	}

	user := model.User{}
	row := o.conn.QueryRow(query, args...)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, store.ErrUserNotFound
		}
		return model.User{}, err
	}
	return user, nil
}

// GetPatients func queries all patients, ordered by id ascending
func (o *SqliteDB) GetPatients() ([]model.Patient, error) {
	query, args, err := sq.Select("id", "name", "age", "gender", "diagnosis").
		From("patients").
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := o.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []model.Patient{}
	for rows.Next() {
		patient := model.Patient{}
		if err := rows.Scan(&patient.ID, &patient.Name, &patient.Age, &patient.Gender, &patient.Diagnosis); err != nil {
			return nil, err
		}
		patients = append(patients, patient)
	}
	return patients, rows.Err()
}

// GetPatientByID func queries a single patient by id
func (o *SqliteDB) GetPatientByID(id int64) (model.Patient, error) {
	query, args, err := sq.Select("id", "name", "age", "gender", "diagnosis").
		From("patients").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Patient{}, err
	}

	patient := model.Patient{}
	row := o.conn.QueryRow(query, args...)
	if err := row.Scan(&patient.ID, &patient.Name, &patient.Age, &patient.Gender, &patient.Diagnosis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Patient{}, store.ErrPatientNotFound
		}
		return model.Patient{}, err
	}
	return patient, nil
}

// CreatePatient func inserts a new patient row and returns it with the assigned id
func (o *SqliteDB) CreatePatient(patient model.Patient) (model.Patient, error) {
	query, args, err := sq.Insert("patients").
		Columns("name", "age", "gender", "diagnosis").
		Values(patient.Name, patient.Age, patient.Gender, patient.Diagnosis).
		ToSql()
	if err != nil {
		return model.Patient{}, err
	}

	result, err := o.conn.Exec(query, args...)
	if err != nil {
		return model.Patient{}, err
	}

	patient.ID, err = result.LastInsertId()
	if err != nil {
		return model.Patient{}, err
	}
	return patient, nil
}

// UpdatePatient func overwrites all fields of an existing patient row
func (o *SqliteDB) UpdatePatient(patient model.Patient) error {
	query, args, err := sq.Update("patients").
		Set("name", patient.Name).
		Set("age", patient.Age).
		Set("gender", patient.Gender).
		Set("diagnosis", patient.Diagnosis).
		Where(sq.Eq{"id": patient.ID}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := o.conn.Exec(query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrPatientNotFound
	}
	return nil
}

// DeletePatient func removes a patient row permanently
func (o *SqliteDB) DeletePatient(id int64) error {
	query, args, err := sq.Delete("patients").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := o.conn.Exec(query, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrPatientNotFound
	}
	return nil
}
