package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/medirec/clinic-ui/model"
	"github.com/medirec/clinic-ui/store"
	"github.com/medirec/clinic-ui/util"
)

type credentialsRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type patientRequest struct {
	Name string `form:"name" validate:"required"`
	// Age arrives as a form string and is converted explicitly so that
	// non-numeric input is rejected before it reaches the store.
	Age       string `form:"age" validate:"required"`
	Gender    string `form:"gender"`
	Diagnosis string `form:"diagnosis"`
}

func createError(c echo.Context, err error, msg string) error {
	log.Error(msg, ": ", err)
	return echo.NewHTTPError(http.StatusInternalServerError, msg)
}

func notFound(c echo.Context, msg string) error {
	return c.Render(http.StatusNotFound, "404.html", map[string]interface{}{
		"baseData": baseData(c, ""),
		"message":  msg,
	})
}

// parsePatient validates the submitted form and converts it into a Patient.
// The second return value carries a user-facing message when validation
// fails.
func parsePatient(c echo.Context) (model.Patient, string, error) {
	payload := new(patientRequest)
	if err := c.Bind(payload); err != nil {
		return model.Patient{}, "Invalid form data", err
	}
	if err := c.Validate(payload); err != nil {
		return model.Patient{}, "Name and age are required", err
	}

	age, err := strconv.Atoi(payload.Age)
	if err != nil || age < 0 {
		return model.Patient{}, "Age must be a non-negative number", fmt.Errorf("invalid age %q", payload.Age)
	}

	return model.Patient{
		Name:      payload.Name,
		Age:       age,
		Gender:    payload.Gender,
		Diagnosis: payload.Diagnosis,
	}, "", nil
}

// Index handler renders the landing page
func Index() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "index.html", map[string]interface{}{
			"baseData": baseData(c, ""),
		})
	}
}

// RegisterPage handler renders the registration form
func RegisterPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "register.html", map[string]interface{}{
			"baseData": baseData(c, ""),
		})
	}
}

// Register handler creates a new staff user
func Register(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := new(credentialsRequest)
		if err := c.Bind(payload); err != nil {
			return createError(c, err, "Cannot parse registration form")
		}
		if err := c.Validate(payload); err != nil {
			setFlash(c, "danger", "Username and password are required")
			return c.Redirect(http.StatusFound, "/register")
		}

		hash, err := util.HashPassword(payload.Password)
		if err != nil {
			return createError(c, err, "Cannot hash password")
		}

		user := model.User{
			Username:     payload.Username,
			PasswordHash: hash,
			Role:         model.DefaultRole,
		}
		if _, err := db.CreateUser(user); err != nil {
			if errors.Is(err, store.ErrUsernameTaken) {
				setFlash(c, "danger", "Username already taken")
				return c.Redirect(http.StatusFound, "/register")
			}
			return createError(c, err, "Cannot create user")
		}

		log.Infof("Registered user: %s", user.Username)
		setFlash(c, "success", "Registration successful! Please login.")
		return c.Redirect(http.StatusFound, "/login")
	}
}

// LoginPage handler renders the login form
func LoginPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "login.html", map[string]interface{}{
			"baseData": baseData(c, ""),
		})
	}
}

// Login handler verifies credentials and establishes a session. Unknown
// username and wrong password produce the same generic outcome so the two
// causes cannot be told apart.
func Login(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		payload := new(credentialsRequest)
		if err := c.Bind(payload); err != nil {
			return createError(c, err, "Cannot parse login form")
		}

		invalid := func() error {
			setFlash(c, "danger", "Invalid username or password")
			return c.Redirect(http.StatusFound, "/login")
		}

		if err := c.Validate(payload); err != nil {
			return invalid()
		}

		user, err := db.GetUserByUsername(payload.Username)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				return invalid()
			}
			return createError(c, err, "Cannot query user")
		}

		match, err := util.VerifyHash(user.PasswordHash, payload.Password)
		if err != nil {
			return createError(c, err, "Cannot verify password")
		}
		if !match {
			return invalid()
		}

		if err := setSessionUser(c, user); err != nil {
			return createError(c, err, "Cannot save session")
		}

		log.Infof("User logged in: %s", user.Username)
		setFlash(c, "success", "Login successful!")
		return c.Redirect(http.StatusFound, "/dashboard")
	}
}

// Logout handler clears the session. Calling it without an active session
// is a no-op.
func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		clearSession(c)
		setFlash(c, "info", "Logged out successfully!")
		return c.Redirect(http.StatusFound, "/")
	}
}

// Dashboard handler
func Dashboard() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "dashboard.html", map[string]interface{}{
			"baseData": baseData(c, "dashboard"),
			"username": currentUser(c),
		})
	}
}

// Profile handler renders the logged-in user's profile
func Profile(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := db.GetUserByID(currentUserID(c))
		if err != nil {
			return createError(c, err, "Cannot fetch user profile")
		}

		return c.Render(http.StatusOK, "profile.html", map[string]interface{}{
			"baseData": baseData(c, "profile"),
			"user":     user,
		})
	}
}

// Patients handler lists every patient record
func Patients(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		patients, err := db.GetPatients()
		if err != nil {
			return createError(c, err, "Cannot fetch patients from database")
		}

		return c.Render(http.StatusOK, "patients.html", map[string]interface{}{
			"baseData": baseData(c, "patients"),
			"patients": patients,
		})
	}
}

// NewPatientPage handler renders an empty patient form
func NewPatientPage() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "patient_form.html", map[string]interface{}{
			"baseData":   baseData(c, "patients"),
			"action":     "Add",
			"formAction": "/patient/add",
			"patient":    model.Patient{},
		})
	}
}

// NewPatient handler creates a patient record
func NewPatient(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		patient, msg, err := parsePatient(c)
		if err != nil {
			log.Warnf("Invalid patient input: %v", err)
			setFlash(c, "danger", msg)
			return c.Redirect(http.StatusFound, "/patient/add")
		}

		created, err := db.CreatePatient(patient)
		if err != nil {
			return createError(c, err, "Cannot create patient")
		}

		log.Infof("Created patient: %d", created.ID)
		setFlash(c, "success", "Patient added successfully!")
		return c.Redirect(http.StatusFound, "/patients")
	}
}

// EditPatientPage handler renders the form pre-filled with an existing
// patient record
func EditPatientPage(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return notFound(c, "Patient not found")
		}

		patient, err := db.GetPatientByID(id)
		if err != nil {
			if errors.Is(err, store.ErrPatientNotFound) {
				return notFound(c, "Patient not found")
			}
			return createError(c, err, "Cannot fetch patient")
		}

		return c.Render(http.StatusOK, "patient_form.html", map[string]interface{}{
			"baseData":   baseData(c, "patients"),
			"action":     "Edit",
			"formAction": fmt.Sprintf("/patient/edit/%d", patient.ID),
			"patient":    patient,
		})
	}
}

// EditPatient handler overwrites all fields of an existing patient record
func EditPatient(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return notFound(c, "Patient not found")
		}

		if _, err := db.GetPatientByID(id); err != nil {
			if errors.Is(err, store.ErrPatientNotFound) {
				return notFound(c, "Patient not found")
			}
			return createError(c, err, "Cannot fetch patient")
		}

		patient, msg, err := parsePatient(c)
		if err != nil {
			log.Warnf("Invalid patient input: %v", err)
			setFlash(c, "danger", msg)
			return c.Redirect(http.StatusFound, fmt.Sprintf("/patient/edit/%d", id))
		}
		patient.ID = id

		if err := db.UpdatePatient(patient); err != nil {
			if errors.Is(err, store.ErrPatientNotFound) {
				return notFound(c, "Patient not found")
			}
			return createError(c, err, "Cannot update patient")
		}

		log.Infof("Updated patient: %d", id)
		setFlash(c, "success", "Patient updated successfully!")
		return c.Redirect(http.StatusFound, "/patients")
	}
}

// DeletePatient handler removes a patient record permanently
func DeletePatient(db store.IStore) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			return notFound(c, "Patient not found")
		}

		if err := db.DeletePatient(id); err != nil {
			if errors.Is(err, store.ErrPatientNotFound) {
				return notFound(c, "Patient not found")
			}
			return createError(c, err, "Cannot delete patient")
		}

		log.Infof("Removed patient: %d", id)
		setFlash(c, "info", "Patient deleted successfully!")
		return c.Redirect(http.StatusFound, "/patients")
	}
}
