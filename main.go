package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/medirec/clinic-ui/handler"
	"github.com/medirec/clinic-ui/router"
	"github.com/medirec/clinic-ui/store"
	"github.com/medirec/clinic-ui/store/jsondb"
	"github.com/medirec/clinic-ui/store/sqlitedb"
	"github.com/medirec/clinic-ui/templates"
	"github.com/medirec/clinic-ui/util"
)

var (
	// command-line banner information
	appVersion = "development"
	gitCommit  = "N/A"
	gitRef     = "N/A"
	buildTime  = fmt.Sprintf(time.Now().UTC().Format("01-02-2006 15:04:05"))
	// configuration variables
	flagBindAddress   string = "0.0.0.0:5000"
	flagDBType        string = "sqlite"
	flagDBPath        string
	flagSessionSecret string = "supersecretkey"
)

func init() {
	// command-line flags and env variables
	flag.StringVar(&flagBindAddress, "bind-address", util.LookupEnvOrString(util.BindAddressEnvVar, flagBindAddress), "Address:Port to which the app will be bound.")
	flag.StringVar(&flagDBType, "db-type", util.LookupEnvOrString(util.DBTypeEnvVar, flagDBType), "Storage backend: sqlite or json.")
	flag.StringVar(&flagDBPath, "db-path", util.LookupEnvOrString(util.DBPathEnvVar, flagDBPath), "Path to the database file (sqlite) or directory (json).")
	flag.StringVar(&flagSessionSecret, "session-secret", util.LookupEnvOrString(util.SessionSecretEnvVar, flagSessionSecret), "The key used to sign session cookies.")
	flag.Parse()

	// print app information
	fmt.Println("Clinic Records UI")
	fmt.Println("App Version\t:", appVersion)
	fmt.Println("Git Commit\t:", gitCommit)
	fmt.Println("Git Ref\t\t:", gitRef)
	fmt.Println("Build Time\t:", buildTime)
	fmt.Println("Bind address\t:", flagBindAddress)
	fmt.Println("DB type\t\t:", flagDBType)
}

func newStore() (store.IStore, error) {
	switch flagDBType {
	case "sqlite":
		if flagDBPath == "" {
			flagDBPath = "./db/clinic.db"
		}
		return sqlitedb.New(flagDBPath)
	case "json":
		if flagDBPath == "" {
			flagDBPath = "./db"
		}
		return jsondb.New(flagDBPath)
	default:
		return nil, fmt.Errorf("unknown db type: %s", flagDBType)
	}
}

func main() {
	db, err := newStore()
	if err != nil {
		log.Fatal("Cannot open database: ", err)
	}
	defer db.Close()

	if err := db.Init(); err != nil {
		log.Fatal("Cannot init database: ", err)
	}

	// set app extra data
	extraData := make(map[string]string)
	extraData["appVersion"] = appVersion

	// register routes
	app := router.New(templates.FS, extraData, []byte(flagSessionSecret))

	app.GET("/", handler.Index())
	app.GET("/register", handler.RegisterPage())
	app.POST("/register", handler.Register(db))
	app.GET("/login", handler.LoginPage())
	app.POST("/login", handler.Login(db))
	app.GET("/logout", handler.Logout())

	app.GET("/dashboard", handler.Dashboard(), handler.ValidSession)
	app.GET("/profile", handler.Profile(db), handler.ValidSession)
	app.GET("/patients", handler.Patients(db), handler.ValidSession)
	app.GET("/patient/add", handler.NewPatientPage(), handler.ValidSession)
	app.POST("/patient/add", handler.NewPatient(db), handler.ValidSession)
	app.GET("/patient/edit/:id", handler.EditPatientPage(db), handler.ValidSession)
	app.POST("/patient/edit/:id", handler.EditPatient(db), handler.ValidSession)
	app.GET("/patient/delete/:id", handler.DeletePatient(db), handler.ValidSession)

	app.Logger.Fatal(app.Start(flagBindAddress))
}
