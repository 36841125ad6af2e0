package router

import (
	"errors"
	"io"
	"io/fs"
	"reflect"
	"text/template"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/medirec/clinic-ui/util"
)

// pages rendered without the base layout
var standalonePages = map[string]bool{
	"index.html":    true,
	"login.html":    true,
	"register.html": true,
	"404.html":      true,
}

// pages rendered inside the base layout
var layoutPages = []string{
	"dashboard.html",
	"profile.html",
	"patients.html",
	"patient_form.html",
}

// TemplateRegistry is a custom html/template renderer for Echo framework
type TemplateRegistry struct {
	templates map[string]*template.Template
	extraData map[string]string
}

// Render e.Renderer interface
func (t *TemplateRegistry) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	tmpl, ok := t.templates[name]
	if !ok {
		err := errors.New("Template not found -> " + name)
		return err
	}

	// inject more app data information. E.g. appVersion
	if reflect.TypeOf(data).Kind() == reflect.Map {
		for k, v := range t.extraData {
			data.(map[string]interface{})[k] = v
		}
	}

	// landing, auth and error pages do not need the base layout
	if standalonePages[name] {
		return tmpl.Execute(w, data)
	}

	return tmpl.ExecuteTemplate(w, "base.html", data)
}

// New function
func New(tmplDir fs.FS, extraData map[string]string, secret []byte) *echo.Echo {
	e := echo.New()
	e.Use(session.Middleware(sessions.NewCookieStore(secret)))

	// read base layout template file to string
	tmplBaseString, err := util.StringFromEmbedFile(tmplDir, "base.html")
	if err != nil {
		log.Fatal(err)
	}

	// create template list
	templates := make(map[string]*template.Template)
	for name := range standalonePages {
		tmplString, err := util.StringFromEmbedFile(tmplDir, name)
		if err != nil {
			log.Fatal(err)
		}
		templates[name] = template.Must(template.New(name).Parse(tmplString))
	}
	for _, name := range layoutPages {
		tmplString, err := util.StringFromEmbedFile(tmplDir, name)
		if err != nil {
			log.Fatal(err)
		}
		templates[name] = template.Must(template.New(name).Parse(tmplBaseString + tmplString))
	}

	lvl, err := util.ParseLogLevel(util.LookupEnvOrString(util.LogLevelEnvVar, "INFO"))
	if err != nil {
		log.Fatal(err)
	}
	logConfig := middleware.DefaultLoggerConfig
	logConfig.Skipper = func(c echo.Context) bool {
		resp := c.Response()
		if resp.Status >= 500 && lvl > log.ERROR { // do not log if response is 5XX but log level is higher than ERROR
			return true
		} else if resp.Status >= 400 && lvl > log.WARN { // do not log if response is 4XX but log level is higher than WARN
			return true
		} else if lvl > log.DEBUG { // do not log if log level is higher than DEBUG
			return true
		}
		return false
	}

	e.Logger.SetLevel(lvl)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.LoggerWithConfig(logConfig))
	e.HideBanner = true
	e.HidePort = lvl > log.INFO // hide the port output if the log level is higher than INFO
	e.Validator = NewValidator()
	e.Renderer = &TemplateRegistry{
		templates: templates,
		extraData: extraData,
	}

	return e
}
