// Package templates holds the embedded HTML pages served by the application.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
