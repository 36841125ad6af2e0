package model

// BaseData struct to pass value to the base template
type BaseData struct {
	Active      string
	CurrentUser string
	Flashes     []FlashMessage
}

// FlashMessage is a one-time notice shown on the next rendered page.
// Category is one of success, info, warning, danger.
type FlashMessage struct {
	Category string
	Message  string
}
