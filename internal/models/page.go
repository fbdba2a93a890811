package models

import "shareit/internal/apperr"

// Page is an offset window over an ordered result set.
type Page struct {
	Offset int
	Limit  int
}

// NewPage validates raw from/size values. Missing values fall back to the
// first page of DefaultPageSize.
func NewPage(from, size *int) (Page, error) {
	p := Page{Offset: 0, Limit: DefaultPageSize}
	if from != nil {
		if *from < 0 {
			return Page{}, apperr.BadRequestf("parameter from must not be negative, got %d", *from)
		}
		p.Offset = *from
	}
	if size != nil {
		if *size <= 0 {
			return Page{}, apperr.BadRequestf("parameter size must be positive, got %d", *size)
		}
		p.Limit = *size
	}
	return p, nil
}

// MustPage is NewPage for constant arguments.
func MustPage(from, size int) Page {
	p, err := NewPage(&from, &size)
	if err != nil {
		panic(err)
	}
	return p
}

// Unbounded is a page large enough for internal bulk reads.
func Unbounded() Page {
	return Page{Offset: 0, Limit: MaxExportRows}
}
