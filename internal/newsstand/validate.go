package newsstand

import (
	"fmt"
	"net/url"
	"strings"
)

const maxIDLength = 512

type (
	// FieldError describes one invalid field of a record.
	FieldError struct {
		Field string
		Error string
	}

	// ValidationError is returned when a record is rejected before reaching storage.
	// It matches [ErrInvalidArgument] with errors.Is.
	ValidationError struct {
		Record string
		Fields []FieldError
	}
)

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s %s", f.Field, f.Error))
	}

	return fmt.Sprintf("invalid %s: %s", e.Record, strings.Join(msgs, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

func validationErr(record string, fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}

	return &ValidationError{Record: record, Fields: fields}
}

func checkID(field, id string) []FieldError {
	switch {
	case strings.TrimSpace(id) == "":
		return []FieldError{{Field: field, Error: "is required"}}
	case len(id) > maxIDLength:
		return []FieldError{{Field: field, Error: fmt.Sprintf("is longer than %d bytes", maxIDLength)}}
	case strings.ContainsAny(id, "/\x00"):
		return []FieldError{{Field: field, Error: "contains an illegal character"}}
	}

	return nil
}

func checkURL(field, raw string, required bool) []FieldError {
	if raw == "" {
		if required {
			return []FieldError{{Field: field, Error: "is required"}}
		}
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return []FieldError{{Field: field, Error: "must be an absolute url"}}
	}

	return nil
}

// Validate checks a feed descriptor before it's registered.
func (f Feed) Validate() error {
	var errs []FieldError
	errs = append(errs, checkID("feed_id", f.ID)...)
	errs = append(errs, checkURL("link", f.Link, false)...)
	errs = append(errs, checkURL("site_link", f.SiteLink, false)...)
	if f.ErrorCount < 0 {
		errs = append(errs, FieldError{Field: "error_count", Error: "must not be negative"})
	}

	return validationErr("feed", errs)
}

// Validate checks an article before it's ingested. Every article needs an ID,
// a date and a link. Untitled entries are common in feeds and are kept.
func (a Article) Validate() error {
	var errs []FieldError
	errs = append(errs, checkID("article_id", a.ID)...)
	if a.Date.IsZero() {
		errs = append(errs, FieldError{Field: "date", Error: "is required"})
	}
	errs = append(errs, checkURL("link", a.Link, true)...)

	return validationErr("article", errs)
}
