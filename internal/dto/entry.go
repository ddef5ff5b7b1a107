package dto

import (
	"strconv"
	"strings"
)

// NoEdit is the edit index sentinel meaning "append a new entry".
const NoEdit = -1

// EntryInput is the normalised add-or-update command handled by the session service.
type EntryInput struct {
	Teacher   string `validate:"required"`
	Subject   string `validate:"required"`
	EditIndex int
}

// EntryForm binds the HTML form on POST /.
type EntryForm struct {
	Teacher   string `form:"teacher"`
	Subject   string `form:"subject"`
	EditIndex string `form:"edit_index"`
}

// Input converts the form into an EntryInput. A missing or malformed edit_index means NoEdit.
func (f EntryForm) Input() EntryInput {
	return EntryInput{
		Teacher:   strings.TrimSpace(f.Teacher),
		Subject:   strings.TrimSpace(f.Subject),
		EditIndex: ParseIndex(f.EditIndex),
	}
}

// EntryRequest is the JSON body accepted by POST /api/v1/entries.
type EntryRequest struct {
	Teacher   string `json:"teacher"`
	Subject   string `json:"subject"`
	EditIndex *int   `json:"editIndex,omitempty"`
}

// Input converts the request into an EntryInput.
func (r EntryRequest) Input() EntryInput {
	idx := NoEdit
	if r.EditIndex != nil {
		idx = *r.EditIndex
	}
	return EntryInput{
		Teacher:   strings.TrimSpace(r.Teacher),
		Subject:   strings.TrimSpace(r.Subject),
		EditIndex: idx,
	}
}

// ParseIndex parses a list index from a path or form value, returning NoEdit when it is not an integer.
func ParseIndex(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return NoEdit
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return NoEdit
	}
	return idx
}

// EntryView is one row of the entry table on the index page.
type EntryView struct {
	Index   int
	Teacher string
	Subject string
}

// IndexPage is the template payload for the index page.
type IndexPage struct {
	Entries       []EntryView
	Days          []string
	PeriodsPerDay int
	Form          EntryForm
	Editing       bool
}
