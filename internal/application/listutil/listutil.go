package listutil

import (
	"net/url"
	"strconv"
)

// Page is one page of a listing. Stores are asked for one row more than
// PerPage so the next page is known to exist without counting rows.
type Page struct {
	Number  int  // 1-indexed
	PerPage int  // rows per page
	HasNext bool // set by Fit
}

// DefaultPerPage is the default number of rows per page.
const DefaultPerPage = 50

// PerPageOptions are the allowed rows-per-page values.
var PerPageOptions = []int{25, 50, 100, 200}

// ParsePage extracts pagina and por_pagina from URL query values.
// PRE: none
// POST: returns a valid Page with defaults applied; HasNext is false
func ParsePage(q url.Values) Page {
	number, _ := strconv.Atoi(q.Get("pagina"))
	if number < 1 {
		number = 1
	}
	perPage, _ := strconv.Atoi(q.Get("por_pagina"))
	if !isValidPerPage(perPage) {
		perPage = DefaultPerPage
	}
	return Page{Number: number, PerPage: perPage}
}

// Offset returns the SQL OFFSET for the page.
// PRE: Page is valid
// POST: Returns (Number-1) * PerPage
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Limit returns the SQL LIMIT for the page, one row of look-ahead included.
func (p Page) Limit() int {
	return p.PerPage + 1
}

// Fit cuts the look-ahead row off rows and records whether it was there.
// PRE: rows was fetched with p.Limit() and p.Offset()
// POST: len(result) <= PerPage; HasNext reports a dropped row
func Fit[T any](p Page, rows []T) ([]T, Page) {
	p.HasNext = len(rows) > p.PerPage
	if p.HasNext {
		rows = rows[:p.PerPage]
	}
	return rows, p
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// Prev returns the previous page number.
func (p Page) Prev() int {
	if p.Number <= 1 {
		return 1
	}
	return p.Number - 1
}

// Next returns the following page number.
func (p Page) Next() int {
	return p.Number + 1
}

// ShowPagination returns true if pagination controls should be displayed.
func (p Page) ShowPagination() bool {
	return p.HasPrev() || p.HasNext
}

func isValidPerPage(n int) bool {
	for _, opt := range PerPageOptions {
		if n == opt {
			return true
		}
	}
	return false
}
