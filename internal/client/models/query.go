package models

import (
	"net/url"
	"strconv"
)

// DefaultPageSize is used when a caller asks for page size 0.
const DefaultPageSize = 10

// Page addresses one page of a listing in skip/limit form.
type Page struct {
	Skip  int
	Limit int
}

// PageFor converts a 1-based page number into skip/limit. Out of range
// values are clamped to the first page and the default size.
func PageFor(page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return Page{Skip: (page - 1) * size, Limit: size}
}

// TotalPages returns how many pages of size hold total items.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// TestimonyFilter holds the query parameters accepted by GET /testimonies.
// Zero values are not sent.
type TestimonyFilter struct {
	Search         string
	SubmissionType SubmissionType
	Status         Status
	IsPublished    *bool
	DateFrom       string
	DateTo         string
	Page
}

// Values encodes the filter as URL query parameters.
func (f TestimonyFilter) Values() url.Values {
	v := url.Values{}
	if f.Search != "" {
		v.Set("search", f.Search)
	}
	if f.SubmissionType != "" {
		v.Set("submissionType", string(f.SubmissionType))
	}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.IsPublished != nil {
		v.Set("isPublished", strconv.FormatBool(*f.IsPublished))
	}
	if f.DateFrom != "" {
		v.Set("dateFrom", f.DateFrom)
	}
	if f.DateTo != "" {
		v.Set("dateTo", f.DateTo)
	}
	if f.Skip > 0 {
		v.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		v.Set("limit", strconv.Itoa(f.Limit))
	}
	return v
}

// TestimonyPage is one page of GET /testimonies. Total falls back to the
// number of items when the server sends a bare array.
type TestimonyPage struct {
	Items []Testimony
	Total int
}
