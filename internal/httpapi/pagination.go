package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// pageEnvelope is the list response shape: total count, absolute
// next/previous links (null at the edges) and the page of results.
type pageEnvelope struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func parsePageParams(r *http.Request) (page, pageSize int) {
	page = 1
	pageSize = defaultPageSize

	if v := r.URL.Query().Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			pageSize = parsed
			if pageSize > maxPageSize {
				pageSize = maxPageSize
			}
		}
	}
	return page, pageSize
}

func buildPage(r *http.Request, count int64, page, pageSize int, results any) pageEnvelope {
	envelope := pageEnvelope{Count: count, Results: results}

	if int64(page*pageSize) < count {
		envelope.Next = pageURL(r, page+1)
	}
	if page > 1 {
		envelope.Previous = pageURL(r, page-1)
	}
	return envelope
}

func pageURL(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s%s", scheme, r.Host, u.String())
	return &link
}
