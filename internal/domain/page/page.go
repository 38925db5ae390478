package page

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100

	// MaxPage keeps (Page-1)*Limit inside int.
	MaxPage = math.MaxInt / MaxLimit
)

// Request is a 1-based page of a given size.
type Request struct {
	Page  int
	Limit int
}

func (r Request) Offset() int {
	return (r.Page - 1) * r.Limit
}

// Clamp forces Page into [1, MaxPage] and Limit into [1, MaxLimit].
func (r Request) Clamp() Request {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.Limit < 1 {
		r.Limit = 1
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

// Parse reads raw query values. Empty values take the defaults; values that
// are not integers are reported so the caller can reject the request.
func Parse(rawPage, rawLimit string) (Request, []string) {
	req := Request{Page: 1, Limit: DefaultLimit}
	var problems []string

	if v := strings.TrimSpace(rawPage); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%q must be an integer", "page"))
		} else {
			req.Page = n
		}
	}

	if v := strings.TrimSpace(rawLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			problems = append(problems, fmt.Sprintf("%q must be an integer", "limit"))
		} else {
			req.Limit = n
		}
	}

	return req.Clamp(), problems
}

// Slice returns the window of items selected by r.
func Slice[T any](items []T, r Request) []T {
	start := r.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}

	end := start + r.Limit
	if end > len(items) {
		end = len(items)
	}

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
