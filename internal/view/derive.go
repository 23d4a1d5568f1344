// Package view holds the client-side state of the employee directory: the
// fetched list, its search and pagination, and the load/mutate lifecycle.
package view

import "strings"

// Record is one employee as the client sees it.
type Record struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	ImageURL string `json:"imageUrl"`
}

const DefaultPageSize = 5

// PageSizes are the page sizes a user may pick.
var PageSizes = []int{5, 10, 20}

func validPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Filter keeps records whose name or email contains term, ignoring case.
func Filter(records []Record, term string) []Record {
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Email), needle) {
			out = append(out, r)
		}
	}
	return out
}

// Paginate returns page pageNumber (1-based) of pageSize records.
func Paginate(records []Record, pageSize, pageNumber int) []Record {
	if pageSize <= 0 || pageNumber <= 0 {
		return []Record{}
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(records) {
		return []Record{}
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

func PageCount(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}
