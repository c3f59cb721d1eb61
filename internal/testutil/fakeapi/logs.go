package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func intParam(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func (s *Server) listLogs(match func(l Object, id string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := intParam(r, "page", 1)
		limit := intParam(r, "limit", 20)
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		var selected []Object
		for _, l := range s.logs {
			if match == nil || match(l, id) {
				selected = append(selected, l)
			}
		}
		omit := s.OmitPagination
		s.mu.Unlock()

		total := len(selected)
		start := min((page-1)*limit, total)
		end := min(start+limit, total)
		body := Object{
			"count": total,
			"data":  append([]Object{}, selected[start:end]...),
		}
		if !omit {
			body["pagination"] = Object{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": (total + limit - 1) / limit,
			}
		}
		ok(w, body)
	}
}
