package api

import (
	"net/url"
	"strconv"
	"strings"
)

// Пагинация по умолчанию.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// pagination читает limit и offset из query-параметров.
func pagination(q url.Values) (limit, offset int) {
	limit = defaultLimit
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = min(v, maxLimit)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// queryList читает множественный фильтр: повторяющийся параметр
// и/или значения через запятую ("status=idle,running").
func queryList(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}
