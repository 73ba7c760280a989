package utils

import (
	"net/url"
	"strconv"
	"strings"

	"itad-system/pkg/types"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ParseFilterFromQuery reads page/limit plus the given plain query keys as equality filters.
// Bracketed keys (filter[x], sort[x]) are also accepted.
func ParseFilterFromQuery(values url.Values, filterKeys ...string) types.Filter {
	filterReq := types.Filter{
		Sort:           make(map[string]string),
		Filter:         make(map[string]interface{}),
		Limit:          DefaultLimit,
		Page:           1,
		WithPagination: true,
	}

	if limitStr := values.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			filterReq.Limit = min(l, MaxLimit)
		}
	}
	if pageStr := values.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			filterReq.Page = p
		}
	}
	filterReq.Offset = (filterReq.Page - 1) * filterReq.Limit

	if values.Get("withPagination") == "false" {
		filterReq.WithPagination = false
	}

	for _, key := range filterKeys {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			filterReq.Filter[key] = v
		}
	}

	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		if strings.HasPrefix(key, "sort[") && strings.HasSuffix(key, "]") {
			direction := strings.ToLower(vals[0])
			if direction == "asc" || direction == "desc" {
				filterReq.Sort[key[5:len(key)-1]] = direction
			}
			continue
		}
		if strings.HasPrefix(key, "filter[") && strings.HasSuffix(key, "]") {
			filterReq.Filter[key[7:len(key)-1]] = vals[0]
		}
	}

	return filterReq
}
