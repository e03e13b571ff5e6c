package server

import (
	"strconv"
	"strings"
)

const (
	defaultListPageSize = 50
	maxListPageSize     = 250
)

func parseOptionalInt32(value string) (*int32, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 32)
	if err != nil {
		return nil, err
	}
	v := int32(parsed)
	return &v, nil
}

func parsePageSize(value string) (int32, error) {
	size, err := parseOptionalInt32(value)
	if err != nil {
		return 0, err
	}
	if size == nil {
		return defaultListPageSize, nil
	}
	if *size < 1 || *size > maxListPageSize {
		return 0, strconv.ErrRange
	}
	return *size, nil
}
