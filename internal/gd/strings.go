package gd

import (
	"strconv"
	"strings"
)

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseIDList(s string) []int {
	var ids []int
	for _, part := range splitNonEmpty(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err == nil {
			ids = append(ids, n)
		}
	}
	return ids
}
