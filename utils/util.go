package utils

import (
	"github.com/momentum-xyz/media-placer/internal/logger"
)

var log = logger.L()

func FromAny[V any](val any, defaultValue V) V {
	v, ok := val.(V)
	if ok {
		return v
	}
	return defaultValue
}

// FirstNonEmpty returns the first non-empty value of keys in m, and the key it came from.
func FirstNonEmpty(m map[string]string, keys ...string) (string, string) {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return k, v
		}
	}
	return "", ""
}
