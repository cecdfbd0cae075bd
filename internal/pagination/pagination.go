// Package pagination implements key-anchored windowing over already
// materialized, pre-sorted lists. Anchoring on a stable item key instead of
// a numeric offset avoids skipped or duplicated rows when the underlying
// set changes between page fetches.
package pagination

import (
	"errors"
	"regexp"
	"strconv"
)

// DefaultSpan is the page size used when the caller supplies none.
const DefaultSpan = 12

// ErrInvalidSpan rejects span text that is not a non-negative integer.
var ErrInvalidSpan = errors.New("span must be a non-negative integer")

var (
	spanPattern  = regexp.MustCompile(`^\d+$`)
	rangePattern = regexp.MustCompile(`^(?P<size>\d+)(?:,(?P<index>\d+))?$`)
)

// ParseSpan validates caller-supplied span text. Empty text falls back to
// DefaultSpan; anything that is not plain digits is rejected before the
// paginator is ever invoked.
func ParseSpan(raw string) (int, error) {
	if raw == "" {
		return DefaultSpan, nil
	}
	if !spanPattern.MatchString(raw) {
		return 0, ErrInvalidSpan
	}
	span, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidSpan
	}
	return span, nil
}

// Paginate returns a window of at most span elements from items, anchored
// on the element whose key equals after or before. The input is never
// mutated, only sliced, and its order is preserved; callers sort before
// calling.
//
//   - after and before are mutually exclusive: supplying both is a caller
//     error answered with an empty window, not an error value.
//   - after=K yields up to span elements strictly following the first
//     element keyed K. An absent K yields an empty window, which is
//     indistinguishable from K being the last element.
//   - before=K yields the span elements immediately preceding K. An absent
//     K also yields an empty window, for symmetry with after.
//   - with no anchor, the window is the first span elements when preferHead
//     is set, otherwise the last span.
func Paginate[T any](items []T, span int, after, before string, preferHead bool, keyOf func(T) string) []T {
	if span <= 0 {
		return []T{}
	}
	switch {
	case after != "" && before != "":
		return []T{}
	case after != "":
		return pageAfter(items, span, after, keyOf)
	case before != "":
		return pageBefore(items, span, before, keyOf)
	case preferHead:
		if len(items) > span {
			return items[:span]
		}
		return items
	default:
		if len(items) > span {
			return items[len(items)-span:]
		}
		return items
	}
}

func pageAfter[T any](items []T, span int, key string, keyOf func(T) string) []T {
	for i, item := range items {
		if keyOf(item) == key {
			end := i + 1 + span
			if end > len(items) {
				end = len(items)
			}
			return items[i+1 : end]
		}
	}
	return []T{}
}

func pageBefore[T any](items []T, span int, key string, keyOf func(T) string) []T {
	for i, item := range items {
		if keyOf(item) == key {
			start := i - span
			if start < 0 {
				start = 0
			}
			return items[start:i]
		}
	}
	return []T{}
}

// SliceRange windows items by a "size[,index]" range expression: size
// elements starting at offset size*index. A nil-equivalent (empty) range
// returns the input unchanged; malformed text is rejected.
func SliceRange[T any](rangeText string, items []T) ([]T, error) {
	if rangeText == "" {
		return items, nil
	}
	match := rangePattern.FindStringSubmatch(rangeText)
	if match == nil {
		return nil, ErrInvalidSpan
	}
	size, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, ErrInvalidSpan
	}
	index := 0
	if match[2] != "" {
		if index, err = strconv.Atoi(match[2]); err != nil {
			return nil, ErrInvalidSpan
		}
	}
	start := size * index
	if start >= len(items) {
		return []T{}, nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], nil
}
