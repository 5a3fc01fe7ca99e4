package memory

import (
	"fmt"
	"strconv"
	"strings"

	domain "github.com/sellerdesk/api/internal/domain"
)

// paginate slices items according to the pager. The page token is the decimal
// offset of the next item; an empty token starts at the beginning.
func paginate[T any](items []T, pager domain.Pagination) (domain.CursorPage[T], error) {
	offset := 0
	if token := strings.TrimSpace(pager.PageToken); token != "" {
		parsed, err := strconv.Atoi(token)
		if err != nil || parsed < 0 {
			return domain.CursorPage[T]{}, fmt.Errorf("memory: invalid page token %q", token)
		}
		offset = parsed
	}
	if offset >= len(items) {
		return domain.CursorPage[T]{Items: []T{}}, nil
	}

	end := len(items)
	nextToken := ""
	if pager.PageSize > 0 && offset+pager.PageSize < len(items) {
		end = offset + pager.PageSize
		nextToken = strconv.Itoa(end)
	}

	page := make([]T, end-offset)
	copy(page, items[offset:end])
	return domain.CursorPage[T]{Items: page, NextPageToken: nextToken}, nil
}
