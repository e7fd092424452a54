package util

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// ClampPaging normalizes limit/offset query values: non-positive limits fall
// back to the default page size, oversized limits cap at the maximum, and
// negative offsets become zero.
func ClampPaging(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
