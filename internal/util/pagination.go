package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Calculate normalises page and size and returns the row offset and limit.
func Calculate(page, size int) (offset, limit int) {
	page, size = Normalize(page, size)
	return (page - 1) * size, size
}

func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size
}
