package pagination

// CalculateOffset calculates the database OFFSET for a 1-based page number.
//
// Formula: offset = (page - 1) * limit
func CalculateOffset(page, limit int) int {
	return (page - 1) * limit
}

// CalculateTotalPages calculates the number of pages needed for total items.
// An empty listing still has one (empty) page.
func CalculateTotalPages(total int64, limit int) int {
	if total == 0 {
		return 1
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
