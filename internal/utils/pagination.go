package utils

// NormalizePage clamps a requested page number to 1 or greater.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizeLimit applies the configured default and maximum page size.
func NormalizeLimit(limit int) int {
	if limit < 1 {
		return PageSizeDefault()
	}
	if max := PageSizeMax(); limit > max {
		return max
	}
	return limit
}
