package search

// pageWindow returns the inclusive page range to scan: centered on the
// selection page, maxPages wide, clamped to [1, totalPages]. When the
// centered window runs past a document boundary it is shifted, not
// shrunk, so it still covers maxPages pages where possible.
func pageWindow(centerPage, maxPages, totalPages int) (start, end int) {
	if totalPages < 1 {
		return 0, -1
	}
	if maxPages < 1 || maxPages >= totalPages {
		return 1, totalPages
	}

	half := maxPages / 2
	start = centerPage - half
	end = start + maxPages - 1

	if start < 1 {
		start = 1
		end = maxPages
	}
	if end > totalPages {
		end = totalPages
		start = end - maxPages + 1
		if start < 1 {
			start = 1
		}
	}
	return start, end
}
