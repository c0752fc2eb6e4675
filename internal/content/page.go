package content

// Window computes the 1-based inclusive item range a result page covers.
// On every page but the last the range is a full page; the last page may be
// partial, so the range is anchored to the end of the result set instead.
func Window(page, itemsOnPage, totalItems, totalPages int) (first, last int) {
	if totalItems == 0 || itemsOnPage == 0 {
		return 0, 0
	}
	if page < totalPages {
		first = (page-1)*itemsOnPage + 1
		last = page * itemsOnPage
	} else {
		first = totalItems - itemsOnPage + 1
		last = totalItems
	}
	return first, last
}

// TotalPages returns the page count for a result set.
func TotalPages(totalItems, perPage int) int {
	if totalItems <= 0 || perPage <= 0 {
		return 0
	}
	return (totalItems + perPage - 1) / perPage
}

// HasPrevious reports whether a "previous" control should be shown for the
// given window.
func HasPrevious(first int) bool { return first > 1 }

// HasNext reports whether a "next" control should be shown for the given
// window.
func HasNext(last, totalItems int) bool { return totalItems > 0 && last < totalItems }
