package pipeline

// MaxPageSize is the largest page the remote endpoint will serve per query.
const MaxPageSize = 500

// QueryPage is one bounded unit of the paginated remote query.
type QueryPage struct {
	Offset int
	Limit  int
}

// plan translates a record limit into a finite sequence of pages. The final
// page is truncated so the cumulative requested records equal exactly the
// limit. Parameters are validated before any network activity.
func plan(limit, pageSize int) ([]QueryPage, error) {
	if limit <= 0 {
		return nil, &InvalidParameterError{Param: "limit", Reason: "must be a positive integer"}
	}
	if pageSize <= 0 {
		return nil, &InvalidParameterError{Param: "page-size", Reason: "must be a positive integer"}
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	pages := make([]QueryPage, 0, (limit+pageSize-1)/pageSize)
	for off := 0; off < limit; off += pageSize {
		n := pageSize
		if off+n > limit {
			n = limit - off
		}
		pages = append(pages, QueryPage{Offset: off, Limit: n})
	}
	return pages, nil
}
