package domain

// DefaultPageSize is used when a read requests a non-positive count.
const DefaultPageSize = 10

// Page is the result of a paginated read of one category log.
type Page struct {
	Records       []AnalysisRecord `json:"records"`
	TotalCount    int              `json:"total_count"`
	StartIndex    int              `json:"start_index"`
	ReturnedCount int              `json:"returned_count"`
	HasMore       bool             `json:"has_more"`
}

// Window clamps pagination parameters against a log of total records and
// returns the half-open range [start, end) to read.
//
// A negative start is treated as 0 and a non-positive count as DefaultPageSize.
// When start is at or past the end of the log the range is empty (end == start)
// and the clamped start is preserved so it can be echoed back to the caller.
func Window(total, start, count int) (int, int) {
	if start < 0 {
		start = 0
	}
	if count <= 0 {
		count = DefaultPageSize
	}
	if start >= total {
		return start, start
	}
	end := start + count
	if end > total || end < start { // end < start guards against overflow
		end = total
	}
	return start, end
}

// NewPage assembles a Page from the records in [start, end) of a log holding
// total records. records must already be that slice.
func NewPage(records []AnalysisRecord, total, start, end int) Page {
	if records == nil {
		records = []AnalysisRecord{}
	}
	return Page{
		Records:       records,
		TotalCount:    total,
		StartIndex:    start,
		ReturnedCount: len(records),
		HasMore:       end < total,
	}
}
