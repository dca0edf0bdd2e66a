package classify

import "strings"

// Classify scans text for dictionary labels and returns the matched codes
// joined by "-". Matching is case-insensitive substring containment, in
// dictionary insertion order. When firstOnly is set the scan stops at the
// first match; that mode is used for categories where exactly one match is
// expected (unit, document type). The service category scans all labels, as
// several services can share one cover page (e.g. "ID-SB").
//
// Returns "" when no label matches; an empty code is a classification
// failure the caller reports, never an error.
func Classify(text string, d *Dictionary, firstOnly bool) string {
	page := strings.ToUpper(text)

	var codes []string
	for _, e := range d.Entries() {
		if strings.Contains(page, strings.ToUpper(e.Label)) {
			codes = append(codes, e.Code)
			if firstOnly {
				break
			}
		}
	}
	return strings.Join(codes, "-")
}
