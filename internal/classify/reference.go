package classify

import (
	"regexp"
	"strconv"
	"strings"
)

// EDRMS reference numbers look like SC-C05-CAB-ORD-DBF-IT-00001: a two-char
// segment, four three-char segments... strictly, 2-3-3-3-3-2 word-character
// segments ending in a 4-5 digit number.
var referencePattern = regexp.MustCompile(`\w{2}-\w{3}-\w{3}-\w{3}-\w{3}-\w{2}-\d{4,5}`)

// Version markers on the revision history page. The dotted form ("0.1",
// "0.12") is tried first; the dated form ("1 10-JAN-21 ") is the fallback,
// where the leading digits are the version.
var (
	versionDottedPattern = regexp.MustCompile(`\s0\.(\d{1,2})`)
	versionDatedPattern  = regexp.MustCompile(`(\d{1,2})\s\d{1,2}[-/]\w{1,10}[-/]\d{2,4}\s`)
)

const revisionToken = "REVISION"

// ExtractReference returns the first EDRMS reference number found on the
// cover page, or "" when none matches. A non-empty prefix list restricts
// matches to references starting with one of the configured prefixes
// (e.g. "SC-C05"); cover pages often quote referenced documents, and the
// prefixes keep a foreign reference from naming the file.
func ExtractReference(coverPage string, prefixes []string) string {
	page := strings.ToUpper(coverPage)
	for _, m := range referencePattern.FindAllString(page, -1) {
		m = strings.TrimSpace(m)
		if len(prefixes) == 0 {
			return m
		}
		for _, p := range prefixes {
			if strings.HasPrefix(m, strings.ToUpper(p)) {
				return m
			}
		}
	}
	return ""
}

// ExtractVersion returns a version suffix such as "-V3" derived from the
// second page, or "" when no version is determined. A missing version is
// optional metadata, never a failure.
//
// Scanning starts at the first "REVISION" token so that issue dates above
// the revision table are not mistaken for versions; when the token is absent
// the whole page is scanned. Both patterns take the numerically highest
// match, not the first.
func ExtractVersion(secondPage string) string {
	page := strings.ToUpper(secondPage)
	if idx := strings.Index(page, revisionToken); idx >= 0 {
		page = page[idx:]
	}

	highest := highestMatch(versionDottedPattern, page)
	if highest == 0 {
		highest = highestMatch(versionDatedPattern, page)
	}
	if highest == 0 {
		return ""
	}
	return "-V" + strconv.Itoa(highest)
}

func highestMatch(re *regexp.Regexp, page string) int {
	highest := 0
	for _, m := range re.FindAllStringSubmatch(page, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return highest
}
