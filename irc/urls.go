package irc

import "mvdan.cc/xurls/v2"

var urlRegexp = xurls.Relaxed()

// ExtractURLs returns every URL-looking substring of text, for a host to
// highlight in a rendered message. SPEC_FULL.md §9 domain stack: this
// exercises a teacher go.mod dependency (mvdan.cc/xurls/v2) that had no call
// site in the retrieved snapshot.
func ExtractURLs(text string) []string {
	return urlRegexp.FindAllString(text, -1)
}
