package github

import "strings"

// nextLink extracts the URL of the rel="next" entry from a Link response
// header. The header is a comma-separated list of `<url>; rel="name"` entries.
// A missing or malformed header returns "" and terminates pagination.
func nextLink(header string) string {
	if header == "" {
		return ""
	}
	for _, entry := range strings.Split(header, ",") {
		parts := strings.Split(entry, ";")
		if len(parts) < 2 {
			continue
		}
		urlPart := strings.TrimSpace(parts[0])
		if !strings.HasPrefix(urlPart, "<") || !strings.HasSuffix(urlPart, ">") {
			continue
		}
		for _, param := range parts[1:] {
			param = strings.TrimSpace(param)
			if param == `rel="next"` || param == "rel=next" {
				return strings.Trim(urlPart, "<>")
			}
		}
	}
	return ""
}
