package meme

import "strings"

// ParseTags splits a comma separated tag list, trimming each entry and
// dropping empty ones. The result is never nil.
func ParseTags(csv string) Tags {
	out := Tags{}
	for _, t := range strings.Split(csv, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
