// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package matching

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Normalize lowercases s, replaces non-alphanumerics with spaces and trims.
// Non-ASCII letters are kept.
func Normalize(s string) string {
	return strings.TrimSpace(fuzzy.Cleanse(s, false))
}

// WRatio scores query against title from 0 to 100 with fuzzywuzzy's
// weighted ratio. Non-ASCII letters take part in the comparison, so titles
// such as "Amélie" or "千と千尋の神隠し" stay reachable. Either side without
// letters or digits scores 0.
func WRatio(query, title string) int {
	if Normalize(query) == "" || Normalize(title) == "" {
		return 0
	}
	return fuzzy.UWRatio(query, title)
}
