package compat

import "strings"

// Query builds the public query string of an API path. The accessor part
// after the first dot usually repeats the file namespace; that prefix is
// stripped, otherwise consecutive duplicate tokens are collapsed.
//
//	"elements/view"                     -> "elements/view"
//	"lynx-api/lynx.lynx.lynx.reload"    -> "lynx-api/lynx.lynx.reload"
//	"css/gap.css.gap.webkit"            -> "css/gap.webkit"
func Query(apiPath string) string {
	filePath, accessor, found := strings.Cut(apiPath, ".")
	if !found {
		return apiPath
	}

	fileAsDots := strings.ReplaceAll(filePath, "/", ".")

	var clean string

	if strings.HasPrefix(accessor, fileAsDots) {
		clean = strings.TrimPrefix(accessor[len(fileAsDots):], ".")
	} else {
		clean = strings.Join(dedupConsecutive(strings.Split(accessor, ".")), ".")
	}

	if clean == "" {
		return filePath
	}

	return filePath + "." + clean
}

func dedupConsecutive(tokens []string) []string {
	out := make([]string, 0, len(tokens))

	for _, tok := range tokens {
		if len(out) == 0 || out[len(out)-1] != tok {
			out = append(out, tok)
		}
	}

	return out
}

// SourceFile returns the data file an API path came from.
func SourceFile(apiPath string) string {
	filePath, _, _ := strings.Cut(apiPath, ".")

	return filePath + ".json"
}

// apiName is the last accessor of a path: "lynx-api/lynx.reload" -> "reload".
func apiName(apiPath string) string {
	last := apiPath
	if i := strings.LastIndex(last, "/"); i >= 0 {
		last = last[i+1:]
	}

	if i := strings.LastIndex(last, "."); i >= 0 {
		last = last[i+1:]
	}

	if last == "" {
		return apiPath
	}

	return last
}

// pathHasSegment reports whether key is one of the "/" or "." separated
// segments of apiPath.
func pathHasSegment(apiPath, key string) bool {
	for _, seg := range strings.FieldsFunc(apiPath, func(r rune) bool { return r == '/' || r == '.' }) {
		if seg == key {
			return true
		}
	}

	return false
}
