package compat

import "strings"

// DocURL derives a documentation URL for an API path under a category's
// doc prefix, e.g. "elements/view.name" under "/api/elements/built-in"
// becomes "/api/elements/built-in/view".
func DocURL(apiPath, docPrefix string) string {
	parts := strings.Split(apiPath, "/")
	fileName, _, _ := strings.Cut(parts[len(parts)-1], ".")

	switch {
	case strings.Contains(docPrefix, "elements"), strings.Contains(docPrefix, "css/properties"):
		return docPrefix + "/" + fileName
	case strings.Contains(docPrefix, "lynx-api"):
		return "/api/lynx-api/" + subPathBeforeAccessor(apiPath, "lynx-api/")
	case strings.Contains(docPrefix, "lynx-native-api"):
		return "/api/lynx-native-api/" + subPathBeforeAccessor(apiPath, "lynx-native-api/")
	default:
		return docPrefix + "/" + fileName
	}
}

func subPathBeforeAccessor(apiPath, dir string) string {
	sub := strings.Replace(apiPath, dir, "", 1)
	sub, _, _ = strings.Cut(sub, ".")

	return sub
}
