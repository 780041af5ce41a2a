package compat

import "maps"

// walkResult is the aggregate a subtree contributes to its category.
type walkResult struct {
	total     int
	supported map[string]int
	apis      []APIInfo
	recent    []RecentAPI
}

func newWalkResult(platforms []string) walkResult {
	supported := make(map[string]int, len(platforms))
	for _, p := range platforms {
		supported[p] = 0
	}

	return walkResult{supported: supported}
}

// merge folds a child result into r, keeping traversal order.
func (r *walkResult) merge(child walkResult) {
	r.total += child.total

	for p, n := range child.supported {
		r.supported[p] += n
	}

	r.apis = append(r.apis, child.apis...)
	r.recent = append(r.recent, child.recent...)
}

// walker walks the trees of one category.
type walker struct {
	opts      Options
	category  string
	docPrefix string
}

// walkDocument walks every top-level member of a document, rooted at the
// document path. Top-level keys mirror the file path and are not appended.
func (w walker) walkDocument(doc Document) walkResult {
	result := newWalkResult(w.opts.TrackedPlatforms)
	if doc.Root == nil {
		return result
	}

	for _, member := range doc.Root.Children {
		result.merge(w.walk(member.Node, doc.Path))
	}

	return result
}

// walk visits node pre-order: its own statement first, then children in
// document order.
func (w walker) walk(node *Node, apiPath string) walkResult {
	result := newWalkResult(w.opts.TrackedPlatforms)

	if kind := node.Kind(); kind == NodeLeaf || kind == NodeMixed {
		w.visitLeaf(node.Compat, apiPath, &result)
	}

	for _, child := range node.Children {
		childPath := apiPath
		if !pathHasSegment(apiPath, child.Key) {
			childPath = apiPath + "." + child.Key
		}

		result.merge(w.walk(child.Node, childPath))
	}

	return result
}

func (w walker) visitLeaf(stmt *CompatStatement, apiPath string, result *walkResult) {
	support := make(map[string]VersionValue, len(w.opts.TrackedPlatforms))
	supportCount := 0
	recent := false

	for _, p := range w.opts.TrackedPlatforms {
		version := ResolvePlatform(stmt, p)
		if !version.IsSupported() {
			support[p] = Unsupported()

			continue
		}

		supportCount++

		if _, ok := version.Version(); ok {
			support[p] = version
		} else {
			support[p] = Always()
		}

		if IsRecent(version, w.opts.RecentVersions) {
			recent = true
		}
	}

	// Only shared leaves enter the coverage numerator and denominator.
	if supportCount >= w.opts.SharedThreshold {
		result.total = 1

		for _, p := range w.opts.TrackedPlatforms {
			if support[p].IsSupported() {
				result.supported[p] = 1
			}
		}
	}

	docURL := stmt.LynxPath
	if docURL == "" {
		docURL = DocURL(apiPath, w.docPrefix)
	}

	name := stmt.Description
	if name == "" {
		name = apiName(apiPath)
	}

	result.apis = append(result.apis, APIInfo{
		Path:    apiPath,
		Name:    name,
		DocURL:  docURL,
		Support: support,
	})

	if recent {
		result.recent = append(result.recent, RecentAPI{
			Path:     apiPath,
			Name:     name,
			Category: w.category,
			DocURL:   docURL,
			Versions: maps.Clone(support),
		})
	}
}
