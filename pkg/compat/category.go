package compat

import "math"

// percentScale converts a ratio to a percentage.
const percentScale = 100

// CategoryInput is one category as supplied by the loader.
type CategoryInput struct {
	// Key is the category path relative to the data root, e.g. "css/properties".
	Key         string
	DisplayName string
	DocPrefix   string
	// Documents are walked in the given order.
	Documents []Document
	// Missing marks a category whose directory does not exist.
	Missing bool
}

type categoryResult struct {
	detail CategoryDetail
	recent []RecentAPI
}

// percent returns round(100*part/whole), or 0 when whole is 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}

	return int(math.Round(float64(part) / float64(whole) * percentScale))
}

// countSupporters counts the platforms whose support value is supported.
func countSupporters(support map[string]VersionValue, platforms []string) int {
	n := 0

	for _, p := range platforms {
		if support[p].IsSupported() {
			n++
		}
	}

	return n
}

func emptyCategory(displayName string) CategoryDetail {
	return CategoryDetail{
		DisplayName: displayName,
		Stats: CategoryStats{
			Supported: map[string]int{},
			Coverage:  map[string]int{},
			Exclusive: map[string]int{},
		},
		APIs:       []string{},
		APIDetails: []APIInfo{},
		Missing:    map[string][]APIInfo{},
		Exclusive:  map[string][]APIInfo{},
	}
}

func (g *Generator) aggregateCategory(in CategoryInput) categoryResult {
	if in.Missing {
		g.logger.Warn("category path does not exist", "category", in.Key)

		return categoryResult{detail: emptyCategory(in.DisplayName)}
	}

	tracked := g.opts.TrackedPlatforms
	w := walker{opts: g.opts, category: in.Key, docPrefix: in.DocPrefix}

	agg := newWalkResult(tracked)
	for _, doc := range in.Documents {
		agg.merge(w.walkDocument(doc))
	}

	if agg.apis == nil {
		agg.apis = []APIInfo{}
	}

	coverage := make(map[string]int, len(tracked))
	for _, p := range tracked {
		coverage[p] = percent(agg.supported[p], agg.total)
	}

	missing := make(map[string][]APIInfo, len(tracked))
	exclusiveAPIs := make(map[string][]APIInfo, len(tracked))
	exclusive := make(map[string]int, len(tracked))

	for _, p := range tracked {
		missing[p] = []APIInfo{}
		exclusiveAPIs[p] = []APIInfo{}
	}

	for _, api := range agg.apis {
		supporters := countSupporters(api.Support, tracked)

		for _, p := range tracked {
			supportedHere := api.Support[p].IsSupported()

			if supporters >= g.opts.SharedThreshold && !supportedHere {
				missing[p] = append(missing[p], api)
			}

			if supporters == 1 && supportedHere {
				exclusiveAPIs[p] = append(exclusiveAPIs[p], api)
			}
		}
	}

	for _, p := range tracked {
		exclusive[p] = len(exclusiveAPIs[p])
	}

	paths := make([]string, len(agg.apis))
	for i, api := range agg.apis {
		paths[i] = api.Path
	}

	return categoryResult{
		detail: CategoryDetail{
			DisplayName: in.DisplayName,
			Stats: CategoryStats{
				Total:     agg.total,
				Supported: agg.supported,
				Coverage:  coverage,
				Exclusive: exclusive,
			},
			APIs:       paths,
			APIDetails: agg.apis,
			Missing:    missing,
			Exclusive:  exclusiveAPIs,
		},
		recent: agg.recent,
	}
}
