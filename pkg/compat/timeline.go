package compat

// sharedFeatures returns the features supported by at least threshold of
// the given platforms.
func sharedFeatures(features []Feature, platforms []string, threshold int) []Feature {
	var out []Feature

	for _, f := range features {
		if len(FeatureSupporters(f, platforms)) >= threshold {
			out = append(out, f)
		}
	}

	return out
}

// trailing returns the last n entries of history.
func trailing(history []VersionEntry, n int) []VersionEntry {
	if n <= 0 || len(history) <= n {
		return history
	}

	return history[len(history)-n:]
}

// buildTimeline replays support data against the trailing window of the
// version history. Only shared features count.
func buildTimeline(features []Feature, history []VersionEntry, opts Options) []TimelinePoint {
	relevant := sharedFeatures(features, opts.TrackedPlatforms, opts.SharedThreshold)
	window := trailing(history, opts.TimelineWindow)

	points := make([]TimelinePoint, 0, len(window))

	for _, entry := range window {
		platforms := make(map[string]PlatformPoint, len(opts.TrackedPlatforms))

		for _, p := range opts.TrackedPlatforms {
			supported := 0

			for _, f := range relevant {
				stmt, ok := f.Support[p]
				if ok && AtOrBefore(stmt.VersionAdded, entry.Version) {
					supported++
				}
			}

			platforms[p] = PlatformPoint{
				Supported: supported,
				Coverage:  percent(supported, len(relevant)),
			}
		}

		points = append(points, TimelinePoint{
			Version:     entry.Version,
			ReleaseDate: entry.ReleaseDate,
			Platforms:   platforms,
		})
	}

	return points
}
