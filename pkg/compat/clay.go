package compat

// ClayEnabled reports whether a clay aggregate is configured.
func (o Options) ClayEnabled() bool {
	return o.ClayName != "" && len(o.ClaySubPlatforms) > 0
}

// clayVersion is the earliest supporting version among the sub-platforms.
func clayVersion(support map[string]VersionValue, subs []string) VersionValue {
	values := make([]VersionValue, 0, len(subs))
	for _, p := range subs {
		values = append(values, support[p])
	}

	return Earliest(values)
}

func anySupported(support map[string]VersionValue, platforms []string) bool {
	for _, p := range platforms {
		if support[p].IsSupported() {
			return true
		}
	}

	return false
}

// featureVersions flattens a feature's support map to plain values.
func featureVersions(f Feature) map[string]VersionValue {
	out := make(map[string]VersionValue, len(f.Support))
	for p, stmt := range f.Support {
		out[p] = stmt.VersionAdded
	}

	return out
}

// synthesizeClay adds the clay aggregate to every part of the report. It
// must run after categories, features and timeline are complete.
func synthesizeClay(stats *APIStats, opts Options) {
	if !opts.ClayEnabled() {
		return
	}

	clay := opts.ClayName
	subs := opts.ClaySubPlatforms
	nonClay := opts.NativePlatforms()

	totalSupported := 0

	for key, cat := range stats.Categories {
		claySupported := 0

		for _, api := range cat.APIDetails {
			v := clayVersion(api.Support, subs)
			if v.IsSupported() && countSupporters(api.Support, opts.TrackedPlatforms) >= opts.SharedThreshold {
				claySupported++
			}

			api.Support[clay] = v
		}

		var exclusive, missing []APIInfo

		for _, api := range cat.APIDetails {
			onClay := anySupported(api.Support, subs)

			if onClay && !anySupported(api.Support, nonClay) {
				exclusive = append(exclusive, api)
			}

			if !onClay && countSupporters(api.Support, opts.TrackedPlatforms) >= opts.SharedThreshold {
				missing = append(missing, api)
			}
		}

		if exclusive == nil {
			exclusive = []APIInfo{}
		}

		if missing == nil {
			missing = []APIInfo{}
		}

		cat.Stats.Supported[clay] = claySupported
		cat.Stats.Coverage[clay] = percent(claySupported, cat.Stats.Total)
		cat.Stats.Exclusive[clay] = len(exclusive)
		cat.Exclusive[clay] = exclusive
		cat.Missing[clay] = missing
		stats.Categories[key] = cat

		totalSupported += claySupported
	}

	clayExclusive := 0

	for _, f := range stats.Features {
		versions := featureVersions(f)
		if anySupported(versions, subs) && !anySupported(versions, nonClay) {
			clayExclusive++
		}
	}

	stats.Summary.ByPlatform[clay] = PlatformStats{
		SupportedCount:  totalSupported,
		CoveragePercent: percent(totalSupported, stats.Summary.TotalAPIs),
		ExclusiveCount:  clayExclusive,
	}

	for i := range stats.Features {
		f := stats.Features[i]
		f.Support[clay] = SupportStatement{VersionAdded: clayVersion(featureVersions(f), subs)}
	}

	for _, api := range stats.RecentAPIs {
		api.Versions[clay] = clayVersion(api.Versions, subs)
	}

	relevant := sharedFeatures(stats.Features, opts.TrackedPlatforms, opts.SharedThreshold)

	for _, point := range stats.Timeline {
		supported := 0

		for _, f := range relevant {
			for _, p := range subs {
				if stmt, ok := f.Support[p]; ok && AtOrBefore(stmt.VersionAdded, point.Version) {
					supported++

					break
				}
			}
		}

		point.Platforms[clay] = PlatformPoint{
			Supported: supported,
			Coverage:  percent(supported, len(relevant)),
		}
	}
}
