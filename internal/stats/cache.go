package stats

import "hdrview/internal/hdrimage"

// Cache keeps at most one histogram per Mode and one Summary. Entries are
// tagged with the content version they were computed from; a version change
// makes them stale without any explicit invalidation.
type Cache struct {
	bins       int
	histograms [2]*Histogram

	summary        Summary
	summaryVersion uint64
	hasSummary     bool

	recomputes int
}

// NewCache creates an empty cache. bins <= 0 selects DefaultBins.
func NewCache(bins int) *Cache {
	if bins <= 0 {
		bins = DefaultBins
	}
	return &Cache{bins: bins}
}

// Histogram returns the histogram of img for (version, mode, exposure),
// computing it when the cached entry for mode does not match exactly.
func (c *Cache) Histogram(img *hdrimage.Image, version uint64, mode Mode, exposure float32) *Histogram {
	slot := 0
	if mode == DisplayEncoded {
		slot = 1
	}
	if h := c.histograms[slot]; h != nil && h.Version == version && h.Exposure == exposure {
		return h
	}
	h := ComputeHistogram(img, mode, exposure, c.bins)
	h.Version = version
	c.histograms[slot] = h
	c.recomputes++
	return h
}

// Summary returns the summary statistics of img at version.
func (c *Cache) Summary(img *hdrimage.Image, version uint64) Summary {
	if c.hasSummary && c.summaryVersion == version {
		return c.summary
	}
	c.summary = Summarize(img)
	c.summaryVersion = version
	c.hasSummary = true
	c.recomputes++
	return c.summary
}

// Recomputes counts how many full image scans the cache has performed.
func (c *Cache) Recomputes() int { return c.recomputes }

// Bins returns the configured bin count.
func (c *Cache) Bins() int { return c.bins }

// Reset drops all cached entries.
func (c *Cache) Reset() {
	c.histograms = [2]*Histogram{}
	c.hasSummary = false
}
