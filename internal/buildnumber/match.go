package buildnumber

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var buildPattern = regexp.MustCompile(`^\d+$`)

// parseBuild splits tag into <version>-<build>. hasPrefix reports whether
// the tag starts with version followed by "-", ok whether the remainder is a
// build number that can still be incremented.
func parseBuild(version, tag string) (build int, hasPrefix, ok bool) {
	prefix := version + "-"
	if !strings.HasPrefix(tag, prefix) {
		return 0, false, false
	}

	suffix := strings.TrimPrefix(tag, prefix)
	if !buildPattern.MatchString(suffix) {
		return 0, true, false
	}

	build, err := strconv.Atoi(suffix)
	if err != nil || build == math.MaxInt {
		return 0, true, false
	}

	return build, true, true
}

// TagMatches reports whether tag is exactly <version>-<digits>.
func TagMatches(version, tag string) bool {
	_, _, ok := parseBuild(version, tag)
	return ok
}

// Next returns one more than the largest build number among the tags of the
// form <version>-<digits>, or 0 if there are none. Other tags are ignored so
// an unfiltered tag list is safe to pass.
func Next(version string, tags []string) int {
	next := 0
	for _, tag := range tags {
		build, _, ok := parseBuild(version, tag)
		if ok && build+1 > next {
			next = build + 1
		}
	}

	return next
}
