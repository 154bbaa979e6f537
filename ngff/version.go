package ngff

import (
	"fmt"

	"github.com/blang/semver"
)

var (
	// Version03 is the first OME-NGFF version declaring "axes".
	Version03 = semver.MustParse("0.3.0")

	// Version04 introduced axes objects and coordinate transformations.
	Version04 = semver.MustParse("0.4.0")

	// LatestVersion is assumed when a multiscale omits its version.
	LatestVersion = Version04
)

// ChannelDimension is the fixed channel index of the pre-0.3 5-d (t, c, z, y, x) layout.
const ChannelDimension = 1

// ParseVersion parses an OME-NGFF version string like "0.4".
func ParseVersion(s string) (semver.Version, error) {
	if s == "" {
		return LatestVersion, nil
	}
	v, err := semver.ParseTolerant(s)
	if err != nil {
		return semver.Version{}, fmt.Errorf("bad OME-NGFF version %q: %v", s, err)
	}
	return v, nil
}

// HasAxes returns true if multiscales of this version declare axes.
func HasAxes(v semver.Version) bool {
	return v.GTE(Version03)
}

// HasAxisObjects returns true if axes are objects with a "name" rather than strings.
func HasAxisObjects(v semver.Version) bool {
	return v.GTE(Version04)
}
