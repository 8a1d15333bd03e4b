/*
Package rcv implements ranked-choice (instant-runoff) election tabulation.

An Election is created from an ordered slate of unique candidate names and
collects ranked ballots in one of three shapes: ordered candidate indices,
ordered candidate names, or a mapping of candidate names to ranks. Tally
runs the instant-runoff loop over a snapshot of the collected ballots,
eliminating every candidate tied at the lowest first-preference count each
round until one candidate holds an absolute majority.
*/
package rcv

import "fmt"

// Version components of the package.
const (
	VersionMajor  = 0
	VersionMinor  = 3
	VersionPatch  = 1
	VersionSuffix = ""
)

// PackageVersion is the semantic version string of the package.
var PackageVersion = Version()

// Version returns the semantic version for the current build.
func Version() string {
	vstr := fmt.Sprintf("%d.%d", VersionMajor, VersionMinor)

	if VersionPatch > 0 {
		vstr += fmt.Sprintf(".%d", VersionPatch)
	}

	if VersionSuffix != "" {
		vstr += "-" + VersionSuffix
	}

	return vstr
}
