package search

import (
	"path"
	"strings"
)

// IsResultsArtifact reports whether a file name denotes the tool's own
// results log or one of its companions (rotated backups, the lock file).
// Matching files would otherwise feed back into their own search whenever
// the log sits inside the searched tree. Comparison is case-insensitive so
// the exclusion holds on case-preserving filesystems.
func IsResultsArtifact(name, logName string) bool {
	if logName == "" {
		return false
	}

	n := strings.ToLower(name)
	base := strings.ToLower(logName)

	// Results.log itself, plus derived names like Results.log.lock.
	if strings.HasPrefix(n, base) {
		return true
	}

	// Rotated backups insert a timestamp between stem and extension:
	// Results-2006-01-02T15-04-05.000.log.
	ext := path.Ext(base)
	if ext == "" {
		return false
	}
	stem := strings.TrimSuffix(base, ext)
	return strings.HasPrefix(n, stem+"-") && strings.HasSuffix(n, ext)
}
