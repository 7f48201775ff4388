package checkers

import (
	"os"
	"strings"
)

// CompareScratchpads reports whether any non-empty line of the curated source
// scratchpad appears verbatim inside the target scratchpad. The check is
// deliberately asymmetric: the target may contain arbitrary extra output, but
// it must reproduce at least one curated answer line.
//
// Either file being unreadable yields false; callers decide whether that
// counts or excludes.
func CompareScratchpads(sourcePath, targetPath string) bool {
	sourceData, err := os.ReadFile(sourcePath)
	if err != nil {
		return false
	}
	targetData, err := os.ReadFile(targetPath)
	if err != nil {
		return false
	}

	target := string(targetData)
	for _, line := range strings.Split(string(sourceData), "\n") {
		line = strings.TrimSpace(line)
		if line != "" && strings.Contains(target, line) {
			return true
		}
	}
	return false
}
