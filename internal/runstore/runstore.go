// Package runstore locates recorded runs on disk and resolves their sidecar
// files and artifacts. Run directories are named <task_slug>_<ordinal> and
// hold a site/task sidecar pair, an event-log DB, and optional scratchpad
// and assertion-script files.
package runstore

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Identity names a run for aggregation purposes. Agent is empty for curated
// source runs; for target runs it is derived from the directory layout
// (<target_root>/<agent>/<corpus>/<run>) once, at discovery time.
type Identity struct {
	Agent string
	Site  string
	Task  string
}

// Run is a single recording directory plus its identity.
type Run struct {
	Dir      string
	Identity Identity
}

// Basename returns the run directory's base name.
func (r *Run) Basename() string {
	return filepath.Base(r.Dir)
}

var runDirPattern = regexp.MustCompile(`_\d+$`)

// IsRunDir reports whether name looks like a run directory
// (<task_slug>_<ordinal>).
func IsRunDir(name string) bool {
	return runDirPattern.MatchString(name)
}

// DiscoverSource walks root and returns all source run directories, sorted
// by path. Source runs carry no agent name.
func DiscoverSource(root string) ([]*Run, error) {
	dirs, err := findRunDirs(root)
	if err != nil {
		return nil, err
	}

	runs := make([]*Run, 0, len(dirs))
	for _, dir := range dirs {
		runs = append(runs, &Run{
			Dir: dir,
			Identity: Identity{
				Site: ReadSite(dir),
				Task: ReadTask(dir),
			},
		})
	}
	return runs, nil
}

// DiscoverTargets walks root and returns all target run directories, sorted
// by path. The agent name is the directory two levels above the run.
func DiscoverTargets(root string) ([]*Run, error) {
	dirs, err := findRunDirs(root)
	if err != nil {
		return nil, err
	}

	runs := make([]*Run, 0, len(dirs))
	for _, dir := range dirs {
		runs = append(runs, &Run{
			Dir: dir,
			Identity: Identity{
				Agent: filepath.Base(filepath.Dir(filepath.Dir(dir))),
				Site:  ReadSite(dir),
				Task:  ReadTask(dir),
			},
		})
	}
	return runs, nil
}

func findRunDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && IsRunDir(d.Name()) {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ReadSite returns the trimmed content of the run's site sidecar, or "" when
// the sidecar is absent.
func ReadSite(dir string) string {
	return readSidecar(dir, "_site.txt")
}

// ReadTask returns the trimmed content of the run's task sidecar, or "" when
// the sidecar is absent.
func ReadTask(dir string) string {
	return readSidecar(dir, "_task.txt")
}

func readSidecar(dir, suffix string) string {
	path := filepath.Join(dir, filepath.Base(dir)+suffix)
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// MinimalDB returns the path of the curated minimal event log in dir, or ""
// when none exists. A run directory holds at most one.
func MinimalDB(dir string) string {
	return findFile(dir, func(name string) bool {
		return strings.HasSuffix(name, "_minimal.db")
	})
}

// MaximalDB returns the path of the full event log in dir: any .db file that
// is not the minimal one.
func MaximalDB(dir string) string {
	return findFile(dir, func(name string) bool {
		return strings.HasSuffix(name, ".db") && !strings.HasSuffix(name, "_minimal.db")
	})
}

// SourceScratchpad returns the curated scratchpad path for a source run.
// The file name differs from the target side on purpose; the corpora were
// produced by different tools.
func SourceScratchpad(dir string) string {
	return filepath.Join(dir, "scratchpad_minimal.txt")
}

// TargetScratchpad returns the agent scratchpad path for a target run.
func TargetScratchpad(dir string) string {
	return filepath.Join(dir, "scratchpad.txt")
}

var (
	sourceCommandsPattern = regexp.MustCompile(`^test.*_commands\.py$`)
	targetCommandsPattern = regexp.MustCompile(`_commands\.py$`)
	mergedScriptPattern   = regexp.MustCompile(`^test_.*_merged\.py$`)
)

// SourceCommandsScript returns the generated source-side assertion script
// (test*_commands.py), or "" when none exists.
func SourceCommandsScript(dir string) string {
	return findFile(dir, func(name string) bool {
		return sourceCommandsPattern.MatchString(name)
	})
}

// TargetCommandsScript returns the generated target-side script
// (*_commands.py), or "" when none exists.
func TargetCommandsScript(dir string) string {
	return findFile(dir, func(name string) bool {
		return targetCommandsPattern.MatchString(name) && !mergedScriptPattern.MatchString(name)
	})
}

// MergedScript returns the spliced assertion script (test_*_merged.py), or ""
// when none exists.
func MergedScript(dir string) string {
	return findFile(dir, func(name string) bool {
		return mergedScriptPattern.MatchString(name)
	})
}

func findFile(dir string, match func(name string) bool) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		if !e.IsDir() && match(e.Name()) {
			return filepath.Join(dir, e.Name())
		}
	}
	return ""
}
