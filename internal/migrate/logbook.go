package migrate

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Logbook records migration outcomes across runs. The succeeded log holds one
// source reference per completed transfer and doubles as the skip set on
// resumption. The failed log holds one "ref reason" line per failure and is
// append only, so repeated failures of the same reference stack up. Neither
// log is ever truncated.
type Logbook struct {
	succeededPath string
	failedPath    string
}

// Counts summarizes the logbook. FailedEntries counts raw failed log lines;
// FailedDistinct counts unique failed references.
type Counts struct {
	Succeeded      int
	FailedEntries  int
	FailedDistinct int
}

// NewLogbook returns a logbook using the default file names under dir.
func NewLogbook(dir string) *Logbook {
	return NewLogbookWithPaths(
		filepath.Join(dir, SucceededLogFileName),
		filepath.Join(dir, FailedLogFileName),
	)
}

// NewLogbookWithPaths returns a logbook over explicit file paths.
func NewLogbookWithPaths(succeededPath, failedPath string) *Logbook {
	return &Logbook{succeededPath: succeededPath, failedPath: failedPath}
}

// SucceededSet loads the succeeded log as a set of source references. A
// missing log means nothing has succeeded yet and yields an empty set.
func (l *Logbook) SucceededSet() (map[string]struct{}, error) {
	set := make(map[string]struct{})
	err := l.eachLine(l.succeededPath, func(line string) {
		set[line] = struct{}{}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// AppendSucceeded records one completed transfer by its source reference.
func (l *Logbook) AppendSucceeded(ref string) error {
	return l.appendLine(l.succeededPath, ref)
}

// AppendFailed records one failure with its reason. Reasons are flattened to
// a single line so the log stays line oriented.
func (l *Logbook) AppendFailed(ref, reason string) error {
	flat := strings.Join(strings.Fields(reason), " ")
	return l.appendLine(l.failedPath, ref+" "+flat)
}

// Counts reads both logs and returns the summary counts. Missing logs count
// as zero.
func (l *Logbook) Counts() (Counts, error) {
	var c Counts
	if err := l.eachLine(l.succeededPath, func(string) { c.Succeeded++ }); err != nil {
		return Counts{}, err
	}
	distinct := make(map[string]struct{})
	err := l.eachLine(l.failedPath, func(line string) {
		c.FailedEntries++
		ref := line
		if i := strings.IndexByte(ref, ' '); i >= 0 {
			ref = ref[:i]
		}
		distinct[ref] = struct{}{}
	})
	if err != nil {
		return Counts{}, err
	}
	c.FailedDistinct = len(distinct)
	return c, nil
}

func (l *Logbook) appendLine(path, line string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return wrapPipelineError(ErrAppendLog, err,
				"failed to create log directory",
				map[string]any{"path": path})
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path comes from the run's output directory flag.
	if err != nil {
		return wrapPipelineError(ErrAppendLog, err,
			"failed to open log for append",
			map[string]any{"path": path})
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		return wrapPipelineError(ErrAppendLog, err,
			"failed to append to log",
			map[string]any{"path": path})
	}
	return nil
}

func (l *Logbook) eachLine(path string, fn func(line string)) error {
	f, err := os.Open(path) // #nosec G304 -- path comes from the run's output directory flag.
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapPipelineError(ErrReadLog, err,
			"failed to open log",
			map[string]any{"path": path})
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(line)
	}
	if err := scanner.Err(); err != nil {
		return wrapPipelineError(ErrReadLog, err,
			"failed to read log",
			map[string]any{"path": path})
	}
	return nil
}
