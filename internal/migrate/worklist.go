package migrate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Worklist is the durable list of migration pairs built during planning and
// drained during transfer. It is a plain text file with one "src dst" line
// per pair, so a run can be inspected or resumed with nothing but the file.
type Worklist struct {
	path string
}

// NewWorklist returns a work list stored at path.
func NewWorklist(path string) *Worklist {
	return &Worklist{path: path}
}

// Path returns the backing file path.
func (w *Worklist) Path() string {
	return w.path
}

// Reset truncates the work list. Planning calls this exactly once per run,
// before the first namespace is read.
func (w *Worklist) Reset() error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return wrapPipelineError(ErrResetWorklist, err,
				"failed to create work list directory",
				map[string]any{"path": w.path})
		}
	}
	if err := os.WriteFile(w.path, nil, 0o600); err != nil {
		return wrapPipelineError(ErrResetWorklist, err,
			"failed to truncate work list",
			map[string]any{"path": w.path})
	}
	return nil
}

// Append adds pairs to the end of the work list.
func (w *Worklist) Append(pairs []Pair) error {
	if len(pairs) == 0 {
		return nil
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) // #nosec G304 -- path comes from the run's output directory flag.
	if err != nil {
		return wrapPipelineError(ErrAppendWorklist, err,
			"failed to open work list for append",
			map[string]any{"path": w.path})
	}
	defer f.Close()

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(p.Src)
		b.WriteByte(' ')
		b.WriteString(p.Dst)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return wrapPipelineError(ErrAppendWorklist, err,
			"failed to append to work list",
			map[string]any{"path": w.path})
	}
	return nil
}

// Load reads every pair from the work list. Blank lines are ignored; a line
// that is not exactly two fields is a malformed pair error.
func (w *Worklist) Load() ([]Pair, error) {
	f, err := os.Open(w.path) // #nosec G304 -- path comes from the run's output directory flag.
	if err != nil {
		if os.IsNotExist(err) {
			return nil, wrapPipelineError(ErrWorklistNotFound, err,
				"work list does not exist, run the plan step first",
				map[string]any{"path": w.path})
		}
		return nil, wrapPipelineError(ErrReadWorklist, err,
			"failed to open work list",
			map[string]any{"path": w.path})
	}
	defer f.Close()

	var pairs []Pair
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, pipelineError(ErrMalformedPair,
				fmt.Sprintf("malformed work list line %d", line),
				map[string]any{"path": w.path, "line": line})
		}
		pairs = append(pairs, Pair{Src: fields[0], Dst: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, wrapPipelineError(ErrReadWorklist, err,
			"failed to read work list",
			map[string]any{"path": w.path})
	}
	return pairs, nil
}
