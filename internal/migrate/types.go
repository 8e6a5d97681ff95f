// Package migrate holds the domain model of an image migration run: the
// inventory types reported by the cluster, tag selection, the durable work
// list, the outcome logs, and the executor that drains the work list.
package migrate

import "time"

// Tag is one tag of an image as reported by the source cluster. Created is
// the newest tag event's timestamp and stays zero when the cluster reports
// none.
type Tag struct {
	Name    string
	Created time.Time
}

// Image is one repository in a source namespace together with its tags.
type Image struct {
	Namespace string
	Name      string
	Tags      []Tag
}

// Pair is one unit of migration work: copy the image at Src to Dst. Pairs
// are immutable once written to the work list.
type Pair struct {
	Src string
	Dst string
}

// Status of a pair as it moves through the executor.
type Status string

const (
	StatusPending      Status = "pending"
	StatusSkipped      Status = "skipped"
	StatusTransferring Status = "transferring"
	StatusSucceeded    Status = "succeeded"
	StatusFailed       Status = "failed"
)

// NamespaceSummary aggregates the migration plan for one namespace. Bytes is
// zero unless size estimation ran.
type NamespaceSummary struct {
	Namespace string `json:"namespace"`
	Images    int    `json:"images"`
	Tags      int    `json:"tags"`
	Bytes     int64  `json:"bytes,omitempty"`
}

// ReasonNoTags is recorded in the failed log for images whose tag selection
// came back empty.
const ReasonNoTags = "no tags available"

// Default file names under the output directory.
const (
	WorklistFileName     = "pairs.list"
	SucceededLogFileName = "succeeded.log"
	FailedLogFileName    = "failed.log"
)
