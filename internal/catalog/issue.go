package catalog

import "fmt"

// IssueKind classifies a catalog inconsistency.
type IssueKind string

const (
	IssueInvalid     IssueKind = "invalid"
	IssueDuplicate   IssueKind = "duplicate"
	IssueDanglingRef IssueKind = "dangling-ref"
)

// Issue records an entry or reference that was filtered while building the
// catalog. Issues are informational; the catalog is always usable.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Ref     string    `json:"ref"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Ref, i.Message)
}

type issueList []Issue

func (l *issueList) add(kind IssueKind, ref, msg string) {
	*l = append(*l, Issue{Kind: kind, Ref: ref, Message: msg})
}
