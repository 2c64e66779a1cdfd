package models

import "time"

// WorkItemType identifies what kind of contribution a work item is
type WorkItemType string

const (
	WorkItemTypeIssue       WorkItemType = "Issue"
	WorkItemTypePullRequest WorkItemType = "PullRequest"
)

// WorkItem represents a GitHub issue or pull request fetched from the API
type WorkItem struct {
	ID            int64      `json:"id"`
	Author        string     `json:"author"`
	Title         string     `json:"title"`
	URL           string     `json:"url"`
	State         string     `json:"state"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at"`
	MergedAt      *time.Time `json:"merged_at"`
	Labels        []string   `json:"labels"`
	IsPullRequest bool       `json:"is_pull_request"`
}

// Type returns the contribution type of the item
func (w *WorkItem) Type() WorkItemType {
	if w.IsPullRequest {
		return WorkItemTypePullRequest
	}
	return WorkItemTypeIssue
}

// Countable reports whether the item qualifies as a contribution: a closed
// issue that is not a pull request, or a merged pull request.
func (w *WorkItem) Countable() bool {
	if w.IsPullRequest {
		return w.MergedAt != nil
	}
	return w.State == "closed"
}
