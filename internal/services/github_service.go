package services

import (
	"context"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/contriboard/contriboard/internal/apperrors"
	"github.com/contriboard/contriboard/internal/models"
)

// WorkItemProvider fetches issue and pull request activity for a repository
type WorkItemProvider interface {
	ListIssues(ctx context.Context, owner, repo string) ([]models.WorkItem, error)
	ListPullRequests(ctx context.Context, owner, repo string) ([]models.WorkItem, error)
}

// GitHubService implements WorkItemProvider against the GitHub REST API.
// Only the first page (100 items) of each listing is fetched; repositories
// with more activity than that per sync are a known limitation.
type GitHubService struct {
	client *github.Client
}

// NewGitHubService creates a GitHub-backed provider. An empty token yields
// an unauthenticated client with the lower rate limit.
func NewGitHubService(token string) *GitHubService {
	if token == "" {
		return &GitHubService{client: github.NewClient(nil)}
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &GitHubService{client: github.NewClient(tc)}
}

// ListIssues returns the repository's issues as work items. The issues API
// also returns pull requests; those are marked so the aggregator can filter
// them out of the issue path.
func (s *GitHubService) ListIssues(ctx context.Context, owner, repo string) ([]models.WorkItem, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	issues, _, err := s.client.Issues.ListByRepo(ctx, owner, repo, opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}

	items := make([]models.WorkItem, 0, len(issues))
	for _, issue := range issues {
		item := models.WorkItem{
			ID:            issue.GetID(),
			Title:         issue.GetTitle(),
			URL:           issue.GetHTMLURL(),
			State:         issue.GetState(),
			IsPullRequest: issue.IsPullRequest(),
		}
		if issue.User != nil {
			item.Author = issue.User.GetLogin()
		}
		if issue.CreatedAt != nil {
			item.CreatedAt = issue.CreatedAt.Time
		}
		if issue.ClosedAt != nil {
			item.ClosedAt = &issue.ClosedAt.Time
		}
		for _, label := range issue.Labels {
			item.Labels = append(item.Labels, label.GetName())
		}
		items = append(items, item)
	}

	return items, nil
}

// ListPullRequests returns the repository's pull requests as work items
func (s *GitHubService) ListPullRequests(ctx context.Context, owner, repo string) ([]models.WorkItem, error) {
	opts := &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	prs, _, err := s.client.PullRequests.List(ctx, owner, repo, opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamUnavailable, err)
	}

	items := make([]models.WorkItem, 0, len(prs))
	for _, pr := range prs {
		item := models.WorkItem{
			ID:            pr.GetID(),
			Title:         pr.GetTitle(),
			URL:           pr.GetHTMLURL(),
			State:         pr.GetState(),
			IsPullRequest: true,
		}
		if pr.User != nil {
			item.Author = pr.User.GetLogin()
		}
		if pr.CreatedAt != nil {
			item.CreatedAt = pr.CreatedAt.Time
		}
		if pr.ClosedAt != nil {
			item.ClosedAt = &pr.ClosedAt.Time
		}
		if pr.MergedAt != nil {
			item.MergedAt = &pr.MergedAt.Time
		}
		for _, label := range pr.Labels {
			item.Labels = append(item.Labels, label.GetName())
		}
		items = append(items, item)
	}

	return items, nil
}
