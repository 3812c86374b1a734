package classify

import (
	"fmt"
	"strconv"
	"strings"

	"devquest/internal/core/activity"

	"github.com/google/go-github/v62/github"
	"golang.org/x/text/message"
)

// Handler is one row of the classification table
type Handler struct {
	Name    string
	Type    activity.Type
	Kind    string
	Actions []string

	// match is an optional extra predicate over the typed event
	match func(ev any) bool
	// build maps the typed event into activity data and a one line description
	build func(ev any, p *message.Printer) (activity.Data, string, error)
}

// accepts reports whether h claims the event
func (h Handler) accepts(kind, action string, ev any) bool {
	if h.Kind != kind {
		return false
	}
	if len(h.Actions) > 0 && !contains(h.Actions, action) {
		return false
	}
	return h.match == nil || h.match(ev)
}

// on builds a handler over a concrete go-github event type
func on[E any](
	name string, t activity.Type, kind string, actions []string,
	match func(*E) bool,
	build func(*E, *message.Printer) (activity.Data, string, error),
) Handler {
	h := Handler{Name: name, Type: t, Kind: kind, Actions: actions}
	if match != nil {
		h.match = func(ev any) bool {
			e, ok := ev.(*E)
			return ok && match(e)
		}
	}
	h.build = func(ev any, p *message.Printer) (activity.Data, string, error) {
		e, ok := ev.(*E)
		if !ok {
			return nil, "", fmt.Errorf("%s: unexpected payload type %T", name, ev)
		}
		return build(e, p)
	}
	return h
}

func actions(a ...string) []string { return a }

// table is evaluated top to bottom; the first handler that accepts the event wins
func table() []Handler {
	return []Handler{
		on("push", activity.TypeCodePush, KindPush, nil,
			func(e *github.PushEvent) bool {
				return !e.GetDeleted() && strings.HasPrefix(e.GetRef(), "refs/heads/")
			},
			buildPush),

		on("pull_request.opened", activity.TypePullRequestCreate, KindPullRequest, actions("opened"), nil,
			pullRequest("Opened pull request %s: %s")),
		on("pull_request.merged", activity.TypePullRequestMerge, KindPullRequest, actions("closed"),
			func(e *github.PullRequestEvent) bool { return e.GetPullRequest().GetMerged() },
			pullRequest("Merged pull request %s: %s")),
		on("pull_request.closed", activity.TypePullRequestClose, KindPullRequest, actions("closed"),
			func(e *github.PullRequestEvent) bool { return !e.GetPullRequest().GetMerged() },
			pullRequest("Closed pull request %s: %s")),
		on("pull_request.reopened", activity.TypePullRequestReopen, KindPullRequest, actions("reopened"), nil,
			pullRequest("Reopened pull request %s: %s")),
		on("pull_request.ready_for_review", activity.TypePullRequestReady, KindPullRequest, actions("ready_for_review"), nil,
			pullRequest("Marked pull request %s ready for review: %s")),

		on("issues.opened", activity.TypeIssueCreate, KindIssues, actions("opened"), nil,
			issue("Opened issue %s: %s")),
		on("issues.closed", activity.TypeIssueClose, KindIssues, actions("closed"), nil,
			issue("Closed issue %s: %s")),
		on("issues.reopened", activity.TypeIssueReopen, KindIssues, actions("reopened"), nil,
			issue("Reopened issue %s: %s")),

		on("issue_comment.created", activity.TypeCommentCreate, KindIssueComment, actions("created"), nil,
			buildComment),

		// webhooks send submitted, the Events API and GH Archive send created
		on("pull_request_review.submitted", activity.TypeReviewSubmit, KindReview, actions("submitted", "created"), nil,
			buildReview),

		on("pull_request_review_thread.resolved", activity.TypeReviewThreadResolve, KindReviewThread, actions("resolved"), nil,
			buildThread),
		on("pull_request_review_thread.unresolved", activity.TypeReviewThreadUnresolve, KindReviewThread, actions("unresolved"), nil,
			buildThread),

		on("pull_request_review_comment.created", activity.TypeReviewCommentCreate, KindReviewComment, actions("created"), nil,
			buildReviewComment),

		on("create.branch", activity.TypeBranchCreate, KindCreate, nil,
			func(e *github.CreateEvent) bool { return e.GetRefType() == "branch" },
			func(e *github.CreateEvent, p *message.Printer) (activity.Data, string, error) {
				return activity.Branch{Name: e.GetRef(), Action: "create"}, p.Sprintf("Created branch %s", e.GetRef()), nil
			}),
		on("create.tag", activity.TypeTagCreate, KindCreate, nil,
			func(e *github.CreateEvent) bool { return e.GetRefType() == "tag" },
			func(e *github.CreateEvent, p *message.Printer) (activity.Data, string, error) {
				return activity.Tag{Name: e.GetRef(), Action: "create"}, p.Sprintf("Created tag %s", e.GetRef()), nil
			}),
		on("delete.branch", activity.TypeBranchDelete, KindDelete, nil,
			func(e *github.DeleteEvent) bool { return e.GetRefType() == "branch" },
			func(e *github.DeleteEvent, p *message.Printer) (activity.Data, string, error) {
				return activity.Branch{Name: e.GetRef(), Action: "delete"}, p.Sprintf("Deleted branch %s", e.GetRef()), nil
			}),
		on("delete.tag", activity.TypeTagDelete, KindDelete, nil,
			func(e *github.DeleteEvent) bool { return e.GetRefType() == "tag" },
			func(e *github.DeleteEvent, p *message.Printer) (activity.Data, string, error) {
				return activity.Tag{Name: e.GetRef(), Action: "delete"}, p.Sprintf("Deleted tag %s", e.GetRef()), nil
			}),
	}
}

func buildPush(e *github.PushEvent, p *message.Printer) (activity.Data, string, error) {
	d := activity.Push{
		Ref:             e.GetRef(),
		Branch:          strings.TrimPrefix(e.GetRef(), "refs/heads/"),
		Commits:         e.GetSize(),
		DistinctCommits: e.GetDistinctSize(),
		Forced:          e.GetForced(),
	}
	// webhook pushes omit size; archive pushes carry it
	if d.Commits == 0 {
		d.Commits = len(e.Commits)
	}
	if d.DistinctCommits == 0 {
		for _, c := range e.Commits {
			if c.GetDistinct() {
				d.DistinctCommits++
			}
		}
	}
	for _, c := range e.Commits {
		d.FilesAdded += len(c.Added)
		d.FilesRemoved += len(c.Removed)
		d.FilesModified += len(c.Modified)
	}
	return d, p.Sprintf(msgPushed, d.Commits, d.Branch), nil
}

func pullRequest(format string) func(*github.PullRequestEvent, *message.Printer) (activity.Data, string, error) {
	return func(e *github.PullRequestEvent, p *message.Printer) (activity.Data, string, error) {
		pr := e.GetPullRequest()
		if pr == nil {
			return nil, "", fmt.Errorf("pull_request: payload has no pull_request")
		}
		number := e.GetNumber()
		if number == 0 {
			number = pr.GetNumber()
		}
		d := activity.PullRequest{
			PRNumber: number,
			Title:    pr.GetTitle(),
			Action:   e.GetAction(),
			Merged:   pr.GetMerged(),
			Draft:    pr.GetDraft(),
			Metrics: activity.PullRequestMetrics{
				Additions:      pr.GetAdditions(),
				Deletions:      pr.GetDeletions(),
				ChangedFiles:   pr.GetChangedFiles(),
				Commits:        pr.GetCommits(),
				Comments:       pr.GetComments(),
				ReviewComments: pr.GetReviewComments(),
			},
			OpenedAt: pr.GetCreatedAt().Time,
			MergedAt: pr.GetMergedAt().Time,
			ClosedAt: pr.GetClosedAt().Time,
		}
		return d, p.Sprintf(format, ref(d.PRNumber), d.Title), nil
	}
}

func issue(format string) func(*github.IssuesEvent, *message.Printer) (activity.Data, string, error) {
	return func(e *github.IssuesEvent, p *message.Printer) (activity.Data, string, error) {
		is := e.GetIssue()
		if is == nil {
			return nil, "", fmt.Errorf("issues: payload has no issue")
		}
		d := activity.Issue{Number: is.GetNumber(), Title: is.GetTitle(), Action: e.GetAction()}
		for _, l := range is.Labels {
			if n := l.GetName(); n != "" {
				d.Labels = append(d.Labels, n)
			}
		}
		return d, p.Sprintf(format, ref(d.Number), d.Title), nil
	}
}

func buildComment(e *github.IssueCommentEvent, p *message.Printer) (activity.Data, string, error) {
	is := e.GetIssue()
	if is == nil {
		return nil, "", fmt.Errorf("issue_comment: payload has no issue")
	}
	d := activity.Comment{
		Number:        is.GetNumber(),
		Title:         is.GetTitle(),
		BodyLength:    len([]rune(e.GetComment().GetBody())),
		OnPullRequest: is.IsPullRequest(),
	}
	if d.OnPullRequest {
		return d, p.Sprintf("Commented on pull request %s", ref(d.Number)), nil
	}
	return d, p.Sprintf("Commented on issue %s", ref(d.Number)), nil
}

func buildReview(e *github.PullRequestReviewEvent, p *message.Printer) (activity.Data, string, error) {
	pr := e.GetPullRequest()
	if pr == nil || e.GetReview() == nil {
		return nil, "", fmt.Errorf("pull_request_review: payload has no review")
	}
	d := activity.Review{
		PRNumber:   pr.GetNumber(),
		Title:      pr.GetTitle(),
		State:      strings.ToLower(e.GetReview().GetState()),
		BodyLength: len([]rune(e.GetReview().GetBody())),
	}
	switch d.State {
	case "approved":
		return d, p.Sprintf("Approved pull request %s", ref(d.PRNumber)), nil
	case "changes_requested":
		return d, p.Sprintf("Requested changes on pull request %s", ref(d.PRNumber)), nil
	default:
		return d, p.Sprintf("Reviewed pull request %s", ref(d.PRNumber)), nil
	}
}

func buildThread(e *github.PullRequestReviewThreadEvent, p *message.Printer) (activity.Data, string, error) {
	pr := e.GetPullRequest()
	if pr == nil {
		return nil, "", fmt.Errorf("pull_request_review_thread: payload has no pull_request")
	}
	d := activity.ReviewThread{
		PRNumber: pr.GetNumber(),
		Title:    pr.GetTitle(),
		Action:   e.GetAction(),
	}
	if th := e.GetThread(); th != nil {
		d.Comments = len(th.Comments)
	}
	if d.Action == "resolved" {
		return d, p.Sprintf(msgThreadResolved, d.Comments, ref(d.PRNumber)), nil
	}
	return d, p.Sprintf("Reopened a review thread on pull request %s", ref(d.PRNumber)), nil
}

func buildReviewComment(e *github.PullRequestReviewCommentEvent, p *message.Printer) (activity.Data, string, error) {
	pr, c := e.GetPullRequest(), e.GetComment()
	if pr == nil || c == nil {
		return nil, "", fmt.Errorf("pull_request_review_comment: payload has no comment")
	}
	d := activity.ReviewComment{
		PRNumber:   pr.GetNumber(),
		Title:      pr.GetTitle(),
		Path:       c.GetPath(),
		BodyLength: len([]rune(c.GetBody())),
		InReplyTo:  c.GetInReplyTo(),
	}
	if d.Path != "" {
		return d, p.Sprintf("Commented on %s in pull request %s", d.Path, ref(d.PRNumber)), nil
	}
	return d, p.Sprintf("Commented on pull request %s", ref(d.PRNumber)), nil
}

// ref renders an issue or pull request number without locale grouping
func ref(n int) string { return "#" + strconv.Itoa(n) }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
