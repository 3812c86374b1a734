package classify

import "strings"

// Webhook event names the chain understands
const (
	KindPush          = "push"
	KindPullRequest   = "pull_request"
	KindIssues        = "issues"
	KindIssueComment  = "issue_comment"
	KindReview        = "pull_request_review"
	KindReviewThread  = "pull_request_review_thread"
	KindReviewComment = "pull_request_review_comment"
	KindCreate        = "create"
	KindDelete        = "delete"
)

// archiveKinds maps GH Archive / Events API type names onto webhook names
var archiveKinds = map[string]string{
	"PushEvent":                     KindPush,
	"PullRequestEvent":              KindPullRequest,
	"IssuesEvent":                   KindIssues,
	"IssueCommentEvent":             KindIssueComment,
	"PullRequestReviewEvent":        KindReview,
	"PullRequestReviewThreadEvent":  KindReviewThread,
	"PullRequestReviewCommentEvent": KindReviewComment,
	"CreateEvent":                   KindCreate,
	"DeleteEvent":                   KindDelete,
}

// NormalizeKind accepts either a webhook event name or an Events API type name
func NormalizeKind(kind string) string {
	k := strings.TrimSpace(kind)
	if w, ok := archiveKinds[k]; ok {
		return w
	}
	return strings.ToLower(k)
}
