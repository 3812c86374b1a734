// Package activity defines the canonical activity taxonomy and the typed data each activity carries
package activity

// Type is the canonical kind of a classified activity
type Type string

// Activity types, stable values persisted with every activity row
const (
	TypeCodePush              Type = "code_push"
	TypePullRequestCreate     Type = "pull_request_create"
	TypePullRequestMerge      Type = "pull_request_merge"
	TypePullRequestClose      Type = "pull_request_close"
	TypePullRequestReopen     Type = "pull_request_reopen"
	TypePullRequestReady      Type = "pull_request_ready"
	TypeIssueCreate           Type = "issue_create"
	TypeIssueClose            Type = "issue_close"
	TypeIssueReopen           Type = "issue_reopen"
	TypeCommentCreate         Type = "comment_create"
	TypeReviewSubmit          Type = "review_submit"
	TypeReviewThreadResolve   Type = "review_thread_resolve"
	TypeReviewThreadUnresolve Type = "review_thread_unresolve"
	TypeReviewCommentCreate   Type = "review_comment_create"
	TypeBranchCreate          Type = "branch_create"
	TypeBranchDelete          Type = "branch_delete"
	TypeTagCreate             Type = "tag_create"
	TypeTagDelete             Type = "tag_delete"
)

// DataKind tags the variant of Data an activity carries
type DataKind string

// Data variants
const (
	KindPush          DataKind = "push"
	KindPullRequest   DataKind = "pull_request"
	KindIssue         DataKind = "issue"
	KindComment       DataKind = "comment"
	KindReview        DataKind = "review"
	KindReviewThread  DataKind = "review_thread"
	KindReviewComment DataKind = "review_comment"
	KindBranch        DataKind = "branch"
	KindTag           DataKind = "tag"
)

// types lists every activity type in declaration order
var types = []Type{
	TypeCodePush,
	TypePullRequestCreate,
	TypePullRequestMerge,
	TypePullRequestClose,
	TypePullRequestReopen,
	TypePullRequestReady,
	TypeIssueCreate,
	TypeIssueClose,
	TypeIssueReopen,
	TypeCommentCreate,
	TypeReviewSubmit,
	TypeReviewThreadResolve,
	TypeReviewThreadUnresolve,
	TypeReviewCommentCreate,
	TypeBranchCreate,
	TypeBranchDelete,
	TypeTagCreate,
	TypeTagDelete,
}

var kindOf = map[Type]DataKind{
	TypeCodePush:              KindPush,
	TypePullRequestCreate:     KindPullRequest,
	TypePullRequestMerge:      KindPullRequest,
	TypePullRequestClose:      KindPullRequest,
	TypePullRequestReopen:     KindPullRequest,
	TypePullRequestReady:      KindPullRequest,
	TypeIssueCreate:           KindIssue,
	TypeIssueClose:            KindIssue,
	TypeIssueReopen:           KindIssue,
	TypeCommentCreate:         KindComment,
	TypeReviewSubmit:          KindReview,
	TypeReviewThreadResolve:   KindReviewThread,
	TypeReviewThreadUnresolve: KindReviewThread,
	TypeReviewCommentCreate:   KindReviewComment,
	TypeBranchCreate:          KindBranch,
	TypeBranchDelete:          KindBranch,
	TypeTagCreate:             KindTag,
	TypeTagDelete:             KindTag,
}

// Types returns all known activity types in a stable order
func Types() []Type {
	return append([]Type(nil), types...)
}

// KindOf returns the data variant an activity of type t must carry
func KindOf(t Type) (DataKind, bool) {
	k, ok := kindOf[t]
	return k, ok
}

// Valid reports whether t is a known activity type
func (t Type) Valid() bool {
	_, ok := kindOf[t]
	return ok
}

// PullRequestLifecycle reports whether t moves a pull request between states
func (t Type) PullRequestLifecycle() bool {
	switch t {
	case TypePullRequestCreate, TypePullRequestMerge, TypePullRequestClose,
		TypePullRequestReopen, TypePullRequestReady:
		return true
	}
	return false
}
