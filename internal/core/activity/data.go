package activity

import "time"

// Data is the closed set of structured payloads an activity can carry
type Data interface {
	Kind() DataKind
	Facts() Facts
	isData()
}

// PullRequestRef is implemented by variants that point at a pull request
type PullRequestRef interface {
	// PullNumber returns the pull request number and whether the variant targets one
	PullNumber() (int, bool)
	// PullTitle returns the pull request title when the payload carried it
	PullTitle() string
}

// Facts are the named values a variant exposes to declarative bonus rules
type Facts struct {
	Numbers map[string]float64
	Flags   map[string]bool
	Times   map[string]time.Time
}

// Number returns a numeric fact
func (f Facts) Number(name string) (float64, bool) {
	v, ok := f.Numbers[name]
	return v, ok
}

// Flag returns a boolean fact
func (f Facts) Flag(name string) (bool, bool) {
	v, ok := f.Flags[name]
	return v, ok
}

// Time returns a timestamp fact, zero times are reported as absent
func (f Facts) Time(name string) (time.Time, bool) {
	v, ok := f.Times[name]
	if !ok || v.IsZero() {
		return time.Time{}, false
	}
	return v, true
}

// Push is a code push to a branch
type Push struct {
	Ref             string `json:"ref"`
	Branch          string `json:"branch"`
	Commits         int    `json:"commits"`
	DistinctCommits int    `json:"distinct_commits"`
	Forced          bool   `json:"forced"`
	FilesAdded      int    `json:"files_added"`
	FilesRemoved    int    `json:"files_removed"`
	FilesModified   int    `json:"files_modified"`
}

// Kind implements Data
func (Push) Kind() DataKind { return KindPush }

// Facts implements Data
func (p Push) Facts() Facts {
	return Facts{
		Numbers: map[string]float64{
			"commits":          float64(p.Commits),
			"distinct_commits": float64(p.DistinctCommits),
			"files_added":      float64(p.FilesAdded),
			"files_removed":    float64(p.FilesRemoved),
			"files_modified":   float64(p.FilesModified),
			"files_changed":    float64(p.FilesAdded + p.FilesRemoved + p.FilesModified),
		},
		Flags: map[string]bool{"forced": p.Forced},
	}
}

func (Push) isData() {}

// PullRequestMetrics are the size counters GitHub reports on a pull request
type PullRequestMetrics struct {
	Additions      int `json:"additions"`
	Deletions      int `json:"deletions"`
	ChangedFiles   int `json:"changed_files"`
	Commits        int `json:"commits"`
	Comments       int `json:"comments"`
	ReviewComments int `json:"review_comments"`
}

// PullRequest is a pull request lifecycle transition
type PullRequest struct {
	PRNumber int                `json:"pr_number"`
	Title    string             `json:"title"`
	Action   string             `json:"action"`
	Merged   bool               `json:"merged"`
	Draft    bool               `json:"draft"`
	Metrics  PullRequestMetrics `json:"metrics"`
	OpenedAt time.Time          `json:"opened_at,omitzero"`
	MergedAt time.Time          `json:"merged_at,omitzero"`
	ClosedAt time.Time          `json:"closed_at,omitzero"`
}

// Kind implements Data
func (PullRequest) Kind() DataKind { return KindPullRequest }

// Facts implements Data
func (p PullRequest) Facts() Facts {
	m := p.Metrics
	return Facts{
		Numbers: map[string]float64{
			"additions":       float64(m.Additions),
			"deletions":       float64(m.Deletions),
			"changed_lines":   float64(m.Additions + m.Deletions),
			"changed_files":   float64(m.ChangedFiles),
			"commits":         float64(m.Commits),
			"comments":        float64(m.Comments),
			"review_comments": float64(m.ReviewComments),
		},
		Flags: map[string]bool{
			"merged": p.Merged,
			"draft":  p.Draft,
		},
		Times: map[string]time.Time{
			"opened_at": p.OpenedAt,
			"merged_at": p.MergedAt,
			"closed_at": p.ClosedAt,
		},
	}
}

// PullNumber implements PullRequestRef
func (p PullRequest) PullNumber() (int, bool) { return p.PRNumber, p.PRNumber > 0 }

// PullTitle implements PullRequestRef
func (p PullRequest) PullTitle() string { return p.Title }

func (PullRequest) isData() {}

// Issue is an issue lifecycle transition
type Issue struct {
	Number int      `json:"number"`
	Title  string   `json:"title"`
	Action string   `json:"action"`
	Labels []string `json:"labels,omitempty"`
}

// Kind implements Data
func (Issue) Kind() DataKind { return KindIssue }

// Facts implements Data
func (i Issue) Facts() Facts {
	return Facts{
		Numbers: map[string]float64{"labels": float64(len(i.Labels))},
		Flags:   map[string]bool{"labeled": len(i.Labels) > 0},
	}
}

func (Issue) isData() {}

// Comment is a comment on an issue or on a pull request conversation
type Comment struct {
	Number        int    `json:"number"`
	Title         string `json:"title"`
	BodyLength    int    `json:"body_length"`
	OnPullRequest bool   `json:"on_pull_request"`
}

// Kind implements Data
func (Comment) Kind() DataKind { return KindComment }

// Facts implements Data
func (c Comment) Facts() Facts {
	return Facts{
		Numbers: map[string]float64{"body_length": float64(c.BodyLength)},
		Flags:   map[string]bool{"on_pull_request": c.OnPullRequest},
	}
}

// PullNumber implements PullRequestRef; issue comments do not target a pull request
func (c Comment) PullNumber() (int, bool) { return c.Number, c.OnPullRequest && c.Number > 0 }

// PullTitle implements PullRequestRef
func (c Comment) PullTitle() string {
	if !c.OnPullRequest {
		return ""
	}
	return c.Title
}

func (Comment) isData() {}

// Review is a submitted pull request review
type Review struct {
	PRNumber   int    `json:"pr_number"`
	Title      string `json:"title"`
	State      string `json:"state"`
	BodyLength int    `json:"body_length"`
}

// Kind implements Data
func (Review) Kind() DataKind { return KindReview }

// Facts implements Data
func (r Review) Facts() Facts {
	return Facts{
		Numbers: map[string]float64{"body_length": float64(r.BodyLength)},
		Flags: map[string]bool{
			"approved":          r.State == "approved",
			"changes_requested": r.State == "changes_requested",
			"commented":         r.State == "commented",
		},
	}
}

// PullNumber implements PullRequestRef
func (r Review) PullNumber() (int, bool) { return r.PRNumber, r.PRNumber > 0 }

// PullTitle implements PullRequestRef
func (r Review) PullTitle() string { return r.Title }

func (Review) isData() {}

// ReviewThread is a review conversation being resolved or reopened
type ReviewThread struct {
	PRNumber int    `json:"pr_number"`
	Title    string `json:"title"`
	Action   string `json:"action"`
	Comments int    `json:"comments"`
}

// Kind implements Data
func (ReviewThread) Kind() DataKind { return KindReviewThread }

// Facts implements Data
func (r ReviewThread) Facts() Facts {
	return Facts{
		Numbers: map[string]float64{"comments": float64(r.Comments)},
		Flags:   map[string]bool{"resolved": r.Action == "resolved"},
	}
}

// PullNumber implements PullRequestRef
func (r ReviewThread) PullNumber() (int, bool) { return r.PRNumber, r.PRNumber > 0 }

// PullTitle implements PullRequestRef
func (r ReviewThread) PullTitle() string { return r.Title }

func (ReviewThread) isData() {}

// ReviewComment is an inline comment on a pull request diff
type ReviewComment struct {
	PRNumber   int    `json:"pr_number"`
	Title      string `json:"title"`
	Path       string `json:"path"`
	BodyLength int    `json:"body_length"`
	InReplyTo  int64  `json:"in_reply_to,omitempty"`
}

// Kind implements Data
func (ReviewComment) Kind() DataKind { return KindReviewComment }

// Facts implements Data
func (r ReviewComment) Facts() Facts {
	return Facts{
		Numbers: map[string]float64{"body_length": float64(r.BodyLength)},
		Flags:   map[string]bool{"reply": r.InReplyTo != 0},
	}
}

// PullNumber implements PullRequestRef
func (r ReviewComment) PullNumber() (int, bool) { return r.PRNumber, r.PRNumber > 0 }

// PullTitle implements PullRequestRef
func (r ReviewComment) PullTitle() string { return r.Title }

func (ReviewComment) isData() {}

// Branch is a branch being created or deleted
type Branch struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

// Kind implements Data
func (Branch) Kind() DataKind { return KindBranch }

// Facts implements Data
func (b Branch) Facts() Facts {
	return Facts{Flags: map[string]bool{"created": b.Action == "create"}}
}

func (Branch) isData() {}

// Tag is a tag being created or deleted
type Tag struct {
	Name   string `json:"name"`
	Action string `json:"action"`
}

// Kind implements Data
func (Tag) Kind() DataKind { return KindTag }

// Facts implements Data
func (t Tag) Facts() Facts {
	return Facts{Flags: map[string]bool{"created": t.Action == "create"}}
}

func (Tag) isData() {}
