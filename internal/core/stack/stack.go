// Package stack groups a user's activities into pull request timelines for the feed.
// It is a pure function over a snapshot; running it twice on the same input yields the same feed
package stack

import (
	"sort"
	"strconv"
	"time"

	"devquest/internal/core/activity"
)

// ItemKind tags a feed item
type ItemKind string

// Feed item kinds
const (
	ItemSingle ItemKind = "single"
	ItemStack  ItemKind = "stack"
)

// State is the derived lifecycle state of a stacked pull request
type State string

// Pull request states
const (
	StateOpen   State = "open"
	StateMerged State = "merged"
	StateClosed State = "closed"
)

// Stack is the timeline of one pull request
type Stack struct {
	ID              string              `json:"id"`
	Repo            string              `json:"repo"`
	PRNumber        int                 `json:"pr_number"`
	PRTitle         string              `json:"pr_title,omitempty"`
	Activities      []activity.Activity `json:"activities"`
	TotalXP         int64               `json:"total_xp"`
	FinalState      State               `json:"final_state"`
	FirstActivityAt time.Time           `json:"first_activity_at"`
	LastUpdatedAt   time.Time           `json:"last_updated_at"`
}

// FeedItem is either a single activity or a stack; exactly one of the pointers is set
type FeedItem struct {
	Kind     ItemKind           `json:"kind"`
	Activity *activity.Activity `json:"activity,omitempty"`
	Stack    *Stack             `json:"stack,omitempty"`
}

// SortTime is the recency used to order the feed
func (f FeedItem) SortTime() time.Time {
	if f.Stack != nil {
		return f.Stack.LastUpdatedAt
	}
	if f.Activity != nil {
		return f.Activity.CreatedAt
	}
	return time.Time{}
}

// ID is the stack key or the activity id
func (f FeedItem) ID() string {
	if f.Stack != nil {
		return f.Stack.ID
	}
	if f.Activity != nil {
		return f.Activity.ID
	}
	return ""
}

// stackable types belong on a pull request timeline; comment_create only when on a pull request
var stackable = map[activity.Type]struct{}{
	activity.TypePullRequestCreate:     {},
	activity.TypePullRequestMerge:      {},
	activity.TypePullRequestClose:      {},
	activity.TypePullRequestReopen:     {},
	activity.TypePullRequestReady:      {},
	activity.TypeReviewSubmit:          {},
	activity.TypeReviewThreadResolve:   {},
	activity.TypeReviewThreadUnresolve: {},
	activity.TypeReviewCommentCreate:   {},
	activity.TypeCommentCreate:         {},
}

// Key returns the stack key repo:prNumber, or false when a is not stackable
func Key(a activity.Activity) (string, bool) {
	if _, ok := stackable[a.Type]; !ok || a.Repo == "" {
		return "", false
	}
	ref, ok := a.Data.(activity.PullRequestRef)
	if !ok {
		return "", false
	}
	n, ok := ref.PullNumber()
	if !ok {
		return "", false
	}
	return a.Repo + ":" + strconv.Itoa(n), true
}

// Build turns activities in any order into a feed ordered by recency, newest first
// groups of one degrade to single items
func Build(activities []activity.Activity) []FeedItem {
	groups := map[string][]activity.Activity{}
	var order []string
	var singles []activity.Activity

	for _, a := range activities {
		k, ok := Key(a)
		if !ok {
			singles = append(singles, a)
			continue
		}
		if _, seen := groups[k]; !seen {
			order = append(order, k)
		}
		groups[k] = append(groups[k], a)
	}

	feed := make([]FeedItem, 0, len(order)+len(singles))
	for _, k := range order {
		g := groups[k]
		if len(g) == 1 {
			singles = append(singles, g[0])
			continue
		}
		s := newStack(k, g)
		feed = append(feed, FeedItem{Kind: ItemStack, Stack: &s})
	}
	for i := range singles {
		a := singles[i]
		feed = append(feed, FeedItem{Kind: ItemSingle, Activity: &a})
	}

	sort.SliceStable(feed, func(i, j int) bool {
		ti, tj := feed[i].SortTime(), feed[j].SortTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return feed[i].ID() < feed[j].ID()
	})
	return feed
}

func newStack(key string, group []activity.Activity) Stack {
	acts := append([]activity.Activity(nil), group...)
	sort.SliceStable(acts, func(i, j int) bool {
		if !acts[i].CreatedAt.Equal(acts[j].CreatedAt) {
			return acts[i].CreatedAt.Before(acts[j].CreatedAt)
		}
		return acts[i].ID < acts[j].ID
	})

	s := Stack{
		ID:              key,
		Repo:            acts[0].Repo,
		Activities:      acts,
		FinalState:      finalState(acts),
		FirstActivityAt: acts[0].CreatedAt,
		LastUpdatedAt:   acts[len(acts)-1].CreatedAt,
	}
	for _, a := range acts {
		s.TotalXP += a.EarnedXP()
		ref, _ := a.Data.(activity.PullRequestRef)
		if ref == nil {
			continue
		}
		if s.PRNumber == 0 {
			s.PRNumber, _ = ref.PullNumber()
		}
		if s.PRTitle == "" {
			s.PRTitle = ref.PullTitle()
		}
	}
	return s
}

// finalState scans newest to oldest for terminal actions: merged beats closed beats open.
// Reopen is not terminal, so a closed pull request stays closed after it
func finalState(acts []activity.Activity) State {
	state := StateOpen
	for i := len(acts) - 1; i >= 0; i-- {
		switch acts[i].Type {
		case activity.TypePullRequestMerge:
			return StateMerged
		case activity.TypePullRequestClose:
			state = StateClosed
		}
	}
	return state
}
