package stack

import (
	"math/rand"
	"testing"
	"time"

	"devquest/internal/core/activity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func act(id string, ty activity.Type, repo string, data activity.Data, created time.Time, xp int64) activity.Activity {
	return activity.Activity{
		ID:               id,
		Type:             ty,
		Repo:             repo,
		Data:             data,
		CreatedAt:        created,
		ProcessingResult: &activity.ProcessingResult{Processed: true, XP: activity.Sum(activity.XPBreakdownItem{Description: "base", XP: xp})},
	}
}

func TestBuild_PullRequestLifecycle(t *testing.T) {
	in := []activity.Activity{
		act("m", activity.TypePullRequestMerge, "octo/app", activity.PullRequest{PRNumber: 7, Merged: true}, at(3), 60),
		act("o", activity.TypePullRequestCreate, "octo/app", activity.PullRequest{PRNumber: 7, Title: "Add feed"}, at(1), 25),
		act("c", activity.TypeCommentCreate, "octo/app", activity.Comment{Number: 7, OnPullRequest: true}, at(2), 5),
	}
	feed := Build(in)
	require.Len(t, feed, 1)
	require.Equal(t, ItemStack, feed[0].Kind)
	s := feed[0].Stack
	assert.Equal(t, "octo/app:7", s.ID)
	assert.Equal(t, StateMerged, s.FinalState)
	assert.Equal(t, at(1), s.FirstActivityAt)
	assert.Equal(t, at(3), s.LastUpdatedAt)
	assert.Equal(t, int64(90), s.TotalXP)
	assert.Equal(t, "Add feed", s.PRTitle)
	assert.Equal(t, 7, s.PRNumber)
	assert.Equal(t, []string{"o", "c", "m"}, ids(s.Activities))
}

func TestBuild_SingletonDegrades(t *testing.T) {
	feed := Build([]activity.Activity{
		act("i", activity.TypeIssueCreate, "octo/app", activity.Issue{Number: 3}, at(0), 15),
		act("p", activity.TypePullRequestCreate, "octo/app", activity.PullRequest{PRNumber: 9}, at(1), 25),
	})
	require.Len(t, feed, 2)
	for _, f := range feed {
		assert.Equal(t, ItemSingle, f.Kind)
		assert.Nil(t, f.Stack)
		require.NotNil(t, f.Activity)
	}
	assert.Equal(t, "p", feed[0].ID(), "newest first")
}

func TestBuild_IssueCommentsDoNotStack(t *testing.T) {
	feed := Build([]activity.Activity{
		act("c1", activity.TypeCommentCreate, "octo/app", activity.Comment{Number: 4}, at(0), 5),
		act("c2", activity.TypeCommentCreate, "octo/app", activity.Comment{Number: 4}, at(1), 5),
	})
	require.Len(t, feed, 2)
	assert.Equal(t, ItemSingle, feed[0].Kind)
	assert.Equal(t, ItemSingle, feed[1].Kind)
}

func TestBuild_KeyNeedsRepo(t *testing.T) {
	feed := Build([]activity.Activity{
		act("a", activity.TypePullRequestCreate, "", activity.PullRequest{PRNumber: 1}, at(0), 1),
		act("b", activity.TypePullRequestClose, "", activity.PullRequest{PRNumber: 1}, at(1), 1),
	})
	assert.Len(t, feed, 2)
}

func TestBuild_SameNumberDifferentRepos(t *testing.T) {
	feed := Build([]activity.Activity{
		act("a1", activity.TypePullRequestCreate, "octo/a", activity.PullRequest{PRNumber: 1}, at(0), 1),
		act("a2", activity.TypeReviewSubmit, "octo/a", activity.Review{PRNumber: 1}, at(2), 1),
		act("b1", activity.TypePullRequestCreate, "octo/b", activity.PullRequest{PRNumber: 1}, at(1), 1),
		act("b2", activity.TypeReviewCommentCreate, "octo/b", activity.ReviewComment{PRNumber: 1, Title: "B"}, at(3), 1),
	})
	require.Len(t, feed, 2)
	assert.Equal(t, "octo/b:1", feed[0].ID())
	assert.Equal(t, "octo/a:1", feed[1].ID())
	assert.Equal(t, "B", feed[0].Stack.PRTitle)
}

func TestFinalState(t *testing.T) {
	pr := activity.PullRequest{PRNumber: 2}
	cases := []struct {
		name string
		seq  []activity.Type
		want State
	}{
		{"open", []activity.Type{activity.TypePullRequestCreate, activity.TypeReviewSubmit}, StateOpen},
		{"closed", []activity.Type{activity.TypePullRequestCreate, activity.TypePullRequestClose}, StateClosed},
		{"reopen is not terminal", []activity.Type{activity.TypePullRequestCreate, activity.TypePullRequestClose, activity.TypePullRequestReopen}, StateClosed},
		{"reopen alone stays open", []activity.Type{activity.TypePullRequestCreate, activity.TypePullRequestReopen}, StateOpen},
		{"merge after reopen", []activity.Type{activity.TypePullRequestClose, activity.TypePullRequestReopen, activity.TypePullRequestMerge}, StateMerged},
		{"merge beats later close", []activity.Type{activity.TypePullRequestMerge, activity.TypePullRequestClose}, StateMerged},
		{"closed again", []activity.Type{activity.TypePullRequestClose, activity.TypePullRequestReopen, activity.TypePullRequestClose}, StateClosed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var in []activity.Activity
			for i, ty := range c.seq {
				in = append(in, act(string(rune('a'+i)), ty, "r/r", pr, at(i), 1))
			}
			feed := Build(in)
			require.Len(t, feed, 1)
			assert.Equal(t, c.want, feed[0].Stack.FinalState)
		})
	}
}

func TestBuild_DeterministicAcrossInputOrder(t *testing.T) {
	in := []activity.Activity{
		act("1", activity.TypeCodePush, "r/r", activity.Push{Commits: 1}, at(0), 10),
		act("2", activity.TypePullRequestCreate, "r/r", activity.PullRequest{PRNumber: 5}, at(1), 25),
		act("3", activity.TypeReviewSubmit, "r/r", activity.Review{PRNumber: 5}, at(2), 30),
		act("4", activity.TypeBranchCreate, "r/r", activity.Branch{Name: "x"}, at(2), 5),
		act("5", activity.TypePullRequestMerge, "r/r", activity.PullRequest{PRNumber: 5}, at(4), 50),
		act("6", activity.TypeTagCreate, "r/r", activity.Tag{Name: "v1"}, at(4), 15),
	}
	want := Build(in)
	assert.Equal(t, want, Build(in))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]activity.Activity(nil), in...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Build(shuffled))
	}

	require.Len(t, want, 4)
	assert.Equal(t, "6", want[0].ID(), "ties break on id")
	assert.Equal(t, "r/r:5", want[1].ID())
}

func TestBuild_Empty(t *testing.T) {
	assert.Empty(t, Build(nil))
}

func TestKey(t *testing.T) {
	k, ok := Key(act("x", activity.TypeReviewThreadResolve, "o/r", activity.ReviewThread{PRNumber: 12}, at(0), 0))
	assert.True(t, ok)
	assert.Equal(t, "o/r:12", k)

	_, ok = Key(act("y", activity.TypeCodePush, "o/r", activity.Push{}, at(0), 0))
	assert.False(t, ok)
}

func ids(acts []activity.Activity) []string {
	out := make([]string, len(acts))
	for i, a := range acts {
		out[i] = a.ID
	}
	return out
}
