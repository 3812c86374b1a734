package activity

import (
	"encoding/json"
	"testing"
	"time"

	perr "devquest/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryTypeHasAKind(t *testing.T) {
	for _, ty := range Types() {
		k, ok := KindOf(ty)
		require.Truef(t, ok, "type %s has no data kind", ty)
		assert.NotEmpty(t, k)
		assert.True(t, ty.Valid())
	}
	assert.False(t, Type("star_create").Valid())
}

func TestValidate_KindMustMatchType(t *testing.T) {
	a := Activity{EventID: "e1", Type: TypeCodePush, Data: Push{Commits: 1}}
	require.NoError(t, Validate(a))

	a.Data = Issue{Number: 3}
	err := Validate(a)
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	a.Data = nil
	assert.Error(t, Validate(a))

	a = Activity{Type: TypeCodePush, Data: Push{}}
	assert.Error(t, Validate(a), "missing event id")
}

func TestActivityJSON_CarriesTaggedData(t *testing.T) {
	merged := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)
	in := Activity{
		ID:      "a1",
		UserID:  "u1",
		Type:    TypePullRequestMerge,
		EventID: "gh-1",
		Repo:    "octo/repo",
		Data: PullRequest{
			PRNumber: 7,
			Title:    "Add feed",
			Action:   "closed",
			Merged:   true,
			Metrics:  PullRequestMetrics{Additions: 10, Deletions: 2},
			MergedAt: merged,
		},
		ProcessingResult: &ProcessingResult{Processed: true, XP: Sum(XPBreakdownItem{"base", 50})},
		CreatedAt:        merged,
	}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"data":{"type":"pull_request"`)

	var out Activity
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in.Type, out.Type)
	assert.Equal(t, in.Data, out.Data)
	assert.Equal(t, int64(50), out.EarnedXP())
}

func TestEncodeData_EmptyVariant(t *testing.T) {
	raw, err := EncodeData(Branch{})
	require.NoError(t, err)

	d, err := DecodeData(raw)
	require.NoError(t, err)
	assert.Equal(t, KindBranch, d.Kind())
}

func TestDecodeData_UnknownTag(t *testing.T) {
	_, err := DecodeData([]byte(`{"type":"wiki"}`))
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeJSON))
}

func TestFacts(t *testing.T) {
	f := Push{Commits: 3, FilesAdded: 1, FilesModified: 2}.Facts()
	n, ok := f.Number("files_changed")
	require.True(t, ok)
	assert.Equal(t, 3.0, n)

	_, ok = PullRequest{}.Facts().Time("merged_at")
	assert.False(t, ok, "zero timestamps are absent")

	num, onPR := Comment{Number: 4, OnPullRequest: false}.PullNumber()
	assert.Equal(t, 4, num)
	assert.False(t, onPR)
}

func TestSum(t *testing.T) {
	r := Sum(XPBreakdownItem{"base", 10}, XPBreakdownItem{"bonus", 5})
	assert.Equal(t, int64(15), r.TotalXP)
	assert.Len(t, r.Breakdown, 2)

	z := Zero()
	assert.Zero(t, z.TotalXP)
	assert.NotNil(t, z.Breakdown)
}
