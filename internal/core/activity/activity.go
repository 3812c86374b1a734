package activity

import (
	"encoding/json"
	"time"

	perr "devquest/internal/platform/errors"
)

// RawEvent is a provider event as handed over by the webhook receiver
// it is classifier input only and is never mutated
type RawEvent struct {
	ExternalID        string          `json:"external_id"`
	ProviderEventKind string          `json:"provider_event_kind"`
	Action            string          `json:"action,omitempty"`
	Payload           json.RawMessage `json:"payload"`
	ReceivedAt        time.Time       `json:"received_at"`
}

// XPBreakdownItem is one justified quantum of experience
type XPBreakdownItem struct {
	Description string `json:"description"`
	XP          int64  `json:"xp"`
}

// XPResult is the scored outcome of one activity
// TotalXP always equals the sum of the breakdown
type XPResult struct {
	TotalXP   int64             `json:"total_xp"`
	Breakdown []XPBreakdownItem `json:"breakdown"`
}

// Zero is the result used when scoring is not possible
func Zero() XPResult { return XPResult{Breakdown: []XPBreakdownItem{}} }

// Sum builds a result from line items, keeping TotalXP consistent
func Sum(items ...XPBreakdownItem) XPResult {
	out := XPResult{Breakdown: make([]XPBreakdownItem, 0, len(items))}
	for _, it := range items {
		out.TotalXP += it.XP
		out.Breakdown = append(out.Breakdown, it)
	}
	return out
}

// ProcessingResult is attached to an activity once its XP has been committed
type ProcessingResult struct {
	Processed   bool      `json:"processed"`
	ProcessedAt time.Time `json:"processed_at"`
	XP          XPResult  `json:"xp"`
}

// Activity is the canonical record of one provider event attributed to one user
type Activity struct {
	ID                string            `json:"id"`
	UserID            string            `json:"user_id"`
	Type              Type              `json:"activity_type"`
	EventID           string            `json:"event_id"`
	ProviderEventKind string            `json:"provider_event_kind"`
	Repo              string            `json:"repo,omitempty"`
	Description       string            `json:"description"`
	Data              Data              `json:"-"`
	ProcessingResult  *ProcessingResult `json:"processing_result,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// EarnedXP is the XP committed for the activity, zero while unprocessed
func (a Activity) EarnedXP() int64 {
	if a.ProcessingResult == nil {
		return 0
	}
	return a.ProcessingResult.XP.TotalXP
}

// Validate checks the activity is internally consistent
func Validate(a Activity) error {
	if a.EventID == "" {
		return perr.InvalidArgf("activity: event id is required")
	}
	want, ok := KindOf(a.Type)
	if !ok {
		return perr.InvalidArgf("activity: unknown type %q", a.Type)
	}
	if a.Data == nil {
		return perr.InvalidArgf("activity: %s carries no data", a.Type)
	}
	if got := a.Data.Kind(); got != want {
		return perr.InvalidArgf("activity: %s carries %s data, want %s", a.Type, got, want)
	}
	return nil
}

type activityJSON struct {
	alias
	Data json.RawMessage `json:"data"`
}

type alias Activity

// MarshalJSON encodes the activity with its tagged data envelope
func (a Activity) MarshalJSON() ([]byte, error) {
	raw, err := EncodeData(a.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(activityJSON{alias: alias(a), Data: raw})
}

// UnmarshalJSON decodes the activity and its tagged data envelope
func (a *Activity) UnmarshalJSON(b []byte) error {
	var in activityJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*a = Activity(in.alias)
	if len(in.Data) == 0 || string(in.Data) == "null" {
		a.Data = nil
		return nil
	}
	d, err := DecodeData(in.Data)
	if err != nil {
		return err
	}
	a.Data = d
	return nil
}
