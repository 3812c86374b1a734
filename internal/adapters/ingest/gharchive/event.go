package gharchive

import (
	"encoding/json"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"devquest/internal/core/activity"
)

// EventEnvelope is the outer event format GH Archive stores per line
// Payload stays raw for the classifier
type EventEnvelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Actor     Actor           `json:"actor"`
	Repo      Repo            `json:"repo"`
	Payload   json.RawMessage `json:"payload"`
	Public    bool            `json:"public"`
	CreatedAt time.Time       `json:"created_at"`
}

// Actor is the user who triggered the event
type Actor struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// Repo is the repository the event occurred in
type Repo struct {
	ID   int64  `json:"id"`
	Name string `json:"name"` // owner/name
}

// UserID is the actor id as text
// old archives dropped actor.id, those users get a stable negative id from the login
func (e EventEnvelope) UserID() string {
	if e.Actor.ID != 0 {
		return strconv.FormatInt(e.Actor.ID, 10)
	}
	return strconv.FormatInt(SyntheticActorID(e.Actor.Login), 10)
}

// ExternalID namespaces archive ids so replays never collide with webhook deliveries
func (e EventEnvelope) ExternalID() string { return "gha:" + e.ID }

// RawEvent converts the envelope into classifier input
// archive payloads omit the repository, it is copied in from the envelope
func (e EventEnvelope) RawEvent() activity.RawEvent {
	return activity.RawEvent{
		ExternalID:        e.ExternalID(),
		ProviderEventKind: e.Type,
		Payload:           withRepository(e.Payload, e.Repo.Name),
		ReceivedAt:        e.CreatedAt.UTC(),
	}
}

func withRepository(payload json.RawMessage, name string) json.RawMessage {
	if name == "" {
		return payload
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(payload, &m); err != nil || m == nil {
		return payload
	}
	if _, ok := m["repository"]; ok {
		return payload
	}
	repo, err := json.Marshal(struct {
		FullName string `json:"full_name"`
	}{name})
	if err != nil {
		return payload
	}
	m["repository"] = repo
	out, err := json.Marshal(m)
	if err != nil {
		return payload
	}
	return out
}

// SyntheticActorID returns a deterministic negative id from a login
// negative ids never collide with real GitHub ids
func SyntheticActorID(login string) int64 {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte("actor:"))
	_, _ = h.Write([]byte(login))
	v := int64(h.Sum64() & 0x7fffffffffffffff)
	if v == 0 {
		v = 1
	}
	return -v
}
