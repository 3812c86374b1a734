// Package classify turns raw provider events into canonical activities.
// An ordered table of handlers is evaluated top to bottom and the first handler
// whose kind, action, and predicate all accept the event builds the activity data
package classify

import (
	"encoding/json"
	stderrs "errors"
	"fmt"
	"sort"
	"strings"

	"devquest/internal/core/activity"
	perr "devquest/internal/platform/errors"

	"github.com/google/go-github/v62/github"
	"golang.org/x/text/message"
)

// ErrUnclassifiable is returned when no handler accepts an event
var ErrUnclassifiable = perr.New(perr.ErrorCodeInvalidArgument, "unclassifiable event")

// Result is a classified event
type Result struct {
	Type        activity.Type
	Data        activity.Data
	Description string
	// Repo is the repository full name when the payload carries one
	Repo string
	// Action is the effective action, from the event or its payload
	Action string
	// Handler names the table row that matched
	Handler string
}

// Pair is a (kind, action) combination a handler claims
type Pair struct {
	Kind   string
	Action string
}

// Classifier holds the handler table and the description printer
type Classifier struct {
	handlers []Handler
	printer  *message.Printer
}

// New builds a classifier with the built-in handler table
func New() (*Classifier, error) { return withTable(table()) }

// withTable fails when two handlers can claim the same event
func withTable(handlers []Handler) (*Classifier, error) {
	p, err := newPrinter()
	if err != nil {
		return nil, err
	}
	c := &Classifier{handlers: handlers, printer: p}
	if o := c.Overlaps(); len(o) > 0 {
		return nil, fmt.Errorf("classify: handlers overlap on %v", o)
	}
	return c, nil
}

// Handlers returns the table in evaluation order
func (c *Classifier) Handlers() []Handler { return append([]Handler(nil), c.handlers...) }

// Classify maps ev onto an activity type and data
// unsupported events fail with ErrUnclassifiable, malformed payloads with a JSON error
func (c *Classifier) Classify(ev activity.RawEvent) (Result, error) {
	kind := NormalizeKind(ev.ProviderEventKind)
	typed, action, err := parse(kind, ev)
	if err != nil {
		return Result{}, err
	}

	for _, h := range c.handlers {
		if !h.accepts(kind, action, typed) {
			continue
		}
		data, desc, err := h.build(typed, c.printer)
		if err != nil {
			return Result{}, perr.Wrapf(err, perr.ErrorCodeJSON, "classify %s", h.Name)
		}
		return Result{
			Type:        h.Type,
			Data:        data,
			Description: desc,
			Repo:        repoOf(typed),
			Action:      action,
			Handler:     h.Name,
		}, nil
	}
	return Result{}, perr.Wrapf(ErrUnclassifiable, perr.ErrorCodeInvalidArgument,
		"no handler for %s/%s", kind, orDash(action))
}

// Matches returns the names of every handler that accepts ev, in table order
// a supported event yields exactly one name
func (c *Classifier) Matches(ev activity.RawEvent) ([]string, error) {
	kind := NormalizeKind(ev.ProviderEventKind)
	typed, action, err := parse(kind, ev)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, h := range c.handlers {
		if h.accepts(kind, action, typed) {
			out = append(out, h.Name)
		}
	}
	return out, nil
}

// Supported lists the (kind, action) pairs the table claims, sorted
// handlers without an action filter report an empty action
func (c *Classifier) Supported() []Pair {
	seen := map[Pair]struct{}{}
	for _, h := range c.handlers {
		if len(h.Actions) == 0 {
			seen[Pair{Kind: h.Kind}] = struct{}{}
			continue
		}
		for _, a := range h.Actions {
			seen[Pair{Kind: h.Kind, Action: a}] = struct{}{}
		}
	}
	return sortedPairs(seen)
}

// Overlaps lists the (kind, action) pairs two handlers both claim where at least one
// of them has no predicate to tell the events apart. A handler without an action
// filter claims every action of its kind, reported with an empty action.
// Rows sharing a pair behind predicates (merged vs closed) are left to the fixtures
func (c *Classifier) Overlaps() []Pair {
	seen := map[Pair]struct{}{}
	for i, a := range c.handlers {
		for _, b := range c.handlers[i+1:] {
			if a.Kind != b.Kind || (a.match != nil && b.match != nil) {
				continue
			}
			for _, act := range sharedActions(a.Actions, b.Actions) {
				seen[Pair{Kind: a.Kind, Action: act}] = struct{}{}
			}
		}
	}
	return sortedPairs(seen)
}

// sharedActions intersects two action filters, nil meaning any action
func sharedActions(a, b []string) []string {
	switch {
	case len(a) == 0 && len(b) == 0:
		return []string{""}
	case len(a) == 0:
		return b
	case len(b) == 0:
		return a
	}
	var out []string
	for _, x := range a {
		if contains(b, x) {
			out = append(out, x)
		}
	}
	return out
}

func sortedPairs(set map[Pair]struct{}) []Pair {
	out := make([]Pair, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Action < out[j].Action
	})
	return out
}

// parse decodes the payload into its go-github event type and resolves the action
func parse(kind string, ev activity.RawEvent) (any, string, error) {
	if len(ev.Payload) == 0 {
		return nil, "", perr.Newf(perr.ErrorCodeJSON, "classify: empty payload for %s", kind)
	}
	typed, err := github.ParseWebHook(kind, ev.Payload)
	if err != nil {
		var syn *json.SyntaxError
		var ute *json.UnmarshalTypeError
		if stderrs.As(err, &syn) || stderrs.As(err, &ute) {
			return nil, "", perr.Wrapf(err, perr.ErrorCodeJSON, "classify: decode %s payload", kind)
		}
		return nil, "", perr.Wrapf(ErrUnclassifiable, perr.ErrorCodeInvalidArgument, "unsupported event kind %q", kind)
	}
	action := strings.TrimSpace(ev.Action)
	if action == "" {
		if a, ok := typed.(interface{ GetAction() string }); ok {
			action = a.GetAction()
		}
	}
	return typed, action, nil
}

func repoOf(ev any) string {
	switch e := ev.(type) {
	case *github.PushEvent:
		return e.GetRepo().GetFullName()
	case interface{ GetRepo() *github.Repository }:
		return e.GetRepo().GetFullName()
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
