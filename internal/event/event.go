// Package event defines the registry's notifications and where they go.
//
// Notifications are a side channel: the registry hands them to an Emitter
// after a call commits, and a failed call emits nothing. Each notification
// renders as a single line:
//
//	EVENT_JSON:{"standard":"FractalRegistry","version":"0","event":"grant_inserted","data":{...}}
package event

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/fractalreg/internal/grant"
)

// LinePrefix marks a notification in a log stream.
const LinePrefix = "EVENT_JSON:"

// Kind names a notification.
type Kind string

const (
	GrantInserted Kind = "grant_inserted"
	GrantDeleted  Kind = "grant_deleted"
)

// Data is the payload shared by both notification kinds. For deletions
// LockedUntil is the filter the caller supplied (0 if none), not the lock
// of any particular deleted grant.
type Data struct {
	Owner       grant.AccountID `json:"owner"`
	Grantee     grant.PublicKey `json:"grantee"`
	DataID      string          `json:"data_id"`
	LockedUntil uint64          `json:"locked_until"`
}

// Event is one notification. Field order matches the wire format.
type Event struct {
	Standard string `json:"standard"`
	Version  string `json:"version"`
	Event    Kind   `json:"event"`
	Data     Data   `json:"data"`
}

// New builds a notification of the given kind.
func New(kind Kind, data Data) Event {
	return Event{
		Standard: grant.Standard,
		Version:  grant.StandardVersion,
		Event:    kind,
		Data:     data,
	}
}

// Line renders e as a prefixed JSON log line without a trailing newline.
func (e Event) Line() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return LinePrefix + string(b), nil
}

// ParseLine decodes a line produced by Line.
func ParseLine(line string) (Event, error) {
	if len(line) < len(LinePrefix) || line[:len(LinePrefix)] != LinePrefix {
		return Event{}, fmt.Errorf("parse event: missing %q prefix", LinePrefix)
	}
	var e Event
	if err := json.Unmarshal([]byte(line[len(LinePrefix):]), &e); err != nil {
		return Event{}, fmt.Errorf("parse event: %w", err)
	}
	return e, nil
}
