// Package workflow holds the status state machine shared by all document types.
// Each type is described by a transition table; guards are pure functions of a
// document snapshot and the current date, so callers can evaluate affordances
// without attempting a mutation.
package workflow

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nusa-erp/erp-api/internal/domain"
)

// Event is something that can happen to a document
type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventCancel  Event = "cancel"
	EventExpire  Event = "expire"
	EventConvert Event = "convert"
	EventRevise  Event = "revise"
	EventEdit    Event = "edit"
	EventDelete  Event = "delete"
)

// Subject is the read-only view of a document that guards inspect
type Subject struct {
	Type           domain.DocumentType
	Status         domain.DocumentStatus
	LineCount      int
	ValidUntil     *time.Time
	Converted      bool
	LatestRevision bool
}

// SubjectOf builds a Subject from a loaded document. latest tells whether doc is
// the highest revision of its number family.
func SubjectOf(doc *domain.Document, latest bool) Subject {
	return Subject{
		Type:           doc.DocumentType,
		Status:         doc.Status,
		LineCount:      len(doc.Lines),
		ValidUntil:     doc.ValidUntil,
		Converted:      doc.IsConverted(),
		LatestRevision: latest,
	}
}

// Guard rejects a transition by returning an InvalidTransition error
type Guard func(s Subject, today time.Time) error

// Transition is one row of a transition table. A zero To means the document
// keeps its status (edit) or leaves the table entirely (delete, revise).
type Transition struct {
	From           []domain.DocumentStatus
	To             domain.DocumentStatus
	Guards         []Guard
	RequiresReason bool
}

// Definition is the transition table of a document type
type Definition struct {
	Type        domain.DocumentType
	Transitions map[Event]Transition
	ConvertsTo  domain.DocumentType
}

// Machine evaluates and applies a Definition
type Machine struct {
	def Definition
}

// New builds a machine for a definition
func New(def Definition) *Machine {
	return &Machine{def: def}
}

// For returns the machine registered for a document type
func For(t domain.DocumentType) (*Machine, error) {
	m, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("no workflow registered for document type %q", t)
	}
	return m, nil
}

// Type returns the document type this machine governs
func (m *Machine) Type() domain.DocumentType {
	return m.def.Type
}

// Supports reports whether the event exists for this document type
func (m *Machine) Supports(ev Event) bool {
	_, ok := m.def.Transitions[ev]
	return ok
}

// ConvertsTo returns the document type a conversion produces
func (m *Machine) ConvertsTo() (domain.DocumentType, bool) {
	return m.def.ConvertsTo, m.def.ConvertsTo != ""
}

// States lists every status reachable in this machine, sorted
func (m *Machine) States() []domain.DocumentStatus {
	seen := map[domain.DocumentStatus]bool{domain.StatusDraft: true}
	for _, tr := range m.def.Transitions {
		for _, f := range tr.From {
			seen[f] = true
		}
		if tr.To != "" {
			seen[tr.To] = true
		}
	}
	states := make([]domain.DocumentStatus, 0, len(seen))
	for s := range seen {
		states = append(states, s)
	}
	sort.Slice(states, func(i, j int) bool { return states[i] < states[j] })
	return states
}

// Can reports whether the event would pass every state guard. It ignores event
// input such as a reason.
func (m *Machine) Can(ev Event, s Subject, today time.Time) bool {
	return m.check(ev, s, today) == nil
}

// Check validates an event including its input
func (m *Machine) Check(ev Event, s Subject, today time.Time, reason string) error {
	if err := m.check(ev, s, today); err != nil {
		return err
	}
	tr := m.def.Transitions[ev]
	if tr.RequiresReason && strings.TrimSpace(reason) == "" {
		return domain.NewInvalidTransition("a reason is required to %s a %s", ev, label(m.def.Type))
	}
	return nil
}

// Fire validates an event and returns the status the document moves to
func (m *Machine) Fire(ev Event, s Subject, today time.Time, reason string) (domain.DocumentStatus, error) {
	if err := m.Check(ev, s, today, reason); err != nil {
		return s.Status, err
	}
	to := m.def.Transitions[ev].To
	if to == "" {
		to = s.Status
	}
	return to, nil
}

func (m *Machine) check(ev Event, s Subject, today time.Time) error {
	tr, ok := m.def.Transitions[ev]
	if !ok {
		return domain.NewInvalidTransition("a %s does not support %s", label(m.def.Type), ev)
	}
	if s.Converted {
		return domain.NewInvalidTransition("%s has already been converted and can no longer change", label(m.def.Type))
	}
	if !containsStatus(tr.From, s.Status) {
		if ev == EventEdit {
			return domain.NewNotEditable("only draft documents can be edited, %s is %s", label(m.def.Type), s.Status)
		}
		return domain.NewInvalidTransition("cannot %s a %s in status %s", ev, label(m.def.Type), s.Status)
	}
	for _, g := range tr.Guards {
		if err := g(s, today); err != nil {
			return err
		}
	}
	return nil
}

// CanSubmit reports whether the document can be submitted
func (m *Machine) CanSubmit(s Subject, today time.Time) bool { return m.Can(EventSubmit, s, today) }

// CanApprove reports whether the document can be approved
func (m *Machine) CanApprove(s Subject, today time.Time) bool { return m.Can(EventApprove, s, today) }

// CanReject reports whether the document can be rejected, given a reason
func (m *Machine) CanReject(s Subject, today time.Time) bool { return m.Can(EventReject, s, today) }

// CanConvert reports whether the document can be converted
func (m *Machine) CanConvert(s Subject, today time.Time) bool { return m.Can(EventConvert, s, today) }

// CanRevise reports whether a new revision can be created from the document
func (m *Machine) CanRevise(s Subject, today time.Time) bool { return m.Can(EventRevise, s, today) }

// CanCancel reports whether the document can be cancelled, given a reason
func (m *Machine) CanCancel(s Subject, today time.Time) bool { return m.Can(EventCancel, s, today) }

// CanEdit reports whether the document content may be changed
func (m *Machine) CanEdit(s Subject, today time.Time) bool { return m.Can(EventEdit, s, today) }

// CanDelete reports whether the document may be deleted
func (m *Machine) CanDelete(s Subject, today time.Time) bool { return m.Can(EventDelete, s, today) }

// Actions evaluates every user-facing event for the document
func (m *Machine) Actions(s Subject, today time.Time) map[Event]bool {
	events := []Event{EventSubmit, EventApprove, EventReject, EventCancel, EventConvert, EventRevise, EventEdit, EventDelete}
	actions := make(map[Event]bool, len(events))
	for _, ev := range events {
		if m.Supports(ev) {
			actions[ev] = m.Can(ev, s, today)
		}
	}
	return actions
}

// IsExpired reports whether a validity deadline has passed. A deadline equal to
// today is still valid.
func IsExpired(validUntil *time.Time, today time.Time) bool {
	if validUntil == nil {
		return false
	}
	return domain.DateOf(*validUntil).Before(domain.DateOf(today))
}

func containsStatus(list []domain.DocumentStatus, s domain.DocumentStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func label(t domain.DocumentType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}
