// Package caseflow owns the lifecycle of one training case inside a learner
// session: preparing it, carrying its state between pages and resetting it.
package caseflow

import (
	"context"
	"encoding/gob"
	"time"

	"github.com/alexedwards/scs/v2"
)

// ChatMessage is one entry of the anamnesis transcript.
type ChatMessage struct {
	Role    string
	Content string
}

// DiagnosticRound is one diagnostics appointment: what the learner requested
// and the findings generated for it.
type DiagnosticRound struct {
	Requested string
	Findings  string
}

// CaseState is everything a running case accumulates. It lives in the
// session store, so a learner can continue after a page reload but loses the
// case when the session expires.
type CaseState struct {
	ScenarioName   string
	Description    string
	ExaminationTip string
	SpecialNote    string
	AmbossExcerpt  string

	PatientName  string
	PatientJob   string
	PatientAge   int
	PatientSex   string
	BehaviourKey string

	SystemPrompt string
	Messages     []ChatMessage

	ExamFindings   string
	Rounds         []DiagnosticRound
	Differentials  string
	FinalDiagnosis string
	TherapyPlan    string
	Feedback       string
	EvaluationDone bool

	StartedAt time.Time
}

// Transcript returns the learner-visible conversation, i.e. everything after
// the system prompt.
func (s CaseState) Transcript() []ChatMessage {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[1:]
}

const (
	caseKey    = "activeCase"
	warningKey = "pendingWarning"
)

func init() {
	gob.Register(CaseState{})
}

// Store reads and writes case state and one-shot warnings in the session.
type Store struct {
	sessions *scs.SessionManager
}

func NewStore(sessions *scs.SessionManager) *Store {
	return &Store{sessions: sessions}
}

// Case returns the active case, reporting false when none has been prepared.
func (s *Store) Case(ctx context.Context) (CaseState, bool) {
	if !s.sessions.Exists(ctx, caseKey) {
		return CaseState{}, false
	}
	state, ok := s.sessions.Get(ctx, caseKey).(CaseState)
	return state, ok
}

// PutCase stores the case state in the session.
func (s *Store) PutCase(ctx context.Context, state CaseState) {
	s.sessions.Put(ctx, caseKey, state)
}

// ClearCase drops the active case but keeps the session itself, so a pending
// warning survives the reset redirect.
func (s *Store) ClearCase(ctx context.Context) {
	s.sessions.Remove(ctx, caseKey)
}

// PutWarning queues a warning shown once on the next page render.
func (s *Store) PutWarning(ctx context.Context, message string) {
	s.sessions.Put(ctx, warningKey, message)
}

// PopWarning returns the pending warning and removes it, so a second render
// shows nothing.
func (s *Store) PopWarning(ctx context.Context) string {
	return s.sessions.PopString(ctx, warningKey)
}
