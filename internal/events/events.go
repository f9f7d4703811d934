// Package events defines the GameRunner's progress event stream and a
// small non-blocking pub/sub bus to deliver it to CLI or dashboard
// consumers, adapted from the tap/subscriber bus pattern used for
// inter-role traffic in agentic-shell's internal/bus.
package events

import (
	"log/slog"
	"sync"
	"time"
)

// Kind enumerates the progress events GameRunner emits.
type Kind string

const (
	GameCreated          Kind = "game_created"
	RoundStart           Kind = "round_start"
	HuntStart            Kind = "hunt_start"
	HuntAgentDone        Kind = "hunt_agent_done"
	HuntEnd              Kind = "hunt_end"
	ScoringStart         Kind = "scoring_start"
	FindingValidated     Kind = "finding_validated"
	ScoringEnd           Kind = "scoring_end"
	VerificationStart    Kind = "verification_start"
	FindingVerified      Kind = "finding_verified"
	VerificationEnd      Kind = "verification_end"
	ReviewStart          Kind = "review_start"
	ReviewAgentDone      Kind = "review_agent_done"
	ReviewEnd            Kind = "review_end"
	DisputeScoringStart  Kind = "dispute_scoring_start"
	DisputeResolved      Kind = "dispute_resolved"
	DisputeScoringEnd    Kind = "dispute_scoring_end"
	RoundComplete        Kind = "round_complete"
	GameComplete         Kind = "game_complete"
)

// Usage carries token/cost accounting attached to agent-invocation events.
type Usage struct {
	InputTokens  int     `json:"inputTokens,omitempty"`
	OutputTokens int     `json:"outputTokens,omitempty"`
	CostUSD      float64 `json:"costUsd,omitempty"`
}

// Event is one message on the progress stream. Fields beyond Kind/GameID/
// Round/At are populated according to Kind — e.g. AgentID+Usage for
// hunt_agent_done, FindingID for finding_validated.
type Event struct {
	Kind      Kind      `json:"kind"`
	GameID    string    `json:"gameId"`
	Round     int       `json:"round,omitempty"`
	At        time.Time `json:"at"`
	AgentID   string    `json:"agentId,omitempty"`
	FindingID int64     `json:"findingId,omitempty"`
	DisputeID int64     `json:"disputeId,omitempty"`
	Verdict   string    `json:"verdict,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Usage     Usage     `json:"usage,omitempty"`
}

const (
	subscriberBufSize = 64
	tapBufSize        = 256
)

// Bus is the observable event stream GameRunner publishes to. Subscribers
// register by Kind; taps receive every event regardless of Kind. Delivery
// is non-blocking: a full channel drops the event with a logged warning
// rather than stalling the game loop.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Kind][]chan Event
	taps        []chan Event
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Kind][]chan Event)}
}

// Publish fans out evt to every subscriber of evt.Kind and to every tap.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	subs := b.subscribers[evt.Kind]
	taps := b.taps
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			slog.Warn("event bus subscriber full, dropping event", "kind", evt.Kind, "gameId", evt.GameID)
		}
	}
	for _, tap := range taps {
		select {
		case tap <- evt:
		default:
			slog.Warn("event bus tap full, dropping event", "kind", evt.Kind, "gameId", evt.GameID)
		}
	}
}

// Subscribe returns a receive-only channel delivering events of kind k.
func (b *Bus) Subscribe(k Kind) <-chan Event {
	ch := make(chan Event, subscriberBufSize)
	b.mu.Lock()
	b.subscribers[k] = append(b.subscribers[k], ch)
	b.mu.Unlock()
	return ch
}

// Tap returns a receive-only channel delivering every event published,
// regardless of kind — what a dashboard or the status CLI's watch mode
// would consume.
func (b *Bus) Tap() <-chan Event {
	ch := make(chan Event, tapBufSize)
	b.mu.Lock()
	b.taps = append(b.taps, ch)
	b.mu.Unlock()
	return ch
}
