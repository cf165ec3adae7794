package service

import (
	"context"
	"fmt"

	"github.com/lukejcollins/litroulette/internal/core/domain/models"
	"github.com/lukejcollins/litroulette/internal/core/domain/ports"
	"github.com/rs/zerolog"
)

// DescribeState is a state of the description lookup.
type DescribeState int

const (
	StateTryISBN DescribeState = iota
	StateFallbackTitle
	StateDone
	StateFailed
)

func (s DescribeState) String() string {
	switch s {
	case StateTryISBN:
		return "try_isbn"
	case StateFallbackTitle:
		return "fallback_title"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("DescribeState(%d)", int(s))
	}
}

// Terminal reports whether no further lookup follows s.
func (s DescribeState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// DescribeEvent is the result of the lookup issued in a non-terminal state.
type DescribeEvent int

const (
	// EventMatch is a well-formed response with at least one volume.
	EventMatch DescribeEvent = iota
	// EventNoMatch is a well-formed response without volumes.
	EventNoMatch
	// EventFailure is a transport or decode failure.
	EventFailure
)

func (e DescribeEvent) String() string {
	switch e {
	case EventMatch:
		return "match"
	case EventNoMatch:
		return "no_match"
	case EventFailure:
		return "failure"
	default:
		return fmt.Sprintf("DescribeEvent(%d)", int(e))
	}
}

// Transition is the whole fallback policy. Terminal states absorb every event.
func Transition(from DescribeState, ev DescribeEvent) DescribeState {
	switch from {
	case StateTryISBN:
		if ev == EventMatch {
			return StateDone
		}
		return StateFallbackTitle
	case StateFallbackTitle:
		if ev == EventFailure {
			return StateFailed
		}
		return StateDone
	default:
		return from
	}
}

// InitialState is TryISBN for a resolved identifier and FallbackTitle otherwise.
func InitialState(id models.ResolvedIdentifier) DescribeState {
	if id.IsResolved() {
		return StateTryISBN
	}
	return StateFallbackTitle
}

// DescriptionOutcome is the terminal result of Describe.
type DescriptionOutcome struct {
	// State is StateDone or StateFailed.
	State       DescribeState
	Description *string
	// Path lists every state visited, starting with the initial one.
	Path []DescribeState
	// Err is the title-search failure that ended in StateFailed.
	Err error
}

// DescriptionResolver finds a description by ISBN, falling back to an exact-title search.
type DescriptionResolver struct {
	search ports.MetadataSearch
	logger zerolog.Logger
}

func NewDescriptionResolver(search ports.MetadataSearch, logger zerolog.Logger) *DescriptionResolver {
	return &DescriptionResolver{search: search, logger: logger}
}

// Describe runs the lookup state machine to a terminal state. A Failed outcome is not an
// error for the caller: the description is just absent.
func (r *DescriptionResolver) Describe(ctx context.Context, id models.ResolvedIdentifier, title string) DescriptionOutcome {
	state := InitialState(id)
	out := DescriptionOutcome{Path: []DescribeState{state}}

	for !state.Terminal() {
		var (
			matches []models.VolumeMatch
			err     error
		)
		switch state {
		case StateTryISBN:
			isbn, _ := id.ISBN()
			matches, err = r.search.SearchByISBN(ctx, isbn)
		case StateFallbackTitle:
			matches, err = r.search.SearchByTitle(ctx, title)
		}

		ev := eventFor(matches, err)
		next := Transition(state, ev)

		logEvt := r.logger.Debug()
		if err != nil {
			logEvt = r.logger.Warn().Err(err)
		}
		logEvt.Str("title", title).Stringer("from", state).Stringer("event", ev).Stringer("to", next).Msg("description lookup")

		if next == StateDone && ev == EventMatch {
			out.Description = matches[0].Description
		}
		if next == StateFailed {
			out.Err = err
		}

		state = next
		out.Path = append(out.Path, state)
	}

	out.State = state
	return out
}

func eventFor(matches []models.VolumeMatch, err error) DescribeEvent {
	switch {
	case err != nil:
		return EventFailure
	case len(matches) == 0:
		return EventNoMatch
	default:
		return EventMatch
	}
}
