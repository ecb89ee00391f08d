package votes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VoteType is a single user's vote on a target. The zero value means "no vote".
type VoteType string

const (
	VoteNone VoteType = ""
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether v can be requested by a voter.
func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown
}

func (v VoteType) weight() int {
	switch v {
	case VoteUp:
		return 1
	case VoteDown:
		return -1
	default:
		return 0
	}
}

// TargetType identifies what kind of row a vote points at.
type TargetType string

const (
	TargetDeal       TargetType = "deal"
	TargetCoupon     TargetType = "coupon"
	TargetDiscussion TargetType = "discussion"
	TargetComment    TargetType = "comment"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetDeal, TargetCoupon, TargetDiscussion, TargetComment:
		return true
	}
	return false
}

// Action is the outcome the vote endpoint reports after an upsert-or-flip.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

func (a Action) Valid() bool {
	return a == ActionCreated || a == ActionUpdated || a == ActionRemoved
}

var (
	ErrUnauthenticated = errors.New("must be logged in to vote")
	ErrInvalidAction   = errors.New("unexpected vote action")
)

// Request is the payload sent to the vote endpoint.
type Request struct {
	TargetID   uint       `json:"targetId"`
	TargetType TargetType `json:"targetType"`
	VoteType   VoteType   `json:"voteType"`
}

// ItemKey addresses a single votable item across all views.
type ItemKey struct {
	Type TargetType
	ID   uint
}

func (k ItemKey) String() string {
	return string(k.Type) + ":" + strconv.FormatUint(uint64(k.ID), 10)
}

// ParseItemKey parses the "deal:12" form produced by ItemKey.String.
func ParseItemKey(s string) (ItemKey, error) {
	kind, id, ok := strings.Cut(s, ":")
	if !ok {
		return ItemKey{}, fmt.Errorf("invalid item key %q", s)
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return ItemKey{}, fmt.Errorf("invalid item id in %q: %w", s, err)
	}
	key := ItemKey{Type: TargetType(kind), ID: uint(n)}
	if !key.Type.Valid() {
		return ItemKey{}, fmt.Errorf("unknown target type %q", kind)
	}
	return key, nil
}
