package votes

// Projection is the viewer-specific, non-persisted vote state of an item.
type Projection struct {
	Score    int      `json:"score"`
	UserVote VoteType `json:"userVote,omitempty"`
}

// Ballot is anything that records one user's vote.
type Ballot interface {
	VoterID() uint
	Type() VoteType
}

// Tally computes the net score of a vote set and the viewer's own vote.
// A viewerID of 0 is the anonymous viewer and never has a vote.
func Tally[B Ballot](ballots []B, viewerID uint) Projection {
	var p Projection
	for _, b := range ballots {
		p.Score += b.Type().weight()
		if viewerID != 0 && b.VoterID() == viewerID {
			p.UserVote = b.Type()
		}
	}
	return p
}

// Transition returns the score change and the viewer's resulting vote when
// requested is clicked while current is the viewer's vote.
//
//	current  requested  delta  next
//	none     up         +1     up
//	none     down       -1     down
//	up       up         -1     none
//	up       down       -2     down
//	down     down       +1     none
//	down     up         +2     up
func Transition(current, requested VoteType) (int, VoteType) {
	next := requested
	if current == requested {
		next = VoteNone
	}
	return next.weight() - current.weight(), next
}

// Resolve maps a request onto the row-level outcome the vote endpoint performs.
func Resolve(current, requested VoteType) (VoteType, Action) {
	_, next := Transition(current, requested)
	switch {
	case next == VoteNone:
		return next, ActionRemoved
	case current == VoteNone:
		return next, ActionCreated
	default:
		return next, ActionUpdated
	}
}

// Predict applies a click to a projection.
func (p Projection) Predict(requested VoteType) Projection {
	delta, next := Transition(p.UserVote, requested)
	return Projection{Score: p.Score + delta, UserVote: next}
}

// Reconcile rebuilds the state from the pre-click projection and the action the
// server reported, ignoring whatever was predicted locally.
func (p Projection) Reconcile(requested VoteType, action Action) (Projection, error) {
	var next VoteType
	switch action {
	case ActionCreated, ActionUpdated:
		next = requested
	case ActionRemoved:
		next = VoteNone
	default:
		return p, ErrInvalidAction
	}
	return Projection{Score: p.Score + next.weight() - p.UserVote.weight(), UserVote: next}, nil
}
