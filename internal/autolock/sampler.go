package autolock

import "github.com/timvw/zellij-autolock/internal/parser"

// PurposeListClients tags listing requests issued by the sampler.
const PurposeListClients = "list-clients"

// Tag correlates a listing result with the request that produced it.
type Tag struct {
	Purpose string
	Seq     uint64
}

// Lister issues a listing of the clients and what their focused panes run.
// The result comes back later as a ListingResult or ClientList event
// carrying the same tag.
type Lister interface {
	RequestListing(tag Tag)
}

// CommandSampler issues listing requests and classifies their results. It
// is single-flight: while a request is outstanding, further requests are
// folded into one follow-up that the caller issues once the result is in.
type CommandSampler struct {
	lister   Lister
	seq      uint64
	inFlight bool
	again    bool
}

// NewCommandSampler returns a sampler issuing requests through lister.
func NewCommandSampler(lister Lister) *CommandSampler {
	return &CommandSampler{lister: lister}
}

// RequestSample issues one listing request and returns its tag. If a
// request is already outstanding nothing is issued, ok is false and
// TakeAgain will report true once that request completes.
func (s *CommandSampler) RequestSample() (tag Tag, ok bool) {
	if s.inFlight {
		s.again = true
		return Tag{}, false
	}
	s.seq++
	s.inFlight = true
	tag = Tag{Purpose: PurposeListClients, Seq: s.seq}
	s.lister.RequestListing(tag)
	return tag, true
}

// InFlight reports whether a request is outstanding.
func (s *CommandSampler) InFlight() bool {
	return s.inFlight
}

// TakeAgain reports, once, whether a request was folded into the one that
// just completed.
func (s *CommandSampler) TakeAgain() bool {
	again := s.again
	s.again = false
	return again
}

// Matches reports whether a result with this tag belongs to the sampler.
func (s *CommandSampler) Matches(tag Tag) bool {
	return tag.Purpose == PurposeListClients
}

// Superseded reports whether a newer request was issued after tag's. Such
// a result can only come from a host replaying old results; it is still
// used, since the decision is made against current state.
func (s *CommandSampler) Superseded(tag Tag) bool {
	return tag.Seq < s.seq
}

// OnListing classifies a table listing and completes the outstanding
// request. ok is false for results that do not belong to the sampler.
func (s *CommandSampler) OnListing(r ListingResult) (sample parser.Sample, ok bool) {
	if !s.Matches(r.Tag) {
		return parser.Sample{}, false
	}
	s.inFlight = false
	return parser.ParseClientTable(r.Stdout), true
}

// OnClients classifies a structured client listing and completes the
// outstanding request.
func (s *CommandSampler) OnClients(r ClientList) (sample parser.Sample, ok bool) {
	if !s.Matches(r.Tag) {
		return parser.Sample{}, false
	}
	s.inFlight = false
	return parser.ParseClients(r.Clients), true
}
