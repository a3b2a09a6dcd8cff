package sessions

// Offer is the connection-negotiation payload a peer publishes. The store
// never looks inside it.
type Offer struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

type Peer struct {
	PeerID string `json:"peer_id"`
	Offer  Offer  `json:"offer"`
}

// Session is the ordered peer list stored under one session id, in join order.
type Session []Peer

// Index returns the position of peerID in the session or -1.
func (s Session) Index(peerID string) int {
	for i, p := range s {
		if p.PeerID == peerID {
			return i
		}
	}
	return -1
}

// withPeer applies p to a copy of s: a new peer id is appended, a known id
// with a different offer is replaced in place, an identical peer is left alone.
// changed reports whether the result differs from s.
func (s Session) withPeer(p Peer) (next Session, changed bool) {
	i := s.Index(p.PeerID)
	if i >= 0 && s[i] == p {
		return s, false
	}
	next = make(Session, len(s), len(s)+1)
	copy(next, s)
	if i >= 0 {
		next[i] = p
		return next, true
	}
	return append(next, p), true
}
