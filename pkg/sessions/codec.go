package sessions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNullSession = errors.New("stored value is null")

// Encode returns the persisted form of s: a JSON array of peers.
func Encode(s Session) ([]byte, error) {
	if s == nil {
		s = Session{}
	}
	return json.Marshal(s)
}

// Decode parses a persisted session. Any malformed value, including peers
// without an id or a repeated id, is an error; nothing is dropped.
func Decode(b []byte) (Session, error) {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil, errNullSession
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(s))
	for i, p := range s {
		if p.PeerID == "" {
			return nil, fmt.Errorf("peer %d: empty peer_id", i)
		}
		if _, dup := seen[p.PeerID]; dup {
			return nil, fmt.Errorf("peer %d: duplicate peer_id %q", i, p.PeerID)
		}
		seen[p.PeerID] = struct{}{}
	}
	if s == nil {
		s = Session{}
	}
	return s, nil
}
