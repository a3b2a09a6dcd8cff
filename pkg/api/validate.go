package api

import (
	"fmt"

	"github.com/pion/webrtc/v4"

	"github.com/shuliakovsky/signal-directory/pkg/sessions"
)

// validateOffer checks that an offer is a well-formed session description.
// Only used when strict offers are enabled; the store accepts any payload.
func validateOffer(o sessions.Offer) error {
	t := webrtc.NewSDPType(o.Type)
	switch t {
	case webrtc.SDPTypeUnknown:
		return fmt.Errorf("unknown offer type %q", o.Type)
	case webrtc.SDPTypeRollback:
		return nil
	}
	desc := webrtc.SessionDescription{Type: t, SDP: o.SDP}
	if _, err := desc.Unmarshal(); err != nil {
		return fmt.Errorf("offer sdp: %w", err)
	}
	return nil
}
