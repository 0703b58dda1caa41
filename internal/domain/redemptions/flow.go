package redemptions

import (
	"errors"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
)

var ErrInvalidTransition = errors.New("invalid scan transition")

type EventKind int

const (
	EventOpen EventKind = iota
	EventCameraGranted
	EventCameraDenied
	EventFrameDecoded
	EventManualSubmitted
	EventValidate
	EventValidationPassed
	EventValidationFailed
	EventClose
)

// Event drives a scan session. Code is set for decoded and manual events,
// Partner for a passed validation and Reason for a failed one.
type Event struct {
	Kind    EventKind
	Code    string
	Partner *api.Partner
	Reason  string
}

// Reject reasons.
const (
	ReasonUnrecognizedCode   = "unrecognized_code"
	ReasonPartnerNotFound    = "partner_not_found"
	ReasonPartnerNotApproved = "partner_not_approved"
	ReasonNoActiveOffers     = "no_active_offers"
)

// Transition applies ev to s. Terminal states get a ResetAt of now+resetDelay.
func Transition(s *api.ScanSession, ev Event, now time.Time, resetDelay time.Duration) error {
	if ev.Kind == EventClose {
		reset(s)
		s.UpdatedAt = now
		return nil
	}

	switch s.State {
	case api.ScanIdle:
		if ev.Kind != EventOpen {
			return ErrInvalidTransition
		}
		s.State = api.ScanAwaitingCameraPermission

	case api.ScanAwaitingCameraPermission:
		switch ev.Kind {
		case EventCameraGranted:
			s.State = api.ScanScanning
		case EventCameraDenied:
			s.State = api.ScanManualEntry
			s.Manual = true
		default:
			return ErrInvalidTransition
		}

	case api.ScanScanning:
		switch ev.Kind {
		case EventFrameDecoded:
			s.State = api.ScanDecoded
			s.Code = &ev.Code
		case EventManualSubmitted:
			s.State = api.ScanDecoded
			s.Code = &ev.Code
			s.Manual = true
		default:
			return ErrInvalidTransition
		}

	case api.ScanManualEntry:
		if ev.Kind != EventManualSubmitted {
			return ErrInvalidTransition
		}
		s.State = api.ScanDecoded
		s.Code = &ev.Code

	case api.ScanDecoded:
		if ev.Kind != EventValidate {
			return ErrInvalidTransition
		}
		s.State = api.ScanValidating

	case api.ScanValidating:
		resetAt := now.Add(resetDelay)
		switch ev.Kind {
		case EventValidationPassed:
			s.State = api.ScanSuccess
			s.Partner = ev.Partner
		case EventValidationFailed:
			s.State = api.ScanRejected
			s.RejectReason = &ev.Reason
		default:
			return ErrInvalidTransition
		}
		s.ResetAt = &resetAt

	default:
		// success and rejected only leave through Settle or Close
		return ErrInvalidTransition
	}

	s.UpdatedAt = now
	return nil
}

// Settle resets a terminal session whose reset delay has elapsed. It reports
// whether the session changed.
func Settle(s *api.ScanSession, now time.Time) bool {
	if s.State != api.ScanSuccess && s.State != api.ScanRejected {
		return false
	}
	if s.ResetAt == nil || now.Before(*s.ResetAt) {
		return false
	}
	reset(s)
	s.UpdatedAt = now
	return true
}

func reset(s *api.ScanSession) {
	s.State = api.ScanIdle
	s.Manual = false
	s.Code = nil
	s.Partner = nil
	s.RejectReason = nil
	s.ResetAt = nil
}
