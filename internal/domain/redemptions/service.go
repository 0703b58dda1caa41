package redemptions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/events"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
	"github.com/tanguyors/bali-pass-home/internal/partnerqr"
)

var (
	ErrSessionNotFound  = errors.New("scan session not found")
	ErrInvalidFrame     = errors.New("invalid frame")
	ErrPartnerNotFound  = errors.New("partner not found")
	ErrNoActivePass     = errors.New("no active pass")
	ErrOfferUnavailable = errors.New("offer unavailable")
	ErrAlreadyRedeemed  = errors.New("offer already redeemed with this pass")
)

const (
	qrSize             = 512
	lockReleaseTimeout = 2 * time.Second
)

type ServiceInterface interface {
	OpenSession(ctx context.Context, userID string) (*api.ScanSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*api.ScanSession, error)
	CloseSession(ctx context.Context, userID, sessionID string) error
	CameraPermission(ctx context.Context, userID, sessionID string, granted bool) (*api.ScanSession, error)
	SubmitFrame(ctx context.Context, userID, sessionID string, frame []byte) (*api.ScanSession, error)
	SubmitManual(ctx context.Context, userID, sessionID, code string) (*api.ScanSession, error)
	Redeem(ctx context.Context, userID, offerID string) (*api.Redemption, error)
	History(ctx context.Context, userID string) ([]api.Redemption, error)
	PartnerQR(ctx context.Context, partnerID string) ([]byte, error)
}

type Service struct {
	repo       Repository
	sessions   SessionStore
	locks      Locks
	passes     PassReader
	publisher  events.Publisher
	resetDelay time.Duration

	now func() time.Time
	log zerolog.Logger
}

func NewService(repo Repository, sessions SessionStore, locks Locks, passes PassReader, publisher events.Publisher, resetDelay time.Duration) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:       repo,
		sessions:   sessions,
		locks:      locks,
		passes:     passes,
		publisher:  publisher,
		resetDelay: resetDelay,
		now:        time.Now,
		log:        helpers.NewLogger("redemptions"),
	}
}

// OpenSession starts a scan and asks the client for camera permission.
func (s *Service) OpenSession(ctx context.Context, userID string) (*api.ScanSession, error) {
	now := s.now().UTC()
	sess := &api.ScanSession{
		Id:        uuid.New().String(),
		UserId:    userID,
		State:     api.ScanIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := Transition(sess, Event{Kind: EventOpen}, now, s.resetDelay); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save scan session: %w", err)
	}
	return sess, nil
}

// load fetches the caller's session and applies a due reset.
func (s *Service) load(ctx context.Context, userID, sessionID string) (*api.ScanSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan session: %w", err)
	}
	if sess == nil || sess.UserId != userID {
		return nil, ErrSessionNotFound
	}
	if Settle(sess, s.now().UTC()) {
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("failed to save scan session: %w", err)
		}
	}
	return sess, nil
}

func (s *Service) GetSession(ctx context.Context, userID, sessionID string) (*api.ScanSession, error) {
	return s.load(ctx, userID, sessionID)
}

func (s *Service) CloseSession(ctx context.Context, userID, sessionID string) error {
	if _, err := s.load(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete scan session: %w", err)
	}
	return nil
}

// CameraPermission records the client's permission prompt outcome. A denial
// falls back to manual entry; acquisition is never retried by the server.
// A session that has settled back to idle is reopened first, so one session
// serves consecutive scans.
func (s *Service) CameraPermission(ctx context.Context, userID, sessionID string, granted bool) (*api.ScanSession, error) {
	kind := EventCameraDenied
	if granted {
		kind = EventCameraGranted
	}

	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if sess.State == api.ScanIdle {
		if err := Transition(sess, Event{Kind: EventOpen}, now, s.resetDelay); err != nil {
			return nil, err
		}
	}
	if err := Transition(sess, Event{Kind: kind}, now, s.resetDelay); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save scan session: %w", err)
	}
	return sess, nil
}

func (s *Service) step(ctx context.Context, userID, sessionID string, ev Event) (*api.ScanSession, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := Transition(sess, ev, s.now().UTC(), s.resetDelay); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save scan session: %w", err)
	}
	return sess, nil
}

// SubmitFrame decodes one camera frame. Frames without a code leave the
// session scanning.
func (s *Service) SubmitFrame(ctx context.Context, userID, sessionID string, frame []byte) (*api.ScanSession, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.State != api.ScanScanning {
		return nil, ErrInvalidTransition
	}

	code, err := partnerqr.DecodeFrame(frame)
	switch {
	case errors.Is(err, partnerqr.ErrNoCode):
		return sess, nil
	case errors.Is(err, partnerqr.ErrInvalidImage):
		return nil, ErrInvalidFrame
	case err != nil:
		return nil, err
	}

	return s.decoded(ctx, sess, Event{Kind: EventFrameDecoded, Code: code})
}

func (s *Service) SubmitManual(ctx context.Context, userID, sessionID, code string) (*api.ScanSession, error) {
	sess, err := s.load(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.decoded(ctx, sess, Event{Kind: EventManualSubmitted, Code: code})
}

// decoded runs decoded -> validating -> success|rejected and persists the
// outcome.
func (s *Service) decoded(ctx context.Context, sess *api.ScanSession, ev Event) (*api.ScanSession, error) {
	now := s.now().UTC()
	if err := Transition(sess, ev, now, s.resetDelay); err != nil {
		return nil, err
	}
	if err := Transition(sess, Event{Kind: EventValidate}, now, s.resetDelay); err != nil {
		return nil, err
	}

	partner, reason, err := s.ValidateCode(ctx, ev.Code)
	if err != nil {
		return nil, err
	}
	outcome := Event{Kind: EventValidationPassed, Partner: partner}
	if reason != "" {
		outcome = Event{Kind: EventValidationFailed, Reason: reason}
	}
	if err := Transition(sess, outcome, s.now().UTC(), s.resetDelay); err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to save scan session: %w", err)
	}
	s.log.Info().
		Str("event", "scan_validated").
		Str("user_id", sess.UserId).
		Str("scan_state", string(sess.State)).
		Bool("manual", sess.Manual).
		Msg("Scan validated")
	return sess, nil
}

// ValidateCode resolves a scanned code to an approved partner with active
// offers. A non-empty reason means the code was rejected.
func (s *Service) ValidateCode(ctx context.Context, code string) (*api.Partner, string, error) {
	partnerID, ok := partnerqr.Parse(code)
	if !ok {
		return nil, ReasonUnrecognizedCode, nil
	}
	if _, err := uuid.Parse(partnerID); err != nil {
		return nil, ReasonPartnerNotFound, nil
	}

	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil {
		return nil, ReasonPartnerNotFound, nil
	}
	if partner.Status != api.PartnerApproved {
		return nil, ReasonPartnerNotApproved, nil
	}

	offers, err := s.repo.ListActiveOffers(ctx, partnerID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list partner offers: %w", err)
	}
	if len(offers) == 0 {
		return nil, ReasonNoActiveOffers, nil
	}
	partner.Offers = offers
	return partner, "", nil
}

// Redeem records one use of offerID with the user's active pass.
func (s *Service) Redeem(ctx context.Context, userID, offerID string) (*api.Redemption, error) {
	pass, err := s.passes.Current(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current pass: %w", err)
	}
	if pass == nil {
		return nil, ErrNoActivePass
	}

	offer, err := s.repo.GetOffer(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	if offer == nil || !offer.IsActive {
		return nil, ErrOfferUnavailable
	}
	partner, err := s.repo.GetPartner(ctx, offer.PartnerId)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil || partner.Status != api.PartnerApproved {
		return nil, ErrOfferUnavailable
	}

	now := s.now().UTC()
	if s.locks != nil {
		ok, err := s.locks.Acquire(ctx, pass.Id, offer.Id, pass.ExpiresAt.Sub(now))
		if err != nil {
			return nil, fmt.Errorf("failed to lock redemption: %w", err)
		}
		if !ok {
			return nil, ErrAlreadyRedeemed
		}
	}

	red := &api.Redemption{
		Id:          uuid.New().String(),
		UserId:      userID,
		PassId:      pass.Id,
		OfferId:     offer.Id,
		PartnerId:   partner.Id,
		RedeemedAt:  now,
		OfferTitle:  &offer.Title,
		PartnerName: &partner.Name,
	}
	if err := s.repo.CreateRedemption(ctx, red); err != nil {
		if errors.Is(err, ErrAlreadyRedeemed) {
			return nil, err
		}
		if s.locks != nil {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
			rerr := s.locks.Release(releaseCtx, pass.Id, offer.Id)
			cancel()
			if rerr != nil {
				s.log.Warn().Err(rerr).Str("pass_id", pass.Id).Msg("Failed to release redemption lock")
			}
		}
		return nil, fmt.Errorf("failed to save redemption: %w", err)
	}

	ev := events.RedemptionRecorded{
		RedemptionID: red.Id,
		UserID:       userID,
		PassID:       pass.Id,
		OfferID:      offer.Id,
		PartnerID:    partner.Id,
		RedeemedAt:   now,
	}
	// the row is stored, so publish even if the client went away
	if err := s.publisher.PublishRedemption(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("redemption_id", red.Id).Msg("Failed to publish redemption event")
	}

	return red, nil
}

func (s *Service) History(ctx context.Context, userID string) ([]api.Redemption, error) {
	list, err := s.repo.ListRedemptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list redemptions: %w", err)
	}
	if list == nil {
		list = []api.Redemption{}
	}
	return list, nil
}

// PartnerQR renders the venue QR code of an approved partner.
func (s *Service) PartnerQR(ctx context.Context, partnerID string) ([]byte, error) {
	partner, err := s.repo.GetPartner(ctx, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil || partner.Status != api.PartnerApproved {
		return nil, ErrPartnerNotFound
	}
	png, err := partnerqr.PNG(partner.Id, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return png, nil
}
