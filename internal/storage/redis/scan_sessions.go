package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
)

// ScanSessionTTL bounds how long an abandoned scan session lingers.
const ScanSessionTTL = 10 * time.Minute

type ScanSessionStore struct {
	client *Client
	ttl    time.Duration
}

func NewScanSessionStore(client *Client) *ScanSessionStore {
	return &ScanSessionStore{client: client, ttl: ScanSessionTTL}
}

func keyScanSession(id string) string {
	return fmt.Sprintf("scan:%s", id)
}

// Get returns the session or nil if it expired or never existed
func (s *ScanSessionStore) Get(ctx context.Context, id string) (*api.ScanSession, error) {
	var sess api.ScanSession
	ok, err := s.client.getJSON(ctx, keyScanSession(id), &sess)
	if err != nil || !ok {
		return nil, err
	}
	return &sess, nil
}

// Save writes the session and refreshes its TTL
func (s *ScanSessionStore) Save(ctx context.Context, sess *api.ScanSession) error {
	if sess == nil || sess.Id == "" {
		return fmt.Errorf("invalid scan session")
	}
	return s.client.setJSON(ctx, keyScanSession(sess.Id), sess, s.ttl)
}

func (s *ScanSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.ready(); err != nil {
		return err
	}
	return s.client.rdb.Del(ctx, keyScanSession(id)).Err()
}
