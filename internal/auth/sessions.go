package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is a login issued to a user. It lives in badger with a TTL equal
// to its lifetime, so expired sessions disappear on their own.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionStore struct {
	db  *badger.DB
	ttl time.Duration
	log logrus.FieldLogger
}

// OpenSessionStore opens the badger database at path. An empty path keeps
// sessions in memory only.
func OpenSessionStore(path string, ttl time.Duration, logger logrus.FieldLogger) (*SessionStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = &badgerLogger{logger.WithField("component", "badgerdb")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store at %q: %w", path, err)
	}
	logger.WithField("path", path).Info("session store opened")

	return &SessionStore{
		db:  db,
		ttl: ttl,
		log: logger.WithField("component", "sessions"),
	}, nil
}

func (s *SessionStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Error("closing session store")
		return err
	}
	return nil
}

func sessionKey(id string) []byte {
	return []byte("session:" + id)
}

func (s *SessionStore) Create(ctx context.Context, userID string) (Session, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	b, err := json.Marshal(sess)
	if err != nil {
		return Session{}, fmt.Errorf("marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(sessionKey(sess.ID), b).WithTTL(s.ttl))
	})
	if err != nil {
		return Session{}, fmt.Errorf("save session: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "session_id": sess.ID}).Debug("session created")
	return sess, nil
}

func (s *SessionStore) Lookup(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	if time.Now().After(sess.ExpiresAt) {
		return Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Revoke deletes the session. Revoking an unknown session is not an error.
func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(id))
	})
	if err != nil {
		return fmt.Errorf("revoke session %s: %w", id, err)
	}
	s.log.WithField("session_id", id).Debug("session revoked")
	return nil
}

// badgerLogger adapts logrus onto badger's logger interface.
type badgerLogger struct {
	logger logrus.FieldLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{})   { l.logger.Errorf(f, v...) }
func (l *badgerLogger) Warningf(f string, v ...interface{}) { l.logger.Warningf(f, v...) }
func (l *badgerLogger) Infof(f string, v ...interface{})    { l.logger.Debugf(f, v...) }
func (l *badgerLogger) Debugf(f string, v ...interface{})   { l.logger.Debugf(f, v...) }
