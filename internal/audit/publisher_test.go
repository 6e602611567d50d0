package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "amlgate/pkg/domain-errors"
	"amlgate/pkg/requestcontext"
)

// failingStore rejects every append.
type failingStore struct {
	InMemoryStore
}

func (s *failingStore) Append(context.Context, Entry) error {
	return errors.New("disk full")
}

type PublisherSuite struct {
	suite.Suite
	store     *InMemoryStore
	publisher *Publisher
	ctx       context.Context
	now       time.Time
}

func (s *PublisherSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.publisher = NewPublisher(s.store)
	s.now = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) TestEmit() {
	s.Run("fills defaults from the request context", func() {
		err := s.publisher.Emit(s.ctx, Entry{
			Action:     ActionScreeningCompleted,
			TargetType: TargetClient,
			TargetID:   "c-1",
		})
		s.Require().NoError(err)

		entries := s.store.All()
		s.Require().Len(entries, 1)
		s.NotEqual(uuid.Nil, entries[0].ID)
		s.Equal(s.now, entries[0].Timestamp)
		s.Equal("system", entries[0].Actor)
	})

	s.Run("keeps an explicit id, timestamp and actor", func() {
		id := uuid.New()
		at := s.now.Add(-time.Hour)
		err := s.publisher.Emit(s.ctx, Entry{
			ID:         id,
			Actor:      "officer-2",
			Action:     ActionBlockCleared,
			TargetType: TargetClient,
			TargetID:   "c-2",
			Timestamp:  at,
		})
		s.Require().NoError(err)

		entries := s.store.All()
		last := entries[len(entries)-1]
		s.Equal(id, last.ID)
		s.Equal(at, last.Timestamp)
		s.Equal("officer-2", last.Actor)
	})

	s.Run("rejects an entry without an action or target", func() {
		err := s.publisher.Emit(s.ctx, Entry{TargetType: TargetClient, TargetID: "c-1"})
		s.True(dErrors.HasCode(err, dErrors.CodeAuditPolicy))

		err = s.publisher.Emit(s.ctx, Entry{Action: ActionClientBlocked, TargetType: TargetClient})
		s.True(dErrors.HasCode(err, dErrors.CodeAuditPolicy))
	})
}

func (s *PublisherSuite) TestDeletionReasonPolicy() {
	deletions := []Action{ActionClientDeleted, ActionTransactionDeleted, ActionDocumentDeleted}

	s.Run("deletion actions without a reason are rejected", func() {
		for _, action := range deletions {
			err := s.publisher.Emit(s.ctx, Entry{
				Action:     action,
				TargetType: TargetClient,
				TargetID:   "c-1",
				Reason:     "   ",
			})
			s.Require().Error(err, string(action))
			s.True(dErrors.HasCode(err, dErrors.CodeAuditPolicy))
		}
		s.Empty(s.store.All())
	})

	s.Run("deletion with a reason is appended", func() {
		err := s.publisher.Emit(s.ctx, Entry{
			Action:     ActionClientDeleted,
			TargetType: TargetClient,
			TargetID:   "c-1",
			Reason:     "duplicate case file",
		})
		s.Require().NoError(err)
	})

	s.Run("non-deletion actions do not need a reason", func() {
		err := s.publisher.Emit(s.ctx, Entry{
			Action:     ActionTransactionRegistered,
			TargetType: TargetTransaction,
			TargetID:   "t-1",
		})
		s.Require().NoError(err)
	})
}

func (s *PublisherSuite) TestStoreFailureIsFatal() {
	publisher := NewPublisher(&failingStore{})
	err := publisher.Emit(s.ctx, Entry{
		Action:     ActionScreeningCompleted,
		TargetType: TargetClient,
		TargetID:   "c-1",
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *PublisherSuite) TestListing() {
	for i, target := range []string{"c-1", "c-2", "c-1"} {
		err := s.publisher.Emit(s.ctx, Entry{
			Action:     ActionScreeningCompleted,
			TargetType: TargetClient,
			TargetID:   target,
			Detail:     string(rune('a' + i)),
			Timestamp:  s.now.Add(time.Duration(i) * time.Minute),
		})
		s.Require().NoError(err)
	}

	s.Run("by target returns the trail oldest first", func() {
		trail, err := s.publisher.ListByTarget(s.ctx, TargetClient, "c-1")
		s.Require().NoError(err)
		s.Require().Len(trail, 2)
		s.Equal("a", trail[0].Detail)
		s.Equal("c", trail[1].Detail)
	})

	s.Run("recent returns newest first and clamps silly limits", func() {
		recent, err := s.publisher.ListRecent(s.ctx, 2)
		s.Require().NoError(err)
		s.Require().Len(recent, 2)
		s.Equal("c", recent[0].Detail)
		s.Equal("b", recent[1].Detail)

		all, err := s.publisher.ListRecent(s.ctx, -5)
		s.Require().NoError(err)
		s.Len(all, 3)
	})
}
