package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) ListRecipients(ctx context.Context, audience, membershipType, userUID string, now time.Time) ([]*models.User, error) {
	args := m.Called(ctx, audience, membershipType, userUID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) CreateNotificationsBatch(ctx context.Context, entries []models.Notification) error {
	return m.Called(ctx, entries).Error(0)
}
func (m *RepoMock) ListNotifications(ctx context.Context, userUID string, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}
func (m *RepoMock) CountNotifications(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) MarkNotificationRead(ctx context.Context, userUID string, id int) error {
	return m.Called(ctx, userUID, id).Error(0)
}

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(event models.NotificationEvent) error {
	return m.Called(event).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func recipients(n int) []*models.User {
	result := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		result = append(result, &models.User{
			UID:   string(rune('a'+i%26)) + "-uid",
			Email: "member@example.com",
		})
	}
	return result
}

func TestService_Send_ActiveAudience(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := New(repo, pub, newNoopLogger())

	repo.On("ListRecipients", mock.Anything, models.AudienceActive, "", "", mock.Anything).
		Return([]*models.User{
			{UID: "uid-1", Email: "one@example.com"},
			{UID: "uid-2", Email: "two@example.com"},
		}, nil).Once()
	repo.On("CreateNotificationsBatch", mock.Anything, mock.MatchedBy(func(entries []models.Notification) bool {
		return len(entries) == 2 &&
			entries[0].Type == "announcement" &&
			entries[0].Subject == "Renewal reminder" &&
			!entries[0].IsRead
	})).Return(nil).Once()
	pub.On("Publish", models.NotificationEvent{
		Email: "one@example.com", Subject: "Renewal reminder", Message: "Please renew",
	}).Return(nil).Once()
	pub.On("Publish", models.NotificationEvent{
		Email: "two@example.com", Subject: "Renewal reminder", Message: "Please renew",
	}).Return(nil).Once()

	sent, err := svc.Send(context.Background(), models.DummyNotificationSend{
		Audience: models.AudienceActive,
		Subject:  "Renewal reminder",
		Message:  "Please renew",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestService_Send_EmptyAudience(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, nil, newNoopLogger())

	repo.On("ListRecipients", mock.Anything, models.AudienceExpired, "", "", mock.Anything).
		Return([]*models.User{}, nil).Once()

	sent, err := svc.Send(context.Background(), models.DummyNotificationSend{
		Audience: models.AudienceExpired,
		Subject:  "s",
		Message:  "m",
	})
	require.NoError(t, err)
	assert.Zero(t, sent)
	repo.AssertNotCalled(t, "CreateNotificationsBatch", mock.Anything, mock.Anything)
}

func TestService_Send_ChunksLargeAudience(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, nil, newNoopLogger())

	// 650 получателей — пачки 300, 300 и 50
	repo.On("ListRecipients", mock.Anything, models.AudienceAll, "", "", mock.Anything).
		Return(recipients(650), nil).Once()
	repo.On("CreateNotificationsBatch", mock.Anything, mock.MatchedBy(func(entries []models.Notification) bool {
		return len(entries) == 300
	})).Return(nil).Twice()
	repo.On("CreateNotificationsBatch", mock.Anything, mock.MatchedBy(func(entries []models.Notification) bool {
		return len(entries) == 50
	})).Return(nil).Once()

	sent, err := svc.Send(context.Background(), models.DummyNotificationSend{
		Audience: models.AudienceAll,
		Subject:  "s",
		Message:  "m",
	})
	require.NoError(t, err)
	assert.Equal(t, 650, sent)
	repo.AssertExpectations(t)
}

func TestService_Send_PartialFailureReportsProgress(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, nil, newNoopLogger())

	repo.On("ListRecipients", mock.Anything, models.AudienceAll, "", "", mock.Anything).
		Return(recipients(500), nil).Once()
	repo.On("CreateNotificationsBatch", mock.Anything, mock.MatchedBy(func(entries []models.Notification) bool {
		return len(entries) == 300
	})).Return(nil).Once()
	repo.On("CreateNotificationsBatch", mock.Anything, mock.MatchedBy(func(entries []models.Notification) bool {
		return len(entries) == 200
	})).Return(errors.New("db down")).Once()

	sent, err := svc.Send(context.Background(), models.DummyNotificationSend{
		Audience: models.AudienceAll,
		Subject:  "s",
		Message:  "m",
	})
	assert.ErrorContains(t, err, "delivered to 300 of 500 recipients")
	assert.Equal(t, 300, sent)
}

func TestService_Send_PublisherFailureDoesNotAbort(t *testing.T) {
	repo := new(RepoMock)
	pub := new(PublisherMock)
	svc := New(repo, pub, newNoopLogger())

	repo.On("ListRecipients", mock.Anything, models.AudienceSpecific, "", "uid-1", mock.Anything).
		Return([]*models.User{{UID: "uid-1", Email: "one@example.com"}}, nil).Once()
	repo.On("CreateNotificationsBatch", mock.Anything, mock.Anything).Return(nil).Once()
	pub.On("Publish", mock.Anything).Return(errors.New("broker unavailable")).Once()

	sent, err := svc.Send(context.Background(), models.DummyNotificationSend{
		Audience: models.AudienceSpecific,
		UserUID:  "uid-1",
		Subject:  "s",
		Message:  "m",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestService_MarkRead(t *testing.T) {
	repo := new(RepoMock)
	svc := New(repo, nil, newNoopLogger())

	repo.On("MarkNotificationRead", mock.Anything, "uid-1", 7).Return(nil).Once()
	require.NoError(t, svc.MarkRead(context.Background(), "uid-1", 7))
	repo.AssertExpectations(t)
}
