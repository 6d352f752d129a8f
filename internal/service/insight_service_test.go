package service

import (
	"context"
	"testing"
	"time"

	"sparke-core-be/internal/dto"
	"sparke-core-be/internal/entity"
	internalEvents "sparke-core-be/internal/events"
	"sparke-core-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInsightServiceForTest(uow *fakeUnitOfWork, jobs *fakeJobPublisher, broadcaster *internalEvents.Broadcaster) IInsightService {
	if broadcaster == nil {
		broadcaster = internalEvents.NewBroadcaster(nopLogger{})
	}
	return NewInsightService(&fakeFactory{uow: uow}, jobs, broadcaster, nopLogger{})
}

func TestCreateInsightSession(t *testing.T) {
	userId := uuid.New()
	subjectId := uuid.New()
	docA := uuid.New()
	docB := uuid.New()

	t.Run("creates pending session and enqueues the job", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.documents.countResult = 2
		jobs := &fakeJobPublisher{}
		svc := newInsightServiceForTest(uow, jobs, nil)

		res, err := svc.Create(context.Background(), userId, subjectId, &dto.CreateInsightSessionRequest{
			DocumentIds: []uuid.UUID{docA, docB, docA},
		})
		require.NoError(t, err)
		assert.Equal(t, "PENDING", res.Status)

		require.Len(t, uow.sessions.created, 1)
		assert.Equal(t, []uuid.UUID{docA, docB}, uow.sessions.created[0].DocumentIds, "duplicate ids collapse")

		require.Len(t, jobs.published, 1)
		payload := jobs.published[0].Payload()
		assert.Equal(t, subjectId.String(), payload["subjectId"])
		assert.Equal(t, res.Id.String(), payload["sessionId"])
	})

	t.Run("publish failure still creates the session", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.documents.countResult = 1
		jobs := &fakeJobPublisher{publishErr: assert.AnError}
		svc := newInsightServiceForTest(uow, jobs, nil)

		res, err := svc.Create(context.Background(), userId, subjectId, &dto.CreateInsightSessionRequest{
			DocumentIds: []uuid.UUID{docA},
		})
		require.NoError(t, err)
		assert.Equal(t, "PENDING", res.Status)
		assert.Len(t, uow.sessions.created, 1)
	})

	t.Run("document outside the subject is not found", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.documents.countResult = 1
		svc := newInsightServiceForTest(uow, &fakeJobPublisher{}, nil)

		_, err := svc.Create(context.Background(), userId, subjectId, &dto.CreateInsightSessionRequest{
			DocumentIds: []uuid.UUID{docA, docB},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
		assert.Empty(t, uow.sessions.created)
	})
}

func TestStreamInsightSession(t *testing.T) {
	userId := uuid.New()
	subjectId := uuid.New()

	t.Run("pending session subscribes to the broadcaster", func(t *testing.T) {
		session := &entity.InsightSession{
			Id:        uuid.New(),
			SubjectId: subjectId,
			Status:    entity.InsightSessionPending,
			CreatedAt: time.Now(),
		}
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.sessions.session = session
		broadcaster := internalEvents.NewBroadcaster(nopLogger{})
		svc := newInsightServiceForTest(uow, &fakeJobPublisher{}, broadcaster)

		snapshot, events, cancel, err := svc.Stream(context.Background(), userId, session.Id)
		require.NoError(t, err)
		defer cancel()

		assert.Equal(t, "PENDING", snapshot.Status)
		assert.Equal(t, 1, broadcaster.SubscriberCount(session.Id))

		broadcaster.Emit(internalEvents.SessionEvent{SessionId: session.Id, Status: "READY", OccurredAt: time.Now()})
		event, ok := <-events
		require.True(t, ok)
		assert.Equal(t, "READY", event.Status)
	})

	t.Run("finished session gets a closed channel", func(t *testing.T) {
		session := &entity.InsightSession{
			Id:        uuid.New(),
			SubjectId: subjectId,
			Status:    entity.InsightSessionFailed,
			Result:    []byte(`{"error":"worker crashed"}`),
		}
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.sessions.session = session
		broadcaster := internalEvents.NewBroadcaster(nopLogger{})
		svc := newInsightServiceForTest(uow, &fakeJobPublisher{}, broadcaster)

		snapshot, events, cancel, err := svc.Stream(context.Background(), userId, session.Id)
		require.NoError(t, err)
		defer cancel()

		assert.Equal(t, "FAILED", snapshot.Status)
		_, ok := <-events
		assert.False(t, ok)
		assert.Zero(t, broadcaster.SubscriberCount(session.Id))
	})

	t.Run("terminal transition during subscribe is not missed", func(t *testing.T) {
		// The worker finishes between the snapshot read and the subscription,
		// so the terminal emit lands before anyone listens. The re-read after
		// subscribing must hand back the terminal state and a closed channel.
		pending := &entity.InsightSession{
			Id:        uuid.New(),
			SubjectId: subjectId,
			Status:    entity.InsightSessionPending,
			CreatedAt: time.Now(),
		}
		ready := &entity.InsightSession{
			Id:        pending.Id,
			SubjectId: subjectId,
			Status:    entity.InsightSessionReady,
			Result:    []byte(`{"summary":"done"}`),
			CreatedAt: pending.CreatedAt,
		}
		uow := newFakeUnitOfWork()
		uow.subjects.subject = ownedSubject(userId)
		uow.sessions.queue = []*entity.InsightSession{pending, ready}
		broadcaster := internalEvents.NewBroadcaster(nopLogger{})
		svc := newInsightServiceForTest(uow, &fakeJobPublisher{}, broadcaster)

		snapshot, events, cancel, err := svc.Stream(context.Background(), userId, pending.Id)
		require.NoError(t, err)
		defer cancel()

		assert.Equal(t, "READY", snapshot.Status)
		_, ok := <-events
		assert.False(t, ok)
		assert.Zero(t, broadcaster.SubscriberCount(pending.Id))
	})

	t.Run("session of another user is hidden", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.sessions.session = &entity.InsightSession{
			Id:        uuid.New(),
			SubjectId: subjectId,
			Status:    entity.InsightSessionPending,
		}
		svc := newInsightServiceForTest(uow, &fakeJobPublisher{}, nil)

		_, _, _, err := svc.Stream(context.Background(), userId, uow.sessions.session.Id)
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})
}
