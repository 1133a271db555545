package kafka

import (
	"ViewCounter/internal/api/dto"
	"ViewCounter/internal/service"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCounterService struct {
	mu      sync.Mutex
	ensured []string
	err     error
}

func (f *fakeCounterService) GetViewCount(context.Context, string) (*dto.ViewCountDTO, error) {
	return nil, errors.New("not used")
}

func (f *fakeCounterService) IncrementViewCount(context.Context, string) (*dto.ViewCountDTO, error) {
	return nil, errors.New("not used")
}

func (f *fakeCounterService) EnsureCounter(_ context.Context, entityID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if entityID == "" {
		return service.ErrParamInvalid
	}
	if f.err != nil {
		return f.err
	}
	f.ensured = append(f.ensured, entityID)
	return nil
}

type fakeSession struct {
	ctx    context.Context
	mu     sync.Mutex
	marked []*sarama.ConsumerMessage
}

func (s *fakeSession) Claims() map[string][]int32               { return nil }
func (s *fakeSession) MemberID() string                         { return "member" }
func (s *fakeSession) GenerationID() int32                      { return 1 }
func (s *fakeSession) MarkOffset(string, int32, int64, string)  {}
func (s *fakeSession) Commit()                                  {}
func (s *fakeSession) ResetOffset(string, int32, int64, string) {}
func (s *fakeSession) Context() context.Context                 { return s.ctx }
func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marked = append(s.marked, msg)
}

type fakeClaim struct {
	ch chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Topic() string                            { return "canal-videos" }
func (c *fakeClaim) Partition() int32                         { return 0 }
func (c *fakeClaim) InitialOffset() int64                     { return 0 }
func (c *fakeClaim) HighWaterMarkOffset() int64               { return 0 }
func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage { return c.ch }

func canalMsg(offset int64, body string) *sarama.ConsumerMessage {
	return &sarama.ConsumerMessage{Topic: "canal-videos", Offset: offset, Value: []byte(body)}
}

func TestToCanalMessage(t *testing.T) {
	msg, err := ToCanalMessage(canalMsg(1, `{"table":"videos","type":"INSERT","data":[{"id":"v1"}]}`), "videos")
	require.NoError(t, err)
	assert.Equal(t, INSERT, msg.Type)
	assert.Equal(t, "v1", msg.Data[0]["id"])

	_, err = ToCanalMessage(canalMsg(2, `{"table":"users","type":"INSERT","data":[{"id":"u1"}]}`), "videos")
	assert.ErrorIs(t, err, ErrTableNotMatch)

	_, err = ToCanalMessage(canalMsg(3, `{"table":"videos","type":"INSERT","data":[]}`), "videos")
	assert.ErrorIs(t, err, ErrEmptyData)

	_, err = ToCanalMessage(canalMsg(4, `not json`), "videos")
	assert.Error(t, err)
}

func TestEntityHandlerLogic(t *testing.T) {
	ctx := context.Background()

	t.Run("insert ensures every row", func(t *testing.T) {
		svc := &fakeCounterService{}
		h := NewEntityHandler(svc, "videos", "id")
		err := h.logic(ctx, canalMsg(1, `{"table":"videos","type":"INSERT","data":[{"id":"v1"},{"id":42}]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"v1", "42"}, svc.ensured)
	})

	t.Run("update and delete are ignored", func(t *testing.T) {
		svc := &fakeCounterService{}
		h := NewEntityHandler(svc, "videos", "id")
		require.NoError(t, h.logic(ctx, canalMsg(1, `{"table":"videos","type":"UPDATE","data":[{"id":"v1"}]}`)))
		require.NoError(t, h.logic(ctx, canalMsg(2, `{"table":"videos","type":"DELETE","data":[{"id":"v1"}]}`)))
		assert.Empty(t, svc.ensured)
	})

	t.Run("other tables and malformed payloads are skipped", func(t *testing.T) {
		svc := &fakeCounterService{}
		h := NewEntityHandler(svc, "videos", "id")
		require.NoError(t, h.logic(ctx, canalMsg(1, `{"table":"users","type":"INSERT","data":[{"id":"u1"}]}`)))
		require.NoError(t, h.logic(ctx, canalMsg(2, `{{`)))
		assert.Empty(t, svc.ensured)
	})

	t.Run("missing id column is skipped", func(t *testing.T) {
		svc := &fakeCounterService{}
		h := NewEntityHandler(svc, "videos", "id")
		err := h.logic(ctx, canalMsg(1, `{"table":"videos","type":"INSERT","data":[{"title":"x"},{"id":"v2"}]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"v2"}, svc.ensured)
	})

	t.Run("store error is returned for retry", func(t *testing.T) {
		svc := &fakeCounterService{err: service.ErrStoreUnavailable}
		h := NewEntityHandler(svc, "videos", "id")
		err := h.logic(ctx, canalMsg(1, `{"table":"videos","type":"INSERT","data":[{"id":"v1"}]}`))
		assert.ErrorIs(t, err, service.ErrStoreUnavailable)
	})
}

func TestProcessBatchMarksLastMessage(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	msgs := []*sarama.ConsumerMessage{canalMsg(1, "a"), canalMsg(2, "b"), canalMsg(3, "c")}

	var mu sync.Mutex
	attempts := map[int64]int{}
	processBatch(session, msgs, func(_ context.Context, m *sarama.ConsumerMessage) error {
		mu.Lock()
		defer mu.Unlock()
		attempts[m.Offset]++
		// 第一次失败，重试后成功
		if m.Offset == 2 && attempts[m.Offset] == 1 {
			return errors.New("transient")
		}
		return nil
	})

	assert.Equal(t, 2, attempts[2])
	require.Len(t, session.marked, 1)
	assert.Equal(t, int64(3), session.marked[0].Offset)
}

func TestProcessBatchStopsWhenSessionEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session := &fakeSession{ctx: ctx}
	cancel()

	processBatch(session, []*sarama.ConsumerMessage{canalMsg(1, "a")}, func(context.Context, *sarama.ConsumerMessage) error {
		return errors.New("always")
	})
	assert.Empty(t, session.marked)
}

func TestPullMessageBatchFlushesOnClose(t *testing.T) {
	session := &fakeSession{ctx: context.Background()}
	claim := &fakeClaim{ch: make(chan *sarama.ConsumerMessage, 4)}
	claim.ch <- canalMsg(10, "a")
	claim.ch <- canalMsg(11, "b")
	close(claim.ch)

	var mu sync.Mutex
	var seen []int64
	done := make(chan error, 1)
	go func() {
		done <- pullMessageBatch(session, claim, func(_ context.Context, m *sarama.ConsumerMessage) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, m.Offset)
			return nil
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("pullMessageBatch did not return")
	}
	assert.ElementsMatch(t, []int64{10, 11}, seen)
	require.Len(t, session.marked, 1)
	assert.Equal(t, int64(11), session.marked[0].Offset)
}
