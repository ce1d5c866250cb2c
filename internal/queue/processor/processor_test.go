package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vibe-gaming/passwordless/internal/queue/task"
	"github.com/vibe-gaming/passwordless/internal/worker"
)

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendWelcomeEmail(ctx context.Context, email string, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

type mockSweeper struct {
	mock.Mock
}

func (m *mockSweeper) SweepExpired(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestSendWelcomeEmailProcessor(t *testing.T) {
	sender := &mockEmailSender{}
	sender.On("SendWelcomeEmail", mock.Anything, "a@example.com", "Ada").Return(nil).Once()

	tsk, err := task.NewSendWelcomeEmailTask("a@example.com", "Ada")
	require.NoError(t, err)

	p := NewSendWelcomeEmailProcessor(&worker.Workers{EmailSender: sender})

	require.NoError(t, p.ProcessTask(context.Background(), tsk))
	sender.AssertExpectations(t)
}

func TestSendWelcomeEmailProcessor_BadPayloadSkipsRetry(t *testing.T) {
	sender := &mockEmailSender{}
	p := NewSendWelcomeEmailProcessor(&worker.Workers{EmailSender: sender})

	err := p.ProcessTask(context.Background(), asynq.NewTask(task.SendWelcomeEmailTaskName, []byte("{")))

	require.ErrorIs(t, err, asynq.SkipRetry)
	sender.AssertNotCalled(t, "SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendWelcomeEmailProcessor_SenderError(t *testing.T) {
	cause := errors.New("smtp down")
	sender := &mockEmailSender{}
	sender.On("SendWelcomeEmail", mock.Anything, mock.Anything, mock.Anything).Return(cause)

	tsk, err := task.NewSendWelcomeEmailTask("a@example.com", "Ada")
	require.NoError(t, err)

	err = NewSendWelcomeEmailProcessor(&worker.Workers{EmailSender: sender}).ProcessTask(context.Background(), tsk)

	require.ErrorIs(t, err, cause)
}

func TestSweepExpiredProcessor(t *testing.T) {
	sweeper := &mockSweeper{}
	sweeper.On("SweepExpired", mock.Anything).Return(nil).Once()

	p := NewSweepExpiredProcessor(&worker.Workers{Sweeper: sweeper})

	require.NoError(t, p.ProcessTask(context.Background(), task.NewSweepExpiredTask()))
	sweeper.AssertExpectations(t)
}
