package push

import (
	"context"
	"errors"
	"testing"

	"friendmarket/internal/featureflags"
	"friendmarket/internal/repository"
	"friendmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, tokens []string, msg Message) error {
	args := m.Called(ctx, tokens, msg)
	return args.Error(0)
}

func TestDispatcher_SendManual_GatewayOutcomes(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "one@example.com", testutil.WithDeviceToken("tok-1"))
	testutil.CreateUser(t, db, "two@example.com", testutil.WithDeviceToken("tok-2"))
	msg := Message{Title: "Mega post", Body: "Message", Post: 9}

	tests := []struct {
		name    string
		sendErr error
		wantErr bool
	}{
		{name: "delivered"},
		{name: "gateway not configured is skipped", sendErr: ErrNotConfigured},
		{name: "gateway failure surfaces", sendErr: errors.New("503 from gateway"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(mockSender)
			sender.On("Send", mock.Anything, []string{"tok-1", "tok-2"}, msg).Return(tt.sendErr).Once()
			d := NewDispatcher(repository.NewRecipientRepository(db), sender, nil, featureflags.NewManager(""))

			n, err := d.SendManual(context.Background(), []string{"ONE@example.com", "two@example.com"}, msg)
			assert.Equal(t, 2, n)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			sender.AssertExpectations(t)
		})
	}
}

func TestDispatcher_NoRecipientsNeverCallsGateway(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateUser(t, db, "quiet@example.com")
	sender := new(mockSender)
	d := NewDispatcher(repository.NewRecipientRepository(db), sender, nil, nil)

	n, err := d.SendManual(context.Background(), []string{"quiet@example.com"}, Message{Title: "x"})
	require.NoError(t, err)
	assert.Zero(t, n)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}
