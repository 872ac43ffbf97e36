package pb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/webkit-proxy/internal/domain/proxy"
)

// TestStateStruct_Roundtrip converts a running state to the wire form and back.
func TestStateStruct_Roundtrip(t *testing.T) {
	t.Parallel()

	want := &proxy.State{
		Status:     proxy.StatusStarted,
		BinaryPath: "/home/user/.node-ios-webkit-debug-proxy/ios_webkit_debug_proxy",
		StartedAt:  time.Date(2024, 5, 1, 10, 30, 0, 123, time.UTC),
		PID:        4242,
		Running:    true,
	}

	message := StateToStruct(want)
	require.Equal(t, float64(4242), message.GetFields()[FieldPID].GetNumberValue())

	got := StateFromStruct(message)
	require.Equal(t, want.Status, got.Status)
	require.Equal(t, want.BinaryPath, got.BinaryPath)
	require.Equal(t, want.PID, got.PID)
	require.True(t, want.StartedAt.Equal(got.StartedAt))
	require.True(t, got.Running)
}

// TestStateToStruct_OmitsZeroFields keeps stopped states small.
func TestStateToStruct_OmitsZeroFields(t *testing.T) {
	t.Parallel()

	message := StateToStruct(&proxy.State{Status: proxy.StatusStopped})
	require.Len(t, message.GetFields(), 2)
	require.False(t, message.GetFields()[FieldRunning].GetBoolValue())

	require.Len(t, StateToStruct(nil).GetFields(), 1)
}

// TestStateFromStruct_Malformed ignores fields of the wrong kind.
func TestStateFromStruct_Malformed(t *testing.T) {
	t.Parallel()

	message, err := structpb.NewStruct(map[string]any{
		FieldPID:       "not a number",
		FieldStartedAt: "yesterday",
		FieldRunning:   true,
	})
	require.NoError(t, err)

	got := StateFromStruct(message)
	require.Zero(t, got.PID)
	require.True(t, got.StartedAt.IsZero())
	require.True(t, got.Running)

	require.Equal(t, &proxy.State{}, StateFromStruct(nil))
}
