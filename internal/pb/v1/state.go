package pb

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/oshokin/webkit-proxy/internal/domain/proxy"
)

// Struct field names of a proxy state message.
const (
	FieldStatus     = "status"
	FieldRunning    = "running"
	FieldPID        = "pid"
	FieldBinaryPath = "binary_path"
	FieldStartedAt  = "started_at"
)

// StateToStruct converts a domain state into its wire form.
// Optional fields are omitted when they hold zero values.
func StateToStruct(state *proxy.State) *structpb.Struct {
	message := &structpb.Struct{
		Fields: make(map[string]*structpb.Value, 5), //nolint:mnd // One entry per field.
	}

	if state == nil {
		message.Fields[FieldRunning] = structpb.NewBoolValue(false)

		return message
	}

	message.Fields[FieldStatus] = structpb.NewStringValue(state.Status)
	message.Fields[FieldRunning] = structpb.NewBoolValue(state.Running)

	if state.PID > 0 {
		message.Fields[FieldPID] = structpb.NewNumberValue(float64(state.PID))
	}

	if state.BinaryPath != "" {
		message.Fields[FieldBinaryPath] = structpb.NewStringValue(state.BinaryPath)
	}

	if !state.StartedAt.IsZero() {
		message.Fields[FieldStartedAt] = structpb.NewStringValue(state.StartedAt.UTC().Format(time.RFC3339Nano))
	}

	return message
}

// StateFromStruct converts a wire message into a domain state.
// Unknown fields are ignored and malformed ones are left at zero values.
func StateFromStruct(message *structpb.Struct) *proxy.State {
	state := new(proxy.State)

	fields := message.GetFields()
	if fields == nil {
		return state
	}

	state.Status = fields[FieldStatus].GetStringValue()
	state.Running = fields[FieldRunning].GetBoolValue()
	state.PID = int(fields[FieldPID].GetNumberValue())
	state.BinaryPath = fields[FieldBinaryPath].GetStringValue()

	if raw := fields[FieldStartedAt].GetStringValue(); raw != "" {
		if startedAt, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			state.StartedAt = startedAt
		}
	}

	return state
}
