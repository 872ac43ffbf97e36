//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

// TestDetectActor ensures hostname and username are resolved.
func TestDetectActor(t *testing.T) {
	t.Parallel()

	actor, err := DetectActor()
	require.NoError(t, err)
	require.NotEmpty(t, actor.Hostname)
	require.NotEmpty(t, actor.Username)
	require.Equal(t, actor.Username+"@"+actor.Hostname, actor.String())
}

// TestActorFromContext reads the actor from incoming metadata.
func TestActorFromContext(t *testing.T) {
	t.Parallel()

	_, ok := ActorFromContext(context.Background())
	require.False(t, ok)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorMetadataKey, "dev@laptop"))

	actor, ok := ActorFromContext(ctx)
	require.True(t, ok)
	require.Equal(t, "dev@laptop", actor)

	var nilActor *Actor
	require.Empty(t, nilActor.String())
}
