//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex-labs/veridex/internal/testutil"
)

func newTestClient(ctx context.Context, t *testing.T, prefix string) *S3Client {
	rc := testutil.NewRustFSContainer(ctx, t)
	t.Cleanup(func() { rc.Terminate(ctx) })

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "veridex-test",
		Prefix:          prefix,
		UsePathStyle:    true,
	})
	require.NoError(t, err)
	require.NoError(t, client.EnsureBucket(ctx))
	return client
}

func TestS3PutGetRoundtrip(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t, "snapshots")

	payload := []byte("vector snapshot payload")
	require.NoError(t, client.Put(ctx, "vectors.bin", payload))

	got, err := client.Get(ctx, "vectors.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	meta, err := client.Head(ctx, "vectors.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), meta.ContentLength)
}

func TestS3GetMissingObject(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t, "snapshots")

	_, err := client.Get(ctx, "does-not-exist.bin")
	assert.Error(t, err)
}

func TestS3EnsureBucketIdempotent(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t, "")

	assert.NoError(t, client.EnsureBucket(ctx))
	assert.NoError(t, client.EnsureBucket(ctx))
}

func TestS3PrefixScopesKeys(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(ctx, t, "a")

	require.NoError(t, client.Put(ctx, "metadata.json", []byte("{}")))

	assert.Equal(t, "a/metadata.json", client.key("metadata.json"))

	got, err := client.Get(ctx, "metadata.json")
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), got)
}
