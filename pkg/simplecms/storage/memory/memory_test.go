package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadDownload(t *testing.T) {
	backend := New()
	ctx := context.Background()

	err := backend.Upload(ctx, "entity/file/hero.png", strings.NewReader("image bytes"))
	require.NoError(t, err)

	reader, err := backend.Download(ctx, "entity/file/hero.png")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))
}

func TestDownloadMissingObject(t *testing.T) {
	backend := New()

	_, err := backend.Download(context.Background(), "nope")
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	backend := New()
	ctx := context.Background()

	require.NoError(t, backend.Upload(ctx, "key", strings.NewReader("data")))
	require.NoError(t, backend.Delete(ctx, "key"))

	_, err := backend.Download(ctx, "key")
	assert.Error(t, err)

	assert.Error(t, backend.Delete(ctx, "key"), "deleting a missing object reports it")
}
