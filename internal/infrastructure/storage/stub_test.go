package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubBrochureStorage(t *testing.T) {
	ctx := context.Background()
	s := NewStubBrochureStorage("")
	assert.Equal(t, DefaultStubBaseURL, s.BaseURL)

	url, err := s.Upload(ctx, "p1/a.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/p1/a.png", url)

	data, contentType, ok := s.Object("p1/a.png")
	require.True(t, ok)
	assert.Equal(t, "png", string(data))
	assert.Equal(t, "image/png", contentType)

	require.NoError(t, s.Delete(ctx, "p1/a.png"))
	require.NoError(t, s.Delete(ctx, "p1/a.png"), "deleting a missing key succeeds")
	assert.Equal(t, 0, s.Len())

	_, err = s.Upload(ctx, "", strings.NewReader(""), 0, "image/png")
	assert.Error(t, err)
	assert.Error(t, s.Delete(ctx, ""))
}

func TestStubBrochureStorage_BaseURL(t *testing.T) {
	s := NewStubBrochureStorage("http://localhost:8080/files/")
	url, err := s.Upload(context.Background(), "k.pdf", strings.NewReader("x"), 1, "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/k.pdf", url)
}
