package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	putKey      string
	putType     string
	putBody     []byte
	deletedKey  string
	putErr      error
	returnedTag string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putKey = aws.ToString(in.Key)
	f.putType = aws.ToString(in.ContentType)
	f.putBody, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{ETag: aws.String(f.returnedTag)}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deletedKey = aws.ToString(in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func newTestUploader(t *testing.T, base string, client objectPutter) *cloudflareR2Uploader {
	t.Helper()
	u, err := parsePublicBaseURL(base)
	require.NoError(t, err)
	return &cloudflareR2Uploader{s3Client: client, bucketName: "archives", publicBaseURL: u}
}

func TestGetPublicURL(t *testing.T) {
	cases := map[string]struct {
		base, key, want string
	}{
		"host only":          {"https://cdn.arena.gg", "chat-archives/lobby/1.json.zst", "https://cdn.arena.gg/chat-archives/lobby/1.json.zst"},
		"path without slash": {"https://cdn.arena.gg/files", "a/b.zst", "https://cdn.arena.gg/files/a/b.zst"},
		"path with slash":    {"https://cdn.arena.gg/files/", "/a/b.zst", "https://cdn.arena.gg/files/a/b.zst"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			u := newTestUploader(t, tc.base, &fakeS3{})
			assert.Equal(t, tc.want, u.GetPublicURL(tc.key))
		})
	}

	u := newTestUploader(t, "https://cdn.arena.gg", &fakeS3{})
	assert.Empty(t, u.GetPublicURL(""))
}

func TestUpload_TrimsETagAndBuildsLocation(t *testing.T) {
	fake := &fakeS3{returnedTag: `"abc123"`}
	u := newTestUploader(t, "https://cdn.arena.gg", fake)

	res, err := u.Upload(context.Background(), "chat-archives/lobby/1.json.zst", "application/zstd", bytes.NewReader([]byte("payload")))
	require.NoError(t, err)

	assert.Equal(t, "abc123", res.ETag)
	assert.Equal(t, "https://cdn.arena.gg/chat-archives/lobby/1.json.zst", res.Location)
	assert.Equal(t, "application/zstd", fake.putType)
	assert.Equal(t, []byte("payload"), fake.putBody)
}

func TestUpload_WrapsError(t *testing.T) {
	boom := errors.New("access denied")
	u := newTestUploader(t, "https://cdn.arena.gg", &fakeS3{putErr: boom})

	_, err := u.Upload(context.Background(), "k", "text/plain", bytes.NewReader(nil))
	require.ErrorIs(t, err, boom)
}

func TestDelete(t *testing.T) {
	fake := &fakeS3{}
	u := newTestUploader(t, "https://cdn.arena.gg", fake)

	require.NoError(t, u.Delete(context.Background(), "old.zst"))
	assert.Equal(t, "old.zst", fake.deletedKey)
}

func TestNewCloudflareR2Uploader_Validation(t *testing.T) {
	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"})
	require.Error(t, err)

	_, err = NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{
		AccountID: "acc", AccessKeyID: "k", SecretAccessKey: "s", BucketName: "b", PublicBaseURL: "not a url",
	})
	require.ErrorContains(t, err, "public base URL")
}
