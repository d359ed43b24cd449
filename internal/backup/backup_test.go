package backup

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"minitweet/internal/storage"
)

type fakeStorage struct {
	mu      sync.Mutex
	uploads [][]string
	opts    []storage.UploadOptions
	objects []storage.ObjectInfo
}

func (f *fakeStorage) UploadFiles(_ context.Context, paths []string, opts storage.UploadOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, paths)
	f.opts = append(f.opts, opts)
	return "s3://" + opts.Bucket + "/" + opts.KeyPrefix, nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _, _ string) ([]storage.ObjectInfo, error) {
	return f.objects, nil
}

func (f *fakeStorage) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func TestSnapshotUploadsExistingFilesOnly(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	tweetsPath := filepath.Join(dir, "tweets.json")
	require.NoError(t, os.WriteFile(usersPath, []byte("[]"), 0o644))
	// tweets.json deliberately missing

	fake := &fakeStorage{}
	svc := New(Config{
		Bucket:    "my-bucket",
		KeyPrefix: "snapshots",
		Paths:     []string{usersPath, tweetsPath},
	}, fake)

	location, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Contains(t, location, "s3://my-bucket/snapshots/")

	require.Len(t, fake.uploads, 1)
	require.Equal(t, []string{usersPath}, fake.uploads[0])
	require.Equal(t, "my-bucket", fake.opts[0].Bucket)
	require.Contains(t, fake.opts[0].KeyPrefix, "snapshots/")
}

func TestSnapshotFailsWithNothingToUpload(t *testing.T) {
	fake := &fakeStorage{}
	svc := New(Config{
		Bucket:    "my-bucket",
		KeyPrefix: "snapshots",
		Paths:     []string{filepath.Join(t.TempDir(), "users.json")},
	}, fake)

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
	require.Empty(t, fake.uploads)
}

func TestStartWithZeroIntervalDoesNothing(t *testing.T) {
	fake := &fakeStorage{}
	svc := New(Config{Bucket: "b", KeyPrefix: "p"}, fake)

	svc.Start(context.Background())
	svc.Shutdown()
	require.Empty(t, fake.uploads)
}

func TestStartAfterShutdownRestartsLoop(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.json")
	require.NoError(t, os.WriteFile(usersPath, []byte("[]"), 0o644))

	fake := &fakeStorage{}
	svc := New(Config{
		Bucket:    "my-bucket",
		KeyPrefix: "snapshots",
		Paths:     []string{usersPath},
		Interval:  10 * time.Millisecond,
	}, fake)

	ctx := context.Background()
	svc.Start(ctx)
	require.Eventually(t, func() bool { return fake.uploadCount() > 0 },
		time.Second, 5*time.Millisecond)
	svc.Shutdown()

	count := fake.uploadCount()
	svc.Start(ctx)
	require.Eventually(t, func() bool { return fake.uploadCount() > count },
		time.Second, 5*time.Millisecond)
	svc.Shutdown()
}
