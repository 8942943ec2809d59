package curriculum

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/objectstore"
)

type fakeRepo struct {
	mu        sync.Mutex
	blocks    map[string]*models.CurriculumBlock
	videos    []models.Video
	failVideo error
}

func newFakeRepo(blocks ...models.CurriculumBlock) *fakeRepo {
	r := &fakeRepo{blocks: map[string]*models.CurriculumBlock{}}
	for i := range blocks {
		b := blocks[i]
		r.blocks[b.ID] = &b
	}
	return r
}

func (r *fakeRepo) WithinTransaction(ctx context.Context, fn func(tx Repository) error) error {
	// one transaction at a time mirrors the row lock
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := map[string]string{}
	for id, b := range r.blocks {
		snapshot[id] = b.TotalDuration
	}
	videoCount := len(r.videos)

	if err := fn(r); err != nil {
		for id, d := range snapshot {
			r.blocks[id].TotalDuration = d
		}
		r.videos = r.videos[:videoCount]
		return err
	}
	return nil
}

func (r *fakeRepo) LockBlock(ctx context.Context, blockID string) (*models.CurriculumBlock, error) {
	b, ok := r.blocks[blockID]
	if !ok {
		return nil, ErrBlockNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeRepo) CreateVideo(ctx context.Context, video *models.Video) error {
	if r.failVideo != nil {
		return r.failVideo
	}
	video.ID = "video-" + video.Title
	r.videos = append(r.videos, *video)
	return nil
}

func (r *fakeRepo) UpdateBlockDuration(ctx context.Context, blockID, totalDuration string) error {
	r.blocks[blockID].TotalDuration = totalDuration
	return nil
}

type fakeStore struct {
	uploaded []string
	err      error
}

func (s *fakeStore) Upload(ctx context.Context, objectKey string, body io.Reader, size int64, contentType string) (*objectstore.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.uploaded = append(s.uploaded, objectKey)
	return &objectstore.UploadResult{URL: "https://cdn.test/" + objectKey, PublicID: objectKey, Size: size}, nil
}

func (s *fakeStore) Delete(ctx context.Context, publicID string) error { return nil }

type fakeCleaner struct {
	deleted []string
}

func (c *fakeCleaner) EnqueueMediaDelete(publicID string) error {
	c.deleted = append(c.deleted, publicID)
	return nil
}

func TestAddVideoToBlockFoldsDurations(t *testing.T) {
	repo := newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "00:00"})
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, _, err := svc.AddVideoToBlock(ctx, "b1", NewVideo{Title: "intro", Duration: "10:00"})
	require.NoError(t, err)
	_, block, err := svc.AddVideoToBlock(ctx, "b1", NewVideo{Title: "setup", Duration: "05:30"})
	require.NoError(t, err)

	assert.Equal(t, "15:30", block.TotalDuration)
	assert.Equal(t, "15:30", repo.blocks["b1"].TotalDuration)
	assert.Len(t, repo.videos, 2)
}

func TestAddVideoToBlockRejectsMalformedDuration(t *testing.T) {
	repo := newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "01:00"})
	svc := NewService(repo, nil, nil)

	_, _, err := svc.AddVideoToBlock(context.Background(), "b1", NewVideo{Title: "x", Duration: "abc"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Equal(t, "01:00", repo.blocks["b1"].TotalDuration)
	assert.Empty(t, repo.videos)
}

func TestAddVideoToBlockErrors(t *testing.T) {
	t.Run("missing block", func(t *testing.T) {
		svc := NewService(newFakeRepo(), nil, nil)
		_, _, err := svc.AddVideoToBlock(context.Background(), "nope", NewVideo{Title: "x", Duration: "01:00"})
		assert.ErrorIs(t, err, ErrBlockNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("corrupt stored total", func(t *testing.T) {
		svc := NewService(newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "garbage"}), nil, nil)
		_, _, err := svc.AddVideoToBlock(context.Background(), "b1", NewVideo{Title: "x", Duration: "01:00"})
		assert.ErrorIs(t, err, ErrCorruptBlockDuration)
		assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	})

	t.Run("insert failure rolls back the fold", func(t *testing.T) {
		repo := newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "02:00"})
		repo.failVideo = errors.New("db down")
		svc := NewService(repo, nil, nil)
		_, _, err := svc.AddVideoToBlock(context.Background(), "b1", NewVideo{Title: "x", Duration: "01:00"})
		assert.Error(t, err)
		assert.Equal(t, "02:00", repo.blocks["b1"].TotalDuration)
	})
}

func TestAddVideoToBlockConcurrent(t *testing.T) {
	repo := newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "00:00"})
	svc := NewService(repo, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := svc.AddVideoToBlock(context.Background(), "b1", NewVideo{Title: "clip", Duration: "00:30"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "15:00", repo.blocks["b1"].TotalDuration)
}

func TestUploadVideo(t *testing.T) {
	repo := newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "00:00"})
	store := &fakeStore{}
	cleaner := &fakeCleaner{}
	svc := NewService(repo, store, cleaner)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC) }

	video, block, err := svc.UploadVideo(context.Background(), "b1", Upload{
		Title:    "lesson",
		Duration: "03:15",
		FileName: "lesson.mp4",
		Size:     4,
		Body:     strings.NewReader("data"),
	})
	require.NoError(t, err)

	require.Len(t, store.uploaded, 1)
	assert.True(t, strings.HasPrefix(store.uploaded[0], "videos/2026/01/b1/"))
	assert.Equal(t, store.uploaded[0], video.PublicID)
	assert.Equal(t, "https://cdn.test/"+store.uploaded[0], video.URL)
	assert.Equal(t, "03:15", block.TotalDuration)
	assert.Empty(t, cleaner.deleted)
}

func TestUploadVideoCleansUpWhenAttachFails(t *testing.T) {
	store := &fakeStore{}
	cleaner := &fakeCleaner{}
	svc := NewService(newFakeRepo(), store, cleaner)

	_, _, err := svc.UploadVideo(context.Background(), "missing", Upload{
		Title: "lesson", Duration: "03:15", FileName: "a.mp4", Size: 1, Body: strings.NewReader("x"),
	})

	assert.ErrorIs(t, err, ErrBlockNotFound)
	assert.Equal(t, store.uploaded, cleaner.deleted)
}

func TestUploadVideoValidatesBeforeUpload(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(newFakeRepo(models.CurriculumBlock{ID: "b1", TotalDuration: "00:00"}), store, nil)

	_, _, err := svc.UploadVideo(context.Background(), "b1", Upload{Title: "x", Duration: "7", Body: strings.NewReader("")})

	assert.ErrorIs(t, err, ErrInvalidDuration)
	assert.Empty(t, store.uploaded)
}

func TestUploadVideoWithoutStore(t *testing.T) {
	svc := NewService(newFakeRepo(), nil, nil)
	_, _, err := svc.UploadVideo(context.Background(), "b1", Upload{Duration: "01:00"})
	assert.ErrorIs(t, err, ErrMediaStoreUnavailable)
}
