package curriculum

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/LearnFox/app/models"
	"github.com/ManuelReschke/LearnFox/internal/pkg/apperr"
	"github.com/ManuelReschke/LearnFox/internal/pkg/objectstore"
)

var (
	ErrMediaStoreUnavailable = apperr.Upstream("media_store_unavailable", "media storage is not available")
	ErrCorruptBlockDuration  = apperr.Internal("corrupt_block_duration", "stored block duration is malformed")
)

// MediaCleaner schedules removal of uploaded objects that ended up unused.
type MediaCleaner interface {
	EnqueueMediaDelete(publicID string) error
}

// NewVideo describes a video to attach to a block.
type NewVideo struct {
	Title    string
	URL      string
	PublicID string
	Duration string
}

// Upload is a video file that still has to be stored.
type Upload struct {
	Title       string
	Duration    string
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Service maintains curriculum blocks and their aggregated durations.
type Service struct {
	repo    Repository
	store   objectstore.Store
	cleaner MediaCleaner
	now     func() time.Time
}

// NewService creates a curriculum service. store and cleaner may be nil when
// media uploads are not configured.
func NewService(repo Repository, store objectstore.Store, cleaner MediaCleaner) *Service {
	return &Service{repo: repo, store: store, cleaner: cleaner, now: time.Now}
}

// NewServiceFromDB creates a curriculum service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, store objectstore.Store, cleaner MediaCleaner) *Service {
	return NewService(NewRepository(db), store, cleaner)
}

// AddVideoToBlock stores the video and folds its duration into the block total
// in one transaction. The block row stays locked while the total is rewritten,
// so concurrent additions to the same block are applied one after another.
func (s *Service) AddVideoToBlock(ctx context.Context, blockID string, in NewVideo) (*models.Video, *models.CurriculumBlock, error) {
	if _, err := ToMinutes(in.Duration); err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, apperr.Validation("invalid_video", "video title is required")
	}

	video := &models.Video{
		BlockID:  blockID,
		Title:    strings.TrimSpace(in.Title),
		URL:      in.URL,
		PublicID: in.PublicID,
		Duration: strings.TrimSpace(in.Duration),
	}
	var block *models.CurriculumBlock

	err := s.repo.WithinTransaction(ctx, func(tx Repository) error {
		locked, err := tx.LockBlock(ctx, blockID)
		if err != nil {
			return err
		}

		if _, err := ToMinutes(locked.TotalDuration); err != nil {
			return apperr.Wrap(ErrCorruptBlockDuration, err)
		}
		total, err := AddDurations(locked.TotalDuration, video.Duration)
		if err != nil {
			return err
		}

		if err := tx.CreateVideo(ctx, video); err != nil {
			return fmt.Errorf("create video: %w", err)
		}
		if err := tx.UpdateBlockDuration(ctx, blockID, total); err != nil {
			return fmt.Errorf("update block duration: %w", err)
		}

		locked.TotalDuration = total
		block = locked
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	log.Infof("[Curriculum] Added video %s to block %s, total duration now %s", video.ID, blockID, block.TotalDuration)
	return video, block, nil
}

// UploadVideo stores the file in object storage and attaches it to the block.
// When attaching fails the uploaded object is scheduled for deletion.
func (s *Service) UploadVideo(ctx context.Context, blockID string, up Upload) (*models.Video, *models.CurriculumBlock, error) {
	if s.store == nil {
		return nil, nil, ErrMediaStoreUnavailable
	}
	// reject bad input before anything is uploaded
	if _, err := ToMinutes(up.Duration); err != nil {
		return nil, nil, err
	}

	key := objectstore.VideoKey(blockID, uuid.NewString(), filepath.Ext(up.FileName), s.now())
	stored, err := s.store.Upload(ctx, key, up.Body, up.Size, up.ContentType)
	if err != nil {
		return nil, nil, apperr.Wrap(ErrMediaStoreUnavailable, err)
	}

	video, block, err := s.AddVideoToBlock(ctx, blockID, NewVideo{
		Title:    up.Title,
		URL:      stored.URL,
		PublicID: stored.PublicID,
		Duration: up.Duration,
	})
	if err != nil {
		s.discard(stored.PublicID)
		return nil, nil, err
	}
	return video, block, nil
}

func (s *Service) discard(publicID string) {
	if s.cleaner == nil {
		log.Warnf("[Curriculum] No media cleaner configured, orphaned object %s kept", publicID)
		return
	}
	if err := s.cleaner.EnqueueMediaDelete(publicID); err != nil {
		log.Errorf("[Curriculum] Failed to schedule deletion of orphaned object %s: %v", publicID, err)
	}
}
