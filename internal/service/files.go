package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/file-intake/internal/domain"
	"github.com/file-intake/pkg/sanitizer"
	"go.uber.org/zap"
)

// FileRepository persists uploaded files and their uploaders.
type FileRepository interface {
	EnsureUserProfile(ctx context.Context, email, firstName, lastName string) (domain.UserProfile, error)
	AddFile(ctx context.Context, file *domain.FileRecord) error
	GetFileByID(ctx context.Context, id string) (domain.FileRecord, error)
	RecentFiles(ctx context.Context, count int, order domain.SortOrder) ([]domain.FileRecord, error)
}

// DedupIndex maps an uploader's content digest to a stored file id.
type DedupIndex interface {
	Lookup(ctx context.Context, ownerID, digest string) (string, error)
	Remember(ctx context.Context, ownerID, digest, fileID string) error
	Forget(ctx context.Context, ownerID, digest string) error
}

// TextExtractor turns document bytes into plain text.
type TextExtractor interface {
	Extract(data []byte) (string, error)
}

// Tagger labels document text.
type Tagger interface {
	Tags(text string) []string
}

// UploadInput is one file handed to the intake service.
type UploadInput struct {
	OwnerEmail  string
	FirstName   string
	LastName    string
	FileName    string
	ContentType string
	Data        []byte
}

// UploadResult is the stored record and whether it already existed.
type UploadResult struct {
	File      *domain.FileRecord
	Duplicate bool
}

// FileIntakeConfig contains configuration for the FileIntake service.
type FileIntakeConfig struct {
	MaxFileSize int64
	RecentCount int
}

// FileIntake accepts uploaded PDFs, extracts and tags their text and stores
// them.
type FileIntake struct {
	repo      FileRepository
	dedup     DedupIndex
	extractor TextExtractor
	tagger    Tagger
	sanitizer *sanitizer.Sanitizer
	config    FileIntakeConfig
	logger    *zap.Logger
}

// NewFileIntake creates the intake service. dedup and tagger may be nil.
func NewFileIntake(
	repo FileRepository,
	dedup DedupIndex,
	extractor TextExtractor,
	tagger Tagger,
	sanitizer *sanitizer.Sanitizer,
	config FileIntakeConfig,
	logger *zap.Logger,
) *FileIntake {
	if config.RecentCount <= 0 {
		config.RecentCount = 5
	}
	return &FileIntake{
		repo:      repo,
		dedup:     dedup,
		extractor: extractor,
		tagger:    tagger,
		sanitizer: sanitizer,
		config:    config,
		logger:    logger.Named("file_intake"),
	}
}

// Upload processes an uploaded file:
// 1. Reject empty and oversized files
// 2. Resolve the uploader profile
// 3. Return the stored record for a recent identical upload
// 4. Extract, sanitize and tag the text
// 5. Persist the record and remember its digest
func (s *FileIntake) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	startTime := time.Now()

	// Step 1: Validate input
	if len(in.Data) == 0 {
		return UploadResult{}, domain.ErrEmptyFile
	}
	if s.config.MaxFileSize > 0 && int64(len(in.Data)) > s.config.MaxFileSize {
		return UploadResult{}, domain.ErrFileTooLarge
	}
	if strings.TrimSpace(in.OwnerEmail) == "" {
		return UploadResult{}, domain.ErrUserRequired
	}

	// Step 2: Resolve the uploader
	owner, err := s.repo.EnsureUserProfile(ctx, in.OwnerEmail, in.FirstName, in.LastName)
	if err != nil {
		s.logger.Error("resolving uploader failed", zap.Error(err))
		return UploadResult{}, &domain.UploadError{Err: err}
	}

	sum := sha256.Sum256(in.Data)
	digest := hex.EncodeToString(sum[:])

	// Step 3: Check for a recent identical upload
	if existing := s.findDuplicate(ctx, owner.ID, digest); existing != nil {
		s.logger.Info("duplicate upload",
			zap.String("file_id", existing.ID),
			zap.String("file_name", in.FileName),
		)
		return UploadResult{File: existing, Duplicate: true}, nil
	}

	// Step 4: Extract and clean the text
	raw, err := s.extractor.Extract(in.Data)
	if err != nil {
		s.logger.Warn("text extraction failed",
			zap.String("file_name", in.FileName),
			zap.Error(err),
		)
		return UploadResult{}, &domain.UploadError{Err: err}
	}

	text, stats := s.sanitizer.SanitizeWithStats(raw)
	s.logger.Debug("text sanitized",
		zap.Int("original_size", stats.OriginalSize),
		zap.Int("sanitized_size", stats.SanitizedSize),
		zap.Int("secrets_found", stats.SecretsFound),
		zap.Bool("truncated", stats.Truncated),
	)

	record := &domain.FileRecord{
		FileName:      in.FileName,
		ContentType:   in.ContentType,
		FileSize:      int64(len(in.Data)),
		UploadedAt:    time.Now().UTC(),
		FileText:      text,
		ContentSHA256: digest,
		UserProfileID: owner.ID,
		UserProfile:   &owner,
	}
	if s.tagger != nil {
		for _, tag := range s.tagger.Tags(text) {
			record.Tags = append(record.Tags, domain.FileTag{TagName: tag})
		}
	}

	// Step 5: Persist
	if err := s.repo.AddFile(ctx, record); err != nil {
		s.logger.Error("storing file failed",
			zap.String("file_name", in.FileName),
			zap.Error(err),
		)
		return UploadResult{}, &domain.UploadError{Err: err}
	}

	if s.dedup != nil {
		if err := s.dedup.Remember(ctx, owner.ID, digest, record.ID); err != nil {
			s.logger.Warn("dedup index unavailable", zap.Error(err))
		}
	}

	s.logger.Info("file uploaded",
		zap.String("file_id", record.ID),
		zap.String("file_name", record.FileName),
		zap.Int64("file_size", record.FileSize),
		zap.Strings("tags", record.TagNames()),
		zap.Duration("duration", time.Since(startTime)),
	)

	return UploadResult{File: record}, nil
}

// findDuplicate returns the stored record for a remembered digest. Index
// failures and stale entries are treated as misses.
func (s *FileIntake) findDuplicate(ctx context.Context, ownerID, digest string) *domain.FileRecord {
	if s.dedup == nil {
		return nil
	}

	id, err := s.dedup.Lookup(ctx, ownerID, digest)
	if err != nil {
		s.logger.Warn("dedup index unavailable", zap.Error(err))
		return nil
	}
	if id == "" {
		return nil
	}

	existing, err := s.repo.GetFileByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrFileNotFound) {
			s.logger.Warn("loading duplicate failed", zap.String("file_id", id), zap.Error(err))
			return nil
		}
		if err := s.dedup.Forget(ctx, ownerID, digest); err != nil {
			s.logger.Warn("dropping stale dedup entry failed", zap.Error(err))
		}
		return nil
	}
	return &existing
}

// Recent lists files in the given order. A non-positive count uses the
// configured default.
func (s *FileIntake) Recent(ctx context.Context, count int, order domain.SortOrder) ([]domain.FileRecord, error) {
	if count <= 0 {
		count = s.config.RecentCount
	}
	s.logger.Debug("fetching recent files",
		zap.Int("count", count),
		zap.String("sort", string(order)),
	)
	return s.repo.RecentFiles(ctx, count, order)
}

// Get returns one file with its extracted text.
func (s *FileIntake) Get(ctx context.Context, id string) (domain.FileRecord, error) {
	return s.repo.GetFileByID(ctx, id)
}
