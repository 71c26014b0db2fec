package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/file-intake/internal/domain"
	"github.com/google/uuid"
)

const fileColumns = `f.id, f.file_name, f.content_type, f.file_size, f.uploaded_at, f.user_profile_id, f.content_sha256,
	u.id, u.email, u.first_name, u.last_name, u.created_at`

// AddFile inserts the record and its tags in one transaction. Empty ids and
// upload times are filled in.
func (s *Store) AddFile(ctx context.Context, file *domain.FileRecord) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedAt.IsZero() {
		file.UploadedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO file_records (id, file_name, content_type, file_size, uploaded_at, user_profile_id, file_text, content_sha256)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		file.ID, file.FileName, file.ContentType, file.FileSize, file.UploadedAt, file.UserProfileID, file.FileText, file.ContentSHA256)
	if err != nil {
		return fmt.Errorf("insert file record: %w", err)
	}

	for i := range file.Tags {
		if file.Tags[i].ID == "" {
			file.Tags[i].ID = uuid.NewString()
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO file_tags (id, file_record_id, tag_name) VALUES ($1,$2,$3)
			ON CONFLICT (file_record_id, tag_name) DO NOTHING`,
			file.Tags[i].ID, file.ID, file.Tags[i].TagName)
		if err != nil {
			return fmt.Errorf("insert file tag: %w", err)
		}
	}

	return tx.Commit()
}

// GetFileByID returns the record with its uploader, tags and extracted text.
func (s *Store) GetFileByID(ctx context.Context, id string) (domain.FileRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.FileRecord{}, domain.ErrFileNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+fileColumns+`, f.file_text
		FROM file_records f JOIN user_profiles u ON u.id = f.user_profile_id
		WHERE f.id = $1`, id)

	var f domain.FileRecord
	var u domain.UserProfile
	err := row.Scan(&f.ID, &f.FileName, &f.ContentType, &f.FileSize, &f.UploadedAt, &f.UserProfileID, &f.ContentSHA256,
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt, &f.FileText)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.FileRecord{}, domain.ErrFileNotFound
	}
	if err != nil {
		return domain.FileRecord{}, err
	}
	f.UserProfile = &u

	tags, err := s.tagsFor(ctx, []string{f.ID})
	if err != nil {
		return domain.FileRecord{}, err
	}
	f.Tags = tags[f.ID]
	return f, nil
}

// RecentFiles sorts all files by order and returns the first count of them.
// Extracted text is left out of listings.
func (s *Store) RecentFiles(ctx context.Context, count int, order domain.SortOrder) ([]domain.FileRecord, error) {
	if count <= 0 {
		count = 5
	}

	query := `SELECT ` + fileColumns + `
		FROM file_records f JOIN user_profiles u ON u.id = f.user_profile_id
		ORDER BY ` + orderClause(order) + ` LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, count)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []domain.FileRecord
	var ids []string
	for rows.Next() {
		var f domain.FileRecord
		var u domain.UserProfile
		if err := rows.Scan(&f.ID, &f.FileName, &f.ContentType, &f.FileSize, &f.UploadedAt, &f.UserProfileID, &f.ContentSHA256,
			&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
			return nil, err
		}
		f.UserProfile = &u
		files = append(files, f)
		ids = append(ids, f.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return files, nil
	}
	tags, err := s.tagsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range files {
		files[i].Tags = tags[files[i].ID]
	}
	return files, nil
}

func (s *Store) tagsFor(ctx context.Context, fileIDs []string) (map[string][]domain.FileTag, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, file_record_id, tag_name FROM file_tags
		WHERE file_record_id = ANY($1::uuid[]) ORDER BY tag_name`, fileIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]domain.FileTag, len(fileIDs))
	for rows.Next() {
		var tag domain.FileTag
		var fileID string
		if err := rows.Scan(&tag.ID, &fileID, &tag.TagName); err != nil {
			return nil, err
		}
		out[fileID] = append(out[fileID], tag)
	}
	return out, rows.Err()
}

// orderClause maps a sort order to a fixed ORDER BY expression. Only these
// literals ever reach the query text.
func orderClause(order domain.SortOrder) string {
	switch order {
	case domain.SortNameDesc:
		return "f.file_name DESC, f.id"
	case domain.SortDateAsc:
		return "f.uploaded_at ASC, f.id"
	case domain.SortDateDesc:
		return "f.uploaded_at DESC, f.id"
	case domain.SortUploaderAsc:
		return "u.first_name ASC, f.id"
	case domain.SortUploaderDesc:
		return "u.first_name DESC, f.id"
	default:
		return "f.file_name ASC, f.id"
	}
}
