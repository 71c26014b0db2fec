package store

import (
	"context"
	"strings"

	"github.com/file-intake/internal/domain"
	"github.com/google/uuid"
)

// EnsureUserProfile returns the profile for email, creating it on first use.
// Names are only filled in when the stored value is empty.
func (s *Store) EnsureUserProfile(ctx context.Context, email, firstName, lastName string) (domain.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var p domain.UserProfile
	err := s.db.QueryRowContext(ctx, `INSERT INTO user_profiles (id, email, first_name, last_name)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (email) DO UPDATE SET
			first_name = CASE WHEN user_profiles.first_name = '' THEN EXCLUDED.first_name ELSE user_profiles.first_name END,
			last_name = CASE WHEN user_profiles.last_name = '' THEN EXCLUDED.last_name ELSE user_profiles.last_name END
		RETURNING id, email, first_name, last_name, created_at`,
		uuid.NewString(), email, firstName, lastName,
	).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &p.CreatedAt)
	if err != nil {
		return domain.UserProfile{}, err
	}
	return p, nil
}
