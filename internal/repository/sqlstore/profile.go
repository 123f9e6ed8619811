package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

var _ repository.ProfileRepository = (*ProfileStore)(nil)

type ProfileStore struct {
	db *DB
}

const profileColumns = `id, username, email, full_name, bio, avatar_url, cooking_experience,
	password_hash, github_id, created_at, updated_at`

func scanProfile(s rowScanner) (*model.Profile, error) {
	var p model.Profile
	var githubID sql.NullInt64
	err := s.Scan(
		&p.ID,
		&p.Username,
		&p.Email,
		&p.FullName,
		&p.Bio,
		&p.AvatarURL,
		&p.CookingExperience,
		&p.PasswordHash,
		&githubID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if githubID.Valid {
		id := githubID.Int64
		p.GitHubID = &id
	}
	return &p, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// Create inserts a new profile and fills in ID and timestamps. A taken
// username or email is reported as a conflict.
func (s *ProfileStore) Create(ctx context.Context, p *model.Profile) error {
	ts := now()
	p.ID = newID()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return s.insert(ctx, p)
}

func (s *ProfileStore) insert(ctx context.Context, p *model.Profile) error {
	_, err := s.db.exec(ctx, s.db.conn,
		`INSERT INTO profiles (id, username, email, full_name, bio, avatar_url, cooking_experience,
		                       password_hash, github_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.Username,
		p.Email,
		p.FullName,
		p.Bio,
		p.AvatarURL,
		p.CookingExperience,
		p.PasswordHash,
		nullableInt64(p.GitHubID),
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("")
		}
		return fmt.Errorf("sqlstore: inserting profile %q: %w", p.Username, err)
	}
	return nil
}

func (s *ProfileStore) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	p, err := scanProfile(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile", id)
		}
		return nil, fmt.Errorf("sqlstore: getting profile %s: %w", id, err)
	}
	return p, nil
}

// GetByEmail expects email to be normalised to lower case by the caller.
func (s *ProfileStore) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	p, err := scanProfile(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+profileColumns+` FROM profiles WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile", email)
		}
		return nil, fmt.Errorf("sqlstore: getting profile by email: %w", err)
	}
	return p, nil
}

func (s *ProfileStore) UsernameTaken(ctx context.Context, username, excludeID string) (bool, error) {
	var n int
	err := s.db.queryRow(ctx, s.db.conn,
		`SELECT COUNT(*) FROM profiles WHERE username = ? AND id <> ?`, username, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking username %q: %w", username, err)
	}
	return n > 0, nil
}

// Update saves the editable profile fields. Email, password and GitHub link
// are not changed here.
func (s *ProfileStore) Update(ctx context.Context, p *model.Profile) error {
	p.UpdatedAt = now()
	res, err := s.db.exec(ctx, s.db.conn,
		`UPDATE profiles
		 SET username = ?, full_name = ?, bio = ?, avatar_url = ?, cooking_experience = ?, updated_at = ?
		 WHERE id = ?`,
		p.Username, p.FullName, p.Bio, p.AvatarURL, p.CookingExperience, p.UpdatedAt, p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Duplicate("username")
		}
		return fmt.Errorf("sqlstore: updating profile %s: %w", p.ID, err)
	}
	return requireAffected(res, "profile", p.ID)
}

// UpsertGitHub resolves a GitHub sign-in to a profile:
//
//  1. a profile already linked to the GitHub ID is refreshed (avatar only),
//  2. otherwise a profile with the same email gets linked,
//  3. otherwise p is inserted as a new profile.
//
// On return p holds the stored profile.
func (s *ProfileStore) UpsertGitHub(ctx context.Context, p *model.Profile) error {
	if p.GitHubID == nil {
		return fmt.Errorf("sqlstore: upserting GitHub profile without a GitHub ID")
	}

	existing, err := scanProfile(s.db.queryRow(ctx, s.db.conn,
		`SELECT `+profileColumns+` FROM profiles WHERE github_id = ?`, *p.GitHubID))
	switch {
	case err == nil:
		if p.AvatarURL != "" {
			existing.AvatarURL = p.AvatarURL
		}
		existing.UpdatedAt = now()
		if _, err := s.db.exec(ctx, s.db.conn,
			`UPDATE profiles SET avatar_url = ?, updated_at = ? WHERE id = ?`,
			existing.AvatarURL, existing.UpdatedAt, existing.ID,
		); err != nil {
			return fmt.Errorf("sqlstore: refreshing GitHub profile %s: %w", existing.ID, err)
		}
		*p = *existing
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("sqlstore: looking up github_id %d: %w", *p.GitHubID, err)
	}

	existing, err = s.GetByEmail(ctx, p.Email)
	switch {
	case err == nil:
		existing.GitHubID = p.GitHubID
		if existing.AvatarURL == "" {
			existing.AvatarURL = p.AvatarURL
		}
		existing.UpdatedAt = now()
		if _, err := s.db.exec(ctx, s.db.conn,
			`UPDATE profiles SET github_id = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			*existing.GitHubID, existing.AvatarURL, existing.UpdatedAt, existing.ID,
		); err != nil {
			return fmt.Errorf("sqlstore: linking GitHub to profile %s: %w", existing.ID, err)
		}
		*p = *existing
		return nil
	case !errors.Is(err, apperror.ErrNotFound):
		return err
	}

	return s.Create(ctx, p)
}
