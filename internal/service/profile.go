package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/recipe-share/internal/apperror"
	"github.com/sakif/recipe-share/internal/auth"
	"github.com/sakif/recipe-share/internal/model"
	"github.com/sakif/recipe-share/internal/repository"
)

// maxUsernameAttempts bounds the numeric suffixes tried when a GitHub login
// collides with an existing username.
const maxUsernameAttempts = 50

const invalidCredentials = "invalid email or password"

type RegisterInput struct {
	Username          string `json:"username" validate:"required,min=3,max=30,username"`
	Email             string `json:"email" validate:"required,email,max=254"`
	Password          string `json:"password" validate:"required,min=8,max=72"`
	FullName          string `json:"fullName" validate:"max=100"`
	CookingExperience string `json:"cookingExperience" validate:"omitempty,oneof=beginner intermediate expert"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ProfileUpdate is a partial update: nil fields are left unchanged.
type ProfileUpdate struct {
	Username          *string `json:"username" validate:"omitempty,min=3,max=30,username"`
	FullName          *string `json:"fullName" validate:"omitempty,max=100"`
	Bio               *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL         *string `json:"avatarUrl" validate:"omitempty,url"`
	CookingExperience *string `json:"cookingExperience" validate:"omitempty,oneof=beginner intermediate expert"`
}

// AuthResult pairs a signed-in profile with its session token.
type AuthResult struct {
	Profile *model.Profile `json:"profile"`
	Token   string         `json:"token"`
}

// ProfileService covers sign-up, sign-in and profile edits.
type ProfileService struct {
	profiles  repository.ProfileRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewProfileService(
	profiles repository.ProfileRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		profiles:  profiles,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a password account and signs it in. Emails are stored
// lower-cased; usernames keep their case but must be unique.
func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.CookingExperience == "" {
		in.CookingExperience = model.ExperienceBeginner
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	// the tag's max counts characters; bcrypt's limit is in bytes
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}

	taken, err := s.profiles.UsernameTaken(ctx, in.Username, "")
	if err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}
	if taken {
		return nil, apperror.Conflict("username", "this username is already taken")
	}
	switch _, err := s.profiles.GetByEmail(ctx, in.Email); {
	case err == nil:
		return nil, apperror.Conflict("email", "an account with this email already exists")
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, fmt.Errorf("registering: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	p := &model.Profile{
		Username:          in.Username,
		Email:             in.Email,
		FullName:          in.FullName,
		CookingExperience: in.CookingExperience,
		PasswordHash:      hash,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("registering: %w", err)
	}

	s.logger.Info("profile registered", slog.String("profileID", p.ID), slog.String("username", p.Username))
	return s.signIn(p)
}

// Login checks the password of the account registered under email. Unknown
// emails and wrong passwords get the same answer.
func (s *ProfileService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}

	p, err := s.profiles.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}
	if p.PasswordHash == "" {
		return nil, apperror.Unauthorized("this account signs in with GitHub")
	}
	if err := s.passwords.Verify(p.PasswordHash, in.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.String("profileID", p.ID))
			return nil, apperror.Unauthorized(invalidCredentials)
		}
		return nil, fmt.Errorf("logging in: %w", err)
	}

	return s.signIn(p)
}

// LoginGitHub signs in the account linked to a GitHub user, linking an
// existing account with the same email or creating a new one. A new
// account takes the GitHub login as username, with a numeric suffix when
// that name is already taken.
func (s *ProfileService) LoginGitHub(ctx context.Context, gh *auth.GitHubUser) (*AuthResult, error) {
	if gh == nil || gh.ID == 0 {
		return nil, fmt.Errorf("service/profile: GitHub user must not be empty")
	}

	username, err := s.freeUsername(ctx, githubUsername(gh.Login))
	if err != nil {
		return nil, err
	}

	githubID := gh.ID
	p := &model.Profile{
		Username:          username,
		Email:             strings.ToLower(strings.TrimSpace(gh.Email)),
		FullName:          strings.TrimSpace(gh.Name),
		Bio:               strings.TrimSpace(gh.Bio),
		AvatarURL:         gh.AvatarURL,
		CookingExperience: model.ExperienceBeginner,
		GitHubID:          &githubID,
	}
	if err := s.profiles.UpsertGitHub(ctx, p); err != nil {
		return nil, fmt.Errorf("service/profile: upserting GitHub user %d: %w", gh.ID, err)
	}

	s.logger.Info("profile authenticated via GitHub",
		slog.String("profileID", p.ID),
		slog.String("login", gh.Login),
	)
	return s.signIn(p)
}

func (s *ProfileService) Get(ctx context.Context, id string) (*model.Profile, error) {
	if id == "" {
		return nil, apperror.Unauthorized("sign in first")
	}
	return s.profiles.GetByID(ctx, id)
}

// Update applies the non-nil fields of u to the caller's profile.
func (s *ProfileService) Update(ctx context.Context, id string, u ProfileUpdate) (*model.Profile, error) {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(u.Username)
	trim(u.FullName)
	trim(u.Bio)
	trim(u.AvatarURL)
	trim(u.CookingExperience)

	if u.Username != nil && *u.Username == "" {
		return nil, apperror.ValidationFailed("username", "username cannot be empty")
	}
	if err := validateInput(u); err != nil {
		return nil, err
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.Username != nil && *u.Username != p.Username {
		taken, err := s.profiles.UsernameTaken(ctx, *u.Username, p.ID)
		if err != nil {
			return nil, fmt.Errorf("updating profile: %w", err)
		}
		if taken {
			return nil, apperror.Conflict("username", "this username is already taken")
		}
		p.Username = *u.Username
	}
	if u.FullName != nil {
		p.FullName = *u.FullName
	}
	if u.Bio != nil {
		p.Bio = *u.Bio
	}
	if u.AvatarURL != nil {
		p.AvatarURL = *u.AvatarURL
	}
	if u.CookingExperience != nil && *u.CookingExperience != "" {
		p.CookingExperience = *u.CookingExperience
	}

	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	s.logger.Info("profile updated", slog.String("profileID", p.ID))
	return p, nil
}

func (s *ProfileService) signIn(p *model.Profile) (*AuthResult, error) {
	token, err := s.tokens.Generate(p.ID)
	if err != nil {
		return nil, fmt.Errorf("issuing token for %s: %w", p.ID, err)
	}
	return &AuthResult{Profile: p, Token: token}, nil
}

// freeUsername returns base, or base-2, base-3 ... whichever is unused.
func (s *ProfileService) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; i <= maxUsernameAttempts+1; i++ {
		taken, err := s.profiles.UsernameTaken(ctx, candidate, "")
		if err != nil {
			return "", fmt.Errorf("service/profile: checking username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperror.Conflict("username", "could not find a free username for this GitHub account")
}

// githubUsername keeps the characters usernames allow and pads logins that
// end up too short.
func githubUsername(login string) string {
	var b strings.Builder
	for _, r := range login {
		if usernamePattern.MatchString(string(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > 24 {
		name = name[:24]
	}
	if len(name) < 3 {
		name = "cook-" + name
	}
	return name
}
