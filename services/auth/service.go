package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"nursesrent/database/repository"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"
	"nursesrent/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

const errNotLoggedIn = "You are not logged in! Please log in to get access."

// AuthService manages credentials and bearer sessions for both roles.
type AuthService interface {
	SignUp(ctx context.Context, role models.Role, in SignUpInput) (*AuthResponse, error)
	SignIn(ctx context.Context, role models.Role, email, password string) (*AuthResponse, error)
	SignOut(ctx context.Context, role models.Role, userID string) error
	// Authenticate resolves a bearer token into the caller it was issued to.
	Authenticate(ctx context.Context, token string) (*Principal, error)
	// Revoke drops any cached session of the account.
	Revoke(ctx context.Context, role models.Role, userID string)
}

type SignUpInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Profession string `json:"profession,omitempty"`
}

// AuthResponse is returned on signup and signin.
type AuthResponse struct {
	ID         string      `json:"id"`
	Token      string      `json:"token"`
	Name       string      `json:"name,omitempty"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	IsVerified bool        `json:"isVerified"`
}

// DefaultAuthService is the production implementation.
type DefaultAuthService struct {
	Repo   userRepo.UserRepository
	Tokens *TokenService
	Cache  SessionCache
	// RequireVerification leaves new accounts unverified until they confirm an emailed code.
	RequireVerification bool
}

func NewAuthService(repo userRepo.UserRepository, tokens *TokenService, cache SessionCache, requireVerification bool) *DefaultAuthService {
	if cache == nil {
		cache = NoopSessionCache{}
	}
	return &DefaultAuthService{Repo: repo, Tokens: tokens, Cache: cache, RequireVerification: requireVerification}
}

func (s *DefaultAuthService) SignUp(ctx context.Context, role models.Role, in SignUpInput) (*AuthResponse, error) {
	if !role.Valid() {
		return nil, utils.Validation("unknown account role")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, utils.Validation("Please provide a valid email")
	}
	if len(in.Password) < minPasswordLength {
		return nil, utils.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, utils.Validation("Please provide your name")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, utils.Internal("failed to hash password", err)
	}

	profile := models.UserProfile{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		IsVerified:   !s.RequireVerification,
		IsActive:     true,
	}
	token, err := s.Tokens.Issue(profile.ID, role)
	if err != nil {
		return nil, utils.Internal("failed to issue token", err)
	}
	profile.TokenHash = HashToken(token)

	switch role {
	case models.RoleHost:
		err = s.Repo.CreateHost(ctx, &models.Host{UserProfile: profile})
	default:
		err = s.Repo.CreateNurse(ctx, &models.Nurse{UserProfile: profile, Profession: in.Profession})
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, utils.Conflict("An account with this email already exists")
	}
	if err != nil {
		return nil, utils.Internal("failed to create account", err)
	}

	utils.GetLogger().Info("Account created", zap.String("role", string(role)), zap.String("userID", profile.ID))
	return &AuthResponse{
		ID:         profile.ID,
		Token:      token,
		Name:       profile.Name,
		Email:      profile.Email,
		Role:       role,
		IsVerified: profile.IsVerified,
	}, nil
}

func (s *DefaultAuthService) SignIn(ctx context.Context, role models.Role, email, password string) (*AuthResponse, error) {
	if !role.Valid() {
		return nil, utils.Validation("unknown account role")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, utils.Validation("Please provide email and password!")
	}

	account, err := s.Repo.GetByEmail(ctx, role, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Unauthenticated("Incorrect email or password")
	}
	if err != nil {
		return nil, utils.Internal("failed to fetch account", err)
	}
	profile := account.Profile()
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, utils.Unauthenticated("Incorrect email or password")
	}
	if !profile.IsActive {
		return nil, utils.Forbidden("This account has been deactivated")
	}

	token, err := s.Tokens.Issue(profile.ID, role)
	if err != nil {
		return nil, utils.Internal("failed to issue token", err)
	}
	s.Cache.Delete(ctx, role, profile.ID)
	if err := s.Repo.UpdateTokenHash(ctx, role, profile.ID, HashToken(token)); err != nil {
		return nil, utils.Internal("failed to store session", err)
	}

	return &AuthResponse{
		ID:         profile.ID,
		Token:      token,
		Name:       profile.Name,
		Email:      profile.Email,
		Role:       role,
		IsVerified: profile.IsVerified,
	}, nil
}

func (s *DefaultAuthService) SignOut(ctx context.Context, role models.Role, userID string) error {
	s.Cache.Delete(ctx, role, userID)
	if err := s.Repo.UpdateTokenHash(ctx, role, userID, ""); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return utils.Internal("failed to clear session", err)
	}
	return nil
}

func (s *DefaultAuthService) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, utils.Unauthenticated(errNotLoggedIn)
	}
	claims, err := s.Tokens.Verify(token)
	if err != nil {
		return nil, utils.Unauthenticated("Invalid token. Please log in again!")
	}
	hash := HashToken(token)

	if cached, ok := s.Cache.Get(ctx, claims.Role, claims.Subject); ok {
		if cached.TokenHash != hash {
			return nil, utils.Unauthenticated("Your session has expired. Please log in again!")
		}
		return cached, nil
	}

	account, err := s.Repo.GetAccount(ctx, claims.Role, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.Unauthenticated("The user belonging to this token no longer exists.")
	}
	if err != nil {
		return nil, utils.Internal("failed to fetch account", err)
	}
	profile := account.Profile()
	if profile.TokenHash == "" || profile.TokenHash != hash {
		return nil, utils.Unauthenticated("Your session has expired. Please log in again!")
	}
	if !profile.IsActive {
		return nil, utils.Forbidden("This account has been deactivated")
	}

	p := Principal{UserID: profile.ID, Role: claims.Role, IsVerified: profile.IsVerified, TokenHash: hash}
	s.Cache.Set(ctx, p)
	return &p, nil
}

func (s *DefaultAuthService) Revoke(ctx context.Context, role models.Role, userID string) {
	s.Cache.Delete(ctx, role, userID)
}
