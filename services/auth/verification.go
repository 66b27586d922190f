package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nursesrent/database/repository"
	userRepo "nursesrent/database/repository/user"
	"nursesrent/models"
	"nursesrent/utils"

	"go.uber.org/zap"
)

const (
	verificationCodeLength = 6
	verificationCodeTTL    = 15 * time.Minute
)

// CodeSender delivers a verification code to the account owner.
type CodeSender interface {
	Notify(ctx context.Context, payload models.NotificationPayload) error
}

// EmailVerifier confirms account email addresses with one-time codes.
type EmailVerifier struct {
	Repo   userRepo.UserRepository
	Codes  utils.CodeStore
	Sender CodeSender
	Cache  SessionCache
	Logger *zap.Logger
}

func verificationKey(role models.Role, userID string) string {
	return "verify:" + string(role) + ":" + userID
}

func (v *EmailVerifier) account(ctx context.Context, role models.Role, userID string) (*models.UserProfile, error) {
	account, err := v.Repo.GetAccount(ctx, role, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NotFound("No account found with that ID")
	}
	if err != nil {
		return nil, utils.Internal("failed to load account", err)
	}
	return account.Profile(), nil
}

// RequestCode issues a fresh code, replacing any earlier one.
func (v *EmailVerifier) RequestCode(ctx context.Context, role models.Role, userID string) error {
	profile, err := v.account(ctx, role, userID)
	if err != nil {
		return err
	}
	if profile.IsVerified {
		return utils.Conflict("Your email is already verified")
	}

	code, err := utils.GenerateOTP(verificationCodeLength)
	if err != nil {
		return utils.Internal("failed to generate verification code", err)
	}
	if err := v.Codes.Save(ctx, verificationKey(role, userID), code, verificationCodeTTL); err != nil {
		return utils.Internal("failed to store verification code", err)
	}
	err = v.Sender.Notify(ctx, models.NotificationPayload{
		Target: role,
		UserID: userID,
		Title:  "Verify your email",
		Body:   fmt.Sprintf("Your NursesRent verification code is %s. It expires in %d minutes.", code, int(verificationCodeTTL.Minutes())),
	})
	if err != nil {
		return utils.Internal("failed to send verification code", err)
	}
	v.Logger.Info("Verification code sent", zap.String("role", string(role)), zap.String("userID", userID))
	return nil
}

// Confirm marks the account verified when code matches the last one issued. A code is
// good for one attempt.
func (v *EmailVerifier) Confirm(ctx context.Context, role models.Role, userID, code string) error {
	profile, err := v.account(ctx, role, userID)
	if err != nil {
		return err
	}
	if profile.IsVerified {
		return nil
	}

	stored, err := v.Codes.Take(ctx, verificationKey(role, userID))
	if errors.Is(err, utils.ErrCodeNotFound) {
		return utils.Validation("Verification code is invalid or has expired")
	}
	if err != nil {
		return utils.Internal("failed to read verification code", err)
	}
	if !strings.EqualFold(strings.TrimSpace(code), stored) {
		return utils.Validation("Verification code is invalid or has expired")
	}

	if err := v.Repo.SetVerified(ctx, role, userID); err != nil {
		return utils.Internal("failed to verify account", err)
	}
	v.Cache.Delete(ctx, role, userID)
	v.Logger.Info("Email verified", zap.String("role", string(role)), zap.String("userID", userID))
	return nil
}
