package service

import (
	"context"
	"fmt"
	"log/slog"

	"duitsplit/internal/auth"
	"duitsplit/internal/models"
	"duitsplit/internal/storage"
)

// ProfileService manages user provisioning, profile fields and the
// payment confirmation PIN.
type ProfileService struct {
	store storage.Store
}

func NewProfileService(store storage.Store) *ProfileService {
	return &ProfileService{store: store}
}

// CreateUserRequest provisions an identity from an external directory.
type CreateUserRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Username    string `json:"username" binding:"required"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// UpdateProfileRequest carries partial profile changes. Nil fields are
// left untouched.
type UpdateProfileRequest struct {
	Username   *string `json:"username"`
	Phone      *string `json:"phone"`
	Bank       *string `json:"bank"`
	BankAcc    *string `json:"bank_acc"`
	AvatarURL  *string `json:"avatar_url"`
	QRBank     *string `json:"qr_bank"`
	PushNotify *bool   `json:"push_enabled"`
}

// UpdatePINRequest changes the payment PIN. CurrentPIN is required once
// a PIN has been set.
type UpdatePINRequest struct {
	CurrentPIN string `json:"current_pin"`
	NewPIN     string `json:"new_pin" binding:"required"`
}

// CreateUser inserts a user row if one does not exist yet. It reports
// whether a new row was created.
func (s *ProfileService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, bool, error) {
	if req.UserID == "" || req.Username == "" {
		return nil, false, invalid("user_id and username required")
	}

	existed, err := s.store.UserExists(ctx, req.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check user: %w", err)
	}
	user := &models.User{
		ID:          req.UserID,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
	}
	if err := s.store.EnsureUser(ctx, user); err != nil {
		slog.Error("failed to create user", "error", err)
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	u, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get user: %w", err)
	}
	return u, !existed, nil
}

// CheckUser reports whether a user row exists for the given id.
func (s *ProfileService) CheckUser(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, invalid("user_id required")
	}
	exists, err := s.store.UserExists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

// Get returns the caller's profile, provisioning a default row on
// first contact.
func (s *ProfileService) Get(ctx context.Context, principal string) (*models.User, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if err := s.store.EnsureUser(ctx, &models.User{ID: principal}); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	u, err := s.store.GetUser(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, notFound("User not found")
	}
	return u, nil
}

// Update applies the non-nil fields of req to the caller's profile and
// returns the updated row.
func (s *ProfileService) Update(ctx context.Context, principal string, req UpdateProfileRequest) (*models.User, error) {
	if principal == "" {
		return nil, unauthorized("Unauthorized")
	}
	if req.Username != nil && *req.Username == "" {
		return nil, invalid("username cannot be empty")
	}

	if err := s.store.EnsureUser(ctx, &models.User{ID: principal}); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}
	update := models.ProfileUpdate{
		Username:   req.Username,
		Phone:      req.Phone,
		Bank:       req.Bank,
		BankAcc:    req.BankAcc,
		AvatarURL:  req.AvatarURL,
		QRBank:     req.QRBank,
		PushNotify: req.PushNotify,
	}
	if err := s.store.UpdateProfile(ctx, principal, update); err != nil {
		slog.Error("failed to update profile", "error", err)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	u, err := s.store.GetUser(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// PINStatus reports whether the caller has a PIN and a masked
// placeholder for display. The PIN itself is never returned.
func (s *ProfileService) PINStatus(ctx context.Context, principal string) (set bool, masked string, err error) {
	if principal == "" {
		return false, "", unauthorized("Unauthorized")
	}
	if err := s.store.EnsureUser(ctx, &models.User{ID: principal}); err != nil {
		return false, "", fmt.Errorf("failed to ensure user: %w", err)
	}
	hash, err := s.store.GetPINHash(ctx, principal)
	if err != nil {
		return false, "", fmt.Errorf("failed to get pin: %w", err)
	}
	return hash != "", auth.MaskPIN(hash), nil
}

// UpdatePIN sets or rotates the caller's payment PIN. Rotating an
// existing PIN requires the current one.
func (s *ProfileService) UpdatePIN(ctx context.Context, principal string, req UpdatePINRequest) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	if err := auth.ValidatePIN(req.NewPIN); err != nil {
		return invalid(err.Error())
	}

	if err := s.store.EnsureUser(ctx, &models.User{ID: principal}); err != nil {
		return fmt.Errorf("failed to ensure user: %w", err)
	}
	current, err := s.store.GetPINHash(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to get pin: %w", err)
	}
	if current != "" {
		if req.CurrentPIN == "" {
			return invalid(auth.ErrPINRequired.Error())
		}
		if err := auth.VerifyPIN(current, req.CurrentPIN); err != nil {
			return forbidden("Incorrect PIN")
		}
	}

	hash, err := auth.HashPIN(req.NewPIN)
	if err != nil {
		return fmt.Errorf("failed to hash pin: %w", err)
	}
	if err := s.store.SetPINHash(ctx, principal, hash); err != nil {
		return fmt.Errorf("failed to set pin: %w", err)
	}
	return nil
}

// VerifyPIN checks a candidate PIN against the caller's stored hash.
func (s *ProfileService) VerifyPIN(ctx context.Context, principal, pin string) error {
	if principal == "" {
		return unauthorized("Unauthorized")
	}
	hash, err := s.store.GetPINHash(ctx, principal)
	if err != nil {
		return fmt.Errorf("failed to get pin: %w", err)
	}
	if hash == "" {
		return notFound("PIN not set")
	}
	if err := auth.VerifyPIN(hash, pin); err != nil {
		return forbidden("Incorrect PIN")
	}
	return nil
}
