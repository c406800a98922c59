package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/presensi/presensi-server/config"
	"github.com/presensi/presensi-server/models"
	"github.com/presensi/presensi-server/utils"
)

type RegisterInput struct {
	Nama     string `json:"nama" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// AuthService manages local accounts and issues JWTs.
type AuthService struct {
	db  *gorm.DB
	cfg config.AppConfig
}

func NewAuthService(db *gorm.DB, cfg config.AppConfig) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

// Register creates an account. Emails listed in AdminEmails receive the admin role.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	nama := utils.SanitizeText(in.Nama)
	if nama == "" {
		return nil, validationError("nama is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, internalError("failed to hash password", err)
	}

	role := models.RoleUser
	if s.cfg.IsAdminEmail(email) {
		role = models.RoleAdmin
	}
	user := models.User{
		Nama:         nama,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailTaken
		}
		return nil, internalError("failed to create user", err)
	}
	return &user, nil
}

// Login verifies the credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrBadCredentials
		}
		return "", nil, internalError("failed to load user", err)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrBadCredentials
	}
	if utils.NeedsRehash(user.PasswordHash) {
		s.rehash(ctx, &user, password)
	}

	token, err := utils.GenerateToken(user.ID, user.Nama, user.Role, s.cfg.TokenTTL())
	if err != nil {
		return "", nil, internalError("failed to generate token", err)
	}
	return token, &user, nil
}

// rehash upgrades a stored hash to the current cost; a failure is logged and retried on the next login.
func (s *AuthService) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := utils.HashPassword(password)
	if err == nil {
		err = s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error
	}
	if err != nil {
		utils.Sugar.Warnw("password rehash failed", "user_id", user.ID, "error", err)
	}
}

// Me loads the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalError("failed to load user", err)
	}
	return &user, nil
}
