// Package identity maps credentials to session tokens and tokens back to
// an authenticated identity.
package identity

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Iam-Iftekhar/animerch/internal/domain"
	"github.com/Iam-Iftekhar/animerch/pkg/common"
)

// bcrypt ignores input beyond 72 bytes; oversized passwords are rejected
// before the primitive ever sees them.
const MaxPasswordBytes = 72

const MinPasswordLen = 4

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid session token")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrPasswordTooLong    = errors.New("password too long (max 72 bytes)")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrInvalidRole        = errors.New("unknown role")
)

// Identity is the resolved {user, role} for a validated session token.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	Role     string
	Avatar   string
}

func (i *Identity) IsAdmin() bool  { return i.Role == domain.RoleAdmin }
func (i *Identity) IsSeller() bool { return i.Role == domain.RoleSeller }

// CanSell reports whether the identity may manage product listings.
func (i *Identity) CanSell() bool {
	return i.Role == domain.RoleSeller || i.Role == domain.RoleAdmin
}

type Service struct {
	db    *gorm.DB
	codec *TokenCodec
}

func NewService(db *gorm.DB, codec *TokenCodec) *Service {
	return &Service{db: db, codec: codec}
}

// Register creates a user with a bcrypt-hashed credential. An empty role
// defaults to buyer; the role is immutable afterwards.
func (s *Service) Register(ctx context.Context, username, email, password, role string) (*domain.User, error) {
	if role == "" {
		role = domain.RoleBuyer
	}
	if !domain.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}
	if len(password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "query user by email")
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "query user by username")
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	user := &domain.User{
		ID:       common.UUIDint64(),
		Username: username,
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Avatar:   domain.DefaultAvatar,
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	zap.L().Info("user registered",
		zap.String("username", username),
		zap.String("role", role))
	return user, nil
}

// Authenticate verifies the credential and issues a session token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	var user domain.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return "", ErrInvalidCredentials
	case err != nil:
		return "", errors.Wrap(err, "query user")
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		zap.L().Info("login failed", zap.String("email", email))
		return "", ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Email, user.Role)
	if err != nil {
		return "", err
	}

	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", user.ID).
		Update("last_login", time.Now()).Error; err != nil {
		zap.L().Warn("update last_login failed",
			zap.Int64("user_id", user.ID), zap.Error(err))
	}

	zap.L().Info("login ok", zap.String("email", email), zap.String("role", user.Role))
	return token, nil
}

// Resolve validates a token and re-fetches the user row so a stale role
// claim can not outlive the stored record. Any failure yields no identity.
func (s *Service) Resolve(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, err
	}
	return s.ResolveSubject(ctx, claims.Subject)
}

// ResolveSubject looks up the identity for an already-validated token
// subject.
func (s *Service) ResolveSubject(ctx context.Context, email string) (*Identity, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidToken
	}
	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
		Avatar:   user.Avatar,
	}, nil
}

// UpdateProfile changes the username and, when reference is non-empty, the
// avatar. Role and email stay immutable.
func (s *Service) UpdateProfile(ctx context.Context, userID int64, username, avatarRef string) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if username != "" {
		updates["username"] = username
	}
	if avatarRef != "" {
		updates["avatar"] = avatarRef
	}
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "update profile")
	}
	return nil
}
