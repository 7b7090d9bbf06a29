package user

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"cryptoinsight/domain"
)

// Claims carried by the session token.
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	userRepo  domain.UserRepository
	jwtSecret []byte
	jwtTTL    time.Duration
}

var _ domain.UserUsecase = (*service)(nil)

func NewService(userRepo domain.UserRepository, jwtSecret []byte, jwtTTL time.Duration) *service {
	return &service{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		jwtTTL:    jwtTTL,
	}
}

func (s *service) Register(ctx context.Context, name, username, password string) error {
	if name == "" || username == "" || password == "" {
		return domain.ErrBadParamInput
	}

	_, err := s.userRepo.GetByUsername(ctx, username)
	if err == nil {
		return domain.ErrConflict
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.Insert(ctx, &domain.User{
		Name:     name,
		Username: username,
		Password: string(hashed),
		Role:     domain.RoleUser,
	})
}

func (s *service) Login(ctx context.Context, username, password string) (string, error) {
	u, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", domain.ErrBadParamInput
	}

	if u.IsBanned {
		return "", domain.ErrForbidden
	}

	now := time.Now()
	claims := Claims{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *service) EditPassword(ctx context.Context, id int64, oldPassword, newPassword string) error {
	if newPassword == "" {
		return domain.ErrBadParamInput
	}

	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(oldPassword)); err != nil {
		return domain.ErrBadParamInput
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.Password = string(hashed)
	u.UpdatedAt = time.Now()
	return s.userRepo.Update(ctx, &u)
}

func (s *service) Fetch(ctx context.Context, cursor int64, limit int64) ([]domain.User, error) {
	return s.userRepo.Fetch(ctx, cursor, limit)
}

func (s *service) SetBanned(ctx context.Context, id int64, banned bool) error {
	return s.userRepo.SetBanned(ctx, id, banned)
}

// ParseToken validates a session token and returns its claims.
// Exposed for the auth middleware.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrForbidden
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrForbidden
	}
	return claims, nil
}
