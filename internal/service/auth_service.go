package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/course-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/course-scheduler-api/pkg/errors"
)

type authStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

type authTeacherRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Teacher, error)
}

// AuthConfig defines configuration for authentication flows.
type AuthConfig struct {
	AccessTokenSecret string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// AuthService resolves students and teachers by email and issues access tokens.
type AuthService struct {
	students  authStudentRepository
	teachers  authTeacherRepository
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(students authStudentRepository, teachers authTeacherRepository, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.AccessTokenExpiry <= 0 {
		config.AccessTokenExpiry = 24 * time.Hour
	}
	return &AuthService{students: students, teachers: teachers, validator: validate, logger: logger, config: config}
}

// Login looks the email up among students first, then teachers.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid login payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	identity, hash, err := s.resolve(ctx, email)
	if err != nil {
		return nil, err
	}

	if hash != nil && *hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(*hash), []byte(req.Password)); err != nil {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid email or password")
		}
	}

	token, err := s.generateAccessToken(identity)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create access token")
	}

	s.logger.Info("user logged in", zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))

	return &models.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		User:        identity,
	}, nil
}

func (s *AuthService) resolve(ctx context.Context, email string) (models.UserInfo, *string, error) {
	student, err := s.students.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return models.UserInfo{ID: student.ID, Name: student.FullName(), Email: student.Email, Role: models.RoleStudent}, student.PasswordHash, nil
	case !errors.Is(err, sql.ErrNoRows):
		return models.UserInfo{}, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to fetch student")
	}

	teacher, err := s.teachers.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return models.UserInfo{ID: teacher.ID, Name: teacher.FullName(), Email: teacher.Email, Role: models.RoleTeacher}, teacher.PasswordHash, nil
	case errors.Is(err, sql.ErrNoRows):
		return models.UserInfo{}, nil, appErrors.Clone(appErrors.ErrNotFound, "No user found with the email - "+email)
	default:
		return models.UserInfo{}, nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to fetch teacher")
	}
}

// ValidateToken parses and validates an access token returning the claims.
func (s *AuthService) ValidateToken(tokenString string) (*models.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.AccessTokenSecret), nil
	})
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}

	return claims, nil
}

func (s *AuthService) generateAccessToken(user models.UserInfo) (string, error) {
	issuedAt := time.Now().UTC()
	claims := &models.JWTClaims{
		UserID:   user.ID,
		Role:     user.Role,
		Email:    user.Email,
		FullName: user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.config.AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.AccessTokenSecret))
}
