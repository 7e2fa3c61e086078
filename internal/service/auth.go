package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/logging"
	"github.com/pageza/recipe-app/backend/internal/metrics"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/repository"
	"github.com/pageza/recipe-app/backend/internal/types"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 5

// Field messages shared by the services
const (
	msgRequired     = "This field is required."
	msgBlank        = "This field may not be blank."
	msgNull         = "This field may not be null."
	msgInvalidEmail = "Enter a valid email address."
	msgEmailTaken   = "user with this email already exists."
)

var validate = validator.New()

type AuthService struct {
	users     *repository.UserRepository
	tokens    *repository.TokenRepository
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		users:     repository.NewUserRepository(db),
		tokens:    repository.NewTokenRepository(db),
		jwtSecret: jwtSecret,
	}
}

func checkEmail(verr *ValidationError, email string) {
	switch {
	case email == "":
		verr.Add("email", msgRequired)
	case validate.Var(email, "email") != nil:
		verr.Add("email", msgInvalidEmail)
	}
}

func checkPassword(verr *ValidationError, password string) {
	switch {
	case password == "":
		verr.Add("password", msgRequired)
	case len(password) < MinPasswordLength:
		verr.Add("password", fmt.Sprintf("Ensure this field has at least %d characters.", MinPasswordLength))
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates an active account. Only the domain part of the email is lower-cased.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	name = strings.TrimSpace(name)

	verr := &ValidationError{}
	checkEmail(verr, email)
	checkPassword(verr, password)
	if name == "" {
		verr.Add("name", msgRequired)
	}
	if verr.HasErrors() {
		return nil, verr
	}

	taken, err := s.users.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, NewValidationError("email", msgEmailTaken)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("email", msgEmailTaken)
		}
		return nil, err
	}

	metrics.UsersRegistered.Inc()
	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user registered")
	return user, nil
}

// IssueToken exchanges valid credentials of an active user for a bearer token.
// A user keeps the same token until logout.
func (s *AuthService) IssueToken(ctx context.Context, email, password string) (string, error) {
	verr := &ValidationError{}
	if strings.TrimSpace(email) == "" {
		verr.Add("email", msgRequired)
	}
	if password == "" {
		verr.Add("password", msgRequired)
	}
	if verr.HasErrors() {
		return "", verr
	}

	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}

	tok, err := s.tokens.GetOrCreate(ctx, user.ID)
	if err != nil {
		return "", err
	}

	signed, err := s.sign(tok)
	if err != nil {
		return "", err
	}
	metrics.TokensIssued.Inc()
	return signed, nil
}

func (s *AuthService) sign(tok *models.AuthToken) (string, error) {
	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       tok.Key,
			Subject:  strconv.FormatUint(uint64(tok.UserID), 10),
			IssuedAt: jwt.NewNumericDate(tok.CreatedAt),
		},
		UserID: tok.UserID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken resolves a bearer token to its claims. The token key must still be stored
// and its user must be active.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	stored, err := s.tokens.GetByKey(ctx, claims.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if stored.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, stored.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// UpdateUser applies a self-service profile edit. With full set, email, name and password
// are all required; otherwise only supplied fields change.
func (s *AuthService) UpdateUser(ctx context.Context, userID uint, req *types.UpdateUserRequest, full bool) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if req.Email != nil {
		email := models.NormalizeEmail(*req.Email)
		checkEmail(verr, email)
		if !verr.HasErrors() && email != user.Email {
			taken, err := s.users.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				verr.Add("email", msgEmailTaken)
			}
		}
		user.Email = email
	} else if full {
		verr.Add("email", msgRequired)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			verr.Add("name", msgBlank)
		}
		user.Name = name
	} else if full {
		verr.Add("name", msgRequired)
	}

	if req.Password != nil {
		checkPassword(verr, *req.Password)
	} else if full {
		verr.Add("password", msgRequired)
	}

	if verr.HasErrors() {
		return nil, verr
	}

	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, NewValidationError("email", msgEmailTaken)
		}
		return nil, err
	}
	logging.Ctx(ctx).Info().Uint("user_id", user.ID).Msg("user updated")
	return user, nil
}

// Logout revokes the user's token
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokens.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Uint("user_id", userID).Msg("user logged out")
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
