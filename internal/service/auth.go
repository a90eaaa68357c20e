package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nesterovv89/sharing-recipe-service/internal/middleware"
	"github.com/nesterovv89/sharing-recipe-service/internal/models"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// TokenStore keeps revoked tokens until they expire. Logout relies on it;
// a nil store disables revocation.
type TokenStore interface {
	Deny(ctx context.Context, token string, ttl time.Duration) error
	IsDenied(ctx context.Context, token string) (bool, error)
}

// AuthService handles signup, login and password management.
type AuthService struct {
	db        *gorm.DB
	jwtSecret string
	tokens    TokenStore
}

func NewAuthService(db *gorm.DB, jwtSecret string, tokens TokenStore) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
		tokens:    tokens,
	}
}

// SignupInput is the validated payload for creating a user.
type SignupInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a new user. Email and username uniqueness is enforced by
// the database; a duplicate surfaces as ErrAlreadyExists.
func (s *AuthService) Register(ctx context.Context, input SignupInput) (*models.User, error) {
	verr := NewValidationError()
	if !usernamePattern.MatchString(input.Username) {
		verr.Add("username", "contains invalid characters")
	}
	if len(input.Password) < minPasswordLength {
		verr.Add("password", "must be at least 8 characters")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        input.Email,
		Username:     input.Username,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: string(hashedPassword),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}

	return &user, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	return s.generateToken(user.ID)
}

// SetPassword changes the user's password. The current password must match
// and the new one must differ from it and pass the length policy.
func (s *AuthService) SetPassword(ctx context.Context, userID uuid.UUID, current, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return ErrWrongPassword
	}
	if current == newPassword {
		return ErrSamePassword
	}
	if len(newPassword) < minPasswordLength {
		verr := NewValidationError()
		verr.Add("new_password", "must be at least 8 characters")
		return verr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&user).Update("password_hash", string(hashed)).Error
}

// Logout adds the token to the denylist until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.tokens == nil {
		return nil
	}

	token, err := jwt.Parse(tokenString, s.keyFunc)
	if err != nil {
		return err
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return errors.New("token has no expiry")
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}
	return s.tokens.Deny(ctx, tokenString, ttl)
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"exp":     time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return []byte(s.jwtSecret), nil
}

// ValidateToken implements middleware.TokenValidator.
func (s *AuthService) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	if s.tokens != nil {
		denied, err := s.tokens.IsDenied(context.Background(), tokenString)
		if err != nil {
			return nil, err
		}
		if denied {
			return nil, errors.New("token has been revoked")
		}
	}

	token, err := jwt.Parse(tokenString, s.keyFunc)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, err
	}

	return &middleware.TokenClaims{UserID: userID}, nil
}
