package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// MaxAdmins caps how many admin accounts can be registered
	MaxAdmins = 2

	// Lockout policy: after MaxFailedLogins consecutive failures the
	// account is locked for LockoutDuration.
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrAdminLimitReached  = errors.New("cannot register more admins")
)

// RegisterParams carries the fields of a registration request.
type RegisterParams struct {
	Name     string
	LastName string
	Username string
	Email    string
	Password string
	Role     string
}

// Claims represents the JWT claims
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// UserService defines the interface for account business logic
type UserService interface {
	Register(ctx context.Context, params RegisterParams) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ValidateToken(tokenString string) (*Claims, error)
	GetUserByID(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	AddToCart(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.User, error)
	RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID) (*domain.User, error)
}

type userService struct {
	userRepo     repository.UserRepository
	jwtSecret    string
	accessExpiry time.Duration
}

// NewUserService creates a new instance of UserService
func NewUserService(userRepo repository.UserRepository, jwtSecret string, accessExpiry time.Duration) UserService {
	return &userService{
		userRepo:     userRepo,
		jwtSecret:    jwtSecret,
		accessExpiry: accessExpiry,
	}
}

// Register creates a new account with a hashed password and returns the
// user together with a signed access token. Admin registrations are capped
// at MaxAdmins.
func (s *userService) Register(ctx context.Context, params RegisterParams) (*domain.User, string, error) {
	role := params.Role
	if role == "" {
		role = domain.RoleUser
	}

	if role == domain.RoleAdmin {
		count, err := s.userRepo.CountAdmins(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to count admins: %w", err)
		}
		if count >= MaxAdmins {
			return nil, "", ErrAdminLimitReached
		}
	}

	hashedPassword, err := s.hashPassword(params.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         params.Name,
		LastName:     params.LastName,
		Username:     params.Username,
		Email:        params.Email,
		PasswordHash: hashedPassword,
		Role:         role,
		Cart:         []domain.CartItem{},
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	// The unique indexes on email and username reject duplicates here.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and returns a signed access token. Repeated
// failures lock the account for LockoutDuration.
func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.Locked(time.Now()) {
		return "", nil, ErrAccountLocked
	}

	if err := s.verifyPassword(user.PasswordHash, password); err != nil {
		attempts := user.FailedLoginAttempts + 1
		var lockUntil *time.Time
		if attempts >= MaxFailedLogins {
			deadline := time.Now().Add(LockoutDuration)
			lockUntil = &deadline
		}
		if recErr := s.userRepo.RecordFailedLogin(ctx, user.ID, attempts, lockUntil); recErr != nil {
			return "", nil, fmt.Errorf("failed to record failed login: %w", recErr)
		}
		if lockUntil != nil {
			return "", nil, ErrAccountLocked
		}
		return "", nil, ErrInvalidCredentials
	}

	if user.FailedLoginAttempts > 0 || user.LockUntil != nil {
		if err := s.userRepo.ResetLoginAttempts(ctx, user.ID); err != nil {
			return "", nil, fmt.Errorf("failed to reset login attempts: %w", err)
		}
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return token, user, nil
}

// ValidateToken parses and validates an access token
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GetUserByID retrieves a user by id
func (s *userService) GetUserByID(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// AddToCart merges a product into the user's cart and returns the updated
// user.
func (s *userService) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (*domain.User, error) {
	if quantity < 1 {
		quantity = 1
	}

	item := domain.CartItem{ProductID: productID, Quantity: quantity}
	if err := s.userRepo.AddCartItem(ctx, userID, item); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(ctx, userID)
}

// RemoveFromCart drops a product line from the user's cart and returns the
// updated user.
func (s *userService) RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID) (*domain.User, error) {
	if err := s.userRepo.RemoveCartItem(ctx, userID, productID); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(ctx, userID)
}

func (s *userService) generateAccessToken(user *domain.User) (string, error) {
	claims := Claims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.accessExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *userService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (s *userService) verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
