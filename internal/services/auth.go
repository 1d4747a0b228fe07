package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/strokecovery/strokecovery-backend/internal/data/dberr"
	"github.com/strokecovery/strokecovery-backend/internal/data/repos"
	types "github.com/strokecovery/strokecovery-backend/internal/domain"
	"github.com/strokecovery/strokecovery-backend/internal/domain/user"
	"github.com/strokecovery/strokecovery-backend/internal/platform/apierr"
	"github.com/strokecovery/strokecovery-backend/internal/platform/ctxutil"
	"github.com/strokecovery/strokecovery-backend/internal/platform/logger"
)

const msgInvalidCredentials = "Invalid email or password"

type AuthService interface {
	RegisterUser(ctx context.Context, email, password, role string) (*AuthResult, error)
	LoginUser(ctx context.Context, email, password string) (*AuthResult, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error)
	// SetContextFromToken verifies tokenString and returns ctx carrying its RequestData.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type AuthResult struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        *types.User `json:"user"`
}

type authService struct {
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
	accessTTL    time.Duration
	now          func() time.Time
}

func NewAuthService(log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string, accessTTL time.Duration) AuthService {
	if accessTTL <= 0 {
		accessTTL = 7 * 24 * time.Hour
	}
	return &authService{
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		now:          time.Now,
	}
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apierr.BadRequest("invalid_email", "Invalid email address")
	}
	return email, nil
}

func (as *authService) RegisterUser(ctx context.Context, email, password, role string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if password == "" {
		return nil, apierr.BadRequest("invalid_password", "Password is required")
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = user.RolePatient
	}
	if !user.ValidRole(role) {
		return nil, apierr.BadRequest("invalid_role", "Role must be patient or caregiver")
	}

	exists, err := as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, internalErr("registration_failed", fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apierr.BadRequest("email_taken", "Email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalErr("registration_failed", fmt.Errorf("hash password: %w", err))
	}
	hashStr := string(hash)
	created, err := as.userRepo.Create(ctx, nil, &types.User{
		Email:        email,
		PasswordHash: &hashStr,
		AuthProvider: user.ProviderEmail,
		Role:         role,
	})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apierr.BadRequest("email_taken", "Email already registered")
		}
		return nil, internalErr("registration_failed", fmt.Errorf("create user: %w", err))
	}
	as.log.Info("User registered", "user_id", created.ID, "role", role)

	tok, err := as.generateAccessToken(created)
	if err != nil {
		return nil, internalErr("token_failed", err)
	}
	return &AuthResult{AccessToken: tok, TokenType: "bearer", User: created}, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apierr.Unauthorized("invalid_credentials", msgInvalidCredentials)
	}
	u, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return nil, internalErr("login_failed", fmt.Errorf("load user: %w", err))
	}
	if u == nil || u.PasswordHash == nil {
		return nil, apierr.Unauthorized("invalid_credentials", msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.Unauthorized("invalid_credentials", msgInvalidCredentials)
	}
	tok, err := as.generateAccessToken(u)
	if err != nil {
		return nil, internalErr("token_failed", err)
	}
	return &AuthResult{AccessToken: tok, TokenType: "bearer", User: u}, nil
}

func (as *authService) GetMe(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, apierr.Unauthorized("unauthorized", "Invalid or expired token")
	}
	u, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, internalErr("load_user_failed", err)
	}
	if u == nil {
		return nil, apierr.NotFound("user_not_found", "User not found")
	}
	return u, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := as.now()
	claims := jwt.MapClaims{
		"sub":   u.ID.String(),
		"email": u.Email,
		"role":  u.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(as.accessTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func errInvalidToken() *apierr.Error {
	return apierr.Unauthorized("unauthorized", "Invalid or expired token")
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, errInvalidToken()
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		return ctx, errInvalidToken()
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ctx, errInvalidToken()
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return ctx, errInvalidToken()
	}
	role, _ := claims["role"].(string)
	return ctxutil.WithUser(ctx, userID, role), nil
}
