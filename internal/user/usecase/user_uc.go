package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/user/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID, role string) (string, error)
}

type UserUsecase struct {
	repo   domain.UserRepository
	tokens TokenIssuer
	logger *logger.Logger
	cost   int
	now    func() time.Time
}

func NewUserUsecase(repo domain.UserRepository, tokens TokenIssuer, log *logger.Logger) *UserUsecase {
	return &UserUsecase{
		repo:   repo,
		tokens: tokens,
		logger: log.Named("user_usecase"),
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

func (uc *UserUsecase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}
	if !in.Role.SelfAssignable() {
		return nil, domain.ErrInvalidRole
	}
	return uc.create(ctx, in)
}

func (uc *UserUsecase) create(ctx context.Context, in RegisterInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cost)
	if err != nil {
		return nil, fmt.Errorf("UserUsecase.create: hash password: %w", err)
	}
	user := &domain.User{
		Email:        normalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		Role:         in.Role,
		PasswordHash: string(hash),
		CreatedAt:    uc.now().UTC(),
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("UserUsecase.create: %w", err)
	}
	uc.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// Login checks credentials and returns a signed access token.
func (uc *UserUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := uc.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("UserUsecase.Login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		uc.logger.Debug("Password mismatch", zap.String("user_id", user.ID))
		return "", domain.ErrInvalidCredentials
	}
	token, err := uc.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return "", fmt.Errorf("UserUsecase.Login: %w", err)
	}
	return token, nil
}

func (uc *UserUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("UserUsecase.GetUser: %w", err)
	}
	return user, nil
}

func (uc *UserUsecase) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := uc.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("UserUsecase.ListUsers: %w", err)
	}
	return users, nil
}

func (uc *UserUsecase) DeleteUser(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("UserUsecase.DeleteUser: %w", err)
	}
	uc.logger.Info("User deleted", zap.String("user_id", id))
	return nil
}

func (uc *UserUsecase) CountUsers(ctx context.Context) (int64, error) {
	n, err := uc.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("UserUsecase.CountUsers: %w", err)
	}
	return n, nil
}

// SellerEmail resolves the contact address used for moderation notices.
func (uc *UserUsecase) SellerEmail(ctx context.Context, sellerID string) (string, error) {
	user, err := uc.GetUser(ctx, sellerID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

// EnsureAdmin creates the bootstrap administrator unless the address already exists.
func (uc *UserUsecase) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := uc.repo.FindByEmail(ctx, normalizeEmail(email))
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("UserUsecase.EnsureAdmin: %w", err)
	}
	_, err = uc.create(ctx, RegisterInput{Email: email, Name: "Administrator", Password: password, Role: domain.RoleAdmin})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		return nil
	}
	return err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
