package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"

	"ride-dispatch/internal/auth-service/core/domain/dto"
	"ride-dispatch/internal/auth-service/core/domain/models"
	"ride-dispatch/internal/config"
	"ride-dispatch/internal/mylogger"
)

type fakeAuthRepo struct {
	byEmail map[string]models.User
	byID    map[uuid.UUID]models.User
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{
		byEmail: make(map[string]models.User),
		byID:    make(map[uuid.UUID]models.User),
	}
}

func (f *fakeAuthRepo) Create(ctx context.Context, user models.User) (uuid.UUID, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return uuid.Nil, ErrEmailRegistered
	}
	user.ID = uuid.New()
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user.ID, nil
}

func (f *fakeAuthRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return models.User{}, ErrUnknownEmail
	}
	return u, nil
}

func (f *fakeAuthRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, ErrUnknownEmail
	}
	return u, nil
}

func testService() (*AuthService, *fakeAuthRepo) {
	cfg := &config.Config{App: &config.Appconfig{JwtSecret: "test-secret", TokenTTL: 1}}
	repo := newFakeAuthRepo()
	log := mylogger.NewWithWriter(mylogger.LevelError, io.Discard)
	return NewAuthService(cfg, repo, log), repo
}

func registrationRequest(role string) dto.UserRegistrationRequest {
	return dto.UserRegistrationRequest{
		Name:     "Aigerim",
		Email:    "aigerim@example.com",
		Phone:    "+77010000000",
		Password: "secret123",
		Role:     role,
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, repo := testService()
	ctx := context.Background()

	id, tokenStr, err := svc.Register(ctx, registrationRequest("Driver"))
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !token.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	if claims["user_id"] != id {
		t.Errorf("user_id claim = %v, want %s", claims["user_id"], id)
	}
	if claims["role"] != "Driver" {
		t.Errorf("role claim = %v", claims["role"])
	}

	stored := repo.byEmail["aigerim@example.com"]
	if stored.Priority != DefaultDriverPriority {
		t.Errorf("driver priority = %v, want %v", stored.Priority, DefaultDriverPriority)
	}
	if stored.Star != DefaultStar || !stored.IsActive {
		t.Errorf("defaults not applied: %+v", stored)
	}
}

func TestRegisterCustomerPriority(t *testing.T) {
	svc, repo := testService()

	if _, _, err := svc.Register(context.Background(), registrationRequest("Customer")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if got := repo.byEmail["aigerim@example.com"].Priority; got != DefaultCustomerPriority {
		t.Errorf("customer priority = %v, want %v", got, DefaultCustomerPriority)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registrationRequest("Customer")); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(ctx, registrationRequest("Customer")); !errors.Is(err, ErrEmailRegistered) {
		t.Errorf("got %v, want ErrEmailRegistered", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, registrationRequest("Customer")); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(ctx, dto.UserAuthRequest{Email: "aigerim@example.com", Password: "secret123"}); err != nil {
		t.Errorf("login: %v", err)
	}
	if _, err := svc.Login(ctx, dto.UserAuthRequest{Email: "aigerim@example.com", Password: "wrong123"}); !errors.Is(err, ErrPasswordUnknown) {
		t.Errorf("wrong password: got %v, want ErrPasswordUnknown", err)
	}
	if _, err := svc.Login(ctx, dto.UserAuthRequest{Email: "nobody@example.com", Password: "secret123"}); !errors.Is(err, ErrUnknownEmail) {
		t.Errorf("unknown email: got %v, want ErrUnknownEmail", err)
	}
}

func TestProfile(t *testing.T) {
	svc, _ := testService()
	ctx := context.Background()

	idStr, _, err := svc.Register(ctx, registrationRequest("Driver"))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := uuid.MustParse(idStr)

	profile, err := svc.Profile(ctx, id)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.ID != idStr || profile.Role != "Driver" || profile.Email != "aigerim@example.com" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     string
		wantErr  bool
	}{
		{"valid", "Aigerim", "a@b.kz", "secret123", "Customer", false},
		{"empty name", "", "a@b.kz", "secret123", "Customer", true},
		{"short email", "Aigerim", "a@b", "secret123", "Customer", true},
		{"two at signs", "Aigerim", "a@@b.kz", "secret123", "Customer", true},
		{"short password", "Aigerim", "a@b.kz", "pw", "Customer", true},
		{"unknown role", "Aigerim", "a@b.kz", "secret123", "Passenger", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRegistration(tt.userName, tt.email, tt.password, tt.role)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRegistration() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := hashPassword("secret123")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if !checkPassword(hash, "secret123") {
		t.Errorf("correct password rejected")
	}
	if checkPassword(hash, "secret124") {
		t.Errorf("wrong password accepted")
	}
}
