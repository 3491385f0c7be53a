package httpapi

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"shipledger/backend/internal/domain"
)

type userStoreStub struct {
	mu      sync.Mutex
	users   map[string]domain.UserAccount
	updates int
}

func (s *userStoreStub) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == nil {
		s.users = make(map[string]domain.UserAccount)
	}
	s.users[user.Username] = user
	return nil
}

func (s *userStoreStub) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.UserAccount, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *userStoreStub) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[username]
	user.Password = password
	s.users[username] = user
	s.updates++
	return nil
}

func TestAuthManagerUpgradesLegacyPlainPassword(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      "admin",
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	_, err := manager.Login(context.Background(), domain.LoginRequest{
		Username: "admin",
		Password: "admin123",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Password == "admin123" {
		t.Fatalf("expected password to be upgraded from plain-text")
	}
	if !strings.HasPrefix(users[0].Password, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", users[0].Password)
	}
}

func TestCreateStaffStoresPasswordHash(t *testing.T) {
	store := &userStoreStub{
		users: map[string]domain.UserAccount{
			"admin": {
				Username:  "admin",
				Password:  "admin123",
				Role:      RoleAdmin,
				Active:    true,
				CreatedAt: time.Now().UTC(),
			},
		},
	}

	manager := NewAuthManager("test-secret", time.Hour, store)
	staff, err := manager.CreateStaff(context.Background(), domain.StaffCreateRequest{
		Username: "Khaled",
		Password: "pass1234",
	})
	if err != nil {
		t.Fatalf("create staff failed: %v", err)
	}
	if staff.Username != "khaled" {
		t.Fatalf("expected lower-cased username, got %s", staff.Username)
	}
	if staff.Role != RoleManager {
		t.Fatalf("expected default role manager, got %s", staff.Role)
	}

	users, err := store.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	var found *domain.UserAccount
	for i := range users {
		if users[i].Username == "khaled" {
			found = &users[i]
			break
		}
	}
	if found == nil {
		t.Fatalf("expected staff to be saved")
	}
	if !strings.HasPrefix(found.Password, "$2") {
		t.Fatalf("expected bcrypt hash prefix, got %s", found.Password)
	}

	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "khaled", Password: "pass1234"}); err != nil {
		t.Fatalf("login with hashed staff failed: %v", err)
	}
	if _, err := manager.CreateStaff(context.Background(), domain.StaffCreateRequest{Username: "khaled", Password: "other123"}); err == nil {
		t.Fatalf("expected duplicate username to be rejected")
	}
}

func TestCreateStaffRejectsUnknownRole(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, &userStoreStub{})
	if _, err := manager.CreateStaff(context.Background(), domain.StaffCreateRequest{Username: "driver", Password: "pass1234", Role: "driver"}); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestEnsureStaffSeedsEmptyStoreOnce(t *testing.T) {
	store := &userStoreStub{}
	manager := NewAuthManager("test-secret", time.Hour, store)

	if err := manager.EnsureStaff(context.Background(), "topsecret", ""); err != nil {
		t.Fatalf("ensure staff failed: %v", err)
	}
	users, _ := store.ListUsers(context.Background())
	if len(users) != 2 {
		t.Fatalf("expected admin and manager to be seeded, got %d", len(users))
	}
	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "topsecret"}); err != nil {
		t.Fatalf("admin login with seeded password failed: %v", err)
	}
	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "manager", Password: "manager123"}); err != nil {
		t.Fatalf("manager login with fallback password failed: %v", err)
	}

	if err := manager.EnsureStaff(context.Background(), "changed", "changed"); err != nil {
		t.Fatalf("second ensure staff failed: %v", err)
	}
	if _, err := manager.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "topsecret"}); err != nil {
		t.Fatalf("expected existing accounts to be left alone: %v", err)
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	store := &userStoreStub{}
	issuer := NewAuthManager("secret-one", time.Hour, store)
	if err := issuer.EnsureStaff(context.Background(), "", ""); err != nil {
		t.Fatalf("ensure staff failed: %v", err)
	}
	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	actor, err := issuer.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse own token failed: %v", err)
	}
	if actor.Username != "admin" || actor.Role != RoleAdmin {
		t.Fatalf("unexpected actor %+v", actor)
	}

	other := NewAuthManager("secret-two", time.Hour, store)
	if _, err := other.ParseToken(resp.AccessToken); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}
}
