package service

import (
	"context"
	"testing"

	"guildchat/internal/app/model"
	"guildchat/internal/pkg/errs"
)

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "ALICE@example.com",
		Password: "another password",
	})
	if !errs.IsCode(err, errs.ErrEmailAlreadyExists) {
		t.Errorf("Register() error = %v, want ErrEmailAlreadyExists", err)
	}
}

func TestRegisterHidesCredential(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	if u.PasswordHash != "" {
		t.Error("Register() returned the password hash")
	}
	if u.Status != model.StatusOnline {
		t.Errorf("status = %q, want Online", u.Status)
	}

	users, _ := f.svc.ListUsers(context.Background())
	for _, listed := range users {
		if listed.PasswordHash != "" {
			t.Error("ListUsers() returned a password hash")
		}
	}
}

func TestLoginAndLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	if _, err := f.svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong password"}); !errs.IsCode(err, errs.ErrInvalidCredentials) {
		t.Errorf("Login() with wrong password error = %v", err)
	}
	if _, err := f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "correct horse"}); !errs.IsCode(err, errs.ErrInvalidCredentials) {
		t.Errorf("Login() of unknown email error = %v", err)
	}

	if err := f.svc.Logout(ctx, alice.ID); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if u, _ := f.svc.GetUser(ctx, alice.ID); u.Status != model.StatusOffline {
		t.Errorf("status after logout = %q", u.Status)
	}

	u, err := f.svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if u.Status != model.StatusOnline || u.ID != alice.ID {
		t.Errorf("Login() = %+v", u)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	about := "hello there"
	if _, err := f.svc.UpdateProfile(ctx, bob.ID, alice.ID, ProfileUpdate{AboutMe: &about}); !errs.IsCode(err, errs.ErrPermissionDenied) {
		t.Errorf("UpdateProfile() of another user error = %v", err)
	}

	u, err := f.svc.UpdateProfile(ctx, alice.ID, alice.ID, ProfileUpdate{AboutMe: &about})
	if err != nil {
		t.Fatalf("UpdateProfile() failed: %v", err)
	}
	if u.AboutMe != about || u.Email != "alice@example.com" {
		t.Errorf("UpdateProfile() = %+v", u)
	}
}

func TestPresenceSetStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "alice")

	p := NewPresence(f.store)
	if err := p.SetStatus(ctx, alice.ID, model.StatusOffline); err != nil {
		t.Fatalf("SetStatus() failed: %v", err)
	}
	if u, _ := f.svc.GetUser(ctx, alice.ID); u.Status != model.StatusOffline {
		t.Errorf("status = %q, want Offline", u.Status)
	}

	if err := p.SetStatus(ctx, "usermissing", model.StatusOnline); !errs.IsCode(err, errs.ErrUserNotFound) {
		t.Errorf("SetStatus() of unknown user error = %v", err)
	}
}
