package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestAuthFlow(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	reg, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Dana@Example.com",
		DisplayName: "Dana",
		Password:    "correct horse",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" || reg.Msg.User.Email != "dana@example.com" {
		t.Errorf("unexpected register response: %+v", reg.Msg)
	}

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "dana@example.com", DisplayName: "Dana", Password: "another password",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "dana@example.com", Password: "correct horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	_, err = c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "dana@example.com", Password: "wrong password"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	req := connect.NewRequest(&api.GetCurrentUserRequest{})
	req.Header().Set("Authorization", "Bearer "+login.Msg.Token)
	me, err := c.auth.GetCurrentUser(ctx, req)
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.ID != reg.Msg.User.ID || me.Msg.User.DisplayName != "Dana" {
		t.Errorf("unexpected user: %+v", me.Msg.User)
	}

	_, err = c.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestRegister_Invalid(t *testing.T) {
	c := setupTestServer(t)

	tests := []struct {
		name string
		req  *api.RegisterRequest
	}{
		{"weak password", &api.RegisterRequest{Email: "e@example.com", DisplayName: "E", Password: "short"}},
		{"missing email", &api.RegisterRequest{DisplayName: "E", Password: "long enough"}},
		{"missing name", &api.RegisterRequest{Email: "e@example.com", Password: "long enough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.auth.Register(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}
