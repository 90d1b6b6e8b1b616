// Package client is a Go client for a splitledger server.
//
// All configuration is passed to New; nothing is read from globals or the
// environment:
//
//	c := client.New("http://localhost:8080", client.WithToken(token))
//	resp, err := c.Groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
package client

import (
	"context"
	"net/http"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// Client bundles the typed service clients of one server.
type Client struct {
	Split       *api.SplitServiceClient
	Groups      *api.GroupServiceClient
	Expenses    *api.ExpenseServiceClient
	Settlements *api.SettlementServiceClient
	Auth        *api.AuthServiceClient

	mu    sync.RWMutex
	token string
}

type options struct {
	httpClient   connect.HTTPClient
	token        string
	interceptors []connect.Interceptor
}

// Option configures a Client.
type Option func(*options)

// WithToken sets the bearer token sent with every call.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c connect.HTTPClient) Option {
	return func(o *options) { o.httpClient = c }
}

// WithInterceptors adds client interceptors, run after the token is attached.
func WithInterceptors(interceptors ...connect.Interceptor) Option {
	return func(o *options) { o.interceptors = append(o.interceptors, interceptors...) }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	o := options{httpClient: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{token: o.token}
	interceptors := append([]connect.Interceptor{c.tokenInterceptor()}, o.interceptors...)
	clientOpts := []connect.ClientOption{connect.WithInterceptors(interceptors...)}

	c.Split = api.NewSplitServiceClient(o.httpClient, baseURL, clientOpts...)
	c.Groups = api.NewGroupServiceClient(o.httpClient, baseURL, clientOpts...)
	c.Expenses = api.NewExpenseServiceClient(o.httpClient, baseURL, clientOpts...)
	c.Settlements = api.NewSettlementServiceClient(o.httpClient, baseURL, clientOpts...)
	c.Auth = api.NewAuthServiceClient(o.httpClient, baseURL, clientOpts...)
	return c
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token for subsequent calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login signs in and keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (api.User, error) {
	resp, err := c.Auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: email, Password: password}))
	if err != nil {
		return api.User{}, err
	}
	c.SetToken(resp.Msg.Token)
	return resp.Msg.User, nil
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, email, displayName, password string) (api.User, error) {
	resp, err := c.Auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: displayName,
		Password:    password,
	}))
	if err != nil {
		return api.User{}, err
	}
	c.SetToken(resp.Msg.Token)
	return resp.Msg.User, nil
}

func (c *Client) tokenInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := c.Token(); token != "" && req.Header().Get("Authorization") == "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
