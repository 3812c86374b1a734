package github

import (
	"context"
	"strings"
	"sync"

	perr "devquest/internal/platform/errors"

	gh "github.com/google/go-github/v62/github"
)

// User is the part of a GitHub user document replay needs
type User struct {
	ID    int64
	Login string
	Type  string
}

// UserByLogin performs GET /users/{login}
func (c *Client) UserByLogin(ctx context.Context, login string) (User, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return User{}, perr.InvalidArgf("github: login is required")
	}

	var u *gh.User
	err := c.call(ctx, "users/"+login, func() (*gh.Response, error) {
		var (
			resp *gh.Response
			err  error
		)
		u, resp, err = c.gh.Users.Get(ctx, login)
		return resp, err
	})
	if err != nil {
		return User{}, err
	}
	if u.GetID() == 0 {
		return User{}, perr.Newf(perr.ErrorCodeNotFound, "github: users/%s has no id", login)
	}
	return User{ID: u.GetID(), Login: u.GetLogin(), Type: u.GetType()}, nil
}

// Resolver maps logins to numeric actor ids, remembering answers for its lifetime
type Resolver struct {
	c  *Client
	mu sync.Mutex
	id map[string]int64
}

// NewResolver wraps c
func NewResolver(c *Client) *Resolver {
	return &Resolver{c: c, id: map[string]int64{}}
}

// ActorID returns the GitHub id for login
func (r *Resolver) ActorID(ctx context.Context, login string) (int64, error) {
	key := strings.ToLower(strings.TrimSpace(login))
	r.mu.Lock()
	id, ok := r.id[key]
	r.mu.Unlock()
	if ok {
		return id, nil
	}

	u, err := r.c.UserByLogin(ctx, key)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	r.id[key] = u.ID
	r.mu.Unlock()
	return u.ID, nil
}
