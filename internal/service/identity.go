package service

import (
	"context"

	"github.com/mmynk/kanakk/internal/middleware"
)

// caller returns the verified identity of the request, failing closed.
func caller(ctx context.Context) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(ctx)
	if !ok {
		return middleware.Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// admin returns the caller if it may manage the company.
func admin(ctx context.Context) (middleware.Identity, error) {
	id, err := caller(ctx)
	if err != nil {
		return id, err
	}
	if !id.Role.CanManage() {
		return id, ErrAccessDenied
	}
	return id, nil
}
