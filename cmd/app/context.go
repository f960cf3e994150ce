package main

import (
	"context"
	"net/http"

	"github.com/mwynn/toolgrid/internal/identity"
)

type contextKey string

const userContextKey = contextKey("user")

func (app *application) createUserContext(r *http.Request, user *identity.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

func (app *application) getUserContext(r *http.Request) *identity.User {
	user, ok := r.Context().Value(userContextKey).(*identity.User)
	if !ok {
		return &identity.AnonymousUser
	}
	return user
}
