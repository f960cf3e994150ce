package identity

import (
	"net/http"

	"github.com/mwynn/toolgrid/internal/common"
)

// User is the resolved authoring identity behind an access token. The
// provider owns the account; this service only ever sees the token and
// the profile it resolves to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

var AnonymousUser = User{}

func (u *User) IsAnonymous() bool {
	return u.ID == ""
}

// Client verifies access tokens against the hosted identity provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	c       *common.Cache
}
