package commentservice

import (
	"database/sql"
	"time"

	"github.com/mwynn/toolgrid/internal/common"
)

// Comment is one reader comment on a post. ParentID is set for threaded
// replies. AuthorID is the opaque identity-provider user reference.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	ParentID  *int      `json:"parent_id,omitempty"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentModel struct {
	db *sql.DB
}

type CommentService struct {
	m  *CommentModel
	c  *common.Cache
	mb common.MessageProducer
}
