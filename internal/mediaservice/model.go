package mediaservice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var ErrPostForeignKey = errors.New("post_id does not exist")

func newImageModel(db *sql.DB) *ImageModel {
	return &ImageModel{db: db}
}

func (m *ImageModel) insert(ctx context.Context, img *Image) error {
	query := `
		INSERT INTO post_images (post_id, filename, url, content_type, size_bytes, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := m.db.QueryRowContext(ctx, query, img.PostID, img.Filename, img.URL, img.ContentType, img.Size, img.Width, img.Height).Scan(&img.ID, &img.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "post_images_post_id_fkey" {
			return ErrPostForeignKey
		}
		return err
	}

	return nil
}

func (m *ImageModel) getByPostID(ctx context.Context, postID int) ([]Image, error) {
	query := `
		SELECT id, post_id, filename, url, content_type, size_bytes, width, height, created_at
		FROM post_images
		WHERE post_id = $1
		ORDER BY created_at ASC`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := []Image{}
	for rows.Next() {
		var img Image
		err := rows.Scan(&img.ID, &img.PostID, &img.Filename, &img.URL, &img.ContentType, &img.Size, &img.Width, &img.Height, &img.CreatedAt)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return images, nil
}
