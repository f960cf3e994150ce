package mediaservice

import (
	"context"
	"database/sql"
	"io"
)

func NewMediaService(db *sql.DB, blob BlobStore) *MediaService {
	return &MediaService{m: newImageModel(db), blob: blob}
}

type UploadRequest struct {
	ContentType string
	Size        int64
	Body        io.Reader
	PostID      *int
}

// Upload validates, normalizes, and stores one image: decode, downscale
// when oversized, re-encode as JPEG, write to the blob store, and record
// the metadata row. The returned Image carries the public URL the editor
// embeds into image blocks.
func (s *MediaService) Upload(ctx context.Context, req *UploadRequest) (*Image, error) {
	if !allowedTypes[req.ContentType] {
		return nil, ErrInvalidFileType
	}

	if req.Size > maxUploadSize {
		return nil, ErrFileTooLarge
	}

	// The declared size is client-supplied; cap the read as well.
	data, w, h, err := processImage(io.LimitReader(req.Body, maxUploadSize+1))
	if err != nil {
		return nil, err
	}

	name := objectName()

	url, err := s.blob.Save(ctx, name, data)
	if err != nil {
		return nil, err
	}

	img := &Image{
		PostID:      req.PostID,
		Filename:    name,
		URL:         url,
		ContentType: "image/jpeg",
		Size:        len(data),
		Width:       w,
		Height:      h,
	}

	if err := s.m.insert(ctx, img); err != nil {
		return nil, err
	}

	return img, nil
}

// GetImagesByPost lists the images recorded against one post.
func (s *MediaService) GetImagesByPost(ctx context.Context, postID int) ([]Image, error) {
	return s.m.getByPostID(ctx, postID)
}
