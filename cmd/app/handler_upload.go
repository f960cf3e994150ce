package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/mediaservice"
	"github.com/mwynn/toolgrid/internal/postservice"
)

const maxMultipartMemory = 8 << 20

func (app *application) uploadImageHandler(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxMultipartMemory)
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("malformed multipart form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		app.badRequestErrorResponse(w, r, errors.New("missing file field"))
		return
	}
	defer file.Close()

	var postID *int
	if raw := r.FormValue("post_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			app.badRequestErrorResponse(w, r, errors.New("invalid post_id field"))
			return
		}
		postID = &id
	}

	req := &mediaservice.UploadRequest{
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		PostID:      postID,
	}

	img, err := app.mediaService.Upload(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, mediaservice.ErrInvalidFileType):
			app.failedValidationErrorResponse(w, r, map[string]string{"file": "must be a jpeg, png, gif, or webp image"})
		case errors.Is(err, mediaservice.ErrFileTooLarge):
			app.failedValidationErrorResponse(w, r, map[string]string{"file": "must not be larger than 5MB"})
		case errors.Is(err, mediaservice.ErrPostForeignKey):
			app.failedValidationErrorResponse(w, r, map[string]string{"post_id": "referenced post does not exist"})
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"image": img}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listImagesHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readStringParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.postService.GetPostBySlug(r.Context(), slug, false)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	images, err := app.mediaService.GetImagesByPost(r.Context(), post.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"images": images}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
