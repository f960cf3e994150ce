package main

import (
	"errors"
	"net/http"

	"github.com/mwynn/toolgrid/internal/commentservice"
	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/postservice"
)

type createCommentRequest struct {
	PostID   int    `json:"post_id"`
	ParentID *int   `json:"parent_id"`
	Content  string `json:"content"`
}

func (app *application) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	var input createCommentRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	req := &commentservice.CreateCommentRequest{
		PostID:   input.PostID,
		ParentID: input.ParentID,
		Content:  input.Content,
		AuthorID: user.ID,
	}

	comment, err := app.commentService.CreateComment(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrPostForeignKey):
			app.failedValidationErrorResponse(w, r, map[string]string{"post_id": "referenced post does not exist"})
		case errors.Is(err, commentservice.ErrCommentForeignKey):
			app.failedValidationErrorResponse(w, r, map[string]string{"parent_id": "referenced comment does not exist"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"comment": comment}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
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

	comments, err := app.commentService.GetCommentsByPost(r.Context(), post.ID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"comments": comments}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.commentService.DeleteComment(r.Context(), id, user.ID, user.Admin)
	if err != nil {
		switch {
		case errors.Is(err, commentservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.Is(err, commentservice.ErrForbidden):
			app.unAuthorizedErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "comment deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
