package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/mwynn/toolgrid/internal/common"
	"github.com/mwynn/toolgrid/internal/editor"
	"github.com/mwynn/toolgrid/internal/postservice"
)

type createPostRequest struct {
	Title            string          `json:"title"`
	Excerpt          string          `json:"excerpt"`
	Content          editor.Document `json:"content"`
	Category         string          `json:"category"`
	FeaturedImageURL string          `json:"featured_image_url"`
	SEOTitle         string          `json:"seo_title"`
	SEODescription   string          `json:"seo_description"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input createPostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	req := &postservice.CreatePostRequest{
		Title:            input.Title,
		Excerpt:          input.Excerpt,
		Content:          input.Content,
		Category:         input.Category,
		FeaturedImageURL: input.FeaturedImageURL,
		SEOTitle:         input.SEOTitle,
		SEODescription:   input.SEODescription,
		AuthorID:         user.ID,
	}

	post, err := app.postService.CreatePost(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrDuplicateSlug):
			app.failedValidationErrorResponse(w, r, map[string]string{"slug": "a post with this slug already exists"})
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readStringParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.postService.GetPostBySlug(r.Context(), slug, !user.IsAnonymous())
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

	// drafts and archived posts are visible to their author and admins only
	if post.Status != postservice.StatusPublished && post.AuthorID != user.ID && !user.Admin {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var posts []postservice.Post

	query := r.URL.Query().Get("q")
	if query != "" {
		posts, err = app.postService.SearchPosts(r.Context(), query, limit, offset)
	} else {
		posts, err = app.postService.GetPosts(r.Context(), limit, offset)
	}
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type updatePostRequest struct {
	Title            string          `json:"title"`
	Excerpt          string          `json:"excerpt"`
	Content          editor.Document `json:"content"`
	Category         string          `json:"category"`
	FeaturedImageURL string          `json:"featured_image_url"`
	SEOTitle         string          `json:"seo_title"`
	SEODescription   string          `json:"seo_description"`
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	var input updatePostRequest

	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.postService.GetPostByID(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if post.AuthorID != user.ID && !user.Admin {
		app.notFoundErrorResponse(w, r)
		return
	}

	post.Title = input.Title
	post.Excerpt = input.Excerpt
	post.Content = input.Content
	post.Category = input.Category
	post.FeaturedImageURL = input.FeaturedImageURL
	post.SEOTitle = input.SEOTitle
	post.SEODescription = input.SEODescription

	err = app.postService.UpdatePost(r.Context(), post)
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

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) publishPostHandler(w http.ResponseWriter, r *http.Request) {
	app.setPostStatusHandler(w, r, app.postService.PublishPost)
}

func (app *application) archivePostHandler(w http.ResponseWriter, r *http.Request) {
	app.setPostStatusHandler(w, r, app.postService.ArchivePost)
}

func (app *application) setPostStatusHandler(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id int, authorID string) (*postservice.Post, error)) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := transition(r.Context(), id, user.ID)
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

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	err = app.postService.DeletePost(r.Context(), id, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, postservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "post deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) listAuthorPostsHandler(w http.ResponseWriter, r *http.Request) {
	authorID, err := app.readStringParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	posts, err := app.postService.GetPostsByAuthor(r.Context(), authorID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// only the author and admins see unpublished entries
	if user.ID != authorID && !user.Admin {
		published := make([]postservice.Post, 0, len(posts))
		for _, p := range posts {
			if p.Status == postservice.StatusPublished {
				published = append(published, p)
			}
		}
		posts = published
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
