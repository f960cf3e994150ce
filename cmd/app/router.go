package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// post service
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.listPostsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requireAuthUser(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.getPostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/images", app.listImagesHandler)
	router.HandlerFunc(http.MethodPut, "/v1/posts/:id", app.requireAuthUser(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:id", app.requireAuthUser(app.deletePostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/publish", app.requireAuthUser(app.publishPostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:id/archive", app.requireAuthUser(app.archivePostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/authors/:id/posts", app.listAuthorPostsHandler)

	// comment service
	router.HandlerFunc(http.MethodPost, "/v1/comments", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/comments/:id", app.requireAuthUser(app.deleteCommentHandler))

	// media service
	router.HandlerFunc(http.MethodPost, "/v1/uploads", app.requireAuthUser(app.uploadImageHandler))

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
