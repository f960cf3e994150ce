package postservice

import (
	"github.com/mwynn/toolgrid/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 3, 200), "title", "must be between 3 and 200 characters long")
}

func validateSlug(v *common.Validator, slug string) {
	v.Check(slug != "", "title", "must contain at least one letter or digit")
}

func validateExcerpt(v *common.Validator, excerpt string) {
	v.Check(v.CheckStringLength(excerpt, 0, 500), "excerpt", "must not be longer than 500 characters")
}

func validateStatus(v *common.Validator, status Status) {
	v.Check(common.In(string(status), string(StatusDraft), string(StatusPublished), string(StatusArchived)), "status", "must be draft, published, or archived")
}

func validateID(v *common.Validator, id int, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}

func validateAuthor(v *common.Validator, authorID string) {
	v.Check(authorID != "", "author_id", "must be provided")
}
