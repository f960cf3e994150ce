package commentservice

import "github.com/mwynn/toolgrid/internal/common"

func validateContent(v *common.Validator, content string) {
	v.Check(content != "", "content", "must be provided")
	v.Check(v.CheckStringLength(content, 1, 2000), "content", "must not be longer than 2000 characters")
}

func validateID(v *common.Validator, id int, name string) {
	v.Check(id > 0, name, "must be greater than zero")
}

func validateAuthor(v *common.Validator, authorID string) {
	v.Check(authorID != "", "author_id", "must be provided")
}
