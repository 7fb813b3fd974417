package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.TokenErrorInternal)
}
