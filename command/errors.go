package command

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

func commandDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.TokenErrorInternal)
}
