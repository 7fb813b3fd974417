package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

func TestAcquireAppOnlyCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *AcquireAppOnlyCommand
	err := cmd.Execute(context.Background(), AcquireAppOnlyMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
	if rich.TextCode != core.TokenErrorInternal {
		t.Fatalf("expected %q text code, got %q", core.TokenErrorInternal, rich.TextCode)
	}
}
