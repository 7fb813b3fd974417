package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"
)

var (
	_ gocmd.Querier[GetApplicationCredentialMessage, core.ApplicationCredential] = (*GetApplicationCredentialQuery)(nil)
	_ gocmd.Querier[PeekCachedTokenMessage, CachedTokenView]                     = (*PeekCachedTokenQuery)(nil)
)
