package sqlstore

import "github.com/Perf-Org-5KRepos/Partner-Center-Bot/core"

var _ core.CredentialStore = (*ApplicationCredentialStore)(nil)
