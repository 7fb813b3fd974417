package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[AcquireAuthorizationCodeMessage] = (*AcquireAuthorizationCodeCommand)(nil)
	_ gocmd.Commander[AcquireSilentMessage]            = (*AcquireSilentCommand)(nil)
	_ gocmd.Commander[AcquireAppOnlyMessage]           = (*AcquireAppOnlyCommand)(nil)
	_ gocmd.Commander[AcquireOnBehalfOfMessage]        = (*AcquireOnBehalfOfCommand)(nil)
	_ gocmd.Commander[AuthorizationURLMessage]         = (*AuthorizationURLCommand)(nil)
)
