package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if u := a.currentUser(); u != nil {
		s = u.Email + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root greets the user, refreshes the account behind a restored session,
// starts the connectivity watcher and runs the REPL until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to the testimony archive CLI (type 'help' for commands)")

	if a.isLoggedIn() {
		if u, err := a.authService.Me(ctx); err == nil {
			a.setUser(u)
			fmt.Fprintf(a.out, "Logged in as %s\n", u.Email)
		}
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}
