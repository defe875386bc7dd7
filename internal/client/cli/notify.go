package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/testimonykeeper/internal/client/services"
)

// printNotifier shows service notifications as tagged lines.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(_ context.Context, level services.Level, msg string) {
	switch level {
	case services.LevelSuccess:
		fmt.Fprintf(p.w, "[ok] %s\n", msg)
	case services.LevelError:
		fmt.Fprintf(p.w, "[error] %s\n", msg)
	default:
		fmt.Fprintf(p.w, "[info] %s\n", msg)
	}
}
