package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/askgita/askgita/internal/client/controller"
)

func (a *App) getStatus() string {
	s := "guest"
	if id := a.ctrl.Identity(); id != nil {
		s = id.Username
	}
	if a.ctrl.Mode() == controller.ModeReplay {
		s += " replay"
	}
	return fmt.Sprintf("(%s %s)", s, a.ctrl.Language())
}

// Root restores the cached session, prints the conversation so far, and
// hands control to the REPL. It blocks until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to AskGita (type 'help' for commands)")

	a.ctrl.Start(ctx, "")

	if msgs := a.ctrl.Messages(); len(msgs) > 0 {
		fmt.Println("Restored conversation:")
		printThread(msgs)
	}
	if n := a.ctrl.QuestionsRemaining(ctx); n >= 0 {
		fmt.Printf("Guest session: %d free questions remaining.\n", n)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
