package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/askgita/askgita/internal/client/models"
)

func printArchive(items []models.ArchivedConversation) {
	if len(items) == 0 {
		fmt.Println("No conversations.")
		return
	}
	for _, c := range items {
		fmt.Printf("%s  %s  %s\n", c.ID, c.Date, c.Title)
	}
}

// History lists the caller's archived conversations, newest first.
func (a *App) History(ctx context.Context) error {
	items, err := a.hist.List(ctx)
	if err != nil {
		fmt.Println("Could not load history:", err)
		return err
	}
	printArchive(items)
	return nil
}

// Open switches to a read-only replay of an archived conversation.
func (a *App) Open(ctx context.Context, id string) error {
	if !a.isLoggedIn() {
		fmt.Println("Log in to view chat history.")
		return nil
	}
	a.ctrl.OpenConversation(ctx, id)
	fmt.Println("Viewing archived conversation (read-only, 'back' to return):")
	printThread(a.ctrl.Messages())
	return nil
}

// Back returns from replay to the live conversation.
func (a *App) Back(ctx context.Context) error {
	a.ctrl.CloseReplay()
	fmt.Println("Back to your conversation:")
	printThread(a.ctrl.Messages())
	return nil
}

// Search filters the last fetched history locally.
func (a *App) Search(ctx context.Context, term string) error {
	printArchive(a.hist.Search(term))
	return nil
}

// Delete removes one archived conversation.
func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.hist.Delete(ctx, id); err != nil {
		fmt.Println("Could not delete:", err)
		return err
	}
	fmt.Println("Deleted.")
	return nil
}

// DeleteAll wipes the whole archive after a typed confirmation.
func (a *App) DeleteAll(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "Delete ALL archived conversations? Type 'yes' to confirm", os.Stdout)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Println("Cancelled.")
		return nil
	}
	if err := a.hist.DeleteAll(ctx); err != nil {
		fmt.Println("Could not delete history:", err)
		return err
	}
	fmt.Println("History deleted.")
	return nil
}
