package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/askgita/askgita/internal/client/controller"
	"github.com/askgita/askgita/internal/client/models"
)

// printThread renders messages with their indexes so the speak command can
// address them.
func printThread(msgs []models.Message) {
	for i, m := range msgs {
		printMessage(i, m)
	}
}

func printMessage(i int, m models.Message) {
	who := "you"
	if m.Role == models.RoleAssistant {
		who = "gita"
	}
	fmt.Printf("[%d] %s: %s\n", i, who, m.Content)
	if m.Auxiliary != "" {
		fmt.Printf("    (reasoning: %s)\n", m.Auxiliary)
	}
}

// Ask sends text as a chat message and prints the reply. Quota advisories
// and send failures arrive as regular assistant messages, so printing the
// thread tail covers every outcome.
func (a *App) Ask(ctx context.Context, text string) error {
	before := len(a.ctrl.Messages())

	if err := a.ctrl.Send(ctx, text); err != nil {
		switch {
		case errors.Is(err, controller.ErrReadOnly):
			fmt.Println("This is an archived conversation. Type 'back' to return to your chat.")
		case errors.Is(err, controller.ErrSendInFlight):
			fmt.Println("Still waiting for the previous answer.")
		default:
			fmt.Println("Could not send:", err)
		}
		return err
	}

	msgs := a.ctrl.Messages()
	for i := before; i < len(msgs); i++ {
		printMessage(i, msgs[i])
	}
	if n := a.ctrl.QuestionsRemaining(ctx); n >= 0 {
		fmt.Printf("(%d free questions remaining)\n", n)
	}
	return nil
}

// Lang toggles the answer language.
func (a *App) Lang(ctx context.Context) error {
	fmt.Println("Answer language:", a.ctrl.ToggleLanguage())
	return nil
}

// Clear empties the current conversation.
func (a *App) Clear(ctx context.Context) error {
	a.ctrl.ClearChat(ctx)
	fmt.Println("Conversation cleared.")
	return nil
}

// Speak toggles playback for the assistant message at the given index.
func (a *App) Speak(ctx context.Context, arg string) error {
	if !a.voice.Available() {
		fmt.Println("No speech engine is available on this platform.")
		return nil
	}
	idx, err := strconv.Atoi(arg)
	if err != nil {
		fmt.Println("Usage: speak <message index>")
		return err
	}
	a.ctrl.ToggleSpeech(ctx, idx)
	return nil
}
