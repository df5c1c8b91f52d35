package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkup/chat"
	"linkup/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat <peer-id>",
	Short: "Open a conversation",
	Long: `Open a conversation with a user id, or with "linko" for the assistant.
Type a line to send it. "/attach" attaches a file, "/quit" leaves.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session := chat.NewSession(c.api, chat.WebsocketDialer{}, c.store, chat.Options{
			PingInterval:   cfg.PingInterval,
			ReconnectDelay: cfg.ReconnectDelay,
			AssistantDelay: cfg.AssistantDelay,
			Logger:         logger.Log,
		})
		defer session.Close()

		rendered := make(chan struct{})
		go func() {
			defer close(rendered)
			renderEvents(session)
		}()

		if err := session.Open(ctx, args[0]); err != nil {
			if errors.Is(err, chat.ErrNotAuthenticated) {
				return errors.New("not signed in, run \"linkup login\" first")
			}
			return err
		}
		fmt.Println(renderPeer(session.Peer()))

		readInput(ctx, session)

		session.Close()
		<-rendered
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

// readInput sends stdin lines until EOF, /quit or ctx ends
func readInput(ctx context.Context, session *chat.Session) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			switch strings.TrimSpace(line) {
			case "":
				continue
			case "/quit":
				return
			case "/attach":
				_ = session.AttachFile()
				continue
			}
			if err := session.Send(ctx, line); err != nil {
				logger.Log.Debug("chat_send_returned", zap.Error(err))
			}
		}
	}
}

// renderEvents prints the conversation as it changes. Optimistic entries
// are not printed; their confirmed copy is.
func renderEvents(session *chat.Session) {
	printed := make(map[string]struct{})
	for ev := range session.Events() {
		switch ev.Kind {
		case chat.EventMessages:
			for _, m := range session.Messages() {
				if m.IsOptimistic {
					continue
				}
				if _, ok := printed[m.ID]; ok {
					continue
				}
				printed[m.ID] = struct{}{}
				fmt.Println(renderMessage(m))
			}
		case chat.EventConnectivity:
			if ev.Online {
				fmt.Println(successStyle.Render("● online"))
			} else {
				fmt.Println(mutedStyle.Render("○ offline, reconnecting"))
			}
		case chat.EventAlert:
			fmt.Println(errorStyle.Render(ev.Title + ": " + ev.Text))
		case chat.EventNotice:
			fmt.Println(noticeStyle.Render(ev.Title + ": " + ev.Text))
		}
	}
}
