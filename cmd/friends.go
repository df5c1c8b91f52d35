package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"linkup/friends"
	"linkup/logger"
)

var friendsCmd = &cobra.Command{
	Use:   "friends",
	Short: "Manage friend requests",
}

var friendsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sent and received friend requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := openClient()
		if err != nil {
			return err
		}
		defer c.close()

		m := friends.NewManager(c.api, logger.Log)
		reqs, err := m.Fetch(cmd.Context())
		if err != nil {
			return err
		}
		if len(reqs) == 0 {
			fmt.Println(mutedStyle.Render("No friend requests"))
			return nil
		}
		fmt.Println(renderFriendRequests(reqs))
		if n := m.PendingCount(); n > 0 {
			fmt.Println(noticeStyle.Render(fmt.Sprintf("%d pending", n)))
		}
		return nil
	},
}

// friendAction builds a subcommand that runs one Manager operation on its
// single argument
func friendAction(use, short, done string, run func(m *friends.Manager, ctx context.Context, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openClient()
			if err != nil {
				return err
			}
			defer c.close()

			m := friends.NewManager(c.api, logger.Log)
			m.OnAccepted = func(string) { fmt.Print("\a") }
			if err := run(m, cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println(successStyle.Render(done))
			return nil
		},
	}
}

func init() {
	friendsCmd.AddCommand(
		friendsListCmd,
		friendAction("send <user-id>", "Send a friend request", "Friend request sent", (*friends.Manager).Send),
		friendAction("accept <request-id>", "Accept a friend request", "Friend request accepted", (*friends.Manager).Accept),
		friendAction("reject <request-id>", "Reject a friend request", "Friend request rejected", (*friends.Manager).Reject),
		friendAction("cancel <request-id>", "Cancel a friend request you sent", "Friend request cancelled", (*friends.Manager).Cancel),
	)
	rootCmd.AddCommand(friendsCmd)
}
