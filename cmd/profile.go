package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"linkup/logger"
	"linkup/models"
	"linkup/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProfile(cmd, func(ctx context.Context, e *profile.Editor) (*models.AccountUser, error) {
			return e.Current()
		})
	},
}

var profileNameCmd = &cobra.Command{
	Use:   "name <full name>",
	Short: "Change your display name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProfile(cmd, func(ctx context.Context, e *profile.Editor) (*models.AccountUser, error) {
			return e.UpdateName(ctx, strings.Join(args, " "))
		})
	},
}

var profileStatusCmd = &cobra.Command{
	Use:   "status <text>",
	Short: "Change your status line",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProfile(cmd, func(ctx context.Context, e *profile.Editor) (*models.AccountUser, error) {
			return e.UpdateStatus(ctx, strings.Join(args, " "))
		})
	},
}

var profileImageCmd = &cobra.Command{
	Use:   "image <path>",
	Short: "Upload a new profile picture",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProfile(cmd, func(ctx context.Context, e *profile.Editor) (*models.AccountUser, error) {
			return e.UpdateImage(ctx, args[0])
		})
	},
}

var profileRemoveImageCmd = &cobra.Command{
	Use:   "remove-image",
	Short: "Remove your profile picture",
	RunE: func(cmd *cobra.Command, args []string) error {
		return editProfile(cmd, func(ctx context.Context, e *profile.Editor) (*models.AccountUser, error) {
			return e.RemoveImage(ctx)
		})
	},
}

func init() {
	profileCmd.AddCommand(profileNameCmd, profileStatusCmd, profileImageCmd, profileRemoveImageCmd)
	rootCmd.AddCommand(profileCmd)
}

func editProfile(cmd *cobra.Command, edit func(ctx context.Context, e *profile.Editor) (*models.AccountUser, error)) error {
	c, err := openClient()
	if err != nil {
		return err
	}
	defer c.close()

	u, err := edit(cmd.Context(), profile.NewEditor(c.api, c.store, logger.Log))
	if err != nil {
		return err
	}
	fmt.Println(renderAccount(u))
	return nil
}
