package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/newsletter/internal/validate"
	"github.com/me/newsletter/pkg/model"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(cmd); err != nil {
				return err
			}
			profile, err := mgr.API().GetProfile(cmd.Context())
			if err != nil {
				return fmt.Errorf("get profile: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", profile.User.Name)
			fmt.Fprintf(out, "Email:   %s\n", profile.User.Email)
			if !profile.User.CreatedAt.IsZero() {
				fmt.Fprintf(out, "Joined:  %s\n", humanize.Time(profile.User.CreatedAt))
			}
			names := make([]string, 0, len(profile.Preferences))
			for _, c := range profile.Preferences {
				names = append(names, c.Name)
			}
			if len(names) == 0 {
				names = append(names, "(none)")
			}
			fmt.Fprintf(out, "Topics:  %s\n", strings.Join(names, ", "))
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-name <name>",
		Short: "Change your display name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validate.ProfileForm{Name: strings.Join(args, " ")}
			if err := validate.Struct(&form); err != nil {
				return err
			}
			if err := requireSession(cmd); err != nil {
				return err
			}
			profile, err := mgr.API().UpdateProfile(cmd.Context(), model.UpdateProfileRequest{Name: form.Name})
			if err != nil {
				return fmt.Errorf("update profile: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Name changed to %s\n", profile.User.Name)
			return nil
		},
	})
	return cmd
}

func newPreferencesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "preferences",
		Aliases: []string{"prefs"},
		Short:   "Show your preferred categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSession(cmd); err != nil {
				return err
			}
			prefs, err := mgr.API().GetPreferences(cmd.Context())
			if err != nil {
				return fmt.Errorf("get preferences: %w", err)
			}
			cats, err := mgr.API().GetCategories(cmd.Context())
			if err != nil {
				return fmt.Errorf("list categories: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(cats) == 0 {
				fmt.Fprintf(out, "Selected category ids: %v\n", prefs.CategoryIDs)
				return nil
			}
			for _, c := range cats {
				mark := " "
				if prefs.Has(c.ID) {
					mark = "x"
				}
				fmt.Fprintf(out, "[%s] %-4d %s\n", mark, c.ID, c.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set [category-id...]",
		Short: "Replace your preferred categories",
		Long:  "Replace your preferred categories. Run without ids to clear them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := validate.PreferencesForm{CategoryIDs: make([]int, 0, len(args))}
			for _, a := range args {
				id, err := strconv.Atoi(a)
				if err != nil {
					return fmt.Errorf("invalid category id %q", a)
				}
				form.CategoryIDs = append(form.CategoryIDs, id)
			}
			if err := validate.Struct(&form); err != nil {
				return err
			}
			if err := requireSession(cmd); err != nil {
				return err
			}

			userID := ""
			if user := mgr.User(cmd.Context()); user != nil {
				userID = user.ID
			}
			if userID == "" {
				profile, err := mgr.API().GetProfile(cmd.Context())
				if err != nil {
					return fmt.Errorf("get profile: %w", err)
				}
				userID = profile.User.ID
			}

			resp, err := mgr.API().UpdatePreferences(cmd.Context(), model.UpdatePreferencesRequest{
				UserID:      userID,
				CategoryIDs: form.CategoryIDs,
			})
			if err != nil {
				return fmt.Errorf("update preferences: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preferences saved (%d %s).\n", resp.UpdatedPreferences,
				plural(resp.UpdatedPreferences, "category", "categories"))
			return nil
		},
	})
	return cmd
}
