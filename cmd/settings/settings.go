// Package settings implements the command to show and change display
// preferences.
package settings

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mark0fPride/app-cnn/internal/conf"
	"github.com/Mark0fPride/app-cnn/internal/settings"
)

// Command returns the settings subcommand.
func Command(appSettings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display preferences",
	}
	cmd.AddCommand(showCommand(appSettings), setCommand(appSettings))
	return cmd
}

func showCommand(appSettings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current display preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.NewStore(appSettings.UserSettingsPath)
			userSettings, err := store.Read()
			if err != nil {
				return err
			}
			fmt.Printf("display timestamp: %v\n", userSettings.DisplayTimestamp)
			fmt.Printf("name format:       %s\n", userSettings.NameFormat)
			fmt.Printf("time format:       %s\n", userSettings.TimeFormat)
			return nil
		},
	}
}

func setCommand(appSettings *conf.Settings) *cobra.Command {
	var (
		displayTimestamp bool
		nameFormat       string
		timeFormat       string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change display preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := settings.NewStore(appSettings.UserSettingsPath)
			userSettings, err := store.Read()
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("display-timestamp") {
				userSettings.DisplayTimestamp = displayTimestamp
			}
			if cmd.Flags().Changed("name-format") {
				userSettings.NameFormat = settings.NameFormat(nameFormat)
			}
			if cmd.Flags().Changed("time-format") {
				userSettings.TimeFormat = settings.TimeFormat(timeFormat)
			}

			if err := store.Write(userSettings); err != nil {
				return err
			}
			fmt.Println("preferences saved")
			return nil
		},
	}

	cmd.Flags().BoolVar(&displayTimestamp, "display-timestamp", true, "Show capture timestamps in listings")
	cmd.Flags().StringVar(&nameFormat, "name-format", string(settings.NameBoth), "Name display: scientific, common or both")
	cmd.Flags().StringVar(&timeFormat, "time-format", string(settings.TimeMonthYear), "Time display: month-year, day-month-year or full")
	return cmd
}
