package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/relwatch/pkg/cli/config"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdStatus() *cli.Command {
	var fileCfg config.File

	return &cli.Command{
		Name:    "status",
		Aliases: []string{"s"},
		Usage:   "Show the last notified version",
		Flags:   fileCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			settings, err := fileCfg.Load()
			if err != nil {
				return err
			}

			versionStore, err := newStore(ctx, settings)
			if err != nil {
				return err
			}
			defer closeStore(ctx, versionStore)

			monitorUC, err := newMonitor(ctx, settings, &config.GitHub{}, versionStore,
				settings.Discord.Notification.WebhookURL)
			if err != nil {
				return err
			}

			record, err := monitorUC.Status(ctx)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if w == nil {
				w = os.Stdout
			}
			printStatus(w, settings.GitHub.Repository, record)
			return nil
		},
	}
}

func printStatus(w io.Writer, repository string, record *model.VersionRecord) {
	label := color.New(color.Bold)

	fmt.Fprintf(w, "%s %s\n", label.Sprint("repository:  "), repository)
	if record == nil {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("last version:"), color.YellowString("(none)"))
		return
	}

	fmt.Fprintf(w, "%s %s\n", label.Sprint("last version:"), color.GreenString(record.LastVersion))
	if record.LastCheck.IsZero() {
		fmt.Fprintf(w, "%s %s\n", label.Sprint("last check:  "), color.YellowString("(unknown)"))
		return
	}
	fmt.Fprintf(w, "%s %s\n", label.Sprint("last check:  "), record.LastCheck.UTC().Format(time.RFC3339))
}
