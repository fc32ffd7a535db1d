package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewBotCmd создаёт группу команд для управления ботами.
func NewBotCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Manage bots",
	}

	cmd.AddCommand(
		newBotListCmd(clientFn, outputFn),
		newBotCreateCmd(clientFn, outputFn),
		newBotShowCmd(clientFn, outputFn),
		newBotUpdateCmd(clientFn, outputFn),
		newBotDeleteCmd(clientFn, outputFn),
		newBotStartCmd(clientFn, outputFn),
		newBotStopCmd(clientFn, outputFn),
		newBotPauseCmd(clientFn, outputFn),
		newBotResumeCmd(clientFn, outputFn),
		newBotResetCmd(clientFn, outputFn),
		newBotHealthCheckCmd(clientFn, outputFn),
		newBotActionsCmd(clientFn, outputFn),
		newBotExecCmd(clientFn, outputFn),
		newBotActivitiesCmd(clientFn, outputFn),
	)

	return cmd
}

var botHeaders = []string{"ID", "NAME", "PLATFORM", "STATUS", "HEALTH", "VERSION", "CREATED"}

func botRow(b BotResponse) []string {
	return []string{b.ID, b.Name, b.Platform, b.Status, b.Health, strconv.Itoa(b.Version), b.CreatedAt}
}

func newBotListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListBotsOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bots",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bots, err := client.ListBots(opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(bots))
			for i, b := range bots {
				rows[i] = botRow(b)
			}

			out.Print(botHeaders, rows, bots)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (idle, running, paused, error)")
	cmd.Flags().StringVar(&opts.Platform, "platform", "", "Filter by platform")
	cmd.Flags().StringVar(&opts.Health, "health", "", "Filter by health")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Search by name")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newBotCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateBotRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new bot",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bot, err := client.CreateBot(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Bot created: %s", bot.ID))
			out.Print(botHeaders, [][]string{botRow(*bot)}, bot)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Bot name (required)")
	cmd.Flags().StringVar(&req.Type, "type", "", "Bot type")
	cmd.Flags().StringVar(&req.Platform, "platform", "", "Target platform (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Bot description")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("platform")

	return cmd
}

func newBotShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show bot details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bot, err := client.GetBot(args[0])
			if err != nil {
				return err
			}

			out.Print(botHeaders, [][]string{botRow(*bot)}, bot)
			return nil
		},
	}
}

func newBotUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, btype, platform, description string
	var version int

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateBotRequest{Version: version}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("type") {
				req.Type = &btype
			}
			if cmd.Flags().Changed("platform") {
				req.Platform = &platform
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}

			bot, err := client.UpdateBot(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Bot updated: %s", bot.ID))
			out.Print(botHeaders, [][]string{botRow(*bot)}, bot)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&btype, "type", "", "New type")
	cmd.Flags().StringVar(&platform, "platform", "", "New platform")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().IntVar(&version, "version", 0, "Current bot version (required)")
	cmd.MarkFlagRequired("version")

	return cmd
}

func newBotDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteBot(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Bot deleted: %s", args[0]))
			return nil
		},
	}
}

func newBotStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "start ID",
		Short: "Start a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.StartBot(args[0])
			if err != nil {
				return err
			}

			if resp.TaskID == "" {
				out.Success(fmt.Sprintf("Bot already %s", resp.Status))
				return nil
			}

			out.Success(fmt.Sprintf("Start task submitted: %s", resp.TaskID))
			return nil
		},
	}
}

func newBotStopCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stop ID",
		Short: "Stop a bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.StopBot(args[0])
			if err != nil {
				return err
			}

			if resp.TaskID == "" {
				out.Success(fmt.Sprintf("Bot already %s", resp.Status))
				return nil
			}

			out.Success(fmt.Sprintf("Stop task submitted: %s", resp.TaskID))
			return nil
		},
	}
}

func newBotPauseCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "pause ID",
		Short: "Pause a running bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bot, err := client.PauseBot(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Bot %s: %s", bot.ID, bot.Status))
			return nil
		},
	}
}

func newBotResumeCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "resume ID",
		Short: "Resume a paused bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bot, err := client.ResumeBot(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Bot %s: %s", bot.ID, bot.Status))
			return nil
		},
	}
}

func newBotResetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "reset ID",
		Short: "Reset a bot from error to idle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			bot, err := client.ResetBot(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Bot %s: %s", bot.ID, bot.Status))
			return nil
		},
	}
}

func newBotHealthCheckCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "health-check ID",
		Short: "Submit a health check task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.CheckBotHealth(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Health check task submitted: %s", resp.TaskID))
			return nil
		},
	}
}

func newBotActionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "actions ID",
		Short: "List bot actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			actions, err := client.ListBotActions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "STATUS", "TARGET", "STARTED", "COMPLETED"}
			rows := make([][]string, len(actions))
			for i, a := range actions {
				rows[i] = []string{a.ID, a.Type, a.Status, a.Target, a.StartedAt, a.CompletedAt}
			}

			out.Print(headers, rows, actions)
			return nil
		},
	}
}

func newBotExecCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateBotActionRequest

	cmd := &cobra.Command{
		Use:   "exec ID",
		Short: "Execute an action on a running bot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.CreateBotAction(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Action %s submitted, task %s", resp.Action.ID, resp.Task.TaskID))
			out.Print(
				[]string{"ACTION", "TYPE", "STATUS", "TASK", "QUEUE"},
				[][]string{{resp.Action.ID, resp.Action.Type, resp.Action.Status, resp.Task.TaskID, resp.Task.Queue}},
				resp,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Type, "type", "", "Action type (required)")
	cmd.Flags().StringVar(&req.Target, "target", "", "Action target")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newBotActivitiesCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "activities ID",
		Short: "Show bot activity log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			activities, err := client.ListBotActivities(args[0])
			if err != nil {
				return err
			}

			headers := []string{"TIMESTAMP", "TYPE", "DESCRIPTION"}
			rows := make([][]string, len(activities))
			for i, a := range activities {
				rows[i] = []string{a.Timestamp, a.Type, a.Description}
			}

			out.Print(headers, rows, activities)
			return nil
		},
	}
}
