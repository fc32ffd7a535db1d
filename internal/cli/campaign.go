package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCampaignCmd создаёт группу команд для управления кампаниями.
func NewCampaignCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaign",
		Short: "Manage campaigns",
	}

	cmd.AddCommand(
		newCampaignListCmd(clientFn, outputFn),
		newCampaignCreateCmd(clientFn, outputFn),
		newCampaignShowCmd(clientFn, outputFn),
		newCampaignUpdateCmd(clientFn, outputFn),
		newCampaignDeleteCmd(clientFn, outputFn),
		newCampaignStatusCmd(clientFn, outputFn),
		newCampaignActionsCmd(clientFn, outputFn),
		newCampaignScheduleCmd(clientFn, outputFn),
		newCampaignExecuteCmd(clientFn, outputFn),
		newCampaignMetricsCmd(clientFn, outputFn),
	)

	return cmd
}

var campaignHeaders = []string{"ID", "NAME", "TYPE", "STATUS", "PLATFORMS", "CREATED"}

func campaignRow(c CampaignResponse) []string {
	platforms := ""
	for i, p := range c.Platforms {
		if i > 0 {
			platforms += ","
		}
		platforms += p
	}
	return []string{c.ID, c.Name, c.Type, c.Status, platforms, c.CreatedAt}
}

func newCampaignListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListCampaignsOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			campaigns, err := client.ListCampaigns(opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(campaigns))
			for i, c := range campaigns {
				rows[i] = campaignRow(c)
			}

			out.Print(campaignHeaders, rows, campaigns)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status (draft, active, paused, completed, cancelled)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Filter by type")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newCampaignCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateCampaignRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new campaign",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			campaign, err := client.CreateCampaign(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Campaign created: %s", campaign.ID))
			out.Print(campaignHeaders, [][]string{campaignRow(*campaign)}, campaign)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Campaign name (required)")
	cmd.Flags().StringVar(&req.Type, "type", "", "Campaign type (required)")
	cmd.Flags().StringVar(&req.Description, "description", "", "Campaign description")
	cmd.Flags().StringSliceVar(&req.Platforms, "platforms", nil, "Target platforms")
	cmd.Flags().StringSliceVar(&req.Tags, "tags", nil, "Tags")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newCampaignShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show campaign details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			campaign, err := client.GetCampaign(args[0])
			if err != nil {
				return err
			}

			out.Print(campaignHeaders, [][]string{campaignRow(*campaign)}, campaign)
			return nil
		},
	}
}

func newCampaignUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, description, ctype string
	var budget float64
	var platforms, tags []string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var req UpdateCampaignRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if cmd.Flags().Changed("type") {
				req.Type = &ctype
			}
			if cmd.Flags().Changed("budget") {
				req.Budget = &budget
			}
			if cmd.Flags().Changed("platforms") {
				req.Platforms = &platforms
			}
			if cmd.Flags().Changed("tags") {
				req.Tags = &tags
			}

			campaign, err := client.UpdateCampaign(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Campaign updated: %s", campaign.ID))
			out.Print(campaignHeaders, [][]string{campaignRow(*campaign)}, campaign)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&ctype, "type", "", "New type")
	cmd.Flags().Float64Var(&budget, "budget", 0, "New budget")
	cmd.Flags().StringSliceVar(&platforms, "platforms", nil, "New platform set")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "New tag set")

	return cmd
}

func newCampaignDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a campaign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteCampaign(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Campaign deleted: %s", args[0]))
			return nil
		},
	}
}

func newCampaignStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Set campaign status (active, paused, completed, cancelled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			campaign, err := client.SetCampaignStatus(args[0], args[1])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Campaign %s: %s", campaign.ID, campaign.Status))
			return nil
		},
	}
}

func newCampaignActionsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "actions ID",
		Short: "List campaign actions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			actions, err := client.ListCampaignActions(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "STATUS", "SCHEDULED", "CRON", "PLATFORM", "COMPLETED"}
			rows := make([][]string, len(actions))
			for i, a := range actions {
				rows[i] = []string{a.ID, a.Type, a.Status, a.ScheduledFor, a.RecurCron, a.Platform, a.CompletedAt}
			}

			out.Print(headers, rows, actions)
			return nil
		},
	}
}

func newCampaignScheduleCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req CreateCampaignActionRequest
	var scheduledFor string

	cmd := &cobra.Command{
		Use:   "schedule ID",
		Short: "Schedule a campaign action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if scheduledFor != "" {
				req.ScheduledFor = &scheduledFor
			}

			action, err := client.CreateCampaignAction(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Action created: %s", action.ID))
			out.Print(
				[]string{"ID", "TYPE", "STATUS", "SCHEDULED", "CRON"},
				[][]string{{action.ID, action.Type, action.Status, action.ScheduledFor, action.RecurCron}},
				action,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Type, "type", "", "Action type (required)")
	cmd.Flags().StringVar(&scheduledFor, "at", "", "Schedule time, RFC3339")
	cmd.Flags().StringVar(&req.RecurCron, "cron", "", "Recurrence cron expression")
	cmd.Flags().StringVar(&req.Platform, "platform", "", "Target platform")
	cmd.MarkFlagRequired("type")

	return cmd
}

func newCampaignExecuteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "execute ID ACTION_ID",
		Short: "Execute a pending campaign action now",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.ExecuteCampaignAction(args[0], args[1])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Action %s submitted, task %s", resp.Action.ID, resp.Task.TaskID))
			return nil
		},
	}
}

func newCampaignMetricsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "metrics ID",
		Short: "Show campaign metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if refresh {
				resp, err := client.RefreshCampaignMetrics(args[0])
				if err != nil {
					return err
				}
				out.Success(fmt.Sprintf("Metrics refresh task submitted: %s", resp.TaskID))
				return nil
			}

			metrics, err := client.ListCampaignMetrics(args[0])
			if err != nil {
				return err
			}

			headers := []string{"NAME", "VALUE", "TARGET"}
			rows := make([][]string, len(metrics))
			for i, m := range metrics {
				target := ""
				if m.Target != nil {
					target = strconv.FormatFloat(*m.Target, 'f', -1, 64)
				}
				rows[i] = []string{m.Name, strconv.FormatFloat(m.Value, 'f', -1, 64), target}
			}

			out.Print(headers, rows, metrics)
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Submit a recalculation task instead of listing")

	return cmd
}
