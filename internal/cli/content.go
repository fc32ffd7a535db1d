package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewContentCmd создаёт группу команд для управления контентом.
func NewContentCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "content",
		Short: "Manage content",
	}

	cmd.AddCommand(
		newContentListCmd(clientFn, outputFn),
		newContentShowCmd(clientFn, outputFn),
		newContentDeleteCmd(clientFn, outputFn),
		newContentGenerateCmd(clientFn, outputFn),
	)

	return cmd
}

var contentHeaders = []string{"ID", "TYPE", "TITLE", "STATUS", "PLATFORM", "CREATED"}

func contentRow(c ContentResponse) []string {
	return []string{c.ID, c.Type, c.Title, c.Metadata.Status, c.Platform, c.CreatedAt}
}

func newContentListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var opts ListContentOpts

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			contents, err := client.ListContent(opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(contents))
			for i, c := range contents {
				rows[i] = contentRow(c)
			}

			out.Print(contentHeaders, rows, contents)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Type, "type", "", "Filter by type (text, image, audio)")
	cmd.Flags().StringVar(&opts.CampaignID, "campaign", "", "Filter by campaign ID")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newContentShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show content details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			content, err := client.GetContent(args[0])
			if err != nil {
				return err
			}

			out.Print(contentHeaders, [][]string{contentRow(*content)}, content)
			return nil
		},
	}
}

func newContentDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteContent(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Content deleted: %s", args[0]))
			return nil
		},
	}
}

func newContentGenerateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var req GenerateContentRequest

	cmd := &cobra.Command{
		Use:   "generate TYPE",
		Short: "Generate content (text, image or audio)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			resp, err := client.GenerateContent(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Generation submitted: content %s, task %s", resp.Content.ID, resp.Task.TaskID))
			out.Print(
				[]string{"CONTENT", "TYPE", "STATUS", "TASK", "QUEUE"},
				[][]string{{resp.Content.ID, resp.Content.Type, resp.Content.Metadata.Status, resp.Task.TaskID, resp.Task.Queue}},
				resp,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Prompt, "prompt", "", "Generation prompt (required)")
	cmd.Flags().StringVar(&req.Platform, "platform", "", "Target platform")
	cmd.Flags().StringVar(&req.CampaignID, "campaign", "", "Attach to campaign ID")
	cmd.MarkFlagRequired("prompt")

	return cmd
}
