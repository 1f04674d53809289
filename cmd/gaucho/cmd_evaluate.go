package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-gaucho/internal/domain"
)

func (c *cli) evaluateCmd() *cobra.Command {
	var flags struct {
		tags         []string
		imageQuality int
	}
	cmd := &cobra.Command{
		Use:   "evaluate <description>",
		Short: "Score a description against the cultural rubric",
		Long: `Ask independent judges to score the description from 0 to 100 with a
short message. Results are not stored.

  gaucho evaluate "Asado with friends at the river, mate after" --tag food --tag tradition --image-quality 80`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.EvaluationRequest{Description: strings.Join(args, " "), Tags: flags.tags}
			if cmd.Flags().Changed("image-quality") {
				q := flags.imageQuality
				req.ImageQuality = &q
			}

			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()
			svc, done, err := c.service(a)
			if err != nil {
				return err
			}
			defer done()

			res, err := svc.Evaluate(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&flags.tags, "tag", nil, "Reference category (repeatable)")
	f.IntVar(&flags.imageQuality, "image-quality", 0, "Quality of an accompanying image, 0 to 100")
	return cmd
}
