package main

import (
	"github.com/spf13/cobra"

	"github.com/ahrav/go-gaucho/internal/domain"
)

func (c *cli) analyzeCmd() *cobra.Command {
	var flags struct {
		defense string
		caller  string
	}
	cmd := &cobra.Command{
		Use:   "analyze <image-url>",
		Short: "Analyze an image and store the agreed verdict",
		Long: `Render the image, have independent judges analyze and score it, and
append the agreed verdict to its category log. Prints where it was stored.

If the image cannot be fetched the analysis still completes and the record
lands in easter_eggs with an explanation of the failure.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var caller domain.Address
			if flags.caller != "" {
				addr, err := domain.ParseAddress(flags.caller)
				if err != nil {
					return err
				}
				caller = addr
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

			ref, err := svc.AnalyzeImage(cmd.Context(), domain.AnalyzeRequest{Caller: caller, URL: args[0], Defense: flags.defense})
			if err != nil {
				return err
			}
			return c.print(ref)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.defense, "defense", "", "Justification that may nudge the score")
	f.StringVar(&flags.caller, "caller", "", "Caller address as hex (default: zero address)")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var flags struct {
		start int
		count int
	}
	cmd := &cobra.Command{
		Use:   "list <category>",
		Short: "Print a page of stored analyses for a category",
		Long: `Categories: steak, veggies, mate, gaucho, futbol, easter_eggs.
Unknown categories read easter_eggs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.setup(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			page, err := a.Local().GetAnalysisByCategory(cmd.Context(), args[0], flags.start, flags.count)
			if err != nil {
				return err
			}
			return c.print(page)
		},
	}
	f := cmd.Flags()
	f.IntVar(&flags.start, "start", 0, "First index to return")
	f.IntVar(&flags.count, "count", domain.DefaultPageSize, "Number of records to return")
	return cmd
}
