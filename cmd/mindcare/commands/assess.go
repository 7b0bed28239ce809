package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-mindcare-client/assessment"
	"github.com/spf13/cobra"
)

func (c *cli) newAssessCommand() *cobra.Command {
	var answers []int

	cmd := &cobra.Command{
		Use:   "assess [phq9|gad7|pss10]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Take a self-assessment",
		Long: `Without an argument the available questionnaires are listed. Answers are
given with --answers as comma separated values 0-3 in question order, or
typed one per line when the flag is omitted.`,
		Example: "  mindcare assess phq9 --answers 1,1,2,0,1,0,0,1,0",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.session(cmd, true); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, def := range assessment.Definitions() {
					fmt.Fprintf(out, "%-6s %s (%d questions)\n", def.ID, def.Title, def.Len())
				}
				return nil
			}

			id, err := assessment.ParseID(args[0])
			if err != nil {
				return fmt.Errorf("unknown assessment %q", args[0])
			}
			resp, err := assessment.NewResponse(id)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("answers") {
				err = selectAll(resp, answers)
			} else {
				err = askAll(out, bufio.NewReader(cmd.InOrStdin()), resp)
			}
			if err != nil {
				return err
			}

			result, err := resp.Submit()
			if err != nil {
				return fmt.Errorf("please answer all %d questions before submitting", resp.Definition().Len())
			}
			printResult(out, resp.Definition(), result)
			return nil
		},
	}

	cmd.Flags().IntSliceVarP(&answers, "answers", "a", nil, "answers 0-3 in question order")
	return cmd
}

func selectAll(resp *assessment.Response, answers []int) error {
	for i, v := range answers {
		if err := resp.Select(i, v); err != nil {
			return fmt.Errorf("question %d has an invalid answer", i+1)
		}
	}
	return nil
}

// askAll asks every question in turn and repeats a question until it gets a
// valid answer. Input ending early leaves the rest unanswered.
func askAll(out io.Writer, in *bufio.Reader, resp *assessment.Response) error {
	def := resp.Definition()
	fmt.Fprintf(out, "%s\n%s\n\n", def.Title, def.Description)
	for i, label := range def.ScaleLabels {
		fmt.Fprintf(out, "  %d = %s\n", i, label)
	}

	for i, q := range def.Questions {
		for {
			fmt.Fprintf(out, "\n%d/%d %s\n> ", i+1, def.Len(), q)
			line, err := in.ReadString('\n')
			if line == "" && err != nil {
				fmt.Fprintln(out)
				return nil
			}
			v, convErr := strconv.Atoi(strings.TrimSpace(line))
			if convErr == nil && resp.Select(i, v) == nil {
				break
			}
			fmt.Fprintf(out, "Please enter a number from 0 to %d\n", assessment.MaxAnswer)
			if err != nil {
				return nil
			}
		}
	}
	fmt.Fprintln(out)
	return nil
}

func printResult(out io.Writer, def assessment.Definition, result assessment.Result) {
	fmt.Fprintf(out, "%s\n", def.Title)
	fmt.Fprintf(out, "Score:    %d / %d\n", result.Total, result.MaxScore)
	fmt.Fprintf(out, "Severity: %s\n", result.Band)
	fmt.Fprintf(out, "%s\n\n%s\n", result.Interpretation, result.Disclaimer)
}
