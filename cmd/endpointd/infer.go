package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"endpointd/internal/inference"
)

func newInferCmd(a *app) *cobra.Command {
	var query, ctxText, prompt string
	cmd := &cobra.Command{
		Use:     "infer",
		Short:   "Send one query to the deployed endpoint and print the answer",
		Example: "  endpointd infer --query \"Write a post about RAG\" --context \"$(cat notes.txt)\"",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(query) == "" {
				return errors.New("--query is required")
			}
			ctx := cmd.Context()
			factory, err := inference.NewFactory(ctx, a.cfg)
			if err != nil {
				return err
			}
			pipeline := inference.NewPipeline(factory, inference.NewExecutorFromConfig(a.cfg))
			answer, err := pipeline.AnswerWithTemplate(ctx, query, ctxText, prompt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}
	cmd.Flags().StringVar(&query, "query", "", "Question to answer (required)")
	cmd.Flags().StringVar(&ctxText, "context", "", "Supporting context for the answer")
	cmd.Flags().StringVar(&prompt, "prompt-template", "", "Go text/template using {{.Query}} and {{.Context}}; defaults to the content-creator prompt")
	return cmd
}
