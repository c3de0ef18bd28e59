package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shubh-37/prosora/internal/frameworks"
	"github.com/shubh-37/prosora/internal/intelligence"
	"github.com/shubh-37/prosora/internal/models"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Print the domain and insight candidates detected in text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "domain: %s\n", intelligence.Classify(text))
		for _, insight := range intelligence.ExtractInsights(text, "") {
			fmt.Fprintf(out, "- [%s] %s (%.1f)\n", insight.Type, insight.Content, insight.Confidence)
		}
		return nil
	},
}

var frameworksCmd = &cobra.Command{
	Use:   "frameworks [category]",
	Short: "List brainstorming frameworks, optionally for one category",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := frameworks.Default()
		templates := catalog.All()
		if len(args) == 1 {
			templates = catalog.ByCategory(models.FrameworkCategory(args[0]))
			if len(templates) == 0 {
				return fmt.Errorf("no frameworks in category %q", args[0])
			}
		}
		for _, t := range templates {
			fmt.Fprintln(cmd.OutOrStdout(), renderFramework(t))
		}
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <text>",
	Short: "Suggest a framework for a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")

		domain := intelligence.Classify(text)
		if raw, _ := cmd.Flags().GetString("domain"); raw != "" {
			domain = models.Domain(raw)
		}

		t, ok := frameworks.Default().Suggest(text, domain)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no framework matches")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderFramework(t))
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), t.Template)
		return nil
	},
}

func init() {
	suggestCmd.Flags().String("domain", "", "domain used for routing (default: classified from text)")
}
