package main

import (
	"github.com/aretw0/sift/internal/cli"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe NAME|FILE",
	Short: "Print the structure of a schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asOpenAPI, _ := cmd.Flags().GetBool("openapi")
		return withSession(options(cmd), func(s *cli.Session) error {
			return cli.RunDescribe(s, args[0], asOpenAPI, cmd.OutOrStdout())
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the schemas of the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(options(cmd), func(s *cli.Session) error {
			return cli.RunList(s, cmd.OutOrStdout())
		})
	},
}

var openapiCmd = &cobra.Command{
	Use:   "openapi",
	Short: "Print the OpenAPI document of the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(options(cmd), func(s *cli.Session) error {
			return cli.RunOpenAPI(s, cmd.OutOrStdout())
		})
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print a Mermaid diagram of the references between schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(options(cmd), func(s *cli.Session) error {
			return cli.RunGraph(s, cmd.OutOrStdout())
		})
	},
}

var pushCmd = &cobra.Command{
	Use:   "push FILE...",
	Short: "Save definition files into the Redis or SQLite store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(options(cmd), func(s *cli.Session) error {
			return cli.RunPush(cmd.Context(), s, args, cmd.OutOrStdout())
		})
	},
}

func init() {
	rootCmd.AddCommand(describeCmd, listCmd, openapiCmd, graphCmd, pushCmd)
	describeCmd.Flags().Bool("openapi", false, "Print an OpenAPI schema object instead")
}
