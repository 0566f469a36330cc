package main

import (
	"hobbyhub/internal/client/hobbies"
	"hobbyhub/internal/models"

	"github.com/spf13/cobra"
)

func hobbiesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hobbies",
		Short: "Browse and manage hobbies",
	}

	var list hobbies.ListParams
	var category string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List hobbies",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			list.Category = models.HobbyCategory(category)
			page, err := a.hobbies.List(cmd.Context(), list)
			if err != nil {
				return err
			}
			return a.print(page)
		}),
	}
	listCmd.Flags().StringVar(&category, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&list.Search, "search", "", "Name contains")
	listCmd.Flags().IntVar(&list.Page, "page", 0, "Page number")
	listCmd.Flags().IntVar(&list.Limit, "limit", 0, "Page size")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one hobby",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			hobby, err := a.hobbies.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(hobby)
		}),
	}

	var create hobbies.CreateInput
	var createCategory string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a hobby; you become its owner",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			create.Name = args[0]
			create.Category = models.HobbyCategory(createCategory)
			hobby, err := a.hobbies.Create(cmd.Context(), create)
			if err != nil {
				return err
			}
			return a.print(hobby)
		}),
	}
	createCmd.Flags().StringVar(&create.Description, "description", "", "Description")
	createCmd.Flags().StringVar(&createCategory, "category", "", "Category (outdoor, arts, music, sports, games, crafts, food, tech, other)")
	createCmd.Flags().StringVar(&create.ImageURL, "image-url", "", "Cover image URL")

	joinCmd := &cobra.Command{
		Use:   "join <id>",
		Short: "Join a hobby",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			hobby, err := a.hobbies.Join(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(hobby)
		}),
	}

	leaveCmd := &cobra.Command{
		Use:   "leave <id>",
		Short: "Leave a hobby",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			hobby, err := a.hobbies.Leave(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(hobby)
		}),
	}

	cmd.AddCommand(listCmd, getCmd, createCmd, joinCmd, leaveCmd)
	return cmd
}
