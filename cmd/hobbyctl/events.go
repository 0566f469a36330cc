package main

import (
	"time"

	"hobbyhub/internal/client/events"

	"github.com/spf13/cobra"
)

func eventsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Browse and attend events",
	}

	var list events.ListParams
	var from, to string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events by start time",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			var err error
			if list.From, err = parseOptionalTime(from); err != nil {
				return err
			}
			if list.To, err = parseOptionalTime(to); err != nil {
				return err
			}
			page, err := a.events.List(cmd.Context(), list)
			if err != nil {
				return err
			}
			return a.print(page)
		}),
	}
	listCmd.Flags().StringVar(&list.HobbyID, "hobby", "", "Only events of this hobby")
	listCmd.Flags().StringVar(&from, "from", "", "Earliest start (RFC3339)")
	listCmd.Flags().StringVar(&to, "to", "", "Latest start (RFC3339)")
	listCmd.Flags().IntVar(&list.Page, "page", 0, "Page number")
	listCmd.Flags().IntVar(&list.Limit, "limit", 0, "Page size")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			event, err := a.events.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(event)
		}),
	}

	var lat, lng, radius, clusterKm float64
	nearbyCmd := &cobra.Command{
		Use:   "nearby",
		Short: "Upcoming events around a location, nearest first",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			found, err := a.events.Nearby(cmd.Context(), lat, lng, radius)
			if err != nil {
				return err
			}
			return a.print(found)
		}),
	}
	clustersCmd := &cobra.Command{
		Use:   "clusters",
		Short: "Nearby events grouped into map markers",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			clusters, err := a.events.Clusters(cmd.Context(), lat, lng, radius, clusterKm)
			if err != nil {
				return err
			}
			return a.print(clusters)
		}),
	}
	for _, c := range []*cobra.Command{nearbyCmd, clustersCmd} {
		c.Flags().Float64Var(&lat, "lat", 0, "Latitude")
		c.Flags().Float64Var(&lng, "lng", 0, "Longitude")
		c.Flags().Float64Var(&radius, "radius", 0, "Search radius in km (server default when 0)")
		_ = c.MarkFlagRequired("lat")
		_ = c.MarkFlagRequired("lng")
	}
	clustersCmd.Flags().Float64Var(&clusterKm, "cluster-km", 1, "Marker cluster radius in km")

	attendCmd := &cobra.Command{
		Use:   "attend <id>",
		Short: "Reserve a seat at an event",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, args []string) error {
			event, err := a.events.Attend(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(event)
		}),
	}

	cmd.AddCommand(listCmd, getCmd, nearbyCmd, clustersCmd, attendCmd)
	return cmd
}

func parseOptionalTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}
