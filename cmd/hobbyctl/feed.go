package main

import (
	"context"
	"time"

	"hobbyhub/internal/client/events"
	"hobbyhub/internal/client/hobbies"
	"hobbyhub/internal/client/realtime"
	"hobbyhub/internal/client/storage"
	"hobbyhub/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// feed is the home screen: popular hobbies plus the next events, fetched together.
type feed struct {
	Hobbies []models.Hobby `json:"hobbies"`
	Events  []models.Event `json:"events"`
}

func loadFeed(ctx context.Context, a *app, limit int) (*feed, error) {
	var out feed
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := a.hobbies.List(ctx, hobbies.ListParams{Limit: limit})
		if err != nil {
			return err
		}
		out.Hobbies = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := a.events.List(ctx, events.ListParams{From: time.Now(), Limit: limit})
		if err != nil {
			return err
		}
		out.Events = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func feedCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Popular hobbies and upcoming events",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			f, err := loadFeed(cmd.Context(), a, limit)
			if err != nil {
				return err
			}
			return a.print(f)
		}),
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Items per section")
	return cmd
}

func watchCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Stream live notifications until interrupted",
		RunE: withApp(flags, func(cmd *cobra.Command, a *app, _ []string) error {
			ctx := cmd.Context()
			creds, err := storage.LoadCredentials(ctx, a.client.Store())
			if err != nil {
				return err
			}
			if creds.AccessToken == "" {
				return errNotLoggedIn
			}
			// validates, and refreshes if needed, the stored token before dialing
			if user, err := a.auth.GetCurrentUser(ctx); err != nil {
				return err
			} else if user == nil {
				return errNotLoggedIn
			}
			if creds, err = storage.LoadCredentials(ctx, a.client.Store()); err != nil {
				return err
			}

			wsURL, err := realtime.SocketURL(a.client.BaseURL())
			if err != nil {
				return err
			}
			sub, err := realtime.Dial(ctx, wsURL, creds.AccessToken)
			if err != nil {
				return err
			}
			defer sub.Close()
			a.log.Info("watching for notifications", "url", wsURL)

			for n := range sub.Messages() {
				if err := a.print(n); err != nil {
					return err
				}
			}
			if ctx.Err() != nil {
				return nil
			}
			return sub.Err()
		}),
	}
}
