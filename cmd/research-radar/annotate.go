// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-radar/internal/session"
)

// toggleCmd builds a subcommand that flips one annotation flag.
func toggleCmd(use, short string, toggle func(*session.Session, context.Context, string) (session.Snapshot, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return annotateAndReport(cmd.Context(), args[0], func(ctx context.Context, s *session.Session) error {
				_, err := toggle(s, ctx, args[0])
				return err
			})
		},
	}
}

var scoreCmd = &cobra.Command{
	Use:   "score <id> <1-5>",
	Short: "Rate an item from 1 to 5",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("score must be a number from 1 to 5: %w", err)
		}
		return annotateAndReport(cmd.Context(), args[0], func(ctx context.Context, s *session.Session) error {
			_, err := s.SetUserScore(ctx, args[0], score)
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(
		toggleCmd("star", "Star or unstar an item", (*session.Session).ToggleStar),
		toggleCmd("interest", "Mark or unmark an item as interesting", (*session.Session).ToggleInterest),
		toggleCmd("read", "Mark an item read or unread", (*session.Session).ToggleRead),
		scoreCmd,
	)
}

// annotateAndReport opens the library and runs applyAnnotation on stdout.
func annotateAndReport(ctx context.Context, id string, fn func(context.Context, *session.Session) error) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return applyAnnotation(ctx, os.Stdout, a.session, id, fn)
}

// applyAnnotation loads the library, applies fn to id and prints the item's
// resulting annotation state. It refuses to run on the sample data shown when
// the store cannot be read, since nothing would be saved.
func applyAnnotation(ctx context.Context, w io.Writer, s *session.Session, id string, fn func(context.Context, *session.Session) error) error {
	if snap := s.Load(ctx); snap.Notice == session.NoticeStoreUnavailable {
		return fmt.Errorf("library store is unavailable; %s was not changed", id)
	}
	if _, ok := s.Entity(id); !ok {
		return fmt.Errorf("no item with id %q", id)
	}
	if err := fn(ctx, s); err != nil {
		return err
	}

	e, _ := s.Entity(id)
	score := "-"
	if e.UserScore != nil {
		score = strconv.Itoa(*e.UserScore)
	}
	fmt.Fprintf(w, "%s  starred=%t interested=%t read=%t score=%s\n",
		e.ID, e.IsStarred, e.IsInterested, e.IsRead, score)
	return nil
}
