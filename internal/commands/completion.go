package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/board"
)

// CommentIDCompleter returns a ShellCompleteFunc that suggests the ids of
// the comments on the card named by the command's --card flag.
//
// When the user's last typed argument starts with "-", it falls back to the
// default flag completion behavior.
func CommentIDCompleter(app *board.App) cli.ShellCompleteFunc {
	return func(ctx context.Context, cmd *cli.Command) {
		if args := cmd.Args(); args.Present() {
			last := args.Slice()[args.Len()-1]
			if len(last) > 0 && last[0] == '-' {
				cli.DefaultCompleteWithFlags(ctx, cmd)
				return
			}
		}

		cardID := cmd.Int64("card")
		if cardID <= 0 {
			return
		}

		comments, err := app.Comments.List(ctx, cardID, 0)
		if err != nil {
			return
		}

		w := cmd.Root().Writer
		for _, c := range comments {
			_, _ = fmt.Fprintf(w, "%s:%s\n", strconv.FormatInt(c.ID, 10), c.Author.Nickname)
		}
	}
}
