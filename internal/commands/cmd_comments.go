package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/ansi"
	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/jsoncolor"
	"github.com/colonyops/taskboard/pkg/iojson"
)

const contentColumnWidth = 60

type CommentsCmd struct {
	flags *Flags
	app   *board.App

	// flags
	cards       []int64
	cardID      int64
	columnID    int64
	dashboardID int64
	limit       int
	jsonOutput  bool
	yes         bool
	input       iojson.FileReader[comment.NewComment]

	// confirm asks before deleting. Replaced in tests.
	confirm func(id int64) (bool, error)
	// interactive reports whether prompts can be shown.
	interactive func() bool
}

// NewCommentsCmd creates a new comments command
func NewCommentsCmd(flags *Flags, app *board.App) *CommentsCmd {
	return &CommentsCmd{
		flags:       flags,
		app:         app,
		confirm:     confirmDelete,
		interactive: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	}
}

// Register adds the comments command to the application
func (cmd *CommentsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:    "comments",
		Aliases: []string{"c"},
		Usage:   "List and change the comments on a card",
		Commands: []*cli.Command{
			cmd.lsCmd(),
			cmd.editCmd(),
			cmd.rmCmd(),
			cmd.postCmd(),
		},
	})

	return app
}

func (cmd *CommentsCmd) lsCmd() *cli.Command {
	return &cli.Command{
		Name:      "ls",
		Usage:     "List comments, newest first",
		UsageText: "taskboard comments ls --card <id> [--card <id>...] [--limit n] [--json]",
		Description: `Lists the comments on one or more cards. Cards are fetched concurrently
and printed in the order given.

Use --json for one JSON object per comment.`,
		Flags: []cli.Flag{
			&cli.Int64SliceFlag{
				Name:     "card",
				Usage:    "card id (repeatable)",
				Required: true,
			},
			&cli.IntFlag{
				Name:        "limit",
				Usage:       "maximum comments per card (default comments.fetch_size)",
				Destination: &cmd.limit,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.runLs,
	}
}

func (cmd *CommentsCmd) editCmd() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Replace a comment's content",
		UsageText: "taskboard comments edit <comment-id> <content...>",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "card",
				Usage:       "card id, used for completion",
				Destination: &cmd.cardID,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the updated comment as JSON",
				Destination: &cmd.jsonOutput,
			},
		},
		ShellComplete: CommentIDCompleter(cmd.app),
		Action:        cmd.runEdit,
	}
}

func (cmd *CommentsCmd) rmCmd() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a comment",
		UsageText: "taskboard comments rm <comment-id> [--yes]",
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:        "card",
				Usage:       "card id, used for completion",
				Destination: &cmd.cardID,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "delete without asking",
				Destination: &cmd.yes,
			},
		},
		ShellComplete: CommentIDCompleter(cmd.app),
		Action:        cmd.runRm,
	}
}

func (cmd *CommentsCmd) postCmd() *cli.Command {
	return &cli.Command{
		Name:      "post",
		Usage:     "Add a comment to a card",
		UsageText: "taskboard comments post --card <id> --column <id> --dashboard <id> <content...>\n   taskboard comments post -f comment.json",
		Description: `Posts a comment. The comment can be given with flags and arguments, or as
a JSON object {"cardId","columnId","dashboardId","content"} read from --file
or stdin.`,
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "card", Usage: "card id", Destination: &cmd.cardID},
			&cli.Int64Flag{Name: "column", Usage: "column id", Destination: &cmd.columnID},
			&cli.Int64Flag{Name: "dashboard", Usage: "dashboard id", Destination: &cmd.dashboardID},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the created comment as JSON",
				Destination: &cmd.jsonOutput,
			},
			cmd.input.Flag(),
		},
		Action: cmd.runPost,
	}
}

func (cmd *CommentsCmd) runLs(ctx context.Context, c *cli.Command) error {
	cards := c.Int64Slice("card")

	results := make([][]comment.Comment, len(cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, cardID := range cards {
		g.Go(func() error {
			comments, err := cmd.app.Comments.List(gctx, cardID, cmd.limit)
			if err != nil {
				return fmt.Errorf("list comments for card %d: %w", cardID, err)
			}
			results[i] = comments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cmd.fail(c, err)
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, comments := range results {
			for _, cm := range comments {
				if err := writeJSONLine(out, cm); err != nil {
					return fmt.Errorf("encode comment: %w", err)
				}
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CARD\tID\tAUTHOR\tCREATED\tCONTENT")
	var total int
	for _, comments := range results {
		for _, cm := range comments {
			total++
			_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
				cm.CardID,
				cm.ID,
				cm.Author.Nickname,
				cm.CreatedAt.Local().Format(comment.TimestampLayout),
				summarize(cm.Content),
			)
		}
	}
	_ = w.Flush()

	if total == 0 {
		_, _ = fmt.Fprintln(c.Root().ErrWriter, "No comments found")
	}
	return nil
}

func (cmd *CommentsCmd) runEdit(ctx context.Context, c *cli.Command) error {
	id, err := commentIDArg(c)
	if err != nil {
		return err
	}

	content := strings.Join(c.Args().Tail(), " ")
	updated, err := cmd.app.Comments.Edit(ctx, id, content)
	if err != nil {
		return cmd.fail(c, err)
	}

	if cmd.jsonOutput {
		return writeJSONLine(c.Root().Writer, updated)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "updated comment %d\n", updated.ID)
	return nil
}

func (cmd *CommentsCmd) runRm(ctx context.Context, c *cli.Command) error {
	id, err := commentIDArg(c)
	if err != nil {
		return err
	}

	if !cmd.yes {
		if !cmd.interactive() {
			return fmt.Errorf("refusing to delete comment %d without --yes: stdin is not a terminal", id)
		}
		ok, err := cmd.confirm(id)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintln(c.Root().ErrWriter, "Delete cancelled")
			return nil
		}
	}

	if err := cmd.app.Comments.Delete(ctx, id); err != nil {
		return cmd.fail(c, err)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "deleted comment %d\n", id)
	return nil
}

func (cmd *CommentsCmd) runPost(ctx context.Context, c *cli.Command) error {
	in := comment.NewComment{
		CardID:      cmd.cardID,
		ColumnID:    cmd.columnID,
		DashboardID: cmd.dashboardID,
		Content:     strings.Join(c.Args().Slice(), " "),
	}
	if c.Args().Len() == 0 {
		read, err := cmd.input.Read()
		if err != nil {
			return err
		}
		in = read
	}

	created, err := cmd.app.Comments.Post(ctx, in)
	if err != nil {
		return cmd.fail(c, err)
	}

	if cmd.jsonOutput {
		return writeJSONLine(c.Root().Writer, created)
	}
	_, _ = fmt.Fprintf(c.Root().Writer, "posted comment %d\n", created.ID)
	return nil
}

// fail reports err. In JSON mode it is also written to stderr as a JSON
// object so scripts can parse it.
func (cmd *CommentsCmd) fail(c *cli.Command, err error) error {
	if !cmd.jsonOutput {
		return err
	}

	data := map[string]any{}
	var me *board.MutationError
	if errors.As(err, &me) {
		data["op"] = me.Op
		if me.CommentID != 0 {
			data["comment_id"] = me.CommentID
		}
	}
	var fe *board.FetchError
	if errors.As(err, &fe) {
		data["card_id"] = fe.CardID
	}
	_ = iojson.WriteError(c.Root().ErrWriter, err.Error(), data)
	return cli.Exit("", 1)
}

func commentIDArg(c *cli.Command) (int64, error) {
	if c.Args().Len() == 0 {
		return 0, fmt.Errorf("comment id is required")
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid comment id %q", c.Args().First())
	}
	return id, nil
}

// writeJSONLine writes obj as one line of JSON, colored when w is a terminal.
func writeJSONLine(w io.Writer, obj any) error {
	if !isTerminal(w) {
		return iojson.WriteLine(w, obj)
	}
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	_, err = fmt.Fprintln(w, jsoncolor.ColorizeLine(bits))
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// summarize flattens content to one line that fits the table.
func summarize(content string) string {
	line := strings.Join(strings.Fields(content), " ")
	return ansi.Truncate(line, contentColumnWidth, "…")
}

func confirmDelete(id int64) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Delete comment %d?", id)).
		Description("This cannot be undone.").
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		Run()
	return ok, err
}
