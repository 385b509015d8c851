package commands

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/taskboard/internal/board"
	"github.com/colonyops/taskboard/internal/core/comment"
	"github.com/colonyops/taskboard/internal/core/config"
	"github.com/colonyops/taskboard/internal/mockapi"
	"github.com/colonyops/taskboard/internal/remote"
	"github.com/colonyops/taskboard/pkg/iojson"
)

type commentsHarness struct {
	store  *mockapi.Store
	cmd    *CommentsCmd
	root   *cli.Command
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newCommentsHarness wires the comments command to a mock API holding four
// comments on card 1 (ids 1-4) and two on card 2 (ids 5-6). Comments 1 and 4
// belong to the caller.
func newCommentsHarness(t *testing.T) *commentsHarness {
	t.Helper()

	store := mockapi.NewStore()
	store.Seed(1, 4)
	store.Seed(2, 2)
	srv := httptest.NewServer(mockapi.NewServer(store, mockapi.Options{Logger: zerolog.Nop()}))
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL

	client, err := remote.New(remote.Options{BaseURL: srv.URL, Timeout: cfg.API.Timeout})
	require.NoError(t, err)

	app := board.NewApp(client, &cfg, nil)
	flags := &Flags{Config: &cfg}

	h := &commentsHarness{
		store:  store,
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	h.root = &cli.Command{
		Name:           "taskboard",
		Writer:         h.stdout,
		ErrWriter:      h.stderr,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	h.cmd = NewCommentsCmd(flags, app)
	h.cmd.interactive = func() bool { return true }
	h.cmd.confirm = func(int64) (bool, error) { return true, nil }
	h.cmd.Register(h.root)
	return h
}

func (h *commentsHarness) run(args ...string) error {
	return h.root.Run(context.Background(), append([]string{"taskboard", "comments"}, args...))
}

func TestComments_LsTable(t *testing.T) {
	h := newCommentsHarness(t)

	require.NoError(t, h.run("ls", "--card", "1"))

	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "CARD")
	assert.Contains(t, lines[0], "CONTENT")
	assert.Contains(t, lines[1], "Comment 4 on card 1")
	assert.Contains(t, lines[4], "Comment 1 on card 1")
	assert.Empty(t, h.stderr.String())
}

func TestComments_LsJSONMultipleCards(t *testing.T) {
	h := newCommentsHarness(t)

	require.NoError(t, h.run("ls", "--card", "2", "--card", "1", "--limit", "2", "--json"))

	var got []comment.Comment
	for line := range strings.SplitSeq(strings.TrimSpace(h.stdout.String()), "\n") {
		var c comment.Comment
		require.NoError(t, json.Unmarshal([]byte(line), &c))
		got = append(got, c)
	}

	ids := make([]int64, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int64{6, 5, 4, 3}, ids, "cards print in the order given, newest first")
}

func TestComments_LsEmptyCard(t *testing.T) {
	h := newCommentsHarness(t)

	require.NoError(t, h.run("ls", "--card", "9"))
	assert.Contains(t, h.stderr.String(), "No comments found")
}

func TestComments_Edit(t *testing.T) {
	h := newCommentsHarness(t)

	require.NoError(t, h.run("edit", "1", "rewritten", "text"))
	assert.Equal(t, "updated comment 1\n", h.stdout.String())

	c, ok := h.store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "rewritten text", c.Content)
}

func TestComments_EditInvalidID(t *testing.T) {
	h := newCommentsHarness(t)

	err := h.run("edit", "abc", "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid comment id "abc"`)
}

func TestComments_EditForbidden(t *testing.T) {
	h := newCommentsHarness(t)

	err := h.run("edit", "2", "not mine")
	require.Error(t, err)

	var me *board.MutationError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, board.OpEdit, me.Op)
	assert.Equal(t, int64(2), me.CommentID)
}

func TestComments_EditFailureJSON(t *testing.T) {
	h := newCommentsHarness(t)

	err := h.run("edit", "--json", "2", "not mine")
	require.Error(t, err)

	var exitErr cli.ExitCoder
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode())

	var out iojson.Error
	require.NoError(t, json.Unmarshal(h.stderr.Bytes(), &out))
	assert.Contains(t, out.Message, "only the author can edit")
	assert.Equal(t, string(board.OpEdit), out.Data["op"])
	assert.InDelta(t, 2, out.Data["comment_id"], 0)
}

func TestComments_RmYes(t *testing.T) {
	h := newCommentsHarness(t)
	h.cmd.confirm = func(int64) (bool, error) {
		t.Fatal("confirm should not be called with --yes")
		return false, nil
	}

	require.NoError(t, h.run("rm", "--yes", "4"))
	assert.Equal(t, "deleted comment 4\n", h.stdout.String())

	_, ok := h.store.Get(4)
	assert.False(t, ok)
}

func TestComments_RmNonInteractive(t *testing.T) {
	h := newCommentsHarness(t)
	h.cmd.interactive = func() bool { return false }

	err := h.run("rm", "4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "without --yes")

	_, ok := h.store.Get(4)
	assert.True(t, ok)
}

func TestComments_RmDeclined(t *testing.T) {
	h := newCommentsHarness(t)
	var asked int64
	h.cmd.confirm = func(id int64) (bool, error) {
		asked = id
		return false, nil
	}

	require.NoError(t, h.run("rm", "4"))
	assert.Equal(t, int64(4), asked)
	assert.Contains(t, h.stderr.String(), "Delete cancelled")

	_, ok := h.store.Get(4)
	assert.True(t, ok)
}

func TestComments_RmConfirmed(t *testing.T) {
	h := newCommentsHarness(t)

	require.NoError(t, h.run("rm", "1"))

	_, ok := h.store.Get(1)
	assert.False(t, ok)
}

func TestComments_PostArgs(t *testing.T) {
	h := newCommentsHarness(t)

	require.NoError(t, h.run("post", "--card", "2", "--column", "3", "--dashboard", "4", "looks", "good"))
	assert.Equal(t, "posted comment 7\n", h.stdout.String())

	c, ok := h.store.Get(7)
	require.True(t, ok)
	assert.Equal(t, int64(2), c.CardID)
	assert.Equal(t, "looks good", c.Content)
}

func TestComments_PostJSONFromStdin(t *testing.T) {
	h := newCommentsHarness(t)
	h.cmd.input.SetStdin(strings.NewReader(`{"cardId":1,"columnId":1,"dashboardId":1,"content":"  from stdin  "}`))

	require.NoError(t, h.run("post", "--json"))

	var c comment.Comment
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &c))
	assert.Equal(t, "from stdin", c.Content)
	assert.Equal(t, int64(1), c.CardID)
}

func TestComments_PostBlank(t *testing.T) {
	h := newCommentsHarness(t)

	err := h.run("post", "--card", "1", "--column", "1", "--dashboard", "1", "   ")
	require.Error(t, err)
	assert.Equal(t, 0, h.stdout.Len())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "one two three", summarize("one\n  two\tthree\n"))

	long := strings.Repeat("x", contentColumnWidth+10)
	got := summarize(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len([]rune(got)), contentColumnWidth)
}
