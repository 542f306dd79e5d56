package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"igloader/pkg/models"
	"igloader/pkg/search"
	"igloader/pkg/session"
	"igloader/pkg/ui"
)

type lookupOptions struct {
	Pages      int
	All        bool
	Zip        bool
	Download   bool
	Highlights bool
}

var (
	searchMode string
	lookupOpts lookupOptions
)

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Look up a term in an explicit mode",
	Long: `Look up a term without guessing what it is.

Without --mode the term is classified the same way the default command does:
a leading @ means a profile, a link containing "highlights/" is a highlight
and anything else is a post link or shortcode.`,
	Example: `  igloader search --mode profile nasa
  igloader search --mode post https://www.instagram.com/p/Cx1abc/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchMode == "" {
			q := search.Classify(args[0])
			return runLookup(cmd, q.Mode, q.Term, lookupOpts)
		}
		mode, err := search.ParseMode(searchMode)
		if err != nil {
			return err
		}
		return runLookup(cmd, mode, args[0], lookupOpts)
	},
}

var postCmd = &cobra.Command{
	Use:   "post <url>",
	Short: "Show a single post",
	Example: `  igloader post https://www.instagram.com/p/Cx1abc/
  igloader post Cx1abc --download`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, search.ModePost, args[0], lookupOpts)
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile <username>",
	Short: "Show a profile and page through its posts",
	Long: `Show a profile and its first page of posts.

The backend collects a profile's posts in a background job. The first page is
shown as soon as the job has produced it; --pages and --all keep fetching
pages as they become available. --zip waits for the job to finish and saves
every post as {username}_posts.zip.`,
	Example: `  igloader profile nasa
  igloader profile @nasa --pages 3
  igloader profile nasa --all --download
  igloader profile nasa --zip`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, search.ModeProfile, args[0], lookupOpts)
	},
}

var highlightCmd = &cobra.Command{
	Use:     "highlight <url>",
	Short:   "Show a highlight reel",
	Example: `  igloader highlight https://www.instagram.com/stories/highlights/17900000000000000/ --download`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLookup(cmd, search.ModeHighlight, args[0], lookupOpts)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd, postCmd, profileCmd, highlightCmd)

	searchCmd.Flags().StringVarP(&searchMode, "mode", "m", "", "search mode (post, profile, highlight)")

	for _, cmd := range []*cobra.Command{rootCmd, searchCmd, postCmd, profileCmd, highlightCmd} {
		cmd.Flags().BoolVarP(&lookupOpts.Download, "download", "d", false, "download the media that was found")
	}
	for _, cmd := range []*cobra.Command{rootCmd, searchCmd, profileCmd} {
		cmd.Flags().IntVar(&lookupOpts.Pages, "pages", 1, "number of post pages to fetch")
		cmd.Flags().BoolVar(&lookupOpts.All, "all", false, "fetch every page")
		cmd.Flags().BoolVar(&lookupOpts.Zip, "zip", false, "save all posts as a ZIP once the backend has them")
		cmd.Flags().BoolVar(&lookupOpts.Highlights, "highlights", false, "wait for and list the profile's highlights")
	}
}

// runLookup runs one search and the follow-up work its flags ask for
func runLookup(cmd *cobra.Command, mode search.Mode, term string, opts lookupOptions) error {
	ctx := cmd.Context()

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	q := search.Query{Mode: mode, Term: term}
	if !quiet {
		ui.PrintInfo("Looking up", q.Display())
	}
	if err := a.session.Search(ctx, mode, term); err != nil {
		return err
	}

	st := a.session.State()
	switch r := st.Result.(type) {
	case *session.PostResult:
		ui.RenderPost(ui.Output, r.Post)
		if opts.Download {
			return downloadPosts(ctx, a, []models.Post{r.Post}, "post "+r.Post.Shortcode)
		}
	case *session.HighlightResult:
		ui.RenderHighlight(ui.Output, r.Highlight)
		if opts.Download {
			progress := ui.NewProgressDisplay("highlight "+r.Highlight.Title, len(r.Highlight.Items), verbose)
			summary, err := a.downloadHighlight(ctx, r.Highlight, progress.Track)
			progress.Complete(summary)
			return err
		}
	case *session.ProfileResult:
		ui.RenderProfile(ui.Output, r.Profile)
		return runProfile(ctx, a, r, opts)
	}
	return nil
}

func runProfile(ctx context.Context, a *app, r *session.ProfileResult, opts lookupOptions) error {
	username := r.Profile.Username

	st, err := a.session.WaitFor(ctx, func(s session.State) bool { return !s.InitialPostsLoading })
	if err != nil {
		return err
	}
	if st.Error != "" {
		ui.PrintWarning(st.Error)
	}
	ui.RenderGrid(ui.Output, st.Posts, 0)

	if opts.All {
		st, err = loadAllPages(ctx, a, len(st.Posts))
	} else {
		st, err = loadPages(ctx, a, opts.Pages-1, len(st.Posts))
	}
	if err != nil {
		return err
	}
	if !st.HasMore() && st.Phase == session.PhaseSuccess {
		ui.PrintInfo("Posts", fmt.Sprintf("%s loaded, no more pages", humanize.Comma(int64(len(st.Posts)))))
	}

	if opts.Download && len(st.Posts) > 0 {
		label := fmt.Sprintf("%d posts of @%s", len(st.Posts), username)
		if err := downloadPosts(ctx, a, st.Posts, label); err != nil {
			return err
		}
	}

	if opts.Highlights && r.HighlightsTaskID != "" {
		st, err = a.session.WaitFor(ctx, func(s session.State) bool {
			return len(s.Highlights) > 0 || !s.FetchingHighlights
		})
		if err != nil {
			return err
		}
		if len(st.Highlights) == 0 {
			ui.PrintInfo("Highlights", "none")
		} else {
			ui.PrintHighlight(fmt.Sprintf("Highlights (%d)", len(st.Highlights)))
			ui.RenderHighlightList(ui.Output, st.Highlights)
		}
	}

	if opts.Zip {
		return exportArchive(ctx, a, username)
	}
	return nil
}

// loadPages fetches up to n further pages and prints the new grid rows
func loadPages(ctx context.Context, a *app, n, shown int) (session.State, error) {
	st := a.session.State()
	for loaded := 0; loaded < n && st.HasMore(); {
		if err := a.session.LoadMore(ctx); err != nil {
			if ctx.Err() != nil {
				return st, ctx.Err()
			}
			ui.PrintWarning(a.session.State().LoadMoreError)
			return a.session.State(), nil
		}

		var err error
		st, err = a.session.WaitFor(ctx, func(s session.State) bool { return !s.FetchingMore })
		if err != nil {
			return st, err
		}
		if len(st.Posts) > shown {
			ui.RenderGrid(ui.Output, st.Posts[shown:], shown)
			shown = len(st.Posts)
			loaded++
		} else if st.TaskStatus == models.TaskFailure {
			ui.PrintWarning("The backend stopped collecting posts")
			break
		}
	}
	return st, nil
}

// loadAllPages keeps the end of the grid permanently visible so the session
// fetches page after page until the cursor runs out
func loadAllPages(ctx context.Context, a *app, shown int) (session.State, error) {
	cancel := a.session.Subscribe(func(s session.State) {
		if !quiet && s.FetchingMore {
			fmt.Fprintf(ui.Output, "\r%s posts loaded…", humanize.Comma(int64(len(s.Posts))))
		}
	})
	defer cancel()

	a.session.BindVisibility(session.AlwaysVisible{})
	defer a.session.BindVisibility(nil)

	st, err := a.session.WaitFor(ctx, func(s session.State) bool {
		return s.LoadMoreError != "" || (!s.HasMore() && !s.FetchingMore)
	})
	if err != nil {
		return st, err
	}
	fmt.Fprintln(ui.Output)

	if len(st.Posts) > shown {
		ui.RenderGrid(ui.Output, st.Posts[shown:], shown)
	}
	if st.LoadMoreError != "" {
		ui.PrintWarning(st.LoadMoreError)
	}
	return st, nil
}

func downloadPosts(ctx context.Context, a *app, posts []models.Post, label string) error {
	total := 0
	for _, p := range posts {
		total += len(p.Media)
	}
	progress := ui.NewProgressDisplay(label, total, verbose)
	summary, err := a.downloadPosts(ctx, posts, progress.Track)
	progress.Complete(summary)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		ui.PrintWarning(fmt.Sprintf("%d files could not be saved", summary.Failed))
	}
	return nil
}

// exportArchive waits for the posts job and saves its ZIP
func exportArchive(ctx context.Context, a *app, username string) error {
	if !quiet {
		ui.PrintInfo("Archive", "waiting for the backend to collect every post")
	}
	st, err := a.session.WaitFor(ctx, func(s session.State) bool { return s.TaskStatus.IsTerminal() })
	if err != nil {
		return err
	}
	if st.TaskStatus == models.TaskFailure {
		return errors.New("the backend could not collect the profile's posts")
	}

	path, size, err := a.ExportArchive(ctx, username)
	if err != nil {
		return fmt.Errorf("failed to export archive: %w", err)
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s (%s)", path, humanize.Bytes(uint64(size))))
	return nil
}
