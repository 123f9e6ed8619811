package command

// recipe.go holds the browsing commands: search, show, suggest, favorite.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/sakif/recipe-share/internal/client"
	"github.com/sakif/recipe-share/internal/model"
)

type searchFlags struct {
	category    string
	cuisine     string
	difficulty  string
	maxTime     int
	ingredients []string
	with        []string
	interactive bool
}

func (a *app) searchCmd() *cobra.Command {
	var f searchFlags

	cmd := &cobra.Command{
		Use:   "search [term]",
		Short: "Search published recipes",
		Long: `Search published recipes, newest first. The term matches titles and
descriptions ignoring case. Ingredients can be given by ID (--ingredient) or
by name (--with); a recipe matches when it uses any of them.

With --interactive each line read from stdin starts a new search. A search
still running when the next line arrives is cancelled and its results are
never printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.currentSession()
			if err != nil {
				return err
			}
			c := a.client(cmd, sess)

			criteria, err := f.criteria(cmd.Context(), c)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				criteria.Term = args[0]
			}

			if f.interactive {
				return interactiveSearch(cmd.Context(), client.NewSearcher(c), criteria, cmd.InOrStdin(), cmd.OutOrStdout())
			}

			views, err := c.Search(cmd.Context(), criteria)
			if err != nil {
				return err
			}
			printRecipeList(cmd.OutOrStdout(), views)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.category, "category", "", "category ID")
	cmd.Flags().StringVar(&f.cuisine, "cuisine", "", "cuisine ID")
	cmd.Flags().StringVar(&f.difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().IntVar(&f.maxTime, "max-time", -1, "maximum preparation time in minutes")
	cmd.Flags().StringSliceVar(&f.ingredients, "ingredient", nil, "ingredient ID (repeatable)")
	cmd.Flags().StringSliceVar(&f.with, "with", nil, "ingredient name (repeatable)")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "read search terms from stdin, one per line")
	return cmd
}

func (f *searchFlags) criteria(ctx context.Context, c *client.Client) (model.FilterCriteria, error) {
	criteria := model.FilterCriteria{
		CategoryID: f.category,
		CuisineID:  f.cuisine,
		Difficulty: model.Difficulty(strings.ToLower(f.difficulty)),
	}
	if f.maxTime >= 0 {
		maxTime := f.maxTime
		criteria.MaxPrepTime = &maxTime
	}

	var picked model.IngredientSelection
	for _, id := range f.ingredients {
		if id = strings.TrimSpace(id); id != "" {
			picked.Add(model.Ingredient{ID: id})
		}
	}
	for _, name := range f.with {
		ing, err := resolveIngredient(ctx, c, name)
		if err != nil {
			return criteria, err
		}
		picked.Add(*ing)
	}
	if picked.Len() > 0 {
		criteria.IngredientIDs = picked.IDs()
	}
	return criteria, nil
}

// resolveIngredient turns a name into an ingredient. Only an exact match
// (ignoring case) is accepted; on a miss the autocomplete supplies a hint.
func resolveIngredient(ctx context.Context, c *client.Client, name string) (*model.Ingredient, error) {
	name = strings.TrimSpace(name)
	ing, err := c.IngredientByName(ctx, name)
	if err == nil {
		return ing, nil
	}
	if !client.IsNotFound(err) {
		return nil, err
	}

	suggestions, err := c.Suggest(ctx, name, "search")
	if err == nil && len(suggestions) > 0 {
		return nil, fmt.Errorf("no ingredient named %q; did you mean %q?", name, suggestions[0].Name)
	}
	return nil, fmt.Errorf("no ingredient named %q", name)
}

// interactiveSearch starts a search per input line without waiting for the
// previous one, so a slow search never delays a newer term.
func interactiveSearch(ctx context.Context, s *client.Searcher, base model.FilterCriteria, in io.Reader, out io.Writer) error {
	var (
		wg      sync.WaitGroup
		printMu sync.Mutex
	)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		criteria := base
		criteria.Term = strings.TrimSpace(scanner.Text())

		wg.Add(1)
		go func() {
			defer wg.Done()
			views, err := s.Search(ctx, criteria)
			if errors.Is(err, client.ErrSuperseded) {
				return
			}

			printMu.Lock()
			defer printMu.Unlock()
			if err != nil {
				fmt.Fprintf(out, "search %q failed: %v\n", criteria.Term, err)
				return
			}
			fmt.Fprintf(out, "Results for %q:\n", criteria.Term)
			printRecipeList(out, views)
		}()
	}
	wg.Wait()
	return scanner.Err()
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <recipe-id>",
		Short: "Show one recipe with ingredients and steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.currentSession()
			if err != nil {
				return err
			}

			detail, err := a.client(cmd, sess).Recipe(cmd.Context(), args[0])
			if err != nil {
				if client.IsNotFound(err) {
					return fmt.Errorf("recipe %s not found", args[0])
				}
				return err
			}
			printRecipeDetail(cmd.OutOrStdout(), detail, sess != nil)
			return nil
		},
	}
}

func (a *app) suggestCmd() *cobra.Command {
	var authoring bool

	cmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "List ingredient names containing text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			screen := "search"
			if authoring {
				screen = "authoring"
			}
			items, err := a.client(cmd, nil).Suggest(cmd.Context(), args[0], screen)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No matching ingredients (type at least two characters).")
				return nil
			}
			for _, ing := range items {
				fmt.Fprintf(out, "%s\t%s\n", ing.ID, ing.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&authoring, "authoring", false, "use the shorter list shown while writing a recipe")
	return cmd
}

func (a *app) favoriteCmd() *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "favorite <recipe-id>",
		Short: "Save a recipe to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.requireSession()
			if err != nil {
				return err
			}
			c := a.client(cmd, sess)

			if remove {
				if err := c.Unfavorite(cmd.Context(), args[0]); err != nil {
					return a.signedOutIfRejected(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "✓ Removed from favorites.")
				return nil
			}
			if err := c.Favorite(cmd.Context(), args[0]); err != nil {
				return a.signedOutIfRejected(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved to favorites.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&remove, "remove", false, "remove the recipe from favorites instead")
	return cmd
}
