package command

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/sakif/recipe-share/internal/model"
)

func printRecipeList(w io.Writer, views []model.RecipeView) {
	if len(views) == 0 {
		fmt.Fprintln(w, "No recipes found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tTIME\tDIFFICULTY\tRATING\tAUTHOR")
	for _, v := range views {
		author := ""
		if v.Author != nil {
			author = v.Author.Username
		}
		fmt.Fprintf(tw, "%s\t%s\t%d min\t%s\t%s\t%s\n",
			v.ID, v.Title, v.TotalTime, v.Difficulty, formatRating(v.AverageRating), author)
	}
	tw.Flush()
}

func printRecipeDetail(w io.Writer, d *model.RecipeDetail, signedIn bool) {
	fmt.Fprintln(w, d.Title)
	fmt.Fprintln(w, strings.Repeat("=", len([]rune(d.Title))))
	if d.Description != "" {
		fmt.Fprintf(w, "%s\n\n", d.Description)
	}

	if d.Author != nil {
		fmt.Fprintf(w, "By:         %s\n", d.Author.Username)
	}
	if d.Category != nil {
		fmt.Fprintf(w, "Category:   %s\n", d.Category.Name)
	}
	if d.Cuisine != nil {
		fmt.Fprintf(w, "Cuisine:    %s\n", d.Cuisine.Name)
	}
	fmt.Fprintf(w, "Time:       %d min (prep %d)\n", d.TotalTime, d.PreparationTime)
	fmt.Fprintf(w, "Serves:     %d\n", d.Servings)
	fmt.Fprintf(w, "Difficulty: %s\n", d.Difficulty)
	fmt.Fprintf(w, "Rating:     %s (%d ratings)\n", formatRating(d.AverageRating), len(d.Ratings))
	if signedIn {
		fav := "no"
		if d.IsFavorite {
			fav = "yes"
		}
		fmt.Fprintf(w, "Favorite:   %s\n", fav)
	}

	if len(d.Ingredients) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		for _, line := range d.Ingredients {
			name := line.IngredientID
			if line.Ingredient != nil {
				name = line.Ingredient.Name
			}
			amount := strings.TrimSpace(line.Quantity + " " + line.Unit)
			fmt.Fprintf(w, "  - %s %s\n", amount, name)
		}
	}

	if len(d.Steps) > 0 {
		fmt.Fprintln(w, "\nSteps:")
		for _, s := range d.Steps {
			fmt.Fprintf(w, "  %d. %s\n", s.StepNumber, s.Instruction)
		}
	}

	if len(d.Tags) > 0 {
		names := make([]string, len(d.Tags))
		for i, t := range d.Tags {
			names[i] = "#" + t.Name
		}
		fmt.Fprintf(w, "\n%s\n", strings.Join(names, " "))
	}
}

func formatRating(avg *float64) string {
	if avg == nil {
		return "not rated"
	}
	return fmt.Sprintf("%.1f/5", *avg)
}
