package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/types"
)

const demoPassword = "demopass123"

type demoRecipe struct {
	title       string
	minutes     int
	price       float64
	tags        []string
	ingredients []string
}

var demoUsers = []struct {
	email   string
	name    string
	recipes []demoRecipe
}{
	{
		email: "alice@example.com",
		name:  "Alice",
		recipes: []demoRecipe{
			{"Chickpea curry", 35, 6.50, []string{"Vegan", "Dinner"}, []string{"Chickpeas", "Coconut milk", "Curry paste", "Rice"}},
			{"Overnight oats", 5, 1.75, []string{"Breakfast", "Vegetarian"}, []string{"Oats", "Milk", "Honey"}},
		},
	},
	{
		email: "bob@example.com",
		name:  "Bob",
		recipes: []demoRecipe{
			{"Fish and chips", 40, 9.00, []string{"Dinner"}, []string{"Cod", "Potatoes", "Flour"}},
			{"Shakshuka", 25, 4.25, []string{"Breakfast", "Vegetarian"}, []string{"Eggs", "Tomatoes", "Peppers"}},
		},
	},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo users with recipes",
		Long: fmt.Sprintf(`Create demo users with a few tagged recipes each. Demo users log in
with the password %q. Users that already exist are skipped.`, demoPassword),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, closeDB, err := openDatabase(cfg, log)
			if err != nil {
				return err
			}
			defer closeDB()

			ctx := cmd.Context()
			users := service.NewUserService(db, log)
			tags := service.NewTagService(db, log)
			ingredients := service.NewIngredientService(db, log)
			recipes := service.NewRecipeService(db, tags, ingredients, nil, log)

			for _, demo := range demoUsers {
				user, err := users.Register(ctx, demo.email, demoPassword, demo.name)
				if errors.Is(err, service.ErrEmailTaken) {
					log.Info("demo user exists, skipping", zap.String("email", demo.email))
					continue
				}
				if err != nil {
					return err
				}

				for _, r := range demo.recipes {
					minutes, price := r.minutes, r.price
					if _, err := recipes.Create(ctx, user.ID, &types.RecipeRequest{
						Title:       r.title,
						TimeMinutes: &minutes,
						Price:       &price,
						Tags:        namedRefs(r.tags),
						Ingredients: namedRefs(r.ingredients),
					}); err != nil {
						return fmt.Errorf("failed to seed recipe %q: %w", r.title, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %s with %d recipes\n", user.Email, len(demo.recipes))
			}
			return nil
		},
	}
}

func namedRefs(names []string) []types.NamedRef {
	refs := make([]types.NamedRef, len(names))
	for i, n := range names {
		refs[i] = types.NamedRef{Name: n}
	}
	return refs
}
