package main

import (
	"context"
	"fmt"

	"flowtrack/internal/category"
	"flowtrack/internal/render"
	"flowtrack/internal/store"
	"flowtrack/internal/timer"
)

// defaultCategory is used when no -c flag is given.
const defaultCategory = "focus"

var categoryFlag string

func renderer() *render.Renderer {
	return render.New(pretty)
}

func categoryName() string {
	if categoryFlag != "" {
		return categoryFlag
	}
	return defaultCategory
}

// resolveCategory looks up the selected category, creating it on first
// use so 'flowtrack toggle' works out of the box.
func resolveCategory(ctx context.Context, create bool) (*category.Category, error) {
	name := categoryName()

	cat, err := db.GetCategoryByName(ctx, name)
	if err == nil {
		return cat, nil
	}
	if !store.IsNotFound(err) {
		return nil, err
	}
	if !create {
		return nil, fmt.Errorf("no such category %q (create it with: flowtrack category add %s)", name, name)
	}

	c, err := category.New(name, "", timer.ModeFlow, trk.Now())
	if err != nil {
		return nil, err
	}
	if err := db.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// requireCategory resolves without creating.
func requireCategory(ctx context.Context) (*category.Category, error) {
	return resolveCategory(ctx, false)
}

// categoryNames maps category IDs to names, archived included so old
// sessions still render their category.
func categoryNames(ctx context.Context) (map[string]string, error) {
	cats, err := db.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func showAllStatus(ctx context.Context) error {
	cats, err := db.ListCategories(ctx, false)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		render.Stdout().Empty("No categories yet. Run: flowtrack toggle")
		return nil
	}

	r := renderer()
	now := trk.Now()
	for _, cat := range cats {
		s, err := trk.Status(ctx, cat)
		if err != nil {
			return err
		}
		fmt.Print(r.Status(cat, s, now))
	}
	return nil
}
