package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wellbalance/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeCategory(t *testing.T) {
	cases := map[string]Category{
		"protein":      CategoryProtein,
		"Carbs":        CategoryCarbs,
		"fat":          CategoryFat,
		"fats":         CategoryFat,
		"Healthy Fats": CategoryFat,
		"vegetables":   CategoryVegetables,
		"fruit":        CategoryFruits,
		"fruits":       CategoryFruits,
		"snacks":       CategoryUncategorized,
		"":             CategoryUncategorized,
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeCategory(in), in)
	}
}

func TestCreateCustomFood(t *testing.T) {
	ctx := context.Background()
	svc := NewFoodService(newTestDB(t), zap.NewNop())

	_, err := svc.CreateCustom(ctx, "u1", CustomFoodInput{Name: "  "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"name", "macroCategory"}, verr.Fields)

	f, err := svc.CreateCustom(ctx, "u1", CustomFoodInput{
		Name:               "Greek yoghurt",
		MacroCategory:      "protein",
		CaloriesPerServing: ptr(97.0),
		ProteinPerServing:  ptr(9.0),
		CarbsPerServing:    ptr(3.6),
		FatPerServing:      ptr(5.0),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "u1", *f.OwnerID)
	assert.Nil(t, f.Brand)
	assert.Equal(t, 100.0, f.ServingQty)
	assert.Equal(t, "g", f.ServingUnit)
	assert.True(t, f.IsPublic)

	anon, err := svc.CreateCustom(ctx, "", CustomFoodInput{Name: "Mystery", MacroCategory: "snacks"})
	require.NoError(t, err)
	assert.Nil(t, anon.OwnerID)
	assert.Nil(t, anon.CaloriesPerServing)

	got, err := svc.Get(ctx, f.ID)
	require.NoError(t, err)
	assert.Equal(t, f, got)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListSelectableFiltersIncompleteFoods(t *testing.T) {
	ctx := context.Background()
	conn := newTestDB(t)
	svc := NewFoodService(conn, zap.NewNop())

	complete := CustomFoodInput{
		MacroCategory:      "healthy fats",
		CaloriesPerServing: ptr(160.0),
		ProteinPerServing:  ptr(2.0),
		CarbsPerServing:    ptr(8.5),
		FatPerServing:      ptr(14.7),
	}
	complete.Name = "Avocado"
	_, err := svc.CreateCustom(ctx, "", complete)
	require.NoError(t, err)

	partial := complete
	partial.Name = "Almonds"
	partial.FatPerServing = nil
	_, err = svc.CreateCustom(ctx, "", partial)
	require.NoError(t, err)

	foods, err := svc.ListSelectable(ctx, "")
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Avocado", foods[0].Name)

	var stored int
	require.NoError(t, conn.Get(&stored, `SELECT COUNT(*) FROM foods`))
	assert.Equal(t, 2, stored)

	foods, err = svc.ListSelectable(ctx, "AVO")
	require.NoError(t, err)
	assert.Len(t, foods, 1)
	foods, err = svc.ListSelectable(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestGroupByCategory(t *testing.T) {
	food := func(name, cat string) models.Food {
		return models.Food{
			ID: name, Name: name, MacroCategory: cat, ServingQty: 100, ServingUnit: "g",
			CaloriesPerServing: ptr(1.0), ProteinPerServing: ptr(1.0),
			CarbsPerServing: ptr(1.0), FatPerServing: ptr(1.0),
		}
	}
	groups := GroupByCategory([]models.Food{
		food("apple", "fruit"),
		food("butter", "fats"),
		food("olive oil", "healthy fats"),
		food("chips", "snacks"),
		food("chicken", "protein"),
	})

	require.Len(t, groups, 3)
	assert.Equal(t, CategoryProtein, groups[0].Category)
	assert.Equal(t, CategoryFat, groups[1].Category)
	assert.Len(t, groups[1].Foods, 2)
	assert.Equal(t, CategoryFruits, groups[2].Category)
	for _, g := range groups {
		for _, f := range g.Foods {
			assert.NotEqual(t, "chips", f.Name)
		}
	}
}

func TestComputePortion(t *testing.T) {
	f := models.Food{
		ID: "oats", ServingQty: 40,
		CaloriesPerServing: ptr(150.0), ProteinPerServing: ptr(5.2),
		CarbsPerServing: ptr(27.0), FatPerServing: ptr(2.5),
	}
	p, err := ComputePortion(f, 60)
	require.NoError(t, err)
	assert.Equal(t, 225, p.Calories)
	assert.InDelta(t, 7.8, p.ProteinG, 1e-9)
	assert.InDelta(t, 40.5, p.CarbsG, 1e-9)
	assert.InDelta(t, 3.8, p.FatG, 1e-9)

	f.ServingQty = 0
	p, err = ComputePortion(f, 60)
	require.NoError(t, err)
	assert.Zero(t, p.Calories)

	f.FatPerServing = nil
	_, err = ComputePortion(f, 60)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
