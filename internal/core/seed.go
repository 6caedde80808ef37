package core

import "chefmenu/pkg/domain"

// SeedDishes returns the default menu written on first run.
func SeedDishes() []domain.Dish {
	return []domain.Dish{
		{ID: "1", Name: "Spaghetti", Description: "Classic Italian pasta dish", Course: domain.CourseMains, Price: "12.99"},
		{ID: "2", Name: "Cheesecake", Description: "Rich and creamy dessert", Course: domain.CourseDesserts, Price: "6.99"},
	}
}
