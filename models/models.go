package models

// All -> daftar model untuk AutoMigrate
func All() []interface{} {
	return []interface{}{
		&Admin{},
		&Restaurant{},
		&Table{},
		&Customer{},
		&Staff{},
		&Meal{},
		&Queue{},
		&Order{},
		&OrderMeal{},
	}
}
