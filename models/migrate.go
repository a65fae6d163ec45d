package models

// AllModels lists every table for AutoMigrate, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Client{},
		&Category{},
		&Product{},
		&ModifierGroup{},
		&ModifierOption{},
		&Ingredient{},
		&RecipeItem{},
		&Printer{},
		&PrinterRule{},
		&Table{},
		&CashShift{},
		&Order{},
		&OrderItem{},
		&OrderItemModifier{},
		&Payment{},
		&OrderSequence{},
		&StockMovement{},
		&AuditLog{},
		&FeatureFlag{},
		&SyncedOrder{},
	}
}
