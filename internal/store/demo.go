package store

import (
	"github.com/existflow/chantier/internal/model"
	"github.com/shopspring/decimal"
)

// DemoData returns a fresh copy of the demo dataset.
func DemoData() model.Snapshot {
	end := model.NewDate(2025, 6, 30)
	return model.Snapshot{
		Projects: []model.Project{
			{
				ID:        "1",
				Name:      "Rénovation Appartement Paris",
				Client:    "Jean Dupont",
				Location:  "Paris XV",
				StartDate: model.NewDate(2025, 1, 15),
				Budget:    model.Euros(45000),
				Status:    model.ProjectInProgress,
			},
			{
				ID:        "2",
				Name:      "Construction Villa Cap d'Antibes",
				Client:    "Famille Morel",
				Location:  "Antibes",
				StartDate: model.NewDate(2024, 11, 1),
				EndDate:   &end,
				Budget:    model.Euros(250000),
				Status:    model.ProjectInProgress,
			},
			{
				ID:        "3",
				Name:      "Réfection Toiture École",
				Client:    "Mairie de Lyon",
				Location:  "Lyon 03",
				StartDate: model.NewDate(2025, 2, 10),
				Budget:    model.Euros(12000),
				Status:    model.ProjectSuspended,
			},
		},
		Quotes: []model.Quote{
			{
				ID:         "d1",
				ProjectRef: model.RefTo("1"),
				Date:       model.NewDate(2025, 1, 10),
				Status:     model.QuoteAccepted,
				TaxRate:    decimal.RequireFromString("0.20"),
				LineItems: []model.LineItem{
					{ID: "l1", Designation: "Peinture murs et plafonds", Quantity: decimal.NewFromInt(120), UnitPrice: model.Euros(25)},
					{ID: "l2", Designation: "Pose parquet chêne", Quantity: decimal.NewFromInt(45), UnitPrice: model.Euros(85)},
					{ID: "l3", Designation: "Installation prises électriques", Quantity: decimal.NewFromInt(12), UnitPrice: model.Euros(45)},
				},
			},
		},
		Payments: []model.Payment{
			{ID: "p1", ProjectRef: model.RefTo("1"), Amount: model.Euros(5000), Date: model.NewDate(2025, 1, 12), Method: model.PaymentTransfer},
		},
		Expenses: []model.Expense{
			{
				ID:          "e1",
				ProjectRef:  model.RefTo("1"),
				Type:        model.ExpenseMaterials,
				Description: "Peinture et sous-couche",
				Amount:      model.Euros(1250),
				Provider:    "Leroy Merlin",
				Date:        model.NewDate(2025, 1, 20),
			},
			{
				ID:          "e2",
				ProjectRef:  model.RefTo("1"),
				Type:        model.ExpenseLabor,
				Description: "Renfort peintres",
				Amount:      model.Euros(2400),
				Provider:    "Intérim Pro",
				Date:        model.NewDate(2025, 1, 25),
			},
		},
	}
}
