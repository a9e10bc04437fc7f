package dashboard

import (
	"github.com/MrJamesThe3rd/spendboard/internal/dashboard"
	"github.com/MrJamesThe3rd/spendboard/internal/datefilter"
	"github.com/MrJamesThe3rd/spendboard/internal/overview"
	"github.com/MrJamesThe3rd/spendboard/internal/rates"
	"github.com/MrJamesThe3rd/spendboard/internal/transaction"
)

type categoryResponse struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Display    string  `json:"display"`
	Percentage float64 `json:"percentage"`
}

type overviewResponse struct {
	Currency      string             `json:"currency"`
	Count         int                `json:"count"`
	TotalIncome   float64            `json:"totalIncome"`
	TotalExpense  float64            `json:"totalExpense"`
	Net           float64            `json:"net"`
	NetPercentage float64            `json:"netPercentage"`
	Categories    []categoryResponse `json:"categoryBreakdown"`
}

type rowResponse struct {
	Date           string           `json:"date"`
	ItemName       string           `json:"itemName"`
	Category       string           `json:"category"`
	Type           transaction.Type `json:"type"`
	OriginalAmount float64          `json:"originalAmount"`
	Currency       string           `json:"currency"`
	FinalAmount    float64          `json:"finalAmount"`
	Converted      float64          `json:"converted"`
	Display        string           `json:"display"`
	Notes          []string         `json:"notes"`
}

type chartResponse struct {
	Filter datefilter.Filter `json:"filter"`
	Points []overview.Point  `json:"points"`
}

type refreshResponse struct {
	Transactions int                 `json:"transactions"`
	Rates        dashboard.RatesView `json:"rates"`
}

func toOverviewResponse(s dashboard.Summary) overviewResponse {
	resp := overviewResponse{
		Currency:      s.Currency,
		Count:         s.Count,
		TotalIncome:   s.TotalIncome,
		TotalExpense:  s.TotalExpense,
		Net:           s.Net,
		NetPercentage: s.NetPercentage,
		Categories:    make([]categoryResponse, len(s.CategoryBreakdown)),
	}

	for i, c := range s.CategoryBreakdown {
		resp.Categories[i] = categoryResponse{
			Category:   c.Category,
			Amount:     c.Amount,
			Display:    rates.Format(c.Amount, s.Currency),
			Percentage: c.Percentage,
		}
	}

	return resp
}

func toRowList(rows []dashboard.Row) []rowResponse {
	resp := make([]rowResponse, len(rows))
	for i, r := range rows {
		resp[i] = rowResponse{
			Date:           r.Date,
			ItemName:       r.ItemName,
			Category:       r.Category,
			Type:           r.Type,
			OriginalAmount: r.OriginalAmount,
			Currency:       r.Currency,
			FinalAmount:    r.FinalAmount,
			Converted:      r.Converted,
			Display:        r.Display,
			Notes:          r.Notes,
		}
	}

	return resp
}
