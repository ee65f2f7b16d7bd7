package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/awakeapp/AWAKE-sub000/internal/admin"
	"github.com/awakeapp/AWAKE-sub000/internal/auth"
	"github.com/awakeapp/AWAKE-sub000/internal/debts"
	"github.com/awakeapp/AWAKE-sub000/internal/ledger"
	"github.com/awakeapp/AWAKE-sub000/internal/recurring"
	"github.com/awakeapp/AWAKE-sub000/internal/reports"
	"github.com/awakeapp/AWAKE-sub000/internal/summary"
	"github.com/awakeapp/AWAKE-sub000/internal/syncrelay"
)

type Router struct {
	AuthHandler      *auth.Handler
	LedgerHandler    *ledger.Handler
	DebtsHandler     *debts.Handler
	RecurringHandler *recurring.Handler
	SyncHandler      *syncrelay.Handler
	SummaryHandler   *summary.Handler
	ReportsHandler   *reports.Handler
	AdminHandler     *admin.Handler

	AuthMW      fiber.Handler
	AdminMW     fiber.Handler
	AuthLimiter fiber.Handler
	WriteLimit  fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		signup := []fiber.Handler{r.AuthHandler.Signup}
		login := []fiber.Handler{r.AuthHandler.Login}
		if r.AuthLimiter != nil {
			signup = append([]fiber.Handler{r.AuthLimiter}, signup...)
			login = append([]fiber.Handler{r.AuthLimiter}, login...)
		}
		app.Post("/api/auth/signup", signup...)
		app.Post("/api/auth/login", login...)
		app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	}

	write := func(h fiber.Handler) []fiber.Handler {
		if r.WriteLimit != nil {
			return []fiber.Handler{r.AuthMW, r.WriteLimit, h}
		}
		return []fiber.Handler{r.AuthMW, h}
	}

	if r.LedgerHandler != nil {
		app.Post("/api/accounts", write(r.LedgerHandler.CreateAccount)...)
		app.Get("/api/accounts", r.AuthMW, r.LedgerHandler.ListAccounts)
		app.Patch("/api/accounts/:id/archive", write(r.LedgerHandler.ArchiveAccount)...)
		app.Get("/api/accounts/:id/verify", r.AuthMW, r.LedgerHandler.VerifyBalance)
		app.Post("/api/bootstrap", write(r.LedgerHandler.Bootstrap)...)

		app.Post("/api/entries", write(r.LedgerHandler.Commit)...)
		app.Get("/api/entries", r.AuthMW, r.LedgerHandler.ListEntries)
		app.Post("/api/entries/:id/reverse", write(r.LedgerHandler.ReverseEntry)...)
		app.Post("/api/transfers", write(r.LedgerHandler.Transfer)...)
	}

	if r.DebtsHandler != nil {
		app.Post("/api/parties", write(r.DebtsHandler.CreateParty)...)
		app.Get("/api/parties", r.AuthMW, r.DebtsHandler.ListParties)
		app.Delete("/api/parties/:id", write(r.DebtsHandler.DeleteParty)...)
		app.Get("/api/parties/:id", r.AuthMW, r.DebtsHandler.GetPartyView)
		app.Get("/api/parties/:id/entries", r.AuthMW, r.DebtsHandler.ListPartyEntries)
		app.Post("/api/parties/:id/entries", write(r.DebtsHandler.CreateEntry)...)
		app.Post("/api/parties/:id/settle", write(r.DebtsHandler.Settle)...)
		app.Delete("/api/debt-entries/:id", write(r.DebtsHandler.DeleteEntry)...)
		app.Patch("/api/debt-entries/:id", write(r.DebtsHandler.EditEntry)...)
	}

	if r.RecurringHandler != nil {
		app.Post("/api/recurring", write(r.RecurringHandler.Create)...)
		app.Get("/api/recurring", r.AuthMW, r.RecurringHandler.List)
		app.Patch("/api/recurring/:id/active", write(r.RecurringHandler.SetActive)...)
		app.Post("/api/recurring/sweep", write(r.RecurringHandler.Sweep)...)
	}

	if r.SyncHandler != nil {
		app.Post("/api/sync/batch", write(r.SyncHandler.Batch)...)
		app.Get("/api/sync/locked-dates", r.AuthMW, r.SyncHandler.LockedDates)
		app.Post("/api/sync/locked-dates", write(r.SyncHandler.LockDate)...)
	}

	if r.SummaryHandler != nil {
		app.Get("/api/summary", r.AuthMW, r.SummaryHandler.GetSummary)
	}

	if r.ReportsHandler != nil {
		app.Get("/api/reports/daily", r.AuthMW, r.ReportsHandler.Get)
		app.Get("/api/reports/statement", r.AuthMW, r.ReportsHandler.Statement)
		app.Get("/api/reports/statement.pdf", r.AuthMW, r.ReportsHandler.StatementPDF)
		app.Get("/api/reports/categories", r.AuthMW, r.ReportsHandler.Categories)
	}

	if r.AdminHandler != nil && r.AdminMW != nil {
		app.Get("/api/admin/overview", r.AdminMW, r.AdminHandler.Overview)
	}
}
