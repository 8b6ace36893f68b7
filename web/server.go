package web

import (
	"github.com/gin-gonic/gin"

	dbt "settlex/db/db"
	moq "settlex/mq/mq"
)

// NewRouter assembles the gin engine with the full middleware chain and
// route table. Split out from Serve so tests can drive it with httptest.
func NewRouter(expenses dbt.ExpenseDBWrapper, trips dbt.TripDBWrapper, queue moq.SettlementMessageQueueWrapper) *gin.Engine {
	r := gin.New()
	setupMiddlewares(r, expenses, trips)

	h := &Handlers{Expenses: expenses, Trips: trips, MQ: queue}

	r.GET("/health", h.Health)

	api := r.Group("/api")
	{
		api.POST("/expenses", h.CreateExpense)
		api.GET("/expenses/:id", h.GetExpense)
		api.GET("/expenses/:id/shares", h.GetExpenseShares)
		api.DELETE("/expenses/:id", h.DeleteExpense)
		api.POST("/expenses/:id/shares/:memberId/paid", h.MarkSharePaid)

		api.POST("/trips", h.CreateTrip)
		api.GET("/trips/:id", h.GetTrip)
		api.POST("/trips/:id/expenses/:expenseId", h.LinkExpense)
		api.GET("/trips/:id/settlement", h.GetSettlement)
		api.POST("/trips/:id/settlement/paid", h.SettlementPaid)
	}

	r.GET("/ws/trips/:id", h.TripEventsHandler)

	return r
}

func Serve(addr string, expenses dbt.ExpenseDBWrapper, trips dbt.TripDBWrapper, queue moq.SettlementMessageQueueWrapper) error {
	r := NewRouter(expenses, trips, queue)
	return r.Run(addr)
}
