package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	dbt "settlex/db/db"
	"settlex/libs/diff"
	"settlex/money"
	moq "settlex/mq/mq"
	"settlex/netting"
	"settlex/payment"
	"settlex/split"
	"settlex/stellar"
)

// Handlers carries the stores and the event queue the REST surface works
// against.
type Handlers struct {
	Expenses dbt.ExpenseDBWrapper
	Trips    dbt.TripDBWrapper
	MQ       moq.SettlementMessageQueueWrapper
}

type memberRequest struct {
	Name          string `json:"name" binding:"required"`
	WalletAddress string `json:"walletAddress"`
	Weight        *int   `json:"weight"`
}

type createExpenseRequest struct {
	Title       string          `json:"title" binding:"required"`
	TotalAmount string          `json:"totalAmount" binding:"required"`
	SplitMode   string          `json:"splitMode"`
	PayerName   string          `json:"payerName" binding:"required"`
	Members     []memberRequest `json:"members" binding:"required"`
	TripID      *uuid.UUID      `json:"tripId"`
}

func (h *Handlers) CreateExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !money.IsValidAmountString(req.TotalAmount) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totalAmount must be a positive amount within range"})
		return
	}
	if len(req.Members) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one member is required"})
		return
	}
	for _, m := range req.Members {
		if m.WalletAddress != "" && !stellar.IsValidPaymentAddress(m.WalletAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": m.Name + " has an invalid wallet address"})
			return
		}
	}

	members := make([]split.Member, 0, len(req.Members))
	var payerID uuid.UUID
	for _, m := range req.Members {
		member := split.Member{
			ID:            uuid.New(),
			Name:          m.Name,
			WalletAddress: m.WalletAddress,
			Weight:        m.Weight,
		}
		if m.Name == req.PayerName && payerID == uuid.Nil {
			payerID = member.ID
		}
		members = append(members, member)
	}
	if payerID == uuid.Nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payerName must match one of the members"})
		return
	}

	total, _ := money.Parse(req.TotalAmount)
	mode := split.Mode(req.SplitMode)
	if mode != split.ModeCustom {
		mode = split.ModeEqual
	}
	shares := split.ComputeSplit(total, members, payerID, mode)

	expense := &dbt.Expense{}
	expense.ID = uuid.New()
	expense.Title = req.Title
	expense.TotalAmount = money.Format(total)
	expense.SplitMode = mode
	expense.PayerID = payerID
	expense.Settled = dbt.AllPaid(shares)
	expense.Members = members
	expense.Shares = shares

	if err := h.Expenses.CreateExpense(expense); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.TripID != nil {
		if err := h.Trips.LinkExpense(*req.TripID, expense.ID); err != nil {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "expense": expense})
			return
		}
		h.publishExpenseCreated(*req.TripID, expense)
	}

	c.JSON(http.StatusCreated, expense)
}

func (h *Handlers) GetExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}

	expense, err := h.Expenses.GetExpense(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, expense)
}

type markPaidRequest struct {
	TxHash string     `json:"txHash" binding:"required"`
	TripID *uuid.UUID `json:"tripId"`
}

func (h *Handlers) MarkSharePaid(c *gin.Context) {
	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}
	memberID, err := uuid.Parse(c.Param("memberId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	var req markPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	before, err := h.Expenses.GetExpense(expenseID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	after, err := h.Expenses.MarkSharePaid(expenseID, memberID, req.TxHash)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if req.TripID != nil {
		for _, share := range diff.NewlyPaidShares(before, after) {
			h.publishPaymentPaid(*req.TripID, expenseID, share)
		}
	}

	c.JSON(http.StatusOK, after)
}

// GetExpenseShares returns just the share list, for clients polling
// payment progress without the full expense payload.
func (h *Handlers) GetExpenseShares(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}
	shares, err := h.Expenses.GetExpenseShares(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"expenseId": id, "shares": shares})
}

func (h *Handlers) DeleteExpense(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}
	if err := h.Expenses.DeleteExpense(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type createTripRequest struct {
	Name    string          `json:"name" binding:"required"`
	Members []memberRequest `json:"members"`
}

func (h *Handlers) CreateTrip(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	info := &dbt.TripInfo{ID: uuid.New(), Name: req.Name}
	if err := h.Trips.CreateTrip(info); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, m := range req.Members {
		member := split.Member{ID: uuid.New(), Name: m.Name, WalletAddress: m.WalletAddress}
		if err := h.Trips.TripMemberAdd(info.ID, member); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	trip, err := h.Trips.GetTrip(info.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *Handlers) GetTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	trip, err := h.Trips.GetTrip(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handlers) LinkExpense(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	expenseID, err := uuid.Parse(c.Param("expenseId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expense id"})
		return
	}
	if err := h.Trips.LinkExpense(tripID, expenseID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// tripExpenses loads every expense linked to a trip through the
// per-request batch loader.
func (h *Handlers) tripExpenses(c *gin.Context, tripID uuid.UUID) ([]*dbt.Expense, error) {
	loader, ok := c.Value(string(dbt.DataLoaderKeySettlement)).(*dbt.SettlementDataLoader)
	if !ok {
		loader = dbt.NewSettlementDataLoader(h.Expenses, h.Trips)
	}

	ids, err := loader.GetTripExpenseIDList.Load(c.Request.Context(), tripID)
	if err != nil {
		return nil, err
	}

	return loader.GetExpenseList.LoadAll(c.Request.Context(), ids)
}

func (h *Handlers) GetSettlement(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	expenses, err := h.tripExpenses(c, tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"tripId":   tripID,
		"payments": netting.SettlementPlan(expenses),
	}
	// ?from=&to= previews which expenses a single net payment would touch.
	if from, to := c.Query("from"), c.Query("to"); from != "" && to != "" {
		resp["contributing"] = payment.ContributingShares(expenses, from, to)
	}
	c.JSON(http.StatusOK, resp)
}

type settlementPaidRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	TxHash string `json:"txHash" binding:"required"`
}

// SettlementPaid marks every unpaid share one net settlement payment
// retires, joined by the creditor/debtor display names.
func (h *Handlers) SettlementPaid(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	var req settlementPaidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	expenses, err := h.tripExpenses(c, tripID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	marked := 0
	var failed error
	for _, expense := range expenses {
		payer := expense.Payer()
		if payer == nil || payer.Name != req.To {
			continue
		}
		for _, share := range expense.Shares {
			if share.Name != req.From || share.Paid {
				continue
			}
			if _, err := h.Expenses.MarkSharePaid(expense.ID, share.MemberID, req.TxHash); err != nil {
				log.Printf("settlement %s: mark share for %s in expense %s: %v",
					req.TxHash, share.Name, expense.ID, err)
				failed = err
				continue
			}
			marked++
			paid := share
			paid.Paid = true
			paid.TxHash = req.TxHash
			h.publishPaymentPaid(tripID, expense.ID, paid)
		}
	}

	if failed != nil {
		h.publishPaymentFailed(tripID, req.From, req.TxHash)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":        failed.Error(),
			"sharesMarked": marked,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sharesMarked": marked})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) publishExpenseCreated(tripID uuid.UUID, expense *dbt.Expense) {
	if h.MQ == nil {
		return
	}
	queue := h.MQ.GetExpenseMessageQueue(moq.ActionCreated)
	if queue == nil {
		return
	}
	payer := expense.Payer()
	payerName := ""
	if payer != nil {
		payerName = payer.Name
	}
	if err := queue.Publish(moq.ExpenseMessage{
		TripID:      tripID,
		ExpenseID:   expense.ID,
		Title:       expense.Title,
		TotalAmount: expense.TotalAmount,
		PayerName:   payerName,
	}); err != nil {
		log.Printf("publish expense created for %s: %v", expense.ID, err)
	}
}

func (h *Handlers) publishPaymentPaid(tripID uuid.UUID, expenseID uuid.UUID, share split.Share) {
	if h.MQ == nil {
		return
	}
	queue := h.MQ.GetPaymentMessageQueue(moq.ActionPaid)
	if queue == nil {
		return
	}
	if err := queue.Publish(moq.PaymentMessage{
		TripID:     tripID,
		ExpenseID:  expenseID,
		MemberName: share.Name,
		Wallet:     dbt.Address(share.WalletAddress),
		Amount:     share.Amount,
		TxHash:     share.TxHash,
	}); err != nil {
		log.Printf("publish payment paid for %s: %v", expenseID, err)
	}
}

func (h *Handlers) publishPaymentFailed(tripID uuid.UUID, memberName, txHash string) {
	if h.MQ == nil {
		return
	}
	queue := h.MQ.GetPaymentMessageQueue(moq.ActionFailed)
	if queue == nil {
		return
	}
	if err := queue.Publish(moq.PaymentMessage{
		TripID:     tripID,
		MemberName: memberName,
		TxHash:     txHash,
	}); err != nil {
		log.Printf("publish payment failed for trip %s: %v", tripID, err)
	}
}
