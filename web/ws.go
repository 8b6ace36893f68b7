package web

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"settlex/money"
	moq "settlex/mq/mq"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// allow all origins for WebSocket connections
		// should only in dev
		return true
	},
}

// tripEvent is the wire shape pushed to websocket clients. One struct
// covers both event families; unused fields are omitted per frame.
type tripEvent struct {
	Type        string `json:"type"`
	ExpenseID   string `json:"expenseId,omitempty"`
	Title       string `json:"title,omitempty"`
	TotalAmount string `json:"totalAmount,omitempty"`
	MemberName  string `json:"memberName,omitempty"`
	Wallet      string `json:"wallet,omitempty"`
	Amount      string `json:"amount,omitempty"`
	TxHash      string `json:"txHash,omitempty"`
}

// TripEventsHandler upgrades the connection and streams the trip's expense
// and payment events until the client goes away. Each processor owns its
// output channel: SubscribeProcessor closes the channel it writes to, so
// the two subscriptions must not share one.
func (h *Handlers) TripEventsHandler(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}
	if h.MQ == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event feed is not configured"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade for trip %s: %v", tripID, err)
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	paymentEvents := make(chan tripEvent, 16)
	expenseEvents := make(chan tripEvent, 16)

	if paid := h.MQ.GetPaymentMessageQueue(moq.ActionPaid); paid != nil {
		moq.SubscribeProcessor(tripID, ctx, paid,
			func(msg moq.PaymentMessage) (tripEvent, bool, error) {
				return tripEvent{
					Type:       "payment." + moq.ActionPaid.String(),
					ExpenseID:  msg.ExpenseID.String(),
					MemberName: msg.MemberName,
					Wallet:     money.ShortAddress(string(msg.Wallet), 6),
					Amount:     msg.Amount,
					TxHash:     msg.TxHash,
				}, false, nil
			}, paymentEvents)
	}

	if created := h.MQ.GetExpenseMessageQueue(moq.ActionCreated); created != nil {
		moq.SubscribeProcessor(tripID, ctx, created,
			func(msg moq.ExpenseMessage) (tripEvent, bool, error) {
				return tripEvent{
					Type:        "expense." + moq.ActionCreated.String(),
					ExpenseID:   msg.ExpenseID.String(),
					Title:       msg.Title,
					TotalAmount: msg.TotalAmount,
					MemberName:  msg.PayerName,
				}, false, nil
			}, expenseEvents)
	}

	// Drain client frames so pings and close frames are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-paymentEvents:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("websocket write for trip %s: %v", tripID, err)
				return
			}
		case event, ok := <-expenseEvents:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("websocket write for trip %s: %v", tripID, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
