package mq

import (
	"context"
	"log"

	"github.com/google/uuid"
)

// Subscriber is any queue that can be subscribed to per topic. M is the
// message type the queue carries.
type Subscriber[M any] interface {
	Subscribe(uuid.UUID) (uuid.UUID, <-chan M, error)
	DeSubscribe(id uuid.UUID) error
}

// SubscribeProcessor subscribes to topicID on service and pumps transformed
// messages into outputStream until the context is cancelled or the
// subscription closes. transformFunc may skip a message (second return
// true) or fail it (error, logged and skipped). The subscription is torn
// down and outputStream closed when the pump exits.
func SubscribeProcessor[S Subscriber[M], M any, O any](
	topicID uuid.UUID,
	ctx context.Context,
	service S,
	transformFunc func(msg M) (O, bool, error),
	outputStream chan<- O,
) {
	go func() {
		uid, inputCh, err := service.Subscribe(topicID)
		if err != nil {
			close(outputStream)
			return
		}

		defer func() {
			if err := service.DeSubscribe(uid); err != nil {
				log.Printf("de-subscribe %s: %v", uid, err)
			}
			close(outputStream)
		}()

		for {
			select {
			case msg, ok := <-inputCh:
				if !ok {
					return
				}

				output, skip, err := transformFunc(msg)
				if err != nil {
					log.Printf("transform for subscription %s: %v", uid, err)
					continue
				}
				if skip {
					continue
				}

				select {
				case outputStream <- output:
				case <-ctx.Done():
					return
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}
