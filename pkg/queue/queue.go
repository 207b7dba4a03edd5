package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/citizenwallet/custody/internal/logging"
	"github.com/citizenwallet/custody/pkg/custody"
)

var ErrQueueFull = errors.New("queue is full")

type Service struct {
	name       string
	queue      chan custody.Message
	quit       chan bool
	maxRetries int
	retryDelay time.Duration

	ctx context.Context
	wm  custody.WebhookMessager
	log logging.Logger
}

type Processor interface {
	Process(custody.Message) error
}

func NewService(name string, maxRetries, bufferSize int, ctx context.Context, wm custody.WebhookMessager, log logging.Logger) *Service {
	if ctx == nil {
		ctx = context.Background()
	}

	return &Service{
		name:       name,
		queue:      make(chan custody.Message, bufferSize),
		quit:       make(chan bool),
		maxRetries: maxRetries,
		retryDelay: time.Second,
		ctx:        ctx,
		wm:         wm,
		log:        log.WithField("queue", name),
	}
}

// Enqueue never blocks the caller. A full queue drops the message and reports it.
func (s *Service) Enqueue(message custody.Message) error {
	select {
	case s.queue <- message:
		if len(s.queue) > cap(s.queue)*9/10 {
			s.wm.NotifyWarning(s.ctx, fmt.Errorf("%s queue is almost full: %d/%d", s.name, len(s.queue), cap(s.queue)))
		}
		return nil
	default:
		err := fmt.Errorf("%s %w, dropped message %s", s.name, ErrQueueFull, message.ID)
		s.log.WithField("id", message.ID).Error(err)
		s.wm.NotifyError(s.ctx, err)
		return err
	}
}

func (s *Service) Close() {
	s.quit <- true
}

func (s *Service) Start(p Processor) error {
	for {
		select {
		case message := <-s.queue:
			// it is up to the processor to handle the data type
			err := p.Process(message)
			if err == nil {
				continue
			}

			if message.RetryCount < s.maxRetries {
				message.RetryCount++
				s.log.WithFields(logging.Fields{"id": message.ID, "retry": message.RetryCount, "err": err}).Warn("requeueing message")
				go s.requeue(message)
				continue
			}

			s.log.WithFields(logging.Fields{"id": message.ID, "err": err}).Error("giving up on message")
			s.wm.NotifyError(s.ctx, err)
		case <-s.quit:
			return nil
		}
	}
}

// requeue waits longer on every retry so a failing dependency is not hammered.
func (s *Service) requeue(message custody.Message) {
	t := time.NewTimer(time.Duration(message.RetryCount) * s.retryDelay)
	defer t.Stop()

	select {
	case <-t.C:
	case <-s.ctx.Done():
		return
	}

	s.Enqueue(message)
}
