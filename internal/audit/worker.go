package audit

import "context"

// Worker drains queued audit events into a sink. Slow destinations (message
// brokers, exporters) run behind a ChannelSink so the request path never
// waits on them.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

// ChannelSink queues events for a Worker. The primary store has already
// accepted the event by the time a sink sees it, so a full queue drops the
// event rather than stall the request.
type ChannelSink struct {
	outbox chan<- Event
}

func NewChannelSink(outbox chan<- Event) *ChannelSink {
	return &ChannelSink{outbox: outbox}
}

func (c *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case c.outbox <- event:
	default:
	}
	return nil
}
