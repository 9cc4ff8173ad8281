package agent

import (
	"context"

	"github.com/abhiabhi150614/edu-ai-pro/core"
)

// turnRequest is one queued turn. The reply channel is buffered so the
// actor never blocks on a caller that gave up.
type turnRequest struct {
	ctx     context.Context
	message string
	reply   chan turnReply
}

type turnReply struct {
	text string
	err  error
}

// session is the per-user actor. A single goroutine drains the mailbox, so
// turns for one user are serialized without locks around turn state.
type session struct {
	userID  string
	agent   *Agent
	mailbox chan turnRequest
	done    chan struct{}
}

func newSession(userID string, a *Agent) *session {
	s := &session{
		userID:  userID,
		agent:   a,
		mailbox: make(chan turnRequest, a.opts.MailboxSize),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *session) run() {
	for {
		select {
		case req := <-s.mailbox:
			s.serve(req)
		case <-s.done:
			// Drain whatever is queued so no caller hangs.
			for {
				select {
				case req := <-s.mailbox:
					req.reply <- turnReply{err: core.ValidationErrorf("session closed")}
				default:
					return
				}
			}
		}
	}
}

func (s *session) serve(req turnRequest) {
	// The caller may have gone away while this turn sat in the mailbox.
	if err := req.ctx.Err(); err != nil {
		req.reply <- turnReply{err: err}
		return
	}
	text, err := s.agent.processTurn(req.ctx, s.userID, req.message)
	req.reply <- turnReply{text: text, err: err}
}

// submit enqueues a turn and waits for its reply.
func (s *session) submit(ctx context.Context, message string) (string, error) {
	req := turnRequest{ctx: ctx, message: message, reply: make(chan turnReply, 1)}

	select {
	case s.mailbox <- req:
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.done:
		return "", core.ValidationErrorf("session closed")
	}

	select {
	case reply := <-req.reply:
		return reply.text, reply.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *session) stop() {
	close(s.done)
}
