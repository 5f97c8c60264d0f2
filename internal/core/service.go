package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Rorical/OmniMind/internal/eventbus"
	"github.com/Rorical/OmniMind/internal/models"
	"github.com/Rorical/OmniMind/internal/session"
	"github.com/Rorical/OmniMind/internal/wallet"
)

var ErrPromptDismissed = errors.New("passphrase prompt dismissed")

// Banner describes the active profile for the welcome lines.
type Banner struct {
	Profile    string
	Configured bool
	CoreURL    string
}

type passphraseAnswer struct {
	passphrase string
	approved   bool
}

// DashboardService runs controller operations on behalf of the UI and pushes
// every state change back over the event bus.
type DashboardService struct {
	ctrl     *session.Controller
	eventBus *eventbus.EventBus
	log      *ActivityLog
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	pushMu   sync.Mutex

	pendingPrompts map[string]chan passphraseAnswer
	promptMutex    sync.Mutex
}

func NewDashboardService(ctrl *session.Controller, eb *eventbus.EventBus, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	service := &DashboardService{
		ctrl:           ctrl,
		eventBus:       eb,
		log:            NewActivityLog(),
		logger:         logger,
		ctx:            ctx,
		cancel:         cancel,
		pendingPrompts: make(map[string]chan passphraseAnswer),
	}
	ctrl.OnChange(func(session.Snapshot) { service.pushStateToUI() })
	return service
}

// Start runs the core logic in goroutines: the UI event loop, the wallet
// event subscription and the startup account discovery.
func (s *DashboardService) Start(banner Banner) {
	s.addWelcomeMessages(banner)
	s.pushStateToUI()

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.eventLoop()
	}()
	go func() {
		defer s.wg.Done()
		if err := s.ctrl.Run(s.ctx); err != nil {
			s.logger.Error("wallet subscription ended", "err", err)
			s.log.Add(models.Failure, "Wallet event subscription ended: "+err.Error())
			s.pushStateToUI()
		}
	}()
	s.spawn(func(ctx context.Context) session.Outcome {
		return s.ctrl.Init(ctx)
	})
}

// Stop cancels in-flight operations and waits for them to return.
func (s *DashboardService) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *DashboardService) Messages() []models.Message {
	return s.log.Messages()
}

func (s *DashboardService) eventLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventBus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *DashboardService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.ConnectEvent:
		s.spawn(s.ctrl.Connect)
	case eventbus.DisconnectEvent:
		s.spawn(s.ctrl.Disconnect)
	case eventbus.RefreshBalanceEvent:
		s.spawn(s.ctrl.RefreshBalance)
	case eventbus.TransferEvent:
		s.spawn(func(ctx context.Context) session.Outcome {
			out := s.ctrl.Transfer(ctx, e.To, e.Amount)
			if out.Cleared {
				s.send(eventbus.TransferClearedEvent{})
			}
			return out
		})
	case eventbus.SendCommandEvent:
		if strings.TrimSpace(e.Raw) != "" {
			s.log.Add(models.Command, e.Raw)
			s.pushStateToUI()
		}
		s.spawn(func(ctx context.Context) session.Outcome {
			out := s.ctrl.SendCommand(ctx, e.Raw)
			if out.Cleared {
				s.send(eventbus.CommandClearedEvent{})
			}
			return out
		})
	case eventbus.PassphraseResponseEvent:
		s.handlePassphraseResponse(e)
	}
}

// spawn runs op in its own goroutine so slow operations never hold up the
// event loop; outcomes land in whatever order they complete.
func (s *DashboardService) spawn(op func(ctx context.Context) session.Outcome) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		out := op(s.ctx)
		if s.ctx.Err() != nil {
			return
		}
		if !out.OK() {
			s.logger.Debug("operation finished with error", "message", out.Message, "err", out.Err)
		}
		s.log.RecordOutcome(out)
		s.pushStateToUI()
	}()
}

// pushStateToUI sends the latest snapshot, not the one that triggered the
// push, so a late listener call cannot roll the UI back. Log entries of a
// failed push ride along with the next one.
func (s *DashboardService) pushStateToUI() {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	pending := s.log.Pending()
	if s.send(eventbus.StateUpdateEvent{Snapshot: s.ctrl.Snapshot(), Messages: pending}) {
		s.log.MarkSent(len(pending))
	}
}

func (s *DashboardService) send(event eventbus.CoreEvent) bool {
	if err := s.eventBus.SendToUI(event); err != nil {
		s.logger.Warn("sending event to UI", "event", fmt.Sprintf("%T", event), "err", err)
		return false
	}
	return true
}

func (s *DashboardService) addWelcomeMessages(banner Banner) {
	s.log.Add(models.Program, "-- OMNIMIND --")
	if banner.Configured {
		s.log.Add(models.Program, fmt.Sprintf("Active Profile: %s [OK]", banner.Profile))
	} else {
		s.log.Add(models.Program, fmt.Sprintf("Active Profile: %s [NOT CONFIGURED]", banner.Profile))
		s.log.Add(models.Program, "Run: omnimind profile edit "+banner.Profile)
	}
	if banner.CoreURL != "" {
		s.log.Add(models.Program, "OmniMind Core: "+banner.CoreURL)
	}
	s.log.Add(models.Program, "Controls: Ctrl+O connect, Ctrl+D disconnect, Ctrl+R refresh, Tab switch field, Ctrl+C exit")
}

// ApproveAccount asks the UI for the account's keystore passphrase and
// blocks until the user answers or ctx ends.
func (s *DashboardService) ApproveAccount(ctx context.Context, account string) (string, error) {
	id := uuid.NewString()
	answers := make(chan passphraseAnswer, 1)

	s.promptMutex.Lock()
	s.pendingPrompts[id] = answers
	s.promptMutex.Unlock()
	defer func() {
		s.promptMutex.Lock()
		delete(s.pendingPrompts, id)
		s.promptMutex.Unlock()
	}()

	if err := s.eventBus.SendToUI(eventbus.PassphraseRequestEvent{ID: id, Account: account}); err != nil {
		return "", fmt.Errorf("request passphrase: %w", err)
	}

	select {
	case answer := <-answers:
		if !answer.approved {
			return "", ErrPromptDismissed
		}
		return answer.passphrase, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	}
}

func (s *DashboardService) handlePassphraseResponse(response eventbus.PassphraseResponseEvent) {
	s.promptMutex.Lock()
	answers, exists := s.pendingPrompts[response.ID]
	s.promptMutex.Unlock()

	if !exists {
		s.logger.Debug("passphrase response for unknown prompt", "id", response.ID)
		return
	}
	select {
	case answers <- passphraseAnswer{passphrase: response.Passphrase, approved: response.Approved}:
	default:
	}
}

var _ wallet.Approver = (*DashboardService)(nil)
