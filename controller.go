package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"ghosttab/editor"
	"ghosttab/engine"
	"ghosttab/logger"
	"ghosttab/text"
	"ghosttab/types"
	"ghosttab/utils"

	"github.com/neovim/go-client/nvim"
)

// EventType identifies an event sent by the editor plugin.
type EventType string

const (
	EventTextChanged       EventType = "text_changed"
	EventTextChangeTimeout EventType = "text_change_timeout"
	EventTab               EventType = "tab"
	EventEsc               EventType = "esc"
	EventCycleNext         EventType = "cycle_next"
	EventCyclePrev         EventType = "cycle_prev"
	EventInsertLeave       EventType = "insert_leave"
	EventCompletionReady   EventType = "completion_ready"
	EventCompletionError   EventType = "completion_error"
)

// Event is one unit of work for the controller loop.
type Event struct {
	Type EventType
	Data any
}

// completionReady carries fetched candidates with the snapshot they were
// computed against.
type completionReady struct {
	snapshot   *types.EditorSnapshot
	candidates []*types.CompletionCandidate
}

// Controller serializes all engine calls for one editor connection. The
// engine itself is synchronous and single-writer per document (the event
// loop is that single writer); fetches run concurrently and deliver their
// candidates back through the event channel.
type Controller struct {
	WorkspacePath string
	WorkspaceID   string

	eng      *engine.Engine
	provider types.Provider
	ed       *editor.Editor
	config   Config

	eventChan       chan Event
	textChangeTimer *time.Timer
	currentCancel   context.CancelFunc

	mainCtx    context.Context
	mainCancel context.CancelFunc

	// Per-file recent-edit history fed to the provider as context.
	diffHistories map[string][]*types.DiffEntry
	version       int
}

// NewController creates a controller with a fresh engine and session store.
func NewController(provider types.Provider, config Config) *Controller {
	workspacePath, err := os.Getwd()
	if err != nil {
		logger.Warn("error getting current directory, using home: %v", err)
		workspacePath = "~"
	}

	return &Controller{
		WorkspacePath: workspacePath,
		WorkspaceID:   fmt.Sprintf("%s-%d", workspacePath, os.Getpid()),
		eng:           engine.New(engine.NewSessionStore()),
		provider:      provider,
		config:        config,
		eventChan:     make(chan Event, 100),
		diffHistories: make(map[string][]*types.DiffEntry),
	}
}

// Start launches the event loop.
func (c *Controller) Start(ctx context.Context) {
	c.mainCtx, c.mainCancel = context.WithCancel(ctx)
	go c.eventLoop(c.mainCtx)
	logger.Info("controller started")
}

// Stop cancels in-flight work and stops the loop.
func (c *Controller) Stop() {
	if c.currentCancel != nil {
		c.currentCancel()
	}
	if c.mainCancel != nil {
		c.mainCancel()
	}
}

// SetNvim attaches a new editor connection and registers its event handler.
func (c *Controller) SetNvim(n *nvim.Nvim) {
	c.ed = editor.New(n, editor.Config{NsID: c.config.NsID})

	if err := n.RegisterHandler("ghosttab_event", func(n *nvim.Nvim, event string) {
		select {
		case c.eventChan <- Event{Type: EventType(event)}:
		case <-c.mainCtx.Done():
		}
	}); err != nil {
		logger.Error("error registering event handler: %v", err)
	}
}

func (c *Controller) eventLoop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event loop panic recovered: %v", r)
			c.eventLoop(c.mainCtx)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.eventChan:
			if !ok {
				return
			}
			c.handleEvent(event)
		}
	}
}

func (c *Controller) handleEvent(event Event) {
	logger.Debug("handle event: %v", event.Type)

	switch event.Type {
	case EventTextChanged:
		c.startTextChangeTimer()
	case EventTextChangeTimeout:
		c.requestCompletion()
	case EventTab:
		c.accept()
	case EventEsc, EventInsertLeave:
		c.reject()
	case EventCycleNext:
		c.cycle(1)
	case EventCyclePrev:
		c.cycle(-1)
	case EventCompletionReady:
		c.present(event.Data.(*completionReady))
	case EventCompletionError:
		if err, ok := event.Data.(error); ok && errors.Is(err, context.Canceled) {
			logger.Debug("completion canceled: %v", err)
		} else {
			logger.Error("completion error: %v", event.Data)
		}
	}
}

func (c *Controller) startTextChangeTimer() {
	if c.textChangeTimer != nil {
		c.textChangeTimer.Stop()
	}
	c.textChangeTimer = time.AfterFunc(
		time.Duration(c.config.TextChangeDebounce)*time.Millisecond,
		func() {
			select {
			case c.eventChan <- Event{Type: EventTextChangeTimeout}:
			case <-c.mainCtx.Done():
			}
		})
}

// requestCompletion snapshots the buffer and fetches candidates in the
// background. Cancelling only affects which candidates are ever delivered;
// it never interrupts an engine operation.
func (c *Controller) requestCompletion() {
	if c.ed == nil {
		return
	}

	snapshot, _, err := c.ed.SyncIn(c.WorkspacePath)
	if err != nil {
		logger.Error("error syncing buffer: %v", err)
		return
	}

	if c.currentCancel != nil {
		c.currentCancel()
	}
	ctx, cancel := context.WithTimeout(c.mainCtx,
		time.Duration(c.config.CompletionTimeout)*time.Millisecond)
	c.currentCancel = cancel

	path := c.ed.Path
	c.version++
	req := &types.CompletionRequest{
		WorkspacePath: c.WorkspacePath,
		WorkspaceID:   c.WorkspaceID,
		FilePath:      path,
		Lines:         snapshot.Lines,
		Version:       c.version,
		DiffHistory:   c.diffHistories[path],
		Cursor:        snapshot.Cursor,
	}

	go func() {
		defer cancel()

		candidates, err := c.provider.GetCompletions(ctx, req)
		if err != nil {
			select {
			case c.eventChan <- Event{Type: EventCompletionError, Data: err}:
			case <-c.mainCtx.Done():
			}
			return
		}

		select {
		case c.eventChan <- Event{Type: EventCompletionReady, Data: &completionReady{
			snapshot:   snapshot,
			candidates: candidates,
		}}:
		case <-c.mainCtx.Done():
		}
	}()
}

func (c *Controller) present(ready *completionReady) {
	res, err := c.eng.Present(c.ed.Path, ready.snapshot, ready.candidates)
	if err != nil {
		logger.Error("error presenting suggestion: %v", err)
		return
	}
	if res == nil {
		return
	}

	if err := c.ed.ApplyResult(res); err != nil {
		logger.Error("error applying suggestion: %v", err)
		// The buffer was not touched; drop the stale presentation.
		c.eng.Reject(c.ed.Path, ready.snapshot)
		return
	}

	if st, ok := c.eng.State(c.ed.Path); ok {
		c.ed.NotifyPresented(st.AnchorLine, st.InjectedLineCount, st.CurrentIndex, len(st.Candidates))
	}
}

func (c *Controller) accept() {
	snapshot, syncResult, err := c.syncForResolve()
	if err != nil {
		return
	}
	if syncResult.BufferChanged {
		// File switched with a stale presentation; drop it.
		c.eng.Reject(syncResult.OldPath, snapshot)
		return
	}

	st, ok := c.eng.State(c.ed.Path)
	if !ok {
		return
	}

	res, err := c.eng.Accept(c.ed.Path, snapshot)
	if err != nil || res == nil {
		if err != nil {
			logger.Error("error accepting suggestion: %v", err)
		}
		return
	}

	if err := c.ed.ApplyResult(res); err != nil {
		logger.Error("error applying accept: %v", err)
		return
	}
	c.ed.NotifyCleared()
	c.recordAcceptedEdit(&st, snapshot)
}

// recordAcceptedEdit appends the accepted change to the file's recent-edit
// history for future provider context.
func (c *Controller) recordAcceptedEdit(st *engine.PresentationState, snapshot *types.EditorSnapshot) {
	end := st.AnchorLine + st.InjectedLineCount
	if end > len(snapshot.Lines) {
		end = len(snapshot.Lines)
	}
	if st.AnchorLine >= end {
		return
	}
	injected := snapshot.Lines[st.AnchorLine:end]

	entries := text.ExtractDiffEntries(st.ReplacedLines, injected)
	if len(entries) == 0 {
		return
	}

	path := c.ed.Path
	history := append(c.diffHistories[path], entries...)
	if c.config.MaxContextTokens > 0 {
		history = utils.TrimDiffEntries(history, c.config.MaxContextTokens/2)
	}
	c.diffHistories[path] = history
}

func (c *Controller) reject() {
	snapshot, _, err := c.syncForResolve()
	if err != nil {
		return
	}

	res, err := c.eng.Reject(c.ed.Path, snapshot)
	if err != nil {
		logger.Error("error rejecting suggestion: %v", err)
		return
	}
	if res == nil {
		return
	}

	if err := c.ed.ApplyResult(res); err != nil {
		logger.Error("error applying reject: %v", err)
		return
	}
	c.ed.NotifyCleared()
}

func (c *Controller) cycle(delta int) {
	snapshot, _, err := c.syncForResolve()
	if err != nil {
		return
	}

	res, err := c.eng.Cycle(c.ed.Path, snapshot, delta)
	if err != nil {
		logger.Error("error cycling suggestion: %v", err)
		return
	}
	if res == nil {
		return
	}

	if err := c.ed.ApplyResult(res); err != nil {
		logger.Error("error applying cycle: %v", err)
		return
	}

	if st, ok := c.eng.State(c.ed.Path); ok {
		c.ed.NotifyPresented(st.AnchorLine, st.InjectedLineCount, st.CurrentIndex, len(st.Candidates))
	}
}

func (c *Controller) syncForResolve() (*types.EditorSnapshot, *editor.SyncInResult, error) {
	if c.ed == nil {
		return nil, nil, fmt.Errorf("no editor connection")
	}
	snapshot, syncResult, err := c.ed.SyncIn(c.WorkspacePath)
	if err != nil {
		logger.Error("error syncing buffer: %v", err)
		return nil, nil, err
	}
	return snapshot, syncResult, nil
}
