// Package keeper is the engine behind the pet: it owns the application
// state, consumes tab events from the extension bridge, classifies and
// tracks tabs, decides when the pet prompts, nudges or celebrates, and
// archives the tabs the user lets go of.
//
// All state mutation happens on the single Run goroutine. The storage
// layer is read-modify-write, so funnelling every event through one
// loop is what keeps rule updates and prompt counters consistent.
package keeper

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/cherepashka123/browser-pet-companion/internal/applog"
	"github.com/cherepashka123/browser-pet-companion/internal/health"
	"github.com/cherepashka123/browser-pet-companion/internal/nests"
	"github.com/cherepashka123/browser-pet-companion/internal/prompt"
	"github.com/cherepashka123/browser-pet-companion/internal/rules"
	"github.com/cherepashka123/browser-pet-companion/internal/server"
	"github.com/cherepashka123/browser-pet-companion/internal/storage"
	"github.com/cherepashka123/browser-pet-companion/internal/types"
)

// Tab category suggestions below this are discarded outright.
const applyThreshold = 0.5

// Suggestions above this are applied silently during a health refresh,
// without going through the prompt gate.
const autoCategorizeThreshold = 0.7

// Privileged pages the engine never classifies or archives.
var privilegedPrefixes = []string{
	"chrome://", "chrome-extension://", "about:", "moz-extension://",
}

func isPrivileged(url string) bool {
	for _, p := range privilegedPrefixes {
		if strings.HasPrefix(url, p) {
			return true
		}
	}
	return false
}

// Sender is the outbound half of the extension bridge.
type Sender interface {
	Send(msg server.OutgoingMsg) error
	SendPetUpdate(id string, m types.HealthMetrics, badgeColor string) error
	Connected() bool
}

// Archiver stores closed tabs in the nest archive.
type Archiver interface {
	InsertArchiveItems(items []types.ArchiveItem) error
}

// Keeper runs the engine. Not safe for concurrent use; drive it from
// Run or call its methods from a single goroutine in tests.
type Keeper struct {
	store   storage.Store
	archive Archiver
	out     Sender
	now     func() time.Time
	rng     *rand.Rand

	state  types.AppState
	nextID int
}

// New loads the persisted application state and returns a Keeper
// ready to run.
func New(store storage.Store, archive Archiver, out Sender) (*Keeper, error) {
	state, err := storage.LoadAppState(store)
	if err != nil {
		return nil, fmt.Errorf("load app state: %w", err)
	}
	return &Keeper{
		store:   store,
		archive: archive,
		out:     out,
		now:     time.Now,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		state:   state,
	}, nil
}

func (k *Keeper) msgID() string {
	k.nextID++
	return fmt.Sprintf("k-%d", k.nextID)
}

func (k *Keeper) saveState() {
	if err := storage.SaveAppState(k.store, k.state); err != nil {
		applog.Error("keeper.save_state", err)
	}
}

// Run consumes messages until ctx is cancelled. Health is refreshed
// every minute and the daily digest is checked hourly, matching the
// cadence of the original extension.
func (k *Keeper) Run(ctx context.Context, msgs <-chan server.IncomingMsg) {
	healthTick := time.NewTicker(time.Minute)
	defer healthTick.Stop()
	digestTick := time.NewTicker(time.Hour)
	defer digestTick.Stop()

	k.RefreshHealth()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-msgs:
			if err := k.Handle(msg); err != nil {
				applog.Error("keeper.handle", err, "type", msg.Type)
			}
		case <-healthTick.C:
			k.RefreshHealth()
		case <-digestTick.C:
			k.CheckDigest()
		}
	}
}

// Handle processes one message from the extension.
func (k *Keeper) Handle(msg server.IncomingMsg) error {
	switch msg.Type {
	case server.MsgSnapshot:
		return k.handleSnapshot(msg)
	case server.MsgTabCreated:
		return k.handleTabCreated(msg)
	case server.MsgTabUpdated:
		return k.handleTabUpdated(msg)
	case server.MsgTabActivated:
		return k.handleTabActivated(msg.TabID)
	case server.MsgTabRemoved:
		return k.handleTabRemoved(msg.TabID)
	case server.MsgConfirmCategory:
		return k.handleConfirm(msg.TabID, types.CategoryID(msg.CategoryID))
	case server.MsgDenyCategory:
		return k.handleDeny(msg.TabID, types.CategoryID(msg.CategoryID))
	case server.MsgMuteDomain:
		return k.handleMute(msg.Domain)
	case server.MsgCloseTabs:
		return k.handleCloseTabs(msg)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func (k *Keeper) handleSnapshot(msg server.IncomingMsg) error {
	tabs, err := server.ParseSnapshot(msg, k.now())
	if err != nil {
		return err
	}

	live := make(map[int]bool, len(tabs))
	for _, tab := range tabs {
		live[tab.ID] = true
		if stored, ok, err := storage.LoadTab(k.store, tab.ID); err == nil && ok {
			tab.OpenedAt = stored.OpenedAt
			tab.ActiveMs = stored.ActiveMs
			tab.CategoryID = stored.CategoryID
			tab.CategoryConfidence = stored.CategoryConfidence
		}
		if err := storage.SaveTab(k.store, tab); err != nil {
			return err
		}
	}
	if err := storage.PruneTabs(k.store, live); err != nil {
		return err
	}

	applog.Info("keeper.snapshot", "tabs", len(tabs))
	k.RefreshHealth()
	return nil
}

func (k *Keeper) handleTabCreated(msg server.IncomingMsg) error {
	tab, err := server.ParseTab(msg.Tab, k.now())
	if err != nil {
		return err
	}
	tab.OpenedAt = k.now()
	tab.ActiveMs = 0
	if err := storage.SaveTab(k.store, tab); err != nil {
		return err
	}
	k.RefreshHealth()
	return nil
}

func (k *Keeper) handleTabUpdated(msg server.IncomingMsg) error {
	now := k.now()
	tab, err := server.ParseTab(msg.Tab, now)
	if err != nil {
		return err
	}
	tab.LastActiveAt = now

	if stored, ok, err := storage.LoadTab(k.store, tab.ID); err == nil && ok {
		tab.OpenedAt = stored.OpenedAt
		tab.ActiveMs = stored.ActiveMs
		tab.CategoryID = stored.CategoryID
		tab.CategoryConfidence = stored.CategoryConfidence
	}

	if tab.CategoryID == "" && !isPrivileged(tab.URL) {
		det := nests.Classify(tab, k.state.Categorization.DomainRules)
		if det.Confidence > applyThreshold && det.CategoryID != types.CatUnsorted {
			tab.CategoryID = det.CategoryID
			tab.CategoryConfidence = det.Confidence

			if prompt.ShouldPrompt(tab, k.state.Settings, &k.state.Categorization, now) {
				k.sendCategoryPrompt(tab, det.CategoryID)
			}
			// ShouldPrompt mutates prompt bookkeeping either way.
			k.saveState()
		}
	}

	if err := storage.SaveTab(k.store, tab); err != nil {
		return err
	}
	k.RefreshHealth()
	return nil
}

func (k *Keeper) sendCategoryPrompt(tab *types.Tab, categoryID types.CategoryID) {
	rules.RecordPrompt(&k.state.Categorization, tab.Domain, k.now())
	err := k.out.Send(server.OutgoingMsg{
		ID:         k.msgID(),
		Action:     server.ActionCategoryPrompt,
		TabID:      tab.ID,
		Domain:     tab.Domain,
		CategoryID: string(categoryID),
		Message:    prompt.Message(categoryID, k.rng),
	})
	if err != nil {
		applog.Error("keeper.prompt", err)
	}
}

func (k *Keeper) handleTabActivated(tabID int) error {
	now := k.now()
	tab, ok, err := storage.LoadTab(k.store, tabID)
	if err != nil || !ok {
		return err
	}
	if !tab.LastActiveAt.IsZero() && now.After(tab.LastActiveAt) {
		tab.ActiveMs += now.Sub(tab.LastActiveAt).Milliseconds()
	}
	tab.LastActiveAt = now
	if err := storage.SaveTab(k.store, tab); err != nil {
		return err
	}
	k.RefreshHealth()
	return nil
}

func (k *Keeper) handleTabRemoved(tabID int) error {
	if err := storage.RemoveTab(k.store, tabID); err != nil {
		return err
	}
	k.RefreshHealth()
	return nil
}

func (k *Keeper) handleConfirm(tabID int, categoryID types.CategoryID) error {
	tab, ok, err := storage.LoadTab(k.store, tabID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("confirm: unknown tab %d", tabID)
	}

	tab.CategoryID = categoryID
	tab.CategoryConfidence = 0.9
	if err := storage.SaveTab(k.store, tab); err != nil {
		return err
	}

	rules.Reinforce(&k.state.Categorization, tab.Domain, categoryID, true, k.now())
	k.saveState()
	applog.Info("keeper.confirm", "domain", tab.Domain, "category", string(categoryID))
	return nil
}

func (k *Keeper) handleDeny(tabID int, categoryID types.CategoryID) error {
	tab, ok, err := storage.LoadTab(k.store, tabID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("deny: unknown tab %d", tabID)
	}

	rules.Reinforce(&k.state.Categorization, tab.Domain, categoryID, false, k.now())
	k.saveState()
	applog.Info("keeper.deny", "domain", tab.Domain, "category", string(categoryID))
	return nil
}

func (k *Keeper) handleMute(domain string) error {
	rules.MuteDomain(&k.state.Settings, domain)
	k.saveState()
	applog.Info("keeper.mute", "domain", domain)
	return nil
}

func (k *Keeper) handleCloseTabs(msg server.IncomingMsg) error {
	tabIDs := msg.TabIDs
	now := k.now()
	var items []types.ArchiveItem
	for _, id := range tabIDs {
		tab, ok, err := storage.LoadTab(k.store, id)
		if err != nil || !ok {
			continue
		}
		if isPrivileged(tab.URL) {
			continue
		}
		items = append(items, types.ArchiveItem{
			ID:         fmt.Sprintf("nest_%d_%d", id, now.UnixMilli()),
			TabID:      id,
			URL:        tab.URL,
			Title:      titleOr(tab.Title, "Untitled"),
			Domain:     tab.Domain,
			Favicon:    tab.Favicon,
			ClosedAt:   now,
			CategoryID: tab.CategoryID,
		})
	}

	if len(items) > 0 {
		if err := k.archive.InsertArchiveItems(items); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
		k.recordCleanup(len(items))
	}

	if err := k.out.Send(server.OutgoingMsg{
		ID:     k.msgID(),
		Action: server.ActionCloseTabs,
		TabIDs: tabIDs,
	}); err != nil {
		applog.Error("keeper.close_tabs", err)
	}

	for _, id := range tabIDs {
		if err := storage.RemoveTab(k.store, id); err != nil {
			applog.Error("keeper.remove_tab", err)
		}
	}

	applog.Info("keeper.close_tabs", "requested", len(tabIDs), "archived", len(items))
	k.RefreshHealth()
	return nil
}

func (k *Keeper) recordCleanup(count int) {
	if k.state.CleanupCounts == nil {
		k.state.CleanupCounts = make(map[string]int)
	}
	today := k.now().Format("2006-01-02")
	k.state.CleanupCounts[today] += count
	k.saveState()
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}

// RefreshHealth recomputes the health metrics from the tracked tabs,
// auto-categorizes what the learned rules now cover, caches the
// emotion and pushes a pet update (plus any due nudge) to the
// extension.
func (k *Keeper) RefreshHealth() {
	tabs, err := storage.ListTabs(k.store)
	if err != nil {
		applog.Error("keeper.list_tabs", err)
		return
	}

	if len(k.state.Categorization.DomainRules) > 0 {
		for _, tab := range tabs {
			if tab.CategoryID != "" || isPrivileged(tab.URL) {
				continue
			}
			det := nests.Classify(tab, k.state.Categorization.DomainRules)
			if det.Confidence > autoCategorizeThreshold && det.CategoryID != types.CatUnsorted {
				tab.CategoryID = det.CategoryID
				tab.CategoryConfidence = det.Confidence
				if err := storage.SaveTab(k.store, tab); err != nil {
					applog.Error("keeper.auto_categorize", err)
				}
			}
		}
	}

	m := health.Analyze(tabs, k.now())
	if m.Emotion != k.state.LastEmotion {
		k.state.LastEmotion = m.Emotion
		k.saveState()
	}

	if err := k.out.SendPetUpdate(k.msgID(), m, health.EmotionColor(m.Emotion)); err != nil {
		applog.Error("keeper.pet_update", err)
	}

	if k.state.Preferences.ShowNudges {
		k.checkNudge(m)
	}
}

// checkNudge sends at most one nudge per refresh.
func (k *Keeper) checkNudge(m types.HealthMetrics) {
	if msg := health.Nudge(m); msg != "" {
		k.sendNudge(msg)
	}
}

func (k *Keeper) sendNudge(message string) {
	err := k.out.Send(server.OutgoingMsg{
		ID:      k.msgID(),
		Action:  server.ActionNudge,
		Message: message,
	})
	if err != nil {
		applog.Error("keeper.nudge", err)
	}
}

// CheckDigest sends the daily cleanup digest at most once per day, and
// only when yesterday saw any cleanup at all.
func (k *Keeper) CheckDigest() {
	now := k.now()
	today := now.Format("2006-01-02")
	if k.state.LastDigestDate == today || !k.state.Preferences.ShowDailyDigest {
		return
	}

	yesterday := now.AddDate(0, 0, -1).Format("2006-01-02")
	count := k.state.CleanupCounts[yesterday]
	if count == 0 {
		return
	}

	k.sendNudge(fmt.Sprintf("Your pet is proud! You cleaned %d tabs yesterday.", count))
	k.state.LastDigestDate = today
	k.saveState()
}

// State returns a copy of the current application state.
func (k *Keeper) State() types.AppState {
	return k.state
}
