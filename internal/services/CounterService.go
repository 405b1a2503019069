package services

import (
	"counterd/internal/models"
	"fmt"
	"github.com/google/uuid"
	"sync"
)

const DefaultChannel = models.DefaultChannel

// SnapshotPersister is the durable side of the counter store.
type SnapshotPersister interface {
	Load() (*models.Snapshot, error)
	Save(snapshot *models.Snapshot) error
}

type CounterServiceInterface interface {
	IncrementUninstallCount(channel, programName string) (*models.UninstallRequest, error)
	GetUninstallRequest(channel, programName string) (*models.UninstallRequest, bool, error)
	GetAllUninstallRequests(channel string) ([]*models.UninstallRequest, error)
	ResetAllRequests(channel string) error
	DeleteRequest(channel, programName string) (bool, error)

	GetBoss(channel, name string) (*models.Boss, bool, error)
	GetActiveBoss(channel string) (*models.Boss, bool, error)
	UpsertBoss(channel, name string) (*models.Boss, error)
	IncrementDeaths(channel, bossName string) (*models.Boss, error)
	SetDeaths(channel, bossName string, count int) (*models.Boss, error)
	MarkBeaten(channel, bossName string) (*models.Boss, error)
	GetAllBosses(channel string) ([]*models.Boss, error)
	TotalDeaths(channel string) (int, error)

	GetChannels() ([]*models.Channel, error)
	GetChannel(id string) (*models.Channel, bool, error)
	UpdateChannelName(id, name string) (*models.Channel, error)
	ResetChannelDeaths(id string) error

	Preload() error
	Revision() uint64
}

// CounterService keeps the whole snapshot resident. A committed snapshot is
// never modified; mutations work on a clone that replaces it once saved.
type CounterService struct {
	mu        sync.RWMutex
	persister SnapshotPersister
	snapshot  *models.Snapshot
	revision  uint64
	newID     func() string
}

func NewCounterService(persister SnapshotPersister) CounterServiceInterface {
	return &CounterService{
		persister: persister,
		newID:     uuid.NewString,
	}
}

func (cs *CounterService) loadLocked() error {
	if cs.snapshot != nil {
		return nil
	}
	snap, err := cs.persister.Load()
	if err != nil {
		return fmt.Errorf("%w: load snapshot: %w", models.ErrPersistence, err)
	}
	if snap == nil {
		snap = models.NewSnapshot()
	}
	snap.Repair()
	cs.snapshot = snap
	return nil
}

// current returns the committed snapshot, loading it on first use.
func (cs *CounterService) current() (*models.Snapshot, error) {
	cs.mu.RLock()
	snap := cs.snapshot
	cs.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if err := cs.loadLocked(); err != nil {
		return nil, err
	}
	return cs.snapshot, nil
}

// mutate runs fn against a private copy of the snapshot. When fn reports a
// change the copy is saved and then committed; nothing is committed if fn
// or the save fails.
func (cs *CounterService) mutate(fn func(snap *models.Snapshot) (bool, error)) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.loadLocked(); err != nil {
		return err
	}

	next := cs.snapshot.Clone()
	changed, err := fn(next)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := cs.persister.Save(next); err != nil {
		return fmt.Errorf("%w: save snapshot: %w", models.ErrPersistence, err)
	}
	cs.snapshot = next
	cs.revision++
	return nil
}

func (cs *CounterService) Preload() error {
	_, err := cs.current()
	return err
}

func (cs *CounterService) Revision() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.revision
}

func (cs *CounterService) ensureChannel(snap *models.Snapshot, id string) bool {
	if _, ok := snap.Channels[id]; ok {
		return false
	}
	snap.Channels[id] = &models.Channel{
		ID:          id,
		DisplayName: id,
		IsDefault:   len(snap.Channels) == 0,
		Seq:         snap.TakeSeq(),
	}
	return true
}

func (cs *CounterService) upsertBossIn(snap *models.Snapshot, channel, name string) (*models.Boss, bool) {
	key := models.NormalizeName(name)
	bosses := snap.Bosses[channel]
	if bosses == nil {
		bosses = make(map[string]*models.Boss)
		snap.Bosses[channel] = bosses
	}
	if boss, ok := bosses[key]; ok {
		return boss, false
	}
	boss := &models.Boss{
		ID:   cs.newID(),
		Name: models.DisplayName(name),
		Seq:  snap.TakeSeq(),
	}
	bosses[key] = boss
	return boss, true
}

// Uninstall requests

func (cs *CounterService) IncrementUninstallCount(channel, programName string) (*models.UninstallRequest, error) {
	key := models.NormalizeName(programName)
	if key == "" {
		return nil, fmt.Errorf("%w: program name is required", models.ErrInvalidInput)
	}
	ch := models.ChannelKey(channel)

	var result *models.UninstallRequest
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		cs.ensureChannel(snap, ch)
		reqs := snap.UninstallRequests[ch]
		if reqs == nil {
			reqs = make(map[string]*models.UninstallRequest)
			snap.UninstallRequests[ch] = reqs
		}
		req, ok := reqs[key]
		if ok {
			req.Count++
		} else {
			req = &models.UninstallRequest{
				ID:          cs.newID(),
				ProgramName: models.DisplayName(programName),
				Count:       1,
				Seq:         snap.TakeSeq(),
			}
			reqs[key] = req
		}
		result = req.Copy()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (cs *CounterService) GetUninstallRequest(channel, programName string) (*models.UninstallRequest, bool, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, false, err
	}
	req, ok := snap.UninstallRequests[models.ChannelKey(channel)][models.NormalizeName(programName)]
	if !ok {
		return nil, false, nil
	}
	return req.Copy(), true, nil
}

func (cs *CounterService) GetAllUninstallRequests(channel string) ([]*models.UninstallRequest, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, err
	}
	return snap.RankedRequests(models.ChannelKey(channel)), nil
}

func (cs *CounterService) ResetAllRequests(channel string) error {
	ch := models.ChannelKey(channel)
	return cs.mutate(func(snap *models.Snapshot) (bool, error) {
		created := cs.ensureChannel(snap, ch)
		if len(snap.UninstallRequests[ch]) == 0 {
			return created, nil
		}
		snap.UninstallRequests[ch] = make(map[string]*models.UninstallRequest)
		return true, nil
	})
}

func (cs *CounterService) DeleteRequest(channel, programName string) (bool, error) {
	key := models.NormalizeName(programName)
	if key == "" {
		return false, nil
	}
	ch := models.ChannelKey(channel)

	var deleted bool
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		reqs := snap.UninstallRequests[ch]
		if _, ok := reqs[key]; !ok {
			return false, nil
		}
		delete(reqs, key)
		deleted = true
		return true, nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// Bosses

func (cs *CounterService) GetBoss(channel, name string) (*models.Boss, bool, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, false, err
	}
	boss, ok := snap.Bosses[models.ChannelKey(channel)][models.NormalizeName(name)]
	if !ok {
		return nil, false, nil
	}
	return boss.Copy(), true, nil
}

func (cs *CounterService) GetActiveBoss(channel string) (*models.Boss, bool, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, false, err
	}
	boss := snap.ActiveBoss(models.ChannelKey(channel))
	if boss == nil {
		return nil, false, nil
	}
	return boss.Copy(), true, nil
}

func (cs *CounterService) UpsertBoss(channel, name string) (*models.Boss, error) {
	if models.NormalizeName(name) == "" {
		return nil, fmt.Errorf("%w: boss name is required", models.ErrInvalidInput)
	}
	ch := models.ChannelKey(channel)

	var result *models.Boss
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		changed := cs.ensureChannel(snap, ch)
		boss, created := cs.upsertBossIn(snap, ch, name)
		result = boss.Copy()
		return changed || created, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// IncrementDeaths adds one death to the named boss, creating it if needed,
// or to the active boss when bossName is blank. A beaten boss keeps its
// frozen final count.
func (cs *CounterService) IncrementDeaths(channel, bossName string) (*models.Boss, error) {
	ch := models.ChannelKey(channel)
	named := models.NormalizeName(bossName) != ""

	var result *models.Boss
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		var boss *models.Boss
		if named {
			cs.ensureChannel(snap, ch)
			boss, _ = cs.upsertBossIn(snap, ch, bossName)
		} else {
			boss = snap.ActiveBoss(ch)
			if boss == nil {
				return false, fmt.Errorf("%w in channel %q", models.ErrNoActiveBoss, ch)
			}
		}
		boss.DeathCount++
		result = boss.Copy()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (cs *CounterService) SetDeaths(channel, bossName string, count int) (*models.Boss, error) {
	if models.NormalizeName(bossName) == "" {
		return nil, fmt.Errorf("%w: boss name is required", models.ErrInvalidInput)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: death count must not be negative, got %d", models.ErrInvalidInput, count)
	}
	ch := models.ChannelKey(channel)

	var result *models.Boss
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		cs.ensureChannel(snap, ch)
		boss, _ := cs.upsertBossIn(snap, ch, bossName)
		boss.DeathCount = count
		result = boss.Copy()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MarkBeaten never creates a boss. Marking an already beaten boss returns
// it unchanged.
func (cs *CounterService) MarkBeaten(channel, bossName string) (*models.Boss, error) {
	ch := models.ChannelKey(channel)
	key := models.NormalizeName(bossName)

	var result *models.Boss
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		var boss *models.Boss
		if key != "" {
			boss = snap.Bosses[ch][key]
			if boss == nil {
				return false, fmt.Errorf("%w: boss %q in channel %q", models.ErrNotFound, models.DisplayName(bossName), ch)
			}
		} else {
			boss = snap.ActiveBoss(ch)
			if boss == nil {
				return false, fmt.Errorf("%w in channel %q", models.ErrNoActiveBoss, ch)
			}
		}
		changed := boss.Finalize()
		result = boss.Copy()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (cs *CounterService) GetAllBosses(channel string) ([]*models.Boss, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, err
	}
	return snap.SortedBosses(models.ChannelKey(channel)), nil
}

func (cs *CounterService) TotalDeaths(channel string) (int, error) {
	snap, err := cs.current()
	if err != nil {
		return 0, err
	}
	total := 0
	for _, b := range snap.Bosses[models.ChannelKey(channel)] {
		total += b.DeathCount
	}
	return total, nil
}

// Channels

func (cs *CounterService) GetChannels() ([]*models.Channel, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, err
	}
	return snap.SortedChannels(), nil
}

func (cs *CounterService) GetChannel(id string) (*models.Channel, bool, error) {
	snap, err := cs.current()
	if err != nil {
		return nil, false, err
	}
	ch, ok := snap.Channels[models.ChannelKey(id)]
	if !ok {
		return nil, false, nil
	}
	return ch.Copy(), true, nil
}

func (cs *CounterService) UpdateChannelName(id, name string) (*models.Channel, error) {
	display := models.DisplayName(name)
	if display == "" {
		return nil, fmt.Errorf("%w: display name is required", models.ErrInvalidInput)
	}
	key := models.ChannelKey(id)

	var result *models.Channel
	err := cs.mutate(func(snap *models.Snapshot) (bool, error) {
		created := cs.ensureChannel(snap, key)
		ch := snap.Channels[key]
		changed := created || ch.DisplayName != display
		ch.DisplayName = display
		result = ch.Copy()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (cs *CounterService) ResetChannelDeaths(id string) error {
	key := models.ChannelKey(id)
	return cs.mutate(func(snap *models.Snapshot) (bool, error) {
		created := cs.ensureChannel(snap, key)
		if len(snap.Bosses[key]) == 0 {
			return created, nil
		}
		snap.Bosses[key] = make(map[string]*models.Boss)
		return true, nil
	})
}
