package memory

import (
	"context"
	"sync"

	masterdata "factoryline-cloud/internal/masterdata/domain"
)

// LineProvider is an in-memory configuration provider for tests and tools.
type LineProvider struct {
	mu        sync.RWMutex
	configs   map[string]masterdata.LineConfig
	schedules map[string]masterdata.ShiftSchedule
	groups    map[string][]string
}

// NewLineProvider constructs an empty provider.
func NewLineProvider() *LineProvider {
	return &LineProvider{
		configs:   make(map[string]masterdata.LineConfig),
		schedules: make(map[string]masterdata.ShiftSchedule),
		groups:    make(map[string][]string),
	}
}

// PutLine registers a line with its config and schedule.
func (p *LineProvider) PutLine(cfg masterdata.LineConfig, schedule masterdata.ShiftSchedule) {
	p.mu.Lock()
	p.configs[cfg.LineID] = cfg
	p.schedules[cfg.LineID] = schedule
	p.mu.Unlock()
}

// PutGroup registers a group.
func (p *LineProvider) PutGroup(groupID string, lineIDs ...string) {
	p.mu.Lock()
	p.groups[groupID] = append([]string(nil), lineIDs...)
	p.mu.Unlock()
}

// GetLineConfig returns a line config or ErrLineNotFound.
func (p *LineProvider) GetLineConfig(ctx context.Context, lineID string) (masterdata.LineConfig, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg, ok := p.configs[lineID]
	if !ok {
		return masterdata.LineConfig{}, masterdata.ErrLineNotFound
	}
	return cfg, nil
}

// GetShiftSchedule returns a line schedule or ErrLineNotFound.
func (p *LineProvider) GetShiftSchedule(ctx context.Context, lineID string) (masterdata.ShiftSchedule, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	if _, ok := p.configs[lineID]; !ok {
		return nil, masterdata.ErrLineNotFound
	}
	return p.schedules[lineID], nil
}

// GetLineGroup returns group members or ErrGroupNotFound.
func (p *LineProvider) GetLineGroup(ctx context.Context, groupID string) ([]string, error) {
	_ = ctx
	p.mu.RLock()
	defer p.mu.RUnlock()
	lines, ok := p.groups[groupID]
	if !ok {
		return nil, masterdata.ErrGroupNotFound
	}
	return append([]string(nil), lines...), nil
}
