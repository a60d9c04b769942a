// Package selection holds the target/subtarget choice made in the UI and
// notifies subscribers whenever it changes.
package selection

import (
	"errors"
	"fmt"
	"sync"

	"openwrt-build/internal/toh"
)

type Phase int

const (
	NoSelection Phase = iota
	TargetSelected
	SubtargetSelected
)

func (p Phase) String() string {
	switch p {
	case NoSelection:
		return "no selection"
	case TargetSelected:
		return "target selected"
	case SubtargetSelected:
		return "subtarget selected"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var ErrNoCatalog = errors.New("hardware table not loaded")

// Snapshot is a copy of the selection and everything derived from it.
type Snapshot struct {
	Phase      Phase
	Target     string
	Subtarget  string
	Targets    []string
	Subtargets []string
	Info       toh.Record
	Devices    []toh.Record
	Err        error
}

type State struct {
	mu      sync.Mutex
	catalog *toh.Catalog
	snap    Snapshot
	nextID  int
	subs    map[int]func(Snapshot)
	order   []int
}

func New() *State {
	return &State{subs: make(map[int]func(Snapshot))}
}

// Subscribe registers fn to be called after every change. The returned
// function removes the subscription.
func (s *State) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		for i, existing := range s.order {
			if existing == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// SetCatalog replaces the catalog and clears the selection.
func (s *State) SetCatalog(catalog *toh.Catalog) {
	s.mu.Lock()
	s.catalog = catalog
	s.snap = Snapshot{
		Phase:   NoSelection,
		Targets: catalog.Targets(),
	}
	s.mu.Unlock()

	s.publish()
}

// SelectTarget selects target and moves the subtarget to the first one
// available for it.
func (s *State) SelectTarget(target string) error {
	s.mu.Lock()
	err := s.selectTargetLocked(target)
	s.mu.Unlock()

	s.publish()
	return err
}

func (s *State) SelectSubtarget(subtarget string) error {
	s.mu.Lock()
	err := s.selectSubtargetLocked(subtarget)
	s.mu.Unlock()

	s.publish()
	return err
}

// Restore reselects a previously saved pair. Values no longer present in the
// catalog fall back to the first target and its first subtarget.
func (s *State) Restore(target, subtarget string) error {
	s.mu.Lock()
	err := s.restoreLocked(target, subtarget)
	s.mu.Unlock()

	s.publish()
	return err
}

func (s *State) restoreLocked(target, subtarget string) error {
	if s.catalog == nil {
		s.snap.Err = ErrNoCatalog
		return ErrNoCatalog
	}
	targets := s.snap.Targets
	if len(targets) == 0 {
		s.snap.Err = toh.ErrEmptyResult
		return toh.ErrEmptyResult
	}
	if !contains(targets, target) {
		target = targets[0]
	}
	if err := s.selectTargetLocked(target); err != nil {
		return err
	}
	if subtarget != "" && subtarget != s.snap.Subtarget && contains(s.snap.Subtargets, subtarget) {
		return s.selectSubtargetLocked(subtarget)
	}
	return nil
}

func (s *State) selectTargetLocked(target string) error {
	if s.catalog == nil {
		s.snap.Err = ErrNoCatalog
		return ErrNoCatalog
	}

	s.snap.Phase = TargetSelected
	s.snap.Target = target
	s.snap.Subtarget = ""
	s.snap.Info = nil
	s.snap.Devices = nil
	s.snap.Err = nil

	subtargets, err := s.catalog.Subtargets(target)
	s.snap.Subtargets = subtargets
	if err != nil {
		s.snap.Err = err
		return err
	}

	return s.selectSubtargetLocked(subtargets[0])
}

func (s *State) selectSubtargetLocked(subtarget string) error {
	if s.catalog == nil {
		s.snap.Err = ErrNoCatalog
		return ErrNoCatalog
	}
	if s.snap.Phase == NoSelection {
		err := fmt.Errorf("select a target before subtarget %q: %w", subtarget, toh.ErrNotFound)
		s.snap.Err = err
		return err
	}

	info, err := s.catalog.Info(s.snap.Target, subtarget)
	if err != nil {
		s.snap.Err = err
		return err
	}

	s.snap.Phase = SubtargetSelected
	s.snap.Subtarget = subtarget
	s.snap.Info = info
	s.snap.Devices = s.catalog.Devices(s.snap.Target, subtarget)
	s.snap.Err = nil
	return nil
}

func (s *State) publish() {
	s.mu.Lock()
	snap := s.copyLocked()
	subs := make([]func(Snapshot), 0, len(s.order))
	for _, id := range s.order {
		subs = append(subs, s.subs[id])
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

func (s *State) copyLocked() Snapshot {
	snap := s.snap
	snap.Targets = append([]string(nil), s.snap.Targets...)
	snap.Subtargets = append([]string(nil), s.snap.Subtargets...)
	if s.snap.Info != nil {
		snap.Info = make(toh.Record, len(s.snap.Info))
		for key, value := range s.snap.Info {
			snap.Info[key] = value
		}
	}
	snap.Devices = append([]toh.Record(nil), s.snap.Devices...)
	return snap
}

func contains(values []string, want string) bool {
	for _, value := range values {
		if value == want {
			return true
		}
	}
	return false
}
