package moderation

import "github.com/ethereum/go-ethereum/common"

// Sets is the runtime, mutable view of the ban/mod address sets the Chat
// Aggregator loads once at startup and may grow (bans only) while running.
type Sets struct {
	Banned map[common.Address]struct{}
	Mods   map[common.Address]struct{}

	grown bool
}

func NewSets(banned, mods map[common.Address]struct{}) *Sets {
	if banned == nil {
		banned = make(map[common.Address]struct{})
	}
	if mods == nil {
		mods = make(map[common.Address]struct{})
	}
	return &Sets{Banned: banned, Mods: mods}
}

func (s *Sets) IsBanned(addr common.Address) bool {
	_, ok := s.Banned[addr]
	return ok
}

func (s *Sets) IsMod(addr common.Address) bool {
	_, ok := s.Mods[addr]
	return ok
}

// Ban adds addr to the ban set, recording that the set has grown since
// startup so the caller knows a republish is needed at shutdown.
func (s *Sets) Ban(addr common.Address) {
	if _, ok := s.Banned[addr]; ok {
		return
	}
	s.Banned[addr] = struct{}{}
	s.grown = true
}

// Grown reports whether Ban has added anything since the set was loaded.
func (s *Sets) Grown() bool { return s.grown }
