package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/fourrow-backend/internal/entity"
)

// memoryTally lives as long as the process; used by the terminal client and when no store is configured.
type memoryTally struct {
	mu    sync.Mutex
	tally entity.Tally
}

func NewMemoryTallyRepository() TallyRepository {
	return &memoryTally{}
}

func (that *memoryTally) IncrementWins(_ context.Context, player entity.Mark) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	switch player {
	case entity.PlayerX:
		that.tally.X++
	case entity.PlayerO:
		that.tally.O++
	default:
		return fmt.Errorf("%w: %q", ErrNotAPlayer, player)
	}

	return nil
}

func (that *memoryTally) Get(_ context.Context) (*entity.Tally, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	tally := that.tally

	return &tally, nil
}

func (that *memoryTally) Reset(_ context.Context) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.tally = entity.Tally{}

	return nil
}
