package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/smallbiznis/hookup/internal/clock"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"github.com/smallbiznis/hookup/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	new  func(t *testing.T) hookupdomain.Repository
}

func backends() []backend {
	return []backend{
		{
			name: "memory",
			new: func(t *testing.T) hookupdomain.Repository {
				return NewMemory()
			},
		},
		{
			name: "gorm",
			new: func(t *testing.T) hookupdomain.Repository {
				t.Helper()
				conn, err := db.NewTest()
				require.NoError(t, err)
				require.NoError(t, conn.AutoMigrate(&Record{}))
				return New(conn, clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
			},
		},
	}
}

func newHookup(t *testing.T, name string, typ hookupdomain.ConsumptionType, endpoint string) *hookupdomain.Hookup {
	t.Helper()
	h, err := hookupdomain.NewHookup(name, typ, endpoint)
	require.NoError(t, err)
	return h
}

func TestRepositoryAdd(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			stove, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)
			assert.True(t, stove.ID.IsAssigned())
			assert.Equal(t, "Stove", stove.Name)
			assert.Equal(t, hookupdomain.ConsumptionUnitCubicMeter, stove.Consumption.Unit())

			found, err := repo.FindByID(ctx, stove.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, *stove, *found)
		})
	}
}

func TestRepositoryAddIgnoresCallerID(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			h := newHookup(t, "Sink", hookupdomain.ConsumptionTypeWater, "sink.local")
			preset := hookupdomain.NewID()
			h.ID = preset

			stored, err := repo.Add(ctx, h)
			require.NoError(t, err)
			assert.NotEqual(t, preset, stored.ID)
		})
	}
}

func TestRepositoryAddConflicts(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			_, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)

			_, err = repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeElectricity, "other.local"))
			assert.ErrorIs(t, err, hookupdomain.ErrNameConflict)
			assert.Contains(t, err.Error(), "Stove")

			_, err = repo.Add(ctx, newHookup(t, "Oven", hookupdomain.ConsumptionTypeElectricity, "stove.local"))
			assert.ErrorIs(t, err, hookupdomain.ErrEndpointConflict)
			assert.Contains(t, err.Error(), "stove.local")

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestRepositoryFindByID(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			found, err := repo.FindByID(ctx, hookupdomain.NewID())
			assert.NoError(t, err)
			assert.Nil(t, found)

			_, err = repo.FindByID(ctx, hookupdomain.ID{})
			assert.ErrorIs(t, err, hookupdomain.ErrInvalidID)
		})
	}
}

func TestRepositoryFindAll(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, all)

			_, err = repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)
			_, err = repo.Add(ctx, newHookup(t, "Sink", hookupdomain.ConsumptionTypeWater, "sink.local"))
			require.NoError(t, err)

			all, err = repo.FindAll(ctx)
			require.NoError(t, err)
			names := make([]string, 0, len(all))
			for _, h := range all {
				names = append(names, h.Name)
			}
			assert.ElementsMatch(t, []string{"Stove", "Sink"}, names)
		})
	}
}

func TestRepositoryUpdate(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			stove, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)
			sink, err := repo.Add(ctx, newHookup(t, "Sink", hookupdomain.ConsumptionTypeWater, "sink.local"))
			require.NoError(t, err)

			same, err := repo.Update(ctx, stove)
			require.NoError(t, err)
			assert.Equal(t, *stove, *same)

			changed := *stove
			changed.Name = "Big Stove"
			changed.Consumption = sink.Consumption
			updated, err := repo.Update(ctx, &changed)
			require.NoError(t, err)
			assert.Equal(t, "Big Stove", updated.Name)
			assert.Equal(t, "stove.local", updated.Endpoint)
			assert.Equal(t, hookupdomain.ConsumptionTypeGas, updated.Consumption.Type())

			clash := *stove
			clash.Name = "Sink"
			_, err = repo.Update(ctx, &clash)
			assert.ErrorIs(t, err, hookupdomain.ErrNameConflict)

			clash = *stove
			clash.Name = "Big Stove"
			clash.Endpoint = "sink.local"
			_, err = repo.Update(ctx, &clash)
			assert.ErrorIs(t, err, hookupdomain.ErrEndpointConflict)

			found, err := repo.FindByID(ctx, stove.ID)
			require.NoError(t, err)
			assert.Equal(t, "Big Stove", found.Name)
			assert.Equal(t, "stove.local", found.Endpoint)
		})
	}
}

func TestRepositoryUpdateMissing(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			ghost := newHookup(t, "Ghost", hookupdomain.ConsumptionTypeGas, "ghost.local")
			_, err := repo.Update(ctx, ghost)
			assert.ErrorIs(t, err, hookupdomain.ErrInvalidID)

			ghost.ID = hookupdomain.NewID()
			_, err = repo.Update(ctx, ghost)
			assert.ErrorIs(t, err, hookupdomain.ErrNotFound)
		})
	}
}

func TestRepositoryRemove(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			stove, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)

			require.NoError(t, repo.Remove(ctx, stove))

			found, err := repo.FindByID(ctx, stove.ID)
			assert.NoError(t, err)
			assert.Nil(t, found)

			assert.ErrorIs(t, repo.Remove(ctx, stove), hookupdomain.ErrNotFound)
			assert.ErrorIs(t, repo.Remove(ctx, &hookupdomain.Hookup{}), hookupdomain.ErrInvalidID)

			again, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)
			assert.NotEqual(t, stove.ID, again.ID)
		})
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()

	stove, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
	require.NoError(t, err)
	stove.Name = "mutated"

	found, err := repo.FindByID(ctx, stove.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stove", found.Name)
	assert.Equal(t, 1, repo.Len())
}

func TestGormStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&Record{}))

	start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	clk := clock.NewFakeClock(start)
	repo := New(conn, clk)

	stove, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
	require.NoError(t, err)

	clk.Advance(time.Hour)
	stove.Name = "Big Stove"
	_, err = repo.Update(ctx, stove)
	require.NoError(t, err)

	var record Record
	require.NoError(t, conn.Where("id = ?", stove.ID.String()).Take(&record).Error)
	assert.True(t, record.CreatedAt.Equal(start))
	assert.True(t, record.UpdatedAt.Equal(start.Add(time.Hour)))
	assert.Equal(t, "GAS", record.ConsumptionType)
	assert.Equal(t, "m³", record.ConsumptionUnit)
}

func TestGormRejectsCorruptRecord(t *testing.T) {
	ctx := context.Background()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&Record{}))

	id := hookupdomain.NewID()
	require.NoError(t, conn.Create(&Record{
		ID:              id.String(),
		Name:            "Broken",
		ConsumptionType: "GAS",
		ConsumptionUnit: "kWh",
		Endpoint:        "broken.local",
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}).Error)

	_, err = New(conn, nil).FindByID(ctx, id)
	assert.ErrorIs(t, err, hookupdomain.ErrInvalidConsumptionUnit)
}

func TestRepositoryConcurrentAdd(t *testing.T) {
	const workers = 20

	tests := []struct {
		name     string
		hookup   func(i int) (string, string)
		conflict error
	}{
		{
			name:     "same name",
			hookup:   func(i int) (string, string) { return "Stove", fmt.Sprintf("stove-%d.local", i) },
			conflict: hookupdomain.ErrNameConflict,
		},
		{
			name:     "same endpoint",
			hookup:   func(i int) (string, string) { return fmt.Sprintf("Stove %d", i), "stove.local" },
			conflict: hookupdomain.ErrEndpointConflict,
		},
	}

	for _, b := range backends() {
		for _, tt := range tests {
			t.Run(b.name+"/"+tt.name, func(t *testing.T) {
				ctx := context.Background()
				repo := b.new(t)

				errs := make([]error, workers)
				var wg sync.WaitGroup
				for i := 0; i < workers; i++ {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						name, endpoint := tt.hookup(i)
						h, err := hookupdomain.NewHookup(name, hookupdomain.ConsumptionTypeGas, endpoint)
						if err != nil {
							errs[i] = err
							return
						}
						_, errs[i] = repo.Add(ctx, h)
					}(i)
				}
				wg.Wait()

				var ok, conflicts int
				for _, err := range errs {
					switch {
					case err == nil:
						ok++
					case errors.Is(err, tt.conflict):
						conflicts++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}
				assert.Equal(t, 1, ok)
				assert.Equal(t, workers-1, conflicts)

				all, err := repo.FindAll(ctx)
				require.NoError(t, err)
				assert.Len(t, all, 1)
			})
		}
	}
}

func TestRepositoryUniquenessIsCaseSensitive(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			repo := b.new(t)

			_, err := repo.Add(ctx, newHookup(t, "Stove", hookupdomain.ConsumptionTypeGas, "stove.local"))
			require.NoError(t, err)
			_, err = repo.Add(ctx, newHookup(t, "stove", hookupdomain.ConsumptionTypeGas, "STOVE.local"))
			require.NoError(t, err)

			all, err := repo.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 2)
		})
	}
}
