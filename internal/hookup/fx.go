package hookup

import (
	"github.com/smallbiznis/hookup/internal/clock"
	"github.com/smallbiznis/hookup/internal/config"
	hookupdomain "github.com/smallbiznis/hookup/internal/hookup/domain"
	"github.com/smallbiznis/hookup/internal/hookup/repository"
	"github.com/smallbiznis/hookup/internal/hookup/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("hookup.service",
	fx.Provide(provideRepository),
	fx.Provide(service.New),
)

type repositoryParams struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Clock  clock.Clock
	DB     *gorm.DB `optional:"true"`
}

func provideRepository(p repositoryParams) hookupdomain.Repository {
	if p.Config.UsesMemoryStore() || p.DB == nil {
		p.Log.Info("hookup store selected", zap.String("store", config.StoreMemory))
		return repository.NewMemory()
	}
	p.Log.Info("hookup store selected", zap.String("store", config.StoreGorm))
	return repository.New(p.DB, p.Clock)
}
