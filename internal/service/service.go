package service

import (
	client "rewear/internal/database/client"
	fluentdRepo "rewear/internal/database/fluentd/repository"
	mongoRepo "rewear/internal/database/mongodb/repository"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewUserService,
	NewItemService,
	NewSwapService,
	NewStatsService,
	NewHealthService,
	wire.Bind(new(UserStore), new(*mongoRepo.UserRepository)),
	wire.Bind(new(ItemStore), new(*mongoRepo.ItemRepository)),
	wire.Bind(new(SwapStore), new(*mongoRepo.SwapRequestRepository)),
	wire.Bind(new(Transactor), new(*client.MongoTransactor)),
	wire.Bind(new(SwapAuditor), new(*fluentdRepo.LogRepository)),
)
