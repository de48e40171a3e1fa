package usecase

import "go.uber.org/fx"

var Module = fx.Module("usecase",
	fx.Provide(NewFieldMapper),
	fx.Provide(NewDocumentProvisioner),
	fx.Provide(NewSignatureUsecase),
)
