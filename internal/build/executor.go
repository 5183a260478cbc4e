package build

import (
	"context"

	"github.com/GNPower/Vitis/internal/config"
	"github.com/GNPower/Vitis/internal/toolchain"
)

// Executor builds platforms and applications.
type Executor interface {
	BuildPlatform(ctx context.Context, p *config.Platform) error
	BuildApplication(ctx context.Context, p *config.Platform, app *config.Application) error
}

// Integrated builds through the toolchain client.
type Integrated struct {
	Client toolchain.Client
}

func (e Integrated) BuildPlatform(ctx context.Context, p *config.Platform) error {
	return e.Client.BuildPlatform(ctx, p)
}

func (e Integrated) BuildApplication(ctx context.Context, _ *config.Platform, app *config.Application) error {
	return e.Client.BuildApplication(ctx, app)
}
