package cmd

import (
	"log/slog"

	"github.com/chatoptimize/chatgraph/pkg/registry"
)

func NewRegistry(logger *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(logger)
	if err := reg.RegisterDefaultKinds(); err != nil {
		panic(err)
	}

	return reg
}
