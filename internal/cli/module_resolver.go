package cli

import (
	"fmt"
	"os"

	"github.com/toyz/splice/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	gomod *utils.GoModParser
}

// NewModuleResolver creates a new module resolver
func NewModuleResolver(reader *utils.FileReader) *ModuleResolver {
	if reader == nil {
		reader = utils.NewFileReader()
	}
	return &ModuleResolver{gomod: utils.NewGoModParser(reader)}
}

// ResolveModuleName returns customModule when set and otherwise the module
// declared by the nearest go.mod above the working directory
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	if customModule != "" {
		return customModule, nil
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	moduleName, err := r.ResolveFrom(currentDir)
	if err != nil {
		return "", fmt.Errorf("failed to determine module name: %w (consider using --module flag)", err)
	}
	return moduleName, nil
}

// ResolveFrom reads the module declared by the nearest go.mod above dir
func (r *ModuleResolver) ResolveFrom(dir string) (string, error) {
	goModPath, err := r.gomod.FindGoModFile(dir)
	if err != nil {
		return "", err
	}
	return r.gomod.ParseModuleName(goModPath)
}
