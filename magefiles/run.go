//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Prints the summary of every model found in the assets directory.
func (Run) Modelinfo(assetsDir string) error {
	mg.Deps(Build.Modelinfo)
	out, err := executeCmd("bin/modelinfo", withArgs("-assets", assetsDir, "-list"))
	if err != nil {
		return err
	}
	models := splitLines(out)
	if len(models) == 0 {
		fmt.Printf("No models in %s\n", assetsDir)
		return nil
	}
	args := append([]string{"-assets", assetsDir}, models...)
	_, err = executeCmd("bin/modelinfo", withArgs(args...), withStream())
	return err
}
