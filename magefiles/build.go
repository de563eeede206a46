//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the modelinfo tool into bin/.
func (Build) Modelinfo() error {
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/modelinfo", "./cmd/modelinfo"), withStream()); err != nil {
		return err
	}
	return nil
}

type Test mg.Namespace

// Runs the unit tests of every package.
func (Test) Unit() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Runs the unit tests with the race detector, the asset watcher and the model
// system share state across goroutines.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./engine/assets/...", "./engine/systems/..."), withStream())
	return err
}

// Tidies go.mod and go.sum.
func (Build) Tidy() error {
	return goModTidy()
}
