//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Prints the declarations of the sample catalogs and dry-runs their transfer.
func (Run) Declarations() error {
	fmt.Println("Linking catalogs...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "regfile.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Same as Declarations, then keeps re-linking whenever a catalog changes.
func (Run) Watch() error {
	mg.Deps(Build.Binary)
	if _, err := executeCmd("bin/regfile", withArgs("-config", "regfile.toml", "-watch"), withStream()); err != nil {
		return err
	}
	return nil
}
