package cmd

import (
	"os"

	"github.com/pkg/errors"

	"fmdisk/container"
)

// loadContainer reads and parses the D88/D77 container at path.
func loadContainer(path string) (*container.Container, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	c, err := container.Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	return c, nil
}

// storeContainer serializes c and writes it to path.
func storeContainer(path string, c *container.Container) error {
	if err := os.WriteFile(path, c.Store(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}
