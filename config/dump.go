// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Dump writes the effective configuration as yaml that Load accepts back.
func (cfg *Config) Dump(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "encode config")
	}
	return enc.Close()
}
