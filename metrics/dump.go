// Copyright (c) 2025 The NFTVault developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"

	"github.com/pkg/errors"
	"github.com/prometheus/common/expfmt"
)

// Dump writes the gathered metrics to w in the text exposition format.
// Nothing is written when metrics are disabled.
func Dump(w io.Writer) error {
	g := Gatherer()
	if g == nil {
		return nil
	}
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, f := range families {
		if err := enc.Encode(f); err != nil {
			return errors.Wrapf(err, "encode %s", f.GetName())
		}
	}
	return nil
}
