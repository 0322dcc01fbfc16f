package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AkatukiSora/pokernow-ohh/internal/parser"
)

// Pair is one alias seen on one device.
type Pair struct {
	Alias  string
	Device string
}

// Pairs lists the distinct seated alias/device pairs of the segments in
// first-seen order.
func Pairs(segs []parser.HandSegment) []Pair {
	seen := make(map[Pair]bool)
	var out []Pair
	for _, seg := range segs {
		for _, line := range seg.Lines {
			if line.Event.Kind != parser.EventSeatAnnounced {
				continue
			}
			for _, s := range line.Event.Seats {
				p := Pair{Alias: s.Alias, Device: s.Device}
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// PrepareResult counts what the pre-pass changed.
type PrepareResult struct {
	// Learned counts new devices attached to an already known alias.
	Learned int
	// Assigned counts aliases the strategy placed.
	Assigned int
}

// Prepare makes every pair resolvable before compilation starts. A known
// alias on a device nobody has used picks up the device silently; unknown
// aliases go to the strategy. The first strategy error stops the pass.
func Prepare(ctx context.Context, dir *Directory, pairs []Pair, strategy Strategy) (PrepareResult, error) {
	var res PrepareResult
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name, known, owner := dir.Lookup(p.Alias, p.Device)
		if known {
			if owner == "" {
				slog.Info("adding new device for known alias", "alias", p.Alias, "name", name, "device", p.Device)
				dir.Assign(name, "", p.Device)
				res.Learned++
			}
			continue
		}

		name, err := strategy.Resolve(ctx, Question{Alias: p.Alias, Device: p.Device, DeviceOwner: owner})
		if err != nil {
			return res, fmt.Errorf("resolve identity: %w", err)
		}
		if owner != "" && owner != name {
			slog.Warn("device shared by different players", "device", p.Device, "owner", owner, "alias", p.Alias, "name", name)
		}
		dir.Assign(name, p.Alias, p.Device)
		res.Assigned++
	}
	return res, nil
}
