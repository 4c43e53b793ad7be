package analysis

import (
	"fmt"

	"github.com/san-kum/nlink/internal/dynamo"
)

// PhasePortrait returns (θ, dθ) of link for every snapshot.
func PhasePortrait(snaps []dynamo.Snapshot, link int) ([]dynamo.Point, error) {
	out := make([]dynamo.Point, 0, len(snaps))
	for _, s := range snaps {
		if link < 0 || link >= s.State.Len() {
			return nil, fmt.Errorf("%w: link %d outside chain of %d", dynamo.ErrDimensionMismatch, link, s.State.Len())
		}
		out = append(out, dynamo.Point{X: s.State.Theta[link], Y: s.State.DTheta[link]})
	}
	return out, nil
}

// PoincareSection records (θ, dθ) of link record each time the angle of link
// cross passes zero going upward. The recorded pair is linearly interpolated
// between the two snapshots that bracket the crossing.
func PoincareSection(snaps []dynamo.Snapshot, cross, record int) ([]dynamo.Point, error) {
	out := make([]dynamo.Point, 0)
	for i := 1; i < len(snaps); i++ {
		prev, curr := snaps[i-1].State, snaps[i].State
		n := curr.Len()
		if cross < 0 || cross >= n || record < 0 || record >= n {
			return nil, fmt.Errorf("%w: links %d and %d outside chain of %d", dynamo.ErrDimensionMismatch, cross, record, n)
		}

		a, b := prev.Theta[cross], curr.Theta[cross]
		if !(a < 0 && b >= 0) {
			continue
		}
		frac := -a / (b - a)
		out = append(out, dynamo.Point{
			X: lerp(prev.Theta[record], curr.Theta[record], frac),
			Y: lerp(prev.DTheta[record], curr.DTheta[record], frac),
		})
	}
	return out, nil
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
